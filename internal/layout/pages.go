package layout

// Page is a fixed-size window of consecutive lines shown together. Pages
// are contiguous and non-overlapping; the last page may hold fewer lines.
type Page struct {
	Index     int
	FirstLine int
	Lines     []Line
}

// LastWordIndex returns the index of the last word appearing on the page,
// or -1 for an empty page.
func (p Page) LastWordIndex() int {
	last := -1
	for _, line := range p.Lines {
		for _, seg := range line.Segments {
			if seg.WordIndex > last {
				last = seg.WordIndex
			}
		}
	}
	return last
}

// Paginate groups lines into consecutive runs of perPage. Purely a slicing
// operation: running it twice on the same input yields identical pages.
func Paginate(lines []Line, perPage int) []Page {
	if perPage < 1 {
		perPage = 1
	}

	var pages []Page
	for start := 0; start < len(lines); start += perPage {
		end := start + perPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, Page{
			Index:     len(pages),
			FirstLine: start,
			Lines:     lines[start:end],
		})
	}
	return pages
}
