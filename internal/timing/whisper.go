package timing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// WhisperAligner calls a whisper-based alignment service over HTTP. The
// service receives the audio file plus the exact transcript and returns
// word-level timestamps with per-word confidence scores.
type WhisperAligner struct {
	BaseURL string
	Client  *http.Client
}

// NewWhisperAligner creates an aligner for the given service URL. The
// timeout bounds one alignment call; alignment of a long track is a single
// long-running operation, so this should be generous.
func NewWhisperAligner(baseURL string, timeout time.Duration) *WhisperAligner {
	return &WhisperAligner{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (a *WhisperAligner) Name() string { return "whisper" }

// Available probes the service health endpoint. The extractor checks this
// once at job start to pick between alignment and estimation.
func (a *WhisperAligner) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := a.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type alignedWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score"`
}

type alignResponse struct {
	Words []alignedWord `json:"words"`
}

// Align uploads the audio and transcript and decodes the returned word
// timestamps. Transport and server errors come back wrapped in
// ErrAlignmentUnavailable so the caller can treat them as recoverable.
func (a *WhisperAligner) Align(ctx context.Context, audioPath, transcript string) ([]WordTiming, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	part, err := mw.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		f.Close()
		return nil, err
	}
	f.Close()

	if err := mw.WriteField("transcript", transcript); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/align", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAlignmentUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: service returned %s", ErrAlignmentUnavailable, resp.Status)
	}

	var decoded alignResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrAlignmentUnavailable, err)
	}
	if len(decoded.Words) == 0 {
		return nil, fmt.Errorf("%w: empty word list", ErrAlignmentUnavailable)
	}

	timings := make([]WordTiming, 0, len(decoded.Words))
	for _, w := range decoded.Words {
		timings = append(timings, WordTiming{
			Text:       w.Word,
			Start:      w.Start,
			End:        w.End,
			Confidence: w.Score,
		})
	}
	return timings, nil
}
