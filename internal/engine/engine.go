package engine

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/code2vid/internal/compositor"
	"github.com/ivlev/code2vid/internal/config"
	"github.com/ivlev/code2vid/internal/system"
	"github.com/ivlev/code2vid/internal/video"
)

// RenderJob drives one render: it walks frame timestamps at the configured
// rate across the audio duration, computes frames in parallel batches, and
// streams them in order into the encoder for muxing with the audio track.
type RenderJob struct {
	Config     *config.Config
	Compositor *compositor.Compositor
	Encoder    video.Encoder
	Backdrop   image.Image
}

func NewRenderJob(cfg *config.Config, comp *compositor.Compositor, enc video.Encoder, backdrop image.Image) *RenderJob {
	return &RenderJob{Config: cfg, Compositor: comp, Encoder: enc, Backdrop: backdrop}
}

// FrameCount returns how many frames cover duration seconds at fps. The
// resulting video is within one frame interval of the audio duration.
func FrameCount(duration float64, fps int) int {
	n := int(math.Ceil(duration * float64(fps)))
	if n < 1 {
		n = 1
	}
	return n
}

// frameTimestamp returns the render time of frame i out of total. Interior
// frames sit on the fps grid; the final frame is sampled at the exact track
// end, so characters scheduled to reveal right at the end of the audio are
// visible in the output.
func frameTimestamp(i, total, fps int, duration float64) float64 {
	if i == total-1 {
		return duration
	}
	return float64(i) / float64(fps)
}

// Run renders and muxes the whole video. Frame state at time t is a pure
// function of the immutable timing data, so workers compute frames of a
// batch in any order; ordering is restored when the batch is written out.
// The job is cancellable between batches.
func (j *RenderJob) Run(ctx context.Context) error {
	cfg := j.Config
	startTime := time.Now()

	totalFrames := FrameCount(cfg.TotalDuration, cfg.FPS)

	fmt.Println("--- [PROJECT: TYPEWRITER ENGINE] ---")
	fmt.Printf("[*] Audio: %s | Duration: %.2fs\n", filepath.Base(cfg.AudioPath), cfg.TotalDuration)
	fmt.Printf("[*] Resolution: %dx%d @ %d FPS | Frames: %d | Workers: %d\n",
		cfg.Width, cfg.Height, cfg.FPS, totalFrames, cfg.Workers)
	fmt.Println("------------------------------------")

	// Each worker owns a rasterizer; font faces are not safe to share.
	rasterizers := make([]*compositor.Rasterizer, cfg.Workers)
	for w := range rasterizers {
		r, err := compositor.NewRasterizer(cfg.Width, cfg.Height, cfg.Theme, j.Backdrop, cfg.QRLink)
		if err != nil {
			return fmt.Errorf("%w: %v", video.ErrRender, err)
		}
		rasterizers[w] = r
	}

	sink, err := j.Encoder.Start(ctx, video.StreamParams{
		Width:       cfg.Width,
		Height:      cfg.Height,
		FPS:         cfg.FPS,
		AudioPath:   cfg.AudioPath,
		OutputPath:  cfg.OutputVideo,
		EncoderName: cfg.VideoEncoder,
		Quality:     cfg.Quality,
	})
	if err != nil {
		return err
	}

	frameRect := image.Rect(0, 0, cfg.Width, cfg.Height)
	done := 0

	for start := 0; start < totalFrames; start += cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			sink.Close()
			os.Remove(cfg.OutputVideo)
			return err
		}

		end := start + cfg.BatchSize
		if end > totalFrames {
			end = totalFrames
		}
		frames := make([]*image.RGBA, end-start)

		eg := new(errgroup.Group)
		jobs := make(chan int, len(frames))
		for i := range frames {
			jobs <- i
		}
		close(jobs)

		for w := 0; w < cfg.Workers; w++ {
			raster := rasterizers[w]
			eg.Go(func() error {
				for i := range jobs {
					t := frameTimestamp(start+i, totalFrames, cfg.FPS, cfg.TotalDuration)
					state := j.Compositor.StateAt(t)
					frame := system.GetFrame(frameRect)
					raster.Rasterize(state, frame)
					frames[i] = frame
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			sink.Close()
			os.Remove(cfg.OutputVideo)
			return err
		}

		for _, frame := range frames {
			if err := sink.WriteFrame(frame); err != nil {
				sink.Close()
				os.Remove(cfg.OutputVideo)
				return err
			}
			system.PutFrame(frame)
		}

		done = end
		fmt.Printf("[>] Frames: %d/%d\n", done, totalFrames)
	}

	if err := sink.Close(); err != nil {
		return err
	}

	totalTime := time.Since(startTime)
	if cfg.ShowStats {
		j.writeStats(totalFrames, totalTime)
	}

	return nil
}

func (j *RenderJob) writeStats(totalFrames int, totalTime time.Duration) {
	cfg := j.Config
	fps := float64(totalFrames) / totalTime.Seconds()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Frames: %d\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		cfg.BuildVersion, totalTime.Seconds(), totalFrames, fps,
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Audio: %s | Frames: %d | Total: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		cfg.BuildVersion,
		filepath.Base(cfg.AudioPath),
		totalFrames,
		totalTime.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Could not write benchmark.log: %v\n", err)
	}
}
