package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
)

// ErrRender marks fatal rasterization or mux failures. Jobs abort on it and
// never leave a partial output file behind.
var ErrRender = errors.New("render failed")

// StreamParams describes one encode-and-mux run.
type StreamParams struct {
	Width       int
	Height      int
	FPS         int
	AudioPath   string
	OutputPath  string
	EncoderName string
	Quality     int
}

// Encoder consumes an ordered frame stream and produces the muxed file.
type Encoder interface {
	Start(ctx context.Context, params StreamParams) (FrameSink, error)
}

// FrameSink receives frames in strictly increasing timestamp order.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
	// Close finishes the stream and waits for the mux. On failure the
	// partial output file is removed before the error is returned.
	Close() error
}

// FFmpegEncoder pipes raw RGBA frames into a single ffmpeg process that
// encodes the video track and muxes the narration audio in one pass.
type FFmpegEncoder struct{}

func (e *FFmpegEncoder) Start(ctx context.Context, params StreamParams) (FrameSink, error) {
	args := buildStreamArgs(params)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var ffmpegLog bytes.Buffer
	cmd.Stdout = &ffmpegLog
	cmd.Stderr = &ffmpegLog

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", ErrRender, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg start: %v", ErrRender, err)
	}

	return &ffmpegSink{
		cmd:    cmd,
		stdin:  stdin,
		log:    &ffmpegLog,
		output: params.OutputPath,
	}, nil
}

func buildStreamArgs(params StreamParams) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
		"-i", params.AudioPath,
		"-c:v", params.EncoderName,
	}

	switch params.EncoderName {
	case "h264_videotoolbox":
		// VideoToolbox rejects -q:v on some versions, use bitrate.
		bitrate := params.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", params.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", params.Quality), "-preset", "medium")
	}

	args = append(args,
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-shortest",
		params.OutputPath,
	)
	return args
}

type ffmpegSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	log    *bytes.Buffer
	output string
}

func (s *ffmpegSink) WriteFrame(img *image.RGBA) error {
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("%w: write frame: %v", ErrRender, err)
	}
	return nil
}

func (s *ffmpegSink) Close() error {
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		os.Remove(s.output)
		return fmt.Errorf("%w: ffmpeg: %v\nLog: %s", ErrRender, err, tail(s.log.String(), 2000))
	}
	return nil
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride != bounds.Dx()*4 || bounds.Min.X != 0 || bounds.Min.Y != 0 {
		tight := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(tight, tight.Bounds(), img, bounds.Min, draw.Src)
		img = tight
	}
	_, err := w.Write(img.Pix)
	return err
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
