package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/code2vid/internal/backdrop"
	"github.com/ivlev/code2vid/internal/compositor"
	"github.com/ivlev/code2vid/internal/config"
	"github.com/ivlev/code2vid/internal/engine"
	"github.com/ivlev/code2vid/internal/layout"
	"github.com/ivlev/code2vid/internal/scheduler"
	"github.com/ivlev/code2vid/internal/system"
	"github.com/ivlev/code2vid/internal/timing"
	"github.com/ivlev/code2vid/internal/video"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	system.InitResourceLimits()

	dirs := []string{"input/audio", "input/text", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	audioPtr := flag.String("audio", "", "Narration audio file (default: newest file in input/audio/)")
	textPtr := flag.String("text", "", "Narration text file (default: newest .txt in input/text/)")
	outputPtr := flag.String("output", "", "Output video path (default: generated in output/)")
	widthPtr := flag.Int("width", 1280, "Width")
	heightPtr := flag.Int("height", 720, "Height")
	fpsPtr := flag.Int("fps", 24, "FPS")
	presetPtr := flag.String("preset", "", "Format preset: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	linesPtr := flag.Int("lines-per-page", 3, "Lines shown per page")
	lineWidthPtr := flag.Int("line-width", 60, "Max characters per line")
	fadePtr := flag.Float64("fade", 0.3, "Page transition duration (sec)")
	fadePolicyPtr := flag.String("fade-policy", "sequential", "Transition policy: sequential, crossfade")
	alignURLPtr := flag.String("align-url", "", "Word alignment service URL (empty: proportional estimate)")
	alignTimeoutPtr := flag.Float64("align-timeout", 60, "Alignment call timeout (sec)")
	backdropPtr := flag.String("background", "", "Backdrop image or PDF (optional)")
	qrPtr := flag.String("qr", "", "Link rendered as a corner QR code (optional)")
	themePtr := flag.String("theme", "", "Theme YAML file (optional)")
	dumpThemePtr := flag.String("dump-theme", "", "Write the default theme YAML to this path and exit")
	workersPtr := flag.Int("workers", 0, "Frame workers (0: auto)")
	qualityPtr := flag.Int("quality", 0, "Video quality (0: auto, x264: CRF, VideoToolbox: bitrate = Q*100kbit/s)")
	statsPtr := flag.Bool("stats", false, "Print performance report")

	flag.Parse()

	if *dumpThemePtr != "" {
		if err := config.WriteTheme(config.DefaultTheme(), *dumpThemePtr); err != nil {
			log.Fatalf("[-] Could not write theme: %v", err)
		}
		fmt.Printf("[+++] Theme written: %s\n", *dumpThemePtr)
		return
	}

	width, height := *widthPtr, *heightPtr
	switch *presetPtr {
	case "16:9":
		width, height = 1280, 720
	case "9:16":
		width, height = 720, 1280
	case "4:5":
		width, height = 1080, 1350
	}

	audioPath := *audioPtr
	if audioPath == "" {
		latest, err := system.FindLatestAudio("input/audio")
		if err != nil {
			log.Fatalf("[-] Error: %v. Put a narration track in input/audio/", err)
		}
		audioPath = latest
		fmt.Printf("[*] Audio selected: %s\n", audioPath)
	}

	textPath := *textPtr
	if textPath == "" {
		latest, err := system.FindLatestText("input/text")
		if err != nil {
			log.Fatalf("[-] Error: %v. Put the narration text in input/text/", err)
		}
		textPath = latest
		fmt.Printf("[*] Text selected: %s\n", textPath)
	}

	narration, err := os.ReadFile(textPath)
	if err != nil {
		log.Fatalf("[-] Could not read narration text: %v", err)
	}

	audioDuration, err := system.ProbeAudioDuration(audioPath)
	if err != nil {
		log.Fatalf("[-] Could not probe audio: %v", err)
	}
	fmt.Printf("[*] Audio duration: %.2fs\n", audioDuration)

	theme := config.DefaultTheme()
	if *themePtr != "" {
		theme, err = config.ReadTheme(*themePtr)
		if err != nil {
			log.Fatalf("[-] Theme error: %v", err)
		}
		fmt.Printf("[*] Theme loaded: %s\n", *themePtr)
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		baseName := filepath.Base(audioPath)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	encoderName := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Hardware encoder detected: %s\n", encoderName)
	}

	quality := *qualityPtr
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75
		case "h264_nvenc":
			quality = 28
		default:
			quality = 23
		}
	}

	workers := *workersPtr
	if workers <= 0 {
		workers = system.RenderWorkers()
	}

	cfg := &config.Config{
		AudioPath:     audioPath,
		TextPath:      textPath,
		OutputVideo:   finalOutput,
		BackdropPath:  *backdropPtr,
		QRLink:        *qrPtr,
		TotalDuration: audioDuration,
		Width:         width,
		Height:        height,
		FPS:           *fpsPtr,
		Workers:       workers,
		BatchSize:     system.FrameBatchSize(width, height, workers),
		LinesPerPage:  *linesPtr,
		MaxLineWidth:  *lineWidthPtr,
		FadeDuration:  *fadePtr,
		FadePolicy:    *fadePolicyPtr,
		AlignURL:      *alignURLPtr,
		AlignTimeout:  *alignTimeoutPtr,
		VideoEncoder:  encoderName,
		Quality:       quality,
		ShowStats:     *statsPtr,
		BuildVersion:  version,
		Theme:         theme,
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, string(narration)); err != nil {
		log.Fatalf("[-] Render error: %v", err)
	}

	fmt.Printf("[+++] Done! Output: %s\n", cfg.OutputVideo)
}

func run(ctx context.Context, cfg *config.Config, narration string) error {
	var aligner timing.Aligner
	if cfg.AlignURL != "" {
		aligner = timing.NewWhisperAligner(cfg.AlignURL, time.Duration(cfg.AlignTimeout*float64(time.Second)))
	}
	extractor := timing.NewExtractor(aligner)

	words, err := extractor.Extract(ctx, cfg.AudioPath, narration, cfg.TotalDuration)
	if err != nil {
		return err
	}
	reveals := timing.RevealOffsets(words)

	tokens := make([]string, len(words))
	for i, w := range words {
		tokens[i] = w.Text
	}
	lines := layout.BreakLines(tokens, cfg.MaxLineWidth)
	pages := layout.Paginate(lines, cfg.LinesPerPage)
	fmt.Printf("[*] Narration: %d words | %d lines | %d pages\n", len(words), len(lines), len(pages))

	sched := scheduler.New(pages, reveals, cfg.FadeDuration, cfg.TotalDuration)
	comp := compositor.New(words, reveals, sched, scheduler.PolicyByName(cfg.FadePolicy))

	var backdropImg image.Image
	if cfg.BackdropPath != "" {
		loader, err := backdrop.Open(cfg.BackdropPath)
		if err != nil {
			return err
		}
		backdropImg, err = loader.Load()
		if err != nil {
			return fmt.Errorf("backdrop load: %w", err)
		}
		fmt.Printf("[*] Backdrop: %s\n", cfg.BackdropPath)
	}

	job := engine.NewRenderJob(cfg, comp, &video.FFmpegEncoder{}, backdropImg)
	return job.Run(ctx)
}
