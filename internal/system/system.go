package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not raise file limit: %v", err)
	}
}

// ProbeAudioDuration asks ffprobe for the track duration in seconds.
func ProbeAudioDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %v: %s", err, strings.TrimSpace(string(out)))
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}

	return duration, nil
}

// FindLatestAudio returns the most recently modified audio file in dir.
func FindLatestAudio(dir string) (string, error) {
	return findLatest(dir, []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}, "audio")
}

// FindLatestText returns the most recently modified narration text file in dir.
func FindLatestText(dir string) (string, error) {
	return findLatest(dir, []string{".txt"}, "text")
}

func findLatest(dir string, extensions []string, kind string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		match := false
		for _, ext := range extensions {
			if strings.HasSuffix(strings.ToLower(f.Name()), ext) {
				match = true
				break
			}
		}
		if match {
			info, err := f.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(latestTime) {
				latestTime = info.ModTime()
				latestFile = filepath.Join(dir, f.Name())
			}
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files found in %s", kind, dir)
	}

	return latestFile, nil
}

// GetBestH264Encoder probes ffmpeg for hardware H.264 support.
// Priority: VideoToolbox (macOS), NVENC (NVIDIA), then software libx264.
func GetBestH264Encoder() string {
	cmd := exec.Command("ffmpeg", "-encoders")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "libx264"
	}

	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}

	return "libx264"
}
