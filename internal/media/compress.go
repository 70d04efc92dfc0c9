// Package media holds the ffmpeg-backed video compressor used before
// publishing oversized videos to Telegram.
package media

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

type FFmpegCompressor struct {
	Log *slog.Logger
}

// Compress re-encodes the video at a higher compression level and returns
// the result. Input and output pass through temp files because ffmpeg needs
// seekable mp4 containers.
func (c *FFmpegCompressor) Compress(data []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "sotvol-video-")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.mp4")
	out := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}

	cmd := exec.Command("ffmpeg", "-y", "-i", in,
		"-vcodec", "libx264", "-crf", "28", "-preset", "fast",
		"-acodec", "aac", "-b:a", "96k",
		out)
	if output, err := cmd.CombinedOutput(); err != nil {
		if c.Log != nil {
			c.Log.Warn("ffmpeg failed", "output", string(output))
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}

	compressed, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	return compressed, nil
}
