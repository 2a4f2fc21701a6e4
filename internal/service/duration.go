package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// NewFFprobe returns a Prober backed by the ffprobe binary at bin. An
// empty path disables probing and every duration is reported as 0
func NewFFprobe(bin string) Prober {
	if bin == "" {
		return nil
	}

	return func(ctx context.Context, f multipart.File) (float64, error) {
		// ffprobe needs to seek in most containers, so it gets a real file
		temp, err := os.CreateTemp("", "probe-*")
		if err != nil {
			return 0, fmt.Errorf("failed to create temporary file, %w", err)
		}
		defer os.Remove(temp.Name())
		defer temp.Close()

		if _, err := io.Copy(temp, f); err != nil {
			return 0, fmt.Errorf("failed to copy data to temporary file, %w", err)
		}

		return GetDuration(ctx, bin, temp.Name())
	}
}

func GetDuration(ctx context.Context, bin, p string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	zap.L().Debug("Running FFprobe to determine media duration")

	cmd := exec.CommandContext(ctx, bin, "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", "-i", p)

	var stdOut, stdErr bytes.Buffer
	cmd.Stdout = &stdOut
	cmd.Stderr = &stdErr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed, %w (%s)", err, stdErr.String())
	}

	return ParseDuration(stdOut.String())
}

// ParseDuration reads ffprobe's format=duration output. Streams without a
// known duration (still images) report N/A which maps to 0
func ParseDuration(out string) (float64, error) {
	s := strings.TrimSpace(out)
	if s == "" || s == "N/A" {
		return 0, nil
	}

	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed duration, %w (%s)", err, s)
	}

	return d, nil
}
