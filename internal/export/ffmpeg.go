package export

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/llehouerou/pickup/internal/player"
)

// FFmpegConverter converts sources to MP3 by shelling out to ffmpeg.
// Uses 320kbps CBR and preserves source tags.
type FFmpegConverter struct{}

// NewFFmpegConverter creates an ffmpeg-backed converter.
func NewFFmpegConverter() *FFmpegConverter {
	return &FFmpegConverter{}
}

// Begin starts the conversion. Progress comes from ffmpeg's "-progress"
// key=value stream on stdout; when the source duration cannot be probed,
// progress stays at zero until completion.
func (c *FFmpegConverter) Begin(ctx context.Context, src, dst string) (Handle, error) {
	total, err := player.ProbeDuration(src)
	if err != nil {
		// Unknown duration is not fatal; the job just reports no progress.
		total = 0
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", src,
		"-codec:a", "libmp3lame",
		"-b:a", "320k",
		"-map_metadata", "0", // Preserve tags
		"-id3v2_version", "3",
		"-nostats",
		"-progress", "pipe:1",
		"-y",
		dst,
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	h := &ffmpegHandle{
		total: total,
		done:  make(chan error, 1),
	}

	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			h.consume(scanner.Text())
		}
	}()

	go func() {
		err := cmd.Wait()
		if err != nil {
			// Clean up partial file
			os.Remove(dst)
			err = fmt.Errorf("ffmpeg conversion failed: %w\n%s", err, stderr.String())
		}
		h.done <- err
	}()

	return h, nil
}

type ffmpegHandle struct {
	mu       sync.Mutex
	total    time.Duration
	progress float64
	done     chan error
}

func (h *ffmpegHandle) Progress() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress
}

func (h *ffmpegHandle) Done() <-chan error {
	return h.done
}

// consume parses one key=value line from ffmpeg's progress stream.
func (h *ffmpegHandle) consume(line string) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return
	}
	switch key {
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds in current ffmpeg builds.
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return
		}
		h.setElapsed(time.Duration(us) * time.Microsecond)
	case "progress":
		if value == "end" {
			h.mu.Lock()
			h.progress = 1
			h.mu.Unlock()
		}
	}
}

func (h *ffmpegHandle) setElapsed(elapsed time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.total <= 0 {
		return
	}
	p := float64(elapsed) / float64(h.total)
	if p > 1 {
		p = 1
	}
	if p > h.progress {
		h.progress = p
	}
}

// Verify FFmpegConverter implements Converter at compile time.
var _ Converter = (*FFmpegConverter)(nil)
