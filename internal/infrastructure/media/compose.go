package media

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/voxcast/voxcast/errors"
)

// DefaultCrossfadeMillis is used when no crossfade range is configured.
const DefaultCrossfadeMillis = 200

// CrossfadeOptions controls how adjacent segments are blended. When
// MinMillis < MaxMillis each junction gets a duration drawn from Rand
// (time-seeded if nil); otherwise MinMillis applies everywhere.
type CrossfadeOptions struct {
	MinMillis int
	MaxMillis int
	Rand      *rand.Rand
}

func (o CrossfadeOptions) durations(n int) []int {
	if n <= 0 {
		return nil
	}
	min := o.MinMillis
	if min <= 0 {
		min = DefaultCrossfadeMillis
	}
	out := make([]int, n)
	if o.MaxMillis > min {
		rng := o.Rand
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		for i := range out {
			out[i] = min + rng.Intn(o.MaxMillis-min+1)
		}
		return out
	}
	for i := range out {
		out[i] = min
	}
	return out
}

// Compose joins segment audio files into a single MP3 at outputPath,
// crossfading at every junction. Segment order is preserved.
func Compose(ctx context.Context, segmentPaths []string, outputPath string, opts CrossfadeOptions) error {
	if len(segmentPaths) == 0 {
		return apperrors.ErrAudioCompositionFailed(fmt.Errorf("no segments to compose"))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return apperrors.ErrAudioCompositionFailed(err)
	}

	if len(segmentPaths) == 1 {
		return copyFile(segmentPaths[0], outputPath)
	}

	durations := opts.durations(len(segmentPaths) - 1)
	filter, finalLabel := BuildCrossfadeFilter(len(segmentPaths), durations)

	args := make([]string, 0, 2*len(segmentPaths)+10)
	args = append(args, "-y")
	for _, p := range segmentPaths {
		args = append(args, "-i", p)
	}
	args = append(args,
		"-filter_complex", filter,
		"-map", finalLabel,
		"-codec:a", "libmp3lame",
		"-q:a", "2",
		outputPath,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return apperrors.ErrAudioCompositionFailed(fmt.Errorf("ffmpeg: %w: %s", err, truncate(string(out), 512)))
	}
	return nil
}

// BuildCrossfadeFilter builds an acrossfade filter graph chaining n inputs.
// durations holds one entry per junction, in milliseconds.
func BuildCrossfadeFilter(n int, durations []int) (filter string, finalLabel string) {
	var b strings.Builder
	prev := "[0]"
	for i := 1; i < n; i++ {
		d := DefaultCrossfadeMillis
		if i-1 < len(durations) {
			d = durations[i-1]
		}
		label := fmt.Sprintf("[x%d]", i)
		if i == n-1 {
			label = "[out]"
		}
		if b.Len() > 0 {
			b.WriteString(";")
		}
		fmt.Fprintf(&b, "%s[%d]acrossfade=d=%.3f:c1=tri:c2=tri%s", prev, i, float64(d)/1000.0, label)
		prev = label
	}
	return b.String(), "[out]"
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return apperrors.ErrAudioCompositionFailed(err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return apperrors.ErrAudioCompositionFailed(err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return apperrors.ErrAudioCompositionFailed(err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
