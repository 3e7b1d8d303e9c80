package media

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strconv"

	apperrors "github.com/voxcast/voxcast/errors"
)

const defaultMimeType = "audio/mpeg"

// AudioMetadata describes a finished audio file. Duration is nil when it
// could not be probed; FileSize is always present.
type AudioMetadata struct {
	DurationSeconds *int
	FileSize        int64
	MimeType        string
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reads size and duration of an audio file. Size failures are fatal;
// a missing or unparsable duration degrades to nil so publishing can
// continue with a default.
func Probe(ctx context.Context, path string) (*AudioMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.ErrAudioMetadataFailed(path, err)
	}

	meta := &AudioMetadata{
		FileSize: info.Size(),
		MimeType: defaultMimeType,
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-show_format",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return meta, nil
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return meta, nil
	}

	if seconds, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil && seconds > 0 {
		d := int(seconds + 0.5)
		meta.DurationSeconds = &d
	}

	return meta, nil
}
