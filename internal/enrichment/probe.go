package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"media-browser/internal/mediatypes"
)

// probeInfo is the subset of `ffprobe -print_format json` output we use.
type probeInfo struct {
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

func (s *LocalService) probe(ctx context.Context, path string) (*probeInfo, error) {
	bin, err := exec.LookPath(s.ffprobe())
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe error: %w - %s", err, stderr.String())
	}
	return parseProbe(stdout.Bytes())
}

func parseProbe(data []byte) (*probeInfo, error) {
	var info probeInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &info, nil
}

// properties converts probe output to property lines. Duration is reported
// in 100ns units.
func (p *probeInfo) properties(fileType mediatypes.FileType) []Property {
	var props []Property

	for _, st := range p.Streams {
		if st.CodecType != "video" || st.Width == 0 {
			continue
		}
		widthKey, heightKey := KeyVideoWidth, KeyVideoHeight
		if fileType == mediatypes.FileTypeImage {
			widthKey, heightKey = KeyImageWidth, KeyImageHeight
		} else if st.CodecName != "" {
			props = append(props, Property{Key: "Video.Compression", Value: Quote(st.CodecName)})
		}
		props = append(props,
			Property{Key: widthKey, Value: FormatInt(int64(st.Width))},
			Property{Key: heightKey, Value: FormatInt(int64(st.Height))},
		)
		break
	}

	if fileType == mediatypes.FileTypeVideo {
		if seconds, err := strconv.ParseFloat(p.Format.Duration, 64); err == nil && seconds > 0 {
			props = append(props, Property{Key: KeyDuration, Value: FormatInt(int64(seconds * 1e7))})
		}
	}

	if model := p.Format.Tags["com.apple.quicktime.model"]; model != "" {
		props = append(props, Property{Key: KeyCameraModel, Value: Quote(model)})
	}

	return props
}
