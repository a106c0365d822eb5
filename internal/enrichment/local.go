package enrichment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/disintegration/imaging"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"media-browser/internal/logging"
	"media-browser/internal/mediatypes"
	"media-browser/internal/metrics"
)

// DefaultThumbnailSize bounds both sides of a generated thumbnail.
const DefaultThumbnailSize = 256

const thumbnailQuality = 80

// LocalService is the built-in Enrichment Service.
type LocalService struct {
	// ThumbnailSize bounds the thumbnail's width and height.
	ThumbnailSize int
	// FFmpeg and FFprobe name the executables used for video and for
	// images the Go decoders cannot read. Empty means "ffmpeg"/"ffprobe".
	FFmpeg  string
	FFprobe string
}

// NewLocalService returns a LocalService with default settings.
func NewLocalService() *LocalService {
	return &LocalService{ThumbnailSize: DefaultThumbnailSize}
}

// CreateThumbnail implements Service.
func (s *LocalService) CreateThumbnail(ctx context.Context, req Request) (Response, error) {
	ext := mediatypes.Extension(req.Path)
	fileType := mediatypes.GetFileType(ext)
	if fileType == mediatypes.FileTypeOther {
		return Response{}, fmt.Errorf("unsupported file type: %s", filepath.Base(req.Path))
	}

	if req.WantThumbnail {
		err := s.writeThumbnail(ctx, req.Path, req.ThumbnailPath, fileType)
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.ThumbnailGenerationsTotal.WithLabelValues(string(fileType), status).Inc()
		if err != nil {
			return Response{}, err
		}
	}

	if !req.WantProperties {
		return Response{}, nil
	}

	props, err := s.readProperties(ctx, req.Path, ext, fileType)
	if err != nil {
		return Response{}, err
	}
	return Response{Properties: FormatProperties(props)}, nil
}

func (s *LocalService) size() int {
	if s.ThumbnailSize > 0 {
		return s.ThumbnailSize
	}
	return DefaultThumbnailSize
}

func (s *LocalService) ffmpeg() string {
	if s.FFmpeg != "" {
		return s.FFmpeg
	}
	return "ffmpeg"
}

func (s *LocalService) ffprobe() string {
	if s.FFprobe != "" {
		return s.FFprobe
	}
	return "ffprobe"
}

func (s *LocalService) writeThumbnail(ctx context.Context, src, dst string, fileType mediatypes.FileType) error {
	if dst == "" {
		return errors.New("no thumbnail path given")
	}

	var img image.Image
	var err error
	if fileType == mediatypes.FileTypeVideo {
		img, err = s.videoFrame(ctx, src)
	} else {
		img, err = s.decodeImage(ctx, src)
	}
	if err != nil {
		return fmt.Errorf("thumbnail generation failed: %w", err)
	}

	thumb := imaging.Fit(img, s.size(), s.size(), imaging.Lanczos)

	// Temp file + rename: readers never see a partial JPEG.
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".thumb-*.jpg")
	if err != nil {
		return fmt.Errorf("failed to create thumbnail: %w", err)
	}
	tmpName := tmp.Name()

	if err := imaging.Encode(tmp, thumb, imaging.JPEG, imaging.JPEGQuality(thumbnailQuality)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write thumbnail: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to save thumbnail: %w", err)
	}

	logging.Debug("Thumbnail written: %s", dst)
	return nil
}

func (s *LocalService) decodeImage(ctx context.Context, path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}

	logging.Debug("imaging.Open failed for %s: %v, trying ffmpeg fallback", path, err)

	img, ffErr := s.runFFmpegFrame(ctx,
		"-i", path,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	if ffErr != nil {
		return nil, fmt.Errorf("all image decode methods failed for %s: %w", path, errors.Join(err, ffErr))
	}
	return img, nil
}

func (s *LocalService) videoFrame(ctx context.Context, path string) (image.Image, error) {
	img, err := s.runFFmpegFrame(ctx,
		"-ss", "00:00:01",
		"-i", path,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	if err == nil {
		return img, nil
	}

	// Clips shorter than a second have no frame at 00:00:01.
	logging.Debug("FFmpeg seek failed for %s: %v, using first frame", path, err)
	return s.runFFmpegFrame(ctx,
		"-i", path,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
}

func (s *LocalService) runFFmpegFrame(ctx context.Context, args ...string) (image.Image, error) {
	path, err := exec.LookPath(s.ffmpeg())
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, append([]string{"-v", "error"}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, errors.New("ffmpeg produced no output")
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}

func (s *LocalService) readProperties(ctx context.Context, path, ext string, fileType mediatypes.FileType) ([]Property, error) {
	props := []Property{
		{Key: KeyContentType, Value: Quote(mediatypes.GetMimeType(ext))},
	}

	if fileType == mediatypes.FileTypeImage {
		w, h, err := imageDimensions(path)
		if err == nil {
			return append(props,
				Property{Key: KeyImageWidth, Value: FormatInt(int64(w))},
				Property{Key: KeyImageHeight, Value: FormatInt(int64(h))},
			), nil
		}
		logging.Debug("Could not read image dimensions for %s: %v, trying ffprobe", path, err)
	}

	info, err := s.probe(ctx, path)
	if err != nil {
		if fileType == mediatypes.FileTypeImage {
			logging.Debug("ffprobe failed for %s: %v", path, err)
			return props, nil
		}
		return nil, err
	}
	return append(props, info.properties(fileType)...), nil
}

func imageDimensions(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}
	return config.Width, config.Height, nil
}
