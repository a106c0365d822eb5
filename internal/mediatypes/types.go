package mediatypes

import (
	"sort"
	"strings"
)

// FileType represents the type of a media file.
type FileType string

const (
	// FileTypeImage represents an image file.
	FileTypeImage FileType = "image"
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// ImageExtensions lists the image formats scanned by default.
var ImageExtensions = []string{"jpg", "jpeg", "jpe", "jfif", "gif", "tif", "tiff", "bmp", "dib", "png", "ico", "heic", "webp"}

// VideoExtensions lists the video formats scanned by default.
var VideoExtensions = []string{"mp4", "wmv", "flv", "avi", "mpg", "mpeg", "mkv", "ts"}

// MimeTypes maps extensions to their MIME types.
var MimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"jpe":  "image/jpeg",
	"jfif": "image/jpeg",
	"gif":  "image/gif",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"bmp":  "image/bmp",
	"dib":  "image/bmp",
	"png":  "image/png",
	"ico":  "image/x-icon",
	"heic": "image/heic",
	"webp": "image/webp",

	"mp4":  "video/mp4",
	"wmv":  "video/x-ms-wmv",
	"flv":  "video/x-flv",
	"avi":  "video/x-msvideo",
	"mpg":  "video/mpeg",
	"mpeg": "video/mpeg",
	"mkv":  "video/x-matroska",
	"ts":   "video/mp2t",
}

var (
	imageSet = toSet(ImageExtensions)
	videoSet = toSet(VideoExtensions)
)

func toSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		set[ext] = true
	}
	return set
}

// DefaultExtensions returns a fresh copy of the image and video extensions.
func DefaultExtensions() []string {
	exts := make([]string, 0, len(ImageExtensions)+len(VideoExtensions))
	exts = append(exts, ImageExtensions...)
	return append(exts, VideoExtensions...)
}

// Extension returns the lower-cased extension of name without its dot.
// Names without an extension, names ending in a dot and dot-files such as
// ".jpg" have no extension and return "".
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	if j := strings.LastIndexAny(name, `/\`); j >= 0 && (i < j || i == j+1) {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// NormalizeExtension lower-cases ext and strips any leading dots.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
}

// GetFileType returns the FileType for an extension as returned by Extension.
func GetFileType(ext string) FileType {
	if imageSet[ext] {
		return FileTypeImage
	}
	if videoSet[ext] {
		return FileTypeVideo
	}
	return FileTypeOther
}

// GetMimeType returns the MIME type for an extension, or
// "application/octet-stream" when it is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// AllowList is a set of extensions accepted by the scanner.
type AllowList map[string]bool

// NewAllowList builds an AllowList, normalizing each extension. Blank entries
// are ignored.
func NewAllowList(exts []string) AllowList {
	allowed := make(AllowList, len(exts))
	for _, ext := range exts {
		if ext = NormalizeExtension(ext); ext != "" {
			allowed[ext] = true
		}
	}
	return allowed
}

// Allows reports whether ext is in the list. The empty extension is never allowed.
func (a AllowList) Allows(ext string) bool {
	return ext != "" && a[ext]
}

// Sorted returns the extensions in alphabetical order.
func (a AllowList) Sorted() []string {
	exts := make([]string, 0, len(a))
	for ext := range a {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
