package enrichment

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"media-browser/internal/logging"
	"media-browser/internal/media"
)

// Property keys with a dedicated FileProperties field.
const (
	KeyContentType      = "ContentType"
	KeyDuration         = "Media.Duration"
	KeyImageWidth       = "Image.HorizontalSize"
	KeyImageHeight      = "Image.VerticalSize"
	KeyVideoWidth       = "Video.FrameWidth"
	KeyVideoHeight      = "Video.FrameHeight"
	KeyRating           = "Rating"
	KeyRatingText       = "RatingText"
	KeyKeywords         = "Keywords"
	KeyCameraModel      = "Photo.CameraModel"
	KeyDateTaken        = "Photo.DateTaken"
	KeyLatitudeDecimal  = "GPS.LatitudeDecimal"
	KeyLongitudeDecimal = "GPS.LongitudeDecimal"
)

const lineSeparator = "\r\n"

// Property is one key/value line. Value is already encoded, see Quote,
// FormatInt, FormatFloat and ArrayToString.
type Property struct {
	Key   string
	Value string
}

// FormatProperties renders properties sorted by key.
func FormatProperties(props []Property) string {
	sorted := make([]Property, len(props))
	copy(sorted, props)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	lines := make([]string, len(sorted))
	for i, p := range sorted {
		lines[i] = p.Key + "\t" + p.Value
	}
	return strings.Join(lines, lineSeparator)
}

// Quote encodes a string value.
func Quote(s string) string {
	return `"` + s + `"`
}

// Unquote strips the quotes of a string value. A value that is not quoted
// is returned unchanged.
func Unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// FormatInt encodes an integer value.
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// FormatFloat encodes a floating-point value in its shortest form.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseProperties maps property text onto FileProperties. Missing keys
// leave their field zero; unparsable numbers are logged and left zero.
func ParseProperties(text string) media.FileProperties {
	var props media.FileProperties
	var more []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "\t")
		if !ok {
			logging.Debug("Ignoring property line without a value: %q", line)
			continue
		}

		switch key {
		case KeyContentType:
			props.ContentType = Unquote(value)
		case KeyDuration:
			props.Duration = parseInt(key, value)
		case KeyImageWidth, KeyVideoWidth:
			if v := parseInt(key, value); v != 0 {
				props.Width = v
			}
		case KeyImageHeight, KeyVideoHeight:
			if v := parseInt(key, value); v != 0 {
				props.Height = v
			}
		case KeyRating:
			props.Rating = parseInt(key, value)
		case KeyRatingText:
			props.RatingText = Unquote(value)
		case KeyKeywords:
			props.Keywords = value
		case KeyCameraModel:
			props.CameraModel = Unquote(value)
		case KeyDateTaken:
			props.DateTaken = parseFloat(key, value)
		case KeyLatitudeDecimal:
			props.LatitudeDecimal = parseFloat(key, value)
		case KeyLongitudeDecimal:
			props.LongitudeDecimal = parseFloat(key, value)
		default:
			more = append(more, line)
		}
	}

	props.More = strings.Join(more, "\n")
	return props
}

func parseInt(key, value string) int64 {
	if v, err := strconv.ParseInt(value, 10, 64); err == nil {
		return v
	}
	// Some services report integral values as floats.
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logging.Debug("Ignoring non-numeric %s value %q", key, value)
		return 0
	}
	return int64(f)
}

func parseFloat(key, value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logging.Debug("Ignoring non-numeric %s value %q", key, value)
		return 0
	}
	return f
}

// ErrNotArray is returned by StringToArray for text that is not bracketed.
var ErrNotArray = errors.New("not an array")

// ArrayToString encodes a list of strings as an array value.
func ArrayToString(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = Quote(v)
	}
	return "[" + strings.Join(quoted, ",") + "]"
}

// StringToArray decodes an array value such as FileProperties.Keywords.
// An empty string is an empty list. Elements may be separated by "," or
// ", " and quoted elements may themselves contain commas.
func StringToArray(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, ErrNotArray
	}
	body := s[1 : len(s)-1]
	if strings.TrimSpace(body) == "" {
		return []string{}, nil
	}

	var values []string
	for len(body) > 0 {
		body = strings.TrimLeft(body, " ")
		var elem string
		if strings.HasPrefix(body, `"`) {
			end := closingQuote(body)
			if end < 0 {
				return nil, errors.New("unterminated string in array")
			}
			elem = body[1:end]
			body = strings.TrimLeft(body[end+1:], " ")
		} else {
			i := strings.IndexByte(body, ',')
			if i < 0 {
				i = len(body)
			}
			elem = strings.TrimSpace(body[:i])
			body = body[i:]
		}
		values = append(values, elem)

		if body == "" {
			break
		}
		if body[0] != ',' {
			return nil, errors.New("expected ',' between array elements")
		}
		body = body[1:]
	}
	return values, nil
}

// closingQuote finds the quote that ends the string starting at s[0]: the
// first quote followed by optional spaces and then ',' or the end.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] != '"' {
			continue
		}
		rest := strings.TrimLeft(s[i+1:], " ")
		if rest == "" || rest[0] == ',' {
			return i
		}
	}
	return -1
}
