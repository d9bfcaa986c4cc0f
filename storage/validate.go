package storage

import (
	"mime"
	"strings"

	"github.com/krishkalaria12/snap-upload/apperror"
)

// AllowedMediaTypes maps every accepted media type to the extension used
// when the uploaded file name has none.
//
// The media type is whatever the client declared for the multipart part;
// file content is not sniffed.
var AllowedMediaTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// NormalizeMediaType lower-cases the type and drops any parameters.
func NormalizeMediaType(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		return parsed
	}
	return strings.ToLower(mediaType)
}

func ValidateMediaType(mediaType string) error {
	if _, ok := AllowedMediaTypes[NormalizeMediaType(mediaType)]; ok {
		return nil
	}
	return apperror.Validationf("Invalid file type %q. Only JPEG, PNG, GIF and WebP images are allowed", mediaType)
}
