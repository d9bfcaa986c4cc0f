package handler

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var servedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// StoredFileHeaders fixes the Content-Type of a served upload. Stored names
// keep the client's extension, so anything that is not an allowed image
// extension goes out as an opaque download instead of being rendered.
func StoredFileHeaders(c *fiber.Ctx) error {
	ext := strings.ToLower(filepath.Ext(c.Path()))
	if contentType, ok := servedImageTypes[ext]; ok {
		c.Set(fiber.HeaderContentType, contentType)
		return nil
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	c.Set(fiber.HeaderContentDisposition, "attachment")
	return nil
}
