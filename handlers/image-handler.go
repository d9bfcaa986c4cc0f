package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-upload/apperror"
	"github.com/krishkalaria12/snap-upload/database"
	"github.com/krishkalaria12/snap-upload/models"
	"github.com/krishkalaria12/snap-upload/storage"
	"go.uber.org/zap"
)

const (
	uploadField = "image"
	dbTimeout   = 10 * time.Second
)

type ImageHandler struct {
	store database.ImageStore
	files *storage.Local
	log   *zap.Logger
}

func NewImageHandler(store database.ImageStore, files *storage.Local, log *zap.Logger) *ImageHandler {
	return &ImageHandler{
		store: store,
		files: files,
		log:   log,
	}
}

// UploadImage accepts a single multipart file in the "image" field.
func (h *ImageHandler) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile(uploadField)
	if err != nil || fileHeader == nil {
		return apperror.Validation("No file uploaded")
	}

	mediaType := storage.NormalizeMediaType(fileHeader.Header.Get(fiber.HeaderContentType))
	if err := storage.ValidateMediaType(mediaType); err != nil {
		return err
	}
	if fileHeader.Size > h.files.MaxSize() {
		return storage.FileTooLarge(h.files.MaxSize())
	}

	src, err := fileHeader.Open()
	if err != nil {
		return apperror.Internal("Error opening the file", err)
	}
	defer src.Close()

	stored, err := h.files.Save(src, fileHeader.Filename, mediaType)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), dbTimeout)
	defer cancel()

	record, err := h.store.Create(ctx, &models.ImageRecord{
		Filename:     stored.Filename,
		OriginalName: fileHeader.Filename,
		StoredPath:   stored.Path,
		SizeBytes:    stored.Size,
		MediaType:    mediaType,
	})
	if err != nil {
		// The file stays on disk without a record; nothing reclaims it.
		h.log.Error("Failed to record image metadata",
			zap.String("filename", stored.Filename),
			zap.String("kind", apperror.KindOf(err).String()),
			zap.Error(err))
		return err
	}

	h.log.Info("Image uploaded",
		zap.String("id", record.ID),
		zap.String("filename", record.Filename),
		zap.String("mediaType", record.MediaType),
		zap.Int64("size", record.SizeBytes))

	url := PublicURL(c.Protocol(), c.Hostname(), record.Filename)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Image uploaded successfully",
		"data":    record.ToResponse(url),
	})
}

// ListImages returns every stored image, newest first.
func (h *ImageHandler) ListImages(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), dbTimeout)
	defer cancel()

	records, err := h.store.ListAll(ctx)
	if err != nil {
		h.log.Error("Failed to list images", zap.Error(err))
		return err
	}

	scheme, host := c.Protocol(), c.Hostname()
	images := make([]models.ImageResponse, 0, len(records))
	for i := range records {
		images = append(images, records[i].ToResponse(PublicURL(scheme, host, records[i].Filename)))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(images),
		"images":  images,
	})
}
