package models

import (
	"time"
)

// ImageRecord is the metadata kept for every stored upload.
type ImageRecord struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	StoredPath   string    `json:"storedPath"`
	SizeBytes    int64     `json:"sizeBytes"`
	MediaType    string    `json:"mediaType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ImageResponse is the public projection of an ImageRecord. It never
// carries the on-disk path.
type ImageResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (r *ImageRecord) ToResponse(url string) ImageResponse {
	return ImageResponse{
		ID:         r.ID,
		Name:       r.OriginalName,
		URL:        url,
		Size:       r.SizeBytes,
		UploadedAt: r.CreatedAt,
	}
}
