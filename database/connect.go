package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/krishkalaria12/snap-upload/apperror"
	"github.com/krishkalaria12/snap-upload/models"
	"go.uber.org/zap"
)

// ImageStore persists image metadata records.
type ImageStore interface {
	// Create assigns an ID, defaults CreatedAt when unset and stores the record.
	Create(ctx context.Context, record *models.ImageRecord) (*models.ImageRecord, error)
	// ListAll returns every record, newest first.
	ListAll(ctx context.Context) ([]models.ImageRecord, error)
	// Ping reports whether the backing store is reachable right now.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options configure Open.
type Options struct {
	URL          string
	DatabaseName string
	Logger       *zap.Logger
}

// Open picks a backend from the URL scheme, connects and verifies the
// connection. A store that cannot be reached is an error.
func Open(ctx context.Context, opts Options) (ImageStore, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	scheme, rest, ok := strings.Cut(opts.URL, "://")
	if !ok {
		return nil, fmt.Errorf("invalid DATABASE_URL %q: missing scheme", opts.URL)
	}

	var (
		store ImageStore
		err   error
	)
	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		store, err = OpenMongo(ctx, opts.URL, opts.DatabaseName, log)
	case "postgres", "postgresql":
		store, err = OpenPostgres(ctx, opts.URL, log)
	case "badger":
		store, err = OpenBadger(rest, log)
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", scheme)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

var timeNow = time.Now

// prepareRecord applies store defaults and rejects records missing required
// fields. The media type allow-list is checked before this point.
func prepareRecord(record *models.ImageRecord) (models.ImageRecord, error) {
	if record == nil {
		return models.ImageRecord{}, apperror.Persistence("Failed to save image metadata", errors.New("nil record"))
	}

	var missing []string
	if record.Filename == "" {
		missing = append(missing, "filename")
	}
	if record.OriginalName == "" {
		missing = append(missing, "originalName")
	}
	if record.StoredPath == "" {
		missing = append(missing, "storedPath")
	}
	if record.MediaType == "" {
		missing = append(missing, "mediaType")
	}
	if record.SizeBytes < 0 {
		missing = append(missing, "sizeBytes")
	}
	if len(missing) > 0 {
		return models.ImageRecord{}, apperror.Persistence("Failed to save image metadata",
			fmt.Errorf("malformed record: invalid %s", strings.Join(missing, ", ")))
	}

	prepared := *record
	if prepared.CreatedAt.IsZero() {
		prepared.CreatedAt = timeNow()
	}
	prepared.CreatedAt = prepared.CreatedAt.UTC()
	return prepared, nil
}

// sortNewestFirst orders by CreatedAt descending, then ID descending.
func sortNewestFirst(records []models.ImageRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
}
