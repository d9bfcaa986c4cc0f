package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/krishkalaria12/snap-upload/apperror"
	"github.com/krishkalaria12/snap-upload/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type imageRow struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	Filename     string    `gorm:"not null"`
	OriginalName string    `gorm:"not null"`
	StoredPath   string    `gorm:"not null"`
	SizeBytes    int64     `gorm:"not null"`
	MediaType    string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;index"`
}

func (imageRow) TableName() string {
	return "images"
}

func (r *imageRow) toRecord() models.ImageRecord {
	return models.ImageRecord{
		ID:           r.ID,
		Filename:     r.Filename,
		OriginalName: r.OriginalName,
		StoredPath:   r.StoredPath,
		SizeBytes:    r.SizeBytes,
		MediaType:    r.MediaType,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

// PostgresStore keeps records in a Postgres table through gorm.
type PostgresStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func OpenPostgres(ctx context.Context, dsn string, log *zap.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB object: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	store := &PostgresStore{db: db, log: log}
	if err := store.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&imageRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate images table: %w", err)
	}

	log.Info("Connected to Postgres", zap.String("table", imageRow{}.TableName()))
	return store, nil
}

func (s *PostgresStore) Create(ctx context.Context, record *models.ImageRecord) (*models.ImageRecord, error) {
	prepared, err := prepareRecord(record)
	if err != nil {
		return nil, err
	}

	row := imageRow{
		ID:           uuid.NewString(),
		Filename:     prepared.Filename,
		OriginalName: prepared.OriginalName,
		StoredPath:   prepared.StoredPath,
		SizeBytes:    prepared.SizeBytes,
		MediaType:    prepared.MediaType,
		// timestamptz keeps microseconds
		CreatedAt: prepared.CreatedAt.Truncate(time.Microsecond),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, classifySQLError("Failed to save image metadata", err)
	}

	stored := row.toRecord()
	return &stored, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]models.ImageRecord, error) {
	var rows []imageRow
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, classifySQLError("Failed to fetch images", err)
	}

	records := make([]models.ImageRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toRecord())
	}
	return records, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperror.StorageUnavailable("Database unavailable", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperror.StorageUnavailable("Database unavailable", err)
	}
	return nil
}

func (s *PostgresStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func classifySQLError(message string, err error) error {
	if isConnectionError(err) || errors.Is(err, gorm.ErrInvalidDB) {
		return apperror.StorageUnavailable(message, err)
	}
	return apperror.Persistence(message, err)
}
