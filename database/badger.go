package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/krishkalaria12/snap-upload/apperror"
	"github.com/krishkalaria12/snap-upload/models"
	"go.uber.org/zap"
)

var imageKeyPrefix = []byte("image:")

var errBadgerClosed = errors.New("badger database is closed")

// BadgerStore keeps records as JSON documents in an embedded Badger
// database. An empty path opens an in-memory database.
type BadgerStore struct {
	db  *badger.DB
	log *zap.Logger
}

func OpenBadger(path string, log *zap.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}
	log.Info("Opened Badger store", zap.String("path", path), zap.Bool("inMemory", path == ""))
	return &BadgerStore{db: db, log: log}, nil
}

func imageKey(id string) []byte {
	return append(append([]byte{}, imageKeyPrefix...), id...)
}

func (s *BadgerStore) Create(ctx context.Context, record *models.ImageRecord) (*models.ImageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.StorageUnavailable("Failed to save image metadata", err)
	}
	if s.db.IsClosed() {
		return nil, apperror.StorageUnavailable("Failed to save image metadata", errBadgerClosed)
	}

	prepared, err := prepareRecord(record)
	if err != nil {
		return nil, err
	}
	prepared.ID = uuid.NewString()

	data, err := json.Marshal(prepared)
	if err != nil {
		return nil, apperror.Persistence("Failed to save image metadata", fmt.Errorf("failed to marshal record: %w", err))
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(imageKey(prepared.ID), data)
	})
	if err != nil {
		return nil, s.classify("Failed to save image metadata", err)
	}

	return &prepared, nil
}

func (s *BadgerStore) ListAll(ctx context.Context) ([]models.ImageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.StorageUnavailable("Failed to fetch images", err)
	}
	if s.db.IsClosed() {
		return nil, apperror.StorageUnavailable("Failed to fetch images", errBadgerClosed)
	}

	records := make([]models.ImageRecord, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = imageKeyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var record models.ImageRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("malformed record %s: %w", it.Item().Key(), err)
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, s.classify("Failed to fetch images", err)
	}

	sortNewestFirst(records)
	return records, nil
}

func (s *BadgerStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperror.StorageUnavailable("Database unavailable", err)
	}
	if s.db.IsClosed() {
		return apperror.StorageUnavailable("Database unavailable", errBadgerClosed)
	}
	return nil
}

func (s *BadgerStore) Close(context.Context) error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

func (s *BadgerStore) classify(message string, err error) error {
	if s.db.IsClosed() || isConnectionError(err) {
		return apperror.StorageUnavailable(message, err)
	}
	return apperror.Persistence(message, err)
}
