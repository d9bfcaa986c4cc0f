package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/krishkalaria12/snap-upload/apperror"
	"github.com/krishkalaria12/snap-upload/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

const imagesCollection = "images"

type imageDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Filename     string        `bson:"filename"`
	OriginalName string        `bson:"originalName"`
	StoredPath   string        `bson:"storedPath"`
	SizeBytes    int64         `bson:"sizeBytes"`
	MediaType    string        `bson:"mediaType"`
	CreatedAt    time.Time     `bson:"createdAt"`
}

func (d *imageDocument) toRecord() models.ImageRecord {
	return models.ImageRecord{
		ID:           d.ID.Hex(),
		Filename:     d.Filename,
		OriginalName: d.OriginalName,
		StoredPath:   d.StoredPath,
		SizeBytes:    d.SizeBytes,
		MediaType:    d.MediaType,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// MongoStore keeps records in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    *zap.Logger
}

func OpenMongo(ctx context.Context, uri, dbName string, log *zap.Logger) (*MongoStore, error) {
	if dbName == "" {
		dbName = "image_upload"
	}

	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	store := &MongoStore{
		client: client,
		coll:   client.Database(dbName).Collection(imagesCollection),
		log:    log,
	}

	if err := store.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	_, err = store.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create createdAt index: %w", err)
	}

	log.Info("Connected to MongoDB", zap.String("database", dbName), zap.String("collection", imagesCollection))
	return store, nil
}

func (s *MongoStore) Create(ctx context.Context, record *models.ImageRecord) (*models.ImageRecord, error) {
	prepared, err := prepareRecord(record)
	if err != nil {
		return nil, err
	}

	doc := imageDocument{
		ID:           bson.NewObjectID(),
		Filename:     prepared.Filename,
		OriginalName: prepared.OriginalName,
		StoredPath:   prepared.StoredPath,
		SizeBytes:    prepared.SizeBytes,
		MediaType:    prepared.MediaType,
		// BSON dates have millisecond precision
		CreatedAt: prepared.CreatedAt.Truncate(time.Millisecond),
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, classifyMongoError("Failed to save image metadata", err)
	}

	stored := doc.toRecord()
	return &stored, nil
}

func (s *MongoStore) ListAll(ctx context.Context) ([]models.ImageRecord, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})

	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, classifyMongoError("Failed to fetch images", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []imageDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classifyMongoError("Failed to fetch images", err)
	}

	records := make([]models.ImageRecord, 0, len(docs))
	for i := range docs {
		records = append(records, docs[i].toRecord())
	}
	return records, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return classifyMongoError("Database unavailable", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}

func classifyMongoError(message string, err error) error {
	if isConnectionError(err) ||
		mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) {
		return apperror.StorageUnavailable(message, err)
	}
	return apperror.Persistence(message, err)
}
