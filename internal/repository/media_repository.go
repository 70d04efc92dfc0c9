package repository

import (
	"context"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MediaRepository stores listing photos and videos in GridFS. Files are
// addressed by their hex object id, which is also the public /media path.
type MediaRepository struct {
	DB *mongo.Database
}

func NewMediaRepository(client *mongo.Client, dbName string) *MediaRepository {
	return &MediaRepository{DB: client.Database(dbName)}
}

func (r *MediaRepository) Save(ctx context.Context, filename, contentType string, src io.Reader) (string, error) {
	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return "", err
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	stream, err := bucket.OpenUploadStream(filename, opts)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	if _, err := io.Copy(stream, src); err != nil {
		return "", err
	}
	return stream.FileID.(primitive.ObjectID).Hex(), nil
}

func (r *MediaRepository) Get(ctx context.Context, id string) ([]byte, string, error) {
	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return nil, "", err
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, "", fmt.Errorf("bad media id %q: %w", id, err)
	}

	stream, err := bucket.OpenDownloadStream(objID)
	if err != nil {
		return nil, "", err
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, "", err
	}

	contentType := "application/octet-stream"
	if raw := stream.GetFile().Metadata; raw != nil {
		var meta struct {
			ContentType string `bson:"contentType"`
		}
		if bson.Unmarshal(raw, &meta) == nil && meta.ContentType != "" {
			contentType = meta.ContentType
		}
	}
	return data, contentType, nil
}

func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return err
	}
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("bad media id %q: %w", id, err)
	}
	return bucket.Delete(objID)
}
