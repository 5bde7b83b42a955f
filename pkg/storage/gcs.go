package storage

import (
	"context"
	"fmt"
	"path"

	gcs "cloud.google.com/go/storage"
	"github.com/rotisserie/eris"
)

// gcsClient uploads objects to a Google Cloud Storage bucket. The bucket is
// expected to allow public reads so that the extraction collaborator can
// fetch the image by URL.
type gcsClient struct {
	bucket *gcs.BucketHandle
	name   string
	folder string
}

// NewGCSClient creates a storage Client backed by a GCS bucket. Credentials
// come from the ambient environment (ADC).
func NewGCSClient(ctx context.Context, bucketName, folder string) (Client, error) {
	gc, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "storage: create gcs client")
	}
	if folder == "" {
		folder = "farm-crops"
	}
	return &gcsClient{
		bucket: gc.Bucket(bucketName),
		name:   bucketName,
		folder: folder,
	}, nil
}

func (c *gcsClient) Upload(ctx context.Context, obj Object) (*UploadResponse, error) {
	objectName := path.Join(c.folder, obj.Name)

	w := c.bucket.Object(objectName).NewWriter(ctx)
	if obj.ContentType != "" {
		w.ContentType = obj.ContentType
	}
	if _, err := w.Write(obj.Data); err != nil {
		_ = w.Close()
		return nil, eris.Wrapf(err, "storage: write gcs object %s", objectName)
	}
	if err := w.Close(); err != nil {
		return nil, eris.Wrapf(err, "storage: finalize gcs object %s", objectName)
	}

	return &UploadResponse{
		URL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.name, objectName),
		ID:  objectName,
	}, nil
}
