package file

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// StorageClient abstracts the object store so handlers can be tested without
// a real bucket
type StorageClient interface {
	UploadFile(objectName string, fileData io.Reader) error
	DownloadFile(objectName string) (io.ReadCloser, int64, error)
	DeleteFile(objectName string) error
	ListObjects(prefix string) ([]string, error)
}

// CloudStorageClient stores objects in a Google Cloud Storage bucket
type CloudStorageClient struct {
	BucketName string
	Ctx        context.Context
	Client     *storage.Client
}

// NewCloudStorageClient creates a storage client using application default
// credentials
func NewCloudStorageClient(bucketName string) (*CloudStorageClient, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %v", err)
	}
	return &CloudStorageClient{
		BucketName: bucketName,
		Ctx:        ctx,
		Client:     client,
	}, nil
}

// UploadFile writes the reader's content to the bucket under objectName
func (c *CloudStorageClient) UploadFile(objectName string, fileData io.Reader) error {
	bucket := c.Client.Bucket(c.BucketName)
	obj := bucket.Object(objectName)
	wc := obj.NewWriter(c.Ctx)
	if _, err := io.Copy(wc, fileData); err != nil {
		return fmt.Errorf("failed to write data to object: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close object writer: %v", err)
	}
	return nil
}

// DownloadFile opens a reader over the stored object. The caller must close
// the reader. Size is -1 when the object size is unknown.
func (c *CloudStorageClient) DownloadFile(objectName string) (io.ReadCloser, int64, error) {
	obj := c.Client.Bucket(c.BucketName).Object(objectName)
	reader, err := obj.NewReader(c.Ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open object reader: %v", err)
	}
	return reader, reader.Attrs.Size, nil
}

// DeleteFile removes the stored object
func (c *CloudStorageClient) DeleteFile(objectName string) error {
	obj := c.Client.Bucket(c.BucketName).Object(objectName)
	if err := obj.Delete(c.Ctx); err != nil {
		return fmt.Errorf("failed to delete object: %v", err)
	}
	return nil
}

// ListObjects returns the names of every object under the given prefix
func (c *CloudStorageClient) ListObjects(prefix string) ([]string, error) {
	it := c.Client.Bucket(c.BucketName).Objects(c.Ctx, &storage.Query{Prefix: prefix})
	names := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %v", err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}
