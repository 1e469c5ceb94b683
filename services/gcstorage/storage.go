package gcstorage

import (
	"context"
	"io"

	"churn/filestore"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	log "github.com/sirupsen/logrus"
)

var _ filestore.FileManager = (*GCSDriver)(nil)

type GCSDriver struct {
	filestore.Layout
	client     *storage.Client
	BucketName string
}

func New(bucketName string) (*GCSDriver, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSDriver{
		BucketName: bucketName,
		client:     client,
	}, nil
}

func (gcsd *GCSDriver) Create(dir, fileName string, reader io.Reader) error {
	ctx := context.Background()
	obj := gcsd.client.Bucket(gcsd.BucketName).Object(dir + fileName)
	w := obj.NewWriter(ctx)
	if _, err := io.Copy(w, reader); err != nil {
		return err
	}
	return w.Close()
}

func (gcsd *GCSDriver) Get(dir, fileName string) (io.ReadCloser, error) {
	ctx := context.Background()
	obj := gcsd.client.Bucket(gcsd.BucketName).Object(dir + fileName)
	return obj.NewReader(ctx)
}

func (gcsd *GCSDriver) GetBucketName() string {
	return gcsd.BucketName
}

func (gcsd *GCSDriver) GetObjectSize(dir, fileName string) (int64, error) {
	ctx := context.Background()
	attrs, err := gcsd.client.Bucket(gcsd.BucketName).Object(dir + fileName).Attrs(ctx)
	if err != nil {
		return 0, err
	}
	return attrs.Size, nil
}

// ListFiles lists object names under a prefix.
func (gcsd *GCSDriver) ListFiles(dir string) []string {
	ctx := context.Background()
	var files []string
	it := gcsd.client.Bucket(gcsd.BucketName).Objects(ctx, &storage.Query{Prefix: dir})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.WithError(err).Errorln("Failed to list bucket objects")
			return files
		}
		files = append(files, attrs.Name)
	}
	return files
}
