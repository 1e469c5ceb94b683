package s3

import (
	"bytes"
	"io"
	"io/ioutil"

	"churn/filestore"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	log "github.com/sirupsen/logrus"
)

var _ filestore.FileManager = (*S3Driver)(nil)

type S3Driver struct {
	filestore.Layout
	s3         *s3.S3
	BucketName string
	Region     string
}

func New(bucketName, region string) *S3Driver {
	sess := session.New()
	client := s3.New(sess, aws.NewConfig().WithRegion(region))
	return &S3Driver{s3: client, BucketName: bucketName, Region: region}
}

func (sd *S3Driver) Create(dir, fileName string, reader io.Reader) error {
	// PutObject needs a seekable body.
	data, err := ioutil.ReadAll(reader)
	if err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(sd.BucketName),
		Body:   bytes.NewReader(data),
		Key:    aws.String(dir + fileName),
	}
	_, err = sd.s3.PutObject(input)
	return err
}

func (sd *S3Driver) Get(dir, fileName string) (io.ReadCloser, error) {
	input := s3.GetObjectInput{
		Bucket: aws.String(sd.BucketName),
		Key:    aws.String(dir + fileName),
	}
	op, err := sd.s3.GetObject(&input)
	if err != nil {
		return nil, err
	}
	return op.Body, nil
}

func (sd *S3Driver) GetBucketName() string {
	return sd.BucketName
}

func (sd *S3Driver) GetObjectSize(dir, fileName string) (int64, error) {
	input := s3.HeadObjectInput{
		Bucket: aws.String(sd.BucketName),
		Key:    aws.String(dir + fileName),
	}
	op, err := sd.s3.HeadObject(&input)
	if err != nil {
		return 0, err
	}
	return *op.ContentLength, nil
}

// ListFiles lists object keys under a prefix.
func (sd *S3Driver) ListFiles(dir string) []string {
	var files []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(sd.BucketName),
		Prefix: aws.String(dir),
	}
	err := sd.s3.ListObjectsV2Pages(input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			files = append(files, *obj.Key)
		}
		return true
	})
	if err != nil {
		log.WithError(err).Errorln("Failed to list bucket objects")
	}
	return files
}
