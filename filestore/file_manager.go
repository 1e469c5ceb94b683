// Package filestore abstracts where pipeline artifacts live. Drivers exist
// for local disk, GCS and S3; all of them lay artifacts out the same way.
package filestore

import (
	"io"

	"churn/model"
)

type FileManager interface {
	Create(dir, fileName string, reader io.Reader) error
	Get(dir, fileName string) (io.ReadCloser, error)
	GetObjectSize(dir, fileName string) (int64, error)
	ListFiles(dir string) []string
	GetBucketName() string

	GetPipelineDir() string
	GetModelDir(family model.Family) string
	GetModelFilePathAndName(family model.Family) (string, string)
	GetMetricsFilePathAndName(family model.Family) (string, string)
	GetFeatureImportanceFilePathAndName(family model.Family) (string, string)
	GetAttributionDataFilePathAndName(family model.Family) (string, string)
	GetBundleFilePathAndName() (string, string)
	GetComparisonFilePathAndName() (string, string)
	GetBestModelFilePathAndName() (string, string)
	GetScoredOutputFilePathAndName(runID string) (string, string)
}
