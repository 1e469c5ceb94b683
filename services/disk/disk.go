package disk

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"churn/filestore"

	log "github.com/sirupsen/logrus"
)

var _ filestore.FileManager = (*DiskDriver)(nil)

// DiskDriver stores artifacts under a base directory, analogous to a bucket.
type DiskDriver struct {
	filestore.Layout
	baseDir string
}

func New(baseDir string) *DiskDriver {
	return &DiskDriver{Layout: filestore.Layout{Root: baseDir}, baseDir: baseDir}
}

func MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (dd *DiskDriver) Create(path, fileName string, reader io.Reader) error {
	if err := MkdirAll(path); err != nil {
		log.WithError(err).Errorln("Failed to create dir")
		return err
	}

	file, err := os.Create(filepath.Join(path, fileName))
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(file, reader)
	return err
}

// Get opens a file in read only mode.
// Caller should take care of closing the returned io.ReadCloser.
func (dd *DiskDriver) Get(path, fileName string) (io.ReadCloser, error) {
	log.WithFields(log.Fields{
		"Path":     path,
		"FileName": fileName,
	}).Debug("DiskDriver Opening file")

	return os.OpenFile(filepath.Join(path, fileName), os.O_RDONLY, 0444)
}

func (dd *DiskDriver) GetBucketName() string {
	return dd.baseDir
}

func (dd *DiskDriver) GetObjectSize(path, fileName string) (int64, error) {
	objInfo, err := os.Stat(filepath.Join(path, fileName))
	if err != nil {
		return 0, err
	}
	return objInfo.Size(), nil
}

// ListFiles lists files present in a directory.
func (dd *DiskDriver) ListFiles(path string) []string {
	var files []string
	entries, err := os.ReadDir(path)
	if err != nil {
		log.WithError(err).Errorln("Failed to read directory contents")
		return files
	}

	for _, entry := range entries {
		files = append(files, strings.TrimSuffix(path, "/")+"/"+entry.Name())
	}
	return files
}
