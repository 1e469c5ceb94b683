// Package artifacts persists and restores pipeline outputs through a
// filestore.FileManager: fitted models, evaluation metrics, feature
// importance, attribution data, the cross-family comparison, the best-model
// pointer and the preprocessing bundle.
package artifacts

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io/ioutil"
	"os"
	"strconv"
	"strings"
	"time"

	"churn/dataprep"
	"churn/explain"
	"churn/filestore"
	"churn/model"
	"churn/train"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var storeLog = log.WithField("prefix", "Artifacts")

// ErrArtifactNotFound reports that a requested artifact does not exist in
// the store.
var ErrArtifactNotFound = errors.New("artifact not found")

// FallbackFamily is served when the best-model pointer is missing or names
// an unknown family.
const FallbackFamily = model.FamilyGradientBoosting

// Store reads and writes pipeline artifacts at the layout fixed by the
// file manager. One store holds one generation; a new training run
// overwrites the previous generation in place.
type Store struct {
	fm filestore.FileManager
}

func NewStore(fm filestore.FileManager) *Store {
	return &Store{fm: fm}
}

func (s *Store) put(dir, name string, data []byte) error {
	if err := s.fm.Create(dir, name, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "failed to write artifact %s%s", dir, name)
	}
	return nil
}

// isNotFound distinguishes a genuinely absent object from permission or
// transient read failures, across the three storage backends.
func isNotFound(err error) bool {
	cause := errors.Cause(err)
	if os.IsNotExist(cause) || cause == storage.ErrObjectNotExist {
		return true
	}
	if aerr, ok := cause.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}

// get reads an artifact fully. A missing object maps to ErrArtifactNotFound;
// any other fetch failure surfaces as-is.
func (s *Store) get(dir, name string) ([]byte, error) {
	rc, err := s.fm.Get(dir, name)
	if err != nil {
		if isNotFound(err) {
			storeLog.WithFields(log.Fields{"dir": dir, "file": name}).Debug("Artifact not found")
			return nil, ErrArtifactNotFound
		}
		return nil, errors.Wrapf(err, "failed to fetch artifact %s%s", dir, name)
	}
	defer rc.Close()
	data, err := ioutil.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read artifact %s%s", dir, name)
	}
	return data, nil
}

func (s *Store) SaveModel(clf model.Classifier) error {
	data, err := model.Marshal(clf)
	if err != nil {
		return err
	}
	dir, name := s.fm.GetModelFilePathAndName(clf.Family())
	return s.put(dir, name, data)
}

func (s *Store) LoadModel(family model.Family) (model.Classifier, error) {
	dir, name := s.fm.GetModelFilePathAndName(family)
	data, err := s.get(dir, name)
	if err != nil {
		return nil, err
	}
	return model.Unmarshal(data)
}

func (s *Store) SaveMetrics(eval *train.EvaluationRecord) error {
	data, err := json.MarshalIndent(eval, "", "  ")
	if err != nil {
		return err
	}
	dir, name := s.fm.GetMetricsFilePathAndName(eval.Family)
	return s.put(dir, name, data)
}

func (s *Store) LoadMetrics(family model.Family) (*train.EvaluationRecord, error) {
	dir, name := s.fm.GetMetricsFilePathAndName(family)
	data, err := s.get(dir, name)
	if err != nil {
		return nil, err
	}
	var eval train.EvaluationRecord
	if err := json.Unmarshal(data, &eval); err != nil {
		return nil, errors.Wrap(err, "failed to decode metrics artifact")
	}
	return &eval, nil
}

// SaveFeatureImportance writes the ranked importance list as a two-column
// CSV with a header row.
func (s *Store) SaveFeatureImportance(family model.Family, imps []explain.FeatureImportance) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"feature", "importance"}); err != nil {
		return err
	}
	for _, imp := range imps {
		if err := w.Write([]string{imp.Feature, strconv.FormatFloat(imp.Importance, 'f', -1, 64)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	dir, name := s.fm.GetFeatureImportanceFilePathAndName(family)
	return s.put(dir, name, buf.Bytes())
}

func (s *Store) LoadFeatureImportance(family model.Family) ([]explain.FeatureImportance, error) {
	dir, name := s.fm.GetFeatureImportanceFilePathAndName(family)
	data, err := s.get(dir, name)
	if err != nil {
		return nil, err
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode importance artifact")
	}
	imps := make([]explain.FeatureImportance, 0, len(records))
	for i, rec := range records {
		if i == 0 || len(rec) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad importance value for feature %q", rec[0])
		}
		imps = append(imps, explain.FeatureImportance{Feature: rec[0], Importance: v})
	}
	return imps, nil
}

func (s *Store) SaveAttributionData(data *explain.AttributionData) error {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	dir, name := s.fm.GetAttributionDataFilePathAndName(data.Family)
	return s.put(dir, name, payload)
}

func (s *Store) LoadAttributionData(family model.Family) (*explain.AttributionData, error) {
	dir, name := s.fm.GetAttributionDataFilePathAndName(family)
	data, err := s.get(dir, name)
	if err != nil {
		return nil, err
	}
	var out explain.AttributionData
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode attribution artifact")
	}
	return &out, nil
}

// ComparisonDocument is the persisted cross-family comparison for one
// training generation.
type ComparisonDocument struct {
	RunID     string                `json:"run_id"`
	CreatedAt time.Time             `json:"created_at"`
	Models    []train.ComparisonRow `json:"models"`
}

func (s *Store) SaveComparison(runID string, rows []train.ComparisonRow) error {
	doc := ComparisonDocument{RunID: runID, CreatedAt: time.Now().UTC(), Models: rows}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	dir, name := s.fm.GetComparisonFilePathAndName()
	return s.put(dir, name, data)
}

func (s *Store) LoadComparison() (*ComparisonDocument, error) {
	dir, name := s.fm.GetComparisonFilePathAndName()
	data, err := s.get(dir, name)
	if err != nil {
		return nil, err
	}
	var doc ComparisonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode comparison artifact")
	}
	return &doc, nil
}

func (s *Store) SaveBestModel(family model.Family) error {
	dir, name := s.fm.GetBestModelFilePathAndName()
	return s.put(dir, name, []byte(string(family)+"\n"))
}

// LoadBestModel resolves the best-model pointer. A missing pointer or one
// naming an unknown family degrades to FallbackFamily with a warning rather
// than failing the caller.
func (s *Store) LoadBestModel() model.Family {
	dir, name := s.fm.GetBestModelFilePathAndName()
	data, err := s.get(dir, name)
	if err != nil {
		storeLog.WithField("fallback", FallbackFamily).
			Warn("Best-model pointer not found; using fallback family")
		return FallbackFamily
	}
	family := model.Family(strings.TrimSpace(string(data)))
	if !family.Valid() {
		storeLog.WithFields(log.Fields{"pointer": family, "fallback": FallbackFamily}).
			Warn("Best-model pointer names an unknown family; using fallback")
		return FallbackFamily
	}
	return family
}

func (s *Store) SaveBundle(b *dataprep.Bundle) error {
	data, err := b.Marshal()
	if err != nil {
		return err
	}
	dir, name := s.fm.GetBundleFilePathAndName()
	return s.put(dir, name, data)
}

func (s *Store) LoadBundle() (*dataprep.Bundle, error) {
	dir, name := s.fm.GetBundleFilePathAndName()
	data, err := s.get(dir, name)
	if err != nil {
		return nil, err
	}
	return dataprep.UnmarshalBundle(data)
}

// SaveScoredOutput writes a scored CSV under the run's scored directory.
func (s *Store) SaveScoredOutput(runID string, data []byte) error {
	dir, name := s.fm.GetScoredOutputFilePathAndName(runID)
	return s.put(dir, name, data)
}
