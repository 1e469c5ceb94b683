package filestore

import (
	"fmt"

	"churn/model"
)

// Layout computes artifact paths relative to a root prefix. Drivers embed it
// so every backend stores artifacts under the identical structure; only the
// root differs (base directory on disk, empty prefix inside a bucket).
type Layout struct {
	Root string
}

func (l Layout) GetPipelineDir() string {
	if l.Root == "" {
		return "churn/"
	}
	return l.Root + "/churn/"
}

func (l Layout) GetModelDir(family model.Family) string {
	return fmt.Sprintf("%smodels/%s/", l.GetPipelineDir(), family)
}

func (l Layout) GetModelFilePathAndName(family model.Family) (string, string) {
	return l.GetModelDir(family), "model.json"
}

func (l Layout) GetMetricsFilePathAndName(family model.Family) (string, string) {
	return l.GetModelDir(family), "metrics.json"
}

func (l Layout) GetFeatureImportanceFilePathAndName(family model.Family) (string, string) {
	return l.GetModelDir(family), "feature_importance.csv"
}

func (l Layout) GetAttributionDataFilePathAndName(family model.Family) (string, string) {
	return l.GetModelDir(family), "attribution_data.json"
}

func (l Layout) GetBundleFilePathAndName() (string, string) {
	return l.GetPipelineDir(), "bundle.json"
}

func (l Layout) GetComparisonFilePathAndName() (string, string) {
	return l.GetPipelineDir(), "model_comparison.json"
}

func (l Layout) GetBestModelFilePathAndName() (string, string) {
	return l.GetPipelineDir(), "best_model.txt"
}

func (l Layout) GetScoredOutputFilePathAndName(runID string) (string, string) {
	return l.GetPipelineDir() + "scored/", fmt.Sprintf("scored_%s.csv", runID)
}
