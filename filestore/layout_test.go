package filestore

import (
	"testing"

	"churn/model"

	"github.com/stretchr/testify/assert"
)

func TestLayoutModelPaths(t *testing.T) {
	l := Layout{Root: "/usr/local/var/churn"}

	assert.Equal(t, "/usr/local/var/churn/churn/", l.GetPipelineDir())
	assert.Equal(t, "/usr/local/var/churn/churn/models/random_forest/", l.GetModelDir(model.FamilyRandomForest))

	dir, name := l.GetModelFilePathAndName(model.FamilyGradientBoosting)
	assert.Equal(t, "/usr/local/var/churn/churn/models/gradient_boosting/", dir)
	assert.Equal(t, "model.json", name)

	dir, name = l.GetMetricsFilePathAndName(model.FamilyLogisticRegression)
	assert.Equal(t, l.GetModelDir(model.FamilyLogisticRegression), dir)
	assert.Equal(t, "metrics.json", name)

	_, name = l.GetFeatureImportanceFilePathAndName(model.FamilyRandomForest)
	assert.Equal(t, "feature_importance.csv", name)

	_, name = l.GetAttributionDataFilePathAndName(model.FamilyRandomForest)
	assert.Equal(t, "attribution_data.json", name)
}

func TestLayoutPipelinePaths(t *testing.T) {
	l := Layout{Root: "base"}

	dir, name := l.GetBundleFilePathAndName()
	assert.Equal(t, "base/churn/", dir)
	assert.Equal(t, "bundle.json", name)

	_, name = l.GetComparisonFilePathAndName()
	assert.Equal(t, "model_comparison.json", name)

	_, name = l.GetBestModelFilePathAndName()
	assert.Equal(t, "best_model.txt", name)

	dir, name = l.GetScoredOutputFilePathAndName("run-42")
	assert.Equal(t, "base/churn/scored/", dir)
	assert.Equal(t, "scored_run-42.csv", name)
}

func TestLayoutEmptyRootIsBucketRelative(t *testing.T) {
	l := Layout{}
	assert.Equal(t, "churn/", l.GetPipelineDir())
	assert.Equal(t, "churn/models/logistic_regression/", l.GetModelDir(model.FamilyLogisticRegression))
}
