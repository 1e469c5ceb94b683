package main

import (
	"flag"

	"churn/artifacts"
	C "churn/config"
	"churn/dataprep"
	"churn/explain"
	"churn/filestore"
	"churn/predict"
	serviceDisk "churn/services/disk"
	serviceGCS "churn/services/gcstorage"
	serviceS3 "churn/services/s3"
	"churn/table"
	"churn/train"
	"churn/util"

	log "github.com/sirupsen/logrus"
)

func main() {
	envFlag := flag.String("env", C.DEVELOPMENT, "")
	bucketNameFlag := flag.String("bucket_name", "", "Artifact bucket for staging/production")
	localDiskTmpDirFlag := flag.String("local_disk_tmp_dir", "/usr/local/var/churn/local_disk/tmp", "")
	awsRegionFlag := flag.String("aws_region", "", "Set to store artifacts on S3 instead of GCS")
	inputFlag := flag.String("input", "", "Optional: churn_features CSV export. Empty loads from the warehouse")

	dbHost := flag.String("db_host", "", "")
	dbPort := flag.Int("db_port", 5432, "")
	dbUser := flag.String("db_user", "", "")
	dbName := flag.String("db_name", "", "")
	dbPass := flag.String("db_pass", "", "")

	flag.Parse()

	defer util.RecoverAndLog("Task#TrainChurnModels")

	C.InitConf(&C.Configuration{
		AppName:         "train_churn_models_job",
		Env:             *envFlag,
		BucketName:      *bucketNameFlag,
		LocalDiskTmpDir: *localDiskTmpDirFlag,
		DBInfo: C.DBConf{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Name:     *dbName,
			Password: *dbPass,
		},
	})
	if C.IsDevelopment() {
		log.SetLevel(log.DebugLevel)
	}

	fileManager := initFileManager(*envFlag, *bucketNameFlag, *localDiskTmpDirFlag, *awsRegionFlag)
	store := artifacts.NewStore(fileManager)

	t, err := loadFeatures(*inputFlag)
	if err != nil {
		log.WithError(err).Fatal("Failed to load churn_features")
	}

	prepared, err := dataprep.PrepareFeatures(t, dataprep.TargetColumn, train.TestFraction, train.Seed)
	if err != nil {
		log.WithError(err).Fatal("Failed to prepare features")
	}

	result, err := train.TrainAndEvaluate(prepared)
	if err != nil {
		log.WithError(err).Fatal("Training run failed")
	}

	bundle := dataprep.NewBundle(result.RunID, prepared, result.Scaler)
	if err := store.SaveBundle(bundle); err != nil {
		log.WithError(err).Fatal("Failed to persist preprocessing bundle")
	}

	for family, clf := range result.Models {
		if err := store.SaveModel(clf); err != nil {
			log.WithError(err).WithField("family", family).Fatal("Failed to persist model")
		}
		if err := store.SaveMetrics(result.Evaluations[family]); err != nil {
			log.WithError(err).WithField("family", family).Fatal("Failed to persist metrics")
		}

		explainer, err := explain.New(clf, prepared.FeatureNames, result.XTest)
		if err != nil {
			log.WithError(err).WithField("family", family).Fatal("Failed to build explainer")
		}
		importance, err := explainer.GlobalImportance(result.XTest)
		if err != nil {
			log.WithError(err).WithField("family", family).Fatal("Failed to compute feature importance")
		}
		if err := store.SaveFeatureImportance(family, importance); err != nil {
			log.WithError(err).WithField("family", family).Fatal("Failed to persist feature importance")
		}
		attribution, err := explainer.Attribute(result.XTest)
		if err != nil {
			log.WithError(err).WithField("family", family).Fatal("Failed to compute attributions")
		}
		if err := store.SaveAttributionData(attribution); err != nil {
			log.WithError(err).WithField("family", family).Fatal("Failed to persist attribution data")
		}
	}

	if err := store.SaveComparison(result.RunID, result.Comparison); err != nil {
		log.WithError(err).Fatal("Failed to persist model comparison")
	}
	if err := store.SaveBestModel(result.BestModel); err != nil {
		log.WithError(err).Fatal("Failed to persist best-model pointer")
	}

	log.WithFields(log.Fields{
		"run_id":     result.RunID,
		"best_model": result.BestModel,
		"trained":    len(result.Models),
		"failed":     len(result.Failures),
	}).Info("Training generation complete")

	// Smoke check: the freshly persisted generation must serve.
	if _, err := predict.LoadPredictor(store, ""); err != nil {
		log.WithError(err).Fatal("Persisted generation failed to load")
	}

	modelDir, modelFile := fileManager.GetModelFilePathAndName(result.BestModel)
	size, err := fileManager.GetObjectSize(modelDir, modelFile)
	if err != nil {
		log.WithError(err).Warn("Failed to stat best-model artifact")
	} else {
		log.WithFields(log.Fields{"family": result.BestModel, "bytes": size}).
			Info("Best-model artifact persisted")
	}
}

func initFileManager(env, bucketName, localDiskTmpDir, awsRegion string) filestore.FileManager {
	if env == C.DEVELOPMENT {
		return serviceDisk.New(localDiskTmpDir)
	}
	if bucketName == "" {
		log.Fatal("bucket_name is required for staging/production")
	}
	if awsRegion != "" {
		return serviceS3.New(bucketName, awsRegion)
	}
	gcsDriver, err := serviceGCS.New(bucketName)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize GCS client")
	}
	return gcsDriver
}

func loadFeatures(input string) (*table.Table, error) {
	if input != "" {
		return table.LoadCSV(input)
	}
	dbConf := C.GetConfig().DBInfo
	if dbConf.Host == "" {
		envConf, err := C.WarehouseConfFromEnv()
		if err != nil {
			return nil, err
		}
		dbConf = envConf
	}
	return table.LoadWarehouse(dbConf)
}
