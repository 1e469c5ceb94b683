package main

import (
	"flag"

	"churn/artifacts"
	C "churn/config"
	"churn/filestore"
	"churn/model"
	"churn/predict"
	serviceDisk "churn/services/disk"
	serviceGCS "churn/services/gcstorage"
	serviceS3 "churn/services/s3"
	"churn/table"
	"churn/util"

	log "github.com/sirupsen/logrus"
)

func main() {
	envFlag := flag.String("env", C.DEVELOPMENT, "")
	bucketNameFlag := flag.String("bucket_name", "", "Artifact bucket for staging/production")
	localDiskTmpDirFlag := flag.String("local_disk_tmp_dir", "/usr/local/var/churn/local_disk/tmp", "")
	awsRegionFlag := flag.String("aws_region", "", "Set to read artifacts from S3 instead of GCS")
	inputFlag := flag.String("input", "", "Customer CSV to score")
	modelFlag := flag.String("model", "", "Optional: model family override. Empty serves the best model")

	flag.Parse()

	defer util.RecoverAndLog("Task#PredictChurn")

	C.InitConf(&C.Configuration{
		AppName:         "predict_churn_job",
		Env:             *envFlag,
		BucketName:      *bucketNameFlag,
		LocalDiskTmpDir: *localDiskTmpDirFlag,
	})
	if C.IsDevelopment() {
		log.SetLevel(log.DebugLevel)
	}

	if *inputFlag == "" {
		log.Fatal("input CSV is required")
	}
	family := model.Family(*modelFlag)
	if *modelFlag != "" && !family.Valid() {
		log.WithField("model", *modelFlag).Fatal("Unknown model family")
	}

	fileManager := initFileManager(*envFlag, *bucketNameFlag, *localDiskTmpDirFlag, *awsRegionFlag)
	store := artifacts.NewStore(fileManager)

	predictor, err := predict.LoadPredictor(store, family)
	if err != nil {
		log.WithError(err).Fatal("Failed to load predictor")
	}

	t, err := table.LoadCSV(*inputFlag)
	if err != nil {
		log.WithError(err).Fatal("Failed to load input CSV")
	}

	predictions := predictor.PredictTable(t)
	scored, err := predict.WriteScoredTable(t, predictions)
	if err != nil {
		log.WithError(err).Fatal("Failed to render scored output")
	}

	if err := store.SaveScoredOutput(predictor.RunID(), scored); err != nil {
		log.WithError(err).Fatal("Failed to persist scored output")
	}

	high := 0
	for _, p := range predictions {
		if p.RiskCategory == predict.RiskHigh {
			high++
		}
	}
	highRiskRate := 0.0
	if len(predictions) > 0 {
		highRiskRate, _ = util.FloatRoundOffWithPrecision(
			float64(high)/float64(len(predictions)), util.DefaultPrecision)
	}
	log.WithFields(log.Fields{
		"rows":           len(predictions),
		"high_risk":      high,
		"high_risk_rate": highRiskRate,
		"family":         predictor.Family(),
	}).Info("Scoring complete")
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
