package config

import (
	"fmt"

	U "churn/util"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const (
	DEVELOPMENT = "development"
	STAGING     = "staging"
	PRODUCTION  = "production"
)

// DBConf holds warehouse connection settings for loading the churn_features
// table. Populated from flags or from CHURN_DB_* environment variables.
type DBConf struct {
	Host     string `json:"host" envconfig:"host"`
	Port     int    `json:"port" envconfig:"port" default:"5432"`
	User     string `json:"user" envconfig:"user"`
	Name     string `json:"name" envconfig:"name"`
	Password string `json:"password" envconfig:"password"`
}

func (d DBConf) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password)
}

// Validate fails with a ConfigurationError when required credentials are
// absent. Surfaced immediately, no retry.
func (d DBConf) Validate() error {
	if d.Host == "" || d.User == "" || d.Name == "" {
		return U.NewConfigurationError("warehouse credentials incomplete: host=%q user=%q name=%q",
			d.Host, d.User, d.Name)
	}
	return nil
}

type Configuration struct {
	AppName         string
	Env             string
	BucketName      string
	LocalDiskTmpDir string
	DBInfo          DBConf
}

var conf *Configuration

func InitConf(config *Configuration) {
	if config.Env != DEVELOPMENT && config.Env != STAGING && config.Env != PRODUCTION {
		log.WithField("env", config.Env).Fatal("Unrecognised environment")
	}
	conf = config
}

func GetConfig() *Configuration {
	return conf
}

func IsDevelopment() bool {
	return conf != nil && conf.Env == DEVELOPMENT
}

// WarehouseConfFromEnv reads CHURN_DB_* environment variables.
func WarehouseConfFromEnv() (DBConf, error) {
	var d DBConf
	if err := envconfig.Process("churn_db", &d); err != nil {
		return d, err
	}
	return d, d.Validate()
}
