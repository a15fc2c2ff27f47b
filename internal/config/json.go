package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rfaguiar/manifestops/internal/flagx"
	"github.com/rfaguiar/manifestops/internal/timex"
)

// JsonConfig is the file-format counterpart of Config. Interval fields use
// timex.Duration, so both string values such as "5s" and integer nanoseconds
// parse. Values are copied into the runtime Config after unmarshalling.
type JsonConfig struct {
	DatabaseDSN     string         `json:"database_dsn"`
	SecretKey       string         `json:"secret_key"`
	SessionValidity timex.Duration `json:"session_validity"`
	PollInterval    timex.Duration `json:"poll_interval"`
	S3RootUser      string         `json:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration from the JSON file named by the -c/-config
// flags. When neither flag is present nothing is loaded. An unreadable or
// malformed file panics: a half-applied config file must not start the app.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.SessionValidity = time.Duration(c.SessionValidity.Duration)
	config.PollInterval = time.Duration(c.PollInterval.Duration)
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
