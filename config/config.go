package config

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// Config holds the project config values, processed from the environment
type Config struct {
	Environment       string `envconfig:"ENVIRONMENT" default:"development"`
	Port              string `envconfig:"PORT" default:"8080"`
	BaseURL           string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	DataDir           string `envconfig:"DATA_DIR" default:"data"`
	UploadDir         string `envconfig:"UPLOAD_DIR"`
	StaticDir         string `envconfig:"STATIC_DIR" default:"static"`
	MaxUploadMB       int64  `envconfig:"MAX_UPLOAD_MB" default:"50"`
	RequestTimeoutSec int    `envconfig:"REQUEST_TIMEOUT_SEC" default:"30"`
	DBURI             string `envconfig:"DB_URI"`
	DBName            string `envconfig:"DB_NAME" default:"lokmitra"`
	CloudinaryURL     string `envconfig:"CLOUDINARY_URL"`
	OrphanSweepSpec   string `envconfig:"ORPHAN_SWEEP_SPEC" default:"@hourly"`
	OrphanGraceMin    int    `envconfig:"ORPHAN_GRACE_MIN" default:"60"`
}

// New sets up all config related services: processes the environment and
// replaces the global zap logger
func New() *Config {
	c := new(Config)
	err := envconfig.Process("", c)

	logger, lerr := setLogger(c.Environment)
	if lerr != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	if err != nil {
		zap.S().Fatalw("failed to process environment config", "error", err)
	}

	if c.UploadDir == "" {
		c.UploadDir = filepath.Join(c.DataDir, "uploads")
	}
	return c
}

// CasesPath is the location of the flat JSON case store
func (c *Config) CasesPath() string {
	return filepath.Join(c.DataDir, "cases.json")
}

func setLogger(environment string) (*zap.Logger, error) {
	switch environment {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	default:
		return zap.NewExample(), nil
	}
}

// ErrorStatus logs the underlying error and writes the failure envelope.
// Only the message reaches the client; the error detail stays in the logs.
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().Errorw(message, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"success":false,"message":%q}`, message)))
}
