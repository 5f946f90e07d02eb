package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"parceldesk/internal/adapters/out/eventhub"
	"parceldesk/internal/jobs"
	"parceldesk/internal/pkg/errs"
)

type Config struct {
	HTTPPort                 int
	LogLevel                 slog.Level
	HubBufferSize            int
	PhotoDir                 string
	ReportSchedule           string
	DBHost                   string
	DBPort                   string
	DBUser                   string
	DBPassword               string
	DBName                   string
	DBSslMode                string
	KafkaHost                string
	KafkaPackageChangedTopic string
}

// DefaultConfig returns the settings used when nothing else is configured.
func DefaultConfig() Config {
	return Config{
		HTTPPort:                 8080,
		LogLevel:                 slog.LevelInfo,
		HubBufferSize:            eventhub.DefaultBufferSize,
		PhotoDir:                 "uploads",
		ReportSchedule:           jobs.DefaultReportSchedule,
		DBSslMode:                "disable",
		KafkaPackageChangedTopic: "package.changed",
	}
}

// Load reads configuration in order: envFile (if present), the environment, then args.
// args excludes the program name.
func Load(envFile string, args []string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := DefaultConfig()
	var errList []error
	envInt := func(key string, dst *int) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errList = append(errList, errs.NewValueIsInvalidErrorWithCause(key, err))
				return
			}
			*dst = n
		}
	}
	envString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	envInt("HTTP_PORT", &cfg.HTTPPort)
	envInt("HUB_BUFFER_SIZE", &cfg.HubBufferSize)
	envString("PHOTO_DIR", &cfg.PhotoDir)
	envString("REPORT_SCHEDULE", &cfg.ReportSchedule)
	envString("DB_HOST", &cfg.DBHost)
	envString("DB_PORT", &cfg.DBPort)
	envString("DB_USER", &cfg.DBUser)
	envString("DB_PASSWORD", &cfg.DBPassword)
	envString("DB_NAME", &cfg.DBName)
	envString("DB_SSLMODE", &cfg.DBSslMode)
	envString("KAFKA_HOST", &cfg.KafkaHost)
	envString("KAFKA_PACKAGE_CHANGED_TOPIC", &cfg.KafkaPackageChangedTopic)

	logLevel := cfg.LogLevel.String()
	envString("LOG_LEVEL", &logLevel)

	flags := pflag.NewFlagSet("parceldesk", pflag.ContinueOnError)
	flags.IntVarP(&cfg.HTTPPort, "port", "p", cfg.HTTPPort, "port to listen on")
	flags.StringVar(&logLevel, "log-level", logLevel, "debug, info, warn or error")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("LOG_LEVEL", err))
	}
	if err := errors.Join(errList...); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	var errList []error
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("HTTP_PORT", c.HTTPPort, 1, 65535))
	}
	if c.HubBufferSize <= 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("HUB_BUFFER_SIZE", c.HubBufferSize, 1, 1<<20))
	}
	if strings.TrimSpace(c.ReportSchedule) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("REPORT_SCHEDULE"))
	}
	if c.KafkaEnabled() && strings.TrimSpace(c.KafkaPackageChangedTopic) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("KAFKA_PACKAGE_CHANGED_TOPIC"))
	}
	return errors.Join(errList...)
}

// JournalEnabled reports whether a PostgreSQL journal is configured.
func (c Config) JournalEnabled() bool {
	return c.DBHost != ""
}

// KafkaEnabled reports whether the Kafka relay is configured.
func (c Config) KafkaEnabled() bool {
	return c.KafkaHost != ""
}

// DSN returns the PostgreSQL connection string for the journal.
func (c Config) DSN() string {
	port := c.DBPort
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, port, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
