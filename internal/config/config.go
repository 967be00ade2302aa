package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Database defines the log store connection.
type Database struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	Schema          string        `yaml:"schema"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ReadRetries     int           `yaml:"read_retries"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
}

// HTTP defines the API server.
type HTTP struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	AllowOrigins []string      `yaml:"allow_origins"`
}

// Analysis defines day analysis defaults.
type Analysis struct {
	Timezone    string        `yaml:"timezone"`
	BucketWidth time.Duration `yaml:"bucket_width"`
	MaxPowerKW  float64       `yaml:"max_power_kw"`
}

// Variable names one logged variable.
type Variable struct {
	ID    int64  `yaml:"id"`
	Label string `yaml:"label"`
}

// Variables maps dashboard views to logged variable ids.
type Variables struct {
	Alarms             int64      `yaml:"alarms"`
	MachineInOperation int64      `yaml:"machine_in_operation"`
	RecentRun          int64      `yaml:"recent_run"`
	SpindleLoad        Variable   `yaml:"spindle_load"`
	Temperatures       []Variable `yaml:"temperatures"`
	Utilization        []Variable `yaml:"utilization"`
	Zones              []int64    `yaml:"zones"`
}

// Log defines logger output.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the service configuration.
type Config struct {
	Database  Database  `yaml:"database"`
	HTTP      HTTP      `yaml:"http"`
	Analysis  Analysis  `yaml:"analysis"`
	Variables Variables `yaml:"variables"`
	Log       Log       `yaml:"log"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Database: Database{
			Driver:          "pgx",
			Port:            5432,
			SSLMode:         "disable",
			Schema:          "public",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ReadRetries:     2,
			RetryDelay:      200 * time.Millisecond,
		},
		HTTP: HTTP{
			Addr:         ":8000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			AllowOrigins: []string{"http://localhost:5173"},
		},
		Analysis: Analysis{
			Timezone:    "UTC",
			BucketWidth: 30 * time.Minute,
			MaxPowerKW:  37.0,
		},
		Variables: Variables{
			Alarms:             447,
			MachineInOperation: 597,
			RecentRun:          890,
			SpindleLoad:        Variable{ID: 630, Label: "MANDRINO_CONSUMO_VISUALIZADO"},
			Temperatures: []Variable{
				{ID: 449, Label: "TEMPERATURA_MOTOR_8"},
				{ID: 453, Label: "TEMPERATURA_MOTOR_7"},
				{ID: 456, Label: "TEMPERATURA_MOTOR_6"},
				{ID: 448, Label: "TEMPERATURA_MOTOR_5"},
				{ID: 454, Label: "TEMPERATURA_MOTOR_4"},
			},
			Utilization: []Variable{
				{ID: 584, Label: "Axis_8_Motor_Utilization"},
				{ID: 593, Label: "Axis_7_Motor_Utilization"},
				{ID: 598, Label: "Axis_6_Motor_Utilization"},
				{ID: 565, Label: "Axis_5_Motor_Utilization"},
				{ID: 514, Label: "Axis_4_Motor_Utilization"},
			},
			Zones: []int64{806, 884, 798, 877},
		},
		Log: Log{Level: "info", Format: "json"},
	}
}

// Load reads the YAML file at path (when it exists) over the defaults, then applies
// environment overrides. A missing file at the default path is not an error.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Database.DSN = getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", c.Database.DSN))
	c.Database.Driver = getenvDefault("DB_DRIVER", c.Database.Driver)
	c.Database.Host = getenvDefault("DB_HOST", c.Database.Host)
	c.Database.Port = getenvIntDefault("DB_PORT", c.Database.Port)
	c.Database.DBName = getenvDefault("DB_NAME", c.Database.DBName)
	c.Database.User = getenvDefault("DB_USER", c.Database.User)
	c.Database.Password = getenvDefault("DB_PASSWORD", c.Database.Password)
	c.HTTP.Addr = getenvDefault("HTTP_ADDR", c.HTTP.Addr)
	c.Analysis.Timezone = getenvDefault("ANALYSIS_TIMEZONE", c.Analysis.Timezone)
	c.Analysis.MaxPowerKW = getenvFloatDefault("MAX_POWER_KW", c.Analysis.MaxPowerKW)
	c.Log.Level = getenvDefault("LOG_LEVEL", c.Log.Level)
	if origins := splitCSV(os.Getenv("HTTP_ALLOW_ORIGINS")); len(origins) > 0 {
		c.HTTP.AllowOrigins = origins
	}
}

// Validate checks the settings needed to serve requests.
func (c Config) Validate() error {
	if c.DataSourceName() == "" && c.Database.Driver != "duckdb" {
		return errors.New("config: database dsn or host/dbname is required")
	}
	if c.Analysis.BucketWidth <= 0 {
		return errors.New("config: analysis.bucket_width must be positive")
	}
	if c.Analysis.MaxPowerKW <= 0 {
		return errors.New("config: analysis.max_power_kw must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// DataSourceName returns the DSN, building a postgres URL from the discrete fields
// when no DSN is configured.
func (c Config) DataSourceName() string {
	db := c.Database
	if db.DSN != "" {
		return db.DSN
	}
	if db.Host == "" || db.DBName == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:   "/" + db.DBName,
	}
	if db.User != "" {
		u.User = url.UserPassword(db.User, db.Password)
	}
	if db.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{db.SSLMode}}.Encode()
	}
	return u.String()
}

// Location resolves the analysis timezone.
func (c Config) Location() (*time.Location, error) {
	name := c.Analysis.Timezone
	if name == "" {
		name = "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("config: invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
