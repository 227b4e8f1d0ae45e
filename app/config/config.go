package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDepth        = 15
	DefaultMoveTime     = 500
	DefaultQueryTimeout = 30 * time.Second
	DefaultHTTPAddr     = "0.0.0.0:8080"

	DefaultGoodThreshold       = 50
	DefaultInaccuracyThreshold = -50
	DefaultMistakeThreshold    = -100
	DefaultBlunderThreshold    = -200
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Logs       LogConfig
	DB         PostgresConfig
	Engine     EngineConfig
	Thresholds ThresholdConfig
	Auth       AuthConfig
	QueueURL   string
	GamesDir   string
	HTTPAddr   string
}

// LogConfig comes from LOG_STYLE (std, utc, plain) and LOG_LEVEL (info, debug).
type LogConfig struct {
	Style string
	Level string
}

// Debug reports whether every classified move should be logged.
func (l LogConfig) Debug() bool {
	return strings.EqualFold(l.Level, "debug")
}

// Flags returns the standard logger flags for Style.
func (l LogConfig) Flags() int {
	switch strings.ToLower(l.Style) {
	case "utc":
		return log.LstdFlags | log.Lmicroseconds | log.LUTC
	case "plain":
		return 0
	}
	return log.LstdFlags
}

// Apply configures the standard logger.
func (l LogConfig) Apply() {
	log.SetFlags(l.Flags())
}

func (l LogConfig) validate() error {
	switch strings.ToLower(l.Style) {
	case "", "std", "utc", "plain":
	default:
		return fmt.Errorf("%w: LOG_STYLE must be std, utc or plain, got %q", ErrInvalidConfig, l.Style)
	}
	switch strings.ToLower(l.Level) {
	case "", "info", "debug":
	default:
		return fmt.Errorf("%w: LOG_LEVEL must be info or debug, got %q", ErrInvalidConfig, l.Level)
	}
	return nil
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
}

// Enabled reports whether verdicts should also be mirrored to Postgres.
func (p PostgresConfig) Enabled() bool {
	return p.URL != ""
}

// AuthConfig guards POST /evaluate. Leaving Issuer empty serves it openly.
type AuthConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
	Scope    string
}

func (a AuthConfig) Enabled() bool {
	return a.Issuer != ""
}

type EngineConfig struct {
	Path         string        `yaml:"path"`
	MoveTime     int           `yaml:"move_time"`
	DepthOrTime  bool          `yaml:"depth_or_time"` //true for depth, false for time
	Depth        int           `yaml:"depth"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// ThresholdConfig holds the signed centipawn deltas that separate verdicts.
type ThresholdConfig struct {
	Good       int `yaml:"good"`
	Inaccuracy int `yaml:"inaccuracy"`
	Mistake    int `yaml:"mistake"`
	Blunder    int `yaml:"blunder"`
}

// profile is the on-disk shape of an ANALYSIS_PROFILE yaml file. Zero
// values leave the environment settings untouched.
type profile struct {
	Engine     EngineConfig    `yaml:"engine"`
	Thresholds ThresholdConfig `yaml:"thresholds"`
}

func LoadConfig() (*Config, error) {
	moveTime, err := envInt("ENGINE_MOVE_TIME", DefaultMoveTime)
	if err != nil {
		return nil, err
	}

	depth, err := envInt("ENGINE_DEPTH", DefaultDepth)
	if err != nil {
		return nil, err
	}

	depthOrTime := true
	if v := os.Getenv("ENGINE_DEPTH_OR_TIME"); v != "" {
		depthOrTime, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: ENGINE_DEPTH_OR_TIME: %v", ErrInvalidConfig, err)
		}
	}

	queryTimeout := DefaultQueryTimeout
	if v := os.Getenv("ENGINE_QUERY_TIMEOUT"); v != "" {
		queryTimeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%w: ENGINE_QUERY_TIMEOUT: %v", ErrInvalidConfig, err)
		}
	}

	good, err := envInt("THRESHOLD_GOOD", DefaultGoodThreshold)
	if err != nil {
		return nil, err
	}
	inaccuracy, err := envInt("THRESHOLD_INACCURACY", DefaultInaccuracyThreshold)
	if err != nil {
		return nil, err
	}
	mistake, err := envInt("THRESHOLD_MISTAKE", DefaultMistakeThreshold)
	if err != nil {
		return nil, err
	}
	blunder, err := envInt("THRESHOLD_BLUNDER", DefaultBlunderThreshold)
	if err != nil {
		return nil, err
	}

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = DefaultHTTPAddr
	}

	cfg := &Config{
		QueueURL: os.Getenv("QUEUE_URL"),
		GamesDir: os.Getenv("GAMES_DIR"),
		HTTPAddr: httpAddr,
		Logs: LogConfig{
			Style: os.Getenv("LOG_STYLE"),
			Level: os.Getenv("LOG_LEVEL"),
		},
		Auth: AuthConfig{
			Issuer:   strings.TrimSpace(os.Getenv("AUTH_ISSUER")),
			Audience: strings.TrimSpace(os.Getenv("AUTH_AUDIENCE")),
			JWKSURL:  os.Getenv("AUTH_JWKS_URL"),
			Scope:    os.Getenv("AUTH_SCOPE"),
		},
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     os.Getenv("POSTGRES_PORT"),
		},
		Engine: EngineConfig{
			Path:         os.Getenv("ENGINE_PATH"),
			MoveTime:     moveTime,
			Depth:        depth,
			DepthOrTime:  depthOrTime,
			QueryTimeout: queryTimeout,
		},
		Thresholds: ThresholdConfig{
			Good:       good,
			Inaccuracy: inaccuracy,
			Mistake:    mistake,
			Blunder:    blunder,
		},
	}

	if path := os.Getenv("ANALYSIS_PROFILE"); path != "" {
		if err := cfg.ApplyProfile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyProfile overlays the non-zero fields of a yaml analysis profile.
func (c *Config) ApplyProfile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading profile %s: %v", ErrInvalidConfig, path, err)
	}

	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: parsing profile %s: %v", ErrInvalidConfig, path, err)
	}

	if p.Engine.Path != "" {
		c.Engine.Path = p.Engine.Path
	}
	if p.Engine.Depth != 0 {
		c.Engine.Depth = p.Engine.Depth
		c.Engine.DepthOrTime = true
	}
	if p.Engine.MoveTime != 0 {
		c.Engine.MoveTime = p.Engine.MoveTime
		if p.Engine.Depth == 0 {
			c.Engine.DepthOrTime = false
		}
	}
	if p.Engine.QueryTimeout != 0 {
		c.Engine.QueryTimeout = p.Engine.QueryTimeout
	}

	if p.Thresholds.Good != 0 {
		c.Thresholds.Good = p.Thresholds.Good
	}
	if p.Thresholds.Inaccuracy != 0 {
		c.Thresholds.Inaccuracy = p.Thresholds.Inaccuracy
	}
	if p.Thresholds.Mistake != 0 {
		c.Thresholds.Mistake = p.Thresholds.Mistake
	}
	if p.Thresholds.Blunder != 0 {
		c.Thresholds.Blunder = p.Thresholds.Blunder
	}
	return nil
}

// Validate checks everything that does not need the filesystem.
func (c *Config) Validate() error {
	if err := c.Logs.validate(); err != nil {
		return err
	}
	if c.Engine.DepthOrTime && c.Engine.Depth <= 0 {
		return fmt.Errorf("%w: engine depth must be positive, got %d", ErrInvalidConfig, c.Engine.Depth)
	}
	if !c.Engine.DepthOrTime && c.Engine.MoveTime <= 0 {
		return fmt.Errorf("%w: engine move time must be positive, got %d", ErrInvalidConfig, c.Engine.MoveTime)
	}
	if c.Engine.QueryTimeout <= 0 {
		return fmt.Errorf("%w: engine query timeout must be positive, got %s", ErrInvalidConfig, c.Engine.QueryTimeout)
	}

	t := c.Thresholds
	if !(t.Good > t.Inaccuracy && t.Inaccuracy > t.Mistake && t.Mistake > t.Blunder) {
		return fmt.Errorf("%w: thresholds must satisfy good > inaccuracy > mistake > blunder, got %+v", ErrInvalidConfig, t)
	}
	return nil
}

// ValidateEngine makes sure the engine binary exists before any game is read.
func (c *Config) ValidateEngine() error {
	if c.Engine.Path == "" {
		return fmt.Errorf("%w: ENGINE_PATH is not set", ErrInvalidConfig)
	}
	info, err := os.Stat(c.Engine.Path)
	if err != nil {
		return fmt.Errorf("%w: engine executable %q: %v", ErrInvalidConfig, c.Engine.Path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: engine executable %q is a directory", ErrInvalidConfig, c.Engine.Path)
	}
	return nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: error converting string to int: %s: %v", ErrInvalidConfig, key, err)
	}
	return n, nil
}
