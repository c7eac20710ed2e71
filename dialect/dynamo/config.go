package dynamo

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the connection settings of a DynamoDB client.
type Config struct {
	// Region is the AWS region of the tables.
	Region string `yaml:"region"`
	// Endpoint overrides the service endpoint, e.g. http://localhost:8000
	// for DynamoDB Local.
	Endpoint string `yaml:"endpoint,omitempty"`
	// AccessKeyID, SecretAccessKey and SessionToken set static
	// credentials. When empty the default credential chain is used.
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	SessionToken    string `yaml:"session_token,omitempty"`
	// MaxAttempts bounds retries of a single call. Zero keeps the SDK default.
	MaxAttempts int `yaml:"max_attempts,omitempty"`
	// Debug logs every call.
	Debug bool `yaml:"debug,omitempty"`
	// Stats collects call statistics and logs slow calls.
	Stats bool `yaml:"stats,omitempty"`
	// SlowThreshold is the duration above which a call counts as slow.
	SlowThreshold time.Duration `yaml:"slow_threshold,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Region:        "us-east-1",
		SlowThreshold: 100 * time.Millisecond,
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dynamo: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration on top of DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("dynamo: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Region == "" {
		errs = append(errs, errors.New("region is required"))
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		errs = append(errs, errors.New("access_key_id and secret_access_key must be set together"))
	}
	if c.MaxAttempts < 0 {
		errs = append(errs, errors.New("max_attempts must not be negative"))
	}
	if c.SlowThreshold < 0 {
		errs = append(errs, errors.New("slow_threshold must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("dynamo: invalid config: %w", err)
	}
	return nil
}
