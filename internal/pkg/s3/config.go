package s3

import (
	"errors"
	"time"
)

// Config S3 client configuration
type Config struct {
	Region          string        `mapstructure:"region"`
	Endpoint        string        `mapstructure:"endpoint"` // empty for AWS, set for S3-compatible stores
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	SessionToken    string        `mapstructure:"session_token"`
	UsePathStyle    bool          `mapstructure:"use_path_style"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Region:         "us-east-1",
		RequestTimeout: 30 * time.Second,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Region == "" {
		return errors.New("s3: region is required")
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return errors.New("s3: access_key_id and secret_access_key must be set together")
	}
	if c.RequestTimeout < 0 {
		return errors.New("s3: request_timeout must be >= 0")
	}
	return nil
}

// SetDefaults fills zero values
func (c *Config) SetDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
}
