// Package config loads the lora-app-sheets YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bind           string        `yaml:"bind"`
	Path           string        `yaml:"path"`
	MaxBody        int64         `yaml:"max-body"`
	MaxConnections int           `yaml:"max-connections"`
	Timeout        time.Duration `yaml:"timeout"`

	Credentials string `yaml:"credentials"`
	Tokens      string `yaml:"tokens"`
	Spreadsheet string `yaml:"spreadsheet"`
	Sheet       string `yaml:"sheet"`
	Timezone    string `yaml:"timezone"`

	Retention Retention `yaml:"retention"`
}

type Retention struct {
	MaxRows int `yaml:"max-rows"`
	Delete  int `yaml:"delete"`
}

// NewConfig returns a Config initialised with the default settings.
func NewConfig() *Config {
	return &Config{
		Bind:           "0.0.0.0:8080",
		Path:           "/",
		MaxBody:        1024 * 1024,
		MaxConnections: 16,
		Timeout:        30 * time.Second,

		Credentials: DEFAULT_CREDENTIALS,
		Tokens:      DEFAULT_TOKENS,
		Spreadsheet: "",
		Sheet:       "NewData",
		Timezone:    "America/Los_Angeles",

		Retention: Retention{
			MaxRows: 3000,
			Delete:  500,
		},
	}
}

// Load merges the settings from the YAML file into the configuration. A missing file
// is not an error and leaves the defaults unchanged.
func (c *Config) Load(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}

	defer f.Close()

	return c.Read(f)
}

// Read merges the settings from a YAML document into the configuration.
func (c *Config) Read(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid configuration (%w)", err)
	}

	return c.Validate()
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("invalid webhook path '%v' - expected something like '/' or '/particle'", c.Path)
	}

	if c.MaxBody <= 0 {
		return fmt.Errorf("invalid max-body (%v)", c.MaxBody)
	}

	if c.MaxConnections <= 0 {
		return fmt.Errorf("invalid max-connections (%v)", c.MaxConnections)
	}

	if strings.TrimSpace(c.Sheet) == "" {
		return fmt.Errorf("missing worksheet name")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Retention.Delete <= 0 || c.Retention.MaxRows <= c.Retention.Delete {
		return fmt.Errorf("invalid retention policy (max-rows:%v delete:%v) - 'delete' must be less than 'max-rows'", c.Retention.MaxRows, c.Retention.Delete)
	}

	return nil
}

// Location returns the time zone for the server timestamps in the log.
func (c *Config) Location() (*time.Location, error) {
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%v' (%w)", c.Timezone, err)
	}

	return location, nil
}
