package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

const (
	FloorHeight         = 10
	Acceleration        = 1
	FloorScoreWeight    = 100
	PatienceScoreWeight = 10
	ReadTimeout         = 500 * time.Millisecond
	DiagnosticsFile     = "judge.log"
	LogLevel            = "debug"
)

// Judge holds the tunables of one judging session.
type Judge struct {
	FloorHeight         int           `yaml:"FloorHeight"`
	Acceleration        int           `yaml:"Acceleration"`
	FloorScoreWeight    int           `yaml:"FloorScoreWeight"`
	PatienceScoreWeight int           `yaml:"PatienceScoreWeight"`
	ReadTimeout         time.Duration `yaml:"ReadTimeout"`
	DiagnosticsFile     string        `yaml:"DiagnosticsFile"`
	LogLevel            string        `yaml:"LogLevel"`
}

func Default() Judge {
	return Judge{
		FloorHeight:         FloorHeight,
		Acceleration:        Acceleration,
		FloorScoreWeight:    FloorScoreWeight,
		PatienceScoreWeight: PatienceScoreWeight,
		ReadTimeout:         ReadTimeout,
		DiagnosticsFile:     DiagnosticsFile,
		LogLevel:            LogLevel,
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file keep their default value.
func Load(path string) (Judge, error) {
	c := Default()
	file, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&c); err != nil {
		return c, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func (c Judge) Validate() error {
	switch {
	case c.FloorHeight <= 0:
		return fmt.Errorf("FloorHeight must be positive, got %d", c.FloorHeight)
	case c.Acceleration <= 0:
		return fmt.Errorf("Acceleration must be positive, got %d", c.Acceleration)
	case c.FloorScoreWeight < 0 || c.PatienceScoreWeight < 0:
		return fmt.Errorf("score weights must not be negative")
	case c.ReadTimeout <= 0:
		return fmt.Errorf("ReadTimeout must be positive, got %s", c.ReadTimeout)
	}
	return nil
}
