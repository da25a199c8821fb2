// Package config loads pipeline settings from an optional YAML file with
// environment variable overrides. A .env file in the working directory is
// honored, so local development and CI can share the same entry points.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings for a full ingest run.
type Config struct {
	Source string      `yaml:"source"`
	Neo4j  Neo4jConfig `yaml:"neo4j"`
}

// Neo4jConfig is the connection block for the graph store.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Password: "password",
		},
	}
}

// Load builds a Config from three layers, later layers winning: defaults,
// then a YAML file (skipped when path is empty or the file is absent), then
// environment variables. A .env file is loaded first if one exists.
func Load(path string) (Config, error) {
	// Ignore a missing .env; it is a local convenience, not a requirement.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("NEO4J_URI"); v != "" {
		c.Neo4j.URI = v
	}
	if v := os.Getenv("NEO4J_USERNAME"); v != "" {
		c.Neo4j.Username = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		c.Neo4j.Password = v
	}
	if v := os.Getenv("SOURCE_PATH"); v != "" {
		c.Source = v
	}
}

// Validate checks that the settings needed for a database-backed run are
// present. Dry runs never call it.
func (c Config) Validate() error {
	if c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j uri is required")
	}
	if c.Neo4j.Username == "" {
		return fmt.Errorf("neo4j username is required")
	}
	return nil
}
