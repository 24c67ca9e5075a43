// Package config loads the bibgraph configuration: server settings, source
// directory layout, and the query table mapping query names to export-file
// prefixes.
package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Config represents the core bibgraph configuration
type Config struct {
	Server  ServerConfig           `mapstructure:"server"`
	Sources SourcesConfig          `mapstructure:"sources"`
	Queries map[string]QueryConfig `mapstructure:"queries"`
}

// ServerConfig configures the bibgraph web server
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SourcesConfig configures where export and curated files live.
//
// Each configured query resolves to the most recently modified
// "<prefix>*.txt" file under Dir; the curated overlays resolve the same way
// under the curated directory using HighlightPrefix and RelevancePrefix.
type SourcesConfig struct {
	Dir             string `mapstructure:"dir"`
	CuratedDir      string `mapstructure:"curated_dir"`
	HighlightPrefix string `mapstructure:"highlight_prefix"`
	RelevancePrefix string `mapstructure:"relevance_prefix"`
}

// QueryConfig is one configured query: its query string and the export-file
// prefix it resolves through.
type QueryConfig struct {
	Query  string `mapstructure:"query"`
	Prefix string `mapstructure:"prefix"`
}

// Default server port
const DefaultServerPort = 8750

// GetServerPort returns the configured server port, or the default.
func (c *Config) GetServerPort() int {
	if c.Server.Port == 0 {
		return DefaultServerPort
	}
	return c.Server.Port
}

// GetServerAllowedOrigins returns the allowed CORS origins
func (c *Config) GetServerAllowedOrigins() []string {
	if len(c.Server.AllowedOrigins) == 0 {
		return []string{
			"http://localhost",
			"https://localhost",
			"http://127.0.0.1",
			"https://127.0.0.1",
		}
	}
	return c.Server.AllowedOrigins
}

// GetCuratedDir returns the curated-overrides directory: the configured one,
// or "curated" under the source directory.
func (c *Config) GetCuratedDir() string {
	if c.Sources.CuratedDir != "" {
		return c.Sources.CuratedDir
	}
	return filepath.Join(c.Sources.Dir, "curated")
}

// QueryNames returns the configured query names sorted case-insensitively,
// so every build walks the query table in the same order.
func (c *Config) QueryNames() []string {
	names := make([]string, 0, len(c.Queries))
	for name := range c.Queries {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
	return names
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Sources: %s, Queries: %d, Server: {Port: %d}}",
		c.Sources.Dir, len(c.Queries), c.GetServerPort())
}
