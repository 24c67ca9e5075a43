package config

import (
	"github.com/spf13/viper"
)

// Default file permissions for created config directories
const DefaultDirPermissions = 0750

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Source layout defaults
	v.SetDefault("sources.dir", "sources")
	v.SetDefault("sources.highlight_prefix", "most_cited")
	v.SetDefault("sources.relevance_prefix", "most_relevant")

	// Server configuration defaults
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	})
}

// BindSensitiveEnvVars explicitly binds path configuration to environment
// variables so deployments can relocate the source tree without a file.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("sources.dir", "BIBGRAPH_SOURCES_DIR")
	v.BindEnv("sources.curated_dir", "BIBGRAPH_SOURCES_CURATED_DIR")
	v.BindEnv("server.port", "BIBGRAPH_SERVER_PORT")
}
