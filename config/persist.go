package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/bibgraph/bibgraph/errors"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before
// overwriting an existing config file.
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete oldest backup")
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, 0644); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// defaultFileConfig is the document written by `bibgraph config init`: the
// defaults plus one sample query showing the table shape.
func defaultFileConfig() map[string]interface{} {
	return map[string]interface{}{
		"server": map[string]interface{}{
			"port": DefaultServerPort,
		},
		"sources": map[string]interface{}{
			"dir":              "sources",
			"highlight_prefix": "most_cited",
			"relevance_prefix": "most_relevant",
		},
		"queries": map[string]interface{}{
			"Sample_Query": map[string]interface{}{
				"query":  `("your search string here")`,
				"prefix": "pubmed",
			},
		},
	}
}

// WriteDefaultConfig writes a starter config file to configPath. An existing
// file is refused unless force is set; forcing rotates backups first.
func WriteDefaultConfig(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.Newf("config file already exists: %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := toml.Marshal(defaultFileConfig())
	if err != nil {
		return errors.Wrap(err, "failed to marshal default config")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}
