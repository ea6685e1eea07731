// Package configfiles provides the embedded configuration template.
package configfiles

import (
	"embed"
	"os"
	"path/filepath"
)

//go:embed config.example.yaml
var configFS embed.FS

// GetConfigExample returns the example configuration file content
func GetConfigExample() ([]byte, error) {
	return configFS.ReadFile("config.example.yaml")
}

// InitConfig writes the example configuration to path unless a file already
// exists there. It reports whether a file was created.
func InitConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	data, err := GetConfigExample()
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, err
	}
	return true, nil
}
