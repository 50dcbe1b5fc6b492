package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileVars holds optional values read from a YAML config file.
// Zero values fall through to the environment.
type FileVars struct {
	APIBaseURL     string `yaml:"api_base_url"`
	AppName        string `yaml:"app_name"`
	StorageBackend string `yaml:"storage_backend"`
	StoragePath    string `yaml:"storage_path"`
}

func LoadFileVars(path string) (FileVars, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileVars{}, errors.Wrap(err, "[LoadFileVars] read config file")
	}
	var vars FileVars
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return FileVars{}, errors.Wrap(err, "[LoadFileVars] parse config file")
	}
	return vars, nil
}

type fileConfig struct {
	EnvVars
	fileVars FileVars
}

var _ Config = fileConfig{}

func (c fileConfig) GetAPIBaseURL() string {
	if v := os.Getenv(apiBaseURLVar); v != "" {
		return v
	}
	if c.fileVars.APIBaseURL != "" {
		return c.fileVars.APIBaseURL
	}
	return defaultAPIBaseURL
}

func (c fileConfig) GetAppName() string {
	if v := os.Getenv(appNameVar); v != "" {
		return v
	}
	if c.fileVars.AppName != "" {
		return c.fileVars.AppName
	}
	return "Kidigo"
}

func (c fileConfig) GetStorageBackend() string {
	if v := os.Getenv(storageBackendVar); v != "" {
		return v
	}
	if c.fileVars.StorageBackend != "" {
		return c.fileVars.StorageBackend
	}
	return "file"
}

func (c fileConfig) GetStoragePath() string {
	if v := os.Getenv(storagePathVar); v != "" {
		return v
	}
	if c.fileVars.StoragePath != "" {
		return c.fileVars.StoragePath
	}
	return "./kidigo.json"
}
