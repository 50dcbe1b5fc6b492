package config

import "os"

const (
	apiBaseURLVar     = "KIDIGO_API_BASE_URL"
	appNameVar        = "KIDIGO_APP_NAME"
	storageBackendVar = "KIDIGO_STORAGE_BACKEND"
	storagePathVar    = "KIDIGO_STORAGE_PATH"

	defaultAPIBaseURL = "http://localhost:5000"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ StorageConfig = EnvVars{}

// GetAPIBaseURL returns the backend base URL used for every API call.
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, defaultAPIBaseURL)
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Kidigo")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetStorageBackend selects the persistence backend: "file", "sqlite"
// or "memory".
func (EnvVars) GetStorageBackend() string {
	return GetEnv(storageBackendVar, "file")
}

func (EnvVars) GetStoragePath() string {
	return GetEnv(storagePathVar, "./kidigo.json")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
