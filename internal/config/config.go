package config

type Config interface {
	EnvConfig
	StorageConfig
}

type EnvConfig interface {
	GetAPIBaseURL() string
	GetAppName() string
	GetEnv() string
}

type StorageConfig interface {
	GetStorageBackend() string
	GetStoragePath() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}

// NewFromFile layers values from a YAML config file over the
// environment. Environment variables win when both are set.
func NewFromFile(path string) (Config, error) {
	fileVars, err := LoadFileVars(path)
	if err != nil {
		return nil, err
	}
	return fileConfig{fileVars: fileVars}, nil
}
