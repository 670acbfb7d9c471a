package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFiles are loaded, when present, before configuration is read.
var envFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads variables from .env and .env.local in dir without
// overriding variables already set in the environment. It returns the files
// that were loaded.
func LoadEnvFiles(dir string) ([]string, error) {
	var loaded []string
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, err
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
