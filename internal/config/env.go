package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// apiKeyEnv lists the variables consulted for the classifier API key in
// order of preference.
var apiKeyEnv = []string{"MOODMAP_API_KEY", "OPENAI_API_KEY"}

const baseURLEnv = "MOODMAP_BASE_URL"

// LoadEnvFiles loads variables from the given .env files into the process
// environment. Missing files are skipped and existing variables are never
// overridden.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		err := godotenv.Load(p)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}

		return errLoadEnv.Fmt(p).Wrap(err)
	}

	return nil
}

// WithEnvConfig returns an Option that fills settings that were not provided
// on the command line from the environment.
func WithEnvConfig() Option {
	return func(c *Config) error {
		if c.CLI.APIKey == "" {
			for _, key := range apiKeyEnv {
				if v := strings.TrimSpace(os.Getenv(key)); v != "" {
					c.CLI.APIKey = v
					break
				}
			}
		}

		if c.Classifier.BaseURL == "" {
			c.Classifier.BaseURL = strings.TrimSpace(os.Getenv(baseURLEnv))
		}

		return nil
	}
}
