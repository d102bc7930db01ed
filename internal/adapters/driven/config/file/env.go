package file

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnv reads KEY=VALUE pairs from the given .env files into the process
// environment. Missing files are ignored and variables that are already set
// keep their value, so the real environment always wins.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}
