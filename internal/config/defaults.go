package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/drawing-board/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// LoadBoardDefaults reads the slider defaults for new boards from a YAML
// file. Keys the file omits keep their built-in values. A missing file is
// not an error.
func LoadBoardDefaults(filePath string) (models.BoardConfig, error) {
	if filePath == "" {
		return models.DefaultBoardConfig(), nil
	}
	file, err := os.Open(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return models.DefaultBoardConfig(), nil
	}
	if err != nil {
		return models.BoardConfig{}, err
	}
	defer file.Close()

	return ParseBoardDefaults(file)
}

// ParseBoardDefaults parses board defaults from an io.Reader and validates them.
func ParseBoardDefaults(r io.Reader) (models.BoardConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.BoardConfig{}, err
	}

	cfg := models.DefaultBoardConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return models.BoardConfig{}, fmt.Errorf("parsing board defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return models.BoardConfig{}, err
	}
	return cfg, nil
}
