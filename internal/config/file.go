package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/winsatrun/internal/errors"
)

// LoadFile decodes the YAML file at path over cfg. Keys absent from the
// file keep their current values; unknown keys are rejected.
func LoadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewConfigError("cannot read config file %s: %v", path, err)
	}
	return decodeYAML(data, cfg, path)
}

func decodeYAML(data []byte, cfg *AppConfig, source string) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.NewConfigError("invalid config file %s: %v", source, err)
	}
	return nil
}
