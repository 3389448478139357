package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for data files that are not JSON, YAML or TOML.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// LoadFile reads a JSON (.json), YAML (.yaml, .yml) or TOML (.toml) document into a map.
func LoadFile(path string) (map[string]any, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !isDataFormat(ext) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	data := make(map[string]any)
	switch ext {
	case ".json":
		err = json.Unmarshal(content, &data)
	case ".toml":
		_, err = toml.Decode(string(content), &data)
	default:
		err = yaml.Unmarshal(content, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return data, nil
}

// SaveFile writes data as indented JSON, block-style YAML or TOML depending on the extension.
func SaveFile(path string, data map[string]any) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !isDataFormat(ext) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	var (
		out []byte
		err error
	)
	switch ext {
	case ".json":
		out, err = json.MarshalIndent(data, "", "  ")
		out = append(out, '\n')
	case ".toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(data)
		out = buf.Bytes()
	default:
		out, err = yaml.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func isDataFormat(ext string) bool {
	switch ext {
	case ".json", ".yaml", ".yml", ".toml":
		return true
	}
	return false
}
