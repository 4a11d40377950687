package engineconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML file over Defaults() and validates it.
// Missing keys keep their defaults; unknown keys are ignored.
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read engine config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return cfg, data, nil
}

// Parse decodes YAML bytes over Defaults() and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode engine config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromMap builds a config from a key/value mapping. Keys may be nested
// ({"alerts": {"birthday_window": 7}}), dotted ("alerts.birthday_window")
// or bare threshold names ("birthday_window"). Unknown keys are ignored.
func FromMap(values map[string]any) (*Config, error) {
	nested, err := foldKeys(values)
	if err != nil {
		return nil, err
	}

	data, err := yaml.Marshal(nested)
	if err != nil {
		return nil, fmt.Errorf("encode config map: %w", err)
	}
	return Parse(data)
}

// foldKeys rewrites dotted and bare keys into the nested section shape
func foldKeys(values map[string]any) (map[string]any, error) {
	sections, err := sectionOf()
	if err != nil {
		return nil, err
	}

	out := map[string]any{}
	for key, v := range values {
		path := strings.Split(key, ".")
		if len(path) == 1 {
			if section, ok := sections[key]; ok {
				path = []string{section, key}
			}
		}
		setPath(out, path, v)
	}
	return out, nil
}

// sectionOf maps each bare key of Defaults() to its section name
func sectionOf() (map[string]string, error) {
	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	var tree map[string]map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode defaults: %w", err)
	}

	out := map[string]string{}
	for section, keys := range tree {
		for key := range keys {
			out[key] = section
		}
	}
	return out, nil
}

// setPath stores v under path, merging into maps already present
func setPath(dst map[string]any, path []string, v any) {
	key := path[0]
	if len(path) > 1 {
		child, ok := dst[key].(map[string]any)
		if !ok {
			child = map[string]any{}
			dst[key] = child
		}
		setPath(child, path[1:], v)
		return
	}

	src, ok := v.(map[string]any)
	if !ok {
		dst[key] = v
		return
	}
	child, ok := dst[key].(map[string]any)
	if !ok {
		child = map[string]any{}
		dst[key] = child
	}
	for k, sub := range src {
		setPath(child, []string{k}, sub)
	}
}

// LoadOrDefault loads path when set, otherwise returns validated defaults
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		cfg := Defaults()
		return &cfg, nil
	}
	cfg, _, err := Load(path)
	return cfg, err
}

// Hash generates a SHA256 hash of the config (canonical JSON of the struct)
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// NewSnapshot records the config identity for an evaluation as of the given date
func NewSnapshot(cfg *Config, asOf, version string) (*Snapshot, error) {
	hash, err := Hash(cfg)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ConfigHash: hash,
		AsOf:       asOf,
		Version:    version,
		CreatedAt:  time.Now(),
	}, nil
}
