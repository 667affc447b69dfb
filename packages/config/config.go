// Package config loads the demo application configuration from TOML or
// from the engine's INI dialect.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/leonkasovan/go-composer/packages/composer"
)

var (
	ErrUnknownFormat = errors.New("config: unknown file format")
	ErrInvalid       = errors.New("config: invalid value")
)

// Video configures the window.
type Video struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

// Config is the whole application configuration.
type Config struct {
	Video  Video           `toml:"Video"`
	Render composer.Config `toml:"Render"`
}

// Default returns the configuration used for missing files and keys.
func Default() Config {
	return Config{
		Video:  Video{Width: 960, Height: 540, Title: "composer", VSync: true},
		Render: composer.DefaultConfig(),
	}
}

// Validate reports values no window can be opened with.
func (c Config) Validate() error {
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Video.Width, c.Video.Height)
	}
	if c.Render.MaxTextureUnits < 0 || c.Render.PageVertices < 0 {
		return fmt.Errorf("%w: negative render limit", ErrInvalid)
	}
	return nil
}

// Load reads path, choosing the parser by extension: .toml, or .ini and
// .cfg for the INI dialect. Keys absent from the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		cfg, err = ParseTOML(data)
	case ".ini", ".cfg":
		cfg, err = ParseINI(string(data))
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// ParseTOML decodes a TOML document over Default. Unknown keys are errors.
func ParseTOML(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg as TOML.
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
