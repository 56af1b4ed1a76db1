package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fluidos-project/kubectl-fluidos/pkg/yaml"
)

const (
	dirName  = "kubectl-fluidos"
	fileName = "config.yaml"

	// SchemaFileName is the name of the JSON schema written next to the
	// configuration file.
	SchemaFileName = "config.v1alpha1.json"
)

// Validator validates configuration data against a schema.
type Validator interface {
	Validate(data any) error
}

// LoaderOpt configures a [Loader].
type LoaderOpt func(*Loader)

// WithValidator sets a custom validator.
func WithValidator(v Validator) LoaderOpt {
	return func(l *Loader) {
		l.validator = v
	}
}

// Loader validates and decodes configuration data.
type Loader struct {
	validator Validator
	path      string
	data      []byte
}

// NewLoaderFromBytes creates a [Loader] from byte data.
func NewLoaderFromBytes(data []byte, opts ...LoaderOpt) *Loader {
	l := &Loader{
		data: data,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.validator == nil {
		l.validator = DefaultValidator()
	}

	return l
}

// NewLoaderFromFile creates a [Loader] from a file path.
func NewLoaderFromFile(path string, opts ...LoaderOpt) (*Loader, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	l := NewLoaderFromBytes(data, opts...)
	l.path = path

	return l, nil
}

// Validate validates the configuration data against the schema.
func (l *Loader) Validate() error {
	var anyConfig any

	dec := yaml.NewDecoder(bytes.NewReader(l.data))

	err := dec.Decode(&anyConfig)
	if errors.Is(err, io.EOF) {
		// An empty file holds only defaults.
		return nil
	}
	if err != nil {
		return l.wrap(err)
	}

	err = l.validator.Validate(anyConfig)
	if err != nil {
		return l.wrap(err)
	}

	return nil
}

// Load parses and returns the configuration, with defaults applied.
func (l *Loader) Load() (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(l.data))

	err := dec.Decode(cfg)
	if errors.Is(err, io.EOF) {
		return NewConfig(), nil
	}
	if err != nil {
		return nil, l.wrap(err)
	}

	cfg.EnsureDefaults()

	return cfg, nil
}

func (l *Loader) wrap(err error) error {
	if l.path == "" {
		return fmt.Errorf("config: %w", err)
	}

	return fmt.Errorf("config %s: %w", l.path, err)
}

// Load reads, validates and decodes the configuration at path.
// A missing file is not an error: a default [*Config] is returned, unless
// required is set.
func Load(path string, required bool) (*Config, error) {
	l, err := NewLoaderFromFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		slog.Debug("no configuration file, using defaults",
			slog.String("path", path),
		)

		return NewConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	err = l.Validate()
	if err != nil {
		return nil, err
	}

	return l.Load()
}

// GetPath returns the path to the configuration file in the user's config
// directory. It checks $XDG_CONFIG_HOME first, then falls back to ~/.config,
// and finally to a temp directory.
func GetPath() string {
	if xdgHome, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdgHome != "" {
		return filepath.Join(xdgHome, dirName, fileName)
	}

	usrHome, err := os.UserHomeDir()
	if err == nil && usrHome != "" {
		return filepath.Join(usrHome, ".config", dirName, fileName)
	}

	tmpPath := filepath.Join(os.TempDir(), dirName, fileName)

	slog.Debug("could not determine user config directory, using temp path",
		slog.String("path", tmpPath),
		slog.Any("error", fmt.Errorf("$XDG_CONFIG_HOME is unset, fall back to home directory: %w", err)),
	)

	return tmpPath
}

// ReadFile reads a regular file from disk.
func ReadFile(path string) ([]byte, error) {
	pathInfo, err := os.Stat(path)
	if pathInfo != nil {
		if err == nil && pathInfo.IsDir() {
			return nil, fmt.Errorf("%s: path is a directory", path)
		}
		if err == nil && !pathInfo.Mode().IsRegular() {
			return nil, fmt.Errorf("%s: unknown file state", path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// WriteDefault writes a default configuration file to path, and the JSON
// schema next to it. An existing configuration file is kept unless force is
// set, in which case it is first moved to a timestamped backup.
func WriteDefault(path string, force bool) error {
	configExists := false

	pathInfo, err := os.Stat(path)
	if pathInfo != nil {
		switch {
		case err == nil && pathInfo.Mode().IsRegular():
			configExists = true
		case pathInfo.IsDir():
			return fmt.Errorf("%s: path is a directory", path)
		default:
			return fmt.Errorf("%s: unknown file state", path)
		}
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	if configExists && force {
		backupFile := fmt.Sprintf("%s.%d.old", filepath.Base(path), time.Now().UnixNano())
		backupPath := filepath.Join(filepath.Dir(path), backupFile)
		slog.Info("backing up existing config file",
			slog.String("path", backupPath),
		)

		err = os.Rename(path, backupPath)
		if err != nil {
			return fmt.Errorf("rename existing config file to backup: %w", err)
		}

		configExists = false
	}

	if configExists {
		slog.Debug("configuration file already exists, skipping write",
			slog.String("path", path),
		)
	} else {
		data, err := NewConfig().Encode()
		if err != nil {
			return err
		}

		data = append([]byte("# yaml-language-server: $schema=./"+SchemaFileName+"\n"), data...)

		slog.Info("write default configuration",
			slog.String("path", path),
		)

		err = os.WriteFile(path, data, 0o600)
		if err != nil {
			return fmt.Errorf("write config file: %w", err)
		}
	}

	schemaJSON, err := Schema()
	if err != nil {
		return err
	}

	schemaPath := filepath.Join(filepath.Dir(path), SchemaFileName)
	slog.Debug("write JSON schema",
		slog.String("path", schemaPath),
	)

	err = os.WriteFile(schemaPath, schemaJSON, 0o600)
	if err != nil {
		return fmt.Errorf("write schema file: %w", err)
	}

	return nil
}
