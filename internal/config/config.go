package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/prnj-hooks/internal/model"
)

const (
	// EnvAutoAppend selects verify-only mode when set to a falsy value.
	EnvAutoAppend = "PRNJ_BRANCH_COMMIT_MSG_AUTO_APPEND"

	// EnvMessageSource carries the commit message source from the hook
	// framework.
	EnvMessageSource = "PRE_COMMIT_COMMIT_MSG_SOURCE"
)

// FileNames lists the repository config files in lookup order.
var FileNames = []string{".prnj-hooks.yaml", ".prnj-hooks.yml", ".prnj-hooks.json"}

// Source names where the resolved Mode came from.
type Source string

const (
	// SourceDefault means nothing configured the mode.
	SourceDefault Source = "default"

	// SourceFile means the repository config file set the mode.
	SourceFile Source = "file"

	// SourceEnv means EnvAutoAppend set the mode.
	SourceEnv Source = "env"

	// SourceFlag means a command flag set the mode.
	SourceFlag Source = "flag"
)

// File is the on-disk repository configuration.
type File struct {
	// AutoAppend selects auto-append (true) or verify-only (false) mode.
	// Nil means the file does not set it.
	AutoAppend *bool `yaml:"autoAppend" json:"autoAppend"`

	// Mode names the mode directly ("auto-append" or "verify-only") and
	// wins over AutoAppend when both are set.
	Mode string `yaml:"mode" json:"mode"`

	// Path is the file the values were read from.
	Path string `yaml:"-" json:"-"`
}

// Settings is the resolved configuration for one invocation.
type Settings struct {
	Mode       model.Mode
	ModeSource Source

	// MessageSource is the commit message origin. It is only known when
	// the hook framework sets EnvMessageSource.
	MessageSource    model.MessageSource
	HasMessageSource bool

	// ConfigPath is the config file that was loaded, if any.
	ConfigPath string
}

// LookupEnv matches the signature of os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// LoadFile reads the first config file found in dir. It returns nil and no
// error when none of FileNames exist.
func LoadFile(dir string) (*File, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		f, err := parseFile(name, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if f.Mode != "" {
			if _, err := model.ParseMode(f.Mode); err != nil {
				return nil, fmt.Errorf("invalid %s: %w", path, err)
			}
		}
		f.Path = path
		return f, nil
	}
	return nil, nil
}

// parseFile decodes data as YAML or JSONC depending on the file extension.
func parseFile(name string, data []byte) (*File, error) {
	var f File
	switch filepath.Ext(name) {
	case ".json":
		// Comments and trailing commas are stripped before decoding.
		if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

// Resolve loads the config file from dir (which may be empty to skip the
// file lookup) and applies the environment on top of it.
func Resolve(dir string, lookup LookupEnv) (Settings, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	s := Settings{Mode: model.ModeAutoAppend, ModeSource: SourceDefault}

	if dir != "" {
		f, err := LoadFile(dir)
		if err != nil {
			return Settings{}, model.WrapCLIError(model.ExitConfigError, "invalid configuration", err)
		}
		if f != nil {
			s.ConfigPath = f.Path
			switch {
			case f.Mode != "":
				// Validated by LoadFile.
				s.Mode, _ = model.ParseMode(f.Mode)
				s.ModeSource = SourceFile
			case f.AutoAppend != nil:
				s.Mode = model.ModeFromAutoAppend(*f.AutoAppend)
				s.ModeSource = SourceFile
			}
		}
	}

	if v, ok := lookup(EnvAutoAppend); ok && v != "" {
		s.Mode = model.ModeFromAutoAppend(!IsFalsy(v))
		s.ModeSource = SourceEnv
	}

	if v, ok := lookup(EnvMessageSource); ok {
		s.MessageSource = model.ParseMessageSource(v)
		s.HasMessageSource = true
	}

	return s, nil
}

// IsFalsy reports whether v spells false. Anything else counts as true.
func IsFalsy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "f", "false", "n", "no", "off":
		return true
	default:
		return false
	}
}
