package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/svanichkin/mycord/network"
	"github.com/svanichkin/mycord/ui"
)

// Announce bounds the random pause between ambient quotes.
type Announce struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// Config is the on-disk configuration. Flags override every field.
type Config struct {
	Host      string   `yaml:"host"`
	Port      int      `yaml:"port"`
	Theme     string   `yaml:"theme"`
	Quiet     bool     `yaml:"quiet"`
	TUI       bool     `yaml:"tui"`
	StartMenu bool     `yaml:"start_menu"`
	Proxy     string   `yaml:"proxy"`
	LogFile   string   `yaml:"log_file"`
	Announce  Announce `yaml:"announce"`
}

func Defaults() Config {
	return Config{
		Host:      network.DefaultHost,
		Port:      network.DefaultPort,
		Theme:     ui.SpartanName,
		StartMenu: true,
		Announce: Announce{
			Min: ui.DefaultAnnounceMin,
			Max: ui.DefaultAnnounceMax,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if _, ok := ui.ThemeByName(c.Theme); !ok {
		return fmt.Errorf("unknown theme %q", c.Theme)
	}
	if c.Announce.Min <= 0 || c.Announce.Max < c.Announce.Min {
		return fmt.Errorf("announce interval [%s, %s] is invalid", c.Announce.Min, c.Announce.Max)
	}
	return nil
}

func defaultConfigDir() (string, error) {
	d, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "mycord"), nil
}

// DefaultLogFile is where records go when neither flag nor file names one.
func DefaultLogFile() string {
	dir, err := defaultConfigDir()
	if err != nil {
		return "mycord.log"
	}
	return filepath.Join(dir, "mycord.log")
}

// resolveConfigPath expands "~" and makes the path absolute. An empty value
// selects config.yaml in the user config directory; a bare name without an
// extension is treated as a profile inside that directory.
func resolveConfigPath(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		if dir, err := defaultConfigDir(); err == nil {
			raw = filepath.Join(dir, "config.yaml")
		} else {
			raw = "config.yaml"
		}
	case filepath.Base(raw) == raw && filepath.Ext(raw) == "":
		if dir, err := defaultConfigDir(); err == nil {
			raw = filepath.Join(dir, raw+".yaml")
		} else {
			raw += ".yaml"
		}
	}
	return expandHome(raw)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if h, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(h, path[2:])
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}
