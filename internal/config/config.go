// Package config loads and watches the application's YAML
// configuration, writing the default configuration to disk on first
// run. The keybinding override file uses a separate JSON round-trip —
// see keybindings.go.
package config

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/corvidterm/corvid/internal/logging"
)

var log = logging.New("config")

// ShellConfig controls which shell is launched and how.
type ShellConfig struct {
	Path          string            `yaml:"path"`
	SourceRC      bool              `yaml:"source_rc"`
	AdditionalEnv map[string]string `yaml:"additional_env"`
}

// Config is the top-level application configuration.
type Config struct {
	Shell    ShellConfig `yaml:"shell"`
	Theme    string      `yaml:"theme"`
	FontSize float32     `yaml:"font_size"`
	Cols     int         `yaml:"cols"`
	Rows     int         `yaml:"rows"`
}

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() *Config {
	return &Config{
		Shell:    ShellConfig{SourceRC: true, AdditionalEnv: map[string]string{}},
		Theme:    "corvid-dark",
		FontSize: 15.0,
		Cols:     80,
		Rows:     24,
	}
}

// Dir returns ~/.config/corvid.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "corvid"), nil
}

// Path returns ~/.config/corvid/config.yaml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file, writing the default config on first run.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		return cfg, Save(cfg)
	}
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to the config path, creating the directory if needed.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path, err := Path()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Watch watches the config directory and invokes onChange with the
// freshly reloaded config whenever config.yaml is written. Grounded on
// amantus-ai-vibetunnel/regenrek-vibetunnel's fsnotify usage for
// live config reload.
func Watch(onChange func(*Config)) (*fsnotify.Watcher, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Base(event.Name) != "config.yaml" {
					continue
				}
				cfg, err := Load()
				if err != nil {
					log.Printf("reload failed: %v", err)
					continue
				}
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("watcher error: %v", err)
			}
		}
	}()

	return watcher, nil
}
