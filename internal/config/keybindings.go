package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// KeybindingOverrides remaps named keys (by the names internal/encode
// assigns them, e.g. "Home") to a literal byte sequence, letting a user
// override the Input Encoder's default xterm sequences. Stored as a
// JSON file under ~/.config/corvid, round-tripped with
// LoadKeybindingOverrides/Save.
type KeybindingOverrides struct {
	Overrides map[string]string `json:"overrides"`
}

// DefaultKeybindingOverrides returns an empty override set.
func DefaultKeybindingOverrides() *KeybindingOverrides {
	return &KeybindingOverrides{Overrides: make(map[string]string)}
}

// KeybindingsPath returns ~/.config/corvid/keybindings.json.
func KeybindingsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "keybindings.json"), nil
}

// LoadKeybindingOverrides reads the override file, returning an empty
// set (not an error) if none exists yet.
func LoadKeybindingOverrides() (*KeybindingOverrides, error) {
	path, err := KeybindingsPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultKeybindingOverrides(), nil
		}
		return nil, err
	}
	k := DefaultKeybindingOverrides()
	if err := json.Unmarshal(data, k); err != nil {
		return nil, err
	}
	return k, nil
}

// Save writes the override set to disk as indented JSON.
func (k *KeybindingOverrides) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path, err := KeybindingsPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Set installs an override for the named key.
func (k *KeybindingOverrides) Set(name, sequence string) {
	if k.Overrides == nil {
		k.Overrides = make(map[string]string)
	}
	k.Overrides[name] = sequence
}

// Remove deletes an override, reverting that key to its built-in encoding.
func (k *KeybindingOverrides) Remove(name string) {
	delete(k.Overrides, name)
}
