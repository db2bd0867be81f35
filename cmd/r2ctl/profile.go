package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultServer = "http://localhost:8080"

// Profile is the persisted CLI state.
type Profile struct {
	Server string `yaml:"server"`
	Token  string `yaml:"token,omitempty"`
	Email  string `yaml:"email,omitempty"`
}

func defaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".r2ctl", "config.yaml")
	}
	return filepath.Join(home, ".r2ctl", "config.yaml")
}

// LoadProfile reads path. A missing file yields the default profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Profile{Server: defaultServer}, nil
	}
	if err != nil {
		return nil, err
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.Server == "" {
		p.Server = defaultServer
	}
	return &p, nil
}

// Save writes the profile with owner-only permissions since it holds a token.
func (p *Profile) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
