package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	applicationName = "amby"
	fileName        = "credentials.yaml"
)

// CredentialError means no usable bridge username could be established.
type CredentialError struct {
	Bridge string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("no username for bridge %s", e.Bridge)
	}
	return fmt.Sprintf("no username for bridge %s: %v", e.Bridge, e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

type bridgeCredentials struct {
	Username string `yaml:"username"`
}

// Store persists bridge usernames in a YAML file keyed by bridge address.
type Store struct {
	path string
}

// NewStore uses dir when set, otherwise the user's config directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locating config directory: %w", err)
		}
		dir = filepath.Join(configDir, applicationName)
	}
	return &Store{path: filepath.Join(dir, fileName)}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored username for bridge. A missing file or entry is not
// an error.
func (s *Store) Load(bridge string) (string, bool, error) {
	all, err := s.readAll()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}

	c, ok := all[bridge]
	// the file may be edited by hand
	username := strings.TrimSpace(c.Username)
	if !ok || username == "" {
		return "", false, nil
	}
	return username, true, nil
}

func (s *Store) Save(bridge, username string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	all, err := s.readAll()
	if err != nil || all == nil {
		all = make(map[string]bridgeCredentials)
	}
	all[bridge] = bridgeCredentials{Username: username}

	data, err := yaml.Marshal(all)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

func (s *Store) readAll() (map[string]bridgeCredentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var all map[string]bridgeCredentials
	if err := yaml.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return all, nil
}
