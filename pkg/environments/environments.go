package environments

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Package environments resolves named fleet deployments to API base URLs.

// Environment is one named fleet API deployment.
type Environment struct {
	Name        string `json:"name" yaml:"name"`
	BaseURL     string `json:"base_url" yaml:"base_url"`
	Description string `json:"description" yaml:"description"`
}

// configFile represents the structure of the environments configuration file.
type configFile struct {
	Environments []Environment `json:"environments" yaml:"environments"`
}

var builtin = []Environment{
	{Name: "prod_web", BaseURL: "https://fleet.badger-technologies.com/api/web/v1/", Description: "production web api"},
	{Name: "prod_insight", BaseURL: "https://fleet.badger-technologies.com/api/insight/v1/", Description: "production insight api"},
	{Name: "staging_web", BaseURL: "https://staging.btdev.team/api/web/v1/", Description: "staging web api"},
	{Name: "staging_insight", BaseURL: "https://staging.btdev.team/api/insight/v1/", Description: "staging insight api"},
	{Name: "dev_web", BaseURL: "https://dev.btdev.team/api/web/v1/", Description: "development web api"},
	{Name: "dev_insight", BaseURL: "https://dev.btdev.team/api/insight/v1/", Description: "development insight api"},
	{Name: "demo_web", BaseURL: "https://demo.badger-service.com/api/web/v1/", Description: "demo web api"},
	{Name: "demo_insight", BaseURL: "https://demo.badger-service.com/api/insight/v1/", Description: "demo insight api"},
}

// Registry holds environments keyed by name.
type Registry struct {
	mu   sync.RWMutex
	envs []Environment
	idx  map[string]Environment
}

// Default returns the registry of known fleet deployments.
func Default() *Registry {
	reg, err := newRegistry(builtin)
	if err != nil {
		panic(fmt.Sprintf("builtin environments: %v", err))
	}
	return reg
}

// LoadRegistry loads environments from a YAML/JSON file. An empty path
// yields the built-in table.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open environments file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read environments file: %w", err)
	}

	fileReg, err := parseEnvironments(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Environments) == 0 {
		return nil, errors.New("environments file contains no environments entries")
	}
	return newRegistry(fileReg.Environments)
}

func newRegistry(envs []Environment) (*Registry, error) {
	reg := &Registry{
		envs: make([]Environment, len(envs)),
		idx:  make(map[string]Environment, len(envs)),
	}
	for i := range envs {
		env := sanitizeEnvironment(envs[i])
		if err := validateEnvironment(env); err != nil {
			return nil, fmt.Errorf("environments[%d]: %w", i, err)
		}
		if _, exists := reg.idx[env.Name]; exists {
			return nil, fmt.Errorf("duplicate environment name %q", env.Name)
		}
		reg.envs[i] = env
		reg.idx[env.Name] = env
	}
	return reg, nil
}

// parseEnvironments decodes the file with the decoder matching ext, or
// tries each known format when ext is empty.
func parseEnvironments(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var cf configFile
		if err := d.fn(data, &cf); err == nil {
			return cf, nil
		}
	}
	return configFile{}, errors.New("environments file format not recognized (expected YAML or JSON)")
}

func sanitizeEnvironment(env Environment) Environment {
	env.Name = strings.ToLower(strings.TrimSpace(env.Name))
	env.BaseURL = strings.TrimSpace(env.BaseURL)
	env.Description = strings.TrimSpace(env.Description)
	if env.BaseURL != "" && !strings.HasSuffix(env.BaseURL, "/") {
		env.BaseURL += "/"
	}
	return env
}

func validateEnvironment(env Environment) error {
	if env.Name == "" {
		return errors.New("name is required")
	}
	if env.BaseURL == "" {
		return fmt.Errorf("base_url is required for environment %q", env.Name)
	}
	u, err := url.Parse(env.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url %q for environment %q is not an absolute http(s) url", env.BaseURL, env.Name)
	}
	return nil
}

// ByName returns the environment with the given name.
func (r *Registry) ByName(name string) (Environment, bool) {
	if r == nil {
		return Environment{}, false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Environment{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	env, ok := r.idx[name]
	return env, ok
}

// Resolve is ByName with an error listing the valid names.
func (r *Registry) Resolve(name string) (Environment, error) {
	if env, ok := r.ByName(name); ok {
		return env, nil
	}
	return Environment{}, fmt.Errorf("unknown environment %q (valid: %s)", name, strings.Join(r.Names(), ", "))
}

// All returns all environments in file order.
func (r *Registry) All() []Environment {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Environment, len(r.envs))
	copy(out, r.envs)
	return out
}

// Names returns the sorted environment names.
func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, 0, len(all))
	for _, env := range all {
		names = append(names, env.Name)
	}
	sort.Strings(names)
	return names
}
