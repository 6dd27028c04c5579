// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultProvider   = "github"
	DefaultHost       = "https://github.com"
	DefaultStagingDir = "."
)

// 📝 Parser is the interface for config file formats
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register adds a parser to the registry
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns the first parser that accepts filename
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// ⚙️ Config holds run settings that are not part of the folder URL
type Config struct {
	Provider    string   `json:"provider,omitempty" yaml:"provider,omitempty"`         // Registered provider name
	Host        string   `json:"host,omitempty" yaml:"host,omitempty"`                 // Web UI base URL folder URLs must start with
	ArchiveHost string   `json:"archive_host,omitempty" yaml:"archive_host,omitempty"` // Base URL archives are downloaded from
	StagingDir  string   `json:"staging_dir,omitempty" yaml:"staging_dir,omitempty"`   // Parent of the staging directory
	Exclude     []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`           // Glob patterns relative to the folder
	KeepStaging bool     `json:"keep_staging,omitempty" yaml:"keep_staging,omitempty"` // Skip staging cleanup
	Quiet       bool     `json:"quiet,omitempty" yaml:"quiet,omitempty"`               // Suppress console lines and progress
}

// 🏭 Default returns a validated config with every default applied
func Default() *Config {
	cfg := &Config{}
	// defaults always validate
	_ = cfg.Validate()
	return cfg
}

// 📥 Load reads, parses and validates a config file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ✅ Validate fills defaults and rejects unusable values
func (cfg *Config) Validate() error {
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	cfg.Host = strings.TrimSuffix(cfg.Host, "/")
	if err := validateHost("host", cfg.Host); err != nil {
		return err
	}

	if cfg.ArchiveHost == "" {
		cfg.ArchiveHost = cfg.Host
	}
	cfg.ArchiveHost = strings.TrimSuffix(cfg.ArchiveHost, "/")
	if err := validateHost("archive_host", cfg.ArchiveHost); err != nil {
		return err
	}

	if cfg.StagingDir == "" {
		cfg.StagingDir = DefaultStagingDir
	}
	cfg.StagingDir = filepath.Clean(cfg.StagingDir)

	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("exclude: invalid pattern %q", pattern)
		}
	}

	return nil
}

func validateHost(field, host string) error {
	u, err := url.Parse(host)
	if err != nil {
		return errors.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("%s: scheme must be http or https, got %q", field, host)
	}
	if u.Host == "" {
		return errors.Errorf("%s: missing hostname in %q", field, host)
	}
	return nil
}

func (cfg *Config) String() string {
	return fmt.Sprintf("%s(%s, archives from %s) staging in %s", cfg.Provider, cfg.Host, cfg.ArchiveHost, cfg.StagingDir)
}
