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

package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/walteh/subzip/pkg/locator"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Provider is the interface for archive hosts
type Provider interface {
	// 🏷️ Name returns the registered provider name
	Name() string

	// 📦 ArchiveURL returns the URL of the full repository archive for ref
	ArchiveURL(ref locator.Reference) string

	// 📥 DownloadArchive fetches the archive for ref; every body byte is also written to progress
	DownloadArchive(ctx context.Context, ref locator.Reference, progress io.Writer) ([]byte, error)
}

// ⚙️ Options configures a provider instance
type Options struct {
	Host       string       // Base URL archives are downloaded from
	HTTPClient *http.Client // Defaults to http.DefaultClient
}

// 🏭 Factory creates a new provider
type Factory func(ctx context.Context, opts Options) (Provider, error)

var (
	mu sync.RWMutex
	// 🗺️ providers is a map of provider names to factories
	providers = make(map[string]Factory)
)

// 📝 Register registers a provider factory
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// 🎯 Get creates the provider registered under name
func Get(ctx context.Context, name string, opts Options) (Provider, error) {
	mu.RLock()
	factory, ok := providers[name]
	mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown provider: %s (available: %s)", name, strings.Join(Names(), ", "))
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return factory(ctx, opts)
}

// Names returns the registered provider names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ❌ DownloadFailedError is returned when the archive request does not succeed
type DownloadFailedError struct {
	StatusCode int
	URL        string
	Message    string // Reason reported by the host, when it sent one
}

func (e *DownloadFailedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("download failed: %s returned status %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("download failed: %s returned status %d", e.URL, e.StatusCode)
}
