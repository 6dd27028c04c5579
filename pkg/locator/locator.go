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

package locator

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrInvalidURLFormat is returned when a folder URL does not have the
// /{owner}/{repo}/tree/{ref}/{path} shape under the configured host.
var ErrInvalidURLFormat = errors.Base("invalid URL format")

// /owner/repo/tree/ref/path/to/folder
var treeRegex = regexp.MustCompile(`^/([^/]+)/([^/]+)/tree/([^/]+)/(.+)$`)

// 🎯 Reference identifies a folder inside a repository at a given ref
type Reference struct {
	Owner      string // Repository owner
	Repo       string // Repository name
	Ref        string // Branch, tag or commit
	FolderPath string // Repo-relative folder path, no leading slash
}

// 📦 Repository returns the owner/repo identifier
func (r Reference) Repository() string {
	return r.Owner + "/" + r.Repo
}

// 📂 FolderBase returns the last segment of the folder path
func (r Reference) FolderBase() string {
	return path.Base(r.FolderPath)
}

// 📦 DefaultOutputName returns the archive name used when none is given
func (r Reference) DefaultOutputName() string {
	return r.FolderBase() + ".zip"
}

func (r Reference) String() string {
	return fmt.Sprintf("%s@%s:%s", r.Repository(), r.Ref, r.FolderPath)
}

// OutputName returns override when set, otherwise the default output name for ref.
func OutputName(ref Reference, override string) string {
	if override != "" {
		return override
	}
	return ref.DefaultOutputName()
}

// 🔍 Locator parses browseable folder URLs for a single web host
type Locator struct {
	base *url.URL
}

// 🏭 New creates a locator for the given web host (e.g. https://github.com)
func New(host string) (*Locator, error) {
	base, err := url.Parse(strings.TrimSuffix(host, "/"))
	if err != nil {
		return nil, errors.Errorf("parsing host %q: %w", host, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("host %q must include a scheme and a hostname", host)
	}
	return &Locator{base: base}, nil
}

// Host returns the scheme and host URLs must start with.
func (l *Locator) Host() string {
	return l.base.Scheme + "://" + l.base.Host
}

// 🎯 Parse turns a folder URL into a Reference
func (l *Locator) Parse(raw string) (Reference, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Reference{}, l.invalid(raw)
	}

	if !strings.EqualFold(u.Scheme, l.base.Scheme) || !strings.EqualFold(u.Host, l.base.Host) {
		return Reference{}, l.invalid(raw)
	}

	match := treeRegex.FindStringSubmatch(u.Path)
	if len(match) != 5 {
		return Reference{}, l.invalid(raw)
	}

	folder := strings.Trim(match[4], "/")
	if folder == "" {
		return Reference{}, l.invalid(raw)
	}
	for _, seg := range strings.Split(folder, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return Reference{}, l.invalid(raw)
		}
	}

	return Reference{
		Owner:      match[1],
		Repo:       match[2],
		Ref:        match[3],
		FolderPath: folder,
	}, nil
}

func (l *Locator) invalid(raw string) error {
	return errors.Errorf("%w: %q, please provide a URL in the format: %s/username/repo/tree/branch/path/to/folder",
		ErrInvalidURLFormat, raw, l.Host())
}
