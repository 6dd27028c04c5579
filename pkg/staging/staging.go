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

package staging

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrStagingExists is returned when the staging path already holds content.
	ErrStagingExists = errors.Base("staging directory already exists")
	// ErrUnsafePath is returned for paths that would resolve outside the staging root.
	ErrUnsafePath = errors.Base("path escapes staging directory")
)

// 📄 FileInfo describes a staged file
type FileInfo struct {
	Path string      // Slash-separated path relative to the staging root
	Size int64       // File size in bytes
	Mode os.FileMode // File permissions
}

// 📁 Dir is a staging directory owned by a single run
type Dir struct {
	root    string
	created bool // root did not exist before Create
}

// 🏭 Create creates <parent>/<name>. An existing empty directory is reused and
// survives Remove; anything else already at that path fails with ErrStagingExists.
func Create(ctx context.Context, parent, name string) (*Dir, error) {
	logger := zerolog.Ctx(ctx)

	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return nil, errors.Errorf("invalid staging name %q", name)
	}

	root, err := filepath.Abs(filepath.Join(parent, name))
	if err != nil {
		return nil, errors.Errorf("resolving staging path: %w", err)
	}

	created := false
	info, err := os.Lstat(root)
	switch {
	case err == nil && !info.IsDir():
		return nil, errors.Errorf("%w: %s is not a directory", ErrStagingExists, root)
	case err == nil:
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, errors.Errorf("reading existing staging directory: %w", err)
		}
		if len(entries) > 0 {
			return nil, errors.Errorf("%w: %s is not empty", ErrStagingExists, root)
		}
	case os.IsNotExist(err):
		if err := os.MkdirAll(root, 0755); err != nil {
			return nil, errors.Errorf("creating staging directory: %w", err)
		}
		created = true
	default:
		return nil, errors.Errorf("checking staging directory: %w", err)
	}

	logger.Debug().Str("path", root).Bool("created", created).Msg("staging directory ready")

	return &Dir{root: root, created: created}, nil
}

// Root returns the absolute staging root.
func (d *Dir) Root() string {
	return d.root
}

// 🔍 abs maps a slash-separated relative path into the staging root
func (d *Dir) abs(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("%w: %s", ErrUnsafePath, rel)
	}
	return filepath.Join(d.root, clean), nil
}

// 📂 CreateDir ensures a directory and its missing ancestors exist
func (d *Dir) CreateDir(ctx context.Context, rel string) error {
	path, err := d.abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Errorf("creating directory: %w", err)
	}
	return nil
}

// 📝 WriteFile copies r into rel byte-for-byte, creating parents and
// truncating any existing file
func (d *Dir) WriteFile(ctx context.Context, rel string, r io.Reader, mode os.FileMode) (int64, error) {
	path, err := d.abs(rel)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, errors.Errorf("creating parent directories: %w", err)
	}

	if mode == 0 {
		mode = 0644
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, errors.Errorf("creating file: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return n, errors.Errorf("writing file: %w", err)
	}

	if err := f.Close(); err != nil {
		return n, errors.Errorf("closing file: %w", err)
	}

	return n, nil
}

// 📋 ListFiles returns every regular file under the root in lexical order
func (d *Dir) ListFiles(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path: filepath.ToSlash(rel),
			Size: info.Size(),
			Mode: info.Mode().Perm(),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking staging directory: %w", err)
	}

	return files, nil
}

// 🧹 Remove deletes every file, then every directory deepest first, then the
// root itself when Create made it. Calling it again is a no-op.
func (d *Dir) Remove(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	if _, err := os.Lstat(d.root); os.IsNotExist(err) {
		return nil
	}

	var files, dirs []string
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == d.root {
			return nil
		}
		if entry.IsDir() {
			dirs = append(dirs, path)
		} else {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return errors.Errorf("walking staging directory: %w", err)
	}

	for _, f := range files {
		if err := os.Remove(f); err != nil {
			return errors.Errorf("removing file: %w", err)
		}
	}

	sort.SliceStable(dirs, func(i, j int) bool {
		return depth(dirs[i]) > depth(dirs[j])
	})
	for _, dir := range dirs {
		if err := os.Remove(dir); err != nil {
			return errors.Errorf("removing directory: %w", err)
		}
	}

	if d.created {
		if err := os.Remove(d.root); err != nil {
			return errors.Errorf("removing staging root: %w", err)
		}
	}

	logger.Debug().Str("path", d.root).Int("files", len(files)).Int("dirs", len(dirs)).Msg("staging directory removed")

	return nil
}

func depth(path string) int {
	return strings.Count(path, string(filepath.Separator))
}
