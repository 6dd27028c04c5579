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

package extract

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/walteh/subzip/pkg/locator"
	"github.com/walteh/subzip/pkg/log"
	"github.com/walteh/subzip/pkg/staging"
	"gitlab.com/tozd/go/errors"
)

// ⚙️ Options controls which matched entries are staged
type Options struct {
	// Exclude holds doublestar patterns matched against paths relative to the folder
	Exclude []string
}

// 📊 Result summarises an extraction
type Result struct {
	TopLevel string   // Top-level directory reported by the archive
	Matched  int      // Entries under the requested folder
	Files    []string // Staged file paths, relative to the staging root
	Dirs     int      // Directory entries created
	Skipped  int      // Matched entries dropped by Exclude
	Bytes    int64    // Total bytes written
}

// 📥 Extract stages every entry under ref.FolderPath as {folderBase}/{relative path}
func Extract(ctx context.Context, data []byte, ref locator.Reference, dir *staging.Dir, opts Options) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Errorf("opening archive: %w", err)
	}

	result := &Result{}
	if len(zr.File) == 0 {
		logger.Debug().Msg("archive has no entries")
		return result, nil
	}

	result.TopLevel = strings.SplitN(zr.File[0].Name, "/", 2)[0]
	prefix := result.TopLevel + "/" + ref.FolderPath
	base := ref.FolderBase()

	logger.Debug().
		Str("top_level", result.TopLevel).
		Str("folder", ref.FolderPath).
		Int("entries", len(zr.File)).
		Msg("filtering archive entries")

	for _, f := range zr.File {
		rel, ok := relativeTo(f.Name, prefix)
		if !ok {
			continue
		}
		result.Matched++

		target := path.Join(base, rel)

		if rel != "" && isExcluded(ctx, opts.Exclude, rel) {
			result.Skipped++
			console.LogEntry(ctx, log.EntryOperation{Path: target, Action: log.ActionExcluded})
			continue
		}

		if f.FileInfo().IsDir() {
			if err := dir.CreateDir(ctx, target); err != nil {
				return nil, errors.Errorf("creating directory for %s: %w", f.Name, err)
			}
			result.Dirs++
			continue
		}

		n, err := writeEntry(ctx, dir, f, target)
		if err != nil {
			return nil, errors.Errorf("extracting %s: %w", f.Name, err)
		}

		result.Files = append(result.Files, target)
		result.Bytes += n
		console.LogEntry(ctx, log.EntryOperation{Path: target, Size: n, Action: log.ActionExtracted})
	}

	logger.Debug().
		Int("matched", result.Matched).
		Int("files", len(result.Files)).
		Int("skipped", result.Skipped).
		Int64("bytes", result.Bytes).
		Msg("extraction complete")

	return result, nil
}

func writeEntry(ctx context.Context, dir *staging.Dir, f *zip.File, target string) (int64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, errors.Errorf("opening entry: %w", err)
	}
	defer rc.Close()

	return dir.WriteFile(ctx, target, rc, f.Mode().Perm())
}

// relativeTo reports whether name lies under prefix on a path-segment boundary
// and returns the remainder without leading or trailing slashes.
func relativeTo(name, prefix string) (string, bool) {
	if !strings.HasPrefix(name, prefix) {
		return "", false
	}
	rest := name[len(prefix):]
	if rest != "" && !strings.HasPrefix(rest, "/") {
		return "", false
	}
	return strings.Trim(rest, "/"), true
}

func isExcluded(ctx context.Context, patterns []string, rel string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Str("pattern", pattern).Str("path", rel).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			zerolog.Ctx(ctx).Debug().Str("path", rel).Str("pattern", pattern).Msg("entry excluded by pattern")
			return true
		}
	}
	return false
}
