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

package repack

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/walteh/subzip/pkg/staging"
	"gitlab.com/tozd/go/errors"
)

// 📊 Result describes a written archive
type Result struct {
	Output  string   // Path of the written archive
	Entries []string // Entry names in write order
	Bytes   int64    // Uncompressed bytes written
	Size    int64    // Archive size on disk
}

// 📦 Pack writes every staged file into a zip at output, named by its path
// relative to the staging root. The archive is written to a temp file next to
// output and renamed into place, so a failed run leaves no archive behind.
func Pack(ctx context.Context, dir *staging.Dir, output string) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	files, err := dir.ListFiles(ctx)
	if err != nil {
		return nil, errors.Errorf("listing staged files: %w", err)
	}

	outDir := filepath.Dir(output)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, errors.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(outDir, "."+filepath.Base(output)+".*.tmp")
	if err != nil {
		return nil, errors.Errorf("creating temp archive: %w", err)
	}
	tmpPath := tmp.Name()

	result := &Result{Output: output}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, f := range files {
		n, err := addFile(dir, zw, f)
		if err != nil {
			return nil, errors.Errorf("adding %s: %w", f.Path, err)
		}
		result.Entries = append(result.Entries, f.Path)
		result.Bytes += n
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Errorf("finalizing archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.Errorf("closing temp archive: %w", err)
	}
	info, err := os.Stat(tmpPath)
	if err != nil {
		return nil, errors.Errorf("checking temp archive: %w", err)
	}
	result.Size = info.Size()
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return nil, errors.Errorf("setting archive permissions: %w", err)
	}
	if err := os.Rename(tmpPath, output); err != nil {
		return nil, errors.Errorf("renaming temp archive: %w", err)
	}
	committed = true

	logger.Debug().
		Str("output", output).
		Int("entries", len(result.Entries)).
		Int64("bytes", result.Bytes).
		Msg("archive written")

	return result, nil
}

func addFile(dir *staging.Dir, zw *zip.Writer, f staging.FileInfo) (int64, error) {
	src, err := os.Open(filepath.Join(dir.Root(), filepath.FromSlash(f.Path)))
	if err != nil {
		return 0, errors.Errorf("opening staged file: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return 0, errors.Errorf("stat staged file: %w", err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, errors.Errorf("building entry header: %w", err)
	}
	header.Name = f.Path
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return 0, errors.Errorf("creating entry: %w", err)
	}

	n, err := io.Copy(w, src)
	if err != nil {
		return n, errors.Errorf("writing entry: %w", err)
	}

	return n, nil
}
