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

package operation

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/subzip/pkg/config"
	"github.com/walteh/subzip/pkg/extract"
	"github.com/walteh/subzip/pkg/locator"
	"github.com/walteh/subzip/pkg/log"
	"github.com/walteh/subzip/pkg/provider"
	"github.com/walteh/subzip/pkg/repack"
	"github.com/walteh/subzip/pkg/staging"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options contains everything a pack operation needs
type Options struct {
	// Config holds the validated run settings
	Config *config.Config
	// Provider downloads the repository archive
	Provider provider.Provider
	// Logger prints console lines; defaults to log.Discard
	Logger *log.Logger
	// Progress receives the download progress bar; defaults to the logger console
	Progress io.Writer
}

// 📊 Result describes a finished pack
type Result struct {
	Reference locator.Reference
	Output    string
	Staging   string
	Extract   *extract.Result
	Pack      *repack.Result
}

// 📦 PackOperation turns one folder URL into one zip archive
type PackOperation struct {
	config   *config.Config
	provider provider.Provider
	logger   *log.Logger
	progress io.Writer
	locator  *locator.Locator
}

// 🏭 NewPackOperation creates a pack operation
func NewPackOperation(opts Options) (*PackOperation, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.Provider == nil {
		return nil, errors.Errorf("provider is required")
	}

	loc, err := locator.New(opts.Config.Host)
	if err != nil {
		return nil, errors.Errorf("creating locator: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	progress := opts.Progress
	if progress == nil {
		progress = logger.Console()
	}
	if opts.Config.Quiet {
		progress = nil
	}

	return &PackOperation{
		config:   opts.Config,
		provider: opts.Provider,
		logger:   logger,
		progress: progress,
		locator:  loc,
	}, nil
}

// 🏃 Execute packs the folder named by rawURL into output (or <folder>.zip when output is empty)
func (op *PackOperation) Execute(ctx context.Context, rawURL, output string) (_ *Result, err error) {
	logger := zerolog.Ctx(ctx)
	ctx = log.NewContext(ctx, op.logger)

	ref, err := op.locator.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	output = locator.OutputName(ref, output)

	logger.Debug().
		Str("owner", ref.Owner).
		Str("repo", ref.Repo).
		Str("ref", ref.Ref).
		Str("folder", ref.FolderPath).
		Str("output", output).
		Msg("starting pack")

	op.logger.StartPack(ctx, log.PackOperation{
		Repo:   ref.Repository(),
		Ref:    ref.Ref,
		Folder: ref.FolderPath,
		Output: output,
	})
	defer op.logger.EndPack(ctx)

	data, err := op.download(ctx, ref)
	if err != nil {
		return nil, err
	}

	dir, err := staging.Create(ctx, op.config.StagingDir, stagingName(op.config.StagingDir, output, ref))
	if err != nil {
		return nil, errors.Errorf("creating staging directory: %w", err)
	}

	if op.config.KeepStaging {
		logger.Debug().Str("path", dir.Root()).Msg("keeping staging directory")
	} else {
		// Remove is idempotent, so this only does work when a later step failed
		defer func() {
			if rerr := dir.Remove(ctx); rerr != nil {
				logger.Warn().Err(rerr).Str("path", dir.Root()).Msg("removing staging directory")
				if err == nil {
					err = errors.Errorf("removing staging directory: %w", rerr)
				}
			}
		}()
	}

	extracted, err := extract.Extract(ctx, data, ref, dir, extract.Options{Exclude: op.config.Exclude})
	if err != nil {
		return nil, errors.Errorf("extracting %s: %w", ref.FolderPath, err)
	}
	if extracted.Matched == 0 {
		op.logger.Warningf("no entries found under %s in %s", ref.FolderPath, ref.Repository())
	}

	packed, err := repack.Pack(ctx, dir, output)
	if err != nil {
		return nil, errors.Errorf("packing %s: %w", output, err)
	}

	op.logger.LogNewline()
	op.logger.LogEntry(ctx, log.EntryOperation{Path: output, Size: packed.Size, Action: log.ActionPacked})
	op.logger.Infof("%d files staged, %d excluded", len(extracted.Files), extracted.Skipped)

	if !op.config.KeepStaging {
		if err := dir.Remove(ctx); err != nil {
			return nil, errors.Errorf("removing staging directory: %w", err)
		}
	}

	op.logger.Successf("Successfully created %s", output)

	return &Result{
		Reference: ref,
		Output:    output,
		Staging:   dir.Root(),
		Extract:   extracted,
		Pack:      packed,
	}, nil
}

// 📥 download fetches the archive, drawing a progress bar unless quiet
func (op *PackOperation) download(ctx context.Context, ref locator.Reference) ([]byte, error) {
	var progress io.Writer
	if op.progress != nil {
		bar := log.NewProgressBar(op.progress, -1, log.DescDownloading)
		defer bar.Finish()
		progress = bar
	}

	data, err := op.provider.DownloadArchive(ctx, ref, progress)
	if err != nil {
		return nil, errors.Errorf("downloading %s: %w", ref.Repository(), err)
	}
	return data, nil
}

// stagingName is the output file's stem, moved aside when the output is the
// staging directory or lies inside it.
func stagingName(stagingDir, output string, ref locator.Reference) string {
	base := filepath.Base(output)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == ".." {
		stem = ref.FolderBase()
	}

	stagingPath, err1 := filepath.Abs(filepath.Join(stagingDir, stem))
	outputPath, err2 := filepath.Abs(output)
	if err1 == nil && err2 == nil && contains(stagingPath, outputPath) {
		// siblings under stagingDir, so the output cannot also be inside this one
		return stem + "_staging"
	}
	return stem
}

// contains reports whether path is dir or lies below it.
func contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
