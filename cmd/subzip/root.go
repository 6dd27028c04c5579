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

package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/subzip/pkg/config"
	"github.com/walteh/subzip/pkg/log"
	"github.com/walteh/subzip/pkg/operation"
	"github.com/walteh/subzip/pkg/provider"
	"gitlab.com/tozd/go/errors"

	_ "github.com/walteh/subzip/pkg/provider/github"
)

// rootOpts holds the parsed command line flags
type rootOpts struct {
	configFile string
	output     string
	debug      bool
	quiet      bool
}

// 🌱 newRootCommand creates the subzip command
func newRootCommand() *cobra.Command {
	opts := &rootOpts{}

	cmd := &cobra.Command{
		Use:   "subzip <url>",
		Short: "Download a single folder of a GitHub repository as a zip archive",
		Long: `subzip downloads the archive of a repository once, keeps only the entries
under the folder named in the URL and writes them to a zip archive named
after the folder.

Example:
  subzip https://github.com/username/repo/tree/main/path/to/folder -o folder.zip`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args[0])
		},
	}

	addRootFlags(cmd, opts)

	return cmd
}

// addRootFlags adds the flags to the root command
func addRootFlags(cmd *cobra.Command, opts *rootOpts) {
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output zip file name (default <folder>.zip)")
	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "config file path (.yaml, .hcl or .json)")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print errors")
}

// 🏃 run loads settings, builds the provider and packs the folder
func run(ctx context.Context, stdout, stderr io.Writer, opts *rootOpts, rawURL string) error {
	zlog := setupLogging(stderr, opts.debug)
	ctx = zlog.WithContext(ctx)

	cfg, err := loadConfig(ctx, opts.configFile)
	if err != nil {
		return err
	}
	if opts.quiet {
		cfg.Quiet = true
	}

	zlog.Debug().Str("config", cfg.String()).Msg("configuration loaded")

	p, err := provider.Get(ctx, cfg.Provider, provider.Options{Host: cfg.ArchiveHost})
	if err != nil {
		return errors.Errorf("creating provider: %w", err)
	}

	console := stdout
	if cfg.Quiet {
		console = io.Discard
	}

	logger := log.NewWithZerolog(console, zlog)
	logger.Header("repository folder to zip")

	op, err := operation.NewPackOperation(operation.Options{
		Config:   cfg,
		Provider: p,
		Logger:   logger,
		Progress: stderr,
	})
	if err != nil {
		return errors.Errorf("creating pack operation: %w", err)
	}

	if _, err := op.Execute(ctx, rawURL, opts.output); err != nil {
		return err
	}

	return nil
}

// loadConfig returns the defaults when no file is given
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// setupLogging builds the structured logger; console lines already cover the info level
func setupLogging(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
}
