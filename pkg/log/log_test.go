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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_pack_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.StartPack(context.Background(), PackOperation{
					Repo:   "acme/widgets",
					Ref:    "main",
					Folder: "src/lib",
					Output: "lib.zip",
				})
			},
			wantLogs: []string{
				"[packing lib.zip]",
				"◆ acme/widgets • main • src/lib",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("Successfully created %s", "lib.zip")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ Successfully created lib.zip",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("packing repository folder")
			},
			wantLogs: []string{
				"subzip • packing repository folder",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewWithZerolog(buf, zerolog.New(zerolog.NewTestWriter(t)))

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := NewWithZerolog(io.Discard, zerolog.Nop())

	ctx := NewContext(context.Background(), logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	fallback := FromContext(context.Background())
	require.NotNil(t, fallback, "FromContext should fall back to a discard logger")
	assert.Equal(t, io.Discard, fallback.Console(), "fallback logger should discard console output")
}

func TestEntryFormatting(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		op   EntryOperation
		want string
	}{
		{
			name: "extracted_file",
			op:   EntryOperation{Path: "lib/a.txt", Size: 2048, Action: ActionExtracted},
			want: "✓ lib/a.txt 2.0 KB extracted",
		},
		{
			name: "excluded_file",
			op:   EntryOperation{Path: "lib/a_test.go", Action: ActionExcluded},
			want: "- lib/a_test.go 0 B excluded",
		},
		{
			name: "packed_file",
			op:   EntryOperation{Path: "lib/big.bin", Size: 3 * 1024 * 1024, Action: ActionPacked},
			want: "• lib/big.bin 3.0 MB packed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewWithZerolog(buf, zerolog.Nop())

			logger.LogEntry(context.Background(), tt.op)

			output := strings.Join(strings.Fields(buf.String()), " ")
			assert.Equal(t, tt.want, output, "formatted output should match")
		})
	}
}

func TestEndPackResetsEntries(t *testing.T) {
	logger := NewWithZerolog(io.Discard, zerolog.New(zerolog.NewTestWriter(t)))
	ctx := context.Background()

	logger.StartPack(ctx, PackOperation{Repo: "acme/widgets", Ref: "main", Folder: "src/lib", Output: "lib.zip"})
	logger.LogEntry(ctx, EntryOperation{Path: "lib/a.txt", Size: 1, Action: ActionExtracted})
	logger.LogEntry(ctx, EntryOperation{Path: "lib/b.txt", Size: 2, Action: ActionExcluded})

	require.Len(t, logger.entries, 2, "entries should be tracked during the operation")

	logger.EndPack(ctx)
	assert.Empty(t, logger.entries, "entries should reset after EndPack")

	// ending twice is a no-op
	logger.EndPack(ctx)
}

func TestNewProgressBar(t *testing.T) {
	buf := &bytes.Buffer{}

	bar := NewProgressBar(buf, 10, DescDownloading)
	n, err := bar.Write([]byte("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	require.NoError(t, bar.Finish())

	spinner := NewProgressBar(io.Discard, -1, DescDownloading)
	_, err = spinner.Write([]byte("abc"))
	require.NoError(t, err)
}
