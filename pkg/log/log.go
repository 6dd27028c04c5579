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
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	entryIndent = 4  // spaces to indent entry lines
	nameWidth   = 40 // Base width for entry path
	sizeWidth   = 10 // Width for entry size
	actionWidth = 10 // Width for action text
)

// 🏷️ EntryAction describes what happened to an archive entry
type EntryAction string

const (
	ActionExtracted EntryAction = "extracted"
	ActionExcluded  EntryAction = "excluded"
	ActionPacked    EntryAction = "packed"
)

// 🎯 EntryOperation represents a single archive entry for logging
type EntryOperation struct {
	Path   string      // Path relative to the staging root
	Size   int64       // Bytes written
	Action EntryAction // What happened to the entry
}

// 📦 PackOperation represents one folder-to-archive run
type PackOperation struct {
	Repo   string // owner/repo
	Ref    string // Branch, tag or commit
	Folder string // Folder inside the repository
	Output string // Output archive path
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *PackOperation
	entries   []EntryOperation
}

// 🏭 NewWithZerolog creates a logger around an existing zerolog logger
func NewWithZerolog(console io.Writer, zlog zerolog.Logger) *Logger {
	if console == nil {
		console = io.Discard
	}
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return NewWithZerolog(io.Discard, zerolog.Nop())
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, falling back to Discard
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return Discard()
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// Console returns the writer console lines go to.
func (l *Logger) Console() io.Writer {
	return l.console
}

// 📝 formatEntry formats an entry operation for display
func (l *Logger) formatEntry(op EntryOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch op.Action {
	case ActionExcluded:
		symbol = '-'
		symbolColor = color.FgYellow
	case ActionPacked:
		symbol = '•'
		symbolColor = color.FgCyan
	default:
		symbol = '✓'
		symbolColor = color.FgGreen
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", entryIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		fmt.Sprintf("%*s", sizeWidth, formatBytes(op.Size)),
		fmt.Sprintf("%-*s", actionWidth, op.Action))
}

// 📝 LogEntry logs an archive entry
func (l *Logger) LogEntry(ctx context.Context, op EntryOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, op)

	fmt.Fprintln(l.console, l.formatEntry(op))

	l.zlog.Debug().
		Str("entry", op.Path).
		Int64("bytes", op.Size).
		Str("action", string(op.Action)).
		Msg("archive entry")
}

// 📝 StartPack starts a new pack operation
func (l *Logger) StartPack(ctx context.Context, op PackOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.entries = nil

	fmt.Fprintf(l.console, "[packing %s]\n",
		color.New(color.FgCyan).Sprint(op.Output))

	fmt.Fprintf(l.console, "%s %s %s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Repo),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(op.Ref),
		color.New(color.Faint).Sprint("•"),
		op.Folder)

	l.zlog.Info().
		Str("repo", op.Repo).
		Str("ref", op.Ref).
		Str("folder", op.Folder).
		Str("output", op.Output).
		Msg("starting pack operation")
}

// 📝 EndPack ends the current pack operation
func (l *Logger) EndPack(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	var total int64
	extracted := 0
	for _, e := range l.entries {
		if e.Action == ActionExtracted {
			extracted++
			total += e.Size
		}
	}

	l.zlog.Info().
		Str("repo", l.currentOp.Repo).
		Str("output", l.currentOp.Output).
		Int("files", extracted).
		Int64("bytes", total).
		Msg("pack operation complete")

	l.currentOp = nil
	l.entries = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("subzip")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

func formatBytes(n int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case n >= gb:
		return fmt.Sprintf("%.1f GB", float64(n)/float64(gb))
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(mb))
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(kb))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
