package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

// selectionSource gathers the bug report text. The first non-empty source
// wins: -f file, positional args, -clipboard, piped stdin, then the
// clipboard as a last resort.
type selectionSource struct {
	File          string
	Args          []string
	Clipboard     bool
	Stdin         io.Reader
	StdinPiped    bool
	ReadClipboard func() (string, error)
	Logger        *slog.Logger
}

func newSelectionSource(file string, args []string, useClipboard bool) selectionSource {
	piped := false
	if fi, err := os.Stdin.Stat(); err == nil {
		piped = fi.Mode()&os.ModeCharDevice == 0
	}
	return selectionSource{
		File:          file,
		Args:          args,
		Clipboard:     useClipboard,
		Stdin:         os.Stdin,
		StdinPiped:    piped,
		ReadClipboard: clipboard.ReadAll,
	}
}

type stdinResult struct {
	data []byte
	err  error
}

// Read returns the selected text. An empty result is not an error; the
// controller reports it to the user. Waiting on stdin stops when ctx is
// cancelled.
func (s selectionSource) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.File != "" {
		data, err := os.ReadFile(s.File)
		if err != nil {
			return "", fmt.Errorf("read bug report: %w", err)
		}
		return string(data), nil
	}
	if text := strings.Join(s.Args, " "); strings.TrimSpace(text) != "" {
		return text, nil
	}
	if s.Clipboard {
		return s.readClipboard(), nil
	}
	if s.StdinPiped && s.Stdin != nil {
		ch := make(chan stdinResult, 1)
		go func() {
			data, err := io.ReadAll(s.Stdin)
			ch <- stdinResult{data: data, err: err}
		}()
		var res stdinResult
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res = <-ch:
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if res.err != nil {
			return "", fmt.Errorf("read stdin: %w", res.err)
		}
		if strings.TrimSpace(string(res.data)) != "" {
			return string(res.data), nil
		}
	}
	return s.readClipboard(), nil
}

// readClipboard returns "" when the clipboard cannot be read, for example
// when no xclip or wl-paste is installed.
func (s selectionSource) readClipboard() string {
	if s.ReadClipboard == nil {
		return ""
	}
	text, err := s.ReadClipboard()
	if err != nil {
		s.logger().Warn("clipboard read failed", "error", err)
		return ""
	}
	return text
}

func (s selectionSource) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
