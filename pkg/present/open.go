package present

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/browser"
)

// BrowserOpener opens files with the system's default browser.
type BrowserOpener struct{}

func (BrowserOpener) Open(_ context.Context, path string) error {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return browser.OpenFile(path)
}

// PathPrinter writes the file path instead of opening it.
type PathPrinter struct {
	W io.Writer
}

func (p PathPrinter) Open(_ context.Context, path string) error {
	_, err := fmt.Fprintln(p.W, path)
	return err
}

// DirDownloader saves downloads into Dir, creating it on demand.
type DirDownloader struct {
	Dir string
}

// DownloadDir resolves a configured download path. Relative paths live
// under the user's Downloads folder.
func DownloadDir(configured string) string {
	if filepath.IsAbs(configured) {
		return configured
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return configured
	}
	return filepath.Join(home, "Downloads", configured)
}

func (d DirDownloader) Download(_ context.Context, name string, page []byte) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(d.Dir, name)
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return "", fmt.Errorf("write download: %w", err)
	}
	return path, nil
}
