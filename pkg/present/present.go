// Package present shows generated pages: each page is written to a file,
// opened in the browser and optionally saved as a download.
package present

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Opener displays an HTML file, usually in a new browser tab.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Downloader saves a copy of a page under name.
type Downloader interface {
	Download(ctx context.Context, name string, page []byte) (string, error)
}

// Sink is the final stage of a generation run.
type Sink struct {
	// TabDir holds the files handed to the Opener. Empty means os.TempDir().
	TabDir     string
	Opener     Opener
	Downloader Downloader
	Logger     *slog.Logger
	Now        func() time.Time
}

// Present opens page in a new tab and, when autoDownload is set, saves a
// timestamped copy. A failed download is logged and never returned; only a
// failure to open the tab is an error.
func (s *Sink) Present(ctx context.Context, page string, autoDownload bool) error {
	path, err := s.writeTab(page)
	if err != nil {
		return err
	}
	if err := s.Opener.Open(ctx, path); err != nil {
		return fmt.Errorf("open tab: %w", err)
	}
	s.logger().Debug("opened tab", "path", path)

	if !autoDownload || s.Downloader == nil {
		return nil
	}
	name := DownloadName(s.now())
	saved, err := s.Downloader.Download(ctx, name, []byte(page))
	if err != nil {
		s.logger().Warn("download failed", "file", name, "error", err)
		return nil
	}
	s.logger().Info("saved test page", "path", saved)
	return nil
}

// Info presents a minimal message page without downloading it.
func (s *Sink) Info(ctx context.Context, title, body string) error {
	return s.Present(ctx, InfoPage(title, body), false)
}

func (s *Sink) writeTab(page string) (string, error) {
	f, err := os.CreateTemp(s.TabDir, "repro-wizard-*.html")
	if err != nil {
		return "", fmt.Errorf("create tab file: %w", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(page); err != nil {
		return "", fmt.Errorf("write tab file: %w", err)
	}
	return f.Name(), nil
}

func (s *Sink) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Sink) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// DownloadName returns bug-test-<ISO-8601 UTC>.html with ':' and '.'
// replaced by '-'.
func DownloadName(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "bug-test-" + stamp + ".html"
}

const infoStyle = "body{font-family:sans-serif;padding:16px;background:#111;color:#eee;}" +
	"h1{font-size:18px;margin:0 0 10px;}pre{white-space:pre-wrap;background:#222;padding:8px;border-radius:4px;}"

// InfoPage builds a dark themed page with an escaped title and an escaped
// preformatted body.
func InfoPage(title, body string) string {
	t := html.EscapeString(title)
	var b strings.Builder
	b.WriteString("<!doctype html><html><head><meta charset='utf-8'><title>")
	b.WriteString(t)
	b.WriteString("</title><style>")
	b.WriteString(infoStyle)
	b.WriteString("</style></head><body><h1>")
	b.WriteString(t)
	b.WriteString("</h1><pre>")
	b.WriteString(html.EscapeString(body))
	b.WriteString("</pre></body></html>")
	return b.String()
}
