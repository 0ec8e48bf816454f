package present

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingOpener struct {
	paths []string
	err   error
}

func (o *recordingOpener) Open(_ context.Context, path string) error {
	o.paths = append(o.paths, path)
	return o.err
}

type recordingDownloader struct {
	names []string
	err   error
}

func (d *recordingDownloader) Download(_ context.Context, name string, _ []byte) (string, error) {
	d.names = append(d.names, name)
	return "/downloads/" + name, d.err
}

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.UTC)

func newSink(t *testing.T, o *recordingOpener, d *recordingDownloader, logs *bytes.Buffer) *Sink {
	t.Helper()
	return &Sink{
		TabDir:     t.TempDir(),
		Opener:     o,
		Downloader: d,
		Logger:     slog.New(slog.NewTextHandler(logs, nil)),
		Now:        func() time.Time { return fixedNow },
	}
}

func TestPresentOpensTabAndDownloads(t *testing.T) {
	t.Parallel()

	o, d := &recordingOpener{}, &recordingDownloader{}
	sink := newSink(t, o, d, &bytes.Buffer{})

	require.NoError(t, sink.Present(context.Background(), "<p>page</p>", true))
	require.Len(t, o.paths, 1)
	data, err := os.ReadFile(o.paths[0])
	require.NoError(t, err)
	assert.Equal(t, "<p>page</p>", string(data))
	assert.Equal(t, []string{"bug-test-2025-03-04T05-06-07-890Z.html"}, d.names)
}

func TestPresentDownloadFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	o, d := &recordingOpener{}, &recordingDownloader{err: errors.New("disk full")}
	sink := newSink(t, o, d, &logs)

	require.NoError(t, sink.Present(context.Background(), "<p>x</p>", true))
	assert.Len(t, o.paths, 1)
	assert.Len(t, d.names, 1)
	assert.Contains(t, logs.String(), "download failed")
	assert.Contains(t, logs.String(), "disk full")
}

func TestPresentWithoutDownload(t *testing.T) {
	t.Parallel()

	o, d := &recordingOpener{}, &recordingDownloader{}
	sink := newSink(t, o, d, &bytes.Buffer{})

	require.NoError(t, sink.Present(context.Background(), "<p>x</p>", false))
	assert.Len(t, o.paths, 1)
	assert.Empty(t, d.names)
}

func TestPresentOpenFailure(t *testing.T) {
	t.Parallel()

	o, d := &recordingOpener{err: errors.New("no browser")}, &recordingDownloader{}
	sink := newSink(t, o, d, &bytes.Buffer{})

	err := sink.Present(context.Background(), "<p>x</p>", true)
	require.Error(t, err)
	assert.Empty(t, d.names)
}

func TestInfoNeverDownloads(t *testing.T) {
	t.Parallel()

	o, d := &recordingOpener{}, &recordingDownloader{}
	sink := newSink(t, o, d, &bytes.Buffer{})

	require.NoError(t, sink.Info(context.Background(), "Title", "Body"))
	assert.Len(t, o.paths, 1)
	assert.Empty(t, d.names)
}

func TestInfoPageEscapes(t *testing.T) {
	t.Parallel()

	page := InfoPage("a <b> & c", "<script>alert(1)</script>\nline")
	assert.True(t, strings.HasPrefix(page, "<!doctype html>"))
	assert.Contains(t, page, "<title>a &lt;b&gt; &amp; c</title>")
	assert.Contains(t, page, "<h1>a &lt;b&gt; &amp; c</h1>")
	assert.Contains(t, page, "<pre>&lt;script&gt;alert(1)&lt;/script&gt;\nline</pre>")
	assert.Contains(t, page, "background:#111")
	assert.NotContains(t, page, "<script>")
}

func TestDownloadName(t *testing.T) {
	t.Parallel()

	local := fixedNow.In(time.FixedZone("X", 3*3600))
	assert.Equal(t, "bug-test-2025-03-04T05-06-07-890Z.html", DownloadName(local))
}

func TestDirDownloader(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "sub")
	path, err := DirDownloader{Dir: dir}.Download(context.Background(), "a.html", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.html"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestPathPrinter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, PathPrinter{W: &out}.Open(context.Background(), "/tmp/x.html"))
	assert.Equal(t, "/tmp/x.html\n", out.String())
}

func TestDownloadDirAbsolute(t *testing.T) {
	t.Parallel()

	abs := filepath.Join(t.TempDir(), "out")
	assert.Equal(t, abs, DownloadDir(abs))
}
