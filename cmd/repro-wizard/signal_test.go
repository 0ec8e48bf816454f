//go:build unix

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlnilsson/repro-wizard/pkg/menu"
	"github.com/dlnilsson/repro-wizard/pkg/models"
	"github.com/dlnilsson/repro-wizard/pkg/providers"
	"github.com/dlnilsson/repro-wizard/pkg/settings"
)

type countingGenerator struct {
	calls atomic.Int32
}

func (g *countingGenerator) Generate(context.Context, string, models.ModelSpec, string) (string, error) {
	g.calls.Add(1)
	return "<p>page</p>", nil
}

type recordingPresenter struct {
	pages atomic.Int32
	infos atomic.Int32
}

func (p *recordingPresenter) Present(context.Context, string, bool) error {
	p.pages.Add(1)
	return nil
}

func (p *recordingPresenter) Info(context.Context, string, string) error {
	p.infos.Add(1)
	return nil
}

// Not parallel: the test signals its own process.
func TestInterruptWhileWaitingForStdinSkipsProvider(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var registry providers.Registry
	stop := watchSignals(cancel, &registry)
	defer stop()

	cfg := settings.Defaults()
	cfg.OpenAIAPIKey = "sk"
	cfg.GeminiAPIKey = "gk"
	gen := &countingGenerator{}
	presenter := &recordingPresenter{}
	ctrl := &menu.Controller{
		Surface:  &menu.Memory{},
		Settings: func() (settings.Settings, error) { return cfg, nil },
		Generators: providers.Set{
			models.ProviderOpenAI: gen,
			models.ProviderGemini: gen,
		},
		Presenter: presenter,
		Logger:    slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Registry:  &registry,
	}
	require.NoError(t, ctrl.Rebuild(ctx))

	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	defer func() { _ = pr.Close() }()
	src := selectionSource{Stdin: pr, StdinPiped: true}
	choose := func() (string, error) { return menu.ItemID(0), nil }
	errCh := make(chan error, 1)
	go func() { errCh <- generate(ctx, ctrl, src, choose, false) }()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("SIGINT did not cancel the run")
	}

	_, err = pw.Write([]byte("button does nothing"))
	require.NoError(t, err)
	require.NoError(t, pw.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("generate did not return after SIGINT")
	}
	assert.Zero(t, gen.calls.Load())
	assert.Zero(t, presenter.pages.Load())
	assert.Zero(t, presenter.infos.Load())
	assert.True(t, registry.WasInterrupted())
}
