package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dlnilsson/repro-wizard/pkg/menu"
	"github.com/dlnilsson/repro-wizard/pkg/models"
	"github.com/dlnilsson/repro-wizard/pkg/present"
	"github.com/dlnilsson/repro-wizard/pkg/providers"
	"github.com/dlnilsson/repro-wizard/pkg/providers/gemini"
	"github.com/dlnilsson/repro-wizard/pkg/providers/openai"
	"github.com/dlnilsson/repro-wizard/pkg/settings"
	"github.com/dlnilsson/repro-wizard/pkg/ui"
)

const errInvalidModelFmt = "invalid model %q (use -m for interactive pick, an index, or one of: %s)"

func injectBareM(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		out = append(out, args[i])
		if args[i] != "-m" {
			continue
		}
		next := i + 1
		if next >= len(args) || strings.HasPrefix(args[next], "-") {
			out = append(out, menuSentinel)
			continue
		}
		out = append(out, args[next])
		i = next
	}
	return out
}

func printHelp() {
	const help = `repro-wizard: turn a bug report into a standalone HTML test page.

The selected bug report is sent to OpenAI or Google Gemini, and the generated
page is opened in your browser. A timestamped copy is saved to your downloads
folder unless auto-download is turned off.

Usage:
  repro-wizard [flags] [bug report text...]
  repro-wizard menu      list the configured models
  repro-wizard config    edit API keys, download folder and models

"menu" and "config" are subcommands only when given alone; longer arguments
are always read as the bug report.

The bug report is read from -f, the arguments, -clipboard, piped stdin, or
the clipboard, in that order.

Environment:
  OPENAI_API_KEY, GEMINI_API_KEY: override the stored API keys.
  REPRO_WIZARD_DOWNLOAD_PATH, REPRO_WIZARD_AUTO_DOWNLOAD: override download settings.
  A .env file in the working directory is loaded first.

Flags:
`
	fmt.Fprint(os.Stderr, help)
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
}

type options struct {
	mFlag        string
	modelIndex   int
	file         string
	useClipboard bool
	noSpinner    bool
	noOpen       bool
	settingsPath string
	envFile      string
	verbose      bool
}

func main() {
	var opts options

	os.Args = injectBareM(os.Args)
	flag.StringVar(&opts.mFlag, "m", "", "model title or index, or no value for interactive selection")
	flag.IntVar(&opts.modelIndex, "model-index", -1, "menu index of the model to use (overrides -m)")
	flag.StringVar(&opts.file, "f", "", "read the bug report from a file")
	flag.BoolVar(&opts.useClipboard, "clipboard", false, "read the bug report from the clipboard")
	flag.BoolVar(&opts.noSpinner, "no-spinner", false, "disable spinner while the model runs")
	flag.BoolVar(&opts.noOpen, "no-open", false, "print the page path instead of opening a browser")
	flag.StringVar(&opts.settingsPath, "settings", "", "path to settings.yaml")
	flag.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading settings")
	flag.BoolVar(&opts.verbose, "v", false, "verbose logging")
	flag.Usage = printHelp
	flag.Parse()

	if err := run(opts, flag.Args()); err != nil {
		os.Exit(1)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).With("component", "repro-wizard")
}

func run(opts options, args []string) error {
	logger := newLogger(os.Stderr, opts.verbose)
	slog.SetDefault(logger)

	if err := settings.LoadDotEnv(opts.envFile); err != nil {
		logger.Warn("failed to load env file", "path", opts.envFile, "error", err)
	}
	path := opts.settingsPath
	if path == "" {
		var err error
		if path, err = settings.DefaultPath(); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return err
		}
	}
	store := settings.Store{Path: path, Env: true}
	if _, created, err := store.Load(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return err
	} else if created {
		logger.Info("installed default settings", "path", path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var registry providers.Registry
	stopSignals := watchSignals(cancel, &registry)
	defer stopSignals()

	var opener present.Opener = present.BrowserOpener{}
	if opts.noOpen {
		opener = present.PathPrinter{W: os.Stdout}
	}
	surface := &menu.Memory{}
	ctrl := &menu.Controller{
		Surface: surface,
		Settings: func() (settings.Settings, error) {
			cfg, _, err := store.Load()
			return cfg, err
		},
		Generators: providers.Set{
			models.ProviderOpenAI: openai.New(nil),
			models.ProviderGemini: gemini.New(nil),
		},
		Presenter: terminalPresenter{Sink: &present.Sink{
			Opener:     opener,
			Downloader: lazyDownloader{store: store},
			Logger:     logger,
		}},
		Logger:   logger,
		Registry: &registry,
	}

	if err := ctrl.Rebuild(ctx); err != nil {
		logger.Error("failed to build menus", "error", err)
	}

	switch subcommand(args) {
	case "menu":
		return listMenu(os.Stdout, surface)
	case "config":
		return editConfig(ctx, ctrl, settings.Store{Path: path}, logger)
	}

	src := newSelectionSource(opts.file, args, opts.useClipboard)
	choose := func() (string, error) {
		return pickItem(opts.mFlag, opts.modelIndex, surface.Children(menu.RootID), interactivePicker)
	}
	return generate(ctx, ctrl, src, choose, !opts.noSpinner)
}

// subcommand returns the subcommand named by args. A report passed as
// arguments may start with a subcommand word, so only a lone word counts.
func subcommand(args []string) string {
	if len(args) != 1 {
		return ""
	}
	switch args[0] {
	case "menu", "config":
		return args[0]
	}
	return ""
}

// watchSignals cancels the run on SIGINT or SIGTERM. A request in flight is
// cancelled through the registry and its spinner is torn down.
func watchSignals(cancel context.CancelFunc, registry *providers.Registry) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigCh:
				registry.ForwardSignal(sig)
				registry.StopSpinnerIfSet()
				cancel()
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

// generate reads the selection, picks a menu entry and clicks it. Nothing is
// sent to a provider once ctx is cancelled.
func generate(ctx context.Context, ctrl *menu.Controller, src selectionSource, choose func() (string, error), spinner bool) error {
	selection, err := src.Read(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		return err
	}
	id, err := choose()
	if err != nil {
		if !errors.Is(err, ui.ErrNoSelection) {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if spinner {
		var forwarder ui.SignalForwarder
		if ctrl.Registry != nil {
			forwarder = ctrl.Registry
		}
		ctrl.Progress = func(spec models.ModelSpec) func() {
			stop := ui.StartSpinner(ui.RandomSpinnerMessage(), spec.Label, forwarder)
			ui.SendSpinnerDetail(ui.Excerpt(selection))
			return stop
		}
	}
	return ctrl.Click(ctx, menu.Click{MenuItemID: id, SelectionText: selection})
}

func listMenu(w io.Writer, surface *menu.Memory) error {
	fmt.Fprintln(w, menu.RootTitle)
	for idx, item := range surface.Children(menu.RootID) {
		fmt.Fprintf(w, "  %d  %s\n", idx, item.Title)
	}
	return nil
}

// editConfig edits the stored file without environment overrides so keys
// from the environment are never written to disk.
func editConfig(ctx context.Context, ctrl *menu.Controller, store settings.Store, logger *slog.Logger) error {
	cfg, _, err := store.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return err
	}
	updated, err := ui.EditSettings(cfg)
	if errors.Is(err, ui.ErrAborted) {
		return nil
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return err
	}
	if err := store.Save(updated); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return err
	}
	resp, _ := ctrl.HandleMessage(ctx, menu.Message{Type: menu.RefreshMessage})
	if !resp.OK {
		logger.Warn("settings saved but menu refresh failed", "error", resp.Error)
	}
	fmt.Fprintln(os.Stderr, "Settings saved.")
	return nil
}

// terminalPresenter mirrors info pages to the terminal.
type terminalPresenter struct {
	*present.Sink
}

func (p terminalPresenter) Info(ctx context.Context, title, body string) error {
	fmt.Fprintln(os.Stderr, ui.RenderInfo(title, body))
	return p.Sink.Info(ctx, title, body)
}

// lazyDownloader resolves the download folder from the settings in force at
// download time.
type lazyDownloader struct {
	store settings.Store
}

func (d lazyDownloader) Download(ctx context.Context, name string, page []byte) (string, error) {
	cfg, _, err := d.store.Load()
	if err != nil {
		return "", err
	}
	return present.DirDownloader{Dir: present.DownloadDir(cfg.DownloadPath)}.Download(ctx, name, page)
}
