// Package menu builds the selection menu from the configured models and
// runs a generation for each click.
package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/dlnilsson/repro-wizard/pkg/models"
	"github.com/dlnilsson/repro-wizard/pkg/providers"
	"github.com/dlnilsson/repro-wizard/pkg/repro"
	"github.com/dlnilsson/repro-wizard/pkg/settings"
)

const (
	RootID         = "bugtest-root"
	RootTitle      = "Generate test page"
	ItemPrefix     = "bugtest-model-"
	RefreshMessage = "bugtest-refresh-menus"

	ContextSelection = "selection"
)

// Item is one menu entry.
type Item struct {
	ID       string
	ParentID string
	Title    string
	Contexts []string
}

// Surface is the menu system the controller draws into.
type Surface interface {
	RemoveAll(ctx context.Context) error
	Create(ctx context.Context, item Item) error
}

// Presenter shows results and info pages.
type Presenter interface {
	Present(ctx context.Context, page string, autoDownload bool) error
	Info(ctx context.Context, title, body string) error
}

// Click is a menu activation.
type Click struct {
	MenuItemID    string
	SelectionText string
}

// Message is a request sent to the controller by another component.
type Message struct {
	Type string `json:"type"`
}

// Response answers a Message.
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Controller owns the menu and the click pipeline.
type Controller struct {
	Surface    Surface
	Settings   func() (settings.Settings, error)
	Generators providers.Set
	Presenter  Presenter
	Logger     *slog.Logger

	// Registry, when set, tracks the in-flight request for signal handling.
	Registry *providers.Registry
	// Progress, when set, is started before a provider call and its
	// returned func is called once the call finishes.
	Progress func(spec models.ModelSpec) (stop func())

	mu sync.Mutex
}

// ItemID returns the menu id for the model at idx.
func ItemID(idx int) string {
	return ItemPrefix + strconv.Itoa(idx)
}

// ParseItemID returns the model index for one of our child ids.
func ParseItemID(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, ItemPrefix)
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return idx, true
}

// Rebuild clears the surface, creates the root entry, then one child per
// resolved model. It is safe to call repeatedly. Failures creating children
// are collected; the remaining children are still created.
func (c *Controller) Rebuild(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg, err := c.Settings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	specs := cfg.ResolvedModels()

	if err := c.Surface.RemoveAll(ctx); err != nil {
		return fmt.Errorf("clear menu: %w", err)
	}
	root := Item{ID: RootID, Title: RootTitle, Contexts: []string{ContextSelection}}
	if err := c.Surface.Create(ctx, root); err != nil {
		return fmt.Errorf("create root menu: %w", err)
	}

	var result *multierror.Error
	for idx, spec := range specs {
		item := Item{
			ID:       ItemID(idx),
			ParentID: RootID,
			Title:    spec.Label,
			Contexts: []string{ContextSelection},
		}
		if err := c.Surface.Create(ctx, item); err != nil {
			result = multierror.Append(result, fmt.Errorf("create menu %s: %w", item.ID, err))
		}
	}
	c.logger().Debug("menu rebuilt", "entries", len(specs))
	return result.ErrorOrNil()
}

// HandleMessage answers refresh requests. ok is false for message types the
// controller does not handle.
func (c *Controller) HandleMessage(ctx context.Context, msg Message) (resp Response, ok bool) {
	if msg.Type != RefreshMessage {
		return Response{}, false
	}
	if err := c.Rebuild(ctx); err != nil {
		c.logger().Error("failed to refresh menus", "error", err)
		return Response{OK: false, Error: err.Error()}, true
	}
	return Response{OK: true}, true
}

var errNotOurs = errors.New("menu item not handled")

// Click runs the pipeline for one activation. Any failure is shown to the
// user as an info page and also returned.
func (c *Controller) Click(ctx context.Context, click Click) error {
	err := c.run(ctx, click)
	if err == nil || errors.Is(err, errNotOurs) {
		return nil
	}
	if errors.Is(err, context.Canceled) && (ctx.Err() != nil || c.Registry != nil && c.Registry.WasInterrupted()) {
		c.logger().Info("generation interrupted")
		return err
	}

	title, body := Describe(err)
	c.logger().Warn("generation failed", "title", title, "error", err)
	if infoErr := c.Presenter.Info(context.WithoutCancel(ctx), title, body); infoErr != nil {
		return errors.Join(err, fmt.Errorf("show info: %w", infoErr))
	}
	return err
}

func (c *Controller) run(ctx context.Context, click Click) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if click.SelectionText == "" {
		c.logger().Info("no selection text in menu click")
		return NoSelectionError{}
	}
	idx, ok := ParseItemID(click.MenuItemID)
	if !ok {
		return errNotOurs
	}

	cfg, err := c.Settings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	spec, ok := models.At(cfg.ResolvedModels(), idx)
	if !ok {
		return &ModelNotFoundError{Index: idx}
	}

	apiKey := cfg.APIKey(spec.Provider)
	if _, err := models.ParseProvider(string(spec.Provider)); err == nil && apiKey == "" {
		return &MissingAPIKeyError{Provider: spec.Provider}
	}
	gen, err := c.Generators.For(spec.Provider)
	if err != nil {
		return err
	}

	log := c.logger().With("request_id", uuid.NewString(), "provider", spec.Provider, "model", spec.Model)
	log.Info("generating test page")

	raw, err := c.generate(ctx, gen, apiKey, spec, click.SelectionText)
	if err != nil {
		return err
	}
	page := repro.StripCodeFences(raw)
	if page == "" {
		return EmptyResponseError{}
	}
	log.Debug("generated test page", "bytes", len(page))
	return c.Presenter.Present(ctx, page, cfg.AutoDownload)
}

func (c *Controller) generate(ctx context.Context, gen providers.Generator, apiKey string, spec models.ModelSpec, text string) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stop func()
	if c.Progress != nil {
		stop = c.Progress(spec)
	}
	if c.Registry != nil {
		c.Registry.Register(cancel, stop)
		defer c.Registry.Unregister()
	}
	if stop != nil {
		defer stop()
	}
	return gen.Generate(ctx, apiKey, spec, text)
}

func (c *Controller) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
