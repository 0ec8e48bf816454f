package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/dlnilsson/repro-wizard/pkg/models"
	"github.com/dlnilsson/repro-wizard/pkg/settings"
)

// ErrAborted is returned when the settings form is cancelled.
var ErrAborted = errors.New("settings not saved")

func providerOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(models.Providers()))
	for _, p := range models.Providers() {
		opts = append(opts, huh.NewOption(p.Label(), string(p)))
	}
	return opts
}

func rowFields(row *settings.ModelRow, title string, existing bool) []huh.Field {
	fields := []huh.Field{
		huh.NewNote().Title(title),
		huh.NewInput().
			Title("Label").
			Placeholder("e.g. OpenAI - gpt-4.1").
			Value(&row.Label),
		huh.NewInput().
			Title("Model id").
			Description("Rows without a model id are not saved.").
			Placeholder("e.g. gpt-4.1 or gemini-2.5-flash").
			Value(&row.Model),
		huh.NewSelect[string]().
			Title("Provider").
			Options(providerOptions()...).
			Value(&row.Provider),
	}
	if existing {
		fields = append(fields, huh.NewConfirm().
			Title("Delete this row?").
			Affirmative("Delete").
			Negative("Keep").
			Value(&row.Delete))
	}
	return fields
}

// EditSettings runs the interactive settings form and returns the edited
// settings. The input is not modified.
func EditSettings(cfg settings.Settings) (settings.Settings, error) {
	out := cfg
	rows := settings.Rows(cfg.Models)

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("OpenAI API key").
				EchoMode(huh.EchoModePassword).
				Value(&out.OpenAIAPIKey),
			huh.NewInput().
				Title("Gemini API key").
				Description("From Google AI Studio (aistudio.google.com).").
				EchoMode(huh.EchoModePassword).
				Value(&out.GeminiAPIKey),
			huh.NewInput().
				Title("Download folder").
				Description("Relative paths are placed under ~/Downloads.").
				Value(&out.DownloadPath),
			huh.NewConfirm().
				Title("Save each generated page automatically?").
				Value(&out.AutoDownload),
		),
	}
	for i := range rows {
		groups = append(groups, huh.NewGroup(rowFields(&rows[i], fmt.Sprintf("Model %d", i+1), true)...))
	}
	if err := runForm(huh.NewForm(groups...)); err != nil {
		return cfg, err
	}

	for {
		var add bool
		if err := runForm(huh.NewForm(huh.NewGroup(
			huh.NewConfirm().Title("Add a model row?").Value(&add),
		))); err != nil {
			return cfg, err
		}
		if !add {
			break
		}
		row := settings.ModelRow{Provider: string(models.DefaultProvider)}
		if err := runForm(huh.NewForm(huh.NewGroup(rowFields(&row, "New model", false)...))); err != nil {
			return cfg, err
		}
		rows = append(rows, row)
	}

	out.Models = settings.CollectModels(rows)
	return out, nil
}

func runForm(form *huh.Form) error {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}
