// Package settings persists user configuration: API keys, the download
// preference and the model list. Absent keys read as their defaults.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dlnilsson/repro-wizard/pkg/models"
)

// DefaultDownloadPath is the directory name used when none is configured.
const DefaultDownloadPath = "repro-wizard"

// Settings is the full persisted configuration.
type Settings struct {
	OpenAIAPIKey string         `yaml:"openaiApiKey"`
	GeminiAPIKey string         `yaml:"geminiApiKey"`
	DownloadPath string         `yaml:"downloadPath"`
	AutoDownload bool           `yaml:"autoDownload"`
	Models       []models.Entry `yaml:"models"`
}

// Defaults returns the settings used when nothing has been saved yet.
func Defaults() Settings {
	return Settings{
		DownloadPath: DefaultDownloadPath,
		AutoDownload: true,
		Models:       models.DefaultEntries(),
	}
}

// APIKey returns the configured key for p, or "" when p has none.
func (s Settings) APIKey(p models.Provider) string {
	switch p {
	case models.ProviderOpenAI:
		return s.OpenAIAPIKey
	case models.ProviderGemini:
		return s.GeminiAPIKey
	default:
		return ""
	}
}

// ResolvedModels returns the normalized model list.
func (s Settings) ResolvedModels() []models.ModelSpec {
	return models.Resolve(s.Models)
}

// file mirrors Settings with pointer fields so that missing keys can be
// told apart from zero values.
type file struct {
	OpenAIAPIKey *string         `yaml:"openaiApiKey"`
	GeminiAPIKey *string         `yaml:"geminiApiKey"`
	DownloadPath *string         `yaml:"downloadPath"`
	AutoDownload *bool           `yaml:"autoDownload"`
	Models       *[]models.Entry `yaml:"models"`
}

// overrides are read from the environment and win over the file.
type overrides struct {
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	DownloadPath string `env:"REPRO_WIZARD_DOWNLOAD_PATH"`
	AutoDownload *bool  `env:"REPRO_WIZARD_AUTO_DOWNLOAD"`
}

// Store reads and writes settings at Path.
type Store struct {
	Path string
	// Env enables environment overrides on Load.
	Env bool
}

// DefaultPath returns settings.yaml under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("settings: locate config dir: %w", err)
	}
	return filepath.Join(dir, "repro-wizard", "settings.yaml"), nil
}

// LoadDotEnv loads environment variables from path. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load returns the stored settings with defaults filled in. created is true
// when no settings file existed and the defaults were written out.
func (s Store) Load() (cfg Settings, created bool, err error) {
	cfg = Defaults()
	data, err := os.ReadFile(s.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := s.Save(cfg); err != nil {
			return Settings{}, false, err
		}
		created = true
	case err != nil:
		return Settings{}, false, fmt.Errorf("settings: read %s: %w", s.Path, err)
	default:
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return Settings{}, false, fmt.Errorf("settings: parse %s: %w", s.Path, err)
		}
		f.apply(&cfg)
	}

	if s.Env {
		if err := applyEnv(&cfg); err != nil {
			return Settings{}, false, err
		}
	}
	return cfg, created, nil
}

// Save writes cfg in full, replacing the previous file.
func (s Store) Save(cfg Settings) error {
	cfg.DownloadPath = strings.TrimSpace(cfg.DownloadPath)
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = DefaultDownloadPath
	}
	if cfg.Models == nil {
		cfg.Models = []models.Entry{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("settings: create dir: %w", err)
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("settings: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("settings: replace %s: %w", s.Path, err)
	}
	return nil
}

func (f file) apply(cfg *Settings) {
	if f.OpenAIAPIKey != nil {
		cfg.OpenAIAPIKey = strings.TrimSpace(*f.OpenAIAPIKey)
	}
	if f.GeminiAPIKey != nil {
		cfg.GeminiAPIKey = strings.TrimSpace(*f.GeminiAPIKey)
	}
	if f.DownloadPath != nil && strings.TrimSpace(*f.DownloadPath) != "" {
		cfg.DownloadPath = strings.TrimSpace(*f.DownloadPath)
	}
	if f.AutoDownload != nil {
		cfg.AutoDownload = *f.AutoDownload
	}
	if f.Models != nil {
		cfg.Models = *f.Models
	}
}

func applyEnv(cfg *Settings) error {
	var o overrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("settings: parse env: %w", err)
	}
	if o.OpenAIAPIKey != "" {
		cfg.OpenAIAPIKey = o.OpenAIAPIKey
	}
	if o.GeminiAPIKey != "" {
		cfg.GeminiAPIKey = o.GeminiAPIKey
	}
	if o.DownloadPath != "" {
		cfg.DownloadPath = o.DownloadPath
	}
	if o.AutoDownload != nil {
		cfg.AutoDownload = *o.AutoDownload
	}
	return nil
}

// ModelRow is one editable model line in the settings form.
type ModelRow struct {
	Label    string
	Model    string
	Provider string
	Delete   bool
}

// Rows converts the saved model list into form rows. An empty list yields a
// single blank row.
func Rows(entries []models.Entry) []ModelRow {
	rows := make([]ModelRow, 0, len(entries))
	for _, e := range entries {
		label := e.Label
		if label == "" {
			label = e.Name
		}
		provider := e.Provider
		if provider == "" {
			provider = string(models.DefaultProvider)
		}
		rows = append(rows, ModelRow{Label: label, Model: e.Model, Provider: provider})
	}
	if len(rows) == 0 {
		rows = append(rows, ModelRow{Provider: string(models.DefaultProvider)})
	}
	return rows
}

// CollectModels turns form rows into entries to save. Rows marked for
// deletion and rows without a model id are dropped. Ids are positional over
// the rows left after deletion, blank rows included, and labels default to
// the model id.
func CollectModels(rows []ModelRow) []models.Entry {
	entries := []models.Entry{}
	idx := -1
	for _, row := range rows {
		if row.Delete {
			continue
		}
		idx++
		modelID := strings.TrimSpace(row.Model)
		if modelID == "" {
			continue
		}
		label := strings.TrimSpace(row.Label)
		if label == "" {
			label = modelID
		}
		provider := strings.TrimSpace(row.Provider)
		if provider == "" {
			provider = string(models.DefaultProvider)
		}
		entries = append(entries, models.Entry{
			ID:       fmt.Sprintf("model-%d", idx),
			Label:    label,
			Provider: provider,
			Model:    modelID,
		})
	}
	return entries
}
