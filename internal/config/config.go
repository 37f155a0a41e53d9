package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/realprice/realprice/internal/lang"
)

const (
	AppName     = "realprice"
	EnvFileName = "config.env"
)

// CatalogBackend selects where product/availability/store data is read from.
type CatalogBackend string

const (
	CatalogRTDB   CatalogBackend = "rtdb"
	CatalogSQLite CatalogBackend = "sqlite"
)

// Provider selects the vision provider for object identification.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Config holds all runtime configuration, validated once at load.
type Config struct {
	GeminiAPIKey string
	OpenAIAPIKey string
	Provider     Provider

	CatalogBackend CatalogBackend
	RTDBBaseURL    string
	RTDBAuthToken  string
	CatalogDBPath  string

	// DBPath is the sqlite database used for the identification cache and
	// analysis run history.
	DBPath string

	TargetLanguages []lang.Code
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		Provider:       ProviderGemini,
		CatalogBackend: CatalogSQLite,
		RTDBBaseURL:    os.Getenv("REALPRICE_RTDB_URL"),
		RTDBAuthToken:  os.Getenv("REALPRICE_RTDB_AUTH"),
		CatalogDBPath:  os.Getenv("REALPRICE_CATALOG_DB"),
		DBPath:         os.Getenv("REALPRICE_DB_PATH"),
	}

	if p := os.Getenv("REALPRICE_PROVIDER"); p != "" {
		switch Provider(p) {
		case ProviderGemini, ProviderOpenAI:
			cfg.Provider = Provider(p)
		default:
			return nil, fmt.Errorf("invalid REALPRICE_PROVIDER: %q (use gemini or openai)", p)
		}
	}

	if b := os.Getenv("REALPRICE_CATALOG"); b != "" {
		switch CatalogBackend(b) {
		case CatalogRTDB, CatalogSQLite:
			cfg.CatalogBackend = CatalogBackend(b)
		default:
			return nil, fmt.Errorf("invalid REALPRICE_CATALOG: %q (use rtdb or sqlite)", b)
		}
	}

	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
	}

	// Translation always runs on Gemini, regardless of the vision provider.
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	if cfg.CatalogBackend == CatalogRTDB && cfg.RTDBBaseURL == "" {
		return nil, fmt.Errorf("REALPRICE_RTDB_URL is required with REALPRICE_CATALOG=rtdb")
	}

	if cfg.DBPath == "" {
		cfg.DBPath = "realprice.db"
	}
	if cfg.CatalogDBPath == "" {
		cfg.CatalogDBPath = "catalog.db"
	}

	if langs := os.Getenv("REALPRICE_LANGUAGES"); langs != "" {
		codes, err := lang.ParseList(langs)
		if err != nil {
			return nil, fmt.Errorf("invalid REALPRICE_LANGUAGES: %w", err)
		}
		cfg.TargetLanguages = codes
	} else {
		cfg.TargetLanguages = lang.DefaultTargets()
	}

	return cfg, nil
}
