package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/actigraphy/internal/api"
	"github.com/JaimeStill/actigraphy/internal/config"
	"github.com/JaimeStill/actigraphy/internal/infrastructure"
	"github.com/JaimeStill/actigraphy/pkg/database"
	"github.com/JaimeStill/actigraphy/pkg/middleware"
	"github.com/JaimeStill/actigraphy/pkg/pagination"
	"github.com/JaimeStill/actigraphy/pkg/storage"
)

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "actigraphy",
			User:            "actigraphy",
			Password:        "actigraphy",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			Backend:     storage.BackendLocal,
			Root:        t.TempDir(),
			MaxListSize: 50,
		},
		API: config.APIConfig{
			BasePath:      "/api",
			MaxUploadSize: "1MB",
			CORS: middleware.CORSConfig{
				Enabled: false,
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		App: config.AppConfig{
			Name:             "Actigraphy",
			DefaultSleepTime: "12:00:00",
			TimeFormat:       "%A - %d %B %Y %H:%M %Z",
			SliderSteps:      2160,
			LogLevel:         "info",
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T, cfg *config.Config) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	return infra
}

func TestNewModule(t *testing.T) {
	cfg := validConfig(t)
	infra := setupInfra(t, cfg)

	m, err := api.NewModule(t.Context(), cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewModuleRoutes(t *testing.T) {
	cfg := validConfig(t)
	infra := setupInfra(t, cfg)

	m, err := api.NewModule(t.Context(), cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown export", "GET", "/api/subjects/s1/exports/bogus", http.StatusBadRequest},
		{"bad day index", "GET", "/api/subjects/s1/days/x/view", http.StatusBadRequest},
		{"bad window id", "PUT", "/api/subjects/s1/days/0/sleep-times/x", http.StatusBadRequest},
		{"import without form", "POST", "/api/imports", http.StatusBadRequest},
		{"empty storage", "GET", "/api/storage", http.StatusOK},
		{"subject logs", "GET", "/api/storage?subject=s1", http.StatusOK},
		{"subject and prefix", "GET", "/api/storage?subject=s1&prefix=s1/", http.StatusBadRequest},
		{"bad max results", "GET", "/api/storage?max_results=x", http.StatusBadRequest},
		{"missing blob", "GET", "/api/storage/download/s1/logs/x.csv", http.StatusNotFound},
		{"unknown route", "GET", "/api/nothing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			m.Serve(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestNewModuleInvalidTimeFormat(t *testing.T) {
	cfg := validConfig(t)
	cfg.App.TimeFormat = "%"
	infra := setupInfra(t, cfg)

	if _, err := api.NewModule(t.Context(), cfg, infra); err == nil {
		t.Fatal("expected error for invalid time format")
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig(t)
	infra := setupInfra(t, cfg)

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max page size: got %d, want 100", runtime.Pagination.MaxPageSize)
	}
	if runtime.Review.Steps != 2160 || runtime.Review.DefaultSleep != 12*time.Hour {
		t.Errorf("review options: got %+v", runtime.Review)
	}
	if runtime.Logger == infra.Logger {
		t.Error("runtime logger should be scoped to the api module")
	}
	if runtime.MaxUploadSize != 1024*1024 {
		t.Errorf("max upload size: got %d, want %d", runtime.MaxUploadSize, 1024*1024)
	}
	if runtime.Logger == nil {
		t.Error("runtime logger is nil")
	}
	if runtime.Database == nil {
		t.Error("runtime database is nil")
	}
	if runtime.Storage == nil {
		t.Error("runtime storage is nil")
	}
	if runtime.Lifecycle == nil {
		t.Error("runtime lifecycle is nil")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig(t)
	infra := setupInfra(t, cfg)

	domain, err := api.NewDomain(api.NewRuntime(cfg, infra))
	if err != nil {
		t.Fatalf("NewDomain() error = %v", err)
	}
	if domain.Review == nil || domain.Exports == nil || domain.Ingest == nil {
		t.Fatal("NewDomain() left systems unset")
	}
}
