package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv resets the variables the tests care about so the host
// environment cannot leak into the results.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"DATABASE_URL", "DB_URL", "STORAGE_PATH", "SERVER_PORT",
		"LOG_LEVEL", "LOG_FORMAT", "UPLOAD_MAX_FILE_SIZE", "METRICS_ENABLED",
		"DB_MAX_CONNS", "DB_MIN_CONNS", "DB_MAX_CONN_LIFETIME", "DB_MAX_CONN_IDLE_TIME",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	home := os.Getenv("HOME")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Upload.MaxFileSize != 10485760 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 10485760)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if cfg.Database.Enabled() {
		t.Error("Database.Enabled() = true, want false without DATABASE_URL")
	}
	want := filepath.Join(home, ".shelflife", "reference.json")
	if cfg.Storage.Path != want {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, want)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_PATH", "/tmp/shelf/ref.json")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Storage.Path != "/tmp/shelf/ref.json" {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, "/tmp/shelf/ref.json")
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want false")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "postgres://localhost/alttest")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.URL != "postgres://localhost/alttest" {
		t.Errorf("Database.URL = %q, want %q", cfg.Database.URL, "postgres://localhost/alttest")
	}
	if !cfg.Database.Enabled() {
		t.Error("Database.Enabled() = false, want true")
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "eighty")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for non-numeric SERVER_PORT")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("error %q should name SERVER_PORT", err)
	}
}

func TestLoad_Duration(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("SERVER_REQUEST_TIMEOUT", "1m30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Server.RequestTimeout != 90*time.Second {
		t.Errorf("Server.RequestTimeout = %v, want %v", cfg.Server.RequestTimeout, 90*time.Second)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "tilde prefix", in: "~/data/ref.json", want: filepath.Join(home, "data", "ref.json")},
		{name: "bare tilde", in: "~", want: home},
		{name: "absolute untouched", in: "/var/lib/ref.json", want: "/var/lib/ref.json"},
		{name: "relative untouched", in: "data/ref.json", want: "data/ref.json"},
		{name: "tilde user form untouched", in: "~bob/ref.json", want: "~bob/ref.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandHome(tt.in)
			if err != nil {
				t.Fatalf("expandHome(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("expandHome(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Storage: StorageConfig{Path: "/tmp/ref.json"},
		Upload:  UploadConfig{MaxFileSize: 1024},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "SERVER_PORT",
		},
		{
			name:    "missing storage path without database",
			mutate:  func(c *Config) { c.Storage.Path = " " },
			wantErr: "STORAGE_PATH",
		},
		{
			name: "storage path optional with database",
			mutate: func(c *Config) {
				c.Storage.Path = ""
				c.Database = DatabaseConfig{URL: "postgres://x", MaxConns: 4}
			},
		},
		{
			name: "max conns below min",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{URL: "postgres://x", MaxConns: 1, MinConns: 2}
			},
			wantErr: "DB_MAX_CONNS",
		},
		{
			name: "zero max conns with database",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{URL: "postgres://x", MaxConns: 0}
			},
			wantErr: "DB_MAX_CONNS must be positive",
		},
		{
			name: "negative min conns with database",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{URL: "postgres://x", MaxConns: 4, MinConns: -1}
			},
			wantErr: "DB_MIN_CONNS",
		},
		{
			name: "max conns overflows pool setting",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{URL: "postgres://x", MaxConns: math.MaxInt32 + 1}
			},
			wantErr: "DB_MAX_CONNS",
		},
		{
			name: "pool limits ignored without database",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{MaxConns: 0, MinConns: -1}
			},
		},
		{
			name:    "zero upload size",
			mutate:  func(c *Config) { c.Upload.MaxFileSize = 0 },
			wantErr: "UPLOAD_MAX_FILE_SIZE",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestString_MasksDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Database.URL = "postgres://user:secret@db/shelf"

	s := cfg.String()
	if strings.Contains(s, "secret") {
		t.Errorf("String() leaked credentials: %s", s)
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() = %s, want masked database URL", s)
	}
}

func TestServerAddr(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := c.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:8080")
	}
	c.Host = ""
	if got := c.Addr(); got != ":8080" {
		t.Errorf("Addr() = %q, want %q", got, ":8080")
	}
}
