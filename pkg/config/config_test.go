package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}

func TestLoadWithPath_Defaults(t *testing.T) {
	cfg, err := LoadWithPath(writeEnvFile(t, "APP_NAME=session-planner\n"))
	if err != nil {
		t.Fatalf("LoadWithPath: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Planner.ChangeTopic != "session_config.changed" {
		t.Errorf("Planner.ChangeTopic = %s", cfg.Planner.ChangeTopic)
	}
	if cfg.Planner.DefaultCurrency != "USD" {
		t.Errorf("Planner.DefaultCurrency = %s, want USD", cfg.Planner.DefaultCurrency)
	}
	if cfg.Planner.CacheTTL != 10*time.Minute {
		t.Errorf("Planner.CacheTTL = %v, want 10m", cfg.Planner.CacheTTL)
	}
	if cfg.Kafka.Enabled {
		t.Error("Kafka should be disabled by default")
	}
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Errorf("environment = %s, want development", cfg.App.Environment)
	}
}

func TestLoadWithPath_FileAndEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	path := writeEnvFile(t, "SERVER_PORT=9090\nPLANNER_DEFAULT_CURRENCY=eur\nPLANNER_REQUIRED_BY_DEFAULT=true\n")

	cfg, err := LoadWithPath(path)
	if err != nil {
		t.Fatalf("LoadWithPath: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("Server.Addr() = %s", cfg.Server.Addr())
	}
	if cfg.Planner.DefaultCurrency != "EUR" {
		t.Errorf("Planner.DefaultCurrency = %s, want EUR", cfg.Planner.DefaultCurrency)
	}
	if !cfg.Planner.RequiredByDefault {
		t.Error("Planner.RequiredByDefault should be true")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
}

func TestLoadWithPath_MissingFile(t *testing.T) {
	if _, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := &DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "planner_db", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=planner_db sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %s, want %s", got, want)
	}
}

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Name: "session-planner", Environment: "development"},
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Enabled: true, Host: "localhost", DBName: "planner_db"},
		JWT:      JWTConfig{Secret: "secret"},
		Planner:  PlannerConfig{ChangeTopic: "session_config.changed", DefaultCurrency: "USD"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing app name", mutate: func(c *Config) { c.App.Name = "" }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: true},
		{name: "database disabled", mutate: func(c *Config) {
			c.Database.Enabled = false
			c.Database.Host = ""
		}},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: true},
		{name: "default secret in production", mutate: func(c *Config) {
			c.App.Environment = "production"
			c.JWT.Secret = defaultJWTSecret
		}, wantErr: true},
		{name: "kafka without brokers", mutate: func(c *Config) { c.Kafka.Enabled = true }, wantErr: true},
		{name: "bad currency", mutate: func(c *Config) { c.Planner.DefaultCurrency = "EURO" }, wantErr: true},
		{name: "missing topic", mutate: func(c *Config) { c.Planner.ChangeTopic = "" }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.Planner.PublishRetries = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
