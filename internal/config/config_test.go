package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_EnvOnly(t *testing.T) {
	chdir(t, t.TempDir()) // no config file anywhere nearby
	t.Setenv("TUNEPULL_SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("TUNEPULL_SPOTIFY_CLIENT_SECRET", "env-secret")
	t.Setenv("TUNEPULL_CACHE_TTL", "30s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Spotify.ClientID != "env-id" {
		t.Errorf("ClientID = %q, want env-id", cfg.Spotify.ClientID)
	}
	if cfg.Spotify.ClientSecret != "env-secret" {
		t.Errorf("ClientSecret = %q, want env-secret", cfg.Spotify.ClientSecret)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Cache.TTL = %v, want 30s", cfg.Cache.TTL)
	}

	// Untouched keys keep their defaults.
	if cfg.Server.Addr != ":8000" {
		t.Errorf("Server.Addr = %q, want :8000", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != CacheBackendFile {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "spotify:\n  client_id: file-id\n  client_secret: file-secret\nserver:\n  addr: \":9000\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	t.Setenv("TUNEPULL_SPOTIFY_CLIENT_ID", "env-id")
	// Env wins even for a key the file never mentions.
	t.Setenv("TUNEPULL_FFMPEG_PATH", "/opt/ffmpeg")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Spotify.ClientID != "env-id" {
		t.Errorf("ClientID = %q, want env-id", cfg.Spotify.ClientID)
	}
	if cfg.Spotify.ClientSecret != "file-secret" {
		t.Errorf("ClientSecret = %q, want file-secret", cfg.Spotify.ClientSecret)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.FFmpeg.Path != "/opt/ffmpeg" {
		t.Errorf("FFmpeg.Path = %q, want /opt/ffmpeg", cfg.FFmpeg.Path)
	}
}

func TestValidate_RequiresCredentials(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted empty credentials")
	}

	cfg.Spotify.ClientID = "id"
	cfg.Spotify.ClientSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	cfg.Cache.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted unknown cache backend")
	}
}

// chdir changes into dir for the duration of the test, restoring the
// previous working directory on cleanup (stand-in for t.Chdir, which
// requires Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}
