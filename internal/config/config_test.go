package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "us-central1", cfg.GCP.Location)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MINDWEAVE_PORT", "9090")
	t.Setenv("MINDWEAVE_STORAGE_BACKEND", "sqlite")
	t.Setenv("MINDWEAVE_LLM_PROVIDER", "gemini")
	t.Setenv("API_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	content := "port: \"7000\"\nstorage:\n  backend: file\n  path: /tmp/mw\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/mw", cfg.Storage.Path)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"MINDWEAVE_STORAGE_BACKEND": "mongo"}},
		{"unknown provider", map[string]string{"MINDWEAVE_LLM_PROVIDER": "bard"}},
		{"gcp mode without project", map[string]string{"MINDWEAVE_MODE": "gcp"}},
		{"firestore without project", map[string]string{"MINDWEAVE_STORAGE_BACKEND": "firestore"}},
		{"openai without key", map[string]string{"MINDWEAVE_LLM_PROVIDER": "openai"}},
		{"non numeric port", map[string]string{"MINDWEAVE_PORT": "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
