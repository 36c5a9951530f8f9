package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 8000
database:
  host: localhost
  port: 5432
  user: wescape
  password: secret
  dbname: wescape
  sslmode: disable
auth:
  provider_url: https://project.supabase.co
  anon_key: anon
  jwt_secret: jwt-secret
aws:
  region: eu-central-1
  s3_bucket: wescape-covers
api:
  prefix: /api/v2
  cors_origins:
    - http://localhost:3000
  debug: true
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "https://project.supabase.co", cfg.Auth.ProviderURL)
	require.Equal(t, "jwt-secret", cfg.Auth.JWTSecret)
	require.Equal(t, "/api/v2", cfg.API.Prefix)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.API.CORSOrigins)
	require.True(t, cfg.API.Debug)
	require.Equal(t, "wescape-covers", cfg.AWS.S3Bucket)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DefaultPrefix(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8000
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/api/v1", cfg.API.Prefix)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")

	_, err := Load(path)
	require.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "wescape",
		Password: "secret",
		DBName:   "wescape",
		SSLMode:  "disable",
	}
	require.Equal(t,
		"host=localhost port=5432 user=wescape password=secret dbname=wescape sslmode=disable",
		cfg.DSN())
}
