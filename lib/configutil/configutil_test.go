package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	BaseUrl string `json:"base_url"`
	Retries int    `json:"retries"`
	Nested  struct {
		Headless bool   `json:"headless"`
		Name     string `json:"name"`
	} `json:"nested"`
}

func write(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("dir", "e2e.local.json5"), LocalPath(filepath.Join("dir", "e2e.json5")))
	require.Equal(t, "config.local", LocalPath("config"))
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "e2e.json5")
	write(t, name, `{
		// comments are allowed
		base_url: "https://example.test",
		retries: 2,
		nested: { headless: true, name: "chromium" },
	}`)
	write(t, LocalPath(name), `{ base_url: "http://localhost:8080", nested: { name: "firefox" } }`)

	cfg, err := ReadConfig[sample](name)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.BaseUrl)
	require.Equal(t, 2, cfg.Retries)
	require.Equal(t, "firefox", cfg.Nested.Name)
	require.True(t, cfg.Nested.Headless)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[sample](filepath.Join(t.TempDir(), "nope.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigInvalid(t *testing.T) {
	name := filepath.Join(t.TempDir(), "bad.json5")
	write(t, name, `{ base_url: `)
	_, err := ReadConfig[sample](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0777))
	write(t, filepath.Join(root, "a", "e2e.json5"), `{}`)

	found, err := FindUp(nested, "e2e.json5")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "a", "e2e.json5"), found)

	_, err = FindUp(nested, "missing.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}
