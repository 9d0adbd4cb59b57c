package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PINFOREST_API", "")
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPI, c.API)
	assert.Equal(t, DefaultDataDir, c.DataDir)
	assert.Equal(t, BackendBadger, c.DurableBackend)
	assert.Equal(t, "all", c.PinType)
	assert.Equal(t, 20, c.ProviderLimit)
	assert.Equal(t, 8, c.Workers)

	d, err := c.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	lvl, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, lvl)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pinforest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api: http://node:5001
durableBackend: sqlite
pinType: recursive
requestTimeout: 5s
workers: 2
logLevel: debug
`), 0o644))
	t.Setenv("PINFOREST_API", "http://override:5001")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override:5001", c.API)
	assert.Equal(t, BackendSQLite, c.DurableBackend)
	assert.Equal(t, "recursive", c.PinType)
	assert.Equal(t, 2, c.Workers)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PINFOREST_API", "")
	dir := t.TempDir()
	cases := map[string]string{
		"backend": "durableBackend: leveldb\n",
		"pinType": "pinType: everything\n",
		"timeout": "requestTimeout: soon\n",
		"level":   "logLevel: loud\n",
		"yaml":    "api: [unclosed\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestPath_Env(t *testing.T) {
	t.Setenv("PINFOREST_CONFIG", "/etc/pinforest.yaml")
	assert.Equal(t, "/etc/pinforest.yaml", Path())
}

func TestExpandedDataDir(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	c := Config{DataDir: "~/.pinforest"}
	dir, err := c.ExpandedDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".pinforest"), dir)

	c = Config{DataDir: "/var/lib/pinforest"}
	dir, err = c.ExpandedDataDir()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/pinforest", dir)
}
