package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulifyer/hoteldash/arger"
	"github.com/nulifyer/hoteldash/catalog"
	"github.com/nulifyer/hoteldash/config"
)

func parseFlags(t *testing.T, args ...string) map[string]arger.IParsedFlag {
	t.Helper()
	arger.Reset()
	t.Cleanup(arger.Reset)
	registerFlags()
	flags, rest, err := arger.ParseArgs(args)
	require.NoError(t, err)
	assert.Empty(t, rest)
	return flags
}

func TestApplyFlagsOnlyOverridesGivenFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Theme = "nord"
	cfg.Log.Level = "info"

	applyFlags(&cfg, parseFlags(t, "--api", "http://localhost:8080", "-nc", "--verbose=debug"))

	assert.Equal(t, "http://localhost:8080", cfg.API.URL)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "nord", cfg.Theme, "theme came from config, not flags")
	assert.Empty(t, cfg.Catalog)
}

func TestApplyFlagsShorthands(t *testing.T) {
	cfg := config.Default()
	applyFlags(&cfg, parseFlags(t, "-t", "gruvbox", "-l", "hoteldash.log", "--catalog", "demo.yaml"))

	assert.Equal(t, "gruvbox", cfg.Theme)
	assert.Equal(t, "hoteldash.log", cfg.Log.File)
	assert.Equal(t, "demo.yaml", cfg.Catalog)
	assert.False(t, cfg.NoColor)
}

func TestThemeFlagRejectsUnknownNames(t *testing.T) {
	arger.Reset()
	t.Cleanup(arger.Reset)
	registerFlags()
	_, _, err := arger.ParseArgs([]string{"--theme", "solarized"})
	assert.Error(t, err)
}

func TestBuiltinCatalog(t *testing.T) {
	static := builtinStatic()
	for _, r := range []catalog.Resource{catalog.Hotels, catalog.Amenities, catalog.Thematics, catalog.Conditions, catalog.Users} {
		assert.NotEmpty(t, static.Options(r), "resource %s", r)
	}
	assert.Empty(t, static.Options(catalog.ContactRequests))
}
