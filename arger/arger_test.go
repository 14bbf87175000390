package arger

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerConsoleFlags(t *testing.T) {
	t.Helper()
	Reset()
	t.Cleanup(Reset)

	RegisterFlag(Flag[bool]{
		Name:        "no-color",
		Aliases:     []string{"-nc"},
		Default:     Optional(false),
		Description: "Disable colored output",
	})
	RegisterFlag(Flag[string]{
		Name:           "verbosity",
		Aliases:        []string{"-v"},
		Default:        Optional("warn"),
		ExpectedValues: []string{"none", "error", "warn", "info", "debug", "trace"},
	})
	RegisterFlag(StringFlag("api"))
	f := IntFlag("height")
	f.Aliases = []string{"-ph", "--popover-height"}
	RegisterFlag(f)
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		noColor   bool
		verbosity string
		api       string
		apiSet    bool
		rest      []string
	}{
		{"defaults", nil, false, "warn", "", false, []string{}},
		{"long forms", []string{"--no-color", "--verbosity", "debug", "--api=http://x"}, true, "debug", "http://x", true, []string{}},
		{"aliases", []string{"-nc", "-v", "TRACE"}, true, "TRACE", "", false, []string{}},
		{"shorthand with equals", []string{"-v=info"}, false, "info", "", false, []string{}},
		{"explicit bool value", []string{"--no-color=false"}, false, "warn", "", false, []string{}},
		{"positionals kept", []string{"one", "--api", "u", "two"}, false, "warn", "u", true, []string{"one", "two"}},
		{"terminator", []string{"--", "-nc"}, false, "warn", "", false, []string{"-nc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registerConsoleFlags(t)
			flags, rest, err := ParseArgs(tt.args)
			require.NoError(t, err)

			assert.Equal(t, tt.noColor, Get[bool](flags, "no-color"))
			assert.Equal(t, tt.verbosity, Get[string](flags, "verbosity"))
			api, ok := Lookup[string](flags, "api")
			assert.Equal(t, tt.apiSet, ok)
			assert.Equal(t, tt.api, api)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestParseArgsMultiLetterAliasWithValue(t *testing.T) {
	registerConsoleFlags(t)
	flags, _, err := ParseArgs([]string{"-ph=14"})
	require.NoError(t, err)
	assert.Equal(t, 14, Get[int](flags, "height"))

	registerConsoleFlags(t)
	flags, _, err = ParseArgs([]string{"--popover-height", "9"})
	require.NoError(t, err)
	assert.Equal(t, 9, Get[int](flags, "height"))
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unexpected value", []string{"-v", "loud"}},
		{"unknown flag", []string{"--nope"}},
		{"missing value", []string{"--api"}},
		{"bad int", []string{"--height", "tall"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registerConsoleFlags(t)
			_, _, err := ParseArgs(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestParseArgsHelp(t *testing.T) {
	registerConsoleFlags(t)
	_, _, err := ParseArgs([]string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestRequiredFlag(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	RegisterFlag(Flag[string]{Name: "catalog", Required: true})

	_, _, err := ParseArgs(nil)
	assert.ErrorContains(t, err, "--catalog")

	flags, _, err := ParseArgs([]string{"--catalog", "c.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "c.yaml", Get[string](flags, "catalog"))
}

func TestRegisterFlagRejectsMisconfiguration(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	RegisterFlag(StringFlag("api"))

	assert.Panics(t, func() { RegisterFlag(StringFlag("api")) })
	assert.Panics(t, func() { RegisterFlag(Flag[string]{}) })
	assert.Panics(t, func() { RegisterFlag(Flag[string]{Name: "x", Aliases: []string{"-h"}}) })
	assert.Panics(t, func() { RegisterFlag(Flag[string]{Name: "y", Aliases: []string{"y"}}) })
	assert.Panics(t, func() {
		RegisterFlag(Flag[string]{Name: "z", Required: true, Default: Optional("d")})
	})
}

func TestPrintUsage(t *testing.T) {
	registerConsoleFlags(t)
	var buf bytes.Buffer
	prev := usageOut
	usageOut = &buf
	t.Cleanup(func() { usageOut = prev })

	PrintUsage()
	out := buf.String()
	assert.Contains(t, out, "--verbosity, -v")
	assert.Contains(t, out, "[none, error, warn, info, debug, trace]")
	assert.Contains(t, out, "Disable colored output")
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two three", 8))
	assert.Nil(t, wrapText("", 10))
}
