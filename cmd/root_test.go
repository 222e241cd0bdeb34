package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "search", "detail", "export"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "leadgen", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestSearchCommand_Flags(t *testing.T) {
	for name, def := range map[string]string{
		"location": "",
		"max":      "0",
		"output":   "json",
	} {
		flag := searchCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "search command should have --%s flag", name)
		assert.Equal(t, def, flag.DefValue)
	}
	assert.Error(t, searchCmd.Args(searchCmd, nil))
	assert.NoError(t, searchCmd.Args(searchCmd, []string{"acme.com"}))
}

func TestDetailCommand_Flags(t *testing.T) {
	require.NotNil(t, detailCmd.Flags().Lookup("financials"))
	require.NotNil(t, detailCmd.Flags().Lookup("output"))
	assert.Error(t, detailCmd.Args(detailCmd, []string{"a", "b"}))
}

func TestExportCommand_Flags(t *testing.T) {
	in := exportCmd.Flags().Lookup("in")
	require.NotNil(t, in)
	assert.Equal(t, []string{"true"}, in.Annotations["cobra_annotation_bash_completion_one_required_flag"])

	format := exportCmd.Flags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "csv", format.DefValue)
}
