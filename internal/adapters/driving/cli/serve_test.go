package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/versesearch/internal/adapters/driven/config/file"
)

func cancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestServeCmd_Flags(t *testing.T) {
	listenFlag := serveCmd.Flags().Lookup("listen")
	require.NotNil(t, listenFlag)
	assert.Equal(t, "l", listenFlag.Shorthand)
	assert.NotNil(t, serveCmd.Flags().Lookup("skip-ensure"))
}

func TestServeCmd_EnsuresIndexAndStops(t *testing.T) {
	ts := setupTestServices(t)

	out, err := executeContext(cancelledContext(), t, "serve", "--listen", "127.0.0.1:0")

	require.NoError(t, err)
	assert.Equal(t, 1, ts.index.ensured)
	assert.Contains(t, out, "Serving verse search on 127.0.0.1:0")
}

func TestServeCmd_SkipEnsure(t *testing.T) {
	ts := setupTestServices(t)

	_, err := executeContext(cancelledContext(), t, "serve", "-l", "127.0.0.1:0", "--skip-ensure")

	require.NoError(t, err)
	assert.Zero(t, ts.index.ensured)
}

func TestServeCmd_EnsureFailure(t *testing.T) {
	ts := setupTestServices(t)
	ts.index.err = errors.New("backend unavailable")

	_, err := executeContext(cancelledContext(), t, "serve", "-l", "127.0.0.1:0")

	assert.EqualError(t, err, "ensure index: backend unavailable")
}

func TestServeCmd_MissingAdminPassword(t *testing.T) {
	setupTestServices(t)
	appConfig.Server.AdminPassword = ""

	prev := readPassword
	readPassword = func(*cobra.Command, string) (string, error) { return "", errNotTerminal }
	defer func() { readPassword = prev }()

	_, err := executeContext(cancelledContext(), t, "serve", "-l", "127.0.0.1:0")

	require.Error(t, err)
	assert.ErrorIs(t, err, file.ErrMissingPassword)
}

func TestServeCmd_PromptsForAdminPassword(t *testing.T) {
	setupTestServices(t)
	appConfig.Server.AdminPassword = ""

	prev := readPassword
	readPassword = func(_ *cobra.Command, prompt string) (string, error) {
		assert.Contains(t, prompt, "admin")
		return "typed", nil
	}
	defer func() { readPassword = prev }()

	_, err := executeContext(cancelledContext(), t, "serve", "-l", "127.0.0.1:0")

	require.NoError(t, err)
	assert.Equal(t, "typed", appConfig.Server.AdminPassword)
}

func TestMCPServeCmd_Flags(t *testing.T) {
	assert.Equal(t, "serve", mcpServeCmd.Use)
	portFlag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, portFlag)
	assert.Equal(t, "p", portFlag.Shorthand)
	assert.Equal(t, "0", portFlag.DefValue)
}

func TestMCPServeCmd_NilSearch(t *testing.T) {
	setupTestServices(t)
	svc.Search = nil

	_, err := executeContext(cancelledContext(), t, "mcp", "serve")

	assert.EqualError(t, err, "search service not configured")
}
