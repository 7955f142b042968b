package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/versesearch/internal/adapters/driven/config/file"
)

var errNotTerminal = errors.New("stdin is not a terminal")

// readPassword prompts for a secret without echo. Replaced in tests.
var readPassword = func(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // fd fits in int
	if !term.IsTerminal(fd) {
		return "", errNotTerminal
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(secret), nil
}

// resolveBackendPassword validates cfg and prompts for a missing backend password.
func resolveBackendPassword(cmd *cobra.Command, cfg *file.Config) error {
	err := cfg.Validate()
	if !errors.Is(err, file.ErrMissingPassword) {
		return err
	}

	password, perr := readPassword(cmd, fmt.Sprintf("Password for %s@%s: ", cfg.Backend.Username, cfg.Backend.Addresses[0]))
	if perr != nil {
		return fmt.Errorf("%w (set backend.password or %sES_PASSWORD)", err, file.EnvPrefix)
	}
	cfg.Backend.Password = password
	return cfg.Validate()
}

// resolveAdminPassword validates cfg for serving and prompts for a missing
// admin password. The backend password must already be resolved.
func resolveAdminPassword(cmd *cobra.Command, cfg *file.Config) error {
	err := cfg.ValidateServer()
	if !errors.Is(err, file.ErrMissingPassword) {
		return err
	}

	password, perr := readPassword(cmd, fmt.Sprintf("Admin password for %s: ", cfg.Server.AdminUsername))
	if perr != nil {
		return fmt.Errorf("%w (set server.admin_password or %sADMIN_PASSWORD)", err, file.EnvPrefix)
	}
	cfg.Server.AdminPassword = password
	return cfg.ValidateServer()
}
