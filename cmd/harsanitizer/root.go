package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/harsanitizer/internal/log"
)

// NewRootCmd creates the root command for harsanitizer.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harsanitizer",
		Short: "Remove secrets from HTTP Archive (HAR) files",
		Long: `harsanitizer removes credentials and other secrets from HAR captures.

It redacts the values of sensitive cookies, headers, query string and form
parameters, passwords embedded in URLs and the bodies of selected content
types. Structure, names and non-sensitive values are kept so the capture
stays useful for troubleshooting.

Every run is audited afterwards and recorded in a local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	// Add subcommands
	cmd.AddCommand(NewSanitizeCmd())
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewDefaultsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags. Missing flags read as false.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// newLogger creates the secret-masking logger. sensitiveKeys are masked in
// addition to the built-in keys; sanitize passes its merged word list.
func newLogger(w io.Writer, verbose, jsonFormat bool, sensitiveKeys ...string) *slog.Logger {
	opt := log.WithSensitiveKeys(sensitiveKeys...)
	if jsonFormat {
		return log.NewSecureJSONLogger(w, verbose, opt)
	}
	return log.NewSecureLogger(w, verbose, opt)
}
