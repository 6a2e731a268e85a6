package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/pyrefactor/internal/version"
	"github.com/ludo-technologies/pyrefactor/service"
)

// VersionCommand represents the version command
type VersionCommand struct {
	short bool
	json  bool
}

// NewVersionCommand creates a new version command
func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

// CreateCobraCommand creates the cobra command for version display
func (v *VersionCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version information for pyrefactor.

Examples:
  # Show full version information
  pyrefactor version

  # Show only version number (useful for scripts)
  pyrefactor version --short`,
		RunE: v.runVersion,
	}

	cmd.Flags().BoolVarP(&v.short, "short", "s", false, "Show only version number")
	cmd.Flags().BoolVar(&v.json, "json", false, "Print build information as JSON")

	return cmd
}

func (v *VersionCommand) runVersion(cmd *cobra.Command, args []string) error {
	switch {
	case v.short:
		fmt.Fprintln(cmd.OutOrStdout(), version.Short())
	case v.json:
		return service.WriteJSON(cmd.OutOrStdout(), version.Get())
	default:
		fmt.Fprintln(cmd.OutOrStdout(), version.Info())
	}
	return nil
}

// NewVersionCmd creates and returns the version cobra command
func NewVersionCmd() *cobra.Command {
	return NewVersionCommand().CreateCobraCommand()
}
