package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	opa_version "github.com/open-policy-agent/opa/version"

	"github.com/styrainc/jsondoc/internal/version"
)

func initVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: `Print the version of jsondoc`,
		Long:  `Show version and build information for jsondoc.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true
			return generateCmdOutput(cmd.OutOrStdout())
		},
	}
}

func generateCmdOutput(out io.Writer) error {
	fmt.Fprintln(out, "Version: "+version.Version)
	fmt.Fprintln(out, "OPA Version: "+opa_version.Version)
	fmt.Fprintln(out, "Build Timestamp: "+version.Timestamp)
	fmt.Fprintln(out, "Go Version: "+runtime.Version())
	fmt.Fprintln(out, "Platform: "+version.Platform())
	return nil
}
