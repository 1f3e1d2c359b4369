// Package cli implements the stablepay command line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vitwit/stablepay/clients"
)

// Exit codes. Scripts depend on them, do not renumber.
const (
	ExitPaid     = 0
	ExitNotPaid  = 1
	ExitPartial  = 2
	ExitPending  = 3
	ExitError    = 10
	ExitRPCError = 11
)

// app carries the state shared by the commands of one invocation
type app struct {
	out    io.Writer
	errOut io.Writer

	cfgFile string

	// dial replaces the go-ethereum client when set
	dial clients.Factory

	exitCode int
}

// Execute runs the CLI with os.Args and returns the process exit code
func Execute(version string) int {
	a := &app{out: os.Stdout, errOut: os.Stderr}
	return a.run(version, os.Args[1:])
}

func (a *app) run(version string, args []string) int {
	root := a.newRootCmd(version)
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(a.errOut, "error: %v\n", err)
		if a.exitCode == ExitPaid {
			return ExitError
		}
	}
	return a.exitCode
}

func (a *app) newRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stablepay",
		Short:         "Verify stablecoin payments on-chain",
		Long:          `StablePay verifies that a stablecoin payment arrived at an address, reading ERC-20 Transfer events from a public EVM node. No custody, no fees.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.SetVersionTemplate("StablePay Verifier v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $STABLEPAY_CONFIG, stablepay.toml, stablepay.yaml or stablepay.yml)")

	rootCmd.AddCommand(a.newVerifyCmd())
	rootCmd.AddCommand(a.newInfoCmd())

	return rootCmd
}
