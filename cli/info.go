package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vitwit/stablepay/chains"
	"github.com/vitwit/stablepay/config"
	"github.com/vitwit/stablepay/types"
	"github.com/vitwit/stablepay/utils"
)

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show supported chains and tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				a.exitCode = ExitError
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			reg, err := cfg.Registry(chains.Default())
			if err != nil {
				a.exitCode = ExitError
				return err
			}
			a.printInfo(reg)
			return nil
		},
	}
}

func (a *app) printInfo(reg *chains.Registry) {
	p := a.printer()

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.style(styleBold, "Supported Networks"))

	for _, key := range reg.Chains() {
		chain, _ := reg.Chain(key)
		fmt.Fprintln(p.w)
		fmt.Fprintf(p.w, "🔗 %s %s\n", p.style(styleBold, chain.Name), p.style(styleDim, "("+key+")"))
		p.dim(fmt.Sprintf("   Chain ID: %d", chain.ChainID))

		w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "   TOKEN\tNAME\tCONTRACT")
		for _, symbol := range reg.Tokens(key) {
			token, _ := reg.Token(key, symbol)
			fmt.Fprintf(w, "   %s\t%s\t%s\n", token.Symbol, token.Name, utils.FormatAddress(token.Address, 6))
		}
		_ = w.Flush()
	}

	fmt.Fprintln(p.w)
	p.dim("Tips:")
	p.dim(fmt.Sprintf("  • Polygon and Base have the lowest fees, %s is the default chain", types.DefaultChain))
	p.dim("  • Use --rpc or STABLEPAY_RPC_<CHAIN> to point at your own node")
	fmt.Fprintln(p.w)
}
