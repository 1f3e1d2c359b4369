package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vitwit/stablepay"
	"github.com/vitwit/stablepay/config"
	"github.com/vitwit/stablepay/logger"
	"github.com/vitwit/stablepay/metrics"
	"github.com/vitwit/stablepay/types"
	"github.com/vitwit/stablepay/utils"
)

type verifyFlags struct {
	address          string
	amount           string
	token            string
	chain            string
	rpc              string
	timeWindow       string
	sender           string
	fromBlock        uint64
	toBlock          uint64
	minConfirmations uint64
	tolerance        float64
	output           string
	quiet            bool
	verbose          bool
	requestFile      string
	metricsFile      string
}

func (a *app) newVerifyCmd() *cobra.Command {
	var f verifyFlags

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a stablecoin payment was received",
		Long: `Verify that a stablecoin payment of at least the given amount reached an
address within a time window, with enough confirmations.

Exit codes: 0 paid, 1 not paid, 2 partial, 3 pending, 10 error, 11 RPC error.

EXAMPLES:
  # 100 USDC on Polygon within the last 24 hours
  stablepay verify -a 0x742d35Cc6634C0532925a3b844Bc454e4438f44e -m 100

  # 50 USDT on Ethereum
  stablepay verify -a 0x742d35... -m 50 -t USDT -c ethereum

  # Search the last 7 days and print JSON
  stablepay verify -a 0x742d35... -m 100 --time-window 7d -o json

  # Read the request from a JSON file
  stablepay verify --request payment.json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.exitCode = a.runVerify(cmd, f)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.address, "address", "a", "", "receiver wallet address (0x...)")
	fl.StringVarP(&f.amount, "amount", "m", "", "expected payment amount")
	fl.StringVarP(&f.token, "token", "t", types.DefaultToken, "token symbol (USDC, USDT, DAI)")
	fl.StringVarP(&f.chain, "chain", "c", types.DefaultChain, "network (polygon, ethereum, arbitrum, base, optimism)")
	fl.StringVarP(&f.rpc, "rpc", "r", "", "custom RPC endpoint URL")
	fl.StringVarP(&f.timeWindow, "time-window", "w", types.DefaultTimeWindow, "time window to search (e.g. 30m, 1h, 24h, 7d)")
	fl.StringVarP(&f.sender, "sender", "s", "", "only count transfers from this address")
	fl.Uint64Var(&f.fromBlock, "from-block", 0, "first block to search, overrides --time-window")
	fl.Uint64Var(&f.toBlock, "to-block", 0, "last block to search (default: latest)")
	fl.Uint64Var(&f.minConfirmations, "min-confirmations", types.DefaultMinConfirmations, "minimum block confirmations required")
	fl.Float64Var(&f.tolerance, "tolerance", types.DefaultTolerance, "amount tolerance as a fraction (0.01 = 1%)")
	fl.StringVarP(&f.output, "output", "o", "text", "output format: text or json")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "print only the status")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "show every matching transfer and debug logs")
	fl.StringVar(&f.requestFile, "request", "", "read the verification request from a JSON file")
	fl.StringVar(&f.metricsFile, "metrics-textfile", "", "write Prometheus metrics to this file after the run")

	return cmd
}

func (a *app) runVerify(cmd *cobra.Command, f verifyFlags) int {
	f.output = strings.ToLower(f.output)
	if f.output != "text" && f.output != "json" {
		return a.reportError(types.NewError(types.ErrInvalidInput, "unknown output format %q, use text or json", f.output), "text", f.quiet)
	}

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return a.reportError(types.WrapError(types.ErrInvalidInput, err, "failed to load configuration"), f.output, f.quiet)
	}

	req, err := buildRequest(cmd, f, cfg)
	if err != nil {
		return a.reportError(err, f.output, f.quiet)
	}

	level := cfg.LogLevel
	if level == "" {
		level = "warn"
	}
	if f.verbose {
		level = "debug"
	}
	zl := logger.NewZapLogger(level)
	defer func() { _ = zl.Sync() }()

	opts := []stablepay.Option{stablepay.WithLogger(zl)}
	if a.dial != nil {
		opts = append(opts, stablepay.WithLedgerFactory(a.dial))
	}

	var reg *prometheus.Registry
	if f.metricsFile != "" {
		reg = prometheus.NewRegistry()
		rec, err := metrics.NewPrometheusRecorder(reg)
		if err != nil {
			return a.reportError(types.WrapError(types.ErrUnknown, err, "failed to set up metrics"), f.output, f.quiet)
		}
		opts = append(opts, stablepay.WithMetrics(rec))
	}

	v, err := stablepay.NewFromConfig(cfg, opts...)
	if err != nil {
		return a.reportError(types.WrapError(types.ErrInvalidInput, err, "invalid configuration"), f.output, f.quiet)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := a.printer()
	if f.output == "text" && !f.quiet {
		p.dim(fmt.Sprintf("\nVerifying %s payment on %s...", strings.ToUpper(req.Token), chainTitle(v, req.Chain)))
	}

	res, verr := v.Verify(ctx, req)

	if reg != nil {
		if err := prometheus.WriteToTextfile(f.metricsFile, reg); err != nil {
			fmt.Fprintf(a.errOut, "warning: failed to write metrics to %s: %v\n", f.metricsFile, err)
		}
	}

	if verr != nil {
		return a.reportError(verr, f.output, f.quiet)
	}

	switch {
	case f.output == "json":
		if err := writeJSON(a.out, res); err != nil {
			fmt.Fprintf(a.errOut, "error: %v\n", err)
			return ExitError
		}
	case f.quiet:
		fmt.Fprintln(a.out, res.Status)
	default:
		p.result(v, res, f.verbose, req.MinConfirmations)
	}

	return exitCodeForStatus(res.Status)
}

// buildRequest layers the request file or the configured defaults, then
// every flag set explicitly on the command line
func buildRequest(cmd *cobra.Command, f verifyFlags, cfg *config.Config) (types.VerifyRequest, error) {
	req := cfg.RequestDefaults()
	if f.requestFile != "" {
		data, err := os.ReadFile(f.requestFile)
		if err != nil {
			return req, types.WrapError(types.ErrInvalidInput, err, "failed to read request file %s", f.requestFile)
		}
		parsed, err := utils.ParseVerifyRequest(data)
		if err != nil {
			return req, err
		}
		req = *parsed
	}

	changed := cmd.Flags().Changed
	if changed("address") {
		req.Address = f.address
	}
	if changed("amount") {
		amount, err := utils.ValidateAmount(f.amount)
		if err != nil {
			return req, types.WrapError(types.ErrInvalidInput, err, "invalid --amount")
		}
		req.Amount = amount.InexactFloat64()
	}
	if changed("token") {
		req.Token = f.token
	}
	if changed("chain") {
		req.Chain = f.chain
	}
	if changed("rpc") {
		req.RPC = f.rpc
	}
	if changed("time-window") {
		req.TimeWindow = f.timeWindow
	}
	if changed("sender") {
		req.Sender = f.sender
	}
	if changed("from-block") {
		from := f.fromBlock
		req.FromBlock = &from
	}
	if changed("to-block") {
		to := f.toBlock
		req.ToBlock = &to
	}
	if changed("min-confirmations") {
		req.MinConfirmations = f.minConfirmations
	}
	if changed("tolerance") {
		req.Tolerance = f.tolerance
	}

	if f.requestFile == "" && (req.Address == "" || !changed("amount")) {
		return req, types.NewError(types.ErrInvalidInput, "--address and --amount are required")
	}
	return req, nil
}

func (a *app) reportError(err error, output string, quiet bool) int {
	code := types.ErrorCode(err)

	switch {
	case output == "json":
		_ = writeJSON(a.out, errorOutput{Status: "ERROR", ErrorCode: code, Message: err.Error()})
	case quiet:
		fmt.Fprintf(a.errOut, "ERROR: %s\n", err.Error())
	default:
		a.printer().failure(err.Error(), code)
	}

	return exitCodeForError(err)
}

func exitCodeForStatus(s types.PaymentStatus) int {
	switch s {
	case types.StatusPaid:
		return ExitPaid
	case types.StatusNotPaid:
		return ExitNotPaid
	case types.StatusPartial:
		return ExitPartial
	case types.StatusPending:
		return ExitPending
	default:
		return ExitError
	}
}

func exitCodeForError(err error) int {
	if types.IsRPCError(err) {
		return ExitRPCError
	}
	return ExitError
}

func chainTitle(v *stablepay.Verifier, chain string) string {
	if c, ok := v.Registry().Chain(chain); ok {
		return c.Name
	}
	return chain
}
