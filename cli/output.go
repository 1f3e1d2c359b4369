package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/vitwit/stablepay"
	"github.com/vitwit/stablepay/types"
	"github.com/vitwit/stablepay/utils"
)

// ANSI styles
const (
	styleReset  = "\033[0m"
	styleBold   = "\033[1m"
	styleDim    = "\033[2m"
	styleRed    = "\033[31m"
	styleGreen  = "\033[32m"
	styleYellow = "\033[33m"
)

type printer struct {
	w     io.Writer
	color bool
}

// printer styles output only when writing to a terminal and NO_COLOR is
// unset
func (a *app) printer() *printer {
	color := false
	if f, ok := a.out.(*os.File); ok && os.Getenv("NO_COLOR") == "" {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &printer{w: a.out, color: color}
}

func (p *printer) style(style, s string) string {
	if !p.color {
		return s
	}
	return style + s + styleReset
}

func (p *printer) dim(s string) {
	fmt.Fprintln(p.w, p.style(styleDim, s))
}

func (p *printer) field(label, value string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.style(styleBold, fmt.Sprintf("%-14s", label+":")), value)
}

func statusBanner(s types.PaymentStatus) (string, string) {
	switch s {
	case types.StatusPaid:
		return "✅ PAYMENT VERIFIED", styleGreen
	case types.StatusNotPaid:
		return "❌ NOT PAID", styleRed
	case types.StatusPartial:
		return "⚠️  PARTIAL PAYMENT", styleYellow
	case types.StatusPending:
		return "⏳ PENDING CONFIRMATION", styleYellow
	default:
		return "❓ UNKNOWN", styleDim
	}
}

func (p *printer) result(v *stablepay.Verifier, res *types.PaymentResult, verbose bool, minConfirmations uint64) {
	chain, _ := v.Registry().Chain(res.Chain)
	network := chain.Name
	if network == "" {
		network = res.Chain
	}

	title, color := statusBanner(res.Status)
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.style(styleBold+color, title))
	fmt.Fprintln(p.w)

	p.field("Status", res.Status.String())
	p.field("Amount", fmt.Sprintf("%s %s %s",
		utils.FormatAmount(res.MatchedAmount, 2), res.Token,
		p.style(styleDim, fmt.Sprintf("(expected: %s)", utils.FormatAmount(res.ExpectedAmount, 2)))))
	if res.PendingAmount > 0 {
		p.field("Pending", fmt.Sprintf("%s %s %s",
			utils.FormatAmount(res.PendingAmount, 2), res.Token,
			p.style(styleDim, "(awaiting confirmations)")))
	}
	if res.Sender != "" {
		p.field("From", utils.FormatAddress(res.Sender, 8))
	}
	p.field("To", utils.FormatAddress(res.Receiver, 8))
	if res.TxHash != "" {
		p.field("Transaction", utils.FormatAddress(res.TxHash, 10))
	}
	if res.BlockNumber != nil {
		p.field("Block", fmt.Sprintf("%d %s", *res.BlockNumber,
			p.style(styleDim, fmt.Sprintf("(%d confirmations)", res.Confirmations))))
	}
	if res.Timestamp != nil {
		p.field("Time", utils.FormatTimestamp(res.Timestamp))
	}
	p.field("Network", network)
	if link := chain.TxURL(res.TxHash); link != "" {
		p.field("Explorer", link)
	}

	if verbose && len(res.Transfers) > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, p.style(styleBold, "All matching transfers:"))
		p.transfers(res.Transfers, minConfirmations)
	}

	if res.Status == types.StatusNotPaid {
		fmt.Fprintln(p.w)
		p.dim("Tips:")
		p.dim("  • Try expanding the time window with --time-window 7d")
		p.dim("  • Verify the wallet address is correct")
		p.dim("  • Check that the payment was sent on the correct chain")
	}
	fmt.Fprintln(p.w)
}

func (p *printer) transfers(transfers []types.Transfer, minConfirmations uint64) {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  TX HASH\tAMOUNT\tFROM\tBLOCK\tCONFIRMATIONS\tSTATUS")
	for _, t := range transfers {
		status := "confirmed"
		if !t.Confirmed {
			status = fmt.Sprintf("pending (%d/%d)", t.Confirmations, minConfirmations)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%d\t%d\t%s\n",
			utils.FormatAddress(t.TxHash, 8),
			utils.FormatAmount(t.Amount, 2),
			utils.FormatAddress(t.Sender, 8),
			t.BlockNumber,
			t.Confirmations,
			status)
	}
	_ = w.Flush()
}

func (p *printer) failure(message, code string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.style(styleBold+styleRed, "❌ Verification Failed"))
	fmt.Fprintf(p.w, "  %s %s\n", p.style(styleBold+styleRed, "Error:"), message)
	p.dim("  Error Code: " + code)
	fmt.Fprintln(p.w)
}

type errorOutput struct {
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

type transferOutput struct {
	TxHash        string  `json:"tx_hash"`
	BlockNumber   uint64  `json:"block_number"`
	LogIndex      uint    `json:"log_index"`
	Sender        string  `json:"sender"`
	Amount        float64 `json:"amount"`
	RawAmount     string  `json:"raw_amount"`
	Timestamp     *string `json:"timestamp"`
	Confirmations uint64  `json:"confirmations"`
	Confirmed     bool    `json:"confirmed"`
}

type resultOutput struct {
	Status          string           `json:"status"`
	ExpectedAmount  float64          `json:"expected_amount"`
	MatchedAmount   float64          `json:"matched_amount"`
	PendingAmount   float64          `json:"pending_amount"`
	Shortfall       float64          `json:"shortfall"`
	TransactionHash *string          `json:"transaction_hash"`
	BlockNumber     *uint64          `json:"block_number"`
	Timestamp       *string          `json:"timestamp"`
	Confirmations   uint64           `json:"confirmations"`
	Sender          *string          `json:"sender"`
	Receiver        string           `json:"receiver"`
	Token           string           `json:"token"`
	Chain           string           `json:"chain"`
	FromBlock       uint64           `json:"from_block"`
	ToBlock         uint64           `json:"to_block"`
	TipBlock        uint64           `json:"tip_block"`
	TransferCount   int              `json:"transfer_count"`
	Transfers       []transferOutput `json:"transfers"`
}

func newResultOutput(res *types.PaymentResult) resultOutput {
	out := resultOutput{
		Status:         res.Status.String(),
		ExpectedAmount: res.ExpectedAmount,
		MatchedAmount:  res.MatchedAmount,
		PendingAmount:  res.PendingAmount,
		Shortfall:      res.Shortfall(),
		BlockNumber:    res.BlockNumber,
		Timestamp:      isoTime(res.Timestamp),
		Confirmations:  res.Confirmations,
		Receiver:       res.Receiver,
		Token:          res.Token,
		Chain:          res.Chain,
		FromBlock:      res.Range.From,
		ToBlock:        res.Range.To,
		TipBlock:       res.TipBlock,
		TransferCount:  len(res.Transfers),
		Transfers:      make([]transferOutput, 0, len(res.Transfers)),
	}
	if res.TxHash != "" {
		out.TransactionHash = &res.TxHash
	}
	if res.Sender != "" {
		out.Sender = &res.Sender
	}
	for _, t := range res.Transfers {
		out.Transfers = append(out.Transfers, transferOutput{
			TxHash:        t.TxHash,
			BlockNumber:   t.BlockNumber,
			LogIndex:      t.LogIndex,
			Sender:        t.Sender,
			Amount:        t.Amount,
			RawAmount:     t.RawAmount.String(),
			Timestamp:     isoTime(t.Timestamp),
			Confirmations: t.Confirmations,
			Confirmed:     t.Confirmed,
		})
	}
	return out
}

func isoTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func writeJSON(w io.Writer, v interface{}) error {
	if res, ok := v.(*types.PaymentResult); ok {
		v = newResultOutput(res)
	}
	data, err := utils.NormalizeJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
