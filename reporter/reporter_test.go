package reporter_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/EssncDev/Solana-SPL-Distributor/models"
	"github.com/EssncDev/Solana-SPL-Distributor/reporter"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPrintOutcomesTable(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()
	var buf bytes.Buffer

	rep := reporter.NewConsole(&buf)
	rep.PrintOutcomes(mint.String(), []models.TransferOutcome{
		{
			Entry: models.AllocationEntry{
				Recipient:     recipient,
				Share:         decimal.RequireFromString("0.25"),
				Amount:        250000,
				RealizedShare: decimal.RequireFromString("0.25"),
			},
			Resolution: models.AccountResolution{Recipient: recipient, Resolved: false},
		},
	})

	out := buf.String()
	assert.Contains(t, out, mint.String()[:8])
	assert.Contains(t, out, recipient.String())
	assert.Contains(t, out, "250,000")
	assert.Contains(t, out, "0.25")
	assert.Contains(t, out, "unresolved")
	assert.Contains(t, out, "not found")
}

func TestPrintSummaryCommitted(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewConsole(&buf)

	rep.PrintSummary(models.RunSummary{
		Mint:           solana.NewWallet().PublicKey(),
		Balance:        1_000_000,
		TotalAllocated: 400_000,
		TotalMoved:     400_000,
		Committed:      true,
	})

	out := buf.String()
	assert.Contains(t, out, "Sum of tokens sent: 400,000")
	assert.Contains(t, out, "40.00%")
	assert.Contains(t, out, "1,000,000")
}

func TestPrintSummaryPreview(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewConsole(&buf)

	rep.PrintSummary(models.RunSummary{
		Mint:           solana.NewWallet().PublicKey(),
		Balance:        1_000_000,
		TotalAllocated: 400_000,
	})

	out := buf.String()
	assert.Contains(t, out, "Sum of tokens in allocation: 400,000")
	assert.Contains(t, out, "40.00%")
	assert.Contains(t, out, "commit")
}

func TestPrintSummaryZeroBalance(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewConsole(&buf)

	rep.PrintSummary(models.RunSummary{Mint: solana.NewWallet().PublicKey()})

	assert.True(t, strings.Contains(buf.String(), "nothing to distribute"))
}

func TestStatusCells(t *testing.T) {
	recipient := solana.NewWallet().PublicKey()
	entry := models.AllocationEntry{
		Recipient:     recipient,
		Amount:        100,
		Share:         decimal.RequireFromString("0.1"),
		RealizedShare: decimal.RequireFromString("0.1"),
	}
	resolved := models.AccountResolution{
		Recipient: recipient,
		Account:   solana.NewWallet().PublicKey(),
		Resolved:  true,
	}

	cases := []struct {
		name    string
		outcome models.TransferOutcome
		want    string
	}{
		{"skipped", models.TransferOutcome{Entry: entry, Resolution: resolved, Transferred: true, Skipped: true}, "skipped (already sent)"},
		{"failed", models.TransferOutcome{Entry: entry, Resolution: resolved, Failed: true}, "transfer failed"},
		{"resolved only", models.TransferOutcome{Entry: entry, Resolution: resolved}, "resolved"},
		{"zero allocation", models.TransferOutcome{Entry: models.AllocationEntry{Recipient: recipient, Share: entry.Share, RealizedShare: decimal.Zero}, Resolution: resolved}, "no allocation"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			reporter.NewConsole(&buf).PrintOutcomes("mint", []models.TransferOutcome{tc.outcome})
			assert.Contains(t, buf.String(), tc.want)
		})
	}
}
