package models

import (
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// AllocationShare is one configured row of the distribution table:
// a recipient wallet and the fraction of the funder balance it should receive.
// Shares are validated at load time to lie in (0, 1].
type AllocationShare struct {
	Recipient solana.PublicKey
	Share     decimal.Decimal
}

// AllocationEntry is the result of sizing one share against the balance
// snapshot. Amount is floor(balance * share) in base token units.
// RealizedShare is Amount/balance rounded to two decimal places; it exists
// for the report table only and is never fed back into the math.
type AllocationEntry struct {
	Recipient     solana.PublicKey
	Share         decimal.Decimal
	Amount        uint64
	RealizedShare decimal.Decimal
}

// AccountResolution is the per-run outcome of locating (or provisioning)
// the recipient's token account. Never persisted; recomputed every run.
type AccountResolution struct {
	Recipient solana.PublicKey
	Account   solana.PublicKey
	Resolved  bool
}

// TransferOutcome ties an allocation to its resolution and, in commit mode,
// to the transfer result. Transferred is true only after confirmation.
type TransferOutcome struct {
	Entry       AllocationEntry
	Resolution  AccountResolution
	Transferred bool
	Signature   solana.Signature
	// Failed marks an attempted transfer that the ledger rejected or that
	// never confirmed. Distinct from an unresolved account: the allocation
	// was real but unexecuted.
	Failed bool
	// Skipped marks a recipient whose prior run already moved the funds,
	// so this run did not touch it.
	Skipped bool
}

// RunSummary aggregates one mint's run. Balance is the pre-run snapshot and
// is always the denominator for the percentages, in commit mode too.
type RunSummary struct {
	Mint           solana.PublicKey
	Balance        uint64
	TotalAllocated uint64
	TotalMoved     uint64
	Committed      bool
}

// PercentAllocated reports allocated units as a percentage of the balance snapshot.
func (s RunSummary) PercentAllocated() decimal.Decimal {
	return percentOf(s.TotalAllocated, s.Balance)
}

// PercentMoved reports confirmed transferred units as a percentage of the
// balance snapshot.
func (s RunSummary) PercentMoved() decimal.Decimal {
	return percentOf(s.TotalMoved, s.Balance)
}

func percentOf(part, whole uint64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromUint64(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromUint64(whole)).
		Round(2)
}

// OutcomeRecord is the persisted form of a TransferOutcome, one row per
// recipient per commit run. Corresponds to the transfer_outcomes table.
type OutcomeRecord struct {
	ID          int64  `db:"id"`
	RunID       string `db:"run_id"`
	Mint        string `db:"mint"`
	Recipient   string `db:"recipient"`
	Amount      uint64 `db:"amount"`
	Resolved    bool   `db:"resolved"`
	Transferred bool   `db:"transferred"`
	Signature   string `db:"signature"`
	// Unix timestamp in seconds.
	CreatedAt int64 `db:"created_at"`
}
