package services

import (
	"context"
	"errors"

	"github.com/EssncDev/Solana-SPL-Distributor/models"

	"github.com/gagliardetto/solana-go"
)

// ErrZeroBalance signals that the funder holds no tokens of the mint.
// It ends the asset run early with an empty summary; it is not a crash.
var ErrZeroBalance = errors.New("funder token balance is zero")

// ErrMintUnavailable signals that the mint account could not be loaded.
// Fatal for that mint's run; a multi-mint preview skips the mint and moves on.
var ErrMintUnavailable = errors.New("mint metadata unavailable")

// LedgerClient is everything the distribution engine needs from the chain.
// The concrete implementation is SolanaClient; tests substitute a mock.
type LedgerClient interface {
	// GetMintInfo loads and decodes the mint account. Returns an error
	// wrapping ErrMintUnavailable when the account does not exist.
	GetMintInfo(ctx context.Context, mint solana.PublicKey) (*models.MintInfo, error)

	// GetTokenBalance reads the base-unit balance of a token account.
	GetTokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error)

	// ResolveOrCreateHoldingAccount returns the owner's associated token
	// account for the mint, provisioning it on chain when it does not exist
	// yet. Provisioning is a paid, possibly-failing on-chain write.
	ResolveOrCreateHoldingAccount(ctx context.Context, mint, owner solana.PublicKey) (solana.PublicKey, error)

	// SubmitTransfer moves amount base units between two token accounts of
	// the same mint, signed by the funder, and waits for confirmation.
	SubmitTransfer(ctx context.Context, from, to solana.PublicKey, amount uint64) (solana.Signature, error)
}

// RunLedger persists commit-run outcomes so a re-run can skip recipients that
// were already paid and retry failed ones with their original amounts.
type RunLedger interface {
	SaveOutcome(rec models.OutcomeRecord) error
	// PriorOutcomes returns, per recipient, the decisive prior record for the
	// mint: a confirmed transfer if one ever happened, otherwise the latest
	// attempt.
	PriorOutcomes(mint string) (map[string]models.OutcomeRecord, error)
}

// Reporter receives the per-run outcome list and the run summary for display.
type Reporter interface {
	PrintOutcomes(mint string, outcomes []models.TransferOutcome)
	PrintSummary(summary models.RunSummary)
}
