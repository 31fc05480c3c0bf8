package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/EssncDev/Solana-SPL-Distributor/config"
	"github.com/EssncDev/Solana-SPL-Distributor/models"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/ratelimit"
)

// DistributionService drives one distribution run per mint: balance snapshot,
// allocation, per-recipient account resolution and, in commit mode, the
// transfers. Everything runs on a single goroutine in fixed table order; a
// cooldown limiter paces the resolution and transfer RPC calls so public
// endpoints do not throttle the batch.
type DistributionService struct {
	client   LedgerClient
	ledger   RunLedger
	reporter Reporter
	table    config.DistributionTable
	funder   solana.PublicKey
	limiter  ratelimit.Limiter
}

// NewDistributionService wires the engine. A cooldown of zero disables the
// pacing (useful against private endpoints and in tests).
func NewDistributionService(
	client LedgerClient,
	ledger RunLedger,
	reporter Reporter,
	table config.DistributionTable,
	funder solana.PublicKey,
	cooldown time.Duration,
) *DistributionService {
	limiter := ratelimit.NewUnlimited()
	if cooldown > 0 {
		limiter = ratelimit.New(1, ratelimit.Per(cooldown))
	}
	return &DistributionService{
		client:   client,
		ledger:   ledger,
		reporter: reporter,
		table:    table,
		funder:   funder,
		limiter:  limiter,
	}
}

// runState is the per-mint snapshot everything downstream is computed from.
// The balance is read once; the ledger is never re-read mid-run.
type runState struct {
	mint          solana.PublicKey
	funderAccount solana.PublicKey
	balance       uint64
}

// Preview runs allocation and account resolution for one mint, or for every
// configured mint when mint is empty. No funds move. Resolution may still
// provision missing token accounts on chain; that is intentional, resolution
// and transfer are independent steps.
func (s *DistributionService) Preview(ctx context.Context, mint string) error {
	if mint != "" {
		shares, ok := s.table.ForMint(mint)
		if !ok {
			return fmt.Errorf("distribution table has no entry for mint %s", mint)
		}
		return s.previewMint(ctx, mint, shares)
	}

	for _, m := range s.table.Mints() {
		shares, _ := s.table.ForMint(m)
		if err := s.previewMint(ctx, m, shares); err != nil {
			// Fatal only for this mint; the remaining mints still run.
			log.Printf("[WARN] mint %s skipped: %v", m, err)
		}
	}
	return nil
}

func (s *DistributionService) previewMint(ctx context.Context, mint string, shares []models.AllocationShare) error {
	run, err := s.startRun(ctx, mint)
	if err != nil {
		return err
	}

	entries, err := ComputeAllocations(run.balance, shares)
	if errors.Is(err, ErrZeroBalance) {
		log.Printf("[INFO] mint %s: funder holds no tokens, nothing to allocate", mint)
		s.reporter.PrintSummary(models.RunSummary{Mint: run.mint})
		return nil
	}
	if err != nil {
		return err
	}

	outcomes := s.resolveAll(ctx, run, entries)

	summary := models.RunSummary{
		Mint:    run.mint,
		Balance: run.balance,
	}
	for _, o := range outcomes {
		// Preview counts every allocation, resolved or not.
		summary.TotalAllocated += o.Entry.Amount
	}
	s.reporter.PrintOutcomes(mint, outcomes)
	s.reporter.PrintSummary(summary)
	return nil
}

// Commit runs the full pipeline, transfers included, for exactly one mint.
// Moving funds for all mints unattended is not supported on purpose.
func (s *DistributionService) Commit(ctx context.Context, mint string) error {
	shares, ok := s.table.ForMint(mint)
	if !ok {
		return fmt.Errorf("distribution table has no entry for mint %s", mint)
	}

	run, err := s.startRun(ctx, mint)
	if err != nil {
		return err
	}

	entries, err := ComputeAllocations(run.balance, shares)
	if errors.Is(err, ErrZeroBalance) {
		log.Printf("[INFO] mint %s: funder holds no tokens, nothing to send", mint)
		s.reporter.PrintSummary(models.RunSummary{Mint: run.mint, Committed: true})
		return nil
	}
	if err != nil {
		return err
	}

	// Prior outcomes make a re-run safe: recipients already paid are skipped,
	// failed ones are retried with the amount sized on the original balance
	// snapshot, not recomputed from the now-debited balance.
	prior, err := s.ledger.PriorOutcomes(mint)
	if err != nil {
		return fmt.Errorf("load prior outcomes for mint %s: %w", mint, err)
	}

	outcomes := make([]models.TransferOutcome, 0, len(entries))
	pending := make([]int, 0, len(entries))
	for _, e := range entries {
		if p, ok := prior[e.Recipient.String()]; ok {
			if p.Transferred {
				outcomes = append(outcomes, models.TransferOutcome{
					Entry:       e,
					Resolution:  models.AccountResolution{Recipient: e.Recipient, Resolved: true},
					Transferred: true,
					Skipped:     true,
				})
				log.Printf("[INFO] mint %s: %s already received %d units in run %s, skipping",
					mint, e.Recipient, p.Amount, p.RunID)
				continue
			}
			if p.Amount != e.Amount {
				log.Printf("[INFO] mint %s: retrying %s with recorded amount %d (recomputed would be %d)",
					mint, e.Recipient, p.Amount, e.Amount)
				e.Amount = p.Amount
				e.RealizedShare = decimal.NewFromUint64(e.Amount).
					Div(decimal.NewFromUint64(run.balance)).Round(2)
			}
		}
		pending = append(pending, len(outcomes))
		outcomes = append(outcomes, models.TransferOutcome{Entry: e})
	}

	// Resolution pass over recipients still owed, in table order.
	for _, i := range pending {
		outcomes[i].Resolution = s.resolveOne(ctx, run, outcomes[i].Entry.Recipient)
	}

	// Transfer pass, same order. Zero allocations and unresolved accounts
	// never reach the executor.
	runID := uuid.New().String()
	summary := models.RunSummary{
		Mint:      run.mint,
		Balance:   run.balance,
		Committed: true,
	}
	for _, i := range pending {
		o := &outcomes[i]
		summary.TotalAllocated += o.Entry.Amount
		if o.Resolution.Resolved && o.Entry.Amount > 0 {
			s.limiter.Take()
			sig, err := s.client.SubmitTransfer(ctx, run.funderAccount, o.Resolution.Account, o.Entry.Amount)
			if err != nil {
				o.Failed = true
				log.Printf("[WARN] mint %s: transfer to %s failed: %v", mint, o.Entry.Recipient, err)
			} else {
				o.Transferred = true
				o.Signature = sig
				summary.TotalMoved += o.Entry.Amount
			}
		}
		s.record(runID, mint, *o)
	}

	s.reporter.PrintOutcomes(mint, outcomes)
	s.reporter.PrintSummary(summary)
	return nil
}

// startRun loads the mint metadata, resolves the funder's own token account
// and takes the balance snapshot all allocation math is derived from.
func (s *DistributionService) startRun(ctx context.Context, mint string) (*runState, error) {
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("invalid mint address %q: %w", mint, err)
	}

	if _, err := s.client.GetMintInfo(ctx, mintKey); err != nil {
		return nil, fmt.Errorf("load token data for %s: %w", mint, err)
	}

	funderAccount, err := s.client.ResolveOrCreateHoldingAccount(ctx, mintKey, s.funder)
	if err != nil {
		return nil, fmt.Errorf("resolve funder token account for mint %s: %w", mint, err)
	}

	balance, err := s.client.GetTokenBalance(ctx, funderAccount)
	if err != nil {
		return nil, fmt.Errorf("read funder balance for mint %s: %w", mint, err)
	}
	log.Printf("[INFO] mint %s: funder balance %d base units", mint, balance)

	return &runState{mint: mintKey, funderAccount: funderAccount, balance: balance}, nil
}

func (s *DistributionService) resolveAll(ctx context.Context, run *runState, entries []models.AllocationEntry) []models.TransferOutcome {
	outcomes := make([]models.TransferOutcome, 0, len(entries))
	for _, e := range entries {
		outcomes = append(outcomes, models.TransferOutcome{
			Entry:      e,
			Resolution: s.resolveOne(ctx, run, e.Recipient),
		})
	}
	return outcomes
}

// resolveOne locates or provisions one recipient's token account. Failure is
// recorded, never fatal: the rest of the batch still runs.
func (s *DistributionService) resolveOne(ctx context.Context, run *runState, recipient solana.PublicKey) models.AccountResolution {
	s.limiter.Take()
	account, err := s.client.ResolveOrCreateHoldingAccount(ctx, run.mint, recipient)
	if err != nil {
		log.Printf("[WARN] mint %s: could not resolve token account for %s: %v", run.mint, recipient, err)
		return models.AccountResolution{Recipient: recipient}
	}
	return models.AccountResolution{Recipient: recipient, Account: account, Resolved: true}
}

func (s *DistributionService) record(runID, mint string, o models.TransferOutcome) {
	rec := models.OutcomeRecord{
		RunID:       runID,
		Mint:        mint,
		Recipient:   o.Entry.Recipient.String(),
		Amount:      o.Entry.Amount,
		Resolved:    o.Resolution.Resolved,
		Transferred: o.Transferred,
		CreatedAt:   time.Now().Unix(),
	}
	if o.Transferred {
		rec.Signature = o.Signature.String()
	}
	// Any funds moved are already on chain; losing the record must not stop
	// the batch. It is logged loudly instead.
	if err := s.ledger.SaveOutcome(rec); err != nil {
		log.Printf("[WARN] mint %s: outcome for %s not recorded: %v", mint, rec.Recipient, err)
	}
}
