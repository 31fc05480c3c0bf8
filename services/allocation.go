package services

import (
	"fmt"

	"github.com/EssncDev/Solana-SPL-Distributor/models"

	"github.com/shopspring/decimal"
)

// ComputeAllocations sizes each configured share against the funder balance
// snapshot: Amount = floor(balance * share), in base token units. Entries come
// back in input order. Each computation is independent of the others, so the
// sum over all entries never exceeds the balance as long as shares sum to at
// most 1; shares summing past 1 still floor per entry and are the operator's
// problem (the ledger will reject the overdraft).
//
// A zero balance returns ErrZeroBalance and no entries.
func ComputeAllocations(balance uint64, shares []models.AllocationShare) ([]models.AllocationEntry, error) {
	if balance == 0 {
		return nil, ErrZeroBalance
	}

	bal := decimal.NewFromUint64(balance)
	entries := make([]models.AllocationEntry, 0, len(shares))
	for i, s := range shares {
		if !s.Share.IsPositive() {
			return nil, fmt.Errorf("entry %d (%s): share %s is not positive", i, s.Recipient, s.Share)
		}
		amount := bal.Mul(s.Share).Floor().BigInt().Uint64()
		entries = append(entries, models.AllocationEntry{
			Recipient: s.Recipient,
			Share:     s.Share,
			Amount:    amount,
			// For the report table only; two decimal places.
			RealizedShare: decimal.NewFromUint64(amount).Div(bal).Round(2),
		})
	}
	return entries, nil
}
