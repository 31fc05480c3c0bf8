package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/EssncDev/Solana-SPL-Distributor/models"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// DistributionTable maps a mint address (base58) to the ordered recipient
// shares configured for it. Recipient order inside a mint is the file order;
// it fixes the processing order of the run.
type DistributionTable map[string][]models.AllocationShare

// shareRow mirrors one entry of the distribution JSON file.
type shareRow struct {
	PubKey string          `json:"pubKey"`
	Share  decimal.Decimal `json:"share"`
}

var (
	shareZero = decimal.Zero
	shareOne  = decimal.NewFromInt(1)
)

// LoadDistribution parses and validates the allocation table. Any invalid
// entry (bad pubkey, share outside (0,1]) rejects the whole file: a broken
// table must never reach the ledger.
func LoadDistribution(path string) (DistributionTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read distribution file: %w", err)
	}

	var raw map[string][]shareRow
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse distribution file %s: %w", path, err)
	}

	table := make(DistributionTable, len(raw))
	for mint, rows := range raw {
		if _, err := solana.PublicKeyFromBase58(mint); err != nil {
			return nil, fmt.Errorf("distribution key %q is not a valid mint address: %w", mint, err)
		}
		shares := make([]models.AllocationShare, 0, len(rows))
		for i, row := range rows {
			recipient, err := solana.PublicKeyFromBase58(row.PubKey)
			if err != nil {
				return nil, fmt.Errorf("mint %s entry %d: invalid recipient %q: %w", mint, i, row.PubKey, err)
			}
			if !row.Share.GreaterThan(shareZero) || row.Share.GreaterThan(shareOne) {
				return nil, fmt.Errorf("mint %s entry %d (%s): share %s outside (0,1]", mint, i, row.PubKey, row.Share)
			}
			shares = append(shares, models.AllocationShare{Recipient: recipient, Share: row.Share})
		}
		table[mint] = shares
	}
	return table, nil
}

// Mints returns the configured mint addresses in sorted order, so multi-mint
// previews run deterministically.
func (t DistributionTable) Mints() []string {
	mints := make([]string, 0, len(t))
	for mint := range t {
		mints = append(mints, mint)
	}
	sort.Strings(mints)
	return mints
}

// ForMint returns the share list for one mint.
func (t DistributionTable) ForMint(mint string) ([]models.AllocationShare, bool) {
	shares, ok := t[mint]
	return shares, ok
}
