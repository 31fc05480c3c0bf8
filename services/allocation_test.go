package services_test

import (
	"math/rand"
	"testing"

	"github.com/EssncDev/Solana-SPL-Distributor/models"
	"github.com/EssncDev/Solana-SPL-Distributor/services"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shares(fractions ...string) []models.AllocationShare {
	out := make([]models.AllocationShare, 0, len(fractions))
	for _, f := range fractions {
		out = append(out, models.AllocationShare{
			Recipient: solana.NewWallet().PublicKey(),
			Share:     decimal.RequireFromString(f),
		})
	}
	return out
}

func TestComputeAllocationsExampleScenario(t *testing.T) {
	in := shares("0.10", "0.25", "0.05")

	entries, err := services.ComputeAllocations(1_000_000, in)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(100_000), entries[0].Amount)
	assert.Equal(t, uint64(250_000), entries[1].Amount)
	assert.Equal(t, uint64(50_000), entries[2].Amount)

	var sum uint64
	for i, e := range entries {
		assert.Equal(t, in[i].Recipient, e.Recipient, "input order preserved")
		sum += e.Amount
	}
	assert.Equal(t, uint64(400_000), sum)
}

func TestComputeAllocationsFloors(t *testing.T) {
	entries, err := services.ComputeAllocations(7, shares("0.5"))

	require.NoError(t, err)
	assert.Equal(t, uint64(3), entries[0].Amount)
}

func TestComputeAllocationsZeroBalance(t *testing.T) {
	entries, err := services.ComputeAllocations(0, shares("0.10", "0.25"))

	assert.ErrorIs(t, err, services.ErrZeroBalance)
	assert.Empty(t, entries)
}

func TestComputeAllocationsRejectsNonPositiveShare(t *testing.T) {
	in := shares("0.10")
	in[0].Share = decimal.Zero

	_, err := services.ComputeAllocations(100, in)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrZeroBalance)
}

func TestComputeAllocationsRealizedShareRounded(t *testing.T) {
	entries, err := services.ComputeAllocations(3, shares("0.5"))

	require.NoError(t, err)
	assert.Equal(t, uint64(1), entries[0].Amount)
	assert.Equal(t, "0.33", entries[0].RealizedShare.StringFixed(2))
}

// Conservation: sum of floored allocations never exceeds the balance, for any
// balance and any share list whose fractions sum to at most 1.
func TestComputeAllocationsConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for run := 0; run < 200; run++ {
		balance := uint64(rng.Int63n(1_000_000_000)) + 1

		n := rng.Intn(8) + 1
		in := make([]models.AllocationShare, 0, n)
		remaining := decimal.NewFromInt(1)
		for i := 0; i < n; i++ {
			frac := decimal.NewFromFloat(rng.Float64()).Mul(remaining).RoundDown(6)
			if !frac.IsPositive() {
				continue
			}
			remaining = remaining.Sub(frac)
			in = append(in, models.AllocationShare{
				Recipient: solana.NewWallet().PublicKey(),
				Share:     frac,
			})
		}
		if len(in) == 0 {
			continue
		}

		entries, err := services.ComputeAllocations(balance, in)
		require.NoError(t, err)

		bal := decimal.NewFromUint64(balance)
		var sum uint64
		for i, e := range entries {
			want := bal.Mul(in[i].Share).Floor().BigInt().Uint64()
			assert.Equal(t, want, e.Amount, "entry %d: exact floor", i)
			assert.LessOrEqual(t, e.Amount, balance)
			sum += e.Amount
		}
		assert.LessOrEqual(t, sum, balance, "allocations overdraw the balance")
	}
}

// Permuting the recipient list must not change any individual amount.
func TestComputeAllocationsOrderIndependent(t *testing.T) {
	in := shares("0.10", "0.25", "0.05", "0.33")
	const balance = 987_654_321

	forward, err := services.ComputeAllocations(balance, in)
	require.NoError(t, err)

	reversed := make([]models.AllocationShare, len(in))
	for i, s := range in {
		reversed[len(in)-1-i] = s
	}
	backward, err := services.ComputeAllocations(balance, reversed)
	require.NoError(t, err)

	byRecipient := make(map[string]uint64, len(backward))
	for _, e := range backward {
		byRecipient[e.Recipient.String()] = e.Amount
	}
	for _, e := range forward {
		assert.Equal(t, e.Amount, byRecipient[e.Recipient.String()])
	}
}
