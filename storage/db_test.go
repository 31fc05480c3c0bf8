package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/EssncDev/Solana-SPL-Distributor/models"
	"github.com/EssncDev/Solana-SPL-Distributor/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.NewDB(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPriorOutcomesEmpty(t *testing.T) {
	db := openDB(t)

	prior, err := db.PriorOutcomes("mint-a")

	require.NoError(t, err)
	assert.Empty(t, prior)
}

func TestSaveAndLoadOutcome(t *testing.T) {
	db := openDB(t)

	rec := models.OutcomeRecord{
		RunID:       "run-1",
		Mint:        "mint-a",
		Recipient:   "wallet-1",
		Amount:      250000,
		Resolved:    true,
		Transferred: true,
		Signature:   "sig-1",
	}
	require.NoError(t, db.SaveOutcome(rec))

	prior, err := db.PriorOutcomes("mint-a")
	require.NoError(t, err)
	require.Len(t, prior, 1)

	got := prior["wallet-1"]
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, uint64(250000), got.Amount)
	assert.True(t, got.Resolved)
	assert.True(t, got.Transferred)
	assert.Equal(t, "sig-1", got.Signature)
	assert.NotZero(t, got.CreatedAt)
}

func TestPriorOutcomesConfirmedTransferWins(t *testing.T) {
	db := openDB(t)

	require.NoError(t, db.SaveOutcome(models.OutcomeRecord{
		RunID: "run-1", Mint: "mint-a", Recipient: "wallet-1",
		Amount: 100, Resolved: true, Transferred: true, Signature: "sig-1",
	}))
	// A later failed attempt must not shadow the confirmed transfer.
	require.NoError(t, db.SaveOutcome(models.OutcomeRecord{
		RunID: "run-2", Mint: "mint-a", Recipient: "wallet-1",
		Amount: 100, Resolved: true, Transferred: false,
	}))

	prior, err := db.PriorOutcomes("mint-a")
	require.NoError(t, err)

	got := prior["wallet-1"]
	assert.True(t, got.Transferred)
	assert.Equal(t, "run-1", got.RunID)
}

func TestPriorOutcomesLatestFailureWins(t *testing.T) {
	db := openDB(t)

	require.NoError(t, db.SaveOutcome(models.OutcomeRecord{
		RunID: "run-1", Mint: "mint-a", Recipient: "wallet-1",
		Amount: 100, Resolved: false, Transferred: false,
	}))
	require.NoError(t, db.SaveOutcome(models.OutcomeRecord{
		RunID: "run-2", Mint: "mint-a", Recipient: "wallet-1",
		Amount: 100, Resolved: true, Transferred: false,
	}))

	prior, err := db.PriorOutcomes("mint-a")
	require.NoError(t, err)

	got := prior["wallet-1"]
	assert.False(t, got.Transferred)
	assert.True(t, got.Resolved)
	assert.Equal(t, "run-2", got.RunID)
}

func TestPriorOutcomesScopedByMint(t *testing.T) {
	db := openDB(t)

	require.NoError(t, db.SaveOutcome(models.OutcomeRecord{
		RunID: "run-1", Mint: "mint-a", Recipient: "wallet-1",
		Amount: 100, Resolved: true, Transferred: true,
	}))

	prior, err := db.PriorOutcomes("mint-b")
	require.NoError(t, err)
	assert.Empty(t, prior)
}
