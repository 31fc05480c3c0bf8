package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/EssncDev/Solana-SPL-Distributor/models"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	confirmTimeout      = 90 * time.Second
	confirmPollInterval = 3 * time.Second
)

// SolanaClient implements LedgerClient against a Solana RPC endpoint.
// It holds the funder keypair and signs every transaction it submits;
// the engine above it only ever sees public keys and signatures.
type SolanaClient struct {
	RPCClient *rpc.Client
	funder    solana.PrivateKey
}

// NewSolanaClient connects to the given RPC endpoint, falling back to
// mainnet-beta when none is configured.
func NewSolanaClient(endpoint string, funder solana.PrivateKey) *SolanaClient {
	if endpoint == "" {
		endpoint = rpc.MainNetBeta_RPC
	}
	return &SolanaClient{
		RPCClient: rpc.New(endpoint),
		funder:    funder,
	}
}

// Funder returns the public key of the funding wallet.
func (c *SolanaClient) Funder() solana.PublicKey {
	return c.funder.PublicKey()
}

// GetMintInfo loads the mint account and decodes the SPL token Mint layout.
func (c *SolanaClient) GetMintInfo(ctx context.Context, mint solana.PublicKey) (*models.MintInfo, error) {
	resp, err := c.RPCClient.GetAccountInfo(ctx, mint)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("mint account %s: %w", mint, ErrMintUnavailable)
		}
		return nil, fmt.Errorf("fetch mint account %s: %w", mint, err)
	}

	var m token.Mint
	if err := bin.NewBinDecoder(resp.Value.Data.GetBinary()).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode mint account %s: %w", mint, err)
	}
	if !m.IsInitialized {
		return nil, fmt.Errorf("mint account %s is not initialized: %w", mint, ErrMintUnavailable)
	}

	return &models.MintInfo{
		Address:       mint,
		Supply:        m.Supply,
		Decimals:      m.Decimals,
		Initialized:   m.IsInitialized,
		MintAuthority: m.MintAuthority,
	}, nil
}

// GetTokenBalance reads the base-unit balance of a token account.
func (c *SolanaClient) GetTokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	resp, err := c.RPCClient.GetTokenAccountBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("fetch balance of %s: %w", account, err)
	}
	amount, err := strconv.ParseUint(resp.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance %q of %s: %w", resp.Value.Amount, account, err)
	}
	return amount, nil
}

// ResolveOrCreateHoldingAccount derives the owner's associated token account
// for the mint and provisions it on chain when it does not exist yet. The
// creation is paid and signed by the funder.
func (c *SolanaClient) ResolveOrCreateHoldingAccount(ctx context.Context, mint, owner solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive associated token account for %s: %w", owner, err)
	}

	_, err = c.RPCClient.GetAccountInfo(ctx, ata)
	if err == nil {
		return ata, nil
	}
	if !errors.Is(err, rpc.ErrNotFound) {
		return solana.PublicKey{}, fmt.Errorf("fetch associated token account %s: %w", ata, err)
	}

	log.Printf("[INFO] token account %s for wallet %s not found, creating it", ata, owner)
	createIx := associatedtokenaccount.NewCreateInstruction(
		c.funder.PublicKey(),
		owner,
		mint,
	).Build()
	if _, err := c.sendAndConfirm(ctx, []solana.Instruction{createIx}); err != nil {
		return solana.PublicKey{}, fmt.Errorf("create associated token account for %s: %w", owner, err)
	}
	return ata, nil
}

// SubmitTransfer moves amount base units between two token accounts of the
// funder's mint and waits for confirmation.
func (c *SolanaClient) SubmitTransfer(ctx context.Context, from, to solana.PublicKey, amount uint64) (solana.Signature, error) {
	transferIx := token.NewTransferInstruction(
		amount,
		from,
		to,
		c.funder.PublicKey(),
		nil,
	).Build()
	sig, err := c.sendAndConfirm(ctx, []solana.Instruction{transferIx})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("transfer %d units from %s to %s: %w", amount, from, to, err)
	}
	return sig, nil
}

// sendAndConfirm stamps the instructions with a recent blockhash, signs with
// the funder key, submits and polls until the cluster confirms the signature.
func (c *SolanaClient) sendAndConfirm(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	recent, err := c.RPCClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("fetch latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(c.funder.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(c.funder.PublicKey()) {
			return &c.funder
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := c.RPCClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}

	if err := c.waitForConfirmation(ctx, sig); err != nil {
		return solana.Signature{}, err
	}
	return sig, nil
}

func (c *SolanaClient) waitForConfirmation(ctx context.Context, sig solana.Signature) error {
	deadline := time.Now().Add(confirmTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(confirmPollInterval):
		}

		resp, err := c.RPCClient.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			log.Printf("[WARN] fetch status of %s: %v", sig, err)
			continue
		}
		if len(resp.Value) == 0 || resp.Value[0] == nil {
			continue
		}
		status := resp.Value[0]
		if status.Err != nil {
			return fmt.Errorf("transaction %s failed on chain: %v", sig, status.Err)
		}
		if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
			return nil
		}
	}
	return fmt.Errorf("transaction %s not confirmed within %s", sig, confirmTimeout)
}
