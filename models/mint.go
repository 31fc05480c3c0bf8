package models

import "github.com/gagliardetto/solana-go"

// MintInfo is the on-chain metadata of an SPL mint, decoded from the token
// program's Mint account. The engine only needs it to prove the mint exists
// and to render amounts; supply and authorities are informational.
type MintInfo struct {
	Address       solana.PublicKey
	Supply        uint64
	Decimals      uint8
	Initialized   bool
	MintAuthority *solana.PublicKey
}
