package chain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
)

// GenesisAccount is an account funded when the chain starts.
type GenesisAccount struct {
	Address common.Address
	Balance *big.Int
}

// DevAccounts returns n deterministic accounts, each holding ether whole ether.
// The same n always yields the same addresses, so a journal written against
// one dev chain replays against another.
func DevAccounts(n int, ether uint64) []GenesisAccount {
	balance := new(big.Int).Mul(new(big.Int).SetUint64(ether), big.NewInt(params.Ether))
	accounts := make([]GenesisAccount, n)
	for i := range accounts {
		seed := crypto.Keccak256([]byte(fmt.Sprintf("crowdfund dev account %d", i)))
		accounts[i] = GenesisAccount{
			Address: common.BytesToAddress(seed),
			Balance: new(big.Int).Set(balance),
		}
	}
	return accounts
}

// Ether converts whole ether to wei.
func Ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(params.Ether))
}
