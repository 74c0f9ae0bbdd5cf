package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Journal is an append-only log of accepted transactions.
type Journal interface {
	Append(ctx context.Context, record []byte) error
	Replay(ctx context.Context, fn func(record []byte) error) error
}

const (
	recordDeploy uint8 = iota + 1
	recordCall
)

// record is the journaled form of a transaction. Deployments carry the
// contract name and constructor arguments in Contract and Data.
type record struct {
	Kind     uint8
	From     common.Address
	To       common.Address
	Contract string
	Value    *big.Int
	Data     []byte
}

func (r *record) encode() ([]byte, error) {
	return rlp.EncodeToBytes(r)
}

func decodeRecord(raw []byte) (*record, error) {
	var r record
	if err := rlp.DecodeBytes(raw, &r); err != nil {
		return nil, err
	}
	if r.Value == nil {
		r.Value = new(big.Int)
	}
	return &r, nil
}

// txEnvelope is hashed to produce the transaction hash.
type txEnvelope struct {
	Nonce  uint64
	Record record
}
