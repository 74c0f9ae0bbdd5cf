package crowdfund

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Backend is the chain a contract binding talks to. Implementations accept
// contract creation, state-changing transactions and read-only calls.
//
// A transaction whose contract logic reverts returns a *RevertError together
// with a receipt whose Status is failed.
type Backend interface {
	DeployContract(ctx context.Context, msg DeployMsg) (*Receipt, error)
	SendTransaction(ctx context.Context, msg CallMsg) (*Receipt, error)
	CallContract(ctx context.Context, msg CallMsg) ([]byte, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
}

// CallMsg identifies a call: who sends it, to which contract, with how much
// wei and which call data.
type CallMsg struct {
	From  common.Address
	To    *common.Address
	Value *big.Int
	Data  []byte
}

// DeployMsg asks a Backend to create a contract. Args holds the ABI-packed
// constructor arguments (without a selector).
type DeployMsg struct {
	From     common.Address
	Contract string
	Args     []byte
}

// Receipt describes the outcome of a transaction or deployment.
type Receipt struct {
	TxHash          common.Hash
	BlockNumber     uint64
	From            common.Address
	To              *common.Address
	ContractAddress common.Address
	Status          uint64
	Return          []byte
	RevertReason    string
}

// revertSelector is the selector of Solidity's Error(string).
var revertSelector = crypto.Keccak256([]byte("Error(string)"))[:4]

var revertArgs = abi.Arguments{{Type: mustType("string")}}

// EncodeRevert encodes a reason the way Solidity's require does.
func EncodeRevert(reason string) []byte {
	packed, err := revertArgs.Pack(reason)
	if err != nil {
		// Packing a string cannot fail.
		panic(err)
	}
	out := make([]byte, 0, len(revertSelector)+len(packed))
	out = append(out, revertSelector...)
	return append(out, packed...)
}

// DecodeRevert turns Error(string) revert data back into a RevertError.
func DecodeRevert(data []byte) (*RevertError, error) {
	reason, err := abi.UnpackRevert(data)
	if err != nil {
		return nil, &DecodeError{Method: "Error", Err: err}
	}
	return RevertFromReason(reason), nil
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}
