package client

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/branched-services/go-crowdfund"
)

// Wire types shared by the HTTP API and this client. Amounts and byte
// strings use Ethereum's hex JSON encoding.

// DeployRequest is the body of POST /api/v1/deploy.
type DeployRequest struct {
	From     common.Address `json:"from"`
	Contract string         `json:"contract"`
	Args     hexutil.Bytes  `json:"args,omitempty"`
}

// TransactionRequest is the body of POST /api/v1/transactions and
// POST /api/v1/call.
type TransactionRequest struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data"`
}

// Receipt is the wire form of crowdfund.Receipt.
type Receipt struct {
	TxHash          common.Hash     `json:"transactionHash"`
	BlockNumber     hexutil.Uint64  `json:"blockNumber"`
	From            common.Address  `json:"from"`
	To              *common.Address `json:"to,omitempty"`
	ContractAddress *common.Address `json:"contractAddress,omitempty"`
	Status          hexutil.Uint64  `json:"status"`
	Return          hexutil.Bytes   `json:"return,omitempty"`
	RevertReason    string          `json:"revertReason,omitempty"`
}

// CallResponse is the body returned by POST /api/v1/call.
type CallResponse struct {
	Return hexutil.Bytes `json:"return"`
}

// BalanceResponse is the body returned by GET /api/v1/accounts/{address}/balance.
type BalanceResponse struct {
	Address common.Address `json:"address"`
	Balance *hexutil.Big   `json:"balance"`
}

// CampaignResponse is the body returned by GET /api/v1/campaigns/{address}.
type CampaignResponse struct {
	Address             common.Address   `json:"address"`
	Manager             common.Address   `json:"manager"`
	MinimumContribution *hexutil.Big     `json:"minimumContribution"`
	Balance             *hexutil.Big     `json:"balance"`
	RequestsCount       uint64           `json:"requestsCount"`
	ContributorsCount   uint64           `json:"contributorsCount"`
	Contributors        []common.Address `json:"contributors"`
}

// RequestResponse is the body returned by
// GET /api/v1/campaigns/{address}/requests/{index}.
type RequestResponse struct {
	Index          uint64         `json:"index"`
	Description    string         `json:"description"`
	Value          *hexutil.Big   `json:"value"`
	Recipient      common.Address `json:"recipient"`
	Complete       bool           `json:"complete"`
	ApprovalsCount uint64         `json:"approvalsCount"`
}

// ErrorResponse is the body of every non-2xx response. Reverted transactions
// carry the reason, the Error(string) revert data and the failed receipt.
type ErrorResponse struct {
	Error   string        `json:"error"`
	Reason  string        `json:"reason,omitempty"`
	Data    hexutil.Bytes `json:"data,omitempty"`
	Receipt *Receipt      `json:"receipt,omitempty"`
}

// NewReceipt converts a receipt to its wire form.
func NewReceipt(r *crowdfund.Receipt) *Receipt {
	if r == nil {
		return nil
	}
	out := &Receipt{
		TxHash:       r.TxHash,
		BlockNumber:  hexutil.Uint64(r.BlockNumber),
		From:         r.From,
		To:           r.To,
		Status:       hexutil.Uint64(r.Status),
		Return:       r.Return,
		RevertReason: r.RevertReason,
	}
	if r.ContractAddress != (common.Address{}) {
		addr := r.ContractAddress
		out.ContractAddress = &addr
	}
	return out
}

// ToReceipt converts a wire receipt back.
func (r *Receipt) ToReceipt() *crowdfund.Receipt {
	if r == nil {
		return nil
	}
	out := &crowdfund.Receipt{
		TxHash:       r.TxHash,
		BlockNumber:  uint64(r.BlockNumber),
		From:         r.From,
		To:           r.To,
		Status:       uint64(r.Status),
		Return:       r.Return,
		RevertReason: r.RevertReason,
	}
	if r.ContractAddress != nil {
		out.ContractAddress = *r.ContractAddress
	}
	return out
}
