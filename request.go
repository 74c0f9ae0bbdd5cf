package crowdfund

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// QuorumPercent is the share of contributors, in whole percent, that must
// approve a request before it can be completed.
const QuorumPercent = 65

// QuorumReached reports whether approvals out of contributors meets the
// quorum. The percentage is floor-divided before comparing, so 2 of 3
// (66%) passes and 13 of 20 (exactly 65%) passes, while 129 of 199 (64.8%)
// does not.
func QuorumReached(approvals, contributors uint64) bool {
	if contributors == 0 {
		return false
	}
	return approvals*100/contributors >= QuorumPercent
}

// Request is a read-only view of a spending request.
type Request struct {
	Description    string
	Value          *big.Int
	Recipient      common.Address
	Complete       bool
	ApprovalsCount uint64
}

// Summary is a consistent snapshot of a campaign's headline figures.
type Summary struct {
	MinimumContribution *big.Int
	Balance             *big.Int
	RequestsCount       uint64
	ContributorsCount   uint64
	Manager             common.Address
}

// request is the mutable ledger entry owned by a Campaign.
type request struct {
	description string
	value       *big.Int
	recipient   common.Address
	complete    bool
	approvals   map[common.Address]struct{}
}

func newRequest(description string, value *big.Int, recipient common.Address) *request {
	return &request{
		description: description,
		value:       new(big.Int).Set(value),
		recipient:   recipient,
		approvals:   make(map[common.Address]struct{}),
	}
}

// view copies the entry into a Request.
func (r *request) view() Request {
	return Request{
		Description:    r.description,
		Value:          new(big.Int).Set(r.value),
		Recipient:      r.recipient,
		Complete:       r.complete,
		ApprovalsCount: uint64(len(r.approvals)),
	}
}

func (r *request) approvedBy(addr common.Address) bool {
	_, ok := r.approvals[addr]
	return ok
}
