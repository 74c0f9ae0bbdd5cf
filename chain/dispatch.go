package chain

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/branched-services/go-crowdfund"
)

// execute runs the decoded method against its contract and returns the
// method outputs ready for packing.
func (c *Chain) execute(t *target, from common.Address, value *big.Int) ([]any, error) {
	if t.factory != nil {
		return c.executeFactory(t, from)
	}
	return executeCampaign(t, from, value)
}

func (c *Chain) executeFactory(t *target, from common.Address) ([]any, error) {
	f := t.factory
	switch t.method.Name {
	case "createCampaign":
		minimum, err := argAs[*big.Int](t.method.Name, t.args, 0)
		if err != nil {
			return nil, err
		}
		cp, err := f.CreateCampaign(from, minimum)
		if err != nil {
			return nil, err
		}
		c.registerCampaign(cp)
		return nil, nil
	case "getDeployedContracts":
		return []any{f.DeployedCampaigns()}, nil
	}
	return nil, &crowdfund.MethodNotFoundError{Contract: f.Address(), Method: t.method.Name}
}

func executeCampaign(t *target, from common.Address, value *big.Int) ([]any, error) {
	cp := t.campaign
	name := t.method.Name
	switch name {
	case "contribute":
		return nil, cp.Contribute(from, value)
	case "createRequest":
		description, err := argAs[string](name, t.args, 0)
		if err != nil {
			return nil, err
		}
		amount, err := argAs[*big.Int](name, t.args, 1)
		if err != nil {
			return nil, err
		}
		recipient, err := argAs[common.Address](name, t.args, 2)
		if err != nil {
			return nil, err
		}
		_, err = cp.CreateRequest(from, description, amount, recipient)
		return nil, err
	case "approveRequest":
		index, err := indexArg(name, t.args)
		if err != nil {
			return nil, err
		}
		return nil, cp.ApproveRequest(from, index)
	case "completeRequest":
		index, err := indexArg(name, t.args)
		if err != nil {
			return nil, err
		}
		return nil, cp.CompleteRequest(from, index)
	case "isRequestApprovedByMe":
		index, err := indexArg(name, t.args)
		if err != nil {
			return nil, err
		}
		approved, err := cp.IsRequestApprovedBy(from, index)
		if err != nil {
			return nil, err
		}
		return []any{approved}, nil
	case "manager":
		return []any{cp.Manager()}, nil
	case "minimumContribution":
		return []any{cp.MinimumContribution()}, nil
	case "contributors":
		addr, err := argAs[common.Address](name, t.args, 0)
		if err != nil {
			return nil, err
		}
		return []any{cp.IsContributor(addr)}, nil
	case "contributorsCount":
		return []any{new(big.Int).SetUint64(cp.ContributorsCount())}, nil
	case "requests":
		index, err := indexArg(name, t.args)
		if err != nil {
			return nil, err
		}
		req, err := cp.Request(index)
		if err != nil {
			return nil, err
		}
		return []any{
			req.Description,
			req.Value,
			req.Recipient,
			req.Complete,
			new(big.Int).SetUint64(req.ApprovalsCount),
		}, nil
	case "getRequestsCount":
		return []any{new(big.Int).SetUint64(cp.RequestsCount())}, nil
	case "getSummary":
		sum := cp.Summary()
		return []any{
			sum.MinimumContribution,
			sum.Balance,
			new(big.Int).SetUint64(sum.RequestsCount),
			new(big.Int).SetUint64(sum.ContributorsCount),
			sum.Manager,
		}, nil
	}
	return nil, &crowdfund.MethodNotFoundError{Contract: cp.Address(), Method: name}
}

// argAs returns the i-th decoded argument as a T.
func argAs[T any](method string, args []any, i int) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, &crowdfund.ArgumentError{Method: method, Index: i, Err: crowdfund.ErrArgumentCount}
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, &crowdfund.ArgumentError{Method: method, Index: i, Err: fmt.Errorf("expected %T, got %T", zero, args[i])}
	}
	return v, nil
}

// indexArg decodes a uint256 request index. Indices past uint64 can never
// exist, so they saturate and the campaign reports them out of range in its
// usual check order.
func indexArg(method string, args []any) (uint64, error) {
	v, err := argAs[*big.Int](method, args, 0)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return math.MaxUint64, nil
	}
	return v.Uint64(), nil
}
