// Package crowdfund implements a crowdfunding campaign state machine and the
// factory that creates campaigns, together with ABI bindings for driving
// them through a chain backend.
//
// Contributors send funds to a campaign, the manager proposes spending
// requests, contributors approve them, and the manager completes a request
// once enough contributors agree.
//
// # Basic Usage
//
// Use the state machine directly:
//
//	ledger := crowdfund.NewLedger()
//	factory := crowdfund.NewFactory(factoryAddr, crowdfund.WithPayout(ledger))
//
//	campaign, err := factory.CreateCampaign(manager, big.NewInt(100))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_ = campaign.Contribute(alice, big.NewInt(101))
//	index, _ := campaign.CreateRequest(manager, "buy batteries", big.NewInt(50), vendor)
//	_ = campaign.ApproveRequest(alice, index)
//	_ = campaign.CompleteRequest(manager, index)
//
// Or through a Backend, with the typed sessions:
//
//	factory, _, err := crowdfund.DeployFactory(ctx, backend, deployer)
//	_, err = factory.CreateCampaign(ctx, manager, big.NewInt(100))
//	addrs, _ := factory.DeployedCampaigns(ctx)
//	campaign := crowdfund.NewCampaignSession(addrs[0], backend)
//	_, err = campaign.Contribute(ctx, alice, big.NewInt(101))
//
// # Rules
//
//   - A contribution must be strictly greater than the minimum to register
//     the sender as a contributor. Membership is permanent.
//   - Only the manager creates and completes requests.
//   - Each contributor approves a given request at most once.
//   - A request completes when approvals*100/contributors, floor-divided,
//     is at least QuorumPercent, the campaign holds at least the request
//     value, and the request is not already complete.
//
// # Errors
//
// Failed preconditions return a *RevertError. Its Kind is one of the
// ErrUnauthorized .. ErrOutOfRange sentinels, and its Reason is the stable
// revert string a chain would report. A failed call never changes state.
//
// # Concurrency
//
// Each campaign serializes its mutations with its own lock; reads share the
// lock and never observe a half-applied operation.
package crowdfund
