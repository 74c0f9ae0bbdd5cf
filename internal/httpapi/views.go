package httpapi

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"

	"github.com/branched-services/go-crowdfund/client"
)

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"blockNumber": h.node.BlockNumber(),
	})
}

func (h *Handler) handleAccounts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.node.Accounts())
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, ok := h.addressParam(w, r)
	if !ok {
		return
	}
	balance, err := h.node.BalanceAt(r.Context(), addr)
	if err != nil {
		h.writeError(w, nil, err)
		return
	}
	h.writeJSON(w, http.StatusOK, client.BalanceResponse{
		Address: addr,
		Balance: (*hexutil.Big)(balance),
	})
}

func (h *Handler) handleFactories(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.node.Factories())
}

func (h *Handler) handleFactoryCampaigns(w http.ResponseWriter, r *http.Request) {
	addr, ok := h.addressParam(w, r)
	if !ok {
		return
	}
	f, ok := h.node.Factory(addr)
	if !ok {
		h.writeMessage(w, http.StatusNotFound, "factory not found")
		return
	}
	h.writeJSON(w, http.StatusOK, f.DeployedCampaigns())
}

// handleCampaign returns a campaign snapshot. Counts and balance come from a
// single summary so they are mutually consistent.
func (h *Handler) handleCampaign(w http.ResponseWriter, r *http.Request) {
	addr, ok := h.addressParam(w, r)
	if !ok {
		return
	}
	cp, ok := h.node.Campaign(addr)
	if !ok {
		h.writeMessage(w, http.StatusNotFound, "campaign not found")
		return
	}
	sum := cp.Summary()
	h.writeJSON(w, http.StatusOK, client.CampaignResponse{
		Address:             addr,
		Manager:             sum.Manager,
		MinimumContribution: (*hexutil.Big)(sum.MinimumContribution),
		Balance:             (*hexutil.Big)(sum.Balance),
		RequestsCount:       sum.RequestsCount,
		ContributorsCount:   sum.ContributorsCount,
		Contributors:        cp.Contributors(),
	})
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	addr, ok := h.addressParam(w, r)
	if !ok {
		return
	}
	index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 64)
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request index")
		return
	}
	cp, ok := h.node.Campaign(addr)
	if !ok {
		h.writeMessage(w, http.StatusNotFound, "campaign not found")
		return
	}
	req, err := cp.Request(index)
	if err != nil {
		h.writeMessage(w, http.StatusNotFound, "request not found")
		return
	}
	h.writeJSON(w, http.StatusOK, client.RequestResponse{
		Index:          index,
		Description:    req.Description,
		Value:          (*hexutil.Big)(req.Value),
		Recipient:      req.Recipient,
		Complete:       req.Complete,
		ApprovalsCount: req.ApprovalsCount,
	})
}

func (h *Handler) addressParam(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	raw := chi.URLParam(r, "address")
	if !common.IsHexAddress(raw) {
		h.writeMessage(w, http.StatusBadRequest, "invalid address")
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}
