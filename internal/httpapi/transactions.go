package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/branched-services/go-crowdfund"
	"github.com/branched-services/go-crowdfund/client"
)

// handleDeploy creates a contract. The body is a client.DeployRequest; the
// response is the receipt.
func (h *Handler) handleDeploy(w http.ResponseWriter, r *http.Request) {
	var req client.DeployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	receipt, err := h.node.DeployContract(r.Context(), crowdfund.DeployMsg{
		From:     req.From,
		Contract: req.Contract,
		Args:     req.Args,
	})
	if err != nil {
		h.writeError(w, receipt, err)
		return
	}
	h.writeJSON(w, http.StatusOK, client.NewReceipt(receipt))
}

// handleTransaction applies a state-changing call. A reverted transaction is
// still included in a block, so its receipt is returned alongside the 422.
func (h *Handler) handleTransaction(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.decodeCall(w, r)
	if !ok {
		return
	}
	receipt, err := h.node.SendTransaction(r.Context(), msg)
	if err != nil {
		h.writeError(w, receipt, err)
		return
	}
	h.writeJSON(w, http.StatusOK, client.NewReceipt(receipt))
}

// handleCall runs a view method and returns its packed outputs.
func (h *Handler) handleCall(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.decodeCall(w, r)
	if !ok {
		return
	}
	ret, err := h.node.CallContract(r.Context(), msg)
	if err != nil {
		h.writeError(w, nil, err)
		return
	}
	h.writeJSON(w, http.StatusOK, client.CallResponse{Return: ret})
}

func (h *Handler) decodeCall(w http.ResponseWriter, r *http.Request) (crowdfund.CallMsg, bool) {
	var req client.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return crowdfund.CallMsg{}, false
	}
	if req.To == nil {
		h.writeMessage(w, http.StatusBadRequest, "missing 'to' address")
		return crowdfund.CallMsg{}, false
	}
	msg := crowdfund.CallMsg{
		From: req.From,
		To:   req.To,
		Data: req.Data,
	}
	if req.Value != nil {
		msg.Value = req.Value.ToInt()
	}
	return msg, true
}
