// Package client implements crowdfund.Backend over the crowdfundd HTTP API,
// so typed contract sessions work against a remote node.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/branched-services/go-crowdfund"
)

var _ crowdfund.Backend = (*Client)(nil)

// knownErrors maps server error messages back to their sentinels.
var knownErrors = map[string]error{}

func init() {
	for _, err := range []error{
		crowdfund.ErrInvalidAmount,
		crowdfund.ErrInsufficientBalance,
		crowdfund.ErrNoContract,
		crowdfund.ErrUnknownContract,
		crowdfund.ErrNonPayable,
		crowdfund.ErrReadOnly,
		crowdfund.ErrArgumentCount,
	} {
		knownErrors[err.Error()] = err
	}
}

// APIError is a non-revert failure reported by the server.
type APIError struct {
	StatusCode int
	Message    string
	Err        error // matching sentinel, if the message is recognized
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Client talks to a crowdfundd node.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a client for the node at baseURL, e.g. "http://localhost:8545".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", u.Scheme)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// DeployContract implements crowdfund.Backend.
func (c *Client) DeployContract(ctx context.Context, msg crowdfund.DeployMsg) (*crowdfund.Receipt, error) {
	var out Receipt
	err := c.do(ctx, http.MethodPost, "/api/v1/deploy", DeployRequest{
		From:     msg.From,
		Contract: msg.Contract,
		Args:     msg.Args,
	}, &out)
	return receiptOrNil(&out, err)
}

// SendTransaction implements crowdfund.Backend.
func (c *Client) SendTransaction(ctx context.Context, msg crowdfund.CallMsg) (*crowdfund.Receipt, error) {
	var out Receipt
	err := c.do(ctx, http.MethodPost, "/api/v1/transactions", newTransactionRequest(msg), &out)
	return receiptOrNil(&out, err)
}

// CallContract implements crowdfund.Backend.
func (c *Client) CallContract(ctx context.Context, msg crowdfund.CallMsg) ([]byte, error) {
	var out CallResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/call", newTransactionRequest(msg), &out); err != nil {
		return nil, err
	}
	return out.Return, nil
}

// BalanceAt implements crowdfund.Backend.
func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	var out BalanceResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/accounts/"+account.Hex()+"/balance", nil, &out); err != nil {
		return nil, err
	}
	if out.Balance == nil {
		return new(big.Int), nil
	}
	return out.Balance.ToInt(), nil
}

// Accounts returns the node's funded dev accounts.
func (c *Client) Accounts(ctx context.Context) ([]common.Address, error) {
	var out []common.Address
	if err := c.do(ctx, http.MethodGet, "/api/v1/accounts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Factories returns the addresses of the node's deployed factories.
func (c *Client) Factories(ctx context.Context) ([]common.Address, error) {
	var out []common.Address
	if err := c.do(ctx, http.MethodGet, "/api/v1/factories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Campaign returns a snapshot of the campaign at addr.
func (c *Client) Campaign(ctx context.Context, addr common.Address) (*CampaignResponse, error) {
	var out CampaignResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/campaigns/"+addr.Hex(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func newTransactionRequest(msg crowdfund.CallMsg) TransactionRequest {
	req := TransactionRequest{
		From: msg.From,
		To:   msg.To,
		Data: msg.Data,
	}
	if msg.Value != nil {
		req.Value = (*hexutil.Big)(new(big.Int).Set(msg.Value))
	}
	return req
}

// receiptOrNil returns the decoded receipt, or the one carried by a revert.
func receiptOrNil(out *Receipt, err error) (*crowdfund.Receipt, error) {
	if err != nil {
		var failed *failedTxError
		if errors.As(err, &failed) {
			return failed.receipt.ToReceipt(), failed.err
		}
		return nil, err
	}
	return out.ToReceipt(), nil
}

// failedTxError carries the receipt of an included but failed transaction
// out of do.
type failedTxError struct {
	receipt *Receipt
	err     error
}

func (e *failedTxError) Error() string { return e.err.Error() }
func (e *failedTxError) Unwrap() error { return e.err }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encoding request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("client: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var err error
	switch {
	case len(body.Data) > 0:
		rerr, derr := crowdfund.DecodeRevert(body.Data)
		if derr != nil {
			err = derr
		} else {
			err = rerr
		}
	case body.Reason != "":
		err = crowdfund.RevertFromReason(body.Reason)
	default:
		err = &APIError{
			StatusCode: resp.StatusCode,
			Message:    body.Error,
			Err:        knownErrors[body.Error],
		}
	}

	if body.Receipt != nil {
		return &failedTxError{receipt: body.Receipt, err: err}
	}
	return err
}
