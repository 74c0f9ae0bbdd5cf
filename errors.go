package crowdfund

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Revert kinds. A failed campaign or factory operation returns a *RevertError
// whose Kind is one of these, so callers can match with errors.Is.
var (
	// ErrUnauthorized indicates the caller lacks the role the operation needs.
	ErrUnauthorized = errors.New("crowdfund: unauthorized")

	// ErrInsufficientContribution indicates a contribution at or below the minimum.
	ErrInsufficientContribution = errors.New("crowdfund: insufficient contribution")

	// ErrAlreadyApproved indicates the contributor already approved the request.
	ErrAlreadyApproved = errors.New("crowdfund: request already approved")

	// ErrNoContributors indicates a completion attempt on a campaign nobody funded.
	ErrNoContributors = errors.New("crowdfund: campaign has no contributors")

	// ErrInsufficientFunds indicates the campaign balance cannot cover the request.
	ErrInsufficientFunds = errors.New("crowdfund: insufficient campaign funds")

	// ErrAlreadyComplete indicates the request was already paid out.
	ErrAlreadyComplete = errors.New("crowdfund: request already complete")

	// ErrQuorumNotMet indicates fewer than QuorumPercent of contributors approved.
	ErrQuorumNotMet = errors.New("crowdfund: approval quorum not met")

	// ErrOutOfRange indicates a request index past the end of the ledger.
	ErrOutOfRange = errors.New("crowdfund: request index out of range")
)

// Revert reason strings, as surfaced to callers and encoded on the wire.
const (
	ReasonManagerOnly              = "This method can be called by manager only"
	ReasonContributorsOnly         = "Only contributors can approve requests"
	ReasonInsufficientContribution = "Contribution should be more than minimun value"
	ReasonAlreadyApproved          = "This request was already approved by this contributor"
	ReasonNoContributors           = "Request cannot be completed without contributors"
	ReasonInsufficientFunds        = "Not enough contributions to complete this request"
	ReasonAlreadyComplete          = "Request was already complete"
	ReasonQuorumNotMet             = "At least 65% of contributors should approve the request"
	ReasonOutOfRange               = "Request does not exist"
)

var reasonKinds = map[string]error{
	ReasonManagerOnly:              ErrUnauthorized,
	ReasonContributorsOnly:         ErrUnauthorized,
	ReasonInsufficientContribution: ErrInsufficientContribution,
	ReasonAlreadyApproved:          ErrAlreadyApproved,
	ReasonNoContributors:           ErrNoContributors,
	ReasonInsufficientFunds:        ErrInsufficientFunds,
	ReasonAlreadyComplete:          ErrAlreadyComplete,
	ReasonQuorumNotMet:             ErrQuorumNotMet,
	ReasonOutOfRange:               ErrOutOfRange,
}

// Sentinel errors for failures outside the contract's own preconditions.
var (
	// ErrInvalidAmount indicates a negative amount or one wider than uint256.
	ErrInvalidAmount = errors.New("crowdfund: amount must fit in uint256")

	// ErrInsufficientBalance indicates an account cannot cover a debit.
	ErrInsufficientBalance = errors.New("crowdfund: insufficient account balance")

	// ErrNoContract indicates a call to an address with no deployed contract.
	ErrNoContract = errors.New("crowdfund: no contract at address")

	// ErrUnknownContract indicates a deploy request for an unknown contract name.
	ErrUnknownContract = errors.New("crowdfund: unknown contract")

	// ErrNonPayable indicates value was sent to a method that does not accept it.
	ErrNonPayable = errors.New("crowdfund: method is not payable")

	// ErrReadOnly indicates a state-changing method was used in a read-only call.
	ErrReadOnly = errors.New("crowdfund: method is not a view")

	// ErrArgumentCount indicates a call with the wrong number of arguments.
	ErrArgumentCount = errors.New("crowdfund: wrong number of arguments")
)

// RevertError is the tagged failure returned when a contract precondition
// does not hold. State is unchanged whenever a RevertError is returned.
type RevertError struct {
	Kind   error
	Reason string
}

func (e *RevertError) Error() string {
	return "crowdfund: execution reverted: " + e.Reason
}

func (e *RevertError) Unwrap() error {
	return e.Kind
}

func revert(kind error, reason string) *RevertError {
	return &RevertError{Kind: kind, Reason: reason}
}

// ReasonOf returns the revert reason carried by err, or "" if err is not a revert.
func ReasonOf(err error) string {
	var rerr *RevertError
	if errors.As(err, &rerr) {
		return rerr.Reason
	}
	return ""
}

// RevertFromReason rebuilds a RevertError from a reason string received over
// the wire. Unrecognized reasons get a nil Kind.
func RevertFromReason(reason string) *RevertError {
	return &RevertError{Kind: reasonKinds[reason], Reason: reason}
}

// MethodNotFoundError indicates the contract ABI has no such method.
type MethodNotFoundError struct {
	Contract common.Address
	Method   string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("crowdfund: method %q not found in contract %s", e.Method, e.Contract.Hex())
}

// ArgumentError indicates an issue with a method argument.
type ArgumentError struct {
	Method string
	Index  int
	Err    error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("crowdfund: argument %d for method %q: %v", e.Index, e.Method, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// DecodeError wraps a failure to unpack call data or return data.
type DecodeError struct {
	Method string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("crowdfund: decoding %s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("crowdfund: decoding: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
