package gateway

import "errors"

var (
	// ErrNetwork indicates the node could not be reached. Transient;
	// surfaced to the caller without retry.
	ErrNetwork = errors.New("gateway: network error")

	// ErrContractRead indicates a read call reverted or returned
	// undecodable data.
	ErrContractRead = errors.New("gateway: contract read failed")

	// ErrDeadlineInPast is returned when a swap deadline is not
	// strictly in the future at submission time.
	ErrDeadlineInPast = errors.New("gateway: deadline is in the past")

	// ErrRouterRejected indicates the router rejected a swap
	// synchronously, before a transaction was accepted.
	ErrRouterRejected = errors.New("gateway: router rejected swap")

	// ErrSettlementNotFound is returned when the transaction to await
	// cannot be located on the ledger. The caller decides whether to
	// treat it as failure; the gateway does not retry.
	ErrSettlementNotFound = errors.New("gateway: settlement transaction not found")
)
