package service

import "errors"

var (
	// ErrContextHasActiveChain rejects deletion of a context whose chain is
	// still running; complete or break the chain first.
	ErrContextHasActiveChain = errors.New("context has an active chain")

	// ErrChainNotActive rejects mutations of a chain in a terminal status.
	ErrChainNotActive = errors.New("chain is not active")

	// ErrReservationPending rejects a second PENDING reservation for the
	// same target context.
	ErrReservationPending = errors.New("context already has a pending reservation")
)
