// Package errors provides structured error handling for the kitty ledger.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Identity errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"

	// Registry errors
	CodeKittyNotFound  Code = "KITTY_NOT_FOUND"
	CodeKittyOverflow  Code = "KITTY_ID_OVERFLOW"
	CodeNotKittyOwner  Code = "NOT_KITTY_OWNER"
	CodeInvalidKittyID Code = "INVALID_KITTY_ID"

	// Breeding errors
	CodeBreedSameParent    Code = "BREED_SAME_PARENT"
	CodeBreedInvalidParent Code = "BREED_INVALID_PARENT"

	// Marketplace errors
	CodeKittyNotForSale   Code = "KITTY_NOT_FOR_SALE"
	CodeKittyPriceTooHigh Code = "KITTY_PRICE_TOO_HIGH"
	CodeKittySelfPurchase Code = "KITTY_SELF_PURCHASE"

	// Balance errors
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeBalanceOverflow     Code = "BALANCE_OVERFLOW"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeBreedSameParent,
		CodeInvalidKittyID:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeKittyNotForSale,
		CodeKittyPriceTooHigh,
		CodeKittySelfPurchase,
		CodeInsufficientBalance:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeKittyNotFound,
		CodeBreedInvalidParent:
		return codes.NotFound

	// PermissionDenied - caller is not the owner
	case CodeNotKittyOwner:
		return codes.PermissionDenied

	case CodeUnauthenticated:
		return codes.Unauthenticated

	// ResourceExhausted - counters saturated
	case CodeKittyOverflow,
		CodeBalanceOverflow:
		return codes.ResourceExhausted

	default:
		return codes.Internal
	}
}
