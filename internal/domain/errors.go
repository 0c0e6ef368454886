package domain

import "errors"

var (
	// ErrTokenNotFound is returned when an operation references a
	// nonexistent token identifier.
	ErrTokenNotFound = errors.New("token not found")

	// ErrOwnerNotFound is returned when a principal has no entries in the
	// owner index.
	ErrOwnerNotFound = errors.New("owner not found")

	// ErrOperatorNotFound is returned when a principal has no entries in
	// the operator index.
	ErrOperatorNotFound = errors.New("operator not found")

	// ErrUnauthorizedOwner is returned when the required ownership
	// relationship to the token does not hold.
	ErrUnauthorizedOwner = errors.New("unauthorized owner")

	// ErrUnauthorizedOperator is returned when the required operator
	// relationship to the token does not hold.
	ErrUnauthorizedOperator = errors.New("unauthorized operator")

	// ErrTokenAlreadyExists is returned when minting collides with an
	// existing token identifier.
	ErrTokenAlreadyExists = errors.New("token already exists")

	// ErrSelfApprove is returned when a caller tries to approve itself.
	ErrSelfApprove = errors.New("self approve rejected")

	// ErrSelfTransfer is returned when a transfer would not change the owner.
	ErrSelfTransfer = errors.New("self transfer rejected")

	// ErrTokenBurned is returned when an owner is expected but the token
	// has been burned.
	ErrTokenBurned = errors.New("token is burned")

	// ErrTxNotFound is returned for an invalid transaction sequence number.
	ErrTxNotFound = errors.New("transaction not found")

	// ErrNotCustodian is returned when a caller lacks the administrative
	// capability required by the operation.
	ErrNotCustodian = errors.New("caller is not a custodian")
)
