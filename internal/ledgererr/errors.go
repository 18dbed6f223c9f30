// Package ledgererr lists every way a ledger transition can be rejected.
package ledgererr

import (
	"errors"

	"github.com/agentrep/trustledger/pkg/cerr"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthorization
	KindConflict
	KindTiming
	KindConsensus
	KindArithmetic
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindTiming:
		return "timing"
	case KindConsensus:
		return "consensus"
	case KindArithmetic:
		return "arithmetic"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a rejection sentinel. Compare with errors.Is.
type Error struct {
	Kind Kind
	Name string
	Msg  string
	code cerr.Code
}

func (e *Error) Error() string {
	return e.Msg
}

// Code is the transport code the rejection is reported with.
func (e *Error) Code() cerr.Code {
	return e.code
}

func newError(kind Kind, code cerr.Code, name, msg string) *Error {
	return &Error{Kind: kind, Name: name, Msg: msg, code: code}
}

var (
	ErrNameTooLong             = newError(KindValidation, cerr.InvalidArgument, "NameTooLong", "name exceeds 50 bytes")
	ErrDescriptionTooLong      = newError(KindValidation, cerr.InvalidArgument, "DescriptionTooLong", "description exceeds 200 bytes")
	ErrTaskIDTooLong           = newError(KindValidation, cerr.InvalidArgument, "TaskIdTooLong", "task id exceeds 64 bytes")
	ErrInvalidParameter        = newError(KindValidation, cerr.InvalidArgument, "InvalidParameter", "invalid parameter")
	ErrInvalidReputationAmount = newError(KindValidation, cerr.InvalidArgument, "InvalidReputationAmount", "invalid reputation amount")
	ErrInvalidProof            = newError(KindValidation, cerr.InvalidArgument, "InvalidProof", "invalid proof")

	ErrAgentNotRegistered     = newError(KindNotFound, cerr.NotFound, "AgentNotRegistered", "agent not registered")
	ErrAgentInactive          = newError(KindAuthorization, cerr.PermissionDenied, "AgentInactive", "agent is inactive")
	ErrOracleNotAuthorized    = newError(KindAuthorization, cerr.PermissionDenied, "OracleNotAuthorized", "oracle not authorized")
	ErrInsufficientReputation = newError(KindAuthorization, cerr.PermissionDenied, "InsufficientReputation", "insufficient reputation")

	ErrSelfVouchNotAllowed     = newError(KindConflict, cerr.FailedPrecondition, "SelfVouchNotAllowed", "an agent cannot vouch for itself")
	ErrSelfSlashNotAllowed     = newError(KindConflict, cerr.FailedPrecondition, "SelfSlashNotAllowed", "an agent cannot slash itself")
	ErrAgentAlreadyRegistered  = newError(KindConflict, cerr.AlreadyExists, "AgentAlreadyRegistered", "agent already registered")
	ErrAlreadyVoted            = newError(KindConflict, cerr.AlreadyExists, "AlreadyVoted", "voter already voted on this proposal")
	ErrProposalAlreadyExecuted = newError(KindConflict, cerr.FailedPrecondition, "ProposalAlreadyExecuted", "proposal already executed")
	ErrDecayCooldown           = newError(KindConflict, cerr.FailedPrecondition, "DecayCooldown", "decay applied too recently")
	ErrLockupNotExpired        = newError(KindTiming, cerr.FailedPrecondition, "LockupNotExpired", "vouch lockup period has not expired")
	ErrBadgeAlreadyMinted      = newError(KindConflict, cerr.AlreadyExists, "BadgeAlreadyMinted", "badge already minted")
	ErrOracleAlreadyAdded      = newError(KindConflict, cerr.AlreadyExists, "OracleAlreadyAdded", "oracle already authorized")
	ErrRegistryFull            = newError(KindConflict, cerr.ResourceExhausted, "RegistryFull", "oracle registry is full")

	ErrVotingPeriodEnded  = newError(KindTiming, cerr.FailedPrecondition, "VotingPeriodEnded", "voting period has ended")
	ErrVotingPeriodActive = newError(KindTiming, cerr.FailedPrecondition, "VotingPeriodActive", "voting period is still active")

	ErrQuorumNotReached = newError(KindConsensus, cerr.FailedPrecondition, "QuorumNotReached", "quorum not reached")
	ErrProposalRejected = newError(KindConsensus, cerr.FailedPrecondition, "ProposalRejected", "proposal rejected")

	ErrMathOverflow = newError(KindArithmetic, cerr.OutOfRange, "MathOverflow", "math overflow")

	ErrVouchNotFound       = newError(KindNotFound, cerr.NotFound, "VouchNotFound", "vouch not found")
	ErrProposalNotFound    = newError(KindNotFound, cerr.NotFound, "ProposalNotFound", "proposal not found")
	ErrBadgeNotFound       = newError(KindNotFound, cerr.NotFound, "BadgeNotFound", "badge not found")
	ErrRegistryUninitiated = newError(KindNotFound, cerr.NotFound, "RegistryNotInitialized", "oracle registry not initialized")
	ErrProofNotFound       = newError(KindNotFound, cerr.NotFound, "ProofNotFound", "proof record not found")
	ErrKeyUninitiated      = newError(KindNotFound, cerr.NotFound, "VerificationKeyNotInitialized", "verification key not initialized")
)

// KindOf returns the Kind of the rejection in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ToCerr converts a rejection into a *cerr.Error for the transport layer.
// Errors that already carry a cerr code, and unknown errors, pass through.
func ToCerr(err error) error {
	if err == nil {
		return nil
	}
	var cErr *cerr.Error
	if errors.As(err, &cErr) {
		return err
	}
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	out := cerr.NewError(e.code, e.Msg, err)
	if e.Kind == KindValidation {
		out.AddViolation("", e.Name, e.Msg)
	}
	return out
}
