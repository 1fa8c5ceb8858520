package light

import (
	"errors"
	"fmt"
	"time"

	"github.com/lantern-chain/lantern/crypto"
	tmbytes "github.com/lantern-chain/lantern/libs/bytes"
	"github.com/lantern-chain/lantern/types"
)

// ErrNoSignatureForCommit means every signature slot in a commit is absent,
// i.e. no validator signed anything. A commit must carry at least one
// concrete vote.
type ErrNoSignatureForCommit struct{}

func (e ErrNoSignatureForCommit) Error() string {
	return "commit contains only absent signatures"
}

// ErrMismatchPreCommitLength means the number of signature slots in a commit
// does not line up 1:1 with the validator set that produced it.
type ErrMismatchPreCommitLength struct {
	SignaturesLen int
	ValidatorsLen int
}

func (e ErrMismatchPreCommitLength) Error() string {
	return fmt.Sprintf("pre-commit length %d doesn't match validator set length %d",
		e.SignaturesLen, e.ValidatorsLen)
}

// ErrFaultySigner means a commit carries a signature from a validator that is
// not a member of the validator set the header claims. The address and the
// set hash are preserved so the caller can raise evidence.
type ErrFaultySigner struct {
	ValidatorAddress crypto.Address
	ValidatorSetHash tmbytes.HexBytes
}

func (e ErrFaultySigner) Error() string {
	return fmt.Sprintf("found signature from %X which is not part of validator set %X",
		e.ValidatorAddress, e.ValidatorSetHash)
}

// ErrInvalidChainID means the untrusted header belongs to another chain.
type ErrInvalidChainID struct {
	Expected string
	Got      string
}

func (e ErrInvalidChainID) Error() string {
	return fmt.Sprintf("header belongs to another chain %q, not %q", e.Got, e.Expected)
}

// ErrNonIncreasingHeight means the untrusted header's height is not strictly
// greater than the trusted header's height. Skip verification only moves
// forward.
type ErrNonIncreasingHeight struct {
	TrustedHeight   int64
	UntrustedHeight int64
}

func (e ErrNonIncreasingHeight) Error() string {
	return fmt.Sprintf("expected new header height %d to be greater than one of old header %d",
		e.UntrustedHeight, e.TrustedHeight)
}

// ErrNonIncreasingTime means the untrusted header's time is not after the
// trusted header's time.
type ErrNonIncreasingTime struct {
	TrustedTime   time.Time
	UntrustedTime time.Time
}

func (e ErrNonIncreasingTime) Error() string {
	return fmt.Sprintf("expected new header time %v to be after old header time %v",
		e.UntrustedTime, e.TrustedTime)
}

// ErrHeaderFromFuture means the untrusted header's time drifts too far ahead
// of the verifier's clock.
type ErrHeaderFromFuture struct {
	HeaderTime    time.Time
	Now           time.Time
	MaxClockDrift time.Duration
}

func (e ErrHeaderFromFuture) Error() string {
	return fmt.Sprintf("new header has a time from the future %v (now: %v; max clock drift: %v)",
		e.HeaderTime, e.Now, e.MaxClockDrift)
}

// ErrInvalidNextValidatorSet means an adjacent untrusted header declares a
// validator set different from the next validator set the trusted header
// committed to.
type ErrInvalidNextValidatorSet struct {
	Expected tmbytes.HexBytes
	Got      tmbytes.HexBytes
}

func (e ErrInvalidNextValidatorSet) Error() string {
	return fmt.Sprintf("expected old header next validators (%X) to match those from new header (%X)",
		e.Expected, e.Got)
}

// ErrOldHeaderExpired means the old (trusted) header has expired according to
// the given trustingPeriod and current time. If so, the light client must be
// reset subjectively.
type ErrOldHeaderExpired struct {
	At  time.Time
	Now time.Time
}

func (e ErrOldHeaderExpired) Error() string {
	return fmt.Sprintf("old header has expired at %v (now: %v)", e.At, e.Now)
}

// ErrNotEnoughTrust means the overlapping voting power between the trusted
// validator set and the untrusted commit's signers is below the trust
// threshold. The caller may bisect toward an intermediate header.
type ErrNotEnoughTrust struct {
	SignedPower uint64
	TotalPower  uint64
}

func (e ErrNotEnoughTrust) Error() string {
	return fmt.Sprintf("not enough trust: signed power %d, total power %d", e.SignedPower, e.TotalPower)
}

// ErrInsufficientTrust means bisection has been exhausted: the height gap is
// down to one block and the trust threshold still fails. There is no smaller
// interval to bisect into; a different witness is required.
type ErrInsufficientTrust struct {
	TrustedHeight   int64
	UntrustedHeight int64
	Reason          ErrNotEnoughTrust
}

func (e ErrInsufficientTrust) Error() string {
	return fmt.Sprintf("insufficient trust between adjacent heights %d and %d: %v",
		e.TrustedHeight, e.UntrustedHeight, e.Reason)
}

// ErrInvalidHeader means the untrusted header either failed basic validation
// or its commit is not properly signed by its own validator set. Fatal for
// the current witness.
type ErrInvalidHeader struct {
	Reason error
}

func (e ErrInvalidHeader) Error() string {
	return fmt.Sprintf("invalid header: %v", e.Reason)
}

// Unwrap returns underlying reason.
func (e ErrInvalidHeader) Unwrap() error { return e.Reason }

// ErrVerificationFailed means verification from header #From to header #To
// has failed.
type ErrVerificationFailed struct {
	From   int64
	To     int64
	Reason error
}

// Unwrap returns underlying reason.
func (e ErrVerificationFailed) Unwrap() error { return e.Reason }

func (e ErrVerificationFailed) Error() string {
	return fmt.Sprintf("verify from #%d to #%d failed: %v", e.From, e.To, e.Reason)
}

// ErrConflictingHeaders is thrown when two conflicting headers are discovered
// between the primary and a witness.
type ErrConflictingHeaders struct {
	Block        *types.LightBlock
	WitnessIndex int
}

func (e ErrConflictingHeaders) Error() string {
	return fmt.Sprintf("header hash (%X) from witness (%d) does not match primary",
		e.Block.Hash(), e.WitnessIndex)
}

// ErrFailedHeaderCrossReferencing is returned when the detector was not able
// to cross reference the header with any of the connected witnesses.
var ErrFailedHeaderCrossReferencing = errors.New("all witnesses have either not responded, don't have the " +
	" blocks or sent invalid blocks. You should look to change your witnesses " +
	" or review the light client's logs for more information")

// ErrNoWitnesses means that there are not enough witnesses connected to
// continue running the light client.
type ErrNoWitnesses struct{}

func (e ErrNoWitnesses) Error() string {
	return "no witnesses connected. please reset light client"
}

type badWitnessCode int

const (
	noResponse badWitnessCode = iota + 1
	invalidLightBlock
)

// errBadWitness is returned when the witness either does not respond or
// responds with an invalid light block.
type errBadWitness struct {
	Reason       error
	Code         badWitnessCode
	WitnessIndex int
}

func (e errBadWitness) Error() string {
	switch e.Code {
	case noResponse:
		return fmt.Sprintf("failed to get a light block from witness: %v", e.Reason)
	case invalidLightBlock:
		return fmt.Sprintf("witness sent us an invalid light block: %v", e.Reason)
	default:
		return fmt.Sprintf("unknown code: %d", e.Code)
	}
}
