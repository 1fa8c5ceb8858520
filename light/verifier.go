package light

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/lantern-chain/lantern/crypto"
	tmmath "github.com/lantern-chain/lantern/libs/math"
	"github.com/lantern-chain/lantern/types"
)

const (
	// 10s should cover most of the clients.
	// References:
	// - http://vancouver-webpages.com/time/web.html
	// - https://blog.codinghorror.com/keeping-time-on-the-pc/
	defaultMaxClockDrift = 10 * time.Second
)

// SignatureVerifier checks a raw signature over a message against a public
// key. It is the single cryptographic collaborator of the verifier and is
// pluggable so structural logic can be tested without key material.
type SignatureVerifier func(pubKey crypto.PubKey, msg, sig []byte) bool

// ProdSignatureVerifier delegates to the public key's own scheme.
func ProdSignatureVerifier(pubKey crypto.PubKey, msg, sig []byte) bool {
	return pubKey.VerifySignature(msg, sig)
}

// NopSignatureVerifier accepts every signature. Only useful in tests.
func NopSignatureVerifier(crypto.PubKey, []byte, []byte) bool {
	return true
}

// Verifier advances trust from a trusted light block to an untrusted one
// ("skipping verification"). It is a pure function of its inputs: it holds
// configuration only, no mutable state, and is safe for concurrent use.
type Verifier struct {
	chainID        string
	trustingPeriod time.Duration
	maxClockDrift  time.Duration

	commitValidator CommitValidator
	sigVerifier     SignatureVerifier
}

// VerifierOption sets a parameter for the verifier.
type VerifierOption func(*Verifier)

// WithMaxClockDrift defines how much the untrusted header's time can drift
// into the future relative to the verifier's clock. Default: 10s.
func WithMaxClockDrift(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.maxClockDrift = d
	}
}

// WithCommitValidator replaces the production commit validator, e.g. with one
// that always fails.
func WithCommitValidator(cv CommitValidator) VerifierOption {
	return func(v *Verifier) {
		v.commitValidator = cv
	}
}

// WithSignatureVerifier replaces the production signature verifier.
func WithSignatureVerifier(sv SignatureVerifier) VerifierOption {
	return func(v *Verifier) {
		v.sigVerifier = sv
	}
}

// NewVerifier returns a verifier for the given chain.
//
// trustingPeriod is how long a once-trusted header remains a valid trust
// anchor; verification against an anchor older than that fails with
// ErrOldHeaderExpired.
func NewVerifier(chainID string, trustingPeriod time.Duration, options ...VerifierOption) (*Verifier, error) {
	if chainID == "" {
		return nil, errors.New("empty chain ID")
	}
	if trustingPeriod <= 0 {
		return nil, errors.New("trusting period must be positive")
	}

	v := &Verifier{
		chainID:         chainID,
		trustingPeriod:  trustingPeriod,
		maxClockDrift:   defaultMaxClockDrift,
		commitValidator: NewProdCommitValidator(),
		sigVerifier:     ProdSignatureVerifier,
	}

	for _, o := range options {
		o(v)
	}

	return v, nil
}

// ChainID returns the chain this verifier accepts headers for.
func (v *Verifier) ChainID() string { return v.chainID }

// CrossCheckHeaders validates that the untrusted header is internally
// consistent with what is known from the trusted header. It ensures that:
//
//	a) trustedHeader can still be trusted (if not, ErrOldHeaderExpired is returned)
//	b) both headers are on the same chain
//	c) the untrusted height and time advance monotonically
//	d) the untrusted time is not too far in the future
//	e) for an adjacent untrusted header, its validator set hash equals the
//	   next-validators hash the trusted header committed to
//
// All failures are fatal for the current witness.
func (v *Verifier) CrossCheckHeaders(trustedHeader, untrustedHeader *types.SignedHeader, now time.Time) error {
	if HeaderExpired(trustedHeader, v.trustingPeriod, now) {
		return ErrOldHeaderExpired{At: trustedHeader.Time.Add(v.trustingPeriod), Now: now}
	}

	if untrustedHeader.ChainID != v.chainID {
		return ErrInvalidChainID{Expected: v.chainID, Got: untrustedHeader.ChainID}
	}
	if trustedHeader.ChainID != untrustedHeader.ChainID {
		return ErrInvalidChainID{Expected: trustedHeader.ChainID, Got: untrustedHeader.ChainID}
	}

	if untrustedHeader.Height <= trustedHeader.Height {
		return ErrNonIncreasingHeight{
			TrustedHeight:   trustedHeader.Height,
			UntrustedHeight: untrustedHeader.Height,
		}
	}

	if !untrustedHeader.Time.After(trustedHeader.Time) {
		return ErrNonIncreasingTime{
			TrustedTime:   trustedHeader.Time,
			UntrustedTime: untrustedHeader.Time,
		}
	}

	if !untrustedHeader.Time.Before(now.Add(v.maxClockDrift)) {
		return ErrHeaderFromFuture{
			HeaderTime:    untrustedHeader.Time,
			Now:           now,
			MaxClockDrift: v.maxClockDrift,
		}
	}

	// Check the validator hashes are the same in the adjacent case.
	if untrustedHeader.Height == trustedHeader.Height+1 &&
		!bytes.Equal(untrustedHeader.ValidatorsHash, trustedHeader.NextValidatorsHash) {
		return ErrInvalidNextValidatorSet{
			Expected: trustedHeader.NextValidatorsHash,
			Got:      untrustedHeader.ValidatorsHash,
		}
	}

	return nil
}

// Verify performs one step of skipping verification: it decides whether the
// untrusted block can be trusted directly on the strength of the trusted
// block.
//
// Outcomes:
//   - Trusted: the untrusted block becomes the new trusted block.
//   - NeedsWitnessAt(pivot): direct trust failed but the height gap can be
//     bisected; the caller should establish trust at the pivot height first
//     and retry.
//   - Failed: verification failed permanently for this witness.
//
// The verifier never retries internally; all network interaction (fetching
// pivot light blocks) belongs to the caller.
func (v *Verifier) Verify(trusted, untrusted *types.LightBlock, trustLevel tmmath.Fraction, now time.Time) Outcome {
	// 1) Make sure the untrusted header is even eligible for comparison.
	if err := v.CrossCheckHeaders(trusted.SignedHeader, untrusted.SignedHeader, now); err != nil {
		return failedOutcome(err)
	}

	if err := v.validateUntrusted(untrusted); err != nil {
		return failedOutcome(err)
	}

	// 2) Structural validation of the commit against its own validator set.
	if err := v.commitValidator.Validate(untrusted.SignedHeader, untrusted.ValidatorSet); err != nil {
		return failedOutcome(err)
	}

	// 3) Cryptographic validation of the commit signatures.
	if err := v.verifyCommitSignatures(untrusted.Commit, untrusted.ValidatorSet); err != nil {
		return failedOutcome(ErrInvalidHeader{Reason: err})
	}

	// 4) The key cross-set trust computation: the untrusted commit's signers
	// must overlap with the *trusted* validator set by more than trustLevel.
	tally, err := Tally(untrusted.Commit, untrusted.ValidatorSet, trusted.ValidatorSet)
	if err != nil {
		return failedOutcome(err)
	}

	if err := CheckTrust(tally, trustLevel); err != nil {
		var notEnough ErrNotEnoughTrust
		if !errors.As(err, &notEnough) {
			return failedOutcome(err)
		}

		// Direct trust failed. Bisect if there is room, otherwise give up.
		if untrusted.Height-trusted.Height > 1 {
			return needsWitnessOutcome(pivotHeight(trusted.Height, untrusted.Height))
		}
		return failedOutcome(ErrInsufficientTrust{
			TrustedHeight:   trusted.Height,
			UntrustedHeight: untrusted.Height,
			Reason:          notEnough,
		})
	}

	// 5) Ensure that +2/3 of the *new* validators signed correctly. This is
	// deliberately separate from, and sequential to, the trust-threshold
	// check above.
	//
	// NOTE: this should be the last check because untrusted validator sets
	// can be intentionally made very large to DOS the light client.
	if err := v.commitValidator.ValidateFull(untrusted.SignedHeader, untrusted.ValidatorSet); err != nil {
		return failedOutcome(err)
	}

	selfTally, err := Tally(untrusted.Commit, untrusted.ValidatorSet, untrusted.ValidatorSet)
	if err != nil {
		return failedOutcome(err)
	}
	if err := CheckTrust(selfTally, FullVerificationThreshold); err != nil {
		return failedOutcome(ErrInvalidHeader{Reason: err})
	}

	return trustedOutcome(untrusted)
}

// validateUntrusted makes sure the untrusted block is internally consistent:
// well-formed, and its validator set is the one its header names.
func (v *Verifier) validateUntrusted(untrusted *types.LightBlock) error {
	if err := untrusted.ValidateBasic(v.chainID); err != nil {
		return ErrInvalidHeader{Reason: err}
	}

	if valsHash := untrusted.ValidatorSet.Hash(); !bytes.Equal(untrusted.SignedHeader.ValidatorsHash, valsHash) {
		return ErrInvalidHeader{
			Reason: fmt.Errorf("expected new header validators (%X) to match those that were supplied (%X) at height %d",
				untrusted.SignedHeader.ValidatorsHash,
				valsHash,
				untrusted.Height),
		}
	}

	return nil
}

// verifyCommitSignatures checks the signature bytes of every for-block vote
// in the commit against the validator set the slots map to.
func (v *Verifier) verifyCommitSignatures(commit *types.Commit, vals *types.ValidatorSet) error {
	if v.sigVerifier == nil {
		return nil
	}

	for idx, commitSig := range commit.Signatures {
		if !commitSig.ForBlock() {
			continue
		}

		// The vals and commit have a 1-to-1 correspondence: slot index is
		// validator index.
		_, val := vals.GetByIndex(int32(idx))
		if val == nil {
			return fmt.Errorf("no validator at index %d (validator set size: %d)", idx, vals.Size())
		}

		// The slot must name the validator whose key it is verified against.
		// Otherwise a slot signed by one key could claim another validator's
		// identity, and any power counted under the named address would not
		// be backed by that validator's signature.
		if !bytes.Equal(commitSig.ValidatorAddress, val.Address) {
			return fmt.Errorf("wrong validator address in slot %d: expected %X, got %X",
				idx, val.Address, commitSig.ValidatorAddress)
		}

		voteSignBytes := commit.VoteSignBytes(v.chainID, int32(idx))
		if !v.sigVerifier(val.PubKey, voteSignBytes, commitSig.Signature) {
			return fmt.Errorf("wrong signature (#%d): %X", idx, commitSig.Signature)
		}
	}

	return nil
}

// VerifyCommitFull checks that the block is internally consistent and that
// more than 2/3 of its own validator set signed it correctly. It is used to
// establish the initial trust anchor, where no prior trusted block exists.
func (v *Verifier) VerifyCommitFull(lb *types.LightBlock) error {
	if err := v.validateUntrusted(lb); err != nil {
		return err
	}
	if err := v.commitValidator.Validate(lb.SignedHeader, lb.ValidatorSet); err != nil {
		return err
	}
	if err := v.commitValidator.ValidateFull(lb.SignedHeader, lb.ValidatorSet); err != nil {
		return err
	}
	if err := v.verifyCommitSignatures(lb.Commit, lb.ValidatorSet); err != nil {
		return ErrInvalidHeader{Reason: err}
	}

	tally, err := Tally(lb.Commit, lb.ValidatorSet, lb.ValidatorSet)
	if err != nil {
		return err
	}
	if err := CheckTrust(tally, FullVerificationThreshold); err != nil {
		return ErrInvalidHeader{Reason: err}
	}

	return nil
}

// VerifyBackwards verifies an untrusted header with a height one less than
// that of an adjacent trusted header. It ensures that:
//
//	a) untrusted header is valid
//	b) untrusted header has a time before the trusted header
//	c) the LastBlockID hash of the trusted header is the same as the hash
//	   of the untrusted header
//
// For any of these cases ErrInvalidHeader is returned.
func (v *Verifier) VerifyBackwards(untrustedHeader, trustedHeader *types.Header) error {
	if err := untrustedHeader.ValidateBasic(); err != nil {
		return ErrInvalidHeader{Reason: err}
	}

	if untrustedHeader.ChainID != trustedHeader.ChainID {
		return ErrInvalidHeader{Reason: ErrInvalidChainID{Expected: trustedHeader.ChainID, Got: untrustedHeader.ChainID}}
	}

	if !untrustedHeader.Time.Before(trustedHeader.Time) {
		return ErrInvalidHeader{
			Reason: fmt.Errorf("expected older header time %v to be before new header time %v",
				untrustedHeader.Time,
				trustedHeader.Time)}
	}

	if !bytes.Equal(untrustedHeader.Hash(), trustedHeader.LastBlockID.Hash) {
		return ErrInvalidHeader{
			Reason: fmt.Errorf("older header hash %X does not match trusted header's last block %X",
				untrustedHeader.Hash(),
				trustedHeader.LastBlockID.Hash)}
	}

	return nil
}

// HeaderExpired return true if the given header expired.
func HeaderExpired(h *types.SignedHeader, trustingPeriod time.Duration, now time.Time) bool {
	expirationTime := h.Time.Add(trustingPeriod)
	return !expirationTime.After(now)
}

// pivotHeight selects the height to bisect toward: the midpoint of the open
// interval between the trusted and the target height.
func pivotHeight(trustedHeight, targetHeight int64) int64 {
	return trustedHeight + (targetHeight-trustedHeight)/2
}
