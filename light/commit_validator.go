package light

import (
	"github.com/lantern-chain/lantern/types"
)

// CommitValidator validates the commit associated with a header against a
// validator set. Implementations are swappable so tests can force particular
// outcomes.
//
// Validation here is structural only; cryptographic signature checks are a
// separate, pluggable step (see SignatureVerifier).
type CommitValidator interface {
	// Validate performs basic validation: the commit must carry at least one
	// non-absent signature, and one signature slot per validator.
	Validate(signedHeader *types.SignedHeader, vals *types.ValidatorSet) error

	// ValidateFull performs full validation, only necessary for 2/3 (full)
	// verification: every non-absent signer must be a member of the
	// validator set.
	ValidateFull(signedHeader *types.SignedHeader, vals *types.ValidatorSet) error
}

// ProdCommitValidator is the production-ready implementation of
// CommitValidator.
type ProdCommitValidator struct{}

var _ CommitValidator = ProdCommitValidator{}

// NewProdCommitValidator returns a new ProdCommitValidator.
func NewProdCommitValidator() ProdCommitValidator {
	return ProdCommitValidator{}
}

// Validate implements CommitValidator.
//
// It is cheap and catches malformed commits before any expensive signature
// cryptography is attempted.
func (v ProdCommitValidator) Validate(signedHeader *types.SignedHeader, vals *types.ValidatorSet) error {
	signatures := signedHeader.Commit.Signatures

	// Check that the commit contains at least one non-absent signature.
	hasPresentSignatures := false
	for _, commitSig := range signatures {
		if !commitSig.Absent() {
			hasPresentSignatures = true
			break
		}
	}
	if !hasPresentSignatures {
		return ErrNoSignatureForCommit{}
	}

	// Check that the number of signatures matches the number of validators.
	if len(signatures) != vals.Size() {
		return ErrMismatchPreCommitLength{
			SignaturesLen: len(signatures),
			ValidatorsLen: vals.Size(),
		}
	}

	return nil
}

// ValidateFull implements CommitValidator.
//
// It catches commits that include signatures from validators outside the
// validator set the header claims - the slot count alone could still match by
// coincidence.
func (v ProdCommitValidator) ValidateFull(signedHeader *types.SignedHeader, vals *types.ValidatorSet) error {
	for _, commitSig := range signedHeader.Commit.Signatures {
		// Absent votes carry no address.
		if commitSig.Absent() {
			continue
		}

		// Both commit and nil votes name their signer.
		if !vals.HasAddress(commitSig.ValidatorAddress) {
			return ErrFaultySigner{
				ValidatorAddress: commitSig.ValidatorAddress,
				ValidatorSetHash: vals.Hash(),
			}
		}
	}

	return nil
}
