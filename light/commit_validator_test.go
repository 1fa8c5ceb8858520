package light_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-chain/lantern/light"
	"github.com/lantern-chain/lantern/types"
)

func TestProdCommitValidator_Validate(t *testing.T) {
	var (
		keys  = genPrivKeys(4)
		vals  = keys.toValidators(25)
		bTime = time.Now().Add(-time.Hour)
		cv    = light.NewProdCommitValidator()
	)

	t.Run("valid commit", func(t *testing.T) {
		sh := keys.genSignedHeader(t, testChainID, 1, bTime, vals, vals, nil, 0, len(keys))
		assert.NoError(t, cv.Validate(sh, vals))
	})

	t.Run("all signatures absent", func(t *testing.T) {
		sh := keys.genSignedHeader(t, testChainID, 1, bTime, vals, vals, nil, 0, 0)
		err := cv.Validate(sh, vals)
		require.Error(t, err)
		assert.IsType(t, light.ErrNoSignatureForCommit{}, err)
	})

	t.Run("signature count does not match validator count", func(t *testing.T) {
		sh := keys.genSignedHeader(t, testChainID, 1, bTime, vals, vals, nil, 0, len(keys))
		sh.Commit.Signatures = sh.Commit.Signatures[:3]

		err := cv.Validate(sh, vals)
		require.Error(t, err)

		mismatchErr, ok := err.(light.ErrMismatchPreCommitLength)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, 3, mismatchErr.SignaturesLen)
		assert.Equal(t, 4, mismatchErr.ValidatorsLen)
	})
}

func TestProdCommitValidator_ValidateFull(t *testing.T) {
	var (
		keys  = genPrivKeys(4)
		vals  = keys.toValidators(25)
		bTime = time.Now().Add(-time.Hour)
		cv    = light.NewProdCommitValidator()
	)

	t.Run("every signer is a member", func(t *testing.T) {
		sh := keys.genSignedHeader(t, testChainID, 1, bTime, vals, vals, nil, 0, len(keys))
		assert.NoError(t, cv.ValidateFull(sh, vals))
	})

	t.Run("absent slots are skipped", func(t *testing.T) {
		sh := keys.genSignedHeader(t, testChainID, 1, bTime, vals, vals, nil, 0, 2)
		assert.NoError(t, cv.ValidateFull(sh, vals))
	})

	t.Run("foreign signer", func(t *testing.T) {
		sh := keys.genSignedHeader(t, testChainID, 1, bTime, vals, vals, nil, 0, len(keys))

		stranger := genPrivKeys(1)
		strangerAddr := stranger[0].PubKey().Address()
		sh.Commit.Signatures[0].ValidatorAddress = strangerAddr

		err := cv.ValidateFull(sh, vals)
		require.Error(t, err)

		faultyErr, ok := err.(light.ErrFaultySigner)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, strangerAddr, faultyErr.ValidatorAddress)
		assert.EqualValues(t, vals.Hash(), faultyErr.ValidatorSetHash)
	})
}

// A nil vote names its signer, and that signer must still be a member.
func TestProdCommitValidator_ValidateFullNilVote(t *testing.T) {
	var (
		keys  = genPrivKeys(4)
		vals  = keys.toValidators(25)
		bTime = time.Now().Add(-time.Hour)
		cv    = light.NewProdCommitValidator()
	)

	sh := keys.genSignedHeader(t, testChainID, 1, bTime, vals, vals, nil, 0, len(keys))
	sh.Commit.Signatures[0].BlockIDFlag = types.BlockIDFlagNil

	assert.NoError(t, cv.ValidateFull(sh, vals))

	stranger := genPrivKeys(1)
	sh.Commit.Signatures[0].ValidatorAddress = stranger[0].PubKey().Address()
	err := cv.ValidateFull(sh, vals)
	require.Error(t, err)
	assert.IsType(t, light.ErrFaultySigner{}, err)
}
