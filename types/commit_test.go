package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-chain/lantern/crypto"
	"github.com/lantern-chain/lantern/crypto/ed25519"
)

func TestCommitSigValidateBasic(t *testing.T) {
	addr := ed25519.GenPrivKey().PubKey().Address()
	ts := time.Now()

	testCases := []struct {
		name string
		cs   CommitSig
		err  bool
	}{
		{"valid for block", NewCommitSigForBlock([]byte("sig"), addr, ts), false},
		{"valid absent", NewCommitSigAbsent(), false},
		{"unknown flag", CommitSig{BlockIDFlag: BlockIDFlag(0xFF)}, true},
		{"absent with address", CommitSig{BlockIDFlag: BlockIDFlagAbsent, ValidatorAddress: addr}, true},
		{"absent with time", CommitSig{BlockIDFlag: BlockIDFlagAbsent, Timestamp: ts}, true},
		{"absent with signature", CommitSig{BlockIDFlag: BlockIDFlagAbsent, Signature: []byte("sig")}, true},
		{"commit without signature", CommitSig{BlockIDFlag: BlockIDFlagCommit, ValidatorAddress: addr, Timestamp: ts}, true},
		{"commit with short address", CommitSig{BlockIDFlag: BlockIDFlagCommit, ValidatorAddress: addr[:5], Timestamp: ts, Signature: []byte("sig")}, true},
		{"commit with oversized signature", CommitSig{
			BlockIDFlag:      BlockIDFlagCommit,
			ValidatorAddress: addr,
			Timestamp:        ts,
			Signature:        make([]byte, MaxSignatureSize+1),
		}, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cs.ValidateBasic()
			if tc.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommitSigFlags(t *testing.T) {
	addr := ed25519.GenPrivKey().PubKey().Address()

	forBlock := NewCommitSigForBlock([]byte("sig"), addr, time.Now())
	assert.True(t, forBlock.ForBlock())
	assert.False(t, forBlock.Absent())

	absent := NewCommitSigAbsent()
	assert.False(t, absent.ForBlock())
	assert.True(t, absent.Absent())
}

func TestCommitSigBlockID(t *testing.T) {
	commitBlockID := makeTestBlockID([]byte("commit_hash_________offchain_def"))

	assert.True(t, CommitSig{BlockIDFlag: BlockIDFlagAbsent}.BlockID(commitBlockID).IsNil())
	assert.Equal(t, commitBlockID, CommitSig{BlockIDFlag: BlockIDFlagCommit}.BlockID(commitBlockID))
	assert.True(t, CommitSig{BlockIDFlag: BlockIDFlagNil}.BlockID(commitBlockID).IsNil())
}

func TestCommitValidateBasic(t *testing.T) {
	blockID := makeTestBlockID([]byte("blockhash___________offchain_def"))
	sig := NewCommitSigForBlock(
		[]byte("signature"),
		ed25519.GenPrivKey().PubKey().Address(),
		time.Now(),
	)

	testCases := []struct {
		name   string
		mutate func(*Commit)
		expErr bool
	}{
		{"valid", func(*Commit) {}, false},
		{"negative height", func(c *Commit) { c.Height = -1 }, true},
		{"negative round", func(c *Commit) { c.Round = -1 }, true},
		{"nil block id", func(c *Commit) { c.BlockID = BlockID{} }, true},
		{"no signatures", func(c *Commit) { c.Signatures = nil }, true},
		{"invalid signature", func(c *Commit) {
			c.Signatures[0] = CommitSig{BlockIDFlag: BlockIDFlag(0xFF)}
		}, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			commit := NewCommit(10, 1, blockID, []CommitSig{sig})
			tc.mutate(commit)
			err := commit.ValidateBasic()
			if tc.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommitHashStableAcrossCalls(t *testing.T) {
	blockID := makeTestBlockID([]byte("blockhash___________offchain_def"))
	commit := NewCommit(5, 1, blockID, []CommitSig{
		NewCommitSigForBlock([]byte("sig"), ed25519.GenPrivKey().PubKey().Address(), time.Now()),
		NewCommitSigAbsent(),
	})

	h1 := commit.Hash()
	h2 := commit.Hash()
	require.NotEmpty(t, h1)
	assert.EqualValues(t, h1, h2)
}

func TestCommitVoteSignBytesVaryOnlyByTimestamp(t *testing.T) {
	blockID := makeTestBlockID([]byte("blockhash___________offchain_def"))
	now := time.Now()
	commit := NewCommit(5, 1, blockID, []CommitSig{
		NewCommitSigForBlock([]byte("sig-a"), ed25519.GenPrivKey().PubKey().Address(), now),
		NewCommitSigForBlock([]byte("sig-b"), ed25519.GenPrivKey().PubKey().Address(), now),
		NewCommitSigForBlock([]byte("sig-c"), ed25519.GenPrivKey().PubKey().Address(), now.Add(time.Second)),
	})

	assert.Equal(t, commit.VoteSignBytes("chain", 0), commit.VoteSignBytes("chain", 1))
	assert.NotEqual(t, commit.VoteSignBytes("chain", 0), commit.VoteSignBytes("chain", 2))
}

func makeTestBlockID(hash []byte) BlockID {
	return BlockID{
		Hash: hash,
		PartSetHeader: PartSetHeader{
			Total: 1,
			Hash:  crypto.Checksum(hash),
		},
	}
}
