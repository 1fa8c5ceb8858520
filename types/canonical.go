package types

import (
	"bytes"
	"encoding/binary"
	"time"
)

// Deterministic encoding helpers used for computing hashes and vote
// sign-bytes. Values are length-prefixed so that no two distinct field
// sequences can produce the same byte stream.

func encBytes(bz []byte) []byte {
	buf := make([]byte, 8+len(bz))
	binary.BigEndian.PutUint64(buf, uint64(len(bz)))
	copy(buf[8:], bz)
	return buf
}

func encString(s string) []byte {
	return encBytes([]byte(s))
}

func encInt64(i int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(i))
	return buf
}

func encInt32(i int32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(i))
	return buf
}

// encTime encodes a timestamp as nanoseconds since the Unix epoch, UTC.
func encTime(t time.Time) []byte {
	return encInt64(t.UTC().UnixNano())
}

func encBlockID(blockID BlockID) []byte {
	var buf bytes.Buffer
	buf.Write(encBytes(blockID.Hash))
	buf.Write(encInt32(int32(blockID.PartSetHeader.Total)))
	buf.Write(encBytes(blockID.PartSetHeader.Hash))
	return buf.Bytes()
}

// VoteSignBytes returns the deterministic byte representation of a precommit
// vote, the message each validator signs when committing a block. The chain id
// is mixed in so that a signature for one chain can never be replayed on
// another.
func VoteSignBytes(chainID string, height int64, round int32, blockID BlockID, timestamp time.Time) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(PrecommitType))
	buf.Write(encInt64(height))
	buf.Write(encInt32(round))
	buf.Write(encBlockID(blockID))
	buf.Write(encTime(timestamp))
	buf.Write(encString(chainID))
	return buf.Bytes()
}

// SignedMsgType is a type of signed message in the consensus.
type SignedMsgType byte

const (
	// Votes
	PrevoteType   SignedMsgType = 0x01
	PrecommitType SignedMsgType = 0x02
)
