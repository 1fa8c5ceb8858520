package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lantern-chain/lantern/crypto"
	"github.com/lantern-chain/lantern/crypto/ed25519"
)

// Volatile state for each Validator
// NOTE: The ProposerPriority is not included in Validator.Bytes();
// make sure to update that method if changes are made here
type Validator struct {
	Address     crypto.Address `json:"address"`
	PubKey      crypto.PubKey  `json:"-"`
	VotingPower int64          `json:"voting_power,string"`

	// ProposerPriority is not used by verification itself; it is carried so a
	// set restored from storage round-trips exactly.
	ProposerPriority int64 `json:"proposer_priority,string"`
}

// NewValidator returns a new validator with the given pubkey and voting power.
func NewValidator(pubKey crypto.PubKey, votingPower int64) *Validator {
	return &Validator{
		Address:          pubKey.Address(),
		PubKey:           pubKey,
		VotingPower:      votingPower,
		ProposerPriority: 0,
	}
}

// ValidateBasic performs basic validation.
func (v *Validator) ValidateBasic() error {
	if v == nil {
		return errors.New("nil validator")
	}
	if v.PubKey == nil {
		return errors.New("validator does not have a public key")
	}

	if v.VotingPower < 0 {
		return errors.New("validator has negative voting power")
	}

	if len(v.Address) != crypto.AddressSize {
		return fmt.Errorf("validator address is the wrong size: %v", v.Address)
	}

	return nil
}

// Copy creates a new copy of the validator so we can mutate ProposerPriority.
// Panics if the validator is nil.
func (v *Validator) Copy() *Validator {
	vCopy := *v
	return &vCopy
}

// Bytes computes the unique encoding of a validator with a given voting power.
// These are the bytes that get hashed into the validator set hash. It excludes
// the address as it is redundant with the pubkey. It also excludes
// ProposerPriority which changes every round.
func (v *Validator) Bytes() []byte {
	var buf bytes.Buffer
	buf.Write(encString(v.PubKey.Type()))
	buf.Write(encBytes(v.PubKey.Bytes()))
	buf.Write(encInt64(v.VotingPower))
	return buf.Bytes()
}

// String returns a string representation of String.
//
// 1. address
// 2. public key
// 3. voting power
// 4. proposer priority
func (v *Validator) String() string {
	if v == nil {
		return "nil-Validator"
	}
	return fmt.Sprintf("Validator{%v %v VP:%v A:%v}",
		v.Address,
		v.PubKey,
		v.VotingPower,
		v.ProposerPriority)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler
func (v *Validator) MarshalZerologObject(e *zerolog.Event) {
	e.Str("address", v.Address.ShortString())
	e.Int64("voting_power", v.VotingPower)
	e.Int64("proposer_priority", v.ProposerPriority)

	if v.PubKey != nil {
		pubkey := v.PubKey.Bytes()
		e.Str("pub_key", fmt.Sprintf("%X", pubkey[:min(8, len(pubkey))]))
		e.Str("pub_key_type", v.PubKey.Type())
	}
}

// ValidatorListString returns a prettified validator list for logging purposes.
func ValidatorListString(vals []*Validator) string {
	chunks := make([]string, len(vals))
	for i, val := range vals {
		chunks[i] = fmt.Sprintf("%s:%d", val.Address, val.VotingPower)
	}

	return strings.Join(chunks, ",")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

//----------------------------------------
// JSON

// validatorJSON is the wire representation used when persisting validators to
// the trusted store. The public key is stored as (type, raw bytes); only key
// types known to this build can be restored.
type validatorJSON struct {
	Address          crypto.Address `json:"address"`
	PubKeyType       string         `json:"pub_key_type"`
	PubKey           string         `json:"pub_key"`
	VotingPower      int64          `json:"voting_power,string"`
	ProposerPriority int64          `json:"proposer_priority,string"`
}

func (v Validator) MarshalJSON() ([]byte, error) {
	val := validatorJSON{
		Address:          v.Address,
		VotingPower:      v.VotingPower,
		ProposerPriority: v.ProposerPriority,
	}
	if v.PubKey != nil {
		val.PubKeyType = v.PubKey.Type()
		val.PubKey = strings.ToUpper(hex.EncodeToString(v.PubKey.Bytes()))
	}
	return json.Marshal(val)
}

func (v *Validator) UnmarshalJSON(data []byte) error {
	var val validatorJSON
	if err := json.Unmarshal(data, &val); err != nil {
		return err
	}
	if val.PubKey != "" {
		bz, err := hex.DecodeString(val.PubKey)
		if err != nil {
			return err
		}
		switch val.PubKeyType {
		case ed25519.KeyType:
			v.PubKey = ed25519.PubKey(bz)
		default:
			return fmt.Errorf("unknown pubkey type %q", val.PubKeyType)
		}
	}
	v.Address = val.Address
	v.VotingPower = val.VotingPower
	v.ProposerPriority = val.ProposerPriority
	return nil
}
