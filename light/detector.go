package light

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/creachadair/taskgroup"

	"github.com/lantern-chain/lantern/light/provider"
	"github.com/lantern-chain/lantern/types"
)

// detectDivergence is a second wall of defense for the light client.
//
// It takes the target verified header and compares it with the headers of a
// set of witness providers that the light client is connected to. If any
// witness reports a conflicting header the light client halts with
// ErrConflictingHeaders; a human has to decide which chain to follow.
//
// If there are no conflicting headers, the light client deems the verified
// target header trusted.
func (c *Client) detectDivergence(ctx context.Context, primaryTrace []*types.LightBlock, now time.Time) error {
	if len(primaryTrace) < 2 {
		return errors.New("nil or single block primary trace")
	}
	lastVerifiedHeader := primaryTrace[len(primaryTrace)-1].SignedHeader

	c.logger.Debug("Running detector against trace",
		"endBlockHeight", lastVerifiedHeader.Height,
		"endBlockHash", lastVerifiedHeader.Hash(),
		"length", len(primaryTrace))

	c.providerMutex.Lock()
	defer c.providerMutex.Unlock()

	if len(c.witnesses) == 0 {
		return ErrNoWitnesses{}
	}

	// Query all witnesses in parallel, recording each one's verdict in its
	// own slot.
	results := make([]error, len(c.witnesses))
	g := taskgroup.New(nil)
	for i, witness := range c.witnesses {
		i, witness := i, witness
		g.Go(func() error {
			results[i] = c.compareNewHeaderWithWitness(ctx, lastVerifiedHeader, witness, i)
			return nil
		})
	}
	_ = g.Wait()

	var (
		headerMatched     bool
		witnessesToRemove []int
	)
	for _, err := range results {
		switch e := err.(type) {
		case nil: // at least one header matched
			headerMatched = true
		case ErrConflictingHeaders:
			// We have conflicting headers. This could possibly imply an
			// attack on the light client. We halt and surface both headers
			// to the caller.
			c.logger.Error("Witness has a conflicting header. Please check primary is correct"+
				" and remove witness. Otherwise, use a different primary",
				"witness", c.witnesses[e.WitnessIndex], "err", err)
			return e
		case errBadWitness:
			c.logger.Info("Witness returned an error during header comparison",
				"witness", c.witnesses[e.WitnessIndex], "err", err)
			// if witness sent us an invalid header, then remove it. If it
			// didn't respond or couldn't find the block, then we ignore it
			// and move on to the next witness.
			if e.Code == invalidLightBlock {
				c.logger.Info("Witness sent us invalid header / vals -> removing it",
					"witness", c.witnesses[e.WitnessIndex])
				witnessesToRemove = append(witnessesToRemove, e.WitnessIndex)
			}
		}
	}

	if err := c.removeWitnesses(witnessesToRemove); err != nil {
		return err
	}

	// 1. If we had at least one witness that returned the same header then we
	// conclude that we can trust the header.
	if headerMatched {
		return nil
	}

	// 2. Else all witnesses have either not responded, don't have the block
	// or sent invalid blocks.
	return ErrFailedHeaderCrossReferencing
}

// compareNewHeaderWithWitness takes the verified header from the primary and
// compares it with a header from a specified witness. The function can return
// one of three errors:
//
//  1. ErrConflictingHeaders -> there may have been an attack on this light
//     client
//  2. errBadWitness -> the witness has either not responded, doesn't have the
//     header or has given us an invalid one
//  3. nil -> the hashes of the two headers match
func (c *Client) compareNewHeaderWithWitness(ctx context.Context, h *types.SignedHeader,
	witness provider.Provider, witnessIndex int) error {

	lightBlock, err := witness.LightBlock(ctx, h.Height)
	switch {
	case err == nil:
		// continue to the comparison below
	case errors.Is(err, provider.ErrNoResponse) ||
		errors.Is(err, provider.ErrLightBlockNotFound) ||
		errors.Is(err, provider.ErrHeightTooHigh):
		return errBadWitness{Reason: err, Code: noResponse, WitnessIndex: witnessIndex}
	default:
		return errBadWitness{Reason: err, Code: invalidLightBlock, WitnessIndex: witnessIndex}
	}

	if err := lightBlock.ValidateBasic(c.chainID); err != nil {
		return errBadWitness{Reason: err, Code: invalidLightBlock, WitnessIndex: witnessIndex}
	}

	if !bytes.Equal(h.Hash(), lightBlock.Hash()) {
		return ErrConflictingHeaders{Block: lightBlock, WitnessIndex: witnessIndex}
	}

	c.logger.Debug("Matching header received by witness", "height", h.Height, "witness", witnessIndex)
	return nil
}

// compareFirstHeaderWithWitnesses compares h with all witnesses. If any
// witness reports a different header than h, the function returns an error.
func (c *Client) compareFirstHeaderWithWitnesses(ctx context.Context, h *types.SignedHeader) error {
	compareCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.providerMutex.Lock()
	defer c.providerMutex.Unlock()

	if len(c.witnesses) < 1 {
		return ErrNoWitnesses{}
	}

	results := make([]error, len(c.witnesses))
	g := taskgroup.New(nil)
	for i, witness := range c.witnesses {
		i, witness := i, witness
		g.Go(func() error {
			results[i] = c.compareNewHeaderWithWitness(compareCtx, h, witness, i)
			return nil
		})
	}
	_ = g.Wait()

	witnessesToRemove := make([]int, 0, len(c.witnesses))
	for _, err := range results {
		switch e := err.(type) {
		case nil:
			continue
		case ErrConflictingHeaders:
			c.logger.Error(fmt.Sprintf("Witness #%d has a different header. Please check primary is"+
				" correct and remove witness. Otherwise, use the different primary", e.WitnessIndex),
				"witness", c.witnesses[e.WitnessIndex])
			return err
		case errBadWitness:
			// If witness sent us an invalid header, then remove it. If it
			// didn't respond or couldn't find the block, then we ignore it
			// and move on to the next witness.
			if e.Code == invalidLightBlock {
				c.logger.Info("Witness sent us invalid header / vals -> removing it",
					"witness", c.witnesses[e.WitnessIndex], "err", err)
				witnessesToRemove = append(witnessesToRemove, e.WitnessIndex)
			}
		}
	}

	return c.removeWitnesses(witnessesToRemove)
}

// removeWitnesses removes witnesses at the given indexes. The caller must
// hold providerMutex.
func (c *Client) removeWitnesses(indexes []int) error {
	if len(indexes) == 0 {
		return nil
	}

	// Check that we will still have witnesses remaining.
	if len(c.witnesses) <= len(indexes) {
		return ErrNoWitnesses{}
	}

	// Iterate in reverse so that the underlying indexes stay valid while
	// deleting.
	for i := len(indexes) - 1; i >= 0; i-- {
		idx := indexes[i]
		c.witnesses[idx] = c.witnesses[len(c.witnesses)-1]
		c.witnesses = c.witnesses[:len(c.witnesses)-1]
	}

	return nil
}
