package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/meetup-psi/meetup/internal/config"
	"github.com/meetup-psi/meetup/internal/params"
	"github.com/meetup-psi/meetup/pkg/circuit"
	"github.com/meetup-psi/meetup/pkg/circuit/clear"
	circuitpsi "github.com/meetup-psi/meetup/pkg/circuit/psi"
	"github.com/meetup-psi/meetup/pkg/circuit/tfhe"
	"github.com/meetup-psi/meetup/pkg/paillier"
	"github.com/meetup-psi/meetup/pkg/party"
	"github.com/meetup-psi/meetup/pkg/pool"
	"github.com/meetup-psi/meetup/pkg/protocol"
	"github.com/meetup-psi/meetup/pkg/psi"
	"github.com/meetup-psi/meetup/pkg/token"
	psiprotocol "github.com/meetup-psi/meetup/protocols/psi"
)

const (
	aliceID party.ID = "alice"
	bobID   party.ID = "bob"
)

// Match intersects -alice and -bob, index by index.
//
// By default Alice holds a fresh Paillier key and both parties run PaillierPSI
// in process. With -gates the gate circuit variant is used instead, with Alice
// holding a fresh TFHE key unless the clear backend is selected.
func (c *CLI) Match(args []string) error {
	cmd := newCommand("match")
	aliceFlag := cmd.String("alice", "", "Alice's comma separated answers")
	bobFlag := cmd.String("bob", "", "Bob's comma separated answers")
	gates := cmd.Bool("gates", false, "use the gate circuit instead of Paillier")
	backend := cmd.String("backend", "", "gate circuit backend, tfhe or clear (default from config)")
	bits := cmd.Int("bits", 0, "Paillier modulus size (default from config)")
	noMask := cmd.Bool("no-mask", false, "do not mask non matching differences")
	if err := c.parse(cmd, args); err != nil {
		return err
	}
	if *aliceFlag == "" {
		return fmt.Errorf("%w: -alice", ErrMissingFlag)
	}
	if *bobFlag == "" {
		return fmt.Errorf("%w: -bob", ErrMissingFlag)
	}
	alice, err := c.parseAnswers(*aliceFlag)
	if err != nil {
		return fmt.Errorf("alice: %w", err)
	}
	bob, err := c.parseAnswers(*bobFlag)
	if err != nil {
		return fmt.Errorf("bob: %w", err)
	}

	var matches psi.MatchSet
	if *gates {
		if *backend != "" {
			c.cfg.Circuit.Backend = *backend
		}
		matches, err = c.matchGates(alice, bob)
	} else {
		keyBits := c.cfg.Paillier.KeyBits
		if *bits != 0 {
			keyBits = *bits
		}
		matches, err = c.matchPaillier(alice, bob, keyBits, c.cfg.Paillier.Mask && !*noMask)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.output, "matches: %v of %d\n", []int(matches), len(alice))
	return nil
}

func (c *CLI) matchPaillier(alice, bob []token.Token, bits int, mask bool) (psi.MatchSet, error) {
	pl := pool.NewPool(c.cfg.Workers)
	defer pl.TearDown()

	log.Debug().Int("bits", bits).Msg("generating Paillier key")
	_, sk, err := paillier.KeyGen(c.rand, bits, pl)
	if err != nil {
		return nil, err
	}

	owner, err := protocol.NewTwoPartyHandler(psiprotocol.StartKeyOwner(sk, alice, aliceID, bobID, pl), nil, true)
	if err != nil {
		return nil, err
	}
	evaluator, err := protocol.NewTwoPartyHandler(psiprotocol.StartEvaluator(bob, mask, bobID, aliceID, pl), nil, false)
	if err != nil {
		return nil, err
	}
	if err = relay(context.Background(), owner, evaluator); err != nil {
		return nil, err
	}

	result, err := owner.Result()
	if err != nil {
		// the party that detected the failure knows best what went wrong
		if _, evalErr := evaluator.Result(); evalErr != nil && !errors.Is(evalErr, protocol.ErrAbortedByPeer) {
			return nil, evalErr
		}
		return nil, err
	}
	return result.(*psiprotocol.Result).Matches, nil
}

// relay delivers the messages of each handler to the other until both are done.
func relay(ctx context.Context, a, b protocol.Handler) error {
	eg, ctx := errgroup.WithContext(ctx)
	forward := func(from, to protocol.Handler) func() error {
		return func() error {
			for {
				select {
				case msg, ok := <-from.Listen():
					if !ok {
						return nil
					}
					to.Accept(msg)
				case <-ctx.Done():
					from.Stop()
					return ctx.Err()
				}
			}
		}
	}
	eg.Go(forward(a, b))
	eg.Go(forward(b, a))
	return eg.Wait()
}

// gateKey is held by Alice, who encrypts her items and decrypts the result.
type gateKey interface {
	circuit.Encrypter
	circuit.Decrypter
}

func (c *CLI) gateBackend() (gateKey, circuit.Gates, error) {
	switch c.cfg.Circuit.Backend {
	case config.BackendTFHE:
		log.Debug().Msg("generating TFHE keys")
		sk := tfhe.KeyGen(tfhe.DefaultParameters)
		return sk, tfhe.NewEvaluator(sk.EvaluationKey()), nil
	case config.BackendClear:
		log.Warn().Msg("the gate circuit runs on the clear reference backend, inputs are not encrypted")
		var backend clear.Backend
		return backend, backend, nil
	}
	return nil, nil, fmt.Errorf("%w: circuit backend %q", config.ErrInvalid, c.cfg.Circuit.Backend)
}

func (c *CLI) matchGates(alice, bob []token.Token) (psi.MatchSet, error) {
	key, gates, err := c.gateBackend()
	if err != nil {
		return nil, err
	}
	counter := circuit.NewCounter(gates)

	req, err := circuitpsi.EncryptItems(key, alice, params.WordBits)
	if err != nil {
		return nil, err
	}
	out, err := circuitpsi.Evaluate(context.Background(), c.rand, counter, req, bob, c.cfg.Workers)
	if err != nil {
		return nil, err
	}
	counts := counter.Counts()
	log.Info().
		Uint64("and", counts.And).
		Uint64("or", counts.Or).
		Uint64("xor", counts.Xor).
		Uint64("not", counts.Not).
		Msg("gates evaluated")
	return circuitpsi.Matches(key, out)
}
