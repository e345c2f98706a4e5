package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/meetup-psi/meetup/internal/config"
	"github.com/meetup-psi/meetup/pkg/contract"
	"github.com/meetup-psi/meetup/pkg/token"
)

// ErrMissingFlag is returned when a required flag is not set.
var ErrMissingFlag = errors.New("missing required flag")

// CLI runs the meetup commands.
type CLI struct {
	output io.Writer
	rand   io.Reader
	cfg    config.Config
}

// NewCLI creates a CLI printing its results to output.
func NewCLI(output io.Writer) *CLI {
	return &CLI{output: output, rand: rand.Reader, cfg: config.Default()}
}

// command holds the flags shared by every command.
type command struct {
	*flag.FlagSet
	configPath string
	statePath  string
}

func newCommand(name string) *command {
	c := &command{FlagSet: flag.NewFlagSet(name, flag.ContinueOnError)}
	c.StringVar(&c.configPath, "config", "", "TOML configuration file")
	c.StringVar(&c.statePath, "state", "", "contract state file (default from config)")
	return c
}

// parse parses args, loads the configuration and sets the log level.
func (c *CLI) parse(cmd *command, args []string) error {
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if cmd.configPath != "" {
		cfg, err := config.Load(cmd.configPath)
		if err != nil {
			return err
		}
		c.cfg = *cfg
	}
	if cmd.statePath == "" {
		cmd.statePath = c.cfg.Storage.StatePath
	}
	level, err := c.cfg.LogLevel()
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

// parseAnswers reads a comma separated list of answers and encodes them as
// tokens with the configured base.
func (c *CLI) parseAnswers(s string) ([]token.Token, error) {
	fields := strings.Split(s, ",")
	answers := make([]uint64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		a, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid answer %q: %w", f, err)
		}
		answers = append(answers, a)
	}
	if len(answers) == 0 {
		return nil, errors.New("no answers given")
	}
	return token.FromAnswers(answers, c.cfg.Token.Base)
}

func loadState(path string) (contract.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return contract.State{}, fmt.Errorf("failed to read state: %w", err)
	}
	var s contract.State
	if err = s.UnmarshalBinary(data); err != nil {
		return contract.State{}, err
	}
	return s, nil
}

// saveState writes s next to path and renames it into place.
func saveState(path string, s contract.State) error {
	data, err := s.MarshalBinary()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

func (c *CLI) printDigest(s contract.State) error {
	digest, err := s.Digest()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.output, "state digest: %s\n", hex.EncodeToString(digest))
	return nil
}

// Register writes an empty state. An existing state is only replaced with -force.
func (c *CLI) Register(args []string) error {
	cmd := newCommand("register")
	force := cmd.Bool("force", false, "replace an existing state")
	if err := c.parse(cmd, args); err != nil {
		return err
	}
	if _, err := os.Stat(cmd.statePath); err == nil && !*force {
		return fmt.Errorf("state %s already exists", cmd.statePath)
	}
	s := contract.Empty()
	if err := saveState(cmd.statePath, s); err != nil {
		return err
	}
	log.Info().Str("state", cmd.statePath).Msg("contract registered")
	return c.printDigest(s)
}

// apply loads the state, applies a and saves the result.
func (c *CLI) apply(path string, a contract.Action) error {
	s, err := loadState(path)
	if err != nil {
		return err
	}
	next, out, err := contract.Apply(c.rand, s, a)
	if err != nil {
		return err
	}
	if err = saveState(path, next); err != nil {
		return err
	}
	log.Info().Stringer("action", out.Kind).Str("state", path).Msg("action applied")
	fmt.Fprintln(c.output, out.Message)
	return c.printDigest(next)
}

// PostRoot commits the Merkle root of -interests.
func (c *CLI) PostRoot(args []string) error {
	cmd := newCommand("post-root")
	interests := cmd.String("interests", "", "comma separated answers, e.g. 1,4,2,3")
	if err := c.parse(cmd, args); err != nil {
		return err
	}
	if *interests == "" {
		return fmt.Errorf("%w: -interests", ErrMissingFlag)
	}
	items, err := c.parseAnswers(*interests)
	if err != nil {
		return err
	}
	return c.apply(cmd.statePath, contract.NewCommitRoot(items))
}

// Summary commits the digest of -interests encrypted under the key built from -p and -q.
func (c *CLI) Summary(args []string) error {
	cmd := newCommand("summary")
	interests := cmd.String("interests", "", "comma separated answers, e.g. 1,4,2,3")
	pFlag := cmd.String("p", "", "first Paillier prime, base 10")
	qFlag := cmd.String("q", "", "second Paillier prime, base 10")
	if err := c.parse(cmd, args); err != nil {
		return err
	}
	for name, v := range map[string]string{"-interests": *interests, "-p": *pFlag, "-q": *qFlag} {
		if v == "" {
			return fmt.Errorf("%w: %s", ErrMissingFlag, name)
		}
	}
	p, ok := new(big.Int).SetString(*pFlag, 10)
	if !ok {
		return fmt.Errorf("invalid prime %q", *pFlag)
	}
	q, ok := new(big.Int).SetString(*qFlag, 10)
	if !ok {
		return fmt.Errorf("invalid prime %q", *qFlag)
	}
	items, err := c.parseAnswers(*interests)
	if err != nil {
		return err
	}
	return c.apply(cmd.statePath, contract.NewCommitEncryptedSummary(p, q, items))
}

// Show prints the committed roots, the last summary digest and the state digest.
func (c *CLI) Show(args []string) error {
	cmd := newCommand("show")
	if err := c.parse(cmd, args); err != nil {
		return err
	}
	s, err := loadState(cmd.statePath)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.output, "roots: %d\n", len(s.CommittedRoots))
	for i, r := range s.CommittedRoots {
		fmt.Fprintf(c.output, "  %d: %s\n", i, r)
	}
	if s.LastSummaryDigest != nil {
		fmt.Fprintf(c.output, "last summary: %s\n", hex.EncodeToString(s.LastSummaryDigest))
	}
	return c.printDigest(s)
}
