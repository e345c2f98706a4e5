package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetup-psi/meetup/internal/config"
	"github.com/meetup-psi/meetup/internal/test"
	"github.com/meetup-psi/meetup/pkg/psi"
)

func newTestCLI() (*CLI, *bytes.Buffer) {
	var out bytes.Buffer
	return NewCLI(&out), &out
}

func TestRegisterPostRootShow(t *testing.T) {
	state := filepath.Join(t.TempDir(), "meetup.state")
	cli, out := newTestCLI()

	require.NoError(t, cli.Register([]string{"-state", state}))
	assert.Contains(t, out.String(), "state digest: ")
	assert.Error(t, cli.Register([]string{"-state", state}), "existing state must not be replaced")
	require.NoError(t, cli.Register([]string{"-state", state, "-force"}))

	out.Reset()
	require.NoError(t, cli.PostRoot([]string{"-state", state, "-interests", "1,4,2,3"}))
	assert.Contains(t, out.String(), "new value: c6404bd648f1cae131eddd325a1e29fb\n")

	out.Reset()
	require.NoError(t, cli.PostRoot([]string{"-state", state, "-interests", "1, 4, 3, 3"}))
	assert.Contains(t, out.String(), "new value: c6404bd648f1cae131eddd325a1e29fb e63009c40e83b5ca83c30b7e8da934a6\n")

	out.Reset()
	require.NoError(t, cli.Show([]string{"-state", state}))
	assert.Contains(t, out.String(), "roots: 2\n")
	assert.Contains(t, out.String(), "  1: e63009c40e83b5ca83c30b7e8da934a6\n")
	assert.NotContains(t, out.String(), "last summary")
}

func TestSummary(t *testing.T) {
	state := filepath.Join(t.TempDir(), "meetup.state")
	cli, out := newTestCLI()
	require.NoError(t, cli.Register([]string{"-state", state}))

	p, q := test.PaillierPrimes()
	out.Reset()
	require.NoError(t, cli.Summary([]string{"-state", state, "-p", p.String(), "-q", q.String(), "-interests", "1,4,2,3"}))
	assert.Contains(t, out.String(), "new summary: ")

	out.Reset()
	require.NoError(t, cli.Show([]string{"-state", state}))
	assert.Contains(t, out.String(), "roots: 0\n")
	assert.Contains(t, out.String(), "last summary: ")

	err := cli.Summary([]string{"-state", state, "-p", "17", "-q", "17", "-interests", "1"})
	assert.Error(t, err)
	err = cli.Summary([]string{"-state", state, "-p", "17", "-interests", "1"})
	assert.ErrorIs(t, err, ErrMissingFlag)
}

func TestPostRootErrors(t *testing.T) {
	state := filepath.Join(t.TempDir(), "meetup.state")
	cli, _ := newTestCLI()

	assert.Error(t, cli.PostRoot([]string{"-state", state, "-interests", "1"}), "state was never registered")
	require.NoError(t, cli.Register([]string{"-state", state}))
	assert.ErrorIs(t, cli.PostRoot([]string{"-state", state}), ErrMissingFlag)
	assert.Error(t, cli.PostRoot([]string{"-state", state, "-interests", "1,x"}))
	assert.Error(t, cli.PostRoot([]string{"-state", state, "-interests", "1,5"}), "answers must be below the base")
	assert.Error(t, cli.PostRoot([]string{"-state", state, "-interests", ","}))

	before, err := os.ReadFile(state)
	require.NoError(t, err)
	assert.Error(t, cli.PostRoot([]string{"-state", state, "-interests", "9"}))
	after, err := os.ReadFile(state)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	state := filepath.Join(dir, "from-config.state")
	configPath := filepath.Join(dir, "meetup.toml")
	content := "[token]\nbase = 10\n\n[storage]\nstate_path = \"" + filepath.ToSlash(state) + "\"\n\n[log]\nlevel = \"warn\"\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	cli, out := newTestCLI()
	require.NoError(t, cli.Register([]string{"-config", configPath}))
	_, err := os.Stat(state)
	require.NoError(t, err)

	// 7 is a valid answer with base 10
	require.NoError(t, cli.PostRoot([]string{"-config", configPath, "-interests", "7,9"}))
	assert.Contains(t, out.String(), "new value: ")

	assert.Error(t, cli.Register([]string{"-config", filepath.Join(dir, "missing.toml")}))
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"paillier", []string{"-bits", "512", "-alice", "1,4,2,3", "-bob", "1,4,2,3"}, "matches: [0 1 2 3] of 4\n"},
		{"paillier one differs", []string{"-bits", "512", "-alice", "1,4,3,3", "-bob", "1,4,2,3"}, "matches: [0 1 3] of 4\n"},
		{"paillier unmasked", []string{"-bits", "512", "-no-mask", "-alice", "0,1", "-bob", "2,1"}, "matches: [1] of 2\n"},
		{"gates", []string{"-gates", "-backend", "clear", "-alice", "1,4,2,3", "-bob", "1,4,3,3"}, "matches: [0 1 3] of 4\n"},
		{"gates none", []string{"-gates", "-backend", "clear", "-alice", "0,0", "-bob", "1,1"}, "matches: [] of 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := newTestCLI()
			require.NoError(t, cli.Match(tt.args))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestMatchErrors(t *testing.T) {
	cli, _ := newTestCLI()
	assert.ErrorIs(t, cli.Match([]string{"-bob", "1"}), ErrMissingFlag)
	assert.ErrorIs(t, cli.Match([]string{"-alice", "1"}), ErrMissingFlag)

	err := cli.Match([]string{"-bits", "512", "-alice", "1,2,3", "-bob", "1,2"})
	assert.ErrorIs(t, err, psi.ErrAlignment)

	err = cli.Match([]string{"-gates", "-backend", "clear", "-alice", "1,2", "-bob", "1"})
	assert.ErrorIs(t, err, psi.ErrAlignment)

	err = cli.Match([]string{"-gates", "-backend", "lattice", "-alice", "1", "-bob", "1"})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestMatchEncryptedGates(t *testing.T) {
	if testing.Short() {
		t.Skip("bootstraps every gate of the circuit")
	}
	cli, out := newTestCLI()
	require.NoError(t, cli.Match([]string{"-gates", "-alice", "1,2", "-bob", "1,3"}))
	assert.Equal(t, "matches: [0] of 2\n", out.String())
}

func TestParseAnswers(t *testing.T) {
	cli, _ := newTestCLI()
	items, err := cli.parseAnswers(" 1, 4 ,2,3,")
	require.NoError(t, err)
	var got []string
	for _, it := range items {
		got = append(got, it.String())
	}
	assert.Equal(t, "1 9 12 18", strings.Join(got, " "))
}
