package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestHashPasswordFromArgument(t *testing.T) {
	out, err := runRoot(t, "", "hash-password", "correct-horse")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct-horse")))
}

func TestHashPasswordFromStdin(t *testing.T) {
	out, err := runRoot(t, "battery-staple\n", "hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("battery-staple")))
}

func TestHashPasswordRejectsShortPassword(t *testing.T) {
	_, err := runRoot(t, "", "hash-password", "short")
	assert.Error(t, err)
}

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["hash-password"])
}
