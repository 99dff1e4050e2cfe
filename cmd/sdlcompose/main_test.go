package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, fn func() error) (stdout, stderr string, err error) {
	t.Helper()
	oldOut, oldErr := os.Stdout, os.Stderr
	defer func() {
		os.Stdout, os.Stderr = oldOut, oldErr
	}()

	outR, outW, _ := os.Pipe()
	errR, errW, _ := os.Pipe()
	os.Stdout, os.Stderr = outW, errW

	doneOut := make(chan struct{})
	var bufOut bytes.Buffer
	go func() { io.Copy(&bufOut, outR); close(doneOut) }()

	doneErr := make(chan struct{})
	var bufErr bytes.Buffer
	go func() { io.Copy(&bufErr, errR); close(doneErr) }()

	err = fn()
	outW.Close()
	errW.Close()
	<-doneOut
	<-doneErr
	stdout, stderr = bufOut.String(), bufErr.String()
	return
}

func TestHelp(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"help", "compose"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "compose FLAGS")

	_, _, err = captureOutput(t, func() error {
		return run([]string{"help", "nope"})
	})
	require.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	_, stderr, err := captureOutput(t, func() error {
		return run([]string{"frobnicate"})
	})
	require.EqualError(t, err, `unknown command "frobnicate"`)
	require.Contains(t, stderr, "COMMANDS:")
}

func TestCompose(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"compose", "-graphql.root", filepath.Join("testdata", "ok")})
	})
	require.NoError(t, err)
	require.Contains(t, out, "type Query {\n  me: User\n  user(id: ID!): User\n}\n")
	require.NotContains(t, out, "${")
	require.NotContains(t, out, "\n\n")
}

func TestCompose_Files(t *testing.T) {
	dir := t.TempDir()
	outFile := filepath.Join(dir, "schema.graphql")
	bindingsFile := filepath.Join(dir, "resolvers.json")
	_, _, err := captureOutput(t, func() error {
		return run([]string{"compose", "-graphql.root", filepath.Join("testdata", "ok"),
			"-validate", "-out", outFile, "-bindings", bindingsFile})
	})
	require.NoError(t, err)

	sdl, err := os.ReadFile(outFile)
	require.NoError(t, err)
	require.Contains(t, string(sdl), "extend type User {")

	data, err := os.ReadFile(bindingsFile)
	require.NoError(t, err)
	var bindings map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &bindings))
	require.Equal(t, map[string]map[string]string{
		"Query": {"me": "users.me", "user": "users.byID"},
		"Post":  {"author": "posts.author"},
		"User":  {"posts": "posts.byUser"},
	}, bindings)
}

func TestCompose_Render(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"compose", "-graphql.root", filepath.Join("testdata", "ok"), "-render"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "type User {\n  id: ID!\n  name: String!\n  posts: [Post!]!\n}\n")
	require.NotContains(t, out, "extend type")
}

func TestCheck(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"check", "-graphql.root", filepath.Join("testdata", "ok")})
	})
	require.NoError(t, err)
	require.Equal(t, "ok: 2 file(s), 3 type(s), 4 binding(s)\n", out)
}

func TestCheck_ReportsLocatedProblems(t *testing.T) {
	_, stderr, err := captureOutput(t, func() error {
		return run([]string{"check", "-graphql.root", filepath.Join("testdata", "broken")})
	})
	require.EqualError(t, err, "check failed with 1 problem(s)")
	require.Contains(t, stderr, "schema.graphql:7:3: ")
}
