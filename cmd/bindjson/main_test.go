package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCheck(t *testing.T) {
	r := require.New(t)

	out, _, err := run(t, `{"a":[1,2,{"b":null}]}`, "check")
	r.NoError(err)
	r.Equal("<stdin>: ok\n", out)

	out, _, err = run(t, `{"a":}`, "check")
	r.ErrorIs(err, errInvalid)
	r.Equal("<stdin>:5: parse_error at /a: unexpected '}', expected value\n", out)

	out, _, err = run(t, "a: [1, 2]\n", "check", "--from", "yaml")
	r.NoError(err)
	r.Equal("<stdin>: ok\n", out)
}

func TestCheck_Files(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	r.NoError(os.WriteFile(good, []byte(`{"ok":true}`), 0o600))
	r.NoError(os.WriteFile(bad, []byte(`[1,2`), 0o600))

	out, _, err := run(t, "", "check", good, bad)
	r.ErrorIs(err, errInvalid)
	r.Contains(out, good+": ok\n")
	r.Contains(out, bad+":4: truncated at /:")

	_, _, err = run(t, "", "check", filepath.Join(dir, "missing.json"))
	r.Error(err)
	r.NotErrorIs(err, errInvalid)
}

func TestCheck_MaxDepthFromConfig(t *testing.T) {
	r := require.New(t)
	cfg := filepath.Join(t.TempDir(), "settings.yaml")
	r.NoError(os.WriteFile(cfg, []byte("maxDepth: 2\n"), 0o600))

	_, _, err := run(t, `[[1]]`, "--config", cfg, "check")
	r.NoError(err)

	out, _, err := run(t, `[[[1]]]`, "--config", cfg, "check")
	r.ErrorIs(err, errInvalid)
	r.Contains(out, "parse_error")

	_, _, err = run(t, `{}`, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "check")
	r.Error(err)
}

func TestFmt(t *testing.T) {
	r := require.New(t)

	out, _, err := run(t, `{"b":1,"a":[true,null]}`, "fmt")
	r.NoError(err)
	r.Equal("{\n  \"a\": [\n    true,\n    null\n  ],\n  \"b\": 1\n}\n", out)

	out, _, err = run(t, `{"b": 1, "a": "x"}`, "fmt", "--compact")
	r.NoError(err)
	r.Equal(`{"a":"x","b":1}`+"\n", out)

	out, _, err = run(t, `{"b":1.50,"a":1e2}`, "fmt", "--canonical")
	r.NoError(err)
	r.Equal(`{"a":100,"b":1.5}`+"\n", out)

	_, _, err = run(t, `{}`, "fmt", "--compact", "--canonical")
	r.Error(err)
}

func TestTranscode(t *testing.T) {
	r := require.New(t)

	out, _, err := run(t, "name: ada\nlangs: [go, c]\n", "transcode", "--from", "yaml")
	r.NoError(err)
	r.Equal(`{"langs":["go","c"],"name":"ada"}`+"\n", out)

	cbor, _, err := run(t, `{"x":[1,"z"]}`, "transcode", "--to", "cbor")
	r.NoError(err)

	out, _, err = run(t, cbor, "transcode", "--from", "cbor", "--to", "yaml")
	r.NoError(err)
	r.Equal("x:\n    - 1\n    - z\n", out)

	_, _, err = run(t, `{}`, "transcode", "--to", "toml")
	r.Error(err)
}

func TestLogging(t *testing.T) {
	r := require.New(t)

	_, logs, err := run(t, `{}`, "--loglevel", "debug", "--logformat", "json", "check")
	r.NoError(err)
	r.Contains(logs, `"msg":"binding table built"`)

	_, _, err = run(t, `{}`, "--loglevel", "loud", "check")
	r.Error(err)

	_, _, err = run(t, `{}`, "--logformat", "xml", "check")
	r.Error(err)
}
