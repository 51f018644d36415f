package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFmt(t *testing.T) {
	tests := []struct {
		note  string
		stdin string
		args  []string
		want  string
	}{
		{
			note:  "pretty",
			stdin: `{"a":1}`,
			want:  "{\n  \"a\": 1.000000\n}\n",
		},
		{
			note:  "compact sorted shortest",
			stdin: `{"b": 1, "a": [true, "x\u00e9"]}`,
			args:  []string{"--compact", "--sort-keys", "--number-format", "shortest"},
			want:  "{\"a\":[true,\"xé\"],\"b\":1}\n",
		},
		{
			note:  "escaping",
			stdin: `["a\"b\n"]`,
			args:  []string{"--compact"},
			want:  `["a\"b\n"]` + "\n",
		},
		{
			note:  "raw strings",
			stdin: `["a\"b"]`,
			args:  []string{"--compact", "--raw-strings"},
			want:  `["a"b"]` + "\n",
		},
		{
			note:  "yaml input",
			stdin: "b:\n  - x\na: 1.5\n",
			args:  []string{"--input-format", "yaml", "--compact", "--sort-keys", "--number-format", "shortest"},
			want:  `{"a":1.5,"b":["x"]}` + "\n",
		},
		{
			note:  "rego output",
			stdin: `{"a": [1, null]}`,
			args:  []string{"-o", "rego"},
			want:  `{"a": [1, null]}` + "\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			out, _, err := run(t, tc.stdin, append([]string{"fmt"}, tc.args...)...)
			require.NoError(t, err)
			require.Equal(t, tc.want, out)
		})
	}
}

func TestFmtFilesInOrder(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"1.json": "[1]",
		"2.json": "[2]",
		"3.json": "[3]",
	})

	args := []string{"fmt", "--compact", "--number-format", "shortest", "--workers", "3"}
	for _, name := range []string{"3.json", "1.json", "2.json"} {
		args = append(args, filepath.Join(dir, name))
	}
	out, _, err := run(t, "", args...)
	require.NoError(t, err)
	require.Equal(t, "[3]\n[1]\n[2]\n", out)
}

func TestFmtConfigDefaults(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"config.yaml": "render:\n  compact: true\n  sort_keys: true\n  number_format: shortest\n",
	})
	config := filepath.Join(dir, "config.yaml")

	out, _, err := run(t, `{"b": 2, "a": 1}`, "fmt", "--config", config)
	require.NoError(t, err)
	require.Equal(t, `{"a":1,"b":2}`+"\n", out)

	out, _, err = run(t, `{"a": 1}`, "fmt", "--config", config, "--compact=false")
	require.NoError(t, err)
	require.Equal(t, "{\n  \"a\": 1\n}\n", out)
}

func TestFmtCheck(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"good.json": "{\n  \"a\": 1.000000\n}\n",
		"bad.json":  `{"a": 1}`,
	})
	good, bad := filepath.Join(dir, "good.json"), filepath.Join(dir, "bad.json")

	out, _, err := run(t, "", "fmt", "--check", good)
	require.NoError(t, err)
	require.Empty(t, out)

	out, stderr, err := run(t, "", "fmt", "--check", good, bad)
	var exit *ExitError
	require.True(t, errors.As(err, &exit), "got %v", err)
	require.Equal(t, 2, exit.Exit)
	require.Equal(t, bad+"\n", out)
	require.NotContains(t, stderr, "exit status")
}

func TestFmtCheckReportsErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"broken.json": `{"a": }`,
	})
	broken := filepath.Join(dir, "broken.json")

	out, stderr, err := run(t, "", "fmt", "--check", broken)
	require.Error(t, err)
	var exit *ExitError
	require.False(t, errors.As(err, &exit), "syntax error reported as unformatted file")
	require.Empty(t, out)
	require.Contains(t, stderr, broken+`:1:7: unexpected '}'`)

	_, stderr, err = run(t, "", "fmt", "--check", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	require.Contains(t, stderr, "missing.json")
}

func TestFmtErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"bad.json": "[1,\n  nul]",
	})

	_, _, err := run(t, "", "fmt", filepath.Join(dir, "bad.json"))
	require.ErrorContains(t, err, `bad.json:2:3: invalid literal "nul"`)

	_, _, err = run(t, "[[[]]]", "fmt", "--max-depth", "2")
	require.ErrorContains(t, err, "exceeded max depth 2")

	_, _, err = run(t, "{}", "fmt", "--number-format", "octal")
	require.ErrorContains(t, err, "unknown number format")

	_, _, err = run(t, "{}", "fmt", "--output", "xml")
	require.Error(t, err)
}
