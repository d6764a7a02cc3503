package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const base = "Ticker,Name,Weight\nAAPL,Apple,50\nMSFT,Microsoft,30\nXOM,Exxon,20\n"
const target = "Symbol,Security Name,% of Net Assets\nAAPL,Apple,55\nMSFT,Microsoft,30\nNVDA,Nvidia,15\n"

func TestParseCmd(t *testing.T) {
	path := writeTemp(t, "spy.csv", base)
	out, err := run(t, "parse", path)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got["holdings"], 3)
	assert.Equal(t, "100.00", got["stats"].(map[string]interface{})["totalWeight"])
	assert.Equal(t, true, got["validation"].(map[string]interface{})["is_valid"])

	out, err = run(t, "parse", "--summary", path)
	require.NoError(t, err)
	assert.NotContains(t, out, `"holdings"`)
}

func TestParseCmd_Errors(t *testing.T) {
	_, err := run(t, "parse", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	path := writeTemp(t, "bad.csv", "Ticker,Name\nAAPL,Apple\n")
	_, err = run(t, "parse", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required columns")

	_, err = run(t, "parse")
	assert.Error(t, err)
}

func TestDiffCmd(t *testing.T) {
	b := writeTemp(t, "base.csv", base)
	tg := writeTemp(t, "target.csv", target)

	out, err := run(t, "diff", b, tg)
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	summary := got["summary"].(map[string]interface{})
	assert.EqualValues(t, 1, summary["new_count"])
	assert.EqualValues(t, 1, summary["removed_count"])
	assert.EqualValues(t, 1, summary["changed_count"])

	out, err = run(t, "diff", "--csv", b, tg)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "change_type,ticker"))
	assert.Equal(t, "new,NVDA,Nvidia,,15.0000,15.0000,", lines[1])
}
