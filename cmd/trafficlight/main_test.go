package main

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/moore"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestTableCmd_RoundTrips(t *testing.T) {
	out, _, err := execute(t, "table")
	require.NoError(t, err)

	table, entry, err := moore.LoadTable(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, moore.NorthOpen, entry)
	assert.Equal(t, moore.DefaultTable().States(), table.States())
}

func TestCheckCmd(t *testing.T) {
	out, _, err := execute(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "entry: NorthOpen")
	assert.Contains(t, out, "live: true")
}

func TestCheckCmd_TrapTable(t *testing.T) {
	rows := moore.DefaultTable().States()
	for i := range rows[moore.PedOpen].Next {
		rows[moore.PedOpen].Next[i] = moore.PedOpen
	}
	table, err := moore.NewTable(rows)
	require.NoError(t, err)
	data, err := moore.MarshalTable(table, moore.NorthOpen)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "trap.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	out, _, err := execute(t, "check", "--table", path)

	assert.ErrorIs(t, err, errNotLive)
	assert.Contains(t, out, "traps: WO")
}

func TestDotCmd(t *testing.T) {
	out, _, err := execute(t, "dot")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph StateMachine {"))
	assert.Contains(t, out, "WH3")

	path := filepath.Join(t.TempDir(), "table.dot")
	_, _, err = execute(t, "dot", "-o", path, "--short=false")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "PedFlash3Red")
}

func TestRunCmd_Sim(t *testing.T) {
	out, logs, err := execute(t, "run", "--steps", "7", "--tick", "1us", "--script", "4,4,1", "--log-format", "json")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "N (..G)")
	assert.Contains(t, lines[2], "[  WALK   ]")
	assert.Contains(t, out, "STATE")
	assert.Regexp(t, `steps\s+7`, out)
	assert.Contains(t, logs, `"msg":"controller stopped"`)
}

func TestRunCmd_Entry(t *testing.T) {
	out, _, err := execute(t, "run", "-n", "1", "--tick", "1us", "-e", "EO", "-q")
	require.NoError(t, err)
	assert.NotContains(t, out, "E (")
	assert.Regexp(t, `EO\s+1\s+300`, out)
}

func TestRunCmd_Errors(t *testing.T) {
	_, _, err := execute(t, "run", "-e", "SouthOpen")
	assert.True(t, moore.IsStateError(err))

	_, _, err = execute(t, "run", "--backend", "carrier-pigeon")
	assert.True(t, moore.IsConfigurationError(err))

	_, _, err = execute(t, "run", "--script", "300")
	assert.Error(t, err)

	_, _, err = execute(t, "check", "--log-level", "loud")
	assert.True(t, moore.IsConfigurationError(err))
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trafficlight.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entry: EO\nlog: {level: warn}\n"), 0o600))

	out, _, err := execute(t, "check", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "entry: EastOpen")
}

type stuckCloser struct{ err error }

func (c stuckCloser) Close() error { return c.err }

func TestCloseLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	closeLogged(logger, "gpio", stuckCloser{})()
	assert.Empty(t, buf.String())

	closeLogged(logger, "gpio", stuckCloser{err: errors.New("line 17 busy")})()
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "backend=gpio")
	assert.Contains(t, buf.String(), `error="line 17 busy"`)
}
