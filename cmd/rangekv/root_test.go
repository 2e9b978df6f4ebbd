package main_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	rangekv "github.com/NethermindEth/rangekv/cmd/rangekv"
	"github.com/NethermindEth/rangekv/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	cmd := rangekv.NewCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--db-path", dbPath, "--log-level", "error", "--colour=false", "--cache-size", "8"))
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, dbPath string, args ...string) string {
	t.Helper()

	out, err := execute(t, dbPath, args...)
	require.NoError(t, err, "rangekv %v", args)
	return out
}

func seed(t *testing.T, dbPath string, keys ...string) {
	t.Helper()
	for _, k := range keys {
		mustExecute(t, dbPath, "put", k, "v"+k)
	}
}

func TestPointCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store")

	mustExecute(t, dbPath, "put", "alpha", "one")
	assert.Equal(t, "one\n", mustExecute(t, dbPath, "get", "alpha"))
	assert.Equal(t, "true\n", mustExecute(t, dbPath, "has", "alpha"))

	mustExecute(t, dbPath, "del", "alpha")
	assert.Equal(t, "false\n", mustExecute(t, dbPath, "has", "alpha"))

	_, err := execute(t, dbPath, "get", "alpha")
	require.ErrorContains(t, err, "key not found")

	_, err = execute(t, dbPath, "get")
	require.Error(t, err)
}

func TestHex(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store")

	mustExecute(t, dbPath, "put", "00ff", "cafe", "--hex")
	assert.Equal(t, "cafe\n", mustExecute(t, dbPath, "get", "00ff", "--hex"))
	assert.Equal(t, "\"\\xca\\xfe\"\n", mustExecute(t, dbPath, "get", "\x00\xff"))

	_, err := execute(t, dbPath, "get", "zz", "--hex")
	require.ErrorContains(t, err, "decode hex")
}

func TestScan(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store")
	seed(t, dbPath, "a", "b", "c", "d", "e")

	tests := map[string]struct {
		args []string
		want string
	}{
		"everything": {
			args: nil,
			want: "a\tva\nb\tvb\nc\tvc\nd\tvd\ne\tve\n",
		},
		"bounded": {
			args: []string{"--from", "b", "--to", "d"},
			want: "b\tvb\nc\tvc\nd\tvd\n",
		},
		"reverse bounded": {
			args: []string{"--from", "d", "--to", "b", "--reverse"},
			want: "d\tvd\nc\tvc\nb\tvb\n",
		},
		"limit": {
			args: []string{"--limit", "2", "--reverse"},
			want: "e\tve\nd\tvd\n",
		},
		"snapshot": {
			args: []string{"--snapshot", "--from", "dd"},
			want: "e\tve\n",
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			args := append([]string{"scan", "--format", "plain"}, test.args...)
			assert.Equal(t, test.want, mustExecute(t, dbPath, args...))
		})
	}

	t.Run("table", func(t *testing.T) {
		out := mustExecute(t, dbPath, "scan", "--to", "b")
		assert.Contains(t, out, "KEY")
		assert.Contains(t, out, "| a ")
		assert.Contains(t, out, "| va ")
		assert.Contains(t, out, "ENTRIES")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := execute(t, dbPath, "scan", "--format", "xml")
		require.ErrorContains(t, err, "unknown --format")
	})

	assert.Equal(t, "3\n", mustExecute(t, dbPath, "count", "--from", "c"))
	assert.Equal(t, "2\n", mustExecute(t, dbPath, "count", "--limit", "2", "--snapshot"))
}

func TestApply(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store")
	seed(t, dbPath, "a", "b")

	good := filepath.Join(t.TempDir(), "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
- op: put
  key: c
  value: vc
- op: delete
  key: a
`), 0o600))
	assert.Equal(t, "applied 2 operations\n", mustExecute(t, dbPath, "apply", good))
	assert.Equal(t, "b\tvb\nc\tvc\n", mustExecute(t, dbPath, "scan", "--format", "plain"))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
- op: delete
  key: b
- op: put
  key: d
`), 0o600))
	_, err := execute(t, dbPath, "apply", bad)
	require.ErrorContains(t, err, "operation 1")
	assert.Equal(t, "b\tvb\nc\tvc\n", mustExecute(t, dbPath, "scan", "--format", "plain"), "nothing applied")

	unknown := filepath.Join(t.TempDir(), "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("- op: merge\n  key: b\n"), 0o600))
	_, err = execute(t, dbPath, "apply", unknown)
	require.Error(t, err)
}

func TestExportImport(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	seed(t, src, "a", "b", "c", "d")

	file := filepath.Join(t.TempDir(), "range.cbor")
	mustExecute(t, src, "export", file, "--from", "b", "--to", "c")

	dst := filepath.Join(t.TempDir(), "dst")
	assert.Equal(t, "imported 2 entries\n", mustExecute(t, dst, "import", file, "--batch-size", "1"))
	assert.Equal(t, "b\tvb\nc\tvc\n", mustExecute(t, dst, "scan", "--format", "plain"))

	notDump := filepath.Join(t.TempDir(), "not-a-dump")
	require.NoError(t, os.WriteFile(notDump, []byte("hello"), 0o600))
	_, err := execute(t, dst, "import", notDump)
	require.Error(t, err)
}

func TestMaintenance(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store")
	seed(t, dbPath, "a", "b", "c")

	mustExecute(t, dbPath, "flush")
	mustExecute(t, dbPath, "flush", "--wait=false")
	mustExecute(t, dbPath, "compact")
	mustExecute(t, dbPath, "compact", "--from", "a", "--to", "z")

	_, err := execute(t, dbPath, "compact", "--from", "a")
	require.ErrorIs(t, err, db.ErrInvalidArgument)
	_, err = execute(t, dbPath, "compact", "--from", "z", "--to", "a")
	require.ErrorIs(t, err, db.ErrInvalidArgument)

	out := mustExecute(t, dbPath, "stats")
	assert.Contains(t, out, "L0")
	assert.Contains(t, out, "L6")
	assert.Contains(t, out, "Disk usage")
}

func TestOpenFlags(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "store")

	_, err := execute(t, dbPath, "has", "a", "--create-if-missing=false")
	require.ErrorIs(t, err, db.ErrInvalidArgument)

	mustExecute(t, dbPath, "put", "a", "1")
	_, err = execute(t, dbPath, "has", "a", "--error-if-exists")
	require.ErrorIs(t, err, db.ErrInvalidArgument)

	_, err = execute(t, dbPath, "has", "a", "--error-if-exists", "--create-if-missing=false")
	require.ErrorContains(t, err, "invalid config")

	assert.Equal(t, "true\n", mustExecute(t, dbPath, "has", "a", "--create-if-missing=false"))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "store")
	cfg := filepath.Join(dir, "rangekv.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("db-path: "+dbPath+"\nlog-level: error\ncolour: false\n"), 0o600))

	cmd := rangekv.NewCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"put", "k", "v", "--config", cfg})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "v\n", mustExecute(t, dbPath, "get", "k"))

	cmd = rangekv.NewCmd()
	cmd.SetArgs([]string{"get", "k", "--config", filepath.Join(dir, "missing.yaml")})
	require.Error(t, cmd.Execute())
}
