package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

// run executes the CLI against file and returns stdout.
func run(t *testing.T, file string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--file", file, "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func ledgerFile(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	return filepath.Join(t.TempDir(), "inventory.json")
}

func TestCLI_AddRemoveGet(t *testing.T) {
	file := ledgerFile(t)

	out, err := run(t, file, "add", "apple", "10")
	require.NoError(t, err)
	assert.Equal(t, "apple -> 10\n", out)

	out, err = run(t, file, "remove", "apple", "3")
	require.NoError(t, err)
	assert.Equal(t, "apple -> 7\n", out)

	out, err = run(t, file, "get", "apple")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.JSONEq(t, `{"apple": 7}`, string(data))
}

func TestCLI_Errors(t *testing.T) {
	file := ledgerFile(t)
	_, err := run(t, file, "add", "apple", "5")
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "text quantity", args: []string{"add", "apple", "ten"}, want: domain.ErrTypeMismatch},
		{name: "negative add", args: []string{"add", "banana", "-2"}, want: domain.ErrInvalidQuantity},
		{name: "blank item", args: []string{"add", " ", "1"}, want: domain.ErrEmptyName},
		{name: "unknown item", args: []string{"remove", "orange", "1"}, want: domain.ErrNotFound},
		{name: "too much", args: []string{"remove", "apple", "6"}, want: domain.ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, file, tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	out, err := run(t, file, "get", "apple")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestCLI_CorruptFileIsNotOverwritten(t *testing.T) {
	file := ledgerFile(t)
	require.NoError(t, os.WriteFile(file, []byte(`{"apple": -1}`), 0o644))

	_, err := run(t, file, "add", "pear", "1")
	assert.ErrorIs(t, err, domain.ErrSchemaViolation)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, `{"apple": -1}`, string(data))
}

func TestCLI_LowAndReport(t *testing.T) {
	file := ledgerFile(t)
	require.NoError(t, os.WriteFile(file, []byte(`{"apple": 7, "banana": 2}`), 0o644))

	out, err := run(t, file, "low")
	require.NoError(t, err)
	assert.Equal(t, "banana\n", out)

	out, err = run(t, file, "low", "--threshold", "10")
	require.NoError(t, err)
	assert.Equal(t, "apple\nbanana\n", out)

	out, err = run(t, file, "report")
	require.NoError(t, err)
	assert.Equal(t, "Items Report\napple -> 7\nbanana -> 2\n", out)

	out, err = run(t, file, "report", "--table")
	require.NoError(t, err)
	assert.Contains(t, out, "Items Report")
	assert.Contains(t, out, "banana")
}

func TestRunDemo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	var out bytes.Buffer

	require.NoError(t, RunDemo(context.Background(), &out, path))

	text := out.String()
	assert.Contains(t, text, "Error: invalid quantity: cannot add negative quantity (-2) for item 'banana'")
	assert.Contains(t, text, "Error: type mismatch")
	assert.Contains(t, text, "Error: item not found: item 'orange' not found in inventory")
	assert.Contains(t, text, "Apple stock: 7\n")
	assert.Contains(t, text, "Low items: []\n")
	assert.Contains(t, text, "Items Report\napple -> 7\n")
	assert.Equal(t, 2, strings.Count(text, " of apple"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"apple": 7}`, string(data))
}

func TestCLI_HistoryAndMirrorNeedBackends(t *testing.T) {
	file := ledgerFile(t)
	_, err := run(t, file, "add", "apple", "5")
	require.NoError(t, err)

	_, err = run(t, file, "history", "apple")
	assert.ErrorIs(t, err, errNoJournal)

	_, err = run(t, file, "get", "--mirror", "apple")
	assert.ErrorIs(t, err, errNoRedis)

	_, err = run(t, file, "history", " ")
	assert.ErrorIs(t, err, domain.ErrEmptyName)
}

func TestCLI_RejectsOversizedQuantity(t *testing.T) {
	file := ledgerFile(t)

	_, err := run(t, file, "add", "apple", "1e30000000")
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)

	_, err = os.Stat(file)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
