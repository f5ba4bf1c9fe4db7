package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/order-assistant/internal/common"
	"github.com/joseph-ayodele/order-assistant/internal/spreadsheet/sheettest"
)

type env struct {
	dir      string
	audioDir string
}

// setupEnv points every storage location at a temp dir and the fallback
// speech provider at a local server.
func setupEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	tts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ID3"))
	}))
	t.Cleanup(tts.Close)

	e := env{dir: dir, audioDir: filepath.Join(dir, "audio")}
	t.Setenv("DB_URL", "file:"+filepath.Join(dir, "cli.db"))
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("AUDIO_DIR", e.audioDir)
	t.Setenv("GOOGLE_TTS_URL", tts.URL)
	t.Setenv("GOOGLE_TTS_RPS", "1000")
	t.Setenv("YANDEX_TTS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	return e
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_ImportAnnounceExport(t *testing.T) {
	e := setupEnv(t)
	inbox := filepath.Join(e.dir, "inbox")
	require.NoError(t, os.MkdirAll(inbox, 0o755))
	sheettest.Write(t, inbox, "a.xlsx", "101", sheettest.Item{Name: "Молоко", Quantity: 2})
	sheettest.Write(t, inbox, "b.xlsx", "102", sheettest.Item{Name: "Хлеб", Quantity: 1})

	out, err := run(t, "import", inbox, "--prerender")
	require.NoError(t, err)
	assert.Contains(t, out, "imported=2")
	assert.FileExists(t, filepath.Join(e.audioDir, "order_101.mp3"))
	assert.FileExists(t, filepath.Join(e.audioDir, "order_102.mp3"))

	out, err = run(t, "import", inbox)
	require.NoError(t, err)
	assert.Contains(t, out, "duplicates=2")

	out, err = run(t, "announce", "order", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "order_101.mp3")
	assert.Contains(t, out, "google")

	xlsx := filepath.Join(e.dir, "sheet.xlsx")
	out, err = run(t, "export", "1", "-o", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, xlsx)
	assert.FileExists(t, xlsx)

	_, err = run(t, "announce", "item", "abc")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = run(t, "export", "99")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCLI_ImportSingleFileFailure(t *testing.T) {
	e := setupEnv(t)
	bad := filepath.Join(e.dir, "bad.xlsx")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o644))

	out, err := run(t, "import", bad)
	require.Error(t, err)
	assert.Contains(t, out, "error: Ошибка в файле")
}

func TestCLI_Filters(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "filters", "add", "пакет")
	require.NoError(t, err)
	assert.Contains(t, out, "пакет")

	_, err = run(t, "filters", "add", "пакет")
	assert.ErrorIs(t, err, common.ErrConflict)

	out, err = run(t, "filters", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "пакет")

	_, err = run(t, "filters", "rm", "1")
	require.NoError(t, err)
	_, err = run(t, "filters", "rm", "1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCLI_DBCheck(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "db", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "DB health: OK (sqlite3)")
}

func TestCLI_InvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("TTS_WORKERS", "0")
	_, err := run(t, "filters", "list")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
