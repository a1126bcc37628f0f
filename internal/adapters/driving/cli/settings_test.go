package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestSettingsShowCmd(t *testing.T) {
	setupTestServices(t)

	out, err := run(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[RAG]")
	assert.Contains(t, out, "Chunk size: 500")
	assert.Contains(t, out, "Ranker: Lexical (token overlap)")
	assert.Contains(t, out, "Provider: OpenAI (cloud)")
	assert.Contains(t, out, "API Key: (not set)")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsCmd_DefaultsToShow(t *testing.T) {
	setupTestServices(t)

	out, err := run(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
}

func TestSettingsSetCmd(t *testing.T) {
	setupTestServices(t)

	out, err := run(t, "settings", "set", "rag.top_k", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "rag.top_k = 5")

	settings, err := settingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, settings.RAG.TopK)
}

func TestSettingsSetCmd_MasksAPIKey(t *testing.T) {
	setupTestServices(t)

	out, err := run(t, "settings", "set", "provider.api_key", "sk-1234567890abcd")

	require.NoError(t, err)
	assert.Contains(t, out, "provider.api_key = sk-1...abcd")
	assert.NotContains(t, out, "567890")
}

func TestSettingsSetCmd_Invalid(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "settings", "set", "rag.top_k", "lots")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = run(t, "settings", "set", "no.such.key", "1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsSetCmd_WrongArgCount(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "settings", "set", "rag.top_k")
	assert.Error(t, err)
}

func TestSettingsKeysCmd(t *testing.T) {
	setupTestServices(t)

	out, err := run(t, "settings", "keys")

	require.NoError(t, err)
	assert.Contains(t, out, "rag.chunk_size\n")
	assert.Contains(t, out, "ingest.on_start\n")
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefwxyz"))
}

func TestMaskURL(t *testing.T) {
	assert.Equal(t, "postgres://rag:xxxxx@db:5432/rag", maskURL("postgres://rag:secret@db:5432/rag"))
	assert.Equal(t, "postgres://db/rag", maskURL("postgres://db/rag"))
}
