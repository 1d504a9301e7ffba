package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcseguramedina/billed-server/internal/models"
)

func TestParse(t *testing.T) {
	t.Run("decodes employee blob", func(t *testing.T) {
		identity, err := Parse([]byte(`{"type":"Employee","email":"employee@test.tld"}`))
		require.NoError(t, err)
		assert.Equal(t, models.UserTypeEmployee, identity.Type)
		assert.Equal(t, "employee@test.tld", identity.Email)
	})

	t.Run("rejects malformed blob", func(t *testing.T) {
		_, err := Parse([]byte(`{not json`))
		assert.Error(t, err)
	})

	t.Run("rejects blob without email", func(t *testing.T) {
		_, err := Parse([]byte(`{"type":"Employee"}`))
		assert.Error(t, err)
	})
}

func TestFileProvider_Current(t *testing.T) {
	t.Run("reads identity from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"type":"Admin","email":"admin@test.tld"}`), 0644))

		identity, err := NewFileProvider(path).Current()
		require.NoError(t, err)
		assert.Equal(t, models.UserTypeAdmin, identity.Type)
		assert.Equal(t, "admin@test.tld", identity.Email)
	})

	t.Run("fails on missing file", func(t *testing.T) {
		_, err := NewFileProvider(filepath.Join(t.TempDir(), "absent.json")).Current()
		assert.Error(t, err)
	})
}
