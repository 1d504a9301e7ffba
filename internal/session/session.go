// Package session supplies the already-resolved user identity to the core.
// Identity is injected explicitly at construction; nothing here performs
// authentication.
package session

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dcseguramedina/billed-server/internal/models"
)

// Provider yields the identity of the connected user.
type Provider interface {
	Current() (models.Identity, error)
}

// FileProvider reads the identity from a stored JSON blob of the form
// {"type":"Employee","email":"employee@test.tld"}.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider backed by the given file path
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Current reads and decodes the stored identity.
func (p *FileProvider) Current() (models.Identity, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return models.Identity{}, fmt.Errorf("read session file: %w", err)
	}
	return Parse(data)
}

// Parse decodes an identity blob.
func Parse(data []byte) (models.Identity, error) {
	var identity models.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return models.Identity{}, fmt.Errorf("decode session blob: %w", err)
	}
	if identity.Email == "" {
		return models.Identity{}, fmt.Errorf("session blob has no email")
	}
	return identity, nil
}

// Static is a fixed-identity provider, used in tests and single-user
// deployments.
type Static struct {
	Identity models.Identity
}

// Current returns the fixed identity.
func (s Static) Current() (models.Identity, error) {
	return s.Identity, nil
}
