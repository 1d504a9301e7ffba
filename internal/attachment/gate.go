// Package attachment enforces the file-type rule for bill attachments.
package attachment

import (
	"path/filepath"
	"strings"
)

// RejectionMessage is the user-facing text shown when a file fails the gate.
// Displayed verbatim by the UI layer.
const RejectionMessage = "Type de fichier non valide. Veuillez télécharger un fichier jpg, jpeg ou png"

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Gate validates attachment file names before upload.
type Gate struct{}

// NewGate creates a new attachment gate
func NewGate() *Gate {
	return &Gate{}
}

// Validate returns true iff the file name carries a jpg, jpeg or png
// extension, compared case-insensitively. Files without an extension fail.
func (g *Gate) Validate(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	return allowedExtensions[ext]
}
