package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
)

// DefaultFilename is the manifest file name looked for in repositories.
const DefaultFilename = "vibe.json"

// Decode parses and validates a manifest document. An invalid manifest is
// rejected here and never reaches tracked state.
func Decode(data []byte) (domain.ServiceManifest, error) {
	var m domain.ServiceManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.ServiceManifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return domain.ServiceManifest{}, fmt.Errorf("invalid manifest: %w", err)
	}
	return m, nil
}

// Encode serializes a manifest with indentation, stable field ordering and
// a trailing newline, so committed files diff cleanly.
func Encode(m domain.ServiceManifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}
