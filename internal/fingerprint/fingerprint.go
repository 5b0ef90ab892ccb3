// Package fingerprint identifies a schema state by hashing its document form.
package fingerprint

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/schemadiff/schemadiff/ir"
)

// SchemaFingerprint represents a fingerprint of a schema state
type SchemaFingerprint struct {
	Schema string `json:"schema"`
	Hash   string `json:"hash"` // SHA256 of the schema document
}

// ComputeFingerprint generates a fingerprint for the given schema. Two
// schemas with the same tables, sequences and views in the same order have
// the same fingerprint.
func ComputeFingerprint(schema *ir.Schema) (*SchemaFingerprint, error) {
	hash, err := hashObject(ir.FromSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("failed to compute schema hash: %w", err)
	}

	return &SchemaFingerprint{
		Schema: schema.Name(),
		Hash:   hash,
	}, nil
}

// hashObject computes a SHA256 hash of any object
func hashObject(obj any) (string, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Short returns the first 8 characters of the hash
func (f *SchemaFingerprint) Short() string {
	if len(f.Hash) >= 8 {
		return f.Hash[:8]
	}
	return f.Hash
}

// String returns a human-readable representation of the fingerprint
func (f *SchemaFingerprint) String() string {
	return fmt.Sprintf("Schema fingerprint: %s", f.Short())
}
