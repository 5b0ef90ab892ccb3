package fingerprint

import (
	"fmt"
)

// Compare returns an error when the actual schema state is not the one the
// plan was computed from.
func Compare(expected, actual *SchemaFingerprint) error {
	if expected.Hash == actual.Hash {
		return nil
	}

	return fmt.Errorf("schema fingerprint mismatch for %s - expected: %s, actual: %s",
		expected.Schema, preview(expected.Hash), preview(actual.Hash))
}

func preview(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}
