package fingerprint

import (
	"strings"
	"testing"
)

func TestCompare_IdenticalFingerprints(t *testing.T) {
	fingerprint1 := &SchemaFingerprint{Schema: "app", Hash: "same_hash_12345"}
	fingerprint2 := &SchemaFingerprint{Schema: "app", Hash: "same_hash_12345"}

	if err := Compare(fingerprint1, fingerprint2); err != nil {
		t.Errorf("Identical fingerprints should match, got error: %v", err)
	}
}

func TestCompare_DifferentFingerprints(t *testing.T) {
	fingerprint1 := &SchemaFingerprint{Schema: "app", Hash: "hash_12345_abcdefghijklmnop"}
	fingerprint2 := &SchemaFingerprint{Schema: "app", Hash: "hash_67890"}

	err := Compare(fingerprint1, fingerprint2)
	if err == nil {
		t.Fatal("Different fingerprints should not match")
	}

	expectedSubstrings := []string{"schema fingerprint mismatch for app", "hash_12345_abcde", "hash_67890"}
	for _, substring := range expectedSubstrings {
		if !strings.Contains(err.Error(), substring) {
			t.Errorf("Error message should contain '%s', got: %s", substring, err.Error())
		}
	}
	if strings.Contains(err.Error(), "fghij") {
		t.Errorf("Error message should only show a hash preview, got: %s", err.Error())
	}
}
