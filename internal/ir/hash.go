package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainFilter prefixes filter-tree fingerprints.
// Version suffix enables future algorithm migration.
const DomainFilter = "mangaq/filter/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns a stable identifier for v's canonical JSON encoding.
// Two filter trees that print identically share a fingerprint.
func Fingerprint(v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainFilter, canonical), nil
}
