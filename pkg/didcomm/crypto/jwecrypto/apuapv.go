/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwecrypto

import (
	"crypto/sha256"
	"encoding/base64"
	"sort"
)

// BuildAPV computes the deterministic "apv" (agreement PartyVInfo) value: the SHA-256 digest of
// the sorted, '.'-joined recipient kids, so any recipient can recompute the same value the
// sender used regardless of the order the recipient list was built in.
func BuildAPV(recipientKIDs []string) []byte {
	sorted := make([]string, len(recipientKIDs))
	copy(sorted, recipientKIDs)
	sort.Strings(sorted)

	joined := sorted[0]
	for _, kid := range sorted[1:] {
		joined += "." + kid
	}

	digest := sha256.Sum256([]byte(joined))

	return digest[:]
}

// BuildAPU computes the "apu" (agreement PartyUInfo) value for authcrypt: the raw bytes of the
// sender kid itself, which callers base64url-encode with EncodeHeader before placing them in the
// JOSE header. anoncrypt carries no apu (no sender identity).
func BuildAPU(senderKID string) []byte {
	return []byte(senderKID)
}

// EncodeHeader base64url (no padding) encodes a header value, the encoding every JOSE header
// byte string (apu, apv, iv, tag, ...) uses.
func EncodeHeader(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeHeader decodes a base64url (no padding) JOSE header value.
func DecodeHeader(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
