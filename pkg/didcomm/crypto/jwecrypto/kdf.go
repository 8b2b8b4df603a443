/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwecrypto

import (
	"crypto/sha256"
	"encoding/binary"
)

// ConcatKDF implements the Concat KDF from NIST SP 800-56A, as profiled for JOSE by RFC 7518
// Appendix C: each round hashes roundNumber || Z || OtherInfo, where
// OtherInfo = AlgorithmID || PartyUInfo || PartyVInfo || SuppPubInfo, and
// AlgorithmID/PartyUInfo/PartyVInfo are each a big-endian uint32 length prefix followed by
// their bytes, and SuppPubInfo is the big-endian uint32 requested key length in bits.
func ConcatKDF(z []byte, algID, apu, apv []byte, keyLenBits int) []byte {
	keyLenBytes := keyLenBits / 8

	otherInfo := lengthPrefixed(algID)
	otherInfo = append(otherInfo, lengthPrefixed(apu)...)
	otherInfo = append(otherInfo, lengthPrefixed(apv)...)
	otherInfo = append(otherInfo, uint32Bytes(uint32(keyLenBits))...) //nolint:gosec

	out := make([]byte, 0, keyLenBytes)

	for round := uint32(1); len(out) < keyLenBytes; round++ {
		h := sha256.New()
		h.Write(uint32Bytes(round))
		h.Write(z)
		h.Write(otherInfo)
		out = append(out, h.Sum(nil)...)
	}

	return out[:keyLenBytes]
}

// DeriveECDH1PU derives the ECDH-1PU content-encryption key-wrapping key from the
// ephemeral-static (ze) and static-static (zs) shared secrets, per
// draft-madden-jose-ecdh-1pu section 4: Z = Ze || Zs, fed through the same Concat KDF
// ECDH-ES uses, with "alg" as the AlgorithmID.
func DeriveECDH1PU(alg string, ze, zs, apu, apv []byte, keyLenBits int) []byte {
	z := make([]byte, 0, len(ze)+len(zs))
	z = append(z, ze...)
	z = append(z, zs...)

	return ConcatKDF(z, []byte(alg), apu, apv, keyLenBits)
}

// DeriveECDHES derives the ECDH-ES key-wrapping/content-encryption key from the single
// ephemeral-static (or static-static, for direct agreement) shared secret z.
func DeriveECDHES(alg string, z, apu, apv []byte, keyLenBits int) []byte {
	return ConcatKDF(z, []byte(alg), apu, apv, keyLenBits)
}

func lengthPrefixed(b []byte) []byte {
	out := make([]byte, 0, 4+len(b))
	out = append(out, uint32Bytes(uint32(len(b)))...) //nolint:gosec
	out = append(out, b...)

	return out
}

func uint32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)

	return b
}
