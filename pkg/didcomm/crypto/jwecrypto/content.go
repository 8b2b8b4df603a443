/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwecrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	josecipher "github.com/go-jose/go-jose/v3/cipher"
	"golang.org/x/crypto/chacha20poly1305"
)

// Content encryption algorithm identifiers (JWE "enc" header values).
const (
	A256CBCHS512 = "A256CBC-HS512"
	A256GCM      = "A256GCM"
	XC20P        = "XC20P"
)

// KeyLenBits returns the CEK length, in bits, for the given content encryption algorithm.
func KeyLenBits(enc string) (int, error) {
	switch enc {
	case A256CBCHS512:
		return 512, nil
	case A256GCM, XC20P:
		return 256, nil
	default:
		return 0, fmt.Errorf("unsupported content encryption algorithm %q", enc)
	}
}

// GenerateCEK generates a random content encryption key for the given algorithm.
func GenerateCEK(enc string) ([]byte, error) {
	bits, err := KeyLenBits(enc)
	if err != nil {
		return nil, err
	}

	cek := make([]byte, bits/8)
	if _, err := rand.Read(cek); err != nil {
		return nil, fmt.Errorf("generating content encryption key: %w", err)
	}

	return cek, nil
}

// AEAD returns the cipher.AEAD for the given content encryption algorithm and CEK.
func AEAD(enc string, cek []byte) (cipher.AEAD, error) {
	switch enc {
	case A256CBCHS512:
		return josecipher.NewCBCHMAC(cek, aes.NewCipher)
	case A256GCM:
		block, err := aes.NewCipher(cek)
		if err != nil {
			return nil, fmt.Errorf("building AES cipher: %w", err)
		}

		return cipher.NewGCM(block)
	case XC20P:
		return chacha20poly1305.NewX(cek)
	default:
		return nil, fmt.Errorf("unsupported content encryption algorithm %q", enc)
	}
}

// WrapCEK wraps cek under kek using AES Key Wrap (RFC 3394), the algorithm behind the
// "A256KW"/"ECDH-1PU+A256KW"/"ECDH-ES+A256KW" JWE "alg" values.
func WrapCEK(kek, cek []byte) ([]byte, error) {
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("building key-encryption AES cipher: %w", err)
	}

	wrapped, err := josecipher.KeyWrap(block, cek)
	if err != nil {
		return nil, fmt.Errorf("wrapping content encryption key: %w", err)
	}

	return wrapped, nil
}

// UnwrapCEK unwraps an AES Key Wrap (RFC 3394) ciphertext under kek.
func UnwrapCEK(kek, wrapped []byte) ([]byte, error) {
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("building key-encryption AES cipher: %w", err)
	}

	cek, err := josecipher.KeyUnwrap(block, wrapped)
	if err != nil {
		return nil, fmt.Errorf("unwrapping content encryption key: %w", err)
	}

	return cek, nil
}

// Seal encrypts plaintext under cek with a freshly generated nonce/IV, authenticating aad
// (the base64url-encoded protected header, per RFC 7516 section 5.1). It returns the IV,
// ciphertext and authentication tag as the three separate JWE fields expect, rather than the
// single concatenated blob cipher.AEAD.Seal produces.
func Seal(enc string, cek, plaintext, aad []byte) (iv, ciphertext, tag []byte, err error) {
	aead, err := AEAD(enc, cek)
	if err != nil {
		return nil, nil, nil, err
	}

	iv = make([]byte, aead.NonceSize())
	if _, err = rand.Read(iv); err != nil {
		return nil, nil, nil, fmt.Errorf("generating content encryption iv: %w", err)
	}

	sealed := aead.Seal(nil, iv, plaintext, aad)
	tagSize := aead.Overhead()

	return iv, sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:], nil
}

// Open decrypts ciphertext/tag under cek, verifying aad the same way Seal authenticated it.
func Open(enc string, cek, iv, ciphertext, tag, aad []byte) ([]byte, error) {
	aead, err := AEAD(enc, cek)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("decrypting content: %w", err)
	}

	return plaintext, nil
}
