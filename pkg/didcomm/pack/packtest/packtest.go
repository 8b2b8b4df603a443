/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package packtest provides in-memory DIDResolver and SecretsResolver mocks, to be used only
// for unit tests exercising pack/unpack round trips.
package packtest

import (
	"context"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/did"
)

// MockDIDResolver resolves DID documents from an in-memory map, keyed by DID.
type MockDIDResolver struct {
	Docs map[string]*did.Doc
	Err  error
}

// NewMockDIDResolver returns a resolver with an empty document set.
func NewMockDIDResolver() *MockDIDResolver {
	return &MockDIDResolver{Docs: map[string]*did.Doc{}}
}

// Add registers doc under its own ID so Resolve can find it.
func (m *MockDIDResolver) Add(doc *did.Doc) *MockDIDResolver {
	m.Docs[doc.ID] = doc
	return m
}

// Resolve implements didcomm.DIDResolver.
func (m *MockDIDResolver) Resolve(_ context.Context, id string) (*did.Doc, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	return m.Docs[id], nil
}

// MockSecretsResolver holds private key material in an in-memory map, keyed by kid.
type MockSecretsResolver struct {
	Secrets map[string]*didcomm.Secret
	Err     error
}

// NewMockSecretsResolver returns a resolver with an empty secret set.
func NewMockSecretsResolver() *MockSecretsResolver {
	return &MockSecretsResolver{Secrets: map[string]*didcomm.Secret{}}
}

// Add registers secret under its own KID so GetSecret/FindSecrets can find it.
func (m *MockSecretsResolver) Add(secret *didcomm.Secret) *MockSecretsResolver {
	m.Secrets[secret.KID] = secret
	return m
}

// GetSecret implements didcomm.SecretsResolver.
func (m *MockSecretsResolver) GetSecret(_ context.Context, kid string) (*didcomm.Secret, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	return m.Secrets[kid], nil
}

// FindSecrets implements didcomm.SecretsResolver, returning the subset of kids this resolver
// holds, in the order given.
func (m *MockSecretsResolver) FindSecrets(_ context.Context, kids []string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	found := make([]string, 0, len(kids))

	for _, kid := range kids {
		if _, ok := m.Secrets[kid]; ok {
			found = append(found, kid)
		}
	}

	return found, nil
}
