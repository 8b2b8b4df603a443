/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package did models the subset of the DID Core data model this engine
// resolves key material and service endpoints from: verification methods,
// the authentication and keyAgreement relationships, and the
// DIDCommMessaging service entry used for forward wrapping.
package did

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Verification-method type identifiers this engine understands.
const (
	JSONWebKey2020            = "JsonWebKey2020"
	X25519KeyAgreementKey2019 = "X25519KeyAgreementKey2019"
	X25519KeyAgreementKey2020 = "X25519KeyAgreementKey2020"
	Ed25519VerificationKey2018 = "Ed25519VerificationKey2018"
	Ed25519VerificationKey2020 = "Ed25519VerificationKey2020"
	EcdsaSecp256k1VerificationKey2019 = "EcdsaSecp256k1VerificationKey2019"
)

// DIDCommMessaging is the service type carrying a DIDComm v2 endpoint.
const DIDCommMessaging = "DIDCommMessaging"

// Doc is a DID document, trimmed to the fields the pack/unpack pipeline reads.
type Doc struct {
	ID                 string
	VerificationMethod []VerificationMethod
	Authentication     []Verification
	KeyAgreement       []Verification
	Service            []Service
}

// VerificationMethod is a single key entry in a DID document's verificationMethod array.
type VerificationMethod struct {
	ID         string
	Type       string
	Controller string

	// Exactly one of the following is populated, matching the verification-method
	// variant the DID document used (JWK vs multibase vs base58 vs raw bytes).
	JSONWebKeyValue *JSONWebKey
	Multibase       string
	Base58          string
	Hex             string
	Value           []byte
}

// Verification wraps a VerificationMethod as it appears embedded (or by reference) inside
// the authentication/keyAgreement relationship arrays.
type Verification struct {
	VerificationMethod VerificationMethod
}

// Service is a DID document service entry.
type Service struct {
	ID              string
	Type            string
	ServiceEndpoint string
	Accept          []string
	RoutingKeys     []string
}

// JSONWebKey is the subset of RFC 7517 fields carried on a publicKeyJwk verification method.
type JSONWebKey struct {
	Kty string `json:"kty"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
	D   string `json:"d,omitempty"`
}

// MarshalJSON renders the DID document in DID-Core wire shape.
func (d *Doc) MarshalJSON() ([]byte, error) {
	auth, err := refList(d.Authentication)
	if err != nil {
		return nil, err
	}

	ka, err := refList(d.KeyAgreement)
	if err != nil {
		return nil, err
	}

	raw := rawDoc{
		ID:                 d.ID,
		VerificationMethod: make([]rawVerificationMethod, len(d.VerificationMethod)),
		Authentication:     auth,
		KeyAgreement:       ka,
		Service:            d.Service,
	}

	for i, vm := range d.VerificationMethod {
		raw.VerificationMethod[i] = toRawVM(vm)
	}

	return json.Marshal(raw)
}

// UnmarshalJSON parses a DID-Core wire-format document.
func (d *Doc) UnmarshalJSON(data []byte) error {
	var raw rawDoc

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing did document: %w", err)
	}

	d.ID = raw.ID
	d.Service = raw.Service

	d.VerificationMethod = make([]VerificationMethod, len(raw.VerificationMethod))
	byID := make(map[string]VerificationMethod, len(raw.VerificationMethod))

	for i, rvm := range raw.VerificationMethod {
		vm := fromRawVM(rvm)
		d.VerificationMethod[i] = vm
		byID[vm.ID] = vm
		byID[localFragment(d.ID, vm.ID)] = vm
	}

	auth, err := resolveRefs(d.ID, raw.Authentication, byID)
	if err != nil {
		return fmt.Errorf("resolving authentication: %w", err)
	}

	ka, err := resolveRefs(d.ID, raw.KeyAgreement, byID)
	if err != nil {
		return fmt.Errorf("resolving keyAgreement: %w", err)
	}

	d.Authentication = auth
	d.KeyAgreement = ka

	return nil
}

// VerificationMethodByID returns the verification method with the given id (full or fragment), or false.
func (d *Doc) VerificationMethodByID(id string) (VerificationMethod, bool) {
	for _, vm := range d.VerificationMethod {
		if vm.ID == id || localFragment(d.ID, vm.ID) == localFragment(d.ID, id) {
			return vm, true
		}
	}

	return VerificationMethod{}, false
}

// DIDCommService returns the first DIDCommMessaging service entry, or false if none is present.
func (d *Doc) DIDCommService() (Service, bool) {
	for _, svc := range d.Service {
		if svc.Type == DIDCommMessaging {
			return svc, true
		}
	}

	return Service{}, false
}

func localFragment(didID, id string) string {
	if i := strings.Index(id, "#"); i >= 0 {
		return didID + id[i:]
	}

	return id
}

func refList(vs []Verification) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(vs))

	for i, v := range vs {
		raw, err := json.Marshal(v.VerificationMethod.ID)
		if err != nil {
			return nil, err
		}

		out[i] = raw
	}

	return out, nil
}

func resolveRefs(didID string, raw []json.RawMessage, byID map[string]VerificationMethod) ([]Verification, error) {
	out := make([]Verification, 0, len(raw))

	for _, r := range raw {
		var asString string
		if err := json.Unmarshal(r, &asString); err == nil {
			vm, ok := byID[localFragment(didID, asString)]
			if !ok {
				vm, ok = byID[asString]
			}

			if !ok {
				return nil, fmt.Errorf("verification relationship references unknown id %q", asString)
			}

			out = append(out, Verification{VerificationMethod: vm})

			continue
		}

		var rvm rawVerificationMethod
		if err := json.Unmarshal(r, &rvm); err != nil {
			return nil, fmt.Errorf("parsing embedded verification method: %w", err)
		}

		out = append(out, Verification{VerificationMethod: fromRawVM(rvm)})
	}

	return out, nil
}

type rawDoc struct {
	ID                 string                  `json:"id"`
	VerificationMethod []rawVerificationMethod `json:"verificationMethod,omitempty"`
	Authentication     []json.RawMessage       `json:"authentication,omitempty"`
	KeyAgreement       []json.RawMessage       `json:"keyAgreement,omitempty"`
	Service            []Service               `json:"service,omitempty"`
}

type rawVerificationMethod struct {
	ID              string      `json:"id"`
	Type            string      `json:"type"`
	Controller      string      `json:"controller,omitempty"`
	PublicKeyJwk    *JSONWebKey `json:"publicKeyJwk,omitempty"`
	PublicKeyMultibase string   `json:"publicKeyMultibase,omitempty"`
	PublicKeyBase58 string      `json:"publicKeyBase58,omitempty"`
	PublicKeyHex    string      `json:"publicKeyHex,omitempty"`
}

func toRawVM(vm VerificationMethod) rawVerificationMethod {
	return rawVerificationMethod{
		ID:                 vm.ID,
		Type:               vm.Type,
		Controller:         vm.Controller,
		PublicKeyJwk:       vm.JSONWebKeyValue,
		PublicKeyMultibase: vm.Multibase,
		PublicKeyBase58:    vm.Base58,
		PublicKeyHex:       vm.Hex,
	}
}

func fromRawVM(rvm rawVerificationMethod) VerificationMethod {
	return VerificationMethod{
		ID:              rvm.ID,
		Type:            rvm.Type,
		Controller:      rvm.Controller,
		JSONWebKeyValue: rvm.PublicKeyJwk,
		Multibase:       rvm.PublicKeyMultibase,
		Base58:          rvm.PublicKeyBase58,
		Hex:             rvm.PublicKeyHex,
	}
}
