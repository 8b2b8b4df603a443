/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pack

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didcommerr"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didrotate"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/keymaterial"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/jose/kid/resolver"
)

// PackFromPrior issues a from_prior JWT asserting that newDID supersedes priorDID, signed by
// signingKID (an authentication key of priorDID).
func PackFromPrior(
	ctx context.Context,
	priorDID, newDID, signingKID string,
	didResolver didcomm.DIDResolver,
	secretsResolver didcomm.SecretsResolver,
	claims *didrotate.Claims,
) (string, error) {
	if _, err := resolver.ResolveAuthentication(ctx, signingKID, didResolver); err != nil {
		return "", err
	}

	secret, err := secretsResolver.GetSecret(ctx, signingKID)
	if err != nil {
		return "", didcommerr.Wrapf(didcommerr.SecretNotFound, err, "resolving from_prior signer secret %s", signingKID)
	}

	if secret == nil {
		return "", didcommerr.New(didcommerr.SecretNotFound, fmt.Sprintf("no secret for signer %s", signingKID), nil)
	}

	kt, priv, err := keymaterial.SecretKey(secret)
	if err != nil {
		return "", err
	}

	return didrotate.IssueFromPrior(priorDID, newDID, signingKID, kt, priv, time.Now(), claims)
}

// UnpackFromPrior verifies a from_prior JWT, resolving its issuer's authentication key, and
// returns the prior DID, the new DID, and the signer kid.
func UnpackFromPrior(
	ctx context.Context,
	token string,
	didResolver didcomm.DIDResolver,
) (priorDID, newDID, signerKID string, err error) {
	iss, _, kid, err := didrotate.ParseUnverified(token)
	if err != nil {
		return "", "", "", err
	}

	issuerKey, err := resolver.ResolveAuthentication(ctx, kid, didResolver)
	if err != nil {
		return "", "", "", err
	}

	if !strings.HasPrefix(kid, iss+"#") {
		return "", "", "", didcommerr.New(didcommerr.Malformed, "from_prior kid does not belong to the issuer DID", nil)
	}

	return didrotate.VerifyFromPrior(token, issuerKey.Raw, time.Now())
}
