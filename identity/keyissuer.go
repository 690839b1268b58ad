package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/golang-jwt/jwt/v4"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/cmn/ids"
	"github.com/cloudcore/cloudcore/kv"
)

const rsaKeyBits = 2048

// CreateKey generates an RSA-2048 keypair for accountID and persists the
// public half plus a private key tied to the key row only at creation
// time (spec §4.4 expansion: key issuance backs bearer-assertion JWT
// signing, mirroring the real iam/v1 serviceAccounts.keys.create call).
func (r *Registry) CreateKey(projectID, accountID string) (ServiceAccountKey, error) {
	if _, err := r.GetServiceAccount(projectID, accountID); err != nil {
		return ServiceAccountKey{}, err
	}
	priv, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return ServiceAccountKey{}, cmnerr.Internalf(err, "identity: generating key for %q", accountID)
	}
	pubBytes, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return ServiceAccountKey{}, cmnerr.Internalf(err, "identity: marshaling public key for %q", accountID)
	}
	privBytes := x509.MarshalPKCS1PrivateKey(priv)

	k := ServiceAccountKey{
		KeyID:          ids.NewKeyID(),
		AccountID:      accountID,
		ProjectID:      projectID,
		PublicKeyPEM:   string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})),
		PrivateKeyPEM:  string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: privBytes})),
		KeyAlgorithm:   "KEY_ALG_RSA_2048",
		ValidAfterTime: r.now(),
		CreatedAt:      r.now(),
	}
	key := keyKey(accountID, k.KeyID)
	err = r.kv.Update(func(tx *kv.Tx) error { return kv.SetJSON(tx, key, &k) })
	return k, err
}

// GetKey returns a key row with PrivateKeyPEM cleared, matching the real
// API's one-time reveal at creation only.
func (r *Registry) GetKey(accountID, keyID string) (ServiceAccountKey, error) {
	var k ServiceAccountKey
	err := r.kv.View(func(tx *kv.Tx) error { return kv.GetJSON(tx, keyKey(accountID, keyID), &k) })
	if err != nil {
		return ServiceAccountKey{}, kv.NotFoundOr(err, "key %q not found for account %q", keyID, accountID)
	}
	k.PrivateKeyPEM = ""
	return k, nil
}

func (r *Registry) ListKeys(accountID string) ([]ServiceAccountKey, error) {
	var out []ServiceAccountKey
	err := r.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix(keyAccountPrefix(accountID), func(_, value string) bool {
			var k ServiceAccountKey
			if unmarshalInto(value, &k) == nil {
				k.PrivateKeyPEM = ""
				out = append(out, k)
			}
			return true
		})
	})
	return out, err
}

func (r *Registry) DeleteKey(accountID, keyID string) error {
	key := keyKey(accountID, keyID)
	return r.kv.Update(func(tx *kv.Tx) error {
		if !tx.Has(key) {
			return cmnerr.NotFoundf("key %q not found for account %q", keyID, accountID)
		}
		return tx.Delete(key)
	})
}

// SignJWT signs payloadClaims with keyID's private key, backing the
// signJwt API (spec §4.4 expansion). The key's private material is read
// back from storage since GetKey never returns it; this is the only
// caller permitted to touch PrivateKeyPEM post-creation.
func (r *Registry) SignJWT(accountID, keyID string, claims jwt.MapClaims) (string, error) {
	var k ServiceAccountKey
	err := r.kv.View(func(tx *kv.Tx) error { return kv.GetJSON(tx, keyKey(accountID, keyID), &k) })
	if err != nil {
		return "", kv.NotFoundOr(err, "key %q not found for account %q", keyID, accountID)
	}
	block, _ := pem.Decode([]byte(k.PrivateKeyPEM))
	if block == nil {
		return "", cmnerr.Internalf(nil, "identity: key %q has no stored private key material", keyID)
	}
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return "", cmnerr.Internalf(err, "identity: parsing private key for %q", keyID)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = keyID
	signed, err := token.SignedString(priv)
	if err != nil {
		return "", cmnerr.Internalf(err, "identity: signing jwt with key %q", keyID)
	}
	return signed, nil
}
