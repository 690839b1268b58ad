// Package identity implements spec §4.4: service account CRUD, key
// issuance with bearer-assertion signing, and IAM policy storage without
// enforcement. Grounded on the teacher's authn/utils.go (User/Token/Role
// records, JWT usage via golang-jwt/jwt/v4).
package identity

import "github.com/cloudcore/cloudcore/wire"

// ServiceAccount is the persisted record behind spec §3's ServiceAccount
// entity.
type ServiceAccount struct {
	AccountID   string `json:"accountId"`
	ProjectID   string `json:"projectId"`
	UniqueID    string `json:"uniqueId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	Disabled    bool   `json:"disabled"`
	Etag        string `json:"etag"`
	CreatedAt   string `json:"createdAt"`
}

// ServiceAccountKey is the persisted record behind a ServiceAccountKey;
// PrivateKeyPEM is populated only at creation time and never returned by
// Get/List afterward, matching the real API's one-time reveal (spec §4.4
// expansion).
type ServiceAccountKey struct {
	KeyID          string `json:"keyId"`
	AccountID      string `json:"accountId"`
	ProjectID      string `json:"projectId"`
	PublicKeyPEM   string `json:"publicKeyPem"`
	PrivateKeyPEM  string `json:"privateKeyPem,omitempty"`
	KeyAlgorithm   string `json:"keyAlgorithm"`
	ValidAfterTime string `json:"validAfterTime"`
	CreatedAt      string `json:"createdAt"`
}

// Policy is the persisted record behind a resource's IAM policy (spec
// §4.4: "IAM policy storage without enforcement" — bindings are stored
// and echoed back, never consulted to authorize a request).
type Policy struct {
	ResourcePath string         `json:"-"`
	Version      int32          `json:"version"`
	Bindings     []wire.Binding `json:"bindings,omitempty"`
	Etag         string         `json:"etag"`
}
