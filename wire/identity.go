package wire

// ServiceAccount mirrors iam/v1's ServiceAccount resource (spec §4.4).
type ServiceAccount struct {
	Name         string `json:"name"`
	ProjectID    string `json:"projectId"`
	UniqueID     string `json:"uniqueId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName,omitempty"`
	Description  string `json:"description,omitempty"`
	Oauth2ClientID string `json:"oauth2ClientId,omitempty"`
	Disabled     bool   `json:"disabled"`
	Etag         string `json:"etag"`
}

type ServiceAccountList struct {
	Accounts      []ServiceAccount `json:"accounts"`
	NextPageToken string           `json:"nextPageToken,omitempty"`
}

// ServiceAccountKey mirrors iam/v1's ServiceAccountKey resource. PrivateKeyData
// is only populated on creation, matching the real API's one-time-reveal
// behavior (§4.4 expansion).
type ServiceAccountKey struct {
	Name            string `json:"name"`
	PrivateKeyType  string `json:"privateKeyType"`
	KeyAlgorithm    string `json:"keyAlgorithm"`
	PrivateKeyData  string `json:"privateKeyData,omitempty"`
	PublicKeyData   string `json:"publicKeyData,omitempty"`
	ValidAfterTime  string `json:"validAfterTime"`
	ValidBeforeTime string `json:"validBeforeTime"`
	KeyOrigin       string `json:"keyOrigin"`
	KeyType         string `json:"keyType"`
}

type ServiceAccountKeyList struct {
	Keys []ServiceAccountKey `json:"keys"`
}

// Policy mirrors iam/v1's Policy resource (storage-only, no enforcement,
// per spec §4.4's "IAM policy storage without enforcement").
type Policy struct {
	Version  int32     `json:"version"`
	Bindings []Binding `json:"bindings,omitempty"`
	Etag     string    `json:"etag"`
}

type Binding struct {
	Role    string   `json:"role"`
	Members []string `json:"members"`
}

type SetIamPolicyRequest struct {
	Policy Policy `json:"policy"`
}

type TestIamPermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

type TestIamPermissionsResponse struct {
	Permissions []string `json:"permissions,omitempty"`
}

// SignJwtRequest/Response mirror iam/v1's signJwt call, which the
// expansion (SPEC_FULL.md §4.4) uses to back bearer-assertion signing.
type SignJwtRequest struct {
	Payload string `json:"payload"`
}

type SignJwtResponse struct {
	KeyID     string `json:"keyId"`
	SignedJwt string `json:"signedJwt"`
}
