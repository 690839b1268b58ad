package identity

import (
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v4"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/kv"
	"github.com/cloudcore/cloudcore/wire"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	store, err := kv.Open("")
	if err != nil {
		t.Fatalf("kv.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(store)
}

func TestCreateServiceAccount(t *testing.T) {
	r := newTestRegistry(t)
	sa, err := r.CreateServiceAccount("proj1", "deployer", "Deployer", "runs deploys")
	if err != nil {
		t.Fatalf("CreateServiceAccount() error = %v", err)
	}
	wantEmail := "deployer@proj1.iam.gserviceaccount.com"
	if sa.Email != wantEmail {
		t.Fatalf("CreateServiceAccount() email = %q, want %q", sa.Email, wantEmail)
	}
	if len(sa.UniqueID) != 21 {
		t.Fatalf("CreateServiceAccount() uniqueId length = %d, want 21", len(sa.UniqueID))
	}

	if _, err := r.CreateServiceAccount("proj1", "deployer", "", ""); err == nil {
		t.Fatalf("CreateServiceAccount duplicate = nil, want error")
	}
}

func TestCreateServiceAccountInvalidID(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.CreateServiceAccount("proj1", "X", "", "")
	e, ok := cmnerr.As(err)
	if !ok || e.Kind != cmnerr.Invalid {
		t.Fatalf("CreateServiceAccount(bad id) = %v, want cmnerr.Invalid", err)
	}
}

func TestUpdateServiceAccountBumpsEtag(t *testing.T) {
	r := newTestRegistry(t)
	sa, _ := r.CreateServiceAccount("proj1", "deployer", "Deployer", "")
	oldEtag := sa.Etag

	name := "New Name"
	updated, err := r.UpdateServiceAccount("proj1", "deployer", &name, nil, nil)
	if err != nil {
		t.Fatalf("UpdateServiceAccount() error = %v", err)
	}
	if updated.DisplayName != name {
		t.Fatalf("UpdateServiceAccount() displayName = %q, want %q", updated.DisplayName, name)
	}
	if updated.Etag == oldEtag {
		t.Fatalf("UpdateServiceAccount() did not bump etag")
	}
}

func TestDeleteServiceAccountCascadesKeys(t *testing.T) {
	r := newTestRegistry(t)
	r.CreateServiceAccount("proj1", "deployer", "", "")
	k, err := r.CreateKey("proj1", "deployer")
	if err != nil {
		t.Fatalf("CreateKey() error = %v", err)
	}

	if err := r.DeleteServiceAccount("proj1", "deployer"); err != nil {
		t.Fatalf("DeleteServiceAccount() error = %v", err)
	}

	if _, err := r.GetKey("deployer", k.KeyID); err == nil {
		t.Fatalf("GetKey() after account delete = nil, want error (cascaded delete)")
	}
}

func TestCreateKeyRequiresExistingAccount(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.CreateKey("proj1", "ghost")
	if err == nil {
		t.Fatalf("CreateKey on nonexistent account = nil, want error")
	}
}

func TestGetKeyNeverReturnsPrivateMaterial(t *testing.T) {
	r := newTestRegistry(t)
	r.CreateServiceAccount("proj1", "deployer", "", "")
	created, err := r.CreateKey("proj1", "deployer")
	if err != nil {
		t.Fatalf("CreateKey() error = %v", err)
	}
	if created.PrivateKeyPEM == "" {
		t.Fatalf("CreateKey() did not return private key material at creation time")
	}

	got, err := r.GetKey("deployer", created.KeyID)
	if err != nil {
		t.Fatalf("GetKey() error = %v", err)
	}
	if got.PrivateKeyPEM != "" {
		t.Fatalf("GetKey() leaked private key material after creation")
	}

	list, err := r.ListKeys("deployer")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListKeys() = (%v, %v), want one key", list, err)
	}
	if list[0].PrivateKeyPEM != "" {
		t.Fatalf("ListKeys() leaked private key material")
	}
}

func TestSignJWTRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	r.CreateServiceAccount("proj1", "deployer", "", "")
	k, err := r.CreateKey("proj1", "deployer")
	if err != nil {
		t.Fatalf("CreateKey() error = %v", err)
	}

	claims := jwt.MapClaims{"sub": "deployer", "aud": "https://example.test"}
	signed, err := r.SignJWT("deployer", k.KeyID, claims)
	if err != nil {
		t.Fatalf("SignJWT() error = %v", err)
	}
	if !strings.Contains(signed, ".") {
		t.Fatalf("SignJWT() did not return a dotted JWT: %q", signed)
	}

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		block, _ := pem.Decode([]byte(k.PublicKeyPEM))
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		return pub, nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parsing signed JWT with the public key failed: %v", err)
	}
}

func TestSetPolicyEtagGate(t *testing.T) {
	r := newTestRegistry(t)
	resource := "projects/p1/serviceAccounts/deployer@p1.iam.gserviceaccount.com"

	p, err := r.GetPolicy(resource)
	if err != nil {
		t.Fatalf("GetPolicy() error = %v", err)
	}
	if p.Version != 1 {
		t.Fatalf("GetPolicy() fresh version = %d, want 1", p.Version)
	}

	bindings := []wire.Binding{{Role: "roles/viewer", Members: []string{"user:a@example.com"}}}
	updated, err := r.SetPolicy(resource, bindings, p.Etag)
	if err != nil {
		t.Fatalf("SetPolicy() with matching etag error = %v", err)
	}

	if _, err := r.SetPolicy(resource, bindings, "stale-etag"); err == nil {
		t.Fatalf("SetPolicy() with stale etag = nil, want conditionNotMet")
	} else if e, ok := cmnerr.As(err); !ok || e.Kind != cmnerr.ConditionNotMet {
		t.Fatalf("SetPolicy() stale etag error = %v, want cmnerr.ConditionNotMet", err)
	}

	if _, err := r.SetPolicy(resource, bindings, updated.Etag); err != nil {
		t.Fatalf("SetPolicy() with fresh etag error = %v", err)
	}
}

func TestTestPermissionsEchoesRequested(t *testing.T) {
	r := newTestRegistry(t)
	perms := []string{"iam.serviceAccounts.get", "iam.serviceAccounts.delete"}
	got := r.TestPermissions("projects/p1/serviceAccounts/x", perms)
	if len(got) != len(perms) {
		t.Fatalf("TestPermissions() = %v, want echo of %v", got, perms)
	}
}
