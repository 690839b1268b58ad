package identity

import (
	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/cmn/ids"
	"github.com/cloudcore/cloudcore/cmn/names"
	"github.com/cloudcore/cloudcore/kv"
)

// Registry is identity's entry point, mirroring objectstore.Store and
// compute.Controller's plain-field dependency style (spec §9).
type Registry struct {
	kv    *kv.Store
	clock ids.Clock
}

func New(store *kv.Store) *Registry {
	return &Registry{kv: store, clock: ids.SystemClock{}}
}

func (r *Registry) now() string { return ids.FormatTimestamp(r.clock.Now()) }

// CreateServiceAccount mints `<accountId>@<project>.iam.gserviceaccount.com`
// and a 21-digit unique_id (spec §3/§4.4).
func (r *Registry) CreateServiceAccount(projectID, accountID, displayName, description string) (ServiceAccount, error) {
	if err := names.ValidateServiceAccountID(accountID); err != nil {
		return ServiceAccount{}, err
	}
	sa := ServiceAccount{
		AccountID:   accountID,
		ProjectID:   projectID,
		UniqueID:    ids.NewServiceAccountUniqueID(),
		Email:       accountID + "@" + projectID + ".iam.gserviceaccount.com",
		DisplayName: displayName,
		Description: description,
		Etag:        ids.NewSurrogateID(),
		CreatedAt:   r.now(),
	}
	key := accountKey(projectID, accountID)
	err := r.kv.Update(func(tx *kv.Tx) error {
		if tx.Has(key) {
			return cmnerr.Conflictf("service account %q already exists in project %q", accountID, projectID)
		}
		return kv.SetJSON(tx, key, &sa)
	})
	return sa, err
}

func (r *Registry) GetServiceAccount(projectID, accountID string) (ServiceAccount, error) {
	var sa ServiceAccount
	err := r.kv.View(func(tx *kv.Tx) error {
		return kv.GetJSON(tx, accountKey(projectID, accountID), &sa)
	})
	if err != nil {
		return ServiceAccount{}, kv.NotFoundOr(err, "service account %q not found", accountID)
	}
	return sa, nil
}

func (r *Registry) ListServiceAccounts(projectID string) ([]ServiceAccount, error) {
	var out []ServiceAccount
	err := r.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix(accountProjectPrefix(projectID), func(_, value string) bool {
			var sa ServiceAccount
			if unmarshalInto(value, &sa) == nil {
				out = append(out, sa)
			}
			return true
		})
	})
	return out, err
}

// UpdateServiceAccount patches displayName/description/disabled and bumps
// the etag (spec §4.4).
func (r *Registry) UpdateServiceAccount(projectID, accountID string, displayName, description *string, disabled *bool) (ServiceAccount, error) {
	var sa ServiceAccount
	key := accountKey(projectID, accountID)
	err := r.kv.Update(func(tx *kv.Tx) error {
		if err := kv.GetJSON(tx, key, &sa); err != nil {
			return kv.NotFoundOr(err, "service account %q not found", accountID)
		}
		if displayName != nil {
			sa.DisplayName = *displayName
		}
		if description != nil {
			sa.Description = *description
		}
		if disabled != nil {
			sa.Disabled = *disabled
		}
		sa.Etag = ids.NewSurrogateID()
		return kv.SetJSON(tx, key, &sa)
	})
	return sa, err
}

func (r *Registry) DeleteServiceAccount(projectID, accountID string) error {
	key := accountKey(projectID, accountID)
	err := r.kv.Update(func(tx *kv.Tx) error {
		if !tx.Has(key) {
			return cmnerr.NotFoundf("service account %q not found", accountID)
		}
		return tx.Delete(key)
	})
	if err != nil {
		return err
	}
	keys, err := r.ListKeys(accountID)
	if err != nil {
		return nil // best-effort cleanup; the account row is already gone
	}
	return r.kv.Update(func(tx *kv.Tx) error {
		for _, k := range keys {
			_ = tx.Delete(keyKey(accountID, k.KeyID))
		}
		return nil
	})
}
