package network

import (
	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/cmn/names"
	"github.com/cloudcore/cloudcore/kv"
)

var validProtocols = map[string]bool{"tcp": true, "udp": true, "icmp": true, "all": true}

// CreateFirewallRule validates and persists a firewall rule (spec §4.3).
func (a *Allocator) CreateFirewallRule(r FirewallRule) (FirewallRule, error) {
	if err := names.ValidateInstanceName(r.Name); err != nil {
		return FirewallRule{}, err
	}
	if r.Direction != DirectionIngress && r.Direction != DirectionEgress {
		return FirewallRule{}, cmnerr.Invalidf("network: direction must be INGRESS or EGRESS")
	}
	if r.Priority < 0 || r.Priority > 65535 {
		return FirewallRule{}, cmnerr.Invalidf("network: priority must be in [0, 65535]")
	}
	for _, pr := range r.Rules {
		if !validProtocols[pr.Protocol] {
			return FirewallRule{}, cmnerr.Invalidf("network: unsupported IPProtocol %q", pr.Protocol)
		}
	}
	for _, cidr := range append(append([]string{}, r.SourceRanges...), r.DestinationRanges...) {
		if err := names.ValidateFirewallCIDR(cidr); err != nil {
			return FirewallRule{}, err
		}
	}

	r.CreatedAt = a.now()
	key := firewallKey(r.ProjectID, r.Name)
	err := a.kv.Update(func(tx *kv.Tx) error {
		if tx.Has(key) {
			return cmnerr.Conflictf("firewall rule %q already exists", r.Name)
		}
		return kv.SetJSON(tx, key, &r)
	})
	if err != nil {
		return FirewallRule{}, err
	}
	return r, nil
}

func (a *Allocator) GetFirewallRule(projectID, name string) (FirewallRule, error) {
	var r FirewallRule
	err := a.kv.View(func(tx *kv.Tx) error {
		return kv.GetJSON(tx, firewallKey(projectID, name), &r)
	})
	if err != nil {
		return FirewallRule{}, kv.NotFoundOr(err, "firewall rule %q not found", name)
	}
	return r, nil
}

func (a *Allocator) ListFirewallRules(projectID string) ([]FirewallRule, error) {
	var out []FirewallRule
	err := a.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix(firewallProjectPrefix(projectID), func(_, value string) bool {
			var r FirewallRule
			if e := unmarshalInto(value, &r); e == nil {
				out = append(out, r)
			}
			return true
		})
	})
	return out, err
}

func (a *Allocator) DeleteFirewallRule(projectID, name string) error {
	key := firewallKey(projectID, name)
	return a.kv.Update(func(tx *kv.Tx) error {
		if !tx.Has(key) {
			return cmnerr.NotFoundf("firewall rule %q not found", name)
		}
		return tx.Delete(key)
	})
}

// Matches reports whether rule applies to an instance with the given
// tags, per spec §4.3's test-only matching semantics ("a rule applies to
// an instance if their target_tags intersect, or the rule has no
// target_tags").
func (r FirewallRule) Matches(instanceTags []string) bool {
	if len(r.TargetTags) == 0 {
		return true
	}
	tagSet := make(map[string]bool, len(instanceTags))
	for _, t := range instanceTags {
		tagSet[t] = true
	}
	for _, t := range r.TargetTags {
		if tagSet[t] {
			return true
		}
	}
	return false
}
