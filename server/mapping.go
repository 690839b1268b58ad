package server

import (
	"encoding/base64"
	"strconv"

	"github.com/cloudcore/cloudcore/cmn/ids"
	"github.com/cloudcore/cloudcore/compute"
	"github.com/cloudcore/cloudcore/identity"
	"github.com/cloudcore/cloudcore/network"
	"github.com/cloudcore/cloudcore/objectstore"
	"github.com/cloudcore/cloudcore/operations"
	"github.com/cloudcore/cloudcore/wire"
)

func toWireBucket(b objectstore.Bucket) wire.Bucket {
	w := wire.Bucket{
		Kind:           "storage#bucket",
		ID:             b.ProjectID + "/" + b.Name,
		SelfLink:       "/storage/v1/b/" + b.Name,
		Name:           b.Name,
		Location:       b.Location,
		StorageClass:   b.StorageClass,
		TimeCreated:    b.CreatedAt,
		Updated:        b.UpdatedAt,
		Metageneration: b.Metageneration,
		Etag:           b.UpdatedAt,
	}
	if b.VersioningEnabled {
		w.Versioning = &wire.BucketVersioning{Enabled: true}
	}
	for _, c := range b.CorsRules {
		w.Cors = append(w.Cors, wire.BucketCors{
			Origin: c.Origin, Method: c.Method, ResponseHeader: c.ResponseHeader, MaxAgeSeconds: c.MaxAgeSeconds,
		})
	}
	for _, n := range b.NotificationConfigs {
		w.NotificationConfigs = append(w.NotificationConfigs, wire.NotificationConfig{
			ID: n.ID, Kind: "storage#notification", WebhookURL: n.WebhookURL,
			EventTypes: n.EventTypes, ObjectNamePrefix: n.ObjectNamePrefix,
		})
	}
	if len(b.LifecycleRules) > 0 {
		lc := &wire.BucketLifecycle{}
		for _, r := range b.LifecycleRules {
			lc.Rule = append(lc.Rule, wire.BucketLifecycleRule{
				Action:    wire.BucketLifecycleAction{Type: string(r.Action)},
				Condition: wire.BucketLifecycleCondition{AgeDays: r.AgeDays},
			})
		}
		w.Lifecycle = lc
	}
	return w
}

func toWireObject(o objectstore.Object) wire.Object {
	return wire.Object{
		Kind:           "storage#object",
		ID:             o.BucketName + "/" + o.Name + "/" + strconv.FormatInt(o.Generation, 10),
		SelfLink:       "/storage/v1/b/" + o.BucketName + "/o/" + o.Name,
		Name:           o.Name,
		Bucket:         o.BucketName,
		Generation:     o.Generation,
		Metageneration: o.Metageneration,
		ContentType:    o.ContentType,
		TimeCreated:    o.CreatedAt,
		Updated:        o.UpdatedAt,
		StorageClass:   o.StorageClass,
		Size:           uint64(o.Size),
		MD5Hash:        o.MD5,
		CRC32C:         o.CRC32C,
		Metadata:       o.Metadata,
		Etag:           strconv.FormatInt(o.Metageneration, 10),
	}
}

func toWireInstance(inst compute.Instance) wire.Instance {
	w := wire.Instance{
		Kind:              "compute#instance",
		ID:                ids.NumericID(inst.ProjectID + "/" + inst.Zone + "/" + inst.Name),
		SelfLink:          "/compute/v1/projects/" + inst.ProjectID + "/zones/" + inst.Zone + "/instances/" + inst.Name,
		Name:              inst.Name,
		Zone:              inst.Zone,
		MachineType:       "zones/" + inst.Zone + "/machineTypes/" + inst.MachineType,
		Status:            string(inst.Status),
		StatusMessage:     inst.StatusMessage,
		CreationTimestamp: inst.CreatedAt,
		Labels:            inst.Labels,
		ContainerImage:    inst.ContainerImage,
	}
	iface := wire.NetworkInterface{Name: "nic0", Network: "global/networks/default", NetworkIP: inst.InternalIP}
	if inst.ExternalIP != "" {
		iface.AccessConfigs = []wire.AccessConfig{{Type: "ONE_TO_ONE_NAT", Name: "external-nat", NatIP: inst.ExternalIP}}
	}
	w.NetworkInterfaces = []wire.NetworkInterface{iface}
	if len(inst.Metadata) > 0 {
		meta := &wire.InstanceMetadata{}
		for k, v := range inst.Metadata {
			meta.Items = append(meta.Items, wire.MetadataItem{Key: k, Value: v})
		}
		w.Metadata = meta
	}
	if len(inst.Tags) > 0 {
		w.Tags = &wire.InstanceTags{Items: inst.Tags}
	}
	return w
}

func toWireMachineType(mt compute.MachineType) wire.MachineType {
	return wire.MachineType{
		Kind:      "compute#machineType",
		Name:      mt.Name,
		Zone:      mt.Zone,
		GuestCpus: mt.VCPUs,
		MemoryMb:  mt.MemoryMiB,
	}
}

func toWireDisk(d compute.Disk) wire.Disk {
	return wire.Disk{
		Kind:              "compute#disk",
		ID:                ids.NumericID(d.ProjectID + "/" + d.Zone + "/" + d.Name),
		SelfLink:          "/compute/v1/projects/" + d.ProjectID + "/zones/" + d.Zone + "/disks/" + d.Name,
		Name:              d.Name,
		Zone:              d.Zone,
		SizeGb:            d.SizeGB,
		Status:            d.Status,
		CreationTimestamp: d.CreatedAt,
	}
}

func toWireOperation(op operations.Operation) wire.Operation {
	w := op.ToWire()
	w.Kind = "compute#operation"
	w.ID = op.ID
	w.SelfLink = "/compute/v1/projects/" + op.ProjectID + "/operations/" + op.ID
	return w
}

func toWireNetwork(n network.Network) wire.Network {
	return wire.Network{
		Kind:                  "compute#network",
		ID:                    ids.NumericID(n.ProjectID + "/" + n.Name),
		SelfLink:              "/compute/v1/projects/" + n.ProjectID + "/global/networks/" + n.Name,
		Name:                  n.Name,
		AutoCreateSubnetworks: n.AutoCreateSubnetworks,
		CreationTimestamp:     n.CreatedAt,
	}
}

func toWireSubnetwork(s network.Subnetwork) wire.Subnetwork {
	return wire.Subnetwork{
		Kind:              "compute#subnetwork",
		ID:                ids.NumericID(s.ProjectID + "/" + s.Region + "/" + s.Name),
		SelfLink:          "/compute/v1/projects/" + s.ProjectID + "/regions/" + s.Region + "/subnetworks/" + s.Name,
		Name:              s.Name,
		Network:           s.Network,
		Region:            s.Region,
		IpCidrRange:       s.IPCIDRRange,
		CreationTimestamp: s.CreatedAt,
	}
}

func toWireFirewall(r network.FirewallRule) wire.Firewall {
	w := wire.Firewall{
		Kind:              "compute#firewall",
		ID:                ids.NumericID(r.ProjectID + "/" + r.Name),
		SelfLink:          "/compute/v1/projects/" + r.ProjectID + "/global/firewalls/" + r.Name,
		Name:              r.Name,
		Direction:         string(r.Direction),
		Priority:          r.Priority,
		SourceRanges:      r.SourceRanges,
		DestinationRanges: r.DestinationRanges,
		CreationTimestamp: r.CreatedAt,
	}
	switch r.Action {
	case network.ActionAllow:
		for _, pr := range r.Rules {
			w.Allowed = append(w.Allowed, wire.FirewallAllowed{IPProtocol: pr.Protocol, Ports: pr.Ports})
		}
	case network.ActionDeny:
		for _, pr := range r.Rules {
			w.Denied = append(w.Denied, wire.FirewallDenied{IPProtocol: pr.Protocol, Ports: pr.Ports})
		}
	}
	return w
}

func fromWireFirewall(body wire.Firewall, projectID string) network.FirewallRule {
	r := network.FirewallRule{
		Name:              body.Name,
		ProjectID:         projectID,
		Direction:         network.Direction(body.Direction),
		Priority:          body.Priority,
		SourceRanges:      body.SourceRanges,
		DestinationRanges: body.DestinationRanges,
	}
	if len(body.Allowed) > 0 {
		r.Action = network.ActionAllow
		for _, a := range body.Allowed {
			r.Rules = append(r.Rules, network.ProtocolRule{Protocol: a.IPProtocol, Ports: a.Ports})
		}
	} else {
		r.Action = network.ActionDeny
		for _, d := range body.Denied {
			r.Rules = append(r.Rules, network.ProtocolRule{Protocol: d.IPProtocol, Ports: d.Ports})
		}
	}
	return r
}

func toWireRoute(r network.Route) wire.Route {
	return wire.Route{
		Kind:              "compute#route",
		ID:                ids.NumericID(r.ProjectID + "/" + r.Name),
		SelfLink:          "/compute/v1/projects/" + r.ProjectID + "/global/routes/" + r.Name,
		Name:              r.Name,
		Network:           r.Network,
		DestRange:         r.DestRange,
		NextHopIP:         r.NextHopIP,
		NextHopNetwork:    r.NextHopNetwork,
		Priority:          r.Priority,
		CreationTimestamp: r.CreatedAt,
	}
}

func toWireRouter(r network.Router) wire.Router {
	w := wire.Router{
		Kind:              "compute#router",
		ID:                ids.NumericID(r.ProjectID + "/" + r.Region + "/" + r.Name),
		SelfLink:          "/compute/v1/projects/" + r.ProjectID + "/regions/" + r.Region + "/routers/" + r.Name,
		Name:              r.Name,
		Network:           r.Network,
		Region:            r.Region,
		CreationTimestamp: r.CreatedAt,
	}
	for _, n := range r.Nats {
		w.Nats = append(w.Nats, wire.RouterNat{
			Name: n.Name, SourceSubnetworkIpRangesToNat: n.SourceSubnetworkIPRangesToNat, Subnetworks: n.Subnetworks,
		})
	}
	return w
}

func toWireAddress(a network.ExternalAddress) wire.Address {
	return wire.Address{
		Kind:              "compute#address",
		ID:                ids.NumericID(a.ProjectID + "/" + a.Name),
		SelfLink:          "/compute/v1/projects/" + a.ProjectID + "/regions/" + a.Region + "/addresses/" + a.Name,
		Name:              a.Name,
		Address:           a.Address,
		Region:            a.Region,
		Status:            string(a.Status),
		CreationTimestamp: a.CreatedAt,
	}
}

func toWireServiceAccount(sa identity.ServiceAccount) wire.ServiceAccount {
	return wire.ServiceAccount{
		Name:        "projects/" + sa.ProjectID + "/serviceAccounts/" + sa.Email,
		ProjectID:   sa.ProjectID,
		UniqueID:    sa.UniqueID,
		Email:       sa.Email,
		DisplayName: sa.DisplayName,
		Description: sa.Description,
		Disabled:    sa.Disabled,
		Etag:        sa.Etag,
	}
}

func base64Encode(s string) string {
	if s == "" {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func toWireKey(k identity.ServiceAccountKey) wire.ServiceAccountKey {
	return wire.ServiceAccountKey{
		Name:            "projects/" + k.ProjectID + "/serviceAccounts/" + k.AccountID + "/keys/" + k.KeyID,
		PrivateKeyType:  "TYPE_GOOGLE_CREDENTIALS_FILE",
		KeyAlgorithm:    k.KeyAlgorithm,
		PrivateKeyData:  base64Encode(k.PrivateKeyPEM),
		PublicKeyData:   base64Encode(k.PublicKeyPEM),
		ValidAfterTime:  k.ValidAfterTime,
		KeyOrigin:       "GOOGLE_PROVIDED",
		KeyType:         "USER_MANAGED",
	}
}
