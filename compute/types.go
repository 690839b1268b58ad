// Package compute implements spec §4.2's VM instance state machine,
// backed by a runtime.Runtime. Grounded on the teacher's targetrunner
// object lifecycle pattern (ais/target.go) generalized from object
// transfer state to instance provisioning state, and on
// xaction/xreg's named-task registry for the background reconciler.
package compute

// Status is an Instance's position in spec §4.2's state machine.
type Status string

const (
	StatusProvisioning Status = "PROVISIONING"
	StatusStaging      Status = "STAGING"
	StatusRunning      Status = "RUNNING"
	StatusStopping     Status = "STOPPING"
	StatusTerminated   Status = "TERMINATED"
)

// Instance is the persisted record backing spec §3's Instance entity.
type Instance struct {
	Name         string            `json:"name"`
	ProjectID    string            `json:"projectId"`
	Zone         string            `json:"zone"`
	MachineType  string            `json:"machineType"`
	Status       Status            `json:"status"`
	StatusMessage string           `json:"statusMessage,omitempty"`
	ContainerID  string            `json:"containerId,omitempty"`
	InternalIP   string            `json:"internalIp,omitempty"`
	ExternalIP   string            `json:"externalIp,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	ContainerImage string          `json:"containerImage,omitempty"`
	CreatedAt    string            `json:"createdAt"`
	LastStartAt  string            `json:"lastStartAt,omitempty"`
	LastStopAt   string            `json:"lastStopAt,omitempty"`
}

// MachineType is an immutable catalogue entry (spec §3).
type MachineType struct {
	Name      string
	Zone      string
	VCPUs     int32
	MemoryMiB int32
}

// Disk is the expansion's standalone disk resource (SPEC_FULL.md §4.2).
type Disk struct {
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
	Zone      string `json:"zone"`
	SizeGB    int64  `json:"sizeGb"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

const defaultContainerImage = "cloudcore/instance-base:latest"
