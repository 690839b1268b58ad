// Package runtime is the container-runtime abstraction spec §1 names as
// an external collaborator ("Content runtime: assume an API to
// create/start/stop/delete containers and query their network address").
// Grounded on hectolitro-yeet's pkg/svc/docker.go, which drives the same
// "docker" CLI via os/exec rather than a client library — a pattern this
// package generalizes from docker-compose project lifecycles to single
// ad hoc containers standing in for compute §4.2's VM instances.
package runtime

import "context"

// ContainerSpec is everything the compute control plane knows when asking
// the runtime to create a container for an instance (spec §4.2 step 3).
type ContainerSpec struct {
	Name    string
	Image   string
	Network string
	Labels  map[string]string
}

// ContainerStatus is what the runtime can report back about a container's
// liveness and address (spec §4.2's reconciler).
type ContainerStatus struct {
	ID         string
	Running    bool
	InternalIP string
}

// Runtime is the interface the compute control plane depends on; the only
// production implementation is the docker-CLI adapter in docker.go, but
// tests substitute an in-memory fake.
type Runtime interface {
	Create(ctx context.Context, spec ContainerSpec) (containerID string, err error)
	Start(ctx context.Context, containerID string) error
	Stop(ctx context.Context, containerID string) error
	Remove(ctx context.Context, containerID string) error
	Inspect(ctx context.Context, containerID string) (ContainerStatus, error)
}
