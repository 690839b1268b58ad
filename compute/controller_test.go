package compute

import (
	"context"
	"sync"
	"testing"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/kv"
	"github.com/cloudcore/cloudcore/network"
	"github.com/cloudcore/cloudcore/runtime"
)

// fakeRuntime is an in-memory stand-in for the docker-CLI adapter, letting
// controller tests exercise the state machine without a container engine.
type fakeRuntime struct {
	mu        sync.Mutex
	nextID    int
	running   map[string]bool
	missing   map[string]bool
	failStart bool
}

func newFakeRuntime() *fakeRuntime { return &fakeRuntime{running: map[string]bool{}} }

func (f *fakeRuntime) Create(ctx context.Context, spec runtime.ContainerSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := spec.Name
	return id, nil
}

func (f *fakeRuntime) Start(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStart {
		return context.DeadlineExceeded
	}
	f.running[id] = true
	return nil
}

func (f *fakeRuntime) Stop(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running[id] = false
	return nil
}

func (f *fakeRuntime) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.running, id)
	return nil
}

func (f *fakeRuntime) Inspect(ctx context.Context, id string) (runtime.ContainerStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[id] {
		return runtime.ContainerStatus{}, cmnerr.NotFoundf("runtime: container %q not found", id)
	}
	return runtime.ContainerStatus{ID: id, Running: f.running[id]}, nil
}

// vanish makes id behave as if the container engine no longer knows about
// it, simulating an out-of-band removal (e.g. `docker rm` run by hand).
func (f *fakeRuntime) vanish(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing == nil {
		f.missing = map[string]bool{}
	}
	f.missing[id] = true
}

func newTestController(t *testing.T) (*Controller, *fakeRuntime) {
	t.Helper()
	ctrl, rt, _ := newTestControllerWithAllocator(t)
	return ctrl, rt
}

func newTestControllerWithAllocator(t *testing.T) (*Controller, *fakeRuntime, *network.Allocator) {
	t.Helper()
	store, err := kv.Open("")
	if err != nil {
		t.Fatalf("kv.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	rt := newFakeRuntime()
	net := network.NewAllocator(store)
	return New(store, rt, net), rt, net
}

func TestCreateInstanceLifecycle(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()

	inst, err := ctrl.CreateInstance(ctx, CreateInput{
		ProjectID: "p1", Zone: "us-central1-a", Name: "vm1", MachineType: "micro-1",
	})
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}
	if inst.Status != StatusRunning {
		t.Fatalf("CreateInstance() final status = %v, want RUNNING", inst.Status)
	}
	if inst.InternalIP == "" || inst.ExternalIP == "" {
		t.Fatalf("CreateInstance() did not allocate addresses: %+v", inst)
	}

	_, err = ctrl.CreateInstance(ctx, CreateInput{
		ProjectID: "p1", Zone: "us-central1-a", Name: "vm1", MachineType: "micro-1",
	})
	e, ok := cmnerr.As(err)
	if !ok || e.Kind != cmnerr.Conflict {
		t.Fatalf("CreateInstance duplicate name = %v, want cmnerr.Conflict", err)
	}
}

func TestCreateInstanceUnknownMachineType(t *testing.T) {
	ctrl, _ := newTestController(t)
	_, err := ctrl.CreateInstance(context.Background(), CreateInput{
		ProjectID: "p1", Zone: "us-central1-a", Name: "vm1", MachineType: "does-not-exist",
	})
	e, ok := cmnerr.As(err)
	if !ok || e.Kind != cmnerr.Invalid {
		t.Fatalf("CreateInstance with unknown machine type = %v, want cmnerr.Invalid", err)
	}
}

func TestStopAndStartInstance(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()
	inst, err := ctrl.CreateInstance(ctx, CreateInput{
		ProjectID: "p1", Zone: "us-central1-a", Name: "vm1", MachineType: "micro-1",
	})
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}
	externalIP := inst.ExternalIP

	stopped, err := ctrl.StopInstance(ctx, "p1", "us-central1-a", "vm1")
	if err != nil {
		t.Fatalf("StopInstance() error = %v", err)
	}
	if stopped.Status != StatusTerminated {
		t.Fatalf("StopInstance() final status = %v, want TERMINATED", stopped.Status)
	}

	if _, err := ctrl.StopInstance(ctx, "p1", "us-central1-a", "vm1"); err == nil {
		t.Fatalf("StopInstance on a terminated instance = nil, want invalid-state error")
	}

	started, err := ctrl.StartInstance(ctx, "p1", "us-central1-a", "vm1")
	if err != nil {
		t.Fatalf("StartInstance() error = %v", err)
	}
	if started.Status != StatusRunning {
		t.Fatalf("StartInstance() final status = %v, want RUNNING", started.Status)
	}
	if started.ExternalIP != externalIP {
		t.Fatalf("StartInstance() changed external IP: %s -> %s, want retained", externalIP, started.ExternalIP)
	}
}

func TestDeleteInstanceReleasesInternalIPAndKeepsRowGone(t *testing.T) {
	ctrl, _, net := newTestControllerWithAllocator(t)
	ctx := context.Background()
	inst, err := ctrl.CreateInstance(ctx, CreateInput{
		ProjectID: "p1", Zone: "us-central1-a", Name: "vm1", MachineType: "micro-1",
	})
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}
	internalIP := inst.InternalIP
	externalIP := inst.ExternalIP

	if err := ctrl.DeleteInstance(ctx, "p1", "us-central1-a", "vm1"); err != nil {
		t.Fatalf("DeleteInstance() error = %v", err)
	}

	_, err = ctrl.GetInstance("p1", "us-central1-a", "vm1")
	e, ok := cmnerr.As(err)
	if !ok || e.Kind != cmnerr.NotFound {
		t.Fatalf("GetInstance after delete = %v, want cmnerr.NotFound", err)
	}

	alloc, err := net.Counters("p1")
	if err != nil {
		t.Fatalf("Counters() error = %v", err)
	}
	for _, ip := range alloc.AllocatedInternal {
		if ip == internalIP {
			t.Fatalf("DeleteInstance() left internal IP %s in the allocator's used set, want released", internalIP)
		}
	}
	found := false
	for _, ip := range alloc.AllocatedExternal {
		if ip == externalIP {
			found = true
		}
	}
	if !found {
		t.Fatalf("DeleteInstance() removed external IP %s from the used set, want retained (not reused)", externalIP)
	}
}

func TestResetRequiresRunning(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()
	_, err := ctrl.CreateInstance(ctx, CreateInput{
		ProjectID: "p1", Zone: "us-central1-a", Name: "vm1", MachineType: "micro-1",
	})
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}
	ctrl.StopInstance(ctx, "p1", "us-central1-a", "vm1")

	_, err = ctrl.Reset(ctx, "p1", "us-central1-a", "vm1")
	if err == nil {
		t.Fatalf("Reset on a terminated instance = nil, want invalid-state error")
	}
}

func TestSetMetadataTagsLabels(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()
	_, err := ctrl.CreateInstance(ctx, CreateInput{
		ProjectID: "p1", Zone: "us-central1-a", Name: "vm1", MachineType: "micro-1",
	})
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}

	inst, err := ctrl.SetMetadata("p1", "us-central1-a", "vm1", map[string]string{"k": "v"})
	if err != nil || inst.Metadata["k"] != "v" {
		t.Fatalf("SetMetadata() = (%+v, %v)", inst, err)
	}
	inst, err = ctrl.SetTags("p1", "us-central1-a", "vm1", []string{"web"})
	if err != nil || len(inst.Tags) != 1 {
		t.Fatalf("SetTags() = (%+v, %v)", inst, err)
	}
	inst, err = ctrl.SetLabels("p1", "us-central1-a", "vm1", map[string]string{"env": "prod"})
	if err != nil || inst.Labels["env"] != "prod" {
		t.Fatalf("SetLabels() = (%+v, %v)", inst, err)
	}
}

func TestListInstancesAggregatedAcrossZones(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()
	ctrl.CreateInstance(ctx, CreateInput{ProjectID: "p1", Zone: "us-central1-a", Name: "vm1", MachineType: "micro-1"})
	ctrl.CreateInstance(ctx, CreateInput{ProjectID: "p1", Zone: "us-east1-b", Name: "vm2", MachineType: "micro-1"})

	all, err := ctrl.ListInstances("p1", "-")
	if err != nil {
		t.Fatalf("ListInstances(-) error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListInstances(-) returned %d instances, want 2", len(all))
	}

	zoned, err := ctrl.ListInstances("p1", "us-central1-a")
	if err != nil {
		t.Fatalf("ListInstances(zone) error = %v", err)
	}
	if len(zoned) != 1 {
		t.Fatalf("ListInstances(zone) returned %d instances, want 1", len(zoned))
	}
}

func TestDiskCRUD(t *testing.T) {
	ctrl, _ := newTestController(t)
	d, err := ctrl.CreateDisk("p1", "us-central1-a", "disk1", 100)
	if err != nil {
		t.Fatalf("CreateDisk() error = %v", err)
	}
	if d.Status != diskStatusReady {
		t.Fatalf("CreateDisk() status = %v, want READY", d.Status)
	}

	if _, err := ctrl.CreateDisk("p1", "us-central1-a", "disk1", 100); err == nil {
		t.Fatalf("CreateDisk duplicate = nil, want error")
	}
	if _, err := ctrl.CreateDisk("p1", "us-central1-a", "disk2", 0); err == nil {
		t.Fatalf("CreateDisk with sizeGb=0 = nil, want error")
	}

	if err := ctrl.DeleteDisk("p1", "us-central1-a", "disk1"); err != nil {
		t.Fatalf("DeleteDisk() error = %v", err)
	}
	if _, err := ctrl.GetDisk("p1", "us-central1-a", "disk1"); err == nil {
		t.Fatalf("GetDisk after delete = nil, want error")
	}
}

func TestCatalogLookup(t *testing.T) {
	mt, ok := LookupMachineType("us-central1-a", "zones/us-central1-a/machineTypes/micro-1")
	if !ok {
		t.Fatalf("LookupMachineType(fully-qualified) ok = false, want true")
	}
	if mt.Name != "micro-1" || mt.VCPUs != 1 {
		t.Fatalf("LookupMachineType() = %+v, want micro-1/1vcpu", mt)
	}

	if _, ok := LookupMachineType("us-central1-a", "ghost"); ok {
		t.Fatalf("LookupMachineType(ghost) ok = true, want false")
	}

	cat := Catalog("us-east1-b")
	if len(cat) != len(catalogFamilies) {
		t.Fatalf("Catalog() returned %d entries, want %d", len(cat), len(catalogFamilies))
	}
	for _, m := range cat {
		if m.Zone != "us-east1-b" {
			t.Fatalf("Catalog() entry zone = %q, want us-east1-b", m.Zone)
		}
	}
}
