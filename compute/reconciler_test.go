package compute

import (
	"context"
	"testing"
	"time"
)

func TestReconcilerCorrectsDriftedInstance(t *testing.T) {
	ctrl, rt := newTestController(t)
	ctx := context.Background()

	inst, err := ctrl.CreateInstance(ctx, CreateInput{
		ProjectID: "p1", Zone: "us-central1-a", Name: "vm1", MachineType: "micro-1",
	})
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}

	// Simulate the container dying out-of-band, without going through
	// StopInstance, so the row still claims RUNNING.
	rt.mu.Lock()
	rt.running[inst.ContainerID] = false
	rt.mu.Unlock()

	r := NewReconciler(ctrl, time.Hour)
	if err := r.tick(ctx); err != nil {
		t.Fatalf("tick() error = %v", err)
	}

	got, err := ctrl.GetInstance("p1", "us-central1-a", "vm1")
	if err != nil {
		t.Fatalf("GetInstance() error = %v", err)
	}
	if got.Status != StatusTerminated {
		t.Fatalf("reconciler did not correct drifted instance: status = %v, want TERMINATED", got.Status)
	}
}

func TestReconcilerTerminatesVanishedContainer(t *testing.T) {
	ctrl, rt := newTestController(t)
	ctx := context.Background()

	inst, err := ctrl.CreateInstance(ctx, CreateInput{
		ProjectID: "p1", Zone: "us-central1-a", Name: "vm1", MachineType: "micro-1",
	})
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}

	// Simulate the container having vanished entirely (e.g. removed
	// directly via the container engine), so Inspect returns not-found
	// rather than reporting it as stopped.
	rt.vanish(inst.ContainerID)

	r := NewReconciler(ctrl, time.Hour)
	if err := r.tick(ctx); err != nil {
		t.Fatalf("tick() error = %v", err)
	}

	got, err := ctrl.GetInstance("p1", "us-central1-a", "vm1")
	if err != nil {
		t.Fatalf("GetInstance() error = %v", err)
	}
	if got.Status != StatusTerminated {
		t.Fatalf("reconciler did not terminate instance with a vanished container: status = %v, want TERMINATED", got.Status)
	}
}

func TestReconcilerIgnoresHealthyInstances(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := context.Background()
	_, err := ctrl.CreateInstance(ctx, CreateInput{
		ProjectID: "p1", Zone: "us-central1-a", Name: "vm1", MachineType: "micro-1",
	})
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}

	r := NewReconciler(ctrl, time.Hour)
	if err := r.tick(ctx); err != nil {
		t.Fatalf("tick() error = %v", err)
	}

	got, err := ctrl.GetInstance("p1", "us-central1-a", "vm1")
	if err != nil {
		t.Fatalf("GetInstance() error = %v", err)
	}
	if got.Status != StatusRunning {
		t.Fatalf("reconciler disturbed a healthy instance: status = %v, want RUNNING", got.Status)
	}
}
