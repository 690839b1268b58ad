package runtime

import (
	"context"
	"os/exec"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
)

// DockerRuntime drives the local "docker" CLI, mirroring
// hectolitro-yeet's DockerComposeService.command/runCommand split: resolve
// the binary once via exec.LookPath, then shell out per operation rather
// than linking a client SDK.
type DockerRuntime struct {
	// NewCmd builds the *exec.Cmd to run; overridden in tests the way
	// DockerComposeService.NewCmd is overridden in the teacher.
	NewCmd func(name string, arg ...string) *exec.Cmd
}

// NewDockerRuntime returns a runtime with NewCmd unset, so commands are
// built with exec.CommandContext and each method's ctx bounds the docker
// process; tests override NewCmd directly, and then ctx is not applied.
func NewDockerRuntime() *DockerRuntime {
	return &DockerRuntime{}
}

func newCommandContext(ctx context.Context, name string, arg ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, arg...)
}

func dockerPath() (string, error) {
	p, err := exec.LookPath("docker")
	if err != nil {
		return "", cmnerr.Unsupportedf("runtime: docker binary not found on PATH: %v", err)
	}
	return p, nil
}

func (d *DockerRuntime) run(ctx context.Context, args ...string) (string, error) {
	bin, err := dockerPath()
	if err != nil {
		return "", err
	}
	cmd := d.newCmd(ctx, bin, args...)
	out, err := cmd.Output()
	if err != nil {
		return "", cmnerr.Internalf(err, "runtime: docker %s failed", strings.Join(args, " "))
	}
	return strings.TrimSpace(string(out)), nil
}

func (d *DockerRuntime) newCmd(ctx context.Context, name string, arg ...string) *exec.Cmd {
	if d.NewCmd != nil {
		return d.NewCmd(name, arg...)
	}
	return newCommandContext(ctx, name, arg...)
}

func (d *DockerRuntime) Create(ctx context.Context, spec ContainerSpec) (string, error) {
	args := []string{"create", "--name", spec.Name}
	if spec.Network != "" {
		args = append(args, "--network", spec.Network)
	}
	for k, v := range spec.Labels {
		args = append(args, "--label", k+"="+v)
	}
	args = append(args, spec.Image)
	return d.run(ctx, args...)
}

func (d *DockerRuntime) Start(ctx context.Context, containerID string) error {
	_, err := d.run(ctx, "start", containerID)
	return err
}

func (d *DockerRuntime) Stop(ctx context.Context, containerID string) error {
	_, err := d.run(ctx, "stop", containerID)
	return err
}

func (d *DockerRuntime) Remove(ctx context.Context, containerID string) error {
	_, err := d.run(ctx, "rm", "-f", containerID)
	return err
}

type inspectEntry struct {
	State struct {
		Running bool `json:"Running"`
	} `json:"State"`
	NetworkSettings struct {
		IPAddress string `json:"IPAddress"`
	} `json:"NetworkSettings"`
}

func (d *DockerRuntime) Inspect(ctx context.Context, containerID string) (ContainerStatus, error) {
	out, err := d.run(ctx, "inspect", containerID)
	if err != nil {
		return ContainerStatus{}, cmnerr.NotFoundf("runtime: container %q not found: %v", containerID, err)
	}
	var entries []inspectEntry
	if err := jsoniter.Unmarshal([]byte(out), &entries); err != nil || len(entries) == 0 {
		return ContainerStatus{}, cmnerr.Internalf(err, "runtime: parsing docker inspect output")
	}
	e := entries[0]
	return ContainerStatus{
		ID:         containerID,
		Running:    e.State.Running,
		InternalIP: e.NetworkSettings.IPAddress,
	}, nil
}
