package foldx

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"
)

// containerWorkDir is where the scratch area is mounted in the container.
const containerWorkDir = "/work"

// DockerTool runs FoldX inside a container with the work directory
// bind-mounted at /work.
type DockerTool struct {
	Image       string
	Binary      string
	Packaging   Packaging
	Options     Options
	Timeout     time.Duration
	CPULimit    float64
	MemoryLimit int64
	UserID      string
}

func (t *DockerTool) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	args, err := BuildArgs(t.Packaging, inv, t.Options)
	if err != nil {
		return nil, err
	}
	workDir, err := filepath.Abs(inv.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("resolving work dir: %w", err)
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	defer cli.Close()

	initTrue := true
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{{
			Type:   mount.TypeBind,
			Source: workDir,
			Target: containerWorkDir,
		}},
		Init: &initTrue,
	}
	if t.CPULimit > 0 {
		hostCfg.NanoCPUs = int64(t.CPULimit * 1e9)
	}
	if t.MemoryLimit > 0 {
		hostCfg.Memory = t.MemoryLimit
	}

	binary := t.Binary
	if binary == "" {
		binary = "foldx"
	}
	containerCfg := &container.Config{
		Image:      t.Image,
		Cmd:        append([]string{binary}, args...),
		WorkingDir: containerWorkDir,
		Labels:     map[string]string{"foldrun": "true"},
	}
	if t.UserID != "" {
		containerCfg.User = t.UserID
	}

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("creating container: %w", err)
	}
	containerID := createResp.ID
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	start := time.Now()
	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("starting container: %w", err)
	}

	waitCtx := ctx
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	waitResult := cli.ContainerWait(waitCtx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-waitResult.Error:
			if err == nil {
				// closed without error; keep waiting for the status
				waitResult.Error = nil
				continue
			}
			cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
			saveContainerLog(cli, containerID, inv)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return &Result{ExitCode: 124, TimedOut: true, Duration: time.Since(start)}, nil
		case status := <-waitResult.Result:
			saveContainerLog(cli, containerID, inv)
			return &Result{ExitCode: int(status.StatusCode), Duration: time.Since(start)}, nil
		}
	}
}

// saveContainerLog copies the container output next to the model, like the
// local runtime does.
func saveContainerLog(cli *client.Client, containerID string, inv Invocation) {
	logReader, err := cli.ContainerLogs(context.Background(), containerID, client.ContainerLogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil || logReader == nil {
		return
	}
	defer logReader.Close()
	data, _ := io.ReadAll(logReader)
	os.WriteFile(filepath.Join(inv.WorkDir, LogFileName(inv)), data, 0o644)
}

// HostUser returns uid:gid of the current process so artifacts written in
// the container stay owned by the caller.
func HostUser() string {
	return fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid())
}
