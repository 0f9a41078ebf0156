package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"

	"github.com/marksverdhei/park/internal/config"
	"github.com/marksverdhei/park/internal/output"
	"github.com/marksverdhei/park/internal/runner"
)

// TokenSource supplies short-lived runner registration tokens. Implemented
// by the GitHub client.
type TokenSource interface {
	RegistrationToken(ctx context.Context, owner, name string) (string, error)
}

// Engine manages runner containers through the Docker API. Containers are
// labelled with the repository identity they serve; those labels are the
// only durable record of the mapping, so everything here round-trips
// through them.
type Engine struct {
	cli    *client.Client
	tokens TokenSource
	image  string
	prefix string
	log    *output.Logger
}

// NewEngine connects to the Docker daemon and verifies it is reachable.
func NewEngine(ctx context.Context, cfg *config.Config, tokens TokenSource, log *output.Logger) (*Engine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create Docker client: %w\nIs Docker running?", err)
	}
	if _, err := cli.Ping(ctx); err != nil {
		return nil, fmt.Errorf("Docker daemon is not reachable: %w", err)
	}

	return &Engine{
		cli:    cli,
		tokens: tokens,
		image:  cfg.RunnerImage,
		prefix: cfg.LabelPrefix,
		log:    log,
	}, nil
}

// Close releases the underlying Docker client.
func (e *Engine) Close() error {
	return e.cli.Close()
}

// ListRunners implements runner.Engine. Only containers carrying the
// managed label are considered; everything else on the host is invisible
// to the reconciler.
func (e *Engine) ListRunners(ctx context.Context) ([]runner.Instance, error) {
	summaries, err := e.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", managedLabel(e.prefix)+"=true")),
	})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	instances := make([]runner.Instance, 0, len(summaries))
	for _, s := range summaries {
		inst, err := instanceFromContainer(e.prefix, s.ID, s.Labels, s.State)
		if err != nil {
			// Managed label present but identity labels corrupt: treat as
			// foreign, never stop it.
			e.log.Warnf("ignoring container %.12s: %v", s.ID, err)
			continue
		}
		instances = append(instances, inst)
	}
	return instances, nil
}

// StartRunner implements runner.Engine. It fetches a fresh registration
// token, creates the runner container and starts it. A missing image is
// pulled once and the create retried.
func (e *Engine) StartRunner(ctx context.Context, id runner.Identity) (string, error) {
	token, err := e.tokens.RegistrationToken(ctx, id.Owner, id.Name)
	if err != nil {
		return "", err
	}

	conf, host := runnerContainerConfig(e.prefix, e.image, id, token)
	name := containerName(e.prefix, id)

	resp, err := e.cli.ContainerCreate(ctx, conf, host, nil, nil, name)
	if errdefs.IsNotFound(err) {
		e.log.Infof("pulling image %s", e.image)
		if err := e.pullImage(ctx); err != nil {
			return "", err
		}
		resp, err = e.cli.ContainerCreate(ctx, conf, host, nil, nil, name)
	}
	if err != nil {
		return "", fmt.Errorf("create container %s: %w", name, err)
	}

	if err := e.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("start container %s: %w", name, err)
	}
	e.log.Debugf("started container %.12s for %s", resp.ID, id)
	return resp.ID, nil
}

// StopRunner implements runner.Engine. Stopping an already-gone container
// is a no-op so that overlapping runs stay idempotent.
func (e *Engine) StopRunner(ctx context.Context, handle string) error {
	timeout := stopTimeoutSeconds
	err := e.cli.ContainerStop(ctx, handle, container.StopOptions{Timeout: &timeout})
	if errdefs.IsNotFound(err) {
		e.log.Debugf("container %.12s already gone", handle)
		return nil
	}
	if err != nil {
		return fmt.Errorf("stop container %.12s: %w", handle, err)
	}
	return nil
}

func (e *Engine) pullImage(ctx context.Context) error {
	reader, err := e.cli.ImagePull(ctx, e.image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", e.image, err)
	}
	defer reader.Close()
	// Drain the progress stream; the pull completes when it ends.
	if err := drain(reader); err != nil {
		return fmt.Errorf("pull image %s: %w", e.image, err)
	}
	return nil
}
