package docker

import (
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"

	"github.com/marksverdhei/park/internal/runner"
)

// Grace period before a stop escalates to SIGKILL. Runner processes
// deregister on SIGTERM, so give them a moment.
const stopTimeoutSeconds = 30

const runnerLabels = "self-hosted,docker"

func managedLabel(prefix string) string { return prefix + ".managed" }
func ownerLabel(prefix string) string   { return prefix + ".repo.owner" }
func nameLabel(prefix string) string    { return prefix + ".repo.name" }

// containerName builds the advisory container name. Labels, not the name,
// are authoritative for identity.
func containerName(prefix string, id runner.Identity) string {
	return fmt.Sprintf("%s-runner-%s--%s", prefix, id.Owner, id.Name)
}

// runnerContainerConfig assembles the create payload for a runner
// container: the identity labels, the registration environment, and the
// config-then-run entrypoint the official runner image expects. AutoRemove
// keeps dead runners from accumulating on the host.
func runnerContainerConfig(prefix, img string, id runner.Identity, token string) (*container.Config, *container.HostConfig) {
	name := containerName(prefix, id)
	conf := &container.Config{
		Image: img,
		Env: []string{
			"RUNNER_NAME=" + name,
			"RUNNER_REPOSITORY=" + id.String(),
			"REG_TOKEN=" + token,
		},
		Cmd: []string{
			"sh", "-c",
			fmt.Sprintf("./config.sh --url https://github.com/%s --token $REG_TOKEN --labels %s --unattended --ephemeral && ./run.sh",
				id, runnerLabels),
		},
		Labels: map[string]string{
			managedLabel(prefix): "true",
			ownerLabel(prefix):   id.Owner,
			nameLabel(prefix):    id.Name,
		},
	}
	host := &container.HostConfig{
		AutoRemove: true,
	}
	return conf, host
}

// instanceFromContainer recovers a runner.Instance from engine-reported
// metadata. It fails when the identity labels are missing or invalid.
func instanceFromContainer(prefix, id string, labels map[string]string, state string) (runner.Instance, error) {
	owner := labels[ownerLabel(prefix)]
	name := labels[nameLabel(prefix)]
	identity, err := runner.ParseIdentity(owner + "/" + name)
	if err != nil {
		return runner.Instance{}, err
	}
	return runner.Instance{
		Identity: identity,
		Handle:   id,
		State:    mapState(state),
	}, nil
}

// mapState folds Docker's container states onto the reconciler's coarser
// lifecycle. Paused and removing containers count as in-flight so the
// reconciler leaves them alone for the run.
func mapState(state string) runner.InstanceState {
	switch state {
	case "running":
		return runner.StateRunning
	case "created", "restarting":
		return runner.StateStarting
	case "removing", "paused":
		return runner.StateStopping
	default: // exited, dead
		return runner.StateDead
	}
}

func drain(r io.Reader) error {
	_, err := io.Copy(io.Discard, r)
	return err
}
