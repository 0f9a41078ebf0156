package github

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/marksverdhei/park/internal/output"
	"github.com/marksverdhei/park/internal/runner"
)

// enrichLimit bounds concurrent per-repository metadata fetches so a large
// account does not hammer the API.
const enrichLimit = 8

// Directory adapts the GitHub client to the reconciler's repository
// directory contract: it lists every repository owned by Owner and
// annotates each one with the metadata the activity predicates consume.
type Directory struct {
	Client *Client
	Owner  string

	// InspectWorkflows controls whether workflow files are fetched and
	// scanned for self-hosted runner usage. When false, SelfHosted is
	// reported true for any repository with an active workflow, which
	// keeps API usage low at the cost of servicing repos that only use
	// hosted runners.
	InspectWorkflows bool

	Log *output.Logger
}

// ListRepos implements runner.Directory. Listing failures are fatal;
// per-repository enrichment failures degrade that repository to "no
// workflow activity" rather than failing the snapshot, since starting
// nothing for it is the safe direction.
func (d *Directory) ListRepos(ctx context.Context) ([]runner.Repo, error) {
	// The login decides which listing endpoint applies, so it is resolved
	// even when an owner is configured.
	login, err := d.Client.AuthenticatedUser(ctx)
	if err != nil {
		return nil, err
	}
	owner := d.Owner
	if owner == "" {
		owner = login
		d.Log.Debugf("resolved owner to authenticated user %s", owner)
	}

	listed, err := d.Client.listRepositories(ctx, owner, login)
	if err != nil {
		return nil, err
	}

	repos := make([]runner.Repo, len(listed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichLimit)

	for i, item := range listed {
		if item.Archived || item.Disabled {
			continue
		}
		id, err := runner.ParseIdentity(item.FullName)
		if err != nil {
			d.Log.Warnf("skipping repository with unparsable name %q", item.FullName)
			continue
		}

		i, item := i, item
		g.Go(func() error {
			repo := runner.Repo{Identity: id, PushedAt: item.PushedAt}
			d.enrich(gctx, &repo)
			repos[i] = repo
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := repos[:0]
	for _, r := range repos {
		if !r.Identity.IsZero() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (d *Directory) enrich(ctx context.Context, repo *runner.Repo) {
	owner, name := repo.Identity.Owner, repo.Identity.Name

	workflows, err := d.Client.listWorkflows(ctx, owner, name)
	if err != nil {
		d.Log.Debugf("%s: workflow listing failed: %v", repo.Identity, err)
		return
	}

	active := workflows[:0]
	for _, wf := range workflows {
		if wf.State == "active" {
			active = append(active, wf)
		}
	}
	if len(active) == 0 {
		return
	}
	repo.WorkflowsEnabled = true

	if d.InspectWorkflows {
		repo.SelfHosted = d.anySelfHosted(ctx, owner, name, active)
	} else {
		repo.SelfHosted = true
	}

	last, err := d.Client.latestWorkflowRun(ctx, owner, name)
	if err != nil {
		d.Log.Debugf("%s: workflow run lookup failed: %v", repo.Identity, err)
		return
	}
	repo.LastWorkflowRun = last
}

func (d *Directory) anySelfHosted(ctx context.Context, owner, name string, workflows []workflow) bool {
	for _, wf := range workflows {
		content, err := d.Client.fileContent(ctx, owner, name, wf.Path)
		if err != nil {
			d.Log.Debugf("%s/%s: fetching %s failed: %v", owner, name, wf.Path, err)
			continue
		}
		if workflowUsesSelfHosted(content) {
			d.Log.Debugf("%s/%s: %s targets self-hosted runners", owner, name, wf.Path)
			return true
		}
	}
	return false
}

// workflowUsesSelfHosted reports whether a workflow file has a job with
// "self-hosted" among its runs-on labels. Files that fail to parse as YAML
// fall back to a plain substring scan.
func workflowUsesSelfHosted(content []byte) bool {
	var doc struct {
		Jobs map[string]struct {
			RunsOn yaml.Node `yaml:"runs-on"`
		} `yaml:"jobs"`
	}
	if err := yaml.Unmarshal(content, &doc); err != nil || len(doc.Jobs) == 0 {
		return strings.Contains(string(content), "self-hosted")
	}

	for _, job := range doc.Jobs {
		for _, label := range runsOnLabels(job.RunsOn) {
			if label == "self-hosted" {
				return true
			}
		}
	}
	return false
}

func runsOnLabels(node yaml.Node) []string {
	switch node.Kind {
	case yaml.ScalarNode:
		return []string{node.Value}
	case yaml.SequenceNode:
		labels := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			labels = append(labels, item.Value)
		}
		return labels
	case yaml.MappingNode:
		// Group form: {group: ..., labels: [...]}
		var labels []string
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "labels" {
				labels = append(labels, runsOnLabels(*node.Content[i+1])...)
			}
		}
		return labels
	}
	return nil
}
