package runner

import "sort"

// BuildPlan diffs desired repositories against observed instances and
// returns the actions that converge one onto the other. It is pure and
// deterministic: identical inputs always produce the identical plan, which
// is what makes replay-style testing of the reconciler possible.
//
// Rules:
//   - an instance without a recovered identity is foreign and is never
//     touched, in particular never stopped
//   - an identity with any in-flight (starting/stopping) instance is left
//     alone this run; the transition finishes on its own and the next run
//     re-diffs
//   - a desired repository with a running instance yields nothing; with no
//     live instance it yields a start
//   - a running instance whose repository is no longer desired yields a stop
//   - duplicate running instances for one identity keep the first (by
//     handle) and stop the rest, desired or not
func BuildPlan(desired []DesiredRepo, active []Instance) Plan {
	wanted := make(map[Identity]bool, len(desired))
	for _, d := range desired {
		wanted[d.Identity] = true
	}

	byIdentity := make(map[Identity][]Instance)
	for _, inst := range active {
		if inst.Identity.IsZero() {
			continue
		}
		byIdentity[inst.Identity] = append(byIdentity[inst.Identity], inst)
	}

	identities := make([]Identity, 0, len(byIdentity))
	for id := range byIdentity {
		identities = append(identities, id)
	}
	sortIdentities(identities)

	var plan Plan
	covered := make(map[Identity]bool, len(byIdentity))

	for _, id := range identities {
		instances := byIdentity[id]
		sort.Slice(instances, func(i, j int) bool { return instances[i].Handle < instances[j].Handle })

		inFlight := false
		var running []Instance
		for _, inst := range instances {
			if inst.State.InFlight() {
				inFlight = true
			}
			if inst.State == StateRunning {
				running = append(running, inst)
			}
		}

		if inFlight {
			// A transition is already racing; touching this identity now
			// risks duplicate starts or stopping a container that is
			// half-registered. Re-evaluated next run. Only desired
			// identities count as unchanged; an undesired one is pending
			// teardown, not in sync.
			if wanted[id] {
				covered[id] = true
				plan.Unchanged++
			}
			continue
		}

		if wanted[id] {
			covered[id] = true
			if len(running) == 0 {
				// Only dead instances remain; they do not suppress a start.
				plan.Starts = append(plan.Starts, Action{Op: OpStart, Identity: id})
				continue
			}
			plan.Unchanged++
			for _, extra := range running[1:] {
				inst := extra
				plan.Stops = append(plan.Stops, Action{Op: OpStop, Identity: id, Instance: &inst})
			}
			continue
		}

		for _, r := range running {
			inst := r
			plan.Stops = append(plan.Stops, Action{Op: OpStop, Identity: id, Instance: &inst})
		}
	}

	for _, d := range sortedDesired(desired) {
		if !covered[d.Identity] {
			plan.Starts = append(plan.Starts, Action{Op: OpStart, Identity: d.Identity})
		}
	}

	sort.Slice(plan.Starts, func(i, j int) bool {
		return identityLess(plan.Starts[i].Identity, plan.Starts[j].Identity)
	})
	sort.Slice(plan.Stops, func(i, j int) bool {
		a, b := plan.Stops[i], plan.Stops[j]
		if a.Identity != b.Identity {
			return identityLess(a.Identity, b.Identity)
		}
		return a.Instance.Handle < b.Instance.Handle
	})
	return plan
}

func sortedDesired(desired []DesiredRepo) []DesiredRepo {
	out := make([]DesiredRepo, len(desired))
	copy(out, desired)
	sort.Slice(out, func(i, j int) bool { return identityLess(out[i].Identity, out[j].Identity) })
	return out
}

func sortIdentities(ids []Identity) {
	sort.Slice(ids, func(i, j int) bool { return identityLess(ids[i], ids[j]) })
}

func identityLess(a, b Identity) bool {
	if a.Owner != b.Owner {
		return a.Owner < b.Owner
	}
	return a.Name < b.Name
}
