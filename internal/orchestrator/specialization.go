package orchestrator

import (
	"context"
	"strings"

	"github.com/biodoia/intellidoc/internal/providers"
)

// roleAssignment pairs a role with the provider asked to fill it. One
// role may have several assigned providers (more providers than roles)
// and one provider may serve several roles (fewer providers than roles).
type roleAssignment struct {
	role     Role
	provider providers.Provider
}

// assignRoles distributes roles across providers round-robin in
// provider-list order, wrapping whichever side is shorter.
func assignRoles(enabled []providers.Provider) []roleAssignment {
	n := len(roleOrder)
	if len(enabled) > n {
		n = len(enabled)
	}

	assignments := make([]roleAssignment, 0, n)
	for i := 0; i < n; i++ {
		assignments = append(assignments, roleAssignment{
			role:     roleOrder[i%len(roleOrder)],
			provider: enabled[i%len(enabled)],
		})
	}
	return assignments
}

// runSpecialization asks each provider for its role's slice of the
// documentation and concatenates the role sections in fixed order.
// A failed role is omitted entirely: no placeholder heading.
func (o *Orchestrator) runSpecialization(ctx context.Context, task *DocumentationTask, enabled []providers.Provider) (*strategyOutcome, error) {
	assignments := assignRoles(enabled)

	calls := make([]providerCall, len(assignments))
	for i, a := range assignments {
		calls[i] = providerCall{
			key:      string(a.role) + "/" + a.provider.Name(),
			provider: a.provider,
			req:      buildRoleRequest(task, a.role),
		}
	}

	results := o.fanOut(ctx, calls)

	// Per role, the first successful response in assignment order wins;
	// extra providers on the same role are redundancy, not extra sections.
	roleText := make(map[Role]*providers.ModelResponse)
	var failures []error
	for i, a := range assignments {
		res := results[calls[i].key]
		if res.err != nil {
			failures = append(failures, res.err)
			continue
		}
		if _, filled := roleText[a.role]; !filled {
			roleText[a.role] = res.resp
		}
	}

	if len(roleText) == 0 {
		return nil, &StrategyError{Strategy: StrategySpecialization, Failures: failures}
	}

	var sections []string
	for _, role := range roleOrder {
		resp, ok := roleText[role]
		if !ok {
			continue
		}
		sections = append(sections, "## "+roleTitles[role]+"\n\n"+strings.TrimSpace(resp.Text))
	}

	// Contributing responses: provider configuration order, one entry per
	// provider even when it filled several roles.
	seen := make(map[string]bool)
	var responses []*providers.ModelResponse
	for _, p := range enabled {
		for _, role := range roleOrder {
			resp, ok := roleText[role]
			if ok && resp.Provider == p.Name() && !seen[p.Name()] {
				seen[p.Name()] = true
				responses = append(responses, resp)
			}
		}
	}

	return &strategyOutcome{
		text:      strings.Join(sections, "\n\n"),
		responses: responses,
	}, nil
}
