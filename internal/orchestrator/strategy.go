package orchestrator

import (
	"fmt"

	"github.com/biodoia/intellidoc/internal/providers"
)

// Strategy selects how provider outputs are combined. The set is closed:
// dispatch is an exhaustive switch, so a new strategy is a
// compile-time-checked extension point.
type Strategy string

const (
	// StrategyConsensus sends the identical prompt to every provider and
	// merges all successful answers into one document.
	StrategyConsensus Strategy = "consensus"

	// StrategySpecialization assigns fixed roles (overview, technical,
	// examples) across providers and concatenates the role sections.
	StrategySpecialization Strategy = "specialization"

	// StrategyReview has a primary provider draft, the others critique,
	// and folds the critiques back into the draft.
	StrategyReview Strategy = "review"

	// StrategyVoting generates independently everywhere and selects the
	// single highest-quality response verbatim.
	StrategyVoting Strategy = "voting"
)

// ParseStrategy validates a strategy enumerator from configuration.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyConsensus, StrategySpecialization, StrategyReview, StrategyVoting:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown collaboration strategy %q", s)
}

// Valid reports whether the strategy is a known enumerator.
func (s Strategy) Valid() bool {
	_, err := ParseStrategy(string(s))
	return err == nil
}

// Role is a specialization slot. Section order is fixed: overview,
// technical, examples.
type Role string

const (
	RoleOverview  Role = "overview"
	RoleTechnical Role = "technical"
	RoleExamples  Role = "examples"
)

// roleOrder is the fixed assembly order for specialization output.
var roleOrder = []Role{RoleOverview, RoleTechnical, RoleExamples}

// roleTitles are the section headers inserted between role outputs.
var roleTitles = map[Role]string{
	RoleOverview:  "Overview",
	RoleTechnical: "Technical Details",
	RoleExamples:  "Examples",
}

// strategyOutcome is what a strategy hands back to the orchestrator:
// the combined text plus the successful responses that produced it,
// in provider configuration order with unique provider identifiers.
type strategyOutcome struct {
	text      string
	responses []*providers.ModelResponse
}
