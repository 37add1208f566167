package orchestrator

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/biodoia/intellidoc/internal/providers"
)

// ScorerConfig holds the confidence policy knobs. The weights are tunable
// defaults, not a contract; the 0.6/0.4 split favors agreement because
// corroboration across independent models is the stronger signal.
type ScorerConfig struct {
	// AgreementWeight scales the inter-model agreement signal.
	AgreementWeight float64

	// QualityWeight scales the mean per-response quality signal.
	QualityWeight float64

	// NeutralAgreement is the agreement value assumed when only one
	// response survived: reduced but non-zero trust, never 0 or 1.
	NeutralAgreement float64

	// PenaltyFloor bounds the partial-failure multiplier from below so a
	// lone survivor in a large provider set is not zeroed out.
	PenaltyFloor float64
}

// DefaultScorerConfig returns the scoring defaults.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		AgreementWeight:  0.6,
		QualityWeight:    0.4,
		NeutralAgreement: 0.5,
		PenaltyFloor:     0.3,
	}
}

// Scorer computes the deterministic confidence estimate attached to every
// CollaborationResult.
type Scorer struct {
	config ScorerConfig
}

// NewScorer creates a scorer, normalizing out-of-range config values.
func NewScorer(config ScorerConfig) *Scorer {
	def := DefaultScorerConfig()
	if config.AgreementWeight <= 0 {
		config.AgreementWeight = def.AgreementWeight
	}
	if config.QualityWeight <= 0 {
		config.QualityWeight = def.QualityWeight
	}
	if config.NeutralAgreement <= 0 || config.NeutralAgreement >= 1 {
		config.NeutralAgreement = def.NeutralAgreement
	}
	if config.PenaltyFloor <= 0 || config.PenaltyFloor > 1 {
		config.PenaltyFloor = def.PenaltyFloor
	}
	return &Scorer{config: config}
}

// Score combines agreement and quality into a confidence value in [0,1],
// then applies the partial-failure penalty: confidence with k of n
// providers succeeded never exceeds what the same responses plus one more
// identical success would earn.
func (s *Scorer) Score(responses []*providers.ModelResponse, totalEnabled int) float64 {
	if len(responses) == 0 {
		return 0
	}

	agreement := s.config.NeutralAgreement
	if len(responses) > 1 {
		texts := make([]string, len(responses))
		for i, r := range responses {
			texts[i] = r.Text
		}
		agreement = pairwiseAgreement(texts)
	}

	var qualitySum float64
	for _, r := range responses {
		qualitySum += s.Quality(r.Text)
	}
	avgQuality := qualitySum / float64(len(responses))

	base := clamp01(s.config.AgreementWeight*agreement + s.config.QualityWeight*avgQuality)

	penalty := 1.0
	if totalEnabled > len(responses) {
		penalty = float64(len(responses)) / float64(totalEnabled)
		if penalty < s.config.PenaltyFloor {
			penalty = s.config.PenaltyFloor
		}
	}

	return clamp01(base * penalty)
}

// Quality is the structural completeness heuristic, also used directly by
// the voting strategy to rank candidates. Components: length adequacy,
// presence of expected sections, absence of truncation markers.
func (s *Scorer) Quality(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	// Length adequacy saturates at ~300 characters: enough room for a
	// summary plus one structured section.
	length := float64(len(trimmed)) / 300.0
	if length > 1 {
		length = 1
	}

	structure := structureScore(trimmed)

	truncation := 1.0
	if truncated(trimmed) {
		truncation = 0.3
	}

	return clamp01(0.4*length + 0.3*structure + 0.3*truncation)
}

// structureScore rewards documents that segment into the expected
// taxonomy rather than arriving as one undifferentiated blob.
func structureScore(text string) float64 {
	segments := segment(text)

	score := 0.0
	if strings.TrimSpace(segments[secSummary]) != "" {
		score += 0.4
	}
	for _, sec := range []section{secParameters, secReturns, secExamples} {
		if strings.TrimSpace(segments[sec]) != "" {
			score += 0.2
		}
	}
	return clamp01(score)
}

// truncated detects responses cut off mid-stream: trailing ellipsis or an
// unclosed code fence.
func truncated(text string) bool {
	if strings.HasSuffix(text, "...") || strings.HasSuffix(text, "…") {
		return true
	}
	if strings.Count(text, "```")%2 != 0 {
		return true
	}
	return false
}

// pairwiseAgreement is the mean similarity ratio over all candidate
// pairs, computed on whitespace/case-normalized token sequences.
func pairwiseAgreement(texts []string) float64 {
	tokens := make([][]string, len(texts))
	for i, t := range texts {
		tokens[i] = strings.Fields(strings.ToLower(t))
	}

	var sum float64
	var pairs int
	for i := 0; i < len(tokens); i++ {
		for j := i + 1; j < len(tokens); j++ {
			sum += difflib.NewMatcher(tokens[i], tokens[j]).Ratio()
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
