package orchestrator

import (
	"strings"
)

// Candidate is one weighted document entering a merge. Review biases the
// primary draft with a higher weight so its structure wins ties.
type Candidate struct {
	Provider string
	Text     string
	Weight   float64
}

// The fixed section taxonomy. Merged output is always assembled in this
// order; slots nobody filled are omitted.
type section int

const (
	secSummary section = iota
	secParameters
	secReturns
	secExamples
	secNotes
)

var sectionOrder = []section{secSummary, secParameters, secReturns, secExamples, secNotes}

var sectionTitles = map[section]string{
	secParameters: "Parameters",
	secReturns:    "Returns",
	secExamples:   "Examples",
	secNotes:      "Notes",
}

// contribution is one candidate's content for a taxonomy slot.
type contribution struct {
	text   string
	norm   string
	weight float64
	index  int // candidate position, breaks the final tie deterministically
}

// Merge synthesizes one document from several weighted candidates.
// Each candidate is segmented into the section taxonomy; per slot the
// highest-information contribution is selected as the base and
// non-duplicated content from the others is spliced in after it.
// Deterministic: identical candidates and weights produce byte-identical
// output.
func Merge(candidates []Candidate) string {
	slots := make(map[section][]contribution)

	for i, cand := range candidates {
		for sec, text := range segment(cand.Text) {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			slots[sec] = append(slots[sec], contribution{
				text:   text,
				norm:   normalizeText(text),
				weight: cand.Weight,
				index:  i,
			})
		}
	}

	var out []string
	for _, sec := range sectionOrder {
		contribs := slots[sec]
		if len(contribs) == 0 {
			continue
		}
		body := mergeSlot(contribs)
		if title, ok := sectionTitles[sec]; ok {
			out = append(out, "## "+title+"\n\n"+body)
		} else {
			out = append(out, body)
		}
	}
	return strings.Join(out, "\n\n")
}

// mergeSlot picks the base contribution and splices in novel content
// from the rest.
func mergeSlot(contribs []contribution) string {
	base := contribs[0]
	for _, c := range contribs[1:] {
		if betterBase(c, base) {
			base = c
		}
	}

	parts := []string{base.text}
	included := base.norm

	// Splice order: weight descending, then candidate order. Content
	// already covered by what is included is a trivial paraphrase and
	// gets dropped.
	rest := make([]contribution, 0, len(contribs)-1)
	for _, c := range contribs {
		if c.index != base.index || c.text != base.text {
			rest = append(rest, c)
		}
	}
	sortContributions(rest)

	for _, c := range rest {
		if c.norm == "" || strings.Contains(included, c.norm) {
			continue
		}
		parts = append(parts, c.text)
		included += " " + c.norm
	}
	return strings.Join(parts, "\n\n")
}

// betterBase reports whether a should replace b as the slot base:
// longer normalized content wins, then higher weight, then earlier
// candidate position.
func betterBase(a, b contribution) bool {
	if len(a.norm) != len(b.norm) {
		return len(a.norm) > len(b.norm)
	}
	if a.weight != b.weight {
		return a.weight > b.weight
	}
	return a.index < b.index
}

func sortContributions(contribs []contribution) {
	// Insertion sort keeps this dependency-free and stable for the tiny
	// slices involved.
	for i := 1; i < len(contribs); i++ {
		for j := i; j > 0; j-- {
			a, b := contribs[j], contribs[j-1]
			if a.weight > b.weight || (a.weight == b.weight && a.index < b.index) {
				contribs[j], contribs[j-1] = b, a
			} else {
				break
			}
		}
	}
}

// segment classifies a candidate document into the section taxonomy via
// heading detection. Text before the first recognized heading is the
// summary; unrecognized headed sections land in notes.
func segment(text string) map[section]string {
	blocks := make(map[section][]string)
	current := secSummary

	for _, line := range strings.Split(text, "\n") {
		if sec, isHeading := classifyHeading(line); isHeading {
			current = sec
			continue
		}
		blocks[current] = append(blocks[current], line)
	}

	out := make(map[section]string, len(blocks))
	for sec, lines := range blocks {
		out[sec] = strings.TrimSpace(strings.Join(lines, "\n"))
	}
	return out
}

// classifyHeading detects markdown ("## Parameters"), bold-line
// ("**Parameters**") and colon-terminated ("Parameters:") headings and
// maps them onto the taxonomy.
func classifyHeading(line string) (section, bool) {
	trimmed := strings.TrimSpace(line)

	var title string
	switch {
	case strings.HasPrefix(trimmed, "#"):
		title = strings.TrimLeft(trimmed, "# ")
	case strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**") && len(trimmed) > 4:
		title = trimmed[2 : len(trimmed)-2]
	case strings.HasSuffix(trimmed, ":") && len(trimmed) <= 40 && !strings.Contains(trimmed, " : "):
		title = strings.TrimSuffix(trimmed, ":")
	default:
		return 0, false
	}

	lower := strings.ToLower(strings.TrimSpace(title))
	switch {
	case containsAny(lower, "parameter", "argument", "args", "inputs"):
		return secParameters, true
	case containsAny(lower, "return", "result", "output"):
		return secReturns, true
	case containsAny(lower, "example", "usage"):
		return secExamples, true
	case containsAny(lower, "note", "caveat", "warning", "remark", "limitation"):
		return secNotes, true
	case containsAny(lower, "summary", "overview", "description"):
		return secSummary, true
	}
	// Heading-shaped but outside the taxonomy: treat as a notes heading
	// only for markdown headings; a short colon line is more likely prose.
	if strings.HasPrefix(trimmed, "#") {
		return secNotes, true
	}
	return 0, false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// normalizeText folds whitespace and case for duplicate detection.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
