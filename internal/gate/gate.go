// Package gate implements the domain gate: the policy that refuses to
// invoke generation when retrieval confidence is too low.
//
// It runs strictly after retrieval and strictly before any generation
// call; its whole purpose is to avoid paying for a model call when there
// is no grounding. A refusal is a successful response with a canned
// localized message, not an error.
package gate

// Decision is the outcome of the domain gate.
type Decision int

const (
	// Proceed means retrieval found enough grounding to call the model.
	Proceed Decision = iota
	// Refuse means the query is not answerable from in-domain data.
	Refuse
)

// String returns the decision name for logging.
func (d Decision) String() string {
	if d == Refuse {
		return "refuse"
	}
	return "proceed"
}

// Decide evaluates the similarity scores of all retrieved records.
//
// best is the maximum similarity (0 when nothing was retrieved) and
// matchCount the number of records with a positive score. In strict mode
// the gate refuses when best falls below minSimilarity or when nothing
// matched at all; outside strict mode it always proceeds.
func Decide(similarities []float64, strictMode bool, minSimilarity float64) Decision {
	if !strictMode {
		return Proceed
	}

	var best float64
	matchCount := 0
	for _, s := range similarities {
		if s > best {
			best = s
		}
		if s > 0 {
			matchCount++
		}
	}

	if best < minSimilarity || matchCount == 0 {
		return Refuse
	}
	return Proceed
}
