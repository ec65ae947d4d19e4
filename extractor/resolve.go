package extractor

import (
	"cmp"
	"slices"

	"github.com/az-ai-labs/numrec/pattern"
)

// candidate is one rule match before resolution.
type candidate struct {
	start int
	end   int
	tag   Tag
	order int // index of the producing rule in the RuleSet
	ref   int // index of the source result, for Merge
}

// resolveOverlaps removes overlapping candidates. When two candidates
// overlap:
//   - The one starting first wins.
//   - At the same start, the longer one wins.
//   - At equal spans, the one from the earlier rule wins.
//
// Returns candidates sorted by start offset.
func resolveOverlaps(cands []candidate) []candidate {
	if len(cands) <= 1 {
		return cands
	}

	slices.SortStableFunc(cands, func(a, b candidate) int {
		if c := cmp.Compare(a.start, b.start); c != 0 {
			return c
		}
		if c := cmp.Compare(b.end-b.start, a.end-a.start); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})

	result := make([]candidate, 0, len(cands))
	maxEnd := 0

	for _, c := range cands {
		if c.start >= maxEnd {
			result = append(result, c)
			if len(result) >= maxResults {
				break
			}
			maxEnd = c.end
		}
	}

	return result
}

// filterAmbiguity drops every candidate whose own text matches a filter's
// trigger while one of the filter's suppress matches over the whole text
// overlaps it. Suppress matches are computed once per filter, and only when
// some candidate triggers it.
func (e *Extractor) filterAmbiguity(sc *pattern.Scanner, kept []candidate) []candidate {
	if len(e.filters) == 0 || len(kept) == 0 {
		return kept
	}
	s := sc.Text()

	for _, f := range e.filters {
		var (
			suppress []pattern.Span
			scanned  bool
		)
		kept = slices.DeleteFunc(kept, func(c candidate) bool {
			if !f.Trigger.MatchString(s[c.start:c.end]) {
				return false
			}
			if !scanned {
				// A timed-out suppress scan keeps what it found.
				suppress, _ = sc.FindAll(f.Suppress)
				scanned = true
			}
			return overlapsAny(c, suppress)
		})
		if len(kept) == 0 {
			break
		}
	}
	return kept
}

// overlapsAny reports whether c intersects any span.
func overlapsAny(c candidate, spans []pattern.Span) bool {
	for _, sp := range spans {
		if sp.Start < c.end && sp.End > c.start {
			return true
		}
	}
	return false
}

// Merge combines the results of several extractors over the same text into
// one non-overlapping list sorted by Start. Overlaps resolve as within a
// single extractor; on equal spans the result from the earlier list wins.
func Merge(lists ...[]Result) []Result {
	var (
		all   []Result
		cands []candidate
	)
	for i, list := range lists {
		for _, r := range list {
			cands = append(cands, candidate{start: r.Start, end: r.End, order: i, ref: len(all)})
			all = append(all, r)
		}
	}
	if len(cands) == 0 {
		return nil
	}
	kept := resolveOverlaps(cands)
	out := make([]Result, len(kept))
	for i, c := range kept {
		out[i] = all[c.ref]
	}
	return out
}
