package metadata

import (
	"regexp"
	"strings"
)

// Candidates whose titles contain these are supplements, not the book
// itself.
var supplementKeywords = []string{
	"annotation", "study guide", "summary", "analysis",
	"companion", "notes", "overview", "recap",
}

// Candidates whose titles contain these are likely multi-volume bundles.
var collectionKeywords = []string{
	"trilogy", "collection", "boxset", "box set",
	"omnibus", "complete", "series bundle",
}

const collectionPenalty = 5

// A collection-titled candidate whose overlap with the query is at least
// this ratio is treated as the correct single entry, not a bundle.
const collectionExemptionRatio = 0.7

var titleStopwords = map[string]bool{
	"the": true, "and": true, "book": true, "vol": true, "part": true,
}

var tokenRx = regexp.MustCompile(`[a-z0-9]+`)

func titleTokens(title string) []string {
	raw := tokenRx.FindAllString(strings.ToLower(title), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(t) <= 2 || titleStopwords[t] {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func containsAny(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func authorMatches(hint string, names []string) bool {
	h := strings.ToLower(hint)
	for _, name := range names {
		n := strings.ToLower(name)
		if strings.Contains(n, h) || strings.Contains(h, n) {
			return true
		}
	}
	return false
}

// PickBookCandidate selects the best match for a title/author pair among the
// provider's results. Supplement titles and author mismatches are discarded
// outright; survivors are scored by title-token overlap, with a fixed
// deduction for collection-style titles unless the overlap is close enough
// to exempt them. Ties keep the provider's original ranking. Returns nil
// when nothing survives.
func PickBookCandidate(title, authorHint string, candidates []*BookCandidate) *BookCandidate {
	if len(candidates) == 0 {
		return nil
	}

	survivors := make([]*BookCandidate, 0, len(candidates))
	for _, c := range candidates {
		if containsAny(c.Title, supplementKeywords) {
			continue
		}
		if authorHint != "" && !authorMatches(authorHint, c.AuthorNames) {
			continue
		}
		survivors = append(survivors, c)
	}
	if len(survivors) == 0 {
		return nil
	}
	if len(survivors) == 1 {
		return survivors[0]
	}

	queryTokens := titleTokens(title)

	var best *BookCandidate
	bestScore := 0
	for _, c := range survivors {
		candidateTokens := titleTokens(c.Title)

		overlap := 0
		seen := make(map[string]bool, len(candidateTokens))
		for _, t := range candidateTokens {
			seen[t] = true
		}
		for _, t := range queryTokens {
			if seen[t] {
				overlap++
			}
		}

		ratio := 0.0
		if len(queryTokens) > 0 {
			ratio = float64(overlap) / float64(len(queryTokens))
		}

		score := overlap
		if containsAny(c.Title, collectionKeywords) && ratio < collectionExemptionRatio {
			score -= collectionPenalty
		}

		if best == nil || score > bestScore {
			best = c
			bestScore = score
		}
	}

	return best
}
