// internal/matcher/matcher.go
package matcher

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	apperrors "gematria-workers/internal/common/errors"
	"gematria-workers/internal/gematria"
)

// FindMatches ranks, for every input token, the corpus entries whose values
// fall within tolerance on at least one of systems. It runs sequentially and
// orders groups by match count.
func FindMatches(
	inputs []InputToken,
	systems []gematria.NumeralSystem,
	corpus []CorpusEntry,
	tolerance int,
	maxResults int,
) ([]MatchGroup, error) {
	return FindMatchesWithOptions(context.Background(), inputs, systems, corpus, Options{
		Tolerance:  tolerance,
		MaxResults: maxResults,
	})
}

// FindMatchesWithOptions is FindMatches with ranking and parallelism
// control. The result does not depend on opts.Parallelism.
func FindMatchesWithOptions(
	ctx context.Context,
	inputs []InputToken,
	systems []gematria.NumeralSystem,
	corpus []CorpusEntry,
	opts Options,
) ([]MatchGroup, error) {
	if err := validate(systems, opts); err != nil {
		return nil, err
	}
	systems = gematria.Unique(systems)

	groups := make([]MatchGroup, len(inputs))
	if opts.Parallelism < 2 || len(inputs) < 2 {
		for i := range inputs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			groups[i] = matchOne(inputs[i], systems, corpus, opts)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Parallelism)
		for i := range inputs {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				groups[i] = matchOne(inputs[i], systems, corpus, opts)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	SortGroups(groups, opts.Ranking)
	return groups, nil
}

func validate(systems []gematria.NumeralSystem, opts Options) error {
	if len(systems) == 0 {
		return apperrors.NewInvalidArgumentError("systems", "at least one numeral system is required")
	}
	for _, s := range systems {
		if !s.Valid() {
			return apperrors.NewInvalidArgumentError("systems", fmt.Sprintf("unknown numeral system %d", int(s)))
		}
	}
	if opts.Tolerance < 0 {
		return apperrors.NewInvalidArgumentError("tolerance", fmt.Sprintf("must be >= 0, got %d", opts.Tolerance))
	}
	if opts.MaxResults < 0 {
		return apperrors.NewInvalidArgumentError("maxResults", fmt.Sprintf("must be >= 0, got %d", opts.MaxResults))
	}
	if !opts.Ranking.Valid() {
		return apperrors.NewInvalidArgumentError("ranking", fmt.Sprintf("unknown ranking %q", opts.Ranking))
	}
	return nil
}

func matchOne(input InputToken, systems []gematria.NumeralSystem, corpus []CorpusEntry, opts Options) MatchGroup {
	inputValues := make(gematria.ValueVector, len(systems))
	for _, s := range systems {
		inputValues[s] = valueOf(input.Token, input.Values, s)
	}

	var candidates []MatchCandidate
	for _, entry := range corpus {
		if entry.Token == input.Token {
			continue
		}

		score, total := 0, 0
		for _, s := range systems {
			diff := abs(inputValues[s] - valueOf(entry.Token, entry.Values, s))
			if diff <= opts.Tolerance {
				score++
			}
			total += diff
		}
		if score == 0 {
			continue
		}

		candidates = append(candidates, MatchCandidate{
			Token:           entry.Token,
			Values:          entry.Values,
			SimilarityScore: score,
			TotalDifference: total,
			Length:          len([]rune(entry.Token)),
		})
	}

	// Stable so that full ties keep corpus order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return better(candidates[i], candidates[j])
	})

	if len(candidates) > opts.MaxResults {
		candidates = candidates[:opts.MaxResults]
	}
	if candidates == nil {
		candidates = []MatchCandidate{}
	}

	return MatchGroup{
		InputToken:  input.Token,
		InputValues: inputValues,
		Matches:     candidates,
	}
}

// SortGroups orders groups in place. Ties keep their current order.
func SortGroups(groups []MatchGroup, ranking Ranking) {
	switch ranking {
	case RankByBestMatch:
		sort.SliceStable(groups, func(i, j int) bool {
			a, b := groups[i].Matches, groups[j].Matches
			if len(a) == 0 || len(b) == 0 {
				return len(a) > len(b)
			}
			return better(a[0], b[0])
		})
	default:
		sort.SliceStable(groups, func(i, j int) bool {
			return len(groups[i].Matches) > len(groups[j].Matches)
		})
	}
}

// IsExactMatch reports whether candidate equals the group's input on every
// system the input was valued under.
func IsExactMatch(group MatchGroup, candidate MatchCandidate) bool {
	for s, v := range group.InputValues {
		cv, ok := candidate.Values[s]
		if !ok || cv != v {
			return false
		}
	}
	return true
}

// CountMatches returns the total number of candidates across groups.
func CountMatches(groups []MatchGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Matches)
	}
	return n
}

func better(a, b MatchCandidate) bool {
	if a.SimilarityScore != b.SimilarityScore {
		return a.SimilarityScore > b.SimilarityScore
	}
	return a.TotalDifference < b.TotalDifference
}

// valueOf reads s from values, computing it from token when absent.
func valueOf(token string, values gematria.ValueVector, s gematria.NumeralSystem) int {
	if v, ok := values[s]; ok {
		return v
	}
	return gematria.ComputeValue(token, s)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
