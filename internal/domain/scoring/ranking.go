package scoring

import (
	"math"
	"sort"
)

const scoreEpsilon = 1e-9

// Rank orders scores in place and assigns rank numbers. Excluded companies
// sort last in their original order and receive no rank. Equal global scores
// are ordered by ascending company id. When ranked is false the order is
// still computed but every rank stays 0.
func Rank(scores []CompanyScore, ranked bool) {
	sort.SliceStable(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.Excluded != b.Excluded {
			return !a.Excluded
		}
		if a.Excluded {
			return false
		}
		if math.Abs(a.GlobalScore-b.GlobalScore) > scoreEpsilon {
			return a.GlobalScore > b.GlobalScore
		}
		return a.CompanyID < b.CompanyID
	})

	rank := 0
	for i := range scores {
		scores[i].Rank = 0
		if scores[i].Excluded || !ranked {
			continue
		}
		rank++
		scores[i].Rank = rank
	}
}
