package analytics

import "fmt"

// Ranks assigns competition ranks ("1224" style) to scores sorted in
// descending order. Tied scores share the rank of the first slot in the
// tie group, found by walking backward iteratively — so [10, 10, 10, 7]
// ranks as [1, 1, 1, 4]. Input order is trusted; this never re-sorts.
func Ranks(scores []int) []int {
	ranks := make([]int, len(scores))
	for i := range scores {
		j := i
		for j > 0 && scores[j-1] == scores[i] {
			j--
		}
		ranks[i] = j + 1
	}
	return ranks
}

// RankDisplay formats a 1-based rank for the leaderboard: medals for the
// podium, "#n" below it.
func RankDisplay(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("#%d", rank)
	}
}
