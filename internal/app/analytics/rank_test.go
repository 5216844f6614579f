package analytics

import "testing"

func TestRanks(t *testing.T) {
	cases := []struct {
		name   string
		scores []int
		want   []int
	}{
		{"no ties", []int{30, 20, 10}, []int{1, 2, 3}},
		{"three-way tie", []int{10, 10, 10, 7}, []int{1, 1, 1, 4}},
		{"tie in the middle", []int{12, 8, 8, 5}, []int{1, 2, 2, 4}},
		{"all tied", []int{5, 5, 5}, []int{1, 1, 1}},
		{"all zero", []int{0, 0}, []int{1, 1}},
		{"single", []int{42}, []int{1}},
		{"empty", nil, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Ranks(c.scores)
			if len(got) != len(c.want) {
				t.Fatalf("Ranks(%v) = %v, want %v", c.scores, got, c.want)
			}
			for i := range c.want {
				if got[i] != c.want[i] {
					t.Fatalf("Ranks(%v) = %v, want %v", c.scores, got, c.want)
				}
			}
		})
	}
}

func TestRankDisplay(t *testing.T) {
	cases := []struct {
		rank int
		want string
	}{
		{1, "🥇"},
		{2, "🥈"},
		{3, "🥉"},
		{4, "#4"},
		{11, "#11"},
	}
	for _, c := range cases {
		if got := RankDisplay(c.rank); got != c.want {
			t.Errorf("RankDisplay(%d) = %s, want %s", c.rank, got, c.want)
		}
	}
}
