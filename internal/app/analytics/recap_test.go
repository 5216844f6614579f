package analytics

import (
	"testing"

	"github.com/recap-crew/recap/internal/domain"
)

func recapFixture() RecapInputs {
	return RecapInputs{
		Stats: []domain.StatRow{
			{PersonID: 1, PersonName: "Sanne", PersonEmoji: "🦊", MetricID: 1, MetricName: "Sporting", Count: 40},
			{PersonID: 2, PersonName: "Bram", PersonEmoji: "🐻", MetricID: 1, MetricName: "Sporting", Count: 25},
			{PersonID: 1, PersonName: "Sanne", PersonEmoji: "🦊", MetricID: 2, MetricName: "Reading", Count: 5},
			{PersonID: 2, PersonName: "Bram", PersonEmoji: "🐻", MetricID: 2, MetricName: "Reading", Count: 12},
		},
		Streaks: map[int64][]domain.StreakData{
			1: {
				{PersonID: 1, PersonName: "Sanne", PersonEmoji: "🦊", LongestDailyStreak: 6, LongestWeeklyStreak: 5},
				{PersonID: 2, PersonName: "Bram", PersonEmoji: "🐻", LongestDailyStreak: 2, LongestWeeklyStreak: 2},
			},
			2: {
				{PersonID: 1, PersonName: "Sanne", LongestDailyStreak: 1, LongestWeeklyStreak: 1},
				{PersonID: 2, PersonName: "Bram", LongestDailyStreak: 1, LongestWeeklyStreak: 2},
			},
		},
		MonthlyStats: []domain.MonthlyStatRow{
			{Month: "2025-01", PersonName: "Sanne", Count: 8},
			{Month: "2025-01", PersonName: "Bram", Count: 2},
			{Month: "2025-03", PersonName: "Sanne", Count: 20},
			{Month: "2025-09", PersonName: "Bram", Count: 25},
			{Month: "2025-10", PersonName: "Sanne", Count: 17},
			{Month: "2025-10", PersonName: "Bram", Count: 10},
		},
		Metrics: []domain.Metric{
			{ID: 1, Name: "Sporting", Emoji: "🏃"},
			{ID: 2, Name: "Reading", Emoji: "📚"},
		},
		People: []domain.Person{
			{ID: 1, Name: "Sanne", Emoji: "🦊"},
			{ID: 2, Name: "Bram", Emoji: "🐻"},
		},
		Countries: []domain.CountryStats{
			{PersonID: 2, PersonName: "Bram", PersonEmoji: "🐻", CountryCount: 4, Countries: []string{"FR", "ES", "IT", "PT"}},
			{PersonID: 1, PersonName: "Sanne", PersonEmoji: "🦊", CountryCount: 1, Countries: []string{"DE"}},
		},
	}
}

func findAward(t *testing.T, awards []domain.Award, id string) domain.Award {
	t.Helper()
	for _, a := range awards {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("award %q not found in %d awards", id, len(awards))
	return domain.Award{}
}

func hasAward(awards []domain.Award, id string) bool {
	for _, a := range awards {
		if a.ID == id {
			return true
		}
	}
	return false
}

func TestGenerateAwards(t *testing.T) {
	awards := GenerateAwards(recapFixture())

	traveled := findAward(t, awards, "most-traveled")
	if traveled.PersonName != "Bram" || traveled.Value != "4 countries" {
		t.Errorf("most-traveled = %+v", traveled)
	}

	active := findAward(t, awards, "most-active")
	if active.PersonName != "Sanne" || active.Value != "45 entries" {
		t.Errorf("most-active = %+v", active)
	}

	sporting := findAward(t, awards, "sporting-champion")
	if sporting.PersonName != "Sanne" || sporting.Value != "40 times" {
		t.Errorf("sporting-champion = %+v", sporting)
	}
	reading := findAward(t, awards, "reading-champion")
	if reading.PersonName != "Bram" {
		t.Errorf("reading-champion = %+v", reading)
	}

	streak := findAward(t, awards, "sporting-daily-streak")
	if streak.PersonName != "Sanne" || streak.Value != "6 days in a row" {
		t.Errorf("sporting-daily-streak = %+v", streak)
	}
	// Reading's best daily streak is 1: below the floor, no award.
	if hasAward(awards, "reading-daily-streak") {
		t.Error("reading-daily-streak should be gated out")
	}
	// Reading's best weekly streak is 2: needs strictly more than 2.
	if hasAward(awards, "reading-consistent") {
		t.Error("reading-consistent should be gated out")
	}

	// Bram: first half 2, second half 35, improvement 33.
	bloomer := findAward(t, awards, "late-bloomer")
	if bloomer.PersonName != "Bram" || bloomer.Value != "+33 more entries" {
		t.Errorf("late-bloomer = %+v", bloomer)
	}

	early := findAward(t, awards, "early-starter")
	if early.PersonName != "Sanne" || early.Value != "8 entries in January" {
		t.Errorf("early-starter = %+v", early)
	}
}

func TestGenerateAwardsEmptySeason(t *testing.T) {
	awards := GenerateAwards(RecapInputs{})
	if len(awards) != 0 {
		t.Fatalf("empty season should produce no awards, got %v", awards)
	}
}

func TestGenerateAwardsZeroCountGuards(t *testing.T) {
	in := RecapInputs{
		Stats: []domain.StatRow{
			{PersonName: "Sanne", MetricName: "Sporting", Count: 0},
		},
		Metrics:   []domain.Metric{{ID: 1, Name: "Sporting"}},
		Countries: []domain.CountryStats{{PersonName: "Sanne", CountryCount: 0}},
	}
	awards := GenerateAwards(in)
	if hasAward(awards, "most-active") {
		t.Error("most-active requires a non-zero total")
	}
	if hasAward(awards, "sporting-champion") {
		t.Error("champion requires a non-zero count")
	}
	if hasAward(awards, "most-traveled") {
		t.Error("most-traveled requires at least one country")
	}
}

func TestGenerateTrivia(t *testing.T) {
	trivia := GenerateTrivia(recapFixture())

	byID := make(map[string]domain.TriviaQuestion)
	for _, q := range trivia {
		byID[q.ID] = q
	}

	if q, ok := byID["total-entries"]; !ok || q.Answer != "82" {
		t.Errorf("total-entries = %+v", q)
	}
	if q, ok := byID["most-traveled-person"]; !ok || q.Answer != "Bram" {
		t.Errorf("most-traveled-person = %+v", q)
	}
	if q, ok := byID["total-unique-countries"]; !ok || q.Answer != "5" {
		t.Errorf("total-unique-countries = %+v", q)
	}
	if q, ok := byID["total-sporting"]; !ok || q.Answer != "65" {
		t.Errorf("total-sporting = %+v", q)
	}
	if q, ok := byID["who-most-reading"]; !ok || q.Answer != "Bram" {
		t.Errorf("who-most-reading = %+v", q)
	}
	if q, ok := byID["streak-sporting"]; !ok || q.Answer != "6 days by Sanne" {
		t.Errorf("streak-sporting = %+v", q)
	}
	// October has 27 entries, the busiest month.
	if q, ok := byID["best-month"]; !ok || q.Answer != "October" {
		t.Errorf("best-month = %+v", q)
	}
	// Sanne 45 vs Bram 37.
	if q, ok := byID["closest-race"]; !ok || q.Answer != "8" {
		t.Errorf("closest-race = %+v", q)
	}
}

func TestGenerateTriviaEmptySeason(t *testing.T) {
	trivia := GenerateTrivia(RecapInputs{})
	if len(trivia) != 0 {
		t.Fatalf("empty season should produce no trivia, got %v", trivia)
	}
}
