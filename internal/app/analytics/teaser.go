package analytics

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/recap-crew/recap/internal/domain"
)

// TeaserInputs feed the spoiler-free teaser generator.
type TeaserInputs struct {
	Stats   []domain.StatRow
	Entries []domain.Entry // non-deleted, season-scoped
	People  []domain.Person
	Metrics []domain.Metric
	Today   time.Time
}

// TeaserSummary is the aggregate block shown next to the teaser feed.
type TeaserSummary struct {
	TotalEntries int            `json:"total_entries"`
	TodayEntries int            `json:"today_entries"`
	WeekEntries  int            `json:"week_entries"`
	MaxStreak    int            `json:"max_streak"`
	AvgEntries   float64        `json:"avg_entries"`
	PeopleCount  int            `json:"people_count"`
	MetricTotals map[string]int `json:"metric_totals"`
}

type crypticMessage struct {
	emoji   string
	message string
	copy    string
}

var mysteryCatalog = []crypticMessage{
	{"🌅", "An early bird caught the worm today...", "🌅 *Cryptisch...*\n\nEen vroege vogel heeft vanochtend al gelogd... Wie is onze early bird? 🐦"},
	{"🦉", "A night owl was active last night...", "🦉 *Laat bezig...*\n\nEen nachtuil was gisteravond nog actief... 🌙"},
	{"📈", "Someone is on a roll...", "📈 *On a roll*\n\nIemand is lekker bezig de laatste tijd... Keep it up! 💫"},
	{"🎯", "A comeback story is brewing...", "🎯 *Comeback?*\n\nIemand die eerst wat achterliep is aan een comeback bezig... 👀"},
	{"⭐", "Consistency is being rewarded...", "⭐ *Consistent*\n\nSommigen blijven gewoon elke week leveren. Respect! 🙌"},
}

var challengeCatalog = []crypticMessage{
	{"💪", "Weekend challenge: Can we beat last week?", "💪 *Weekend Challenge*\n\nKunnen we dit weekend meer loggen dan vorige week? Let's go! 🚀"},
	{"🎯", "Who will log next?", "🎯 *Wie is de volgende?*\n\nWie logt als volgende? Niet te lang wachten! ⏰"},
	{"🔥", "Can anyone start a streak today?", "🔥 *Streak starten?*\n\nVandaag is een perfecte dag om een streak te beginnen! Wie doet mee? 🙋"},
	{"📊", "Midweek motivation needed!", "📊 *Midweek Motivatie*\n\nWe zijn halverwege de week! Niet vergeten te loggen! 💪"},
}

// GenerateTeasers builds the shareable teaser feed. Teasers never name a
// person — they hint. The rng drives only which mystery and challenge
// lines get picked; everything else is deterministic. Callers pass a
// seeded rng in tests to pin the output.
func GenerateTeasers(in TeaserInputs, rng *rand.Rand) ([]domain.Teaser, TeaserSummary) {
	today := DayKey(in.Today)
	weekStart := DayKey(in.Today.AddDate(0, 0, -int(in.Today.Weekday())))

	var teasers []domain.Teaser

	totalEntries := len(in.Entries)
	todayEntries, weekEntries := 0, 0
	perPersonDates := make(map[int64]map[string]bool)
	for _, e := range in.Entries {
		if e.EntryDate == today {
			todayEntries++
		}
		if e.EntryDate >= weekStart {
			weekEntries++
		}
		if perPersonDates[e.PersonID] == nil {
			perPersonDates[e.PersonID] = make(map[string]bool)
		}
		perPersonDates[e.PersonID][e.EntryDate] = true
	}

	// Trailing streak per person, walking back from today. A missing
	// today is forgiven so a streak doesn't look broken before tonight's
	// entry lands.
	maxStreak := 0
	for _, dates := range perPersonDates {
		streak := 0
		check := in.Today
		for i := 0; i < 365; i++ {
			if dates[DayKey(check)] {
				streak++
				check = check.AddDate(0, 0, -1)
			} else if i == 0 {
				check = check.AddDate(0, 0, -1)
			} else {
				break
			}
		}
		if streak > maxStreak {
			maxStreak = streak
		}
	}

	metricTotals := make(map[string]int)
	for _, s := range in.Stats {
		metricTotals[s.MetricName] += s.Count
	}

	rankings := make(map[string][]int)
	for _, metric := range in.Metrics {
		var counts []int
		for _, s := range in.Stats {
			if s.MetricName == metric.Name {
				counts = append(counts, s.Count)
			}
		}
		sort.Sort(sort.Reverse(sort.IntSlice(counts)))
		rankings[metric.Name] = counts
	}

	teasers = append(teasers, domain.Teaser{
		Emoji:    "📊",
		Category: domain.TeaserAggregate,
		Message:  fmt.Sprintf("Total group entries: %d", totalEntries),
		CopyText: fmt.Sprintf("📊 *Recap Update*\n\nOnze groep heeft nu al %d entries gelogd! 🎯", totalEntries),
	})

	if todayEntries > 0 {
		verb, noun := "zijn", "entries"
		if todayEntries == 1 {
			verb, noun = "is", "entry"
		}
		teasers = append(teasers, domain.Teaser{
			Emoji:    "📅",
			Category: domain.TeaserAggregate,
			Message:  fmt.Sprintf("%d entries logged today", todayEntries),
			CopyText: fmt.Sprintf("📅 *Vandaag*\n\nEr %s vandaag al %d %s toegevoegd! Wie zou dat zijn? 🤔", verb, todayEntries, noun),
		})
	}

	if weekEntries > 0 {
		teasers = append(teasers, domain.Teaser{
			Emoji:    "📈",
			Category: domain.TeaserAggregate,
			Message:  fmt.Sprintf("%d entries this week", weekEntries),
			CopyText: fmt.Sprintf("📈 *Deze week*\n\n%d entries deze week! Blijven gaan team! 💪", weekEntries),
		})
	}

	if maxStreak >= 3 {
		teasers = append(teasers, domain.Teaser{
			Emoji:    "🔥",
			Category: domain.TeaserStreak,
			Message:  fmt.Sprintf("Someone has a %d-day streak!", maxStreak),
			CopyText: fmt.Sprintf("🔥 *Streak Alert*\n\nIemand heeft een streak van %d dagen op rij! Wie zou het zijn? 🤫", maxStreak),
		})
	}
	if maxStreak >= 7 {
		teasers = append(teasers, domain.Teaser{
			Emoji:    "⚡",
			Category: domain.TeaserStreak,
			Message:  "A week-long streak is active!",
			CopyText: "⚡ *Impressive!*\n\nEen van ons heeft al een hele week lang elke dag gelogd! Dedication! 💪",
		})
	}

	// Milestone teasers fire only in a narrow window past the threshold,
	// so they naturally expire as counts grow.
	for _, metric := range in.Metrics {
		total := metricTotals[metric.Name]
		for _, milestone := range []int{10, 25, 50, 75, 100, 150, 200, 250, 500} {
			if total >= milestone && total < milestone+5 {
				teasers = append(teasers, domain.Teaser{
					Emoji:    "🎯",
					Category: domain.TeaserMilestone,
					Message:  fmt.Sprintf("Group hit %d+ %s!", milestone, metric.Name),
					CopyText: fmt.Sprintf("🎯 *Milestone!*\n\nAls groep hebben we de %d %s gepasseerd! 🎉", milestone, metric.Name),
				})
			}
		}
		for _, count := range rankings[metric.Name] {
			for _, milestone := range []int{10, 25, 50, 100} {
				if count >= milestone && count < milestone+3 {
					teasers = append(teasers, domain.Teaser{
						Emoji:    "🏆",
						Category: domain.TeaserMilestone,
						Message:  fmt.Sprintf("Someone reached %d %s!", milestone, metric.Name),
						CopyText: fmt.Sprintf("🏆 *Personal Milestone*\n\nIemand heeft de %d %s bereikt! Wie zou deze ijverige speler zijn? 👀", milestone, metric.Name),
					})
					break
				}
			}
		}
	}

	for _, metric := range in.Metrics {
		ranking := rankings[metric.Name]
		if len(ranking) < 2 {
			continue
		}
		if gap := ranking[0] - ranking[1]; gap >= 0 && gap <= 3 {
			teasers = append(teasers, domain.Teaser{
				Emoji:    "🏁",
				Category: domain.TeaserMovement,
				Message:  fmt.Sprintf("Tight race for #1 in %s!", metric.Name),
				CopyText: fmt.Sprintf("🏁 *Spannend!*\n\nHet verschil tussen #1 en #2 voor %s is maar %d! Wie pakt de leiding? 😱", metric.Name, gap),
			})
		}
		if len(ranking) >= 3 && ranking[0]-ranking[2] <= 5 {
			teasers = append(teasers, domain.Teaser{
				Emoji:    "📊",
				Category: domain.TeaserMovement,
				Message:  fmt.Sprintf("Top 3 is very close in %s!", metric.Name),
				CopyText: fmt.Sprintf("📊 *Neck and neck*\n\nDe top 3 voor %s zit super dicht bij elkaar! Alles kan nog gebeuren... 🎲", metric.Name),
			})
		}
	}

	for _, m := range pickCryptic(mysteryCatalog, 2, rng) {
		teasers = append(teasers, domain.Teaser{
			Emoji:    m.emoji,
			Category: domain.TeaserMystery,
			Message:  m.message,
			CopyText: m.copy,
		})
	}
	for _, c := range pickCryptic(challengeCatalog, 1, rng) {
		teasers = append(teasers, domain.Teaser{
			Emoji:    c.emoji,
			Category: domain.TeaserChallenge,
			Message:  c.message,
			CopyText: c.copy,
		})
	}

	if len(teasers) > 15 {
		teasers = teasers[:15]
	}

	avg := 0.0
	if len(in.People) > 0 {
		avg = float64(totalEntries) / float64(len(in.People))
	}
	summary := TeaserSummary{
		TotalEntries: totalEntries,
		TodayEntries: todayEntries,
		WeekEntries:  weekEntries,
		MaxStreak:    maxStreak,
		AvgEntries:   math.Round(avg*10) / 10,
		PeopleCount:  len(in.People),
		MetricTotals: metricTotals,
	}
	return teasers, summary
}

// pickCryptic shuffles a copy of the catalog and takes the first n.
func pickCryptic(catalog []crypticMessage, n int, rng *rand.Rand) []crypticMessage {
	shuffled := make([]crypticMessage, len(catalog))
	copy(shuffled, catalog)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
