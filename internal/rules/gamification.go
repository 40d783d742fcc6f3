package rules

import (
	"sort"
	"time"
)

const (
	// PointsPerDonation is awarded for every completed donation
	PointsPerDonation = 100
	// RareBloodBonus is added per completed donation for rare blood types
	RareBloodBonus = 50
	// LivesPerDonation is the estimate used for the "lives saved" counter
	LivesPerDonation = 3
	// StreakGapDays is the longest gap between donations that keeps a streak alive
	StreakGapDays = 120
)

// BadgeID identifies an achievement
type BadgeID string

const (
	BadgeFirstDonation BadgeID = "first-donation"
	BadgeRegularDonor  BadgeID = "regular-donor"
	BadgeHeroDonor     BadgeID = "hero-donor"
	BadgeLifeSaver     BadgeID = "life-saver"
	BadgeLegend        BadgeID = "legend"
	BadgeRareBlood     BadgeID = "rare-blood"
)

// Badge describes an achievement and, for count badges, its threshold
type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Threshold   int     `json:"threshold,omitempty"`
}

var countBadges = []Badge{
	{ID: BadgeFirstDonation, Name: "First Drop", Description: "Completed your first donation", Threshold: 1},
	{ID: BadgeRegularDonor, Name: "Regular Donor", Description: "Completed 3 donations", Threshold: 3},
	{ID: BadgeHeroDonor, Name: "Hero Donor", Description: "Completed 10 donations", Threshold: 10},
	{ID: BadgeLifeSaver, Name: "Life Saver", Description: "Completed 25 donations", Threshold: 25},
	{ID: BadgeLegend, Name: "Legend", Description: "Completed 50 donations", Threshold: 50},
}

var rareBloodBadge = Badge{
	ID:          BadgeRareBlood,
	Name:        "Rare Blood",
	Description: "Carries a rare blood type",
}

// DonorStats is derived from donation history; it is never stored
type DonorStats struct {
	TotalDonations   int        `json:"totalDonations"`
	LivesSaved       int        `json:"livesSaved"`
	Streak           int        `json:"streak"`
	Points           int        `json:"points"`
	Badges           []Badge    `json:"badges"`
	LastDonationDate *time.Time `json:"lastDonationDate,omitempty"`
}

// AllBadges returns the full badge catalogue
func AllBadges() []Badge {
	return append(append([]Badge(nil), countBadges...), rareBloodBadge)
}

// AwardBadges returns every badge earned for the given completed count and
// blood type. Count badges are cumulative; the rare blood badge depends only
// on the blood type.
func AwardBadges(completed int, bt BloodType) []Badge {
	badges := []Badge{}
	for _, b := range countBadges {
		if completed >= b.Threshold {
			badges = append(badges, b)
		}
	}
	if IsRare(bt) {
		badges = append(badges, rareBloodBadge)
	}
	return badges
}

// HasBadge reports whether id is in badges
func HasBadge(badges []Badge, id BadgeID) bool {
	for _, b := range badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Points totals the score for completed donations of the given blood type
func Points(completed int, bt BloodType) int {
	per := PointsPerDonation
	if IsRare(bt) {
		per += RareBloodBonus
	}
	return completed * per
}

// Streak counts the most recent run of donations where each gap is at most StreakGapDays
func Streak(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	sorted := append([]time.Time(nil), dates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].After(sorted[j]) })

	streak := 1
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i-1].Sub(sorted[i])
		if gap > StreakGapDays*24*time.Hour {
			break
		}
		streak++
	}
	return streak
}

// ComputeStats derives a donor's stats from the dates of their completed donations
func ComputeStats(completedDates []time.Time, bt BloodType) DonorStats {
	total := len(completedDates)
	stats := DonorStats{
		TotalDonations: total,
		LivesSaved:     total * LivesPerDonation,
		Streak:         Streak(completedDates),
		Points:         Points(total, bt),
		Badges:         AwardBadges(total, bt),
	}
	for i := range completedDates {
		if stats.LastDonationDate == nil || completedDates[i].After(*stats.LastDonationDate) {
			d := completedDates[i]
			stats.LastDonationDate = &d
		}
	}
	return stats
}

// LeaderboardEntry is one row of the public leaderboard
type LeaderboardEntry struct {
	Rank           int       `json:"rank"`
	DonorID        string    `json:"donorId"`
	Name           string    `json:"name"`
	BloodType      BloodType `json:"bloodType"`
	TotalDonations int       `json:"totalDonations"`
	Points         int       `json:"points"`
	BadgeCount     int       `json:"badgeCount"`
}

// RankLeaderboard sorts entries by points, then donations, then name, and
// assigns ranks. Entries tied on points and donations share a rank.
func RankLeaderboard(entries []LeaderboardEntry) []LeaderboardEntry {
	ranked := append([]LeaderboardEntry(nil), entries...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		if ranked[i].TotalDonations != ranked[j].TotalDonations {
			return ranked[i].TotalDonations > ranked[j].TotalDonations
		}
		return ranked[i].Name < ranked[j].Name
	})

	for i := range ranked {
		if i > 0 && ranked[i].Points == ranked[i-1].Points && ranked[i].TotalDonations == ranked[i-1].TotalDonations {
			ranked[i].Rank = ranked[i-1].Rank
			continue
		}
		ranked[i].Rank = i + 1
	}
	return ranked
}
