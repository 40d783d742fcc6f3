package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckEligibility_NoPriorDonation(t *testing.T) {
	result := CheckEligibility(nil, time.Now())

	assert.True(t, result.Eligible)
	assert.Nil(t, result.DaysRemaining)
	assert.Nil(t, result.DaysSinceLastDonation)
	assert.NotEmpty(t, result.Message)
}

func TestCheckEligibility_ExactlyFiftySixDays(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -56)

	result := CheckEligibility(&last, now)

	assert.True(t, result.Eligible)
	assert.Nil(t, result.DaysRemaining)
	require.NotNil(t, result.DaysSinceLastDonation)
	assert.Equal(t, 56, *result.DaysSinceLastDonation)
}

func TestCheckEligibility_FiftyFiveDays(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -55)

	result := CheckEligibility(&last, now)

	assert.False(t, result.Eligible)
	require.NotNil(t, result.DaysRemaining)
	assert.Equal(t, 1, *result.DaysRemaining)
	require.NotNil(t, result.NextEligibleDate)
	assert.Equal(t, last.AddDate(0, 0, 56), *result.NextEligibleDate)
}

func TestCheckEligibility_PartialDayRoundsDown(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -56).Add(time.Hour) // 55 days 23 hours

	result := CheckEligibility(&last, now)

	assert.False(t, result.Eligible)
	assert.Equal(t, 55, *result.DaysSinceLastDonation)
	assert.Equal(t, 1, *result.DaysRemaining)
	assert.Equal(t, "You can donate again in 1 day.", result.Message)
}

func TestCheckEligibility_MessagePluralises(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -50)

	result := CheckEligibility(&last, now)

	assert.Equal(t, "You can donate again in 6 days.", result.Message)
}

func TestCanDonate_UniversalDonor(t *testing.T) {
	for _, recipient := range AllBloodTypes {
		ok, err := CanDonate(ONeg, recipient)
		require.NoError(t, err)
		assert.True(t, ok, "O- should donate to %s", recipient)
	}
}

func TestCanDonate_ABPositiveOnlyToItself(t *testing.T) {
	ok, err := CanDonate(ABPos, ABPos)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CanDonate(ABPos, APos)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanDonate_UnknownTypeIsAnError(t *testing.T) {
	_, err := CanDonate("C+", APos)
	assert.True(t, errors.Is(err, ErrUnknownBloodType))

	_, err = CanDonate(APos, "Z")
	assert.True(t, errors.Is(err, ErrUnknownBloodType))
}

func TestCompatibilityTablesAreInverse(t *testing.T) {
	for _, donor := range AllBloodTypes {
		recipients, err := CompatibleRecipients(donor)
		require.NoError(t, err)
		for _, recipient := range recipients {
			donors, err := CompatibleDonors(recipient)
			require.NoError(t, err)
			assert.Contains(t, donors, donor, "%s -> %s missing from donor table", donor, recipient)
		}
	}

	donors, err := CompatibleDonors(ABPos)
	require.NoError(t, err)
	assert.Len(t, donors, 8)
}

func TestParseBloodType(t *testing.T) {
	bt, err := ParseBloodType(" ab+ ")
	require.NoError(t, err)
	assert.Equal(t, ABPos, bt)

	_, err = ParseBloodType("AB")
	assert.ErrorIs(t, err, ErrUnknownBloodType)
}

func TestRarityBands(t *testing.T) {
	tests := []struct {
		bt   BloodType
		band RarityBand
	}{
		{OPos, RarityCommon},
		{APos, RarityCommon},
		{BPos, RarityUncommon},
		{ONeg, RarityUncommon},
		{ABNeg, RarityRare},
		{BNeg, RarityRare},
	}

	for _, tt := range tests {
		t.Run(string(tt.bt), func(t *testing.T) {
			info, err := Rarity(tt.bt)
			require.NoError(t, err)
			assert.Equal(t, tt.band, info.Band)
		})
	}

	_, err := Rarity("X")
	assert.ErrorIs(t, err, ErrUnknownBloodType)
}

func morningSchedule() Schedule {
	return Schedule{
		OpenTime:     "08:00",
		CloseTime:    "12:00",
		DonationDays: []string{"Monday", "Wednesday", "Friday"},
		SlotDuration: 30,
		SlotsPerHour: 2,
	}
}

// 2025-06-02 is a Monday
var monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func TestGenerateSlots_NoBookings(t *testing.T) {
	day, err := GenerateSlots(morningSchedule(), monday, nil)
	require.NoError(t, err)

	assert.True(t, day.Open)
	require.Len(t, day.Slots, 8)
	assert.Equal(t, "08:00-08:30", day.Slots[0].Label)
	assert.Equal(t, "08:30-09:00", day.Slots[1].Label)
	assert.Equal(t, "11:30-12:00", day.Slots[7].Label)
	for _, slot := range day.Slots {
		assert.True(t, slot.Available, slot.Label)
		assert.Equal(t, 2, slot.Capacity)
	}
}

func TestGenerateSlots_FullSlot(t *testing.T) {
	bookings := []Booking{
		{TimeSlot: "08:00-08:30", Status: AppointmentScheduled},
		{TimeSlot: "08:00-08:30", Status: AppointmentConfirmed},
		{TimeSlot: "09:00-09:30", Status: AppointmentCancelled},
		{TimeSlot: "09:00-09:30", Status: AppointmentScheduled},
	}

	day, err := GenerateSlots(morningSchedule(), monday, bookings)
	require.NoError(t, err)

	full, ok := day.FindSlot("08:00-08:30")
	require.True(t, ok)
	assert.False(t, full.Available)
	assert.Equal(t, 2, full.Booked)

	partial, ok := day.FindSlot("09:00-09:30")
	require.True(t, ok)
	assert.True(t, partial.Available, "cancelled bookings must not count")
	assert.Equal(t, 1, partial.Booked)
}

func TestGenerateSlots_ClosedDay(t *testing.T) {
	sunday := monday.AddDate(0, 0, -1)

	day, err := GenerateSlots(morningSchedule(), sunday, nil)
	require.NoError(t, err)

	assert.False(t, day.Open)
	assert.Empty(t, day.Slots)
	assert.Contains(t, day.Message, "Sunday")
}

func TestGenerateSlots_InvalidSchedule(t *testing.T) {
	s := morningSchedule()
	s.CloseTime = "07:00"

	_, err := GenerateSlots(s, monday, nil)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestSchedule_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Schedule)
	}{
		{"slots overflow the hour", func(s *Schedule) { s.SlotsPerHour = 4 }},
		{"hour-long slots stacked", func(s *Schedule) { s.SlotDuration, s.SlotsPerHour = 60, 12 }},
		{"open time off the hour", func(s *Schedule) { s.OpenTime = "08:30" }},
		{"close time off the hour", func(s *Schedule) { s.CloseTime = "11:45" }},
		{"unknown weekday", func(s *Schedule) { s.DonationDays = []string{"Funday"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := morningSchedule()
			tt.modify(&s)

			assert.ErrorIs(t, s.Validate(), ErrInvalidSchedule)
			_, err := GenerateSlots(s, monday, nil)
			assert.ErrorIs(t, err, ErrInvalidSchedule)
		})
	}

	full := morningSchedule()
	full.SlotDuration, full.SlotsPerHour = 15, 4
	assert.NoError(t, full.Validate())
}

func TestGenerateSlots_LabelsAreUniqueAndWithinHours(t *testing.T) {
	s := morningSchedule()
	s.SlotDuration, s.SlotsPerHour = 20, 3

	day, err := GenerateSlots(s, monday, nil)
	require.NoError(t, err)

	require.Len(t, day.Slots, 12)
	seen := make(map[string]bool)
	for _, slot := range day.Slots {
		assert.False(t, seen[slot.Label], "duplicate slot %s", slot.Label)
		seen[slot.Label] = true
		assert.GreaterOrEqual(t, slot.StartTime, "08:00")
		assert.LessOrEqual(t, slot.EndTime, "12:00")
	}
}

type testDonor struct {
	id     string
	bt     BloodType
	active bool
	alerts bool
}

func (d testDonor) GetBloodType() BloodType { return d.bt }
func (d testDonor) IsActive() bool          { return d.active }
func (d testDonor) WantsEmailAlerts() bool  { return d.alerts }

func TestMatchDonors(t *testing.T) {
	donors := []testDonor{
		{id: "a", bt: OPos, active: true, alerts: true},
		{id: "b", bt: OPos, active: true, alerts: false},
		{id: "c", bt: ONeg, active: true, alerts: true},
		{id: "d", bt: OPos, active: false, alerts: true},
		{id: "e", bt: OPos, active: true, alerts: true},
	}

	matched := MatchDonors(OPos, donors)

	require.Len(t, matched, 2)
	assert.Equal(t, "a", matched[0].id)
	assert.Equal(t, "e", matched[1].id)
}

func TestAwardBadges_Cumulative(t *testing.T) {
	badges := AwardBadges(10, OPos)

	assert.True(t, HasBadge(badges, BadgeFirstDonation))
	assert.True(t, HasBadge(badges, BadgeRegularDonor))
	assert.True(t, HasBadge(badges, BadgeHeroDonor))
	assert.False(t, HasBadge(badges, BadgeLifeSaver))
	assert.False(t, HasBadge(badges, BadgeRareBlood))
}

func TestAwardBadges_RareBloodIndependentOfCount(t *testing.T) {
	badges := AwardBadges(0, ABNeg)

	require.Len(t, badges, 1)
	assert.Equal(t, BadgeRareBlood, badges[0].ID)
}

func TestComputeStats(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var dates []time.Time
	for i := 0; i < 10; i++ {
		dates = append(dates, base.AddDate(0, 0, 60*i))
	}

	stats := ComputeStats(dates, OPos)

	assert.Equal(t, 10, stats.TotalDonations)
	assert.Equal(t, 30, stats.LivesSaved)
	assert.Equal(t, 1000, stats.Points)
	assert.Equal(t, 10, stats.Streak)
	assert.True(t, HasBadge(stats.Badges, BadgeHeroDonor))
	assert.False(t, HasBadge(stats.Badges, BadgeLifeSaver))
	require.NotNil(t, stats.LastDonationDate)
	assert.Equal(t, dates[9], *stats.LastDonationDate)
}

func TestPoints_RareBonus(t *testing.T) {
	assert.Equal(t, 300, Points(2, ABNeg))
	assert.Equal(t, 200, Points(2, APos))
	assert.Equal(t, 0, Points(0, BNeg))
}

func TestStreak_BreaksOnLongGap(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := []time.Time{
		base,
		base.AddDate(0, 0, 300), // long gap before this one
		base.AddDate(0, 0, 360),
		base.AddDate(0, 0, 420),
	}

	assert.Equal(t, 3, Streak(dates))
	assert.Equal(t, 0, Streak(nil))
}

func TestRankLeaderboard(t *testing.T) {
	entries := []LeaderboardEntry{
		{DonorID: "1", Name: "Carla", Points: 300, TotalDonations: 3},
		{DonorID: "2", Name: "Ana", Points: 500, TotalDonations: 5},
		{DonorID: "3", Name: "Ben", Points: 300, TotalDonations: 3},
		{DonorID: "4", Name: "Dan", Points: 300, TotalDonations: 2},
	}

	ranked := RankLeaderboard(entries)

	require.Len(t, ranked, 4)
	assert.Equal(t, "Ana", ranked[0].Name)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "Ben", ranked[1].Name)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, "Carla", ranked[2].Name)
	assert.Equal(t, 2, ranked[2].Rank)
	assert.Equal(t, "Dan", ranked[3].Name)
	assert.Equal(t, 4, ranked[3].Rank)
}

func TestStatusTransitions(t *testing.T) {
	assert.NoError(t, CheckAppointmentTransition(AppointmentScheduled, AppointmentConfirmed))
	assert.NoError(t, CheckAppointmentTransition(AppointmentConfirmed, AppointmentCompleted))
	assert.ErrorIs(t, CheckAppointmentTransition(AppointmentCompleted, AppointmentScheduled), ErrInvalidTransition)
	assert.ErrorIs(t, CheckAppointmentTransition(AppointmentScheduled, AppointmentCompleted), ErrInvalidTransition)
	assert.True(t, AppointmentNoShow.Terminal())

	assert.NoError(t, CheckRequestTransition(RequestActive, RequestFulfilled))
	assert.ErrorIs(t, CheckRequestTransition(RequestCancelled, RequestActive), ErrInvalidTransition)

	assert.NoError(t, CheckAlertTransition(AlertSent, AlertFulfilled))
	assert.ErrorIs(t, CheckAlertTransition(AlertFulfilled, AlertSent), ErrInvalidTransition)
}
