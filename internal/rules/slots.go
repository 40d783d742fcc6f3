package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSchedule is returned when a hospital's operating hours cannot be parsed
var ErrInvalidSchedule = errors.New("invalid hospital schedule")

// Schedule is the part of a hospital record that drives slot generation
type Schedule struct {
	OpenTime     string   // "08:00"
	CloseTime    string   // "17:00"
	DonationDays []string // weekday names, e.g. "Monday"
	SlotDuration int      // minutes
	SlotsPerHour int      // also the per-slot booking capacity
}

// Booking is an existing appointment as seen by slot generation
type Booking struct {
	TimeSlot string
	Status   AppointmentStatus
}

// Slot is one bookable window on a given date
type Slot struct {
	Label     string `json:"timeSlot"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Booked    int    `json:"booked"`
	Capacity  int    `json:"capacity"`
	Available bool   `json:"available"`
}

// SlotDay is the slot listing for a single date
type SlotDay struct {
	Date    string `json:"date"`
	Open    bool   `json:"open"`
	Message string `json:"message,omitempty"`
	Slots   []Slot `json:"slots"`
}

// AcceptsDonationsOn reports whether the weekday of date is one of the donation days
func (s Schedule) AcceptsDonationsOn(date time.Time) bool {
	day := date.Weekday().String()
	for _, d := range s.DonationDays {
		if strings.EqualFold(strings.TrimSpace(d), day) {
			return true
		}
	}
	return false
}

// Validate checks that the schedule can produce slots
func (s Schedule) Validate() error {
	openHour, err := parseHour(s.OpenTime)
	if err != nil {
		return err
	}
	closeHour, err := parseHour(s.CloseTime)
	if err != nil {
		return err
	}
	if closeHour <= openHour {
		return fmt.Errorf("%w: close time %s is not after open time %s", ErrInvalidSchedule, s.CloseTime, s.OpenTime)
	}
	if s.SlotDuration <= 0 || s.SlotsPerHour <= 0 {
		return fmt.Errorf("%w: slot duration and slots per hour must be positive", ErrInvalidSchedule)
	}
	if s.SlotDuration*s.SlotsPerHour > 60 {
		return fmt.Errorf("%w: %d slots of %d minutes do not fit in an hour", ErrInvalidSchedule, s.SlotsPerHour, s.SlotDuration)
	}
	for _, d := range s.DonationDays {
		if _, err := ParseWeekday(d); err != nil {
			return err
		}
	}
	return nil
}

// GenerateSlots lists every slot for date along with its availability.
// A date outside the donation days yields an empty, closed SlotDay.
func GenerateSlots(s Schedule, date time.Time, bookings []Booking) (SlotDay, error) {
	day := SlotDay{Date: date.Format(time.DateOnly), Slots: []Slot{}}

	if !s.AcceptsDonationsOn(date) {
		day.Message = fmt.Sprintf("This hospital does not accept donations on %s.", date.Weekday())
		return day, nil
	}
	if err := s.Validate(); err != nil {
		return day, err
	}

	openHour, _ := parseHour(s.OpenTime)
	closeHour, _ := parseHour(s.CloseTime)

	counts := make(map[string]int, len(bookings))
	for _, b := range bookings {
		if b.Status == AppointmentCancelled {
			continue
		}
		counts[b.TimeSlot]++
	}

	day.Open = true
	for hour := openHour; hour < closeHour; hour++ {
		for i := 0; i < s.SlotsPerHour; i++ {
			start := hour*60 + i*s.SlotDuration
			end := start + s.SlotDuration
			label := SlotLabel(start, end)
			booked := counts[label]
			day.Slots = append(day.Slots, Slot{
				Label:     label,
				StartTime: minutesToClock(start),
				EndTime:   minutesToClock(end),
				Booked:    booked,
				Capacity:  s.SlotsPerHour,
				Available: booked < s.SlotsPerHour,
			})
		}
	}

	return day, nil
}

// FindSlot returns the slot with the given label from a generated day
func (d SlotDay) FindSlot(label string) (Slot, bool) {
	for _, slot := range d.Slots {
		if slot.Label == label {
			return slot, true
		}
	}
	return Slot{}, false
}

// SlotLabel formats a start/end pair of minutes-since-midnight as "HH:MM-HH:MM"
func SlotLabel(startMinutes, endMinutes int) string {
	return minutesToClock(startMinutes) + "-" + minutesToClock(endMinutes)
}

// ParseWeekday accepts full English weekday names, case-insensitively
func ParseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(strings.TrimSpace(name), d.String()) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSchedule, name)
}

func minutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// parseHour reads an "HH:MM" clock that must fall on the hour
func parseHour(clock string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("%w: bad time %q", ErrInvalidSchedule, clock)
	}
	if len(parts) == 2 {
		minutes, err := strconv.Atoi(parts[1])
		if err != nil || minutes != 0 {
			return 0, fmt.Errorf("%w: %q must be on the hour", ErrInvalidSchedule, clock)
		}
	}
	return hour, nil
}
