package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"bloodlink/internal/database"
	"bloodlink/internal/models"
	"bloodlink/internal/rules"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// openTestDB connects to the Postgres named by DATABASE_URL and skips otherwise
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := database.Open(context.Background(), dsn, zap.NewNop(), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedSlotFixture(t *testing.T, repos *Repositories, donors int) (*models.Hospital, []*models.Donor) {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()

	hospital := &models.Hospital{
		Name:         "Reservation Test " + suffix,
		Address:      "Rizal Street",
		OpenTime:     "08:00",
		CloseTime:    "10:00",
		DonationDays: models.StringList{"Monday", "Wednesday"},
		SlotDuration: 30,
		SlotsPerHour: 2,
	}
	require.NoError(t, repos.Hospitals.Create(ctx, hospital))

	var created []*models.Donor
	for i := 0; i < donors; i++ {
		d := &models.Donor{
			Name:      "Donor",
			Email:     uuid.NewString() + "@example.com",
			BloodType: rules.OPos,
			Active:    true,
		}
		require.NoError(t, repos.Donors.Create(ctx, d))
		created = append(created, d)
	}

	t.Cleanup(func() {
		db := repos.Appointments.db
		db.Where("hospital_id = ?", hospital.ID).Delete(&models.Appointment{})
		db.Where("hospital_id = ?", hospital.ID).Delete(&models.SlotReservation{})
		for _, d := range created {
			db.Delete(&models.Donor{}, "id = ?", d.ID)
		}
		db.Delete(&models.Hospital{}, "id = ?", hospital.ID)
	})
	return hospital, created
}

func reservedCount(t *testing.T, db *gorm.DB, hospitalID, date, slot string) int {
	t.Helper()
	var counter models.SlotReservation
	require.NoError(t, db.First(&counter, "hospital_id = ? AND date = ? AND time_slot = ?", hospitalID, date, slot).Error)
	return counter.Booked
}

func TestAppointmentBook_ConcurrentReservationsRespectCapacity(t *testing.T) {
	db := openTestDB(t)
	repos := New(db)
	hospital, donors := seedSlotFixture(t, repos, 10)

	const (
		date = "2025-06-04"
		slot = "08:00-08:30"
	)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		booked   []*models.Appointment
		rejected int
	)
	for _, d := range donors {
		wg.Add(1)
		go func(donorID string) {
			defer wg.Done()
			appt := &models.Appointment{DonorID: donorID, HospitalID: hospital.ID, Date: date, TimeSlot: slot}
			err := repos.Appointments.Book(context.Background(), appt, hospital.SlotsPerHour)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked = append(booked, appt)
			case errors.Is(err, ErrSlotFull):
				rejected++
			default:
				t.Errorf("unexpected booking error: %v", err)
			}
		}(d.ID)
	}
	wg.Wait()

	require.Len(t, booked, hospital.SlotsPerHour)
	assert.Equal(t, len(donors)-hospital.SlotsPerHour, rejected)
	assert.Equal(t, hospital.SlotsPerHour, reservedCount(t, db, hospital.ID, date, slot))

	// cancelling releases one unit, which the next booking can take
	require.NoError(t, repos.Appointments.Transition(context.Background(), booked[0], rules.AppointmentCancelled, nil))
	assert.Equal(t, hospital.SlotsPerHour-1, reservedCount(t, db, hospital.ID, date, slot))

	// a second transition from the same stale status is refused
	err := repos.Appointments.Transition(context.Background(), booked[0], rules.AppointmentCancelled, nil)
	assert.ErrorIs(t, err, ErrStaleStatus)

	var late *models.Donor
	for _, d := range donors {
		if d.ID != booked[0].DonorID && d.ID != booked[1].DonorID {
			late = d
			break
		}
	}
	require.NotNil(t, late)
	appt := &models.Appointment{DonorID: late.ID, HospitalID: hospital.ID, Date: date, TimeSlot: slot}
	require.NoError(t, repos.Appointments.Book(context.Background(), appt, hospital.SlotsPerHour))
	assert.Equal(t, hospital.SlotsPerHour, reservedCount(t, db, hospital.ID, date, slot))
}
