package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bloodlink/internal/models"
	"bloodlink/internal/repository"
	"bloodlink/internal/rules"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeAdmins struct {
	byEmail map[string]*models.Admin
}

func (f *fakeAdmins) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAdmins) TouchLogin(context.Context, string, time.Time) error { return nil }

type fakeDonors struct {
	mu   sync.Mutex
	byID map[string]*models.Donor
}

func newFakeDonors(donors ...*models.Donor) *fakeDonors {
	f := &fakeDonors{byID: map[string]*models.Donor{}}
	for _, d := range donors {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		f.byID[d.ID] = d
	}
	return f
}

func (f *fakeDonors) Create(_ context.Context, d *models.Donor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == d.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	f.byID[d.ID] = d
	return nil
}

func (f *fakeDonors) GetByID(_ context.Context, id string) (*models.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.byID[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDonors) GetByEmail(_ context.Context, email string) (*models.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.byID {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDonors) GetByGoogleID(_ context.Context, googleID string) (*models.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.byID {
		if d.GoogleID != nil && *d.GoogleID == googleID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDonors) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "email_verified":
			d.EmailVerified = v.(bool)
		case "active":
			d.Active = v.(bool)
		case "email_alerts":
			d.EmailAlerts = v.(bool)
		case "name":
			d.Name = v.(string)
		case "phone":
			d.Phone = v.(string)
		case "barangay":
			d.Barangay = v.(string)
		case "address":
			d.Address = v.(string)
		case "google_id":
			s := v.(string)
			d.GoogleID = &s
		}
	}
	return nil
}

func (f *fakeDonors) TouchLogin(context.Context, string, time.Time) error { return nil }

func (f *fakeDonors) List(context.Context, models.DonorFilter) ([]models.Donor, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Donor
	for _, d := range f.byID {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (f *fakeDonors) ListByBloodType(_ context.Context, bt rules.BloodType) ([]models.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Donor
	for _, d := range f.byID {
		if d.BloodType == bt {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeHospitals struct {
	byID map[string]*models.Hospital
}

func newFakeHospitals(hs ...*models.Hospital) *fakeHospitals {
	f := &fakeHospitals{byID: map[string]*models.Hospital{}}
	for _, h := range hs {
		f.byID[h.ID] = h
	}
	return f
}

func (f *fakeHospitals) Create(_ context.Context, h *models.Hospital) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	f.byID[h.ID] = h
	return nil
}

func (f *fakeHospitals) Upsert(ctx context.Context, h *models.Hospital) error {
	for _, existing := range f.byID {
		if existing.Name == h.Name {
			h.ID = existing.ID
		}
	}
	return f.Create(ctx, h)
}

func (f *fakeHospitals) GetByID(_ context.Context, id string) (*models.Hospital, error) {
	if h, ok := f.byID[id]; ok {
		return h, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeHospitals) List(context.Context) ([]models.Hospital, error) {
	var out []models.Hospital
	for _, h := range f.byID {
		out = append(out, *h)
	}
	return out, nil
}

// fakeAppointments mirrors the counter-row reservation of the real repository
type fakeAppointments struct {
	mu        sync.Mutex
	byID      map[string]*models.Appointment
	counters  map[string]int
	donations []*models.DonationRecord
	reminded  []string
	donors    *fakeDonors
	hospitals *fakeHospitals
}

func newFakeAppointments(donors *fakeDonors, hospitals *fakeHospitals) *fakeAppointments {
	return &fakeAppointments{
		byID:      map[string]*models.Appointment{},
		counters:  map[string]int{},
		donors:    donors,
		hospitals: hospitals,
	}
}

func slotKey(a *models.Appointment) string {
	return fmt.Sprintf("%s|%s|%s", a.HospitalID, a.Date, a.TimeSlot)
}

func (f *fakeAppointments) Book(_ context.Context, appt *models.Appointment, capacity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := slotKey(appt)
	if f.counters[key] >= capacity {
		return repository.ErrSlotFull
	}
	f.counters[key]++
	appt.ID = uuid.NewString()
	cp := *appt
	f.byID[appt.ID] = &cp
	return nil
}

func (f *fakeAppointments) Transition(_ context.Context, appt *models.Appointment, to rules.AppointmentStatus, donation *models.DonationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[appt.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Status != appt.Status {
		return repository.ErrStaleStatus
	}
	if to == rules.AppointmentCancelled && stored.HoldsSlot() {
		f.counters[slotKey(stored)]--
	}
	stored.Status = to
	if donation != nil {
		f.donations = append(f.donations, donation)
	}
	return nil
}

func (f *fakeAppointments) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	f.mu.Lock()
	stored, ok := f.byID[id]
	f.mu.Unlock()
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *stored
	if f.donors != nil {
		cp.Donor, _ = f.donors.GetByID(ctx, cp.DonorID)
	}
	if f.hospitals != nil {
		cp.Hospital, _ = f.hospitals.GetByID(ctx, cp.HospitalID)
	}
	return &cp, nil
}

func (f *fakeAppointments) HasOpenOnDate(_ context.Context, donorID, date string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.DonorID == donorID && a.Date == date && !a.Status.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAppointments) ListByDonor(_ context.Context, donorID string) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.byID {
		if a.DonorID == donorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAppointments) List(context.Context, models.AppointmentFilter) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.byID {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAppointments) Bookings(_ context.Context, hospitalID, date string) ([]rules.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []rules.Booking
	for _, a := range f.byID {
		if a.HospitalID == hospitalID && a.Date == date {
			out = append(out, rules.Booking{TimeSlot: a.TimeSlot, Status: a.Status})
		}
	}
	return out, nil
}

func (f *fakeAppointments) DueReminders(ctx context.Context, date string) ([]models.Appointment, error) {
	f.mu.Lock()
	var ids []string
	for id, a := range f.byID {
		if a.Date == date && !a.ReminderSent && !a.Status.Terminal() {
			ids = append(ids, id)
		}
	}
	f.mu.Unlock()

	var out []models.Appointment
	for _, id := range ids {
		a, _ := f.GetByID(ctx, id)
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAppointments) MarkReminderSent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].ReminderSent = true
	f.reminded = append(f.reminded, id)
	return nil
}

type fakeRequests struct {
	byID map[string]*models.BloodRequest
}

func (f *fakeRequests) Create(_ context.Context, r *models.BloodRequest) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	f.byID[r.ID] = r
	return nil
}

func (f *fakeRequests) GetByID(_ context.Context, id string) (*models.BloodRequest, error) {
	if r, ok := f.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequests) List(_ context.Context, status rules.RequestStatus, _, _ int) ([]models.BloodRequest, error) {
	var out []models.BloodRequest
	for _, r := range f.byID {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRequests) Transition(_ context.Context, id string, from, to rules.RequestStatus) error {
	r, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.Status != from {
		return repository.ErrStaleStatus
	}
	r.Status = to
	return nil
}

func (f *fakeRequests) SetMatchedDonors(_ context.Context, id string, matched int) error {
	f.byID[id].MatchedDonors = matched
	return nil
}

func (f *fakeRequests) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeAlerts struct {
	byID map[string]*models.Alert
}

func (f *fakeAlerts) Create(_ context.Context, a *models.Alert) error {
	a.ID = uuid.NewString()
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAlerts) GetByID(_ context.Context, id string) (*models.Alert, error) {
	if a, ok := f.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAlerts) List(context.Context, int, int) ([]models.Alert, error) {
	var out []models.Alert
	for _, a := range f.byID {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAlerts) RecordDelivery(_ context.Context, id string, recipients, delivered, failed int) error {
	a := f.byID[id]
	a.Recipients, a.Delivered, a.Failed = recipients, delivered, failed
	return nil
}

func (f *fakeAlerts) Transition(_ context.Context, id string, from, to rules.AlertStatus) error {
	a, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if a.Status != from {
		return repository.ErrStaleStatus
	}
	a.Status = to
	return nil
}

func (f *fakeAlerts) FulfillForRequest(_ context.Context, requestID string) (int64, error) {
	var n int64
	for _, a := range f.byID {
		if a.RequestID == requestID && a.Status == rules.AlertSent {
			a.Status = rules.AlertFulfilled
			n++
		}
	}
	return n, nil
}

type fakeDonations struct {
	records []*models.DonationRecord
	tallies []models.DonorTally
}

func (f *fakeDonations) Create(_ context.Context, r *models.DonationRecord) error {
	r.ID = uuid.NewString()
	f.records = append(f.records, r)
	return nil
}

func (f *fakeDonations) GetByID(_ context.Context, id string) (*models.DonationRecord, error) {
	for _, r := range f.records {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDonations) ListByDonor(_ context.Context, donorID string) ([]models.DonationRecord, error) {
	var out []models.DonationRecord
	for _, r := range f.records {
		if r.DonorID == donorID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeDonations) List(context.Context, int, int) ([]models.DonationRecord, error) {
	var out []models.DonationRecord
	for _, r := range f.records {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeDonations) CompletedDates(_ context.Context, donorID string) ([]time.Time, error) {
	var out []time.Time
	for _, r := range f.records {
		if r.DonorID == donorID && r.Status == models.DonationCompleted {
			out = append(out, r.DonationDate)
		}
	}
	return out, nil
}

func (f *fakeDonations) Tallies(context.Context) ([]models.DonorTally, error) {
	return f.tallies, nil
}

func (f *fakeDonations) SetCertificateURL(_ context.Context, id, url string) error {
	for _, r := range f.records {
		if r.ID == id {
			r.CertificateURL = url
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeDonations) CountCompletedSince(context.Context, time.Time) (int64, error) {
	return int64(len(f.records)), nil
}

// recordingEmail captures every outbound email and can fail for chosen recipients
type recordingEmail struct {
	mu       sync.Mutex
	sent     []string
	failFor  map[string]bool
	lastTmpl string
}

var errSendFailed = errors.New("smtp unavailable")

func (r *recordingEmail) record(tmpl string, donor *models.Donor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastTmpl = tmpl
	if r.failFor[donor.Email] {
		return errSendFailed
	}
	r.sent = append(r.sent, donor.Email)
	return nil
}

func (r *recordingEmail) SendVerification(_ context.Context, d *models.Donor, _ string) error {
	return r.record(TemplateVerifyEmail, d)
}

func (r *recordingEmail) SendBloodAlert(_ context.Context, d *models.Donor, _ *models.Alert) error {
	return r.record(TemplateBloodAlert, d)
}

func (r *recordingEmail) SendAppointmentBooked(_ context.Context, d *models.Donor, _ *models.Hospital, _ *models.Appointment) error {
	return r.record(TemplateAppointmentBooked, d)
}

func (r *recordingEmail) SendAppointmentReminder(_ context.Context, d *models.Donor, _ *models.Hospital, _ *models.Appointment) error {
	return r.record(TemplateAppointmentReminder, d)
}

func (r *recordingEmail) SendAppointmentStatus(_ context.Context, d *models.Donor, _ *models.Hospital, _ *models.Appointment) error {
	return r.record(TemplateAppointmentStatus, d)
}
