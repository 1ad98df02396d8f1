package reports

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalens/vitalens/internal/config"
	"github.com/vitalens/vitalens/internal/store"
	"go.uber.org/zap"
)

func setupTestStore(t *testing.T) *store.Store {
	cfg := &config.Config{}
	cfg.Storage.InMemory = true
	cfg.Storage.AuditPath = filepath.Join(t.TempDir(), "audit.db")

	st := store.New(cfg, zap.NewNop())
	t.Cleanup(func() { st.Close() })
	return st
}

func addAppointment(st *store.Store, patientID, date, doctorID string) {
	st.AddAppointment(store.AppointmentDraft{
		PatientID: patientID,
		Date:      date,
		Status:    store.StatusScheduled,
	}, doctorID)
}

func TestBuild_AppointmentsPerMonth(t *testing.T) {
	st := setupTestStore(t)
	patient := st.AddPatient(store.PatientDraft{Name: "John", Gender: store.GenderMale}, "user-1")

	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	addAppointment(st, patient.ID, "2026-08-03", "user-1")
	addAppointment(st, patient.ID, "2026-08-20", "user-1")
	addAppointment(st, patient.ID, "2026-06-10", "user-1")
	// Outside the six month window
	addAppointment(st, patient.ID, "2026-01-10", "user-1")
	// Unparseable date is skipped
	addAppointment(st, patient.ID, "next tuesday", "user-1")
	// Another doctor's appointment does not count
	addAppointment(st, patient.ID, "2026-08-05", "user-2")

	data := Build(st, "user-1", now)

	require.Len(t, data.AppointmentsPerMonth, 6)
	assert.Equal(t, []MonthCount{
		{Month: "Mar", Count: 0},
		{Month: "Apr", Count: 0},
		{Month: "May", Count: 0},
		{Month: "Jun", Count: 1},
		{Month: "Jul", Count: 0},
		{Month: "Aug", Count: 2},
	}, data.AppointmentsPerMonth)
}

func TestBuild_PatientDemographics(t *testing.T) {
	st := setupTestStore(t)

	st.AddPatient(store.PatientDraft{Name: "A", Gender: store.GenderMale}, "user-1")
	st.AddPatient(store.PatientDraft{Name: "B", Gender: store.GenderFemale}, "user-1")
	st.AddPatient(store.PatientDraft{Name: "C", Gender: store.GenderFemale}, "user-1")
	st.AddPatient(store.PatientDraft{Name: "D", Gender: store.GenderOther}, "user-1")
	// Scoped out
	st.AddPatient(store.PatientDraft{Name: "E", Gender: store.GenderMale}, "user-2")

	data := Build(st, "user-1", time.Now())

	require.Len(t, data.PatientDemographics, 3)
	assert.Equal(t, GenderCount{Gender: "Male", Count: 1, Fill: "hsl(var(--chart-1))"}, data.PatientDemographics[0])
	assert.Equal(t, GenderCount{Gender: "Female", Count: 2, Fill: "hsl(var(--chart-2))"}, data.PatientDemographics[1])
	assert.Equal(t, GenderCount{Gender: "Other", Count: 1, Fill: "hsl(var(--chart-3))"}, data.PatientDemographics[2])
}

func TestBuild_EmptyStore(t *testing.T) {
	st := setupTestStore(t)

	data := Build(st, "user-1", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))

	require.Len(t, data.AppointmentsPerMonth, 6)
	for _, m := range data.AppointmentsPerMonth {
		assert.Zero(t, m.Count)
	}
}
