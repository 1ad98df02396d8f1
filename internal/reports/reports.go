// Package reports aggregates a doctor's records into the chart-ready report
// shapes the dashboard renders.
package reports

import (
	"sort"
	"time"

	"github.com/vitalens/vitalens/internal/store"
)

// MonthCount is one bar of the appointments-per-month chart.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// GenderCount is one slice of the demographics chart. Fill is the chart
// color token for the slice.
type GenderCount struct {
	Gender string `json:"gender"`
	Count  int    `json:"count"`
	Fill   string `json:"fill"`
}

// Data is the full report payload for one doctor.
type Data struct {
	AppointmentsPerMonth []MonthCount  `json:"appointmentsPerMonth"`
	PatientDemographics  []GenderCount `json:"patientDemographics"`
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var genderFills = map[store.Gender]string{
	store.GenderMale:   "hsl(var(--chart-1))",
	store.GenderFemale: "hsl(var(--chart-2))",
	store.GenderOther:  "hsl(var(--chart-3))",
}

// Build aggregates the doctor's appointments over the six months ending at
// now, plus patient counts by gender.
func Build(st *store.Store, doctorID string, now time.Time) Data {
	byMonth := make(map[string]int, 6)
	for i := 5; i >= 0; i-- {
		m := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		byMonth[m.Format("Jan")] = 0
	}

	for _, appt := range st.GetAppointments(doctorID) {
		d, err := time.Parse("2006-01-02", appt.Date)
		if err != nil {
			continue
		}
		key := d.Format("Jan")
		if _, tracked := byMonth[key]; tracked {
			byMonth[key]++
		}
	}

	perMonth := make([]MonthCount, 0, len(byMonth))
	for month, count := range byMonth {
		perMonth = append(perMonth, MonthCount{Month: month, Count: count})
	}
	sort.Slice(perMonth, func(i, j int) bool {
		return monthIndex(perMonth[i].Month) < monthIndex(perMonth[j].Month)
	})

	demographics := map[store.Gender]int{
		store.GenderMale:   0,
		store.GenderFemale: 0,
		store.GenderOther:  0,
	}
	for _, p := range st.GetPatients(doctorID) {
		if _, known := demographics[p.Gender]; known {
			demographics[p.Gender]++
		}
	}

	byGender := make([]GenderCount, 0, len(demographics))
	for _, g := range []store.Gender{store.GenderMale, store.GenderFemale, store.GenderOther} {
		byGender = append(byGender, GenderCount{
			Gender: string(g),
			Count:  demographics[g],
			Fill:   genderFills[g],
		})
	}

	return Data{
		AppointmentsPerMonth: perMonth,
		PatientDemographics:  byGender,
	}
}

func monthIndex(name string) int {
	for i, m := range monthNames {
		if m == name {
			return i
		}
	}
	return len(monthNames)
}
