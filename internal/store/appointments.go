package store

import "github.com/vitalens/vitalens/internal/metrics"

// GetAppointments returns the appointments owned by a doctor, in insertion order.
func (s *Store) GetAppointments(doctorID string) []Appointment {
	metrics.RecordStoreOp("appointments", "read")
	var matched []Appointment
	for _, a := range readCollection[Appointment](s, appointmentsKey) {
		if a.DoctorID == doctorID {
			matched = append(matched, a)
		}
	}
	return matched
}

// GetAppointmentsByPatient returns every appointment referencing a patient,
// regardless of doctor.
func (s *Store) GetAppointmentsByPatient(patientID string) []Appointment {
	metrics.RecordStoreOp("appointments", "read")
	var matched []Appointment
	for _, a := range readCollection[Appointment](s, appointmentsKey) {
		if a.PatientID == patientID {
			matched = append(matched, a)
		}
	}
	return matched
}

// AddAppointment creates an appointment owned by doctorID.
func (s *Store) AddAppointment(draft AppointmentDraft, doctorID string) Appointment {
	appointments := readCollection[Appointment](s, appointmentsKey)
	appointment := Appointment{
		ID:          newRecordID("appt"),
		DoctorID:    doctorID,
		PatientID:   draft.PatientID,
		PatientName: draft.PatientName,
		DoctorName:  draft.DoctorName,
		Date:        draft.Date,
		Time:        draft.Time,
		Reason:      draft.Reason,
		Status:      draft.Status,
		CreatedAt:   nowISO(),
	}
	writeCollection(s, appointmentsKey, append(appointments, appointment))

	metrics.RecordStoreOp("appointments", "create")
	s.Audit(doctorID, "create", "appointments", appointment.ID, "ok")
	return appointment
}

// UpdateAppointment replaces the stored appointment whose id matches. An
// unknown id is a no-op.
func (s *Store) UpdateAppointment(updated Appointment) {
	appointments := readCollection[Appointment](s, appointmentsKey)
	for i, a := range appointments {
		if a.ID == updated.ID {
			appointments[i] = updated
		}
	}
	writeCollection(s, appointmentsKey, appointments)

	metrics.RecordStoreOp("appointments", "update")
	s.Audit(updated.DoctorID, "update", "appointments", updated.ID, "ok")
}

// DeleteAppointment removes the appointment with the given id.
func (s *Store) DeleteAppointment(appointmentID string) {
	appointments := readCollection[Appointment](s, appointmentsKey)
	kept := appointments[:0]
	for _, a := range appointments {
		if a.ID != appointmentID {
			kept = append(kept, a)
		}
	}
	writeCollection(s, appointmentsKey, kept)

	metrics.RecordStoreOp("appointments", "delete")
	s.Audit("", "delete", "appointments", appointmentID, "ok")
}
