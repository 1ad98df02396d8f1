package store

import "github.com/vitalens/vitalens/internal/metrics"

// GetPrescriptions returns the prescriptions issued by a doctor, in insertion order.
func (s *Store) GetPrescriptions(doctorID string) []Prescription {
	metrics.RecordStoreOp("prescriptions", "read")
	var matched []Prescription
	for _, p := range readCollection[Prescription](s, prescriptionsKey) {
		if p.DoctorID == doctorID {
			matched = append(matched, p)
		}
	}
	return matched
}

// GetPrescriptionsByPatient returns every prescription referencing a patient.
func (s *Store) GetPrescriptionsByPatient(patientID string) []Prescription {
	metrics.RecordStoreOp("prescriptions", "read")
	var matched []Prescription
	for _, p := range readCollection[Prescription](s, prescriptionsKey) {
		if p.PatientID == patientID {
			matched = append(matched, p)
		}
	}
	return matched
}

// AddPrescription creates a prescription issued by doctorID.
func (s *Store) AddPrescription(draft PrescriptionDraft, doctorID string) Prescription {
	prescriptions := readCollection[Prescription](s, prescriptionsKey)
	prescription := Prescription{
		ID:          newRecordID("presc"),
		DoctorID:    doctorID,
		PatientID:   draft.PatientID,
		PatientName: draft.PatientName,
		DoctorName:  draft.DoctorName,
		Date:        draft.Date,
		Medication:  draft.Medication,
		Dosage:      draft.Dosage,
		Frequency:   draft.Frequency,
		Notes:       draft.Notes,
		CreatedAt:   nowISO(),
	}
	writeCollection(s, prescriptionsKey, append(prescriptions, prescription))

	metrics.RecordStoreOp("prescriptions", "create")
	s.Audit(doctorID, "create", "prescriptions", prescription.ID, "ok")
	return prescription
}

// UpdatePrescription replaces the stored prescription whose id matches. An
// unknown id is a no-op.
func (s *Store) UpdatePrescription(updated Prescription) {
	prescriptions := readCollection[Prescription](s, prescriptionsKey)
	for i, p := range prescriptions {
		if p.ID == updated.ID {
			prescriptions[i] = updated
		}
	}
	writeCollection(s, prescriptionsKey, prescriptions)

	metrics.RecordStoreOp("prescriptions", "update")
	s.Audit(updated.DoctorID, "update", "prescriptions", updated.ID, "ok")
}

// DeletePrescription removes the prescription with the given id.
func (s *Store) DeletePrescription(prescriptionID string) {
	prescriptions := readCollection[Prescription](s, prescriptionsKey)
	kept := prescriptions[:0]
	for _, p := range prescriptions {
		if p.ID != prescriptionID {
			kept = append(kept, p)
		}
	}
	writeCollection(s, prescriptionsKey, kept)

	metrics.RecordStoreOp("prescriptions", "delete")
	s.Audit("", "delete", "prescriptions", prescriptionID, "ok")
}
