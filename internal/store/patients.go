package store

import (
	"github.com/vitalens/vitalens/internal/metrics"
	"go.uber.org/zap"
)

// GetPatients returns the patients owned by a doctor, in insertion order.
func (s *Store) GetPatients(doctorID string) []Patient {
	metrics.RecordStoreOp("patients", "read")
	var matched []Patient
	for _, p := range readCollection[Patient](s, patientsKey) {
		if p.DoctorID == doctorID {
			matched = append(matched, p)
		}
	}
	return matched
}

// GetPatientByID looks a patient up across all doctors.
func (s *Store) GetPatientByID(patientID string) (Patient, bool) {
	metrics.RecordStoreOp("patients", "read")
	for _, p := range readCollection[Patient](s, patientsKey) {
		if p.ID == patientID {
			return p, true
		}
	}
	return Patient{}, false
}

// AddPatient creates a patient owned by doctorID.
func (s *Store) AddPatient(draft PatientDraft, doctorID string) Patient {
	patients := readCollection[Patient](s, patientsKey)
	patient := Patient{
		ID:             newRecordID("patient"),
		DoctorID:       doctorID,
		Name:           draft.Name,
		DateOfBirth:    draft.DateOfBirth,
		Gender:         draft.Gender,
		Contact:        draft.Contact,
		Address:        draft.Address,
		MedicalHistory: draft.MedicalHistory,
		CreatedAt:      nowISO(),
	}
	writeCollection(s, patientsKey, append(patients, patient))

	metrics.RecordStoreOp("patients", "create")
	s.Audit(doctorID, "create", "patients", patient.ID, "ok")
	return patient
}

// UpdatePatient replaces the stored patient whose id matches. An unknown id
// is a no-op, never an insert.
func (s *Store) UpdatePatient(updated Patient) {
	patients := readCollection[Patient](s, patientsKey)
	for i, p := range patients {
		if p.ID == updated.ID {
			patients[i] = updated
		}
	}
	writeCollection(s, patientsKey, patients)

	metrics.RecordStoreOp("patients", "update")
	s.Audit(updated.DoctorID, "update", "patients", updated.ID, "ok")
}

// DeletePatient removes a patient and cascades over every dependent record:
// appointments, prescriptions, and analyses referencing the patient id are
// removed from their own collections. The four removals are not atomic with
// respect to each other; an interruption mid-cascade can leave orphans, which
// is an accepted limitation of the underlying key-value storage.
func (s *Store) DeletePatient(patientID string) {
	patients := readCollection[Patient](s, patientsKey)
	kept := patients[:0]
	for _, p := range patients {
		if p.ID != patientID {
			kept = append(kept, p)
		}
	}
	writeCollection(s, patientsKey, kept)

	appointments := readCollection[Appointment](s, appointmentsKey)
	keptAppts := appointments[:0]
	for _, a := range appointments {
		if a.PatientID != patientID {
			keptAppts = append(keptAppts, a)
		}
	}
	writeCollection(s, appointmentsKey, keptAppts)

	prescriptions := readCollection[Prescription](s, prescriptionsKey)
	keptPresc := prescriptions[:0]
	for _, p := range prescriptions {
		if p.PatientID != patientID {
			keptPresc = append(keptPresc, p)
		}
	}
	writeCollection(s, prescriptionsKey, keptPresc)

	analyses := readCollection[MedicalAnalysis](s, analysesKey)
	keptAnalyses := analyses[:0]
	for _, a := range analyses {
		if a.PatientID != patientID {
			keptAnalyses = append(keptAnalyses, a)
		}
	}
	writeCollection(s, analysesKey, keptAnalyses)

	metrics.RecordStoreOp("patients", "delete")
	s.Audit("", "delete", "patients", patientID, "ok")
	s.logger.Info("patient deleted with cascade",
		zap.String("patientId", patientID),
		zap.Int("appointmentsRemoved", len(appointments)-len(keptAppts)),
		zap.Int("prescriptionsRemoved", len(prescriptions)-len(keptPresc)),
		zap.Int("analysesRemoved", len(analyses)-len(keptAnalyses)))
}
