package store

import "github.com/vitalens/vitalens/internal/metrics"

// GetAnalysesByPatient returns every saved analysis referencing a patient.
func (s *Store) GetAnalysesByPatient(patientID string) []MedicalAnalysis {
	metrics.RecordStoreOp("analyses", "read")
	var matched []MedicalAnalysis
	for _, a := range readCollection[MedicalAnalysis](s, analysesKey) {
		if a.PatientID == patientID {
			matched = append(matched, a)
		}
	}
	return matched
}

// AddAnalysis saves a flow result for a patient.
func (s *Store) AddAnalysis(draft AnalysisDraft, doctorID string) MedicalAnalysis {
	analyses := readCollection[MedicalAnalysis](s, analysesKey)
	analysis := MedicalAnalysis{
		ID:                   newRecordID("analysis"),
		PatientID:            draft.PatientID,
		DoctorID:             doctorID,
		CreatedAt:            nowISO(),
		OriginalImageDataURI: draft.OriginalImageDataURI,
		AnalysisType:         draft.analysisType,
		AnalysisOutput:       draft.AnalysisOutput,
		ImagingModality:      draft.ImagingModality,
		PatientDetails:       draft.PatientDetails,
	}
	writeCollection(s, analysesKey, append(analyses, analysis))

	metrics.RecordStoreOp("analyses", "create")
	s.Audit(doctorID, "create", "analyses", analysis.ID, "ok")
	return analysis
}

// DeleteAnalysis removes the analysis with the given id.
func (s *Store) DeleteAnalysis(analysisID string) {
	analyses := readCollection[MedicalAnalysis](s, analysesKey)
	kept := analyses[:0]
	for _, a := range analyses {
		if a.ID != analysisID {
			kept = append(kept, a)
		}
	}
	writeCollection(s, analysesKey, kept)

	metrics.RecordStoreOp("analyses", "delete")
	s.Audit("", "delete", "analyses", analysisID, "ok")
}
