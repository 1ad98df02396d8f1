package store

import "encoding/json"

// Collection keys. These match the persisted layout exactly; renaming any of
// them orphans existing data.
const (
	usersKey         = "emr-users"
	patientsKey      = "emr-patients"
	appointmentsKey  = "emr-appointments"
	prescriptionsKey = "emr-prescriptions"
	analysesKey      = "emr-analyses"
)

// User is a doctor account. The collection is global, not doctor-scoped.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DoctorID  string `json:"doctorId"`
	Password  string `json:"password"` // bcrypt hash; legacy rows may hold plaintext
	CreatedAt string `json:"createdAt"`
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Patient is owned by exactly one doctor.
type Patient struct {
	ID             string   `json:"id"`
	DoctorID       string   `json:"doctorId"`
	Name           string   `json:"name"`
	DateOfBirth    string   `json:"dateOfBirth"`
	Gender         Gender   `json:"gender"`
	Contact        string   `json:"contact"`
	Address        string   `json:"address"`
	MedicalHistory []string `json:"medicalHistory"`
	CreatedAt      string   `json:"createdAt"`
}

// PatientDraft holds the caller-supplied fields of a new patient.
type PatientDraft struct {
	Name           string   `json:"name"`
	DateOfBirth    string   `json:"dateOfBirth"`
	Gender         Gender   `json:"gender"`
	Contact        string   `json:"contact"`
	Address        string   `json:"address"`
	MedicalHistory []string `json:"medicalHistory"`
}

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// Appointment references a patient and the owning doctor. PatientName and
// DoctorName are denormalized snapshots taken at creation time.
type Appointment struct {
	ID          string            `json:"id"`
	DoctorID    string            `json:"doctorId"`
	PatientID   string            `json:"patientId"`
	PatientName string            `json:"patientName"`
	DoctorName  string            `json:"doctorName"`
	Date        string            `json:"date"` // yyyy-MM-dd
	Time        string            `json:"time"` // HH:MM
	Reason      string            `json:"reason"`
	Status      AppointmentStatus `json:"status"`
	CreatedAt   string            `json:"createdAt"`
}

// AppointmentDraft holds the caller-supplied fields of a new appointment.
type AppointmentDraft struct {
	PatientID   string            `json:"patientId"`
	PatientName string            `json:"patientName"`
	DoctorName  string            `json:"doctorName"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Reason      string            `json:"reason"`
	Status      AppointmentStatus `json:"status"`
}

type Prescription struct {
	ID          string `json:"id"`
	DoctorID    string `json:"doctorId"`
	PatientID   string `json:"patientId"`
	PatientName string `json:"patientName"`
	DoctorName  string `json:"doctorName"`
	Date        string `json:"date"` // yyyy-MM-dd
	Medication  string `json:"medication"`
	Dosage      string `json:"dosage"`
	Frequency   string `json:"frequency"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// PrescriptionDraft holds the caller-supplied fields of a new prescription.
type PrescriptionDraft struct {
	PatientID   string `json:"patientId"`
	PatientName string `json:"patientName"`
	DoctorName  string `json:"doctorName"`
	Date        string `json:"date"`
	Medication  string `json:"medication"`
	Dosage      string `json:"dosage"`
	Frequency   string `json:"frequency"`
	Notes       string `json:"notes,omitempty"`
}

// AnalysisType discriminates the two analysis output variants. It is set by
// the draft constructors and is the only thing consulted when decoding the
// output payload; callers never infer the variant from field presence.
type AnalysisType string

const (
	AnalysisTypeDental   AnalysisType = "Dental X-ray"
	AnalysisTypeStandard AnalysisType = "Standard"
)

// MedicalAnalysis is a saved AI analysis result for a patient. AnalysisOutput
// holds the flow result verbatim; decode it with DecodeOutput after checking
// AnalysisType.
type MedicalAnalysis struct {
	ID                   string          `json:"id"`
	PatientID            string          `json:"patientId"`
	DoctorID             string          `json:"doctorId"`
	CreatedAt            string          `json:"createdAt"`
	OriginalImageDataURI string          `json:"originalImageDataUri"`
	AnalysisType         AnalysisType    `json:"analysisType"`
	AnalysisOutput       json.RawMessage `json:"analysisOutput"`
	ImagingModality      string          `json:"imagingModality"`
	PatientDetails       string          `json:"patientDetails"`
}

// DecodeOutput unmarshals the stored analysis payload into v. Callers pick v
// based on AnalysisType.
func (m *MedicalAnalysis) DecodeOutput(v any) error {
	return json.Unmarshal(m.AnalysisOutput, v)
}

// AnalysisDraft holds the caller-supplied fields of a new analysis. Build it
// with NewDentalAnalysisDraft or NewStandardAnalysisDraft so the variant
// discriminant is fixed at construction.
type AnalysisDraft struct {
	PatientID            string
	OriginalImageDataURI string
	analysisType         AnalysisType
	AnalysisOutput       json.RawMessage
	ImagingModality      string
	PatientDetails       string
}

// NewDentalAnalysisDraft builds a draft for a dental X-ray flow result.
func NewDentalAnalysisDraft(patientID, imageDataURI, imagingModality, patientDetails string, output json.RawMessage) AnalysisDraft {
	return AnalysisDraft{
		PatientID:            patientID,
		OriginalImageDataURI: imageDataURI,
		analysisType:         AnalysisTypeDental,
		AnalysisOutput:       output,
		ImagingModality:      imagingModality,
		PatientDetails:       patientDetails,
	}
}

// NewStandardAnalysisDraft builds a draft for a standard diagnosis flow result.
func NewStandardAnalysisDraft(patientID, imageDataURI, imagingModality, patientDetails string, output json.RawMessage) AnalysisDraft {
	return AnalysisDraft{
		PatientID:            patientID,
		OriginalImageDataURI: imageDataURI,
		analysisType:         AnalysisTypeStandard,
		AnalysisOutput:       output,
		ImagingModality:      imagingModality,
		PatientDetails:       patientDetails,
	}
}
