package api

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vitalens/vitalens/internal/ai"
	"github.com/vitalens/vitalens/internal/errors"
	"github.com/vitalens/vitalens/internal/reports"
	"github.com/vitalens/vitalens/internal/store"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"storage":   s.store.Available(),
		"timestamp": time.Now().Unix(),
	})
}

// statusFor maps application error codes onto HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case "AUTH_001":
		return fiber.StatusConflict
	case "AUTH_002", "AUTH_003":
		return fiber.StatusUnauthorized
	case "AI_001":
		return fiber.StatusServiceUnavailable
	case "AI_002", "AI_003":
		return fiber.StatusBadGateway
	case "AI_004", "GEN_002":
		return fiber.StatusBadRequest
	case "GEN_001":
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

// ==================== Auth ====================

type credentialsRequest struct {
	DoctorID string `json:"doctorId"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	session, err := s.auth.Signup(req.DoctorID, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	session, err := s.auth.Login(req.DoctorID, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(session)
}

// ==================== Patients ====================

// ownedPatient loads a patient and checks it belongs to the caller.
func (s *Server) ownedPatient(c *fiber.Ctx, patientID string) (store.Patient, error) {
	patient, ok := s.store.GetPatientByID(patientID)
	if !ok || patient.DoctorID != s.claims(c).UserID {
		return store.Patient{}, errors.ErrNotFound
	}
	return patient, nil
}

func (s *Server) handleListPatients(c *fiber.Ctx) error {
	return c.JSON(s.store.GetPatients(s.claims(c).UserID))
}

func (s *Server) handleCreatePatient(c *fiber.Ctx) error {
	var draft store.PatientDraft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if draft.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "patient name is required"})
	}

	patient := s.store.AddPatient(draft, s.claims(c).UserID)
	return c.Status(fiber.StatusCreated).JSON(patient)
}

func (s *Server) handleGetPatient(c *fiber.Ctx) error {
	patient, err := s.ownedPatient(c, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(patient)
}

func (s *Server) handleUpdatePatient(c *fiber.Ctx) error {
	existing, err := s.ownedPatient(c, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	var updated store.Patient
	if err := c.BodyParser(&updated); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	updated.ID = existing.ID
	updated.DoctorID = existing.DoctorID
	updated.CreatedAt = existing.CreatedAt

	s.store.UpdatePatient(updated)
	return c.JSON(updated)
}

func (s *Server) handleDeletePatient(c *fiber.Ctx) error {
	patient, err := s.ownedPatient(c, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	s.store.DeletePatient(patient.ID)
	s.logger.Info("patient deleted", zap.String("patientId", patient.ID))
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handlePatientAppointments(c *fiber.Ctx) error {
	patient, err := s.ownedPatient(c, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(s.store.GetAppointmentsByPatient(patient.ID))
}

func (s *Server) handlePatientPrescriptions(c *fiber.Ctx) error {
	patient, err := s.ownedPatient(c, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(s.store.GetPrescriptionsByPatient(patient.ID))
}

func (s *Server) handlePatientAnalyses(c *fiber.Ctx) error {
	patient, err := s.ownedPatient(c, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(s.store.GetAnalysesByPatient(patient.ID))
}

// ==================== Appointments ====================

func (s *Server) handleListAppointments(c *fiber.Ctx) error {
	return c.JSON(s.store.GetAppointments(s.claims(c).UserID))
}

func (s *Server) handleCreateAppointment(c *fiber.Ctx) error {
	var draft store.AppointmentDraft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	patient, err := s.ownedPatient(c, draft.PatientID)
	if err != nil {
		return fail(c, err)
	}
	draft.PatientName = patient.Name
	if draft.DoctorName == "" {
		draft.DoctorName = s.claims(c).Name
	}
	if draft.Status == "" {
		draft.Status = store.StatusScheduled
	}

	appt := s.store.AddAppointment(draft, s.claims(c).UserID)
	return c.Status(fiber.StatusCreated).JSON(appt)
}

func (s *Server) handleUpdateAppointment(c *fiber.Ctx) error {
	existing, ok := s.findAppointment(c, c.Params("id"))
	if !ok {
		return fail(c, errors.ErrNotFound)
	}

	var updated store.Appointment
	if err := c.BodyParser(&updated); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	updated.ID = existing.ID
	updated.DoctorID = existing.DoctorID
	updated.PatientID = existing.PatientID
	updated.CreatedAt = existing.CreatedAt

	s.store.UpdateAppointment(updated)
	return c.JSON(updated)
}

func (s *Server) handleDeleteAppointment(c *fiber.Ctx) error {
	existing, ok := s.findAppointment(c, c.Params("id"))
	if !ok {
		return fail(c, errors.ErrNotFound)
	}

	s.store.DeleteAppointment(existing.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) findAppointment(c *fiber.Ctx, id string) (store.Appointment, bool) {
	for _, appt := range s.store.GetAppointments(s.claims(c).UserID) {
		if appt.ID == id {
			return appt, true
		}
	}
	return store.Appointment{}, false
}

// ==================== Prescriptions ====================

func (s *Server) handleListPrescriptions(c *fiber.Ctx) error {
	return c.JSON(s.store.GetPrescriptions(s.claims(c).UserID))
}

func (s *Server) handleCreatePrescription(c *fiber.Ctx) error {
	var draft store.PrescriptionDraft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	patient, err := s.ownedPatient(c, draft.PatientID)
	if err != nil {
		return fail(c, err)
	}
	draft.PatientName = patient.Name
	if draft.DoctorName == "" {
		draft.DoctorName = s.claims(c).Name
	}

	presc := s.store.AddPrescription(draft, s.claims(c).UserID)
	return c.Status(fiber.StatusCreated).JSON(presc)
}

func (s *Server) handleUpdatePrescription(c *fiber.Ctx) error {
	existing, ok := s.findPrescription(c, c.Params("id"))
	if !ok {
		return fail(c, errors.ErrNotFound)
	}

	var updated store.Prescription
	if err := c.BodyParser(&updated); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	updated.ID = existing.ID
	updated.DoctorID = existing.DoctorID
	updated.PatientID = existing.PatientID
	updated.CreatedAt = existing.CreatedAt

	s.store.UpdatePrescription(updated)
	return c.JSON(updated)
}

func (s *Server) handleDeletePrescription(c *fiber.Ctx) error {
	existing, ok := s.findPrescription(c, c.Params("id"))
	if !ok {
		return fail(c, errors.ErrNotFound)
	}

	s.store.DeletePrescription(existing.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) findPrescription(c *fiber.Ctx, id string) (store.Prescription, bool) {
	for _, presc := range s.store.GetPrescriptions(s.claims(c).UserID) {
		if presc.ID == id {
			return presc, true
		}
	}
	return store.Prescription{}, false
}

// ==================== Analyses ====================

type saveAnalysisRequest struct {
	PatientID            string          `json:"patientId"`
	OriginalImageDataURI string          `json:"originalImageDataUri"`
	AnalysisType         string          `json:"analysisType"`
	AnalysisOutput       json.RawMessage `json:"analysisOutput"`
	ImagingModality      string          `json:"imagingModality"`
	PatientDetails       string          `json:"patientDetails"`
}

func (s *Server) handleSaveAnalysis(c *fiber.Ctx) error {
	var req saveAnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	patient, err := s.ownedPatient(c, req.PatientID)
	if err != nil {
		return fail(c, err)
	}
	if len(req.AnalysisOutput) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "analysisOutput is required"})
	}

	var draft store.AnalysisDraft
	switch store.AnalysisType(req.AnalysisType) {
	case store.AnalysisTypeDental:
		draft = store.NewDentalAnalysisDraft(patient.ID, req.OriginalImageDataURI, req.ImagingModality, req.PatientDetails, req.AnalysisOutput)
	case store.AnalysisTypeStandard:
		draft = store.NewStandardAnalysisDraft(patient.ID, req.OriginalImageDataURI, req.ImagingModality, req.PatientDetails, req.AnalysisOutput)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown analysis type"})
	}

	analysis := s.store.AddAnalysis(draft, s.claims(c).UserID)
	return c.Status(fiber.StatusCreated).JSON(analysis)
}

func (s *Server) handleDeleteAnalysis(c *fiber.Ctx) error {
	id := c.Params("id")
	found := false
	for _, patient := range s.store.GetPatients(s.claims(c).UserID) {
		for _, analysis := range s.store.GetAnalysesByPatient(patient.ID) {
			if analysis.ID == id {
				found = true
			}
		}
	}
	if !found {
		return fail(c, errors.ErrNotFound)
	}

	s.store.DeleteAnalysis(id)
	return c.SendStatus(fiber.StatusNoContent)
}

// ==================== AI flows ====================

func (s *Server) handleDentalAnalysis(c *fiber.Ctx) error {
	var in ai.DentalXrayInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	out, err := s.ai.DentalXrayAnalysis(c.UserContext(), in)
	if err != nil {
		s.logger.Error("dental analysis failed", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(out)
}

func (s *Server) handleDiagnosisSummary(c *fiber.Ctx) error {
	var in ai.DiagnosisSummaryInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	out, err := s.ai.DiagnosisSummary(c.UserContext(), in)
	if err != nil {
		s.logger.Error("diagnosis summary failed", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(out)
}

func (s *Server) handleEnhancePrompt(c *fiber.Ctx) error {
	var in ai.EnhancePromptInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	out, err := s.ai.EnhanceDetectionPrompt(c.UserContext(), in)
	if err != nil {
		s.logger.Error("prompt enhancement failed", zap.Error(err))
		return fail(c, err)
	}
	return c.JSON(out)
}

// ==================== Reports and audit ====================

func (s *Server) handleReports(c *fiber.Ctx) error {
	return c.JSON(reports.Build(s.store, s.claims(c).UserID, time.Now()))
}

func (s *Server) handleAuditLog(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	return c.JSON(s.store.RecentAuditEvents(limit))
}
