package store

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditEvent records one mutation or auth attempt. Events live in a local
// SQLite file next to the record store; losing them never affects records.
type AuditEvent struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	Collection string    `json:"collection" gorm:"index"`
	RecordID   string    `json:"record_id" gorm:"index"`
	Outcome    string    `json:"outcome"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Audit appends an event to the audit trail. Failures are logged, never
// surfaced: auditing must not fail the operation being audited.
func (s *Store) Audit(actor, action, collection, recordID, outcome string) {
	if s.audit == nil {
		return
	}

	event := &AuditEvent{
		ID:         uuid.NewString(),
		Actor:      actor,
		Action:     action,
		Collection: collection,
		RecordID:   recordID,
		Outcome:    outcome,
		RecordedAt: time.Now(),
	}
	if err := s.audit.Create(event).Error; err != nil {
		s.logger.Warn("failed to record audit event",
			zap.String("action", action), zap.Error(err))
	}
}

// RecentAuditEvents returns the newest events first.
func (s *Store) RecentAuditEvents(limit int) []AuditEvent {
	if s.audit == nil {
		return nil
	}
	if limit <= 0 {
		limit = 50
	}

	var events []AuditEvent
	if err := s.audit.Order("recorded_at DESC").Limit(limit).Find(&events).Error; err != nil {
		s.logger.Warn("failed to query audit events", zap.Error(err))
		return nil
	}
	return events
}

// AuditTrail returns the newest events for one record, newest first.
func (s *Store) AuditTrail(collection, recordID string, limit int) []AuditEvent {
	if s.audit == nil {
		return nil
	}
	if limit <= 0 {
		limit = 50
	}

	var events []AuditEvent
	err := s.audit.Where("collection = ? AND record_id = ?", collection, recordID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		s.logger.Warn("failed to query audit trail", zap.Error(err))
		return nil
	}
	return events
}
