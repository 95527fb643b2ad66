package model

import "time"

type SubjectType string

const (
	SubjectReservation SubjectType = "RESERVATION"
	SubjectEnrollment  SubjectType = "ENROLLMENT"
	SubjectLedgerEntry SubjectType = "LEDGER_ENTRY"
	SubjectTariff      SubjectType = "TARIFF"
	SubjectMaintenance SubjectType = "MAINTENANCE"
	SubjectCourt       SubjectType = "COURT"
	SubjectWallet      SubjectType = "WALLET"
)

type AuditEvent struct {
	ID          string         `json:"id" bson:"_id"`
	SubjectType SubjectType    `json:"subject_type" bson:"subject_type"`
	SubjectID   string         `json:"subject_id" bson:"subject_id"`
	EventType   string         `json:"event_type" bson:"event_type"`
	Summary     string         `json:"summary" bson:"summary"`
	Actor       string         `json:"actor" bson:"actor"`
	Metadata    map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
}
