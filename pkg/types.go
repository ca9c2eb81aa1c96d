package pkg

import "time"

// RiskLevel is the primary output of the triage pipeline.  Outward responses
// only ever carry one of these four values; anything else a provider returns
// is coerced to RiskModerate before leaving the orchestrator.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskError    RiskLevel = "ERROR"
)

// Terminal pipeline statuses.
const (
	StatusSuccess          = "success"
	StatusConsentRequired  = "consent_required"
	StatusIncompleteInput  = "incomplete_input"
	StatusEmergency        = "emergency_detected"
	StatusAIError          = "ai_error"
	StatusAIPartialFailure = "ai_partial_failure"
)

// TriageRequest is a single patient submission.  All fields are owned by the
// in-flight request; nothing outlives the response.
type TriageRequest struct {
	SymptomText  string
	ImageBytes   []byte
	UserLanguage string // human-readable language name, defaults to "English"
	ConsentGiven bool
}

// TriageResult is the outward-facing analysis result returned by /analyze.
type TriageResult struct {
	Risk              RiskLevel         `json:"risk"`
	DoctorSummary     string            `json:"doctor_summary"`
	Advice            string            `json:"advice"`
	Status            string            `json:"status"`
	RequestID         string            `json:"request_id,omitempty"`
	UserLanguage      string            `json:"user_language,omitempty"`
	TranslationUsed   bool              `json:"translation_used,omitempty"`
	WhatsAppEnabled   bool              `json:"whatsapp_enabled,omitempty"`
	DebugKeywords     []string          `json:"debug_keywords,omitempty"`
	EmergencyContacts map[string]string `json:"emergency_contacts,omitempty"`
	Debug             string            `json:"debug,omitempty"`
	Compliance        *ComplianceInfo   `json:"compliance,omitempty"`
}

// ComplianceInfo echoes the data-handling guarantees applied to a request.
type ComplianceInfo struct {
	DataRetentionDays int  `json:"data_retention_days"`
	Anonymized        bool `json:"anonymized"`
	AuditLogged       bool `json:"audit_logged"`
}

// TranslationResult is the discriminated outcome of a single translation
// call.  Created fresh per call, never persisted.  On failure TranslatedText
// is empty and OriginalText carries the input unchanged.
type TranslationResult struct {
	Success          bool    `json:"success"`
	OriginalText     string  `json:"original_text"`
	TranslatedText   string  `json:"translated_text,omitempty"`
	SourceLanguage   string  `json:"source_language,omitempty"`
	TargetLanguage   string  `json:"target_language,omitempty"`
	DetectedLanguage string  `json:"detected_language,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
	Skipped          bool    `json:"skipped,omitempty"`
	Error            string  `json:"error,omitempty"`
	Details          string  `json:"details,omitempty"`
}

// SendOutcome is the normalized result of a messaging delivery attempt.
type SendOutcome struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Messaging outcome statuses.
const (
	SendStatusSent          = "sent"
	SendStatusFailed        = "failed"
	SendStatusNotConfigured = "not_configured"
)

// AuditEvent is an append-only compliance record.  UserHash is a truncated
// SHA-256 of whatever identifying data accompanied the action; raw
// identifiers never reach the ledger.
type AuditEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	RequestID string    `json:"request_id"`
	UserHash  string    `json:"user_hash"`
	Status    string    `json:"status"`
}

// ConsentRecord captures a user's consent decision.  The hashed user id is
// stored in place of the raw one.
type ConsentRecord struct {
	UserHash     string    `json:"user_hash"`
	ConsentType  string    `json:"consent_type"`
	ConsentGiven bool      `json:"consent_given"`
	Timestamp    time.Time `json:"timestamp"`
	ExpiresAt    time.Time `json:"expires_at"`
}
