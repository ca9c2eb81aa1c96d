package core

// prompts.go defines the canned response strings used by the pipeline.
// Keeping these in a separate file makes them easy to tweak without touching
// the rest of the code.

const (
	// Safe defaults substituted when the model omits a field.
	DefaultDoctorSummary = "No detailed summary available"
	DefaultAdvice        = "Please consult a medical professional."

	// Emergency short-circuit response.
	EmergencySummary = "⚠️ EMERGENCY: Severe symptoms detected requiring IMMEDIATE medical attention."
	EmergencyAdvice  = "🚨 CALL 108 NOW or visit nearest emergency room immediately. Do not delay."

	// Incomplete-input response.
	IncompleteSummary = "Insufficient symptom detail provided."
	IncompleteAdvice  = "Please add more details for better guidance."

	// Consent-gate response.
	ConsentSummary = "Consent required to proceed"
	ConsentAdvice  = "Please accept the terms and conditions to use this service."

	// AI failure responses.
	AIErrorSummary   = "System temporarily unavailable"
	AIErrorAdvice    = "Please try again or consult a doctor directly."
	AIPartialSummary = "Analysis incomplete"
)

// EmergencyContacts lists the Indian emergency phone numbers attached to an
// emergency short-circuit response.
func EmergencyContacts() map[string]string {
	return map[string]string{
		"ambulance": "108",
		"police":    "100",
		"fire":      "101",
	}
}
