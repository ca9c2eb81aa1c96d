package core

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"nidaan-triage/internal/audit"
	"nidaan-triage/internal/llm"
	"nidaan-triage/internal/messaging"
	"nidaan-triage/internal/translate"
	"nidaan-triage/pkg"
)

// Pipeline orchestrates the end-to-end triage flow: validation, emergency
// detection, translation, AI invocation, response normalization and
// re-translation.  Every stage that can fail degrades to a safe output; a
// provider outage never surfaces as an error to the caller.
type Pipeline struct {
	LLM        llm.Client
	Translator translate.Service
	Messenger  messaging.Sender
	Ledger     audit.Ledger

	// Policy flags, read-only after startup.
	ConsentRequired bool
	MultiLanguage   bool
	WhatsAppEnabled bool
	RetentionDays   int
}

// minSymptomLength is the shortest trimmed symptom text accepted.
const minSymptomLength = 5

// Analyze runs the full pipeline for one request and always returns a
// well-formed result.
func (p *Pipeline) Analyze(ctx context.Context, req pkg.TriageRequest) pkg.TriageResult {
	requestID := uuid.New().String()
	lang := req.UserLanguage
	if lang == "" || !p.MultiLanguage {
		lang = translate.EnglishLanguage
	}
	log.Printf("[%s] new analysis request, language=%s", requestID, lang)

	// Consent gate.
	if p.ConsentRequired && !req.ConsentGiven {
		log.Printf("[%s] consent not provided", requestID)
		return p.finish(ctx, requestID, lang, pkg.TriageResult{
			Risk:          pkg.RiskError,
			DoctorSummary: ConsentSummary,
			Advice:        ConsentAdvice,
			Status:        pkg.StatusConsentRequired,
		})
	}

	// Input validation.
	if len(strings.TrimSpace(req.SymptomText)) < minSymptomLength {
		log.Printf("[%s] insufficient symptom detail", requestID)
		return p.finish(ctx, requestID, lang, pkg.TriageResult{
			Risk:          pkg.RiskLow,
			DoctorSummary: IncompleteSummary,
			Advice:        IncompleteAdvice,
			Status:        pkg.StatusIncompleteInput,
		})
	}

	// The anonymized copy feeds the audit trail only; the AI client still
	// receives the raw text.
	anonymized := Anonymize(req.SymptomText)
	p.record(ctx, "analyze_request", requestID, anonymized, "started")

	// Inbound translation, silent fallback to the original text on failure.
	working := req.SymptomText
	translationUsed := false
	translationFailed := false
	if lang != translate.EnglishLanguage {
		res := p.Translator.ToEnglish(ctx, req.SymptomText, lang)
		if res.Success {
			working = res.TranslatedText
			translationUsed = !res.Skipped
		} else {
			// The emergency scan below can only match English phrases,
			// so a failed translation masks emergencies written in the
			// user's language.  The MODERATE floor applied later fails
			// closed instead of inheriting that gap.
			log.Printf("[%s] translation failed (%s), using original text", requestID, res.Error)
			translationFailed = true
		}
	}

	// Emergency keyword scan on the working (English) text.
	if found := DetectEmergency(working); len(found) > 0 {
		log.Printf("[%s] emergency keywords detected: %v", requestID, found)
		p.record(ctx, "emergency_detected", requestID, strings.Join(found, ","), "alert")
		summary, advice := p.localize(ctx, EmergencySummary, EmergencyAdvice, lang)
		return p.finish(ctx, requestID, lang, pkg.TriageResult{
			Risk:              pkg.RiskHigh,
			DoctorSummary:     summary,
			Advice:            advice,
			Status:            pkg.StatusEmergency,
			DebugKeywords:     found,
			EmergencyContacts: EmergencyContacts(),
			TranslationUsed:   translationUsed,
		})
	}

	// AI invocation.
	outcome := p.LLM.Triage(ctx, working, req.ImageBytes)
	if !outcome.OK {
		if outcome.Transport {
			log.Printf("[%s] AI call failed: %s", requestID, outcome.Err)
			p.record(ctx, "llm_error", requestID, "", "failed")
			return p.finish(ctx, requestID, lang, pkg.TriageResult{
				Risk:          pkg.RiskError,
				DoctorSummary: AIErrorSummary,
				Advice:        AIErrorAdvice,
				Status:        pkg.StatusAIError,
				Debug:         outcome.Err,
			})
		}
		log.Printf("[%s] AI returned error outcome: %s", requestID, outcome.Err)
		return p.finish(ctx, requestID, lang, pkg.TriageResult{
			Risk:          pkg.RiskModerate,
			DoctorSummary: AIPartialSummary,
			Advice:        DefaultAdvice,
			Status:        pkg.StatusAIPartialFailure,
			Debug:         outcome.Raw,
		})
	}

	// Field extraction and defaulting.
	docSum := outcome.DoctorSummary
	if docSum == "" {
		docSum = DefaultDoctorSummary
	}
	advice := outcome.Advice
	if advice == "" {
		advice = DefaultAdvice
	}
	risk := CoerceRisk(outcome.Risk)
	if translationFailed && risk == pkg.RiskLow {
		log.Printf("[%s] translation failed earlier, raising LOW to MODERATE", requestID)
		risk = pkg.RiskModerate
	}

	// Outbound translation, best effort.
	docSum, advice = p.localize(ctx, docSum, advice, lang)

	report := FormatReport(docSum, risk, advice, p.RetentionDays)

	log.Printf("[%s] analysis complete, risk=%s", requestID, risk)
	p.record(ctx, "analyze_complete", requestID, string(risk), "success")
	return p.finish(ctx, requestID, lang, pkg.TriageResult{
		Risk:            risk,
		DoctorSummary:   report,
		Advice:          advice,
		Status:          pkg.StatusSuccess,
		TranslationUsed: translationUsed,
	})
}

// SendReport runs the messaging flow: pick the body, optionally localize a
// report, and deliver it through the messaging adapter.
func (p *Pipeline) SendReport(ctx context.Context, phoneNumber, message, report, userLanguage string) pkg.SendOutcome {
	requestID := uuid.New().String()
	log.Printf("[%s] whatsapp send request", requestID)

	body := message
	if report != "" {
		localized := report
		if p.MultiLanguage && userLanguage != "" && userLanguage != translate.EnglishLanguage {
			if res := p.Translator.FromEnglish(ctx, report, userLanguage); res.Success {
				localized = res.TranslatedText
			}
		}
		body = messaging.FormatReport(localized)
	}
	if body == "" {
		body = "Thank you for using NIDAAN-AI."
	}

	outcome := p.Messenger.SendReport(ctx, phoneNumber, body)
	outcome.RequestID = requestID
	if outcome.Success {
		p.record(ctx, "whatsapp_sent", requestID, messaging.NormalizePhone(phoneNumber), "success")
	} else {
		p.record(ctx, "whatsapp_failed", requestID, "", outcome.Status)
	}
	return outcome
}

// RecordConsent hashes the user id and appends a consent record.
func (p *Pipeline) RecordConsent(ctx context.Context, userID, consentType string, given bool) (string, error) {
	consentID := uuid.New().String()
	rec := pkg.ConsentRecord{
		UserHash:     audit.HashIdentifier(userID),
		ConsentType:  consentType,
		ConsentGiven: given,
		Timestamp:    time.Now(),
		ExpiresAt:    time.Now().Add(audit.ConsentExpiry),
	}
	if err := p.Ledger.RecordConsent(ctx, rec); err != nil {
		return consentID, err
	}
	log.Printf("[%s] consent recorded: %s=%t", consentID, consentType, given)
	return consentID, nil
}

// CoerceRisk upper-cases a provider risk string and checks it against the
// three accepted levels; anything else, surrounding whitespace included,
// becomes MODERATE.
func CoerceRisk(raw string) pkg.RiskLevel {
	switch pkg.RiskLevel(strings.ToUpper(raw)) {
	case pkg.RiskLow:
		return pkg.RiskLow
	case pkg.RiskModerate:
		return pkg.RiskModerate
	case pkg.RiskHigh:
		return pkg.RiskHigh
	default:
		return pkg.RiskModerate
	}
}

// localize re-translates the two human-readable fields into the user's
// language.  A failed translation leaves the English text in place.
func (p *Pipeline) localize(ctx context.Context, summary, advice, lang string) (string, string) {
	if lang == translate.EnglishLanguage {
		return summary, advice
	}
	if res := p.Translator.FromEnglish(ctx, summary, lang); res.Success {
		summary = res.TranslatedText
	}
	if res := p.Translator.FromEnglish(ctx, advice, lang); res.Success {
		advice = res.TranslatedText
	}
	return summary, advice
}

// finish stamps the request-scoped envelope fields onto a terminal result.
func (p *Pipeline) finish(ctx context.Context, requestID, lang string, res pkg.TriageResult) pkg.TriageResult {
	res.RequestID = requestID
	res.UserLanguage = lang
	res.WhatsAppEnabled = p.WhatsAppEnabled
	res.Compliance = &pkg.ComplianceInfo{
		DataRetentionDays: p.RetentionDays,
		Anonymized:        true,
		AuditLogged:       true,
	}
	return res
}

// record appends an audit event; ledger failures are logged, never fatal.
func (p *Pipeline) record(ctx context.Context, action, requestID, identifier, status string) {
	if p.Ledger == nil {
		return
	}
	ev := pkg.AuditEvent{
		Timestamp: time.Now(),
		Action:    action,
		RequestID: requestID,
		Status:    status,
	}
	if identifier != "" {
		ev.UserHash = audit.HashIdentifier(identifier)
	}
	if err := p.Ledger.Record(ctx, ev); err != nil {
		log.Printf("[%s] audit write failed: %v", requestID, err)
	}
}
