package core

import (
	"context"
	"strings"
	"testing"

	"nidaan-triage/internal/audit"
	"nidaan-triage/internal/llm"
	"nidaan-triage/internal/translate"
	"nidaan-triage/pkg"
)

// fakeLLM returns a fixed outcome and records whether it was called.
type fakeLLM struct {
	outcome  llm.Outcome
	calls    int
	lastText string
}

func (f *fakeLLM) Triage(ctx context.Context, text string, img []byte) llm.Outcome {
	f.calls++
	f.lastText = text
	return f.outcome
}

// fakeTranslator echoes input text for both directions, or fails inbound
// translation when failInbound is set (simulating a provider non-200).
type fakeTranslator struct {
	failInbound bool
}

func (f *fakeTranslator) Translate(ctx context.Context, text, src, dst string) pkg.TranslationResult {
	return pkg.TranslationResult{Success: true, OriginalText: text, TranslatedText: text, SourceLanguage: src, TargetLanguage: dst, Confidence: 1.0}
}

func (f *fakeTranslator) ToEnglish(ctx context.Context, text, lang string) pkg.TranslationResult {
	if lang == translate.EnglishLanguage {
		return pkg.TranslationResult{Success: true, OriginalText: text, TranslatedText: text, Skipped: true}
	}
	if f.failInbound {
		return pkg.TranslationResult{Success: false, OriginalText: text, Error: "API returned status 502"}
	}
	return pkg.TranslationResult{Success: true, OriginalText: text, TranslatedText: text, Confidence: 1.0}
}

func (f *fakeTranslator) FromEnglish(ctx context.Context, text, lang string) pkg.TranslationResult {
	if lang == translate.EnglishLanguage {
		return pkg.TranslationResult{Success: true, OriginalText: text, TranslatedText: text, Skipped: true}
	}
	return pkg.TranslationResult{Success: true, OriginalText: text, TranslatedText: text, Confidence: 1.0}
}

type fakeMessenger struct {
	outcome  pkg.SendOutcome
	lastTo   string
	lastBody string
}

func (f *fakeMessenger) SendReport(ctx context.Context, to, body string) pkg.SendOutcome {
	f.lastTo = to
	f.lastBody = body
	return f.outcome
}

func newPipeline(client *fakeLLM, tr translate.Service) *Pipeline {
	return &Pipeline{
		LLM:           client,
		Translator:    tr,
		Ledger:        audit.NewMemoryLedger(),
		MultiLanguage: true,
		RetentionDays: 90,
	}
}

func TestAnalyzeConsentGate(t *testing.T) {
	client := &fakeLLM{}
	p := newPipeline(client, &fakeTranslator{})
	p.ConsentRequired = true

	res := p.Analyze(context.Background(), pkg.TriageRequest{SymptomText: "fever and cough for two days"})
	if res.Status != pkg.StatusConsentRequired {
		t.Fatalf("status = %q, want %q", res.Status, pkg.StatusConsentRequired)
	}
	if res.Risk != pkg.RiskError {
		t.Errorf("risk = %q, want ERROR", res.Risk)
	}
	if client.calls != 0 {
		t.Errorf("AI client called %d times for a gated request", client.calls)
	}
}

func TestAnalyzeIncompleteInput(t *testing.T) {
	client := &fakeLLM{}
	p := newPipeline(client, &fakeTranslator{})

	res := p.Analyze(context.Background(), pkg.TriageRequest{SymptomText: "  hi  ", ConsentGiven: true})
	if res.Status != pkg.StatusIncompleteInput {
		t.Fatalf("status = %q, want %q", res.Status, pkg.StatusIncompleteInput)
	}
	if res.Risk != pkg.RiskLow {
		t.Errorf("risk = %q, want LOW", res.Risk)
	}
	if client.calls != 0 {
		t.Errorf("AI client called for an incomplete request")
	}
	if res.RequestID == "" {
		t.Error("request id missing")
	}
}

func TestAnalyzeEmergencyShortCircuit(t *testing.T) {
	client := &fakeLLM{}
	p := newPipeline(client, &fakeTranslator{})

	res := p.Analyze(context.Background(), pkg.TriageRequest{
		SymptomText:  "chest pain and can't breathe",
		ConsentGiven: true,
	})
	if res.Status != pkg.StatusEmergency {
		t.Fatalf("status = %q, want %q", res.Status, pkg.StatusEmergency)
	}
	if res.Risk != pkg.RiskHigh {
		t.Errorf("risk = %q, want HIGH", res.Risk)
	}
	if client.calls != 0 {
		t.Errorf("AI client called %d times for an emergency", client.calls)
	}
	if len(res.DebugKeywords) != 2 {
		t.Errorf("matched keywords = %v, want two matches", res.DebugKeywords)
	}
	if res.EmergencyContacts["ambulance"] != "108" {
		t.Errorf("emergency contacts = %v", res.EmergencyContacts)
	}
}

func TestAnalyzeSuccessScenario(t *testing.T) {
	client := &fakeLLM{outcome: llm.Outcome{
		OK:            true,
		Risk:          "LOW",
		DoctorSummary: "Mild tension headache, no red flags.",
		Advice:        "Rest and hydrate",
	}}
	p := newPipeline(client, &fakeTranslator{})

	res := p.Analyze(context.Background(), pkg.TriageRequest{
		SymptomText:  "I have a mild headache since yesterday",
		ConsentGiven: true,
	})
	if res.Status != pkg.StatusSuccess {
		t.Fatalf("status = %q, want success", res.Status)
	}
	if res.Risk != pkg.RiskLow {
		t.Errorf("risk = %q, want LOW", res.Risk)
	}
	if res.Advice != "Rest and hydrate" {
		t.Errorf("advice = %q", res.Advice)
	}
	if !strings.Contains(res.DoctorSummary, "AI TRIAGE SUMMARY") {
		t.Errorf("doctor summary missing report header: %q", res.DoctorSummary)
	}
	if client.lastText != "I have a mild headache since yesterday" {
		t.Errorf("AI received %q", client.lastText)
	}
}

func TestAnalyzeRiskCoercion(t *testing.T) {
	for _, raw := range []string{"unknown", "Low ", "", "critical", "high-ish"} {
		client := &fakeLLM{outcome: llm.Outcome{OK: true, Risk: raw, DoctorSummary: "s", Advice: "a"}}
		p := newPipeline(client, &fakeTranslator{})
		res := p.Analyze(context.Background(), pkg.TriageRequest{
			SymptomText:  "persistent stomach ache after meals",
			ConsentGiven: true,
		})
		if res.Risk != pkg.RiskModerate {
			t.Errorf("risk for provider value %q = %q, want MODERATE", raw, res.Risk)
		}
	}
	// Case-only noise is accepted once upper-cased.
	client := &fakeLLM{outcome: llm.Outcome{OK: true, Risk: "high", DoctorSummary: "s", Advice: "a"}}
	p := newPipeline(client, &fakeTranslator{})
	res := p.Analyze(context.Background(), pkg.TriageRequest{
		SymptomText:  "persistent stomach ache after meals",
		ConsentGiven: true,
	})
	if res.Risk != pkg.RiskHigh {
		t.Errorf("risk for %q = %q, want HIGH", "high", res.Risk)
	}
}

func TestAnalyzeTransportFailure(t *testing.T) {
	client := &fakeLLM{outcome: llm.Outcome{Err: "*url.Error: connection refused", Transport: true}}
	p := newPipeline(client, &fakeTranslator{})

	res := p.Analyze(context.Background(), pkg.TriageRequest{
		SymptomText:  "fever and chills for three days",
		ConsentGiven: true,
	})
	if res.Status != pkg.StatusAIError {
		t.Fatalf("status = %q, want %q", res.Status, pkg.StatusAIError)
	}
	if res.Risk != pkg.RiskError {
		t.Errorf("risk = %q, want ERROR", res.Risk)
	}
}

func TestAnalyzeStructuredAIFailure(t *testing.T) {
	client := &fakeLLM{outcome: llm.Outcome{Err: "parse failure", Raw: "not json"}}
	p := newPipeline(client, &fakeTranslator{})

	res := p.Analyze(context.Background(), pkg.TriageRequest{
		SymptomText:  "fever and chills for three days",
		ConsentGiven: true,
	})
	if res.Status != pkg.StatusAIPartialFailure {
		t.Fatalf("status = %q, want %q", res.Status, pkg.StatusAIPartialFailure)
	}
	if res.Risk != pkg.RiskModerate {
		t.Errorf("risk = %q, want MODERATE (safe default)", res.Risk)
	}
}

func TestAnalyzeMissingFieldsGetDefaults(t *testing.T) {
	client := &fakeLLM{outcome: llm.Outcome{OK: true, Risk: "LOW"}}
	p := newPipeline(client, &fakeTranslator{})

	res := p.Analyze(context.Background(), pkg.TriageRequest{
		SymptomText:  "itchy rash on the left arm",
		ConsentGiven: true,
	})
	if res.Status != pkg.StatusSuccess {
		t.Fatalf("status = %q, want success", res.Status)
	}
	if res.Advice != DefaultAdvice {
		t.Errorf("advice = %q, want default", res.Advice)
	}
	if !strings.Contains(res.DoctorSummary, DefaultDoctorSummary) {
		t.Errorf("summary missing default text: %q", res.DoctorSummary)
	}
}

func TestAnalyzeTranslationFailureFallsBackAndFailsClosed(t *testing.T) {
	client := &fakeLLM{outcome: llm.Outcome{OK: true, Risk: "LOW", DoctorSummary: "s", Advice: "a"}}
	p := newPipeline(client, &fakeTranslator{failInbound: true})

	res := p.Analyze(context.Background(), pkg.TriageRequest{
		SymptomText:  "mujhe kal se halka sir dard hai",
		UserLanguage: "हिंदी",
		ConsentGiven: true,
	})
	if res.Status != pkg.StatusSuccess {
		t.Fatalf("status = %q, want success despite translation failure", res.Status)
	}
	// The AI must have received the original, untranslated text.
	if client.lastText != "mujhe kal se halka sir dard hai" {
		t.Errorf("AI received %q, want original text", client.lastText)
	}
	// Fail closed: a LOW verdict on an untranslated request is raised.
	if res.Risk != pkg.RiskModerate {
		t.Errorf("risk = %q, want MODERATE floor after translation failure", res.Risk)
	}
}

func TestAnalyzeEmergencyStillDetectedAfterTranslationFailure(t *testing.T) {
	client := &fakeLLM{}
	p := newPipeline(client, &fakeTranslator{failInbound: true})

	res := p.Analyze(context.Background(), pkg.TriageRequest{
		SymptomText:  "chest pain, bahut dard",
		UserLanguage: "हिंदी",
		ConsentGiven: true,
	})
	if res.Status != pkg.StatusEmergency {
		t.Fatalf("status = %q, want emergency", res.Status)
	}
	if client.calls != 0 {
		t.Errorf("AI client called for an emergency")
	}
}

func TestAnalyzeLanguageRoundTripParity(t *testing.T) {
	// With a translator that echoes text both ways, the language-aware run
	// must reach the same risk as the plain English run.
	text := "I have a mild headache since yesterday"
	outcome := llm.Outcome{OK: true, Risk: "LOW", DoctorSummary: "s", Advice: "a"}

	english := newPipeline(&fakeLLM{outcome: outcome}, &fakeTranslator{})
	hindi := newPipeline(&fakeLLM{outcome: outcome}, &fakeTranslator{})

	resEN := english.Analyze(context.Background(), pkg.TriageRequest{SymptomText: text, ConsentGiven: true})
	resHI := hindi.Analyze(context.Background(), pkg.TriageRequest{SymptomText: text, UserLanguage: "हिंदी", ConsentGiven: true})

	if resEN.Risk != resHI.Risk {
		t.Errorf("risk diverged: english=%q hindi=%q", resEN.Risk, resHI.Risk)
	}
	if resEN.Status != resHI.Status {
		t.Errorf("status diverged: english=%q hindi=%q", resEN.Status, resHI.Status)
	}
	if !resHI.TranslationUsed {
		t.Error("hindi run should report translation_used")
	}
	if resEN.TranslationUsed {
		t.Error("english run must not report translation_used")
	}
}

func TestAnalyzeAuditTrail(t *testing.T) {
	client := &fakeLLM{outcome: llm.Outcome{OK: true, Risk: "LOW", DoctorSummary: "s", Advice: "a"}}
	ledger := audit.NewMemoryLedger()
	p := newPipeline(client, &fakeTranslator{})
	p.Ledger = ledger

	p.Analyze(context.Background(), pkg.TriageRequest{
		SymptomText:  "call 9876543210, mild cough",
		ConsentGiven: true,
	})
	events, err := ledger.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("recorded %d events, want 2 (request + complete)", len(events))
	}
	if events[0].Action != "analyze_request" || events[1].Action != "analyze_complete" {
		t.Errorf("unexpected actions: %v, %v", events[0].Action, events[1].Action)
	}
	if events[0].UserHash == "" || len(events[0].UserHash) != 16 {
		t.Errorf("user hash = %q, want 16 hex chars", events[0].UserHash)
	}
}

func TestSendReportFormatsAndDelivers(t *testing.T) {
	msgr := &fakeMessenger{outcome: pkg.SendOutcome{Success: true, Status: pkg.SendStatusSent, MessageID: "SM123"}}
	p := newPipeline(&fakeLLM{}, &fakeTranslator{})
	p.Messenger = msgr

	out := p.SendReport(context.Background(), "9876543210", "", "Risk Level: LOW", "English")
	if !out.Success || out.Status != pkg.SendStatusSent {
		t.Fatalf("outcome = %+v", out)
	}
	if out.RequestID == "" {
		t.Error("request id missing from outcome")
	}
	if !strings.Contains(msgr.lastBody, "Risk Level: LOW") {
		t.Errorf("body missing report: %q", msgr.lastBody)
	}
	if !strings.Contains(msgr.lastBody, "NIDAAN-AI Medical Report") {
		t.Errorf("body missing template header: %q", msgr.lastBody)
	}
}

func TestSendReportDefaultMessage(t *testing.T) {
	msgr := &fakeMessenger{outcome: pkg.SendOutcome{Success: true, Status: pkg.SendStatusSent}}
	p := newPipeline(&fakeLLM{}, &fakeTranslator{})
	p.Messenger = msgr

	p.SendReport(context.Background(), "9876543210", "", "", "English")
	if !strings.Contains(msgr.lastBody, "Thank you for using NIDAAN-AI") {
		t.Errorf("body = %q, want default thank-you message", msgr.lastBody)
	}
}

func TestCoerceRisk(t *testing.T) {
	cases := map[string]pkg.RiskLevel{
		"LOW":      pkg.RiskLow,
		"low":      pkg.RiskLow,
		"High":     pkg.RiskHigh,
		"MODERATE": pkg.RiskModerate,
		"Low ":     pkg.RiskModerate,
		"unknown":  pkg.RiskModerate,
		"":         pkg.RiskModerate,
	}
	for raw, want := range cases {
		if got := CoerceRisk(raw); got != want {
			t.Errorf("CoerceRisk(%q) = %q, want %q", raw, got, want)
		}
	}
}
