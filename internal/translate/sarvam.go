package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"nidaan-triage/pkg"
)

// Service defines the translation capability required by the orchestrator.
// Implementations never return a Go error: every failure is folded into the
// result with Success=false and the original text preserved.
type Service interface {
	Translate(ctx context.Context, text, sourceCode, targetCode string) pkg.TranslationResult
	ToEnglish(ctx context.Context, text, sourceLanguage string) pkg.TranslationResult
	FromEnglish(ctx context.Context, text, targetLanguage string) pkg.TranslationResult
}

// SarvamClient calls the Sarvam AI translation API for Indian languages.  A
// client constructed without an API key stays usable: every call reports a
// not-configured failure without touching the network.
type SarvamClient struct {
	apiKey  string
	apiURL  string
	client  *http.Client
	timeout time.Duration
}

// NewSarvamClient constructs the translation adapter.  An empty apiKey
// disables the service rather than failing construction.
func NewSarvamClient(apiKey, apiURL string, timeout time.Duration) *SarvamClient {
	if apiURL == "" {
		apiURL = "https://api.sarvam.ai/translate"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SarvamClient{
		apiKey:  apiKey,
		apiURL:  apiURL,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Enabled reports whether the provider credential is present.
func (s *SarvamClient) Enabled() bool { return s.apiKey != "" }

type sarvamRequest struct {
	Input               string `json:"input"`
	SourceLanguageCode  string `json:"source_language_code"`
	TargetLanguageCode  string `json:"target_language_code"`
	SpeakerGender       string `json:"speaker_gender"`
	Mode                string `json:"mode"`
	Model               string `json:"model"`
	EnablePreprocessing bool   `json:"enable_preprocessing"`
}

type sarvamResponse struct {
	TranslatedText   string  `json:"translated_text"`
	DetectedLanguage string  `json:"detected_language"`
	Confidence       float64 `json:"confidence"`
}

// Translate performs one directional translation between two provider codes.
func (s *SarvamClient) Translate(ctx context.Context, text, sourceCode, targetCode string) pkg.TranslationResult {
	if !s.Enabled() {
		return pkg.TranslationResult{
			Success:      false,
			OriginalText: text,
			Error:        "Translation service not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload := sarvamRequest{
		Input:               text,
		SourceLanguageCode:  sourceCode,
		TargetLanguageCode:  targetCode,
		SpeakerGender:       "Female",
		Mode:                "formal",
		Model:               "mayura:v1",
		EnablePreprocessing: true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return failure(text, err.Error(), "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return failure(text, err.Error(), "")
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return failure(text, "Translation request timed out", "")
		}
		return failure(text, err.Error(), "")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("translate: provider returned status %d: %s", resp.StatusCode, detail)
		return failure(text, fmt.Sprintf("API returned status %d", resp.StatusCode), string(detail))
	}

	var data sarvamResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return failure(text, "invalid provider response: "+err.Error(), "")
	}

	confidence := data.Confidence
	if confidence == 0 {
		confidence = 1.0
	}
	return pkg.TranslationResult{
		Success:          true,
		OriginalText:     text,
		TranslatedText:   data.TranslatedText,
		SourceLanguage:   sourceCode,
		TargetLanguage:   targetCode,
		DetectedLanguage: data.DetectedLanguage,
		Confidence:       confidence,
	}
}

// ToEnglish translates user input into English for the AI call.  English
// input takes the passthrough fast path without a provider call.
func (s *SarvamClient) ToEnglish(ctx context.Context, text, sourceLanguage string) pkg.TranslationResult {
	if sourceLanguage == EnglishLanguage {
		return passthrough(text)
	}
	return s.Translate(ctx, text, CodeFor(sourceLanguage), EnglishCode)
}

// FromEnglish translates an English response into the user's language, with
// the same passthrough fast path for English targets.
func (s *SarvamClient) FromEnglish(ctx context.Context, text, targetLanguage string) pkg.TranslationResult {
	if targetLanguage == EnglishLanguage {
		return passthrough(text)
	}
	return s.Translate(ctx, text, EnglishCode, CodeFor(targetLanguage))
}

func passthrough(text string) pkg.TranslationResult {
	return pkg.TranslationResult{
		Success:        true,
		OriginalText:   text,
		TranslatedText: text,
		SourceLanguage: EnglishCode,
		TargetLanguage: EnglishCode,
		Skipped:        true,
	}
}

func failure(text, msg, details string) pkg.TranslationResult {
	return pkg.TranslationResult{
		Success:      false,
		OriginalText: text,
		Error:        msg,
		Details:      details,
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
