package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"net/http"
	"strings"
	"time"

	// Register decoders so image validation recognizes the common formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	openai "github.com/sashabaranov/go-openai"
)

// Outcome is the discriminated result of a triage call.  Exactly one of the
// two variants applies: OK with the three schema fields, or an error with a
// message and raw diagnostic detail.  The client never returns a Go error
// past its boundary.
type Outcome struct {
	OK            bool
	Risk          string
	DoctorSummary string
	Advice        string

	Err       string // set when OK is false
	Transport bool   // true when the provider call itself failed
	Raw       string // truncated raw body excerpt for diagnostics
}

// Client defines the triage capability required by the orchestrator.
type Client interface {
	Triage(ctx context.Context, symptomText string, imageBytes []byte) Outcome
}

// OpenAIClient calls the OpenAI chat completion API with a JSON-object
// response format so the reply needs no free-text parsing.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	temperature float32
}

// NewOpenAIClient constructs an OpenAI-backed triage client.  The API key is
// required; model and timeout fall back to sensible defaults.
func NewOpenAIClient(apiKey, model string, timeout time.Duration, temperature float32) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		model:       model,
		timeout:     timeout,
		temperature: temperature,
	}, nil
}

// triageReply mirrors the strict JSON schema demanded by the prompt.
type triageReply struct {
	Risk          string `json:"risk"`
	DoctorSummary string `json:"doctor_summary"`
	Advice        string `json:"advice"`
}

// Triage sends the instruction block plus the symptom text (and, when the
// bytes decode as an image, the image itself) to the provider and normalizes
// every failure into an error outcome.
func (c *OpenAIClient) Triage(ctx context.Context, symptomText string, imageBytes []byte) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := TriageInstruction + "\n\nPatient Symptoms:\n" + symptomText

	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(imageBytes) > 0 {
		if mime, ok := validateImage(imageBytes); ok {
			dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(imageBytes)
			msg.MultiContent = []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL,
					Detail: openai.ImageURLDetailAuto,
				}},
			}
		} else {
			// A corrupt upload must not sink the whole analysis.
			log.Printf("llm: image decode failed, proceeding with text-only analysis")
			msg.Content = prompt
		}
	} else {
		msg.Content = prompt
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    []openai.ChatCompletionMessage{msg},
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Outcome{Err: fmt.Sprintf("%T: %v", err, err), Transport: true}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return Outcome{Err: "empty response"}
	}

	raw := resp.Choices[0].Message.Content
	var reply triageReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return Outcome{Err: "parse failure", Raw: truncate(raw, 500)}
	}

	// Missing fields are tolerated; the orchestrator substitutes defaults.
	var missing []string
	if reply.Risk == "" {
		missing = append(missing, "risk")
	}
	if reply.DoctorSummary == "" {
		missing = append(missing, "doctor_summary")
	}
	if reply.Advice == "" {
		missing = append(missing, "advice")
	}
	if len(missing) > 0 {
		log.Printf("llm: response missing expected fields: %s", strings.Join(missing, ", "))
	}

	return Outcome{
		OK:            true,
		Risk:          reply.Risk,
		DoctorSummary: reply.DoctorSummary,
		Advice:        reply.Advice,
	}
}

// validateImage decodes the image header and returns the sniffed MIME type.
func validateImage(b []byte) (string, bool) {
	if _, _, err := image.DecodeConfig(bytes.NewReader(b)); err != nil {
		return "", false
	}
	return http.DetectContentType(b), true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
