package config

import "testing"

func TestGetters(t *testing.T) {
	t.Setenv("NIDAAN_TEST_STR", "value")
	t.Setenv("NIDAAN_TEST_INT", "42")
	t.Setenv("NIDAAN_TEST_BOOL", "no")

	if got := Get("NIDAAN_TEST_STR", "fallback"); got != "value" {
		t.Errorf("Get = %q", got)
	}
	if got := Get("NIDAAN_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("Get fallback = %q", got)
	}
	if got := GetInt("NIDAAN_TEST_INT", 7); got != 42 {
		t.Errorf("GetInt = %d", got)
	}
	if got := GetInt("NIDAAN_TEST_STR", 7); got != 7 {
		t.Errorf("GetInt on non-number = %d, want fallback", got)
	}
	if got := GetBool("NIDAAN_TEST_BOOL", true); got {
		t.Error("GetBool should parse 'no' as false")
	}
	if got := GetBool("NIDAAN_TEST_MISSING", true); !got {
		t.Error("GetBool fallback not honored")
	}
}

func TestValidateRequiresAIKey(t *testing.T) {
	c := &Config{}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing OPENAI_API_KEY")
	}
	c.OpenAIAPIKey = "sk-test"
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFeatureFlags(t *testing.T) {
	c := &Config{}
	if c.TranslationEnabled() || c.MessagingEnabled() {
		t.Fatal("features should be disabled without credentials")
	}
	c.SarvamAPIKey = "k"
	if !c.TranslationEnabled() {
		t.Error("translation should be enabled")
	}
	c.TwilioAccountSID, c.TwilioAuthToken, c.TwilioWhatsAppNumber = "sid", "token", "whatsapp:+14155550100"
	if !c.MessagingEnabled() {
		t.Error("messaging should be enabled")
	}
}
