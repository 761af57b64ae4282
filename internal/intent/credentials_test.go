package intent

import "testing"

func TestAPIKey_EnvPrecedence(t *testing.T) {
	t.Setenv("HARVEST_OPENAI_API_KEY", "primary")
	t.Setenv("OPENAI_API_KEY", "secondary")

	if key := APIKey(); key != "primary" {
		t.Errorf("Expected HARVEST_OPENAI_API_KEY to win, got %q", key)
	}
}

func TestAPIKey_FallbackEnv(t *testing.T) {
	t.Setenv("HARVEST_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "secondary")

	if key := APIKey(); key != "secondary" {
		t.Errorf("Expected OPENAI_API_KEY fallback, got %q", key)
	}
}
