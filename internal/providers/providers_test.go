package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultModel(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("OLLAMA_MODEL", "llava")
	t.Setenv("GEMINI_MODEL", "")

	assert.Equal(t, "gpt-4o", DefaultModel("openai"))
	assert.Equal(t, "llava", DefaultModel("ollama"))
	assert.Equal(t, "gemini-2.0-flash", DefaultModel("gemini"))
}
