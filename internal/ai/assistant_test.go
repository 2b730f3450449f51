package ai

import (
	"testing"

	"github.com/myrjola/cropdoc/internal/models"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func TestAssistantMessages(t *testing.T) {
	history := []models.ChatMessage{
		{Role: models.ChatRoleAssistant, Text: "Hello!"},
		{Role: models.ChatRoleUser, Text: "My tomatoes look sick."},
	}
	diagnosis := &models.Diagnosis{
		Crop:     "Tomato",
		Disease:  "Late Blight",
		Severity: models.SeverityHigh,
		Symptoms: []string{"Dark spots", "White fungal growth"},
	}

	messages := assistantMessages(history, "What should I spray?", diagnosis)

	require.Len(t, messages, 5)

	// System instruction and context priming lead every request.
	require.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	require.Equal(t, openai.ChatMessageRoleSystem, messages[1].Role)
	require.Contains(t, messages[1].Content, "Tomato")
	require.Contains(t, messages[1].Content, "Late Blight")
	require.Contains(t, messages[1].Content, "High")
	require.Contains(t, messages[1].Content, "Dark spots, White fungal growth")

	require.Equal(t, openai.ChatMessageRoleAssistant, messages[2].Role)
	require.Equal(t, openai.ChatMessageRoleUser, messages[3].Role)

	// The new user turn is appended last.
	require.Equal(t, openai.ChatMessageRoleUser, messages[4].Role)
	require.Equal(t, "What should I spray?", messages[4].Content)
}

func TestAssistantMessages_NoContext(t *testing.T) {
	messages := assistantMessages(nil, "How do I rotate crops?", nil)

	require.Len(t, messages, 3)
	require.Contains(t, messages[1].Content, "General agricultural inquiry")
}
