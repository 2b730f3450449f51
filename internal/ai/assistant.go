package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/myrjola/cropdoc/internal/errors"
	"github.com/myrjola/cropdoc/internal/models"
	"github.com/sashabaranov/go-openai"
)

const MaxTokens = 4096

const systemInstruction = "You are a professional, friendly, and highly knowledgeable Agricultural AI. " +
	"You provide evidence-based advice on crop protection, organic alternatives, and integrated pest " +
	"management (IPM). Keep responses structured and practical."

const (
	// FallbackReply is substituted when the model returns an empty completion.
	FallbackReply = "I'm sorry, I'm having trouble processing that right now. Could you please rephrase?"
	// ConnectionErrorReply is substituted when the completion request fails outright.
	ConnectionErrorReply = "Connection error. Please check your network and try again."
)

// AssistantClient wraps the multi-turn chat capability. It keeps no state between
// calls; the caller owns the message log. Failures never propagate upward, every
// call resolves to some displayable reply.
type AssistantClient struct {
	client *openai.Client
	logger *slog.Logger
}

func NewAssistantClient(apiKey string, logger *slog.Logger) *AssistantClient {
	return &AssistantClient{
		client: openai.NewClient(apiKey),
		logger: logger.With("source", "AssistantClient"),
	}
}

// Converse sends the prior turns plus the new user message and returns the reply
// text. When diagnosis is set, a context-priming instruction is prepended on
// every call, not just the first, so the model stays grounded even if the log is
// truncated later.
func (c *AssistantClient) Converse(
	ctx context.Context,
	history []models.ChatMessage,
	message string,
	diagnosis *models.Diagnosis,
) string {
	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     openai.GPT4oMini,
			MaxTokens: MaxTokens,
			Messages:  assistantMessages(history, message, diagnosis),
		},
	)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "chat completion failed",
			errors.SlogError(errors.Wrap(err, "create chat completion")))
		return ConnectionErrorReply
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return FallbackReply
	}
	return completion.Choices[0].Message.Content
}

// assistantMessages builds the full turn sequence for one completion request.
func assistantMessages(
	history []models.ChatMessage,
	message string,
	diagnosis *models.Diagnosis,
) []openai.ChatCompletionMessage {
	priming := "Context: General agricultural inquiry."
	if diagnosis != nil {
		priming = fmt.Sprintf(
			"Current Context: The user is analyzing a %s showing signs of %s. Severity is %s. Symptoms include: %s.",
			diagnosis.Crop, diagnosis.Disease, diagnosis.Severity, strings.Join(diagnosis.Symptoms, ", "))
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
		{Role: openai.ChatMessageRoleSystem, Content: priming},
	}
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == models.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	return append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
}
