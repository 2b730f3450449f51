package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/myrjola/cropdoc/internal/models"
)

// Conversationalist is the narrow surface the chat panel needs from the
// assistant capability. Implementations never fail upward; every call resolves
// to displayable text.
type Conversationalist interface {
	Converse(ctx context.Context, history []models.ChatMessage, message string, diagnosis *models.Diagnosis) string
}

const genericGreeting = "Hello! I'm your AI Agricultural Assistant. Feel free to ask me anything about " +
	"crop health, pest management, or sustainable farming."

// ChatPanel owns the conversation log of the assistant side panel. The log is
// reset whenever the panel is opened or the diagnostic context changes
// identity. It reads the session's diagnosis but never mutates session state.
type ChatPanel struct {
	mu          sync.Mutex
	client      Conversationalist
	diagnosis   *models.Diagnosis
	fingerprint string
	log         []models.ChatMessage
}

func NewChatPanel(client Conversationalist) *ChatPanel {
	return &ChatPanel{client: client}
}

// Open resets the panel with a fresh greeting. With a diagnosis the greeting
// references the current crop and disease, without one it is the generic
// fallback.
func (p *ChatPanel) Open(diagnosis *models.Diagnosis) []models.ChatMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset(diagnosis)
	return p.logCopy()
}

// Send appends the user's message, asks the assistant with the prior turns plus
// the current diagnostic context, and appends the reply. If the diagnostic
// context changed identity since the last turn, the log is reset first.
func (p *ChatPanel) Send(ctx context.Context, message string, diagnosis *models.Diagnosis) []models.ChatMessage {
	p.mu.Lock()
	if p.log == nil || p.fingerprint != contextFingerprint(diagnosis) {
		p.reset(diagnosis)
	}
	history := p.logCopy()
	p.log = append(p.log, models.ChatMessage{Role: models.ChatRoleUser, Text: message})
	contextDiagnosis := p.diagnosis
	p.mu.Unlock()

	// The client owns appending the new user turn before dispatch.
	reply := p.client.Converse(ctx, history, message, contextDiagnosis)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.log = append(p.log, models.ChatMessage{Role: models.ChatRoleAssistant, Text: reply})
	return p.logCopy()
}

// Log returns a copy of the current conversation.
func (p *ChatPanel) Log() []models.ChatMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.logCopy()
}

// reset must be called with the lock held.
func (p *ChatPanel) reset(diagnosis *models.Diagnosis) {
	p.diagnosis = diagnosis
	p.fingerprint = contextFingerprint(diagnosis)
	greeting := genericGreeting
	if diagnosis != nil {
		greeting = fmt.Sprintf(
			"Hello! I see you're dealing with %s on your %s. How can I help you manage this specific condition today?",
			diagnosis.Disease, diagnosis.Crop)
	}
	p.log = []models.ChatMessage{{Role: models.ChatRoleAssistant, Text: greeting}}
}

// logCopy must be called with the lock held.
func (p *ChatPanel) logCopy() []models.ChatMessage {
	log := make([]models.ChatMessage, len(p.log))
	copy(log, p.log)
	return log
}

// contextFingerprint identifies a diagnostic context so the panel can detect
// when it is talking about a different report.
func contextFingerprint(diagnosis *models.Diagnosis) string {
	if diagnosis == nil {
		return ""
	}
	return fmt.Sprintf("%s|%s|%.3f", diagnosis.Crop, diagnosis.Disease, diagnosis.Confidence)
}
