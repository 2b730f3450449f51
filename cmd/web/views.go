package main

import (
	"time"

	"github.com/myrjola/cropdoc/internal/models"
	"github.com/myrjola/cropdoc/internal/session"
)

// The view types are the JSON wire shapes of the API. Session state is always
// returned whole so clients render from a single snapshot instead of stitching
// together partial updates.

type stateView struct {
	Status          session.Status     `json:"status"`
	Image           *string            `json:"image"`
	Result          *models.Diagnosis  `json:"result"`
	Error           *errorView         `json:"error"`
	History         []historyEntryView `json:"history"`
	DeepDive        *deepDiveView      `json:"deepDive"`
	DeepDivePending bool               `json:"deepDivePending"`
}

type errorView struct {
	Message string `json:"message"`
	Details string `json:"details"`
}

type historyEntryView struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Image     string           `json:"image"`
	Result    models.Diagnosis `json:"result"`
}

type deepDiveView struct {
	Text    string       `json:"text"`
	Sources []sourceView `json:"sources"`
}

type sourceView struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type chatMessageView struct {
	Role models.ChatRole `json:"role"`
	Text string          `json:"text"`
}

func newStateView(state session.State) stateView {
	view := stateView{
		Status:          state.Status,
		History:         make([]historyEntryView, 0, len(state.History)),
		DeepDivePending: state.DeepDivePending,
	}
	if state.Image != nil {
		encoded := state.Image.Encode()
		view.Image = &encoded
	}
	view.Result = state.Result
	if state.Error != nil {
		view.Error = &errorView{Message: state.Error.Message, Details: state.Error.Details}
	}
	for _, entry := range state.History {
		view.History = append(view.History, historyEntryView{
			ID:        entry.ID,
			Timestamp: entry.Timestamp,
			Image:     entry.Image,
			Result:    entry.Result,
		})
	}
	if state.DeepDive != nil {
		view.DeepDive = newDeepDiveView(*state.DeepDive)
	}
	return view
}

func newDeepDiveView(deepDive models.DeepDive) *deepDiveView {
	view := deepDiveView{
		Text:    deepDive.Text,
		Sources: make([]sourceView, 0, len(deepDive.Sources)),
	}
	for _, source := range deepDive.Sources {
		view.Sources = append(view.Sources, sourceView{Title: source.Title, URI: source.URI})
	}
	return &view
}

func newChatLogView(log []models.ChatMessage) []chatMessageView {
	view := make([]chatMessageView, 0, len(log))
	for _, message := range log {
		view = append(view, chatMessageView{Role: message.Role, Text: message.Text})
	}
	return view
}
