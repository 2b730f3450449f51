package session_test

import (
	"context"
	"testing"

	"github.com/myrjola/cropdoc/internal/errors"
	"github.com/myrjola/cropdoc/internal/models"
	"github.com/myrjola/cropdoc/internal/session"
	"github.com/stretchr/testify/require"
)

func successOrchestrator(t *testing.T, client *fakeDiagnosticClient) *session.Orchestrator {
	t.Helper()
	client.analyzeFunc = func(models.Image) (models.Diagnosis, error) { return lateBlightDiagnosis(), nil }
	orchestrator := newTestOrchestrator(t, client, newFakeStore())
	state := orchestrator.Submit(context.Background(), testImage())
	require.Equal(t, session.StatusSuccess, state.Status)
	return orchestrator
}

func TestOrchestrator_DeepDive(t *testing.T) {
	t.Parallel()
	client := &fakeDiagnosticClient{
		deepDiveFunc: func(_, _ string) (models.DeepDive, error) {
			return models.DeepDive{
				Text:    "Spray in dry weather.",
				Sources: []models.Source{{Title: "Extension Bulletin", URI: "https://extension.example.org"}},
			}, nil
		},
	}
	orchestrator := successOrchestrator(t, client)

	state, err := orchestrator.StartDeepDive(context.Background(), 1)

	require.NoError(t, err)
	require.Equal(t, session.StatusSuccess, state.Status)
	require.False(t, state.DeepDivePending)
	require.NotNil(t, state.DeepDive)
	require.Equal(t, "Spray in dry weather.", state.DeepDive.Text)
	// The subject composes the disease with the selected recommendation.
	require.Equal(t, "Late Blight treatment: Remove infected material", client.lastSubject)
}

func TestOrchestrator_DeepDiveFailureIsNonFatal(t *testing.T) {
	t.Parallel()
	client := &fakeDiagnosticClient{
		deepDiveFunc: func(_, _ string) (models.DeepDive, error) {
			return models.DeepDive{}, errors.NewSentinel("search backend down")
		},
	}
	orchestrator := successOrchestrator(t, client)

	state, err := orchestrator.StartDeepDive(context.Background(), 1)

	require.NoError(t, err, "lookup failures never escape to the session level")
	require.Equal(t, session.StatusSuccess, state.Status, "session stays in success")
	require.Nil(t, state.DeepDive, "recommendation list view stays in place")
	require.False(t, state.DeepDivePending)
}

func TestOrchestrator_DeepDivePreconditions(t *testing.T) {
	t.Parallel()

	t.Run("requires success state", func(t *testing.T) {
		t.Parallel()
		orchestrator := newTestOrchestrator(t, &fakeDiagnosticClient{}, newFakeStore())

		_, err := orchestrator.StartDeepDive(context.Background(), 0)

		require.ErrorIs(t, err, session.ErrNotReady)
	})

	t.Run("index out of range", func(t *testing.T) {
		t.Parallel()
		client := &fakeDiagnosticClient{}
		orchestrator := successOrchestrator(t, client)

		_, err := orchestrator.StartDeepDive(context.Background(), 99)

		require.ErrorIs(t, err, session.ErrNotReady)
		require.Zero(t, client.deepDiveCalls)
	})
}

func TestOrchestrator_ResetDeepDiveRestoresList(t *testing.T) {
	t.Parallel()
	client := &fakeDiagnosticClient{
		deepDiveFunc: func(_, _ string) (models.DeepDive, error) {
			return models.DeepDive{Text: "Detail."}, nil
		},
	}
	orchestrator := successOrchestrator(t, client)
	state, err := orchestrator.StartDeepDive(context.Background(), 0)
	require.NoError(t, err)
	require.NotNil(t, state.DeepDive)

	state = orchestrator.ResetDeepDive()

	require.Nil(t, state.DeepDive)
	require.Equal(t, session.StatusSuccess, state.Status)
	require.NotNil(t, state.Result, "result is untouched")
}

func TestOrchestrator_DeepDiveSuperseded(t *testing.T) {
	t.Parallel()
	client := &fakeDiagnosticClient{
		deepDiveFunc: func(_, _ string) (models.DeepDive, error) {
			return models.DeepDive{Text: "Stale detail."}, nil
		},
	}
	orchestrator := successOrchestrator(t, client)

	// Lookups resolve in sequence here; each new result supersedes, not merges.
	_, err := orchestrator.StartDeepDive(context.Background(), 0)
	require.NoError(t, err)
	client.deepDiveFunc = func(_, _ string) (models.DeepDive, error) {
		return models.DeepDive{Text: "Fresh detail."}, nil
	}
	state, err := orchestrator.StartDeepDive(context.Background(), 1)

	require.NoError(t, err)
	require.Equal(t, "Fresh detail.", state.DeepDive.Text)
}

func TestOrchestrator_DemoBypassesClientAndHistory(t *testing.T) {
	t.Parallel()
	client := &fakeDiagnosticClient{}
	store := newFakeStore()
	orchestrator := newTestOrchestrator(t, client, store)

	state, err := orchestrator.RunDemo()

	require.NoError(t, err)
	require.Equal(t, session.StatusSuccess, state.Status)
	require.NotNil(t, state.Result)
	require.Equal(t, "Tomato", state.Result.Crop)
	require.Zero(t, client.analyzeCalls, "demo never invokes the diagnostic client")
	require.Empty(t, state.History, "demo writes no history")
	require.Empty(t, store.Load(context.Background(), "test-scope"))

	// Demo is only available from idle.
	_, err = orchestrator.RunDemo()
	require.ErrorIs(t, err, session.ErrNotReady)
}
