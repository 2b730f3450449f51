package scan

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/myrjola/cropdoc/internal/ai"
	"github.com/myrjola/cropdoc/internal/db"
	"github.com/myrjola/cropdoc/internal/models"
	"github.com/myrjola/cropdoc/internal/repositories"
	"github.com/myrjola/cropdoc/internal/session"
	"github.com/spf13/cobra"
)

// localScope keys CLI scans in the history store, separate from any browser
// session.
const localScope = "local"

var Group = &cobra.Group{
	ID:    "scan",
	Title: "Diagnostic operations",
}

func init() {
	Scan.Flags().String("sqlite-url", "./cropdoc.sqlite", "SQLite URL for the scan history")
	Scan.Flags().Int("deep-dive", -1, "fetch grounded treatment detail for the given recommendation index")
	History.Flags().String("sqlite-url", "./cropdoc.sqlite", "SQLite URL for the scan history")
}

var Scan = &cobra.Command{
	Use:     "scan [image file]",
	GroupID: "scan",
	Short:   "Diagnose a crop image",
	Long:    `Runs a crop photo through the disease analysis and prints the diagnosis.`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		data, err := os.ReadFile(args[0])
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "read image: %v\n", err)
			return
		}
		mimeType := http.DetectContentType(data)
		if !strings.HasPrefix(mimeType, "image/") {
			_, _ = fmt.Fprintf(os.Stderr, "not an image file: %s\n", args[0])
			return
		}

		orchestrator, cleanup, err := newOrchestrator(ctx, cmd)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
			return
		}
		defer cleanup()

		state := orchestrator.Submit(ctx, models.Image{MIMEType: mimeType, Data: data})
		if state.Status == session.StatusError {
			_, _ = fmt.Fprintf(os.Stderr, "%s: %s\n", state.Error.Message, state.Error.Details)
			return
		}
		printDiagnosis(cmd, *state.Result)

		index, err := cmd.Flags().GetInt("deep-dive")
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "invalid deep-dive flag: %v\n", err)
			return
		}
		if index < 0 {
			return
		}
		state, err = orchestrator.StartDeepDive(ctx, index)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "deep dive: %v\n", err)
			return
		}
		if state.DeepDive == nil {
			_, _ = fmt.Fprintln(os.Stderr, "deep dive unavailable, try again later")
			return
		}
		printDeepDive(cmd, *state.DeepDive)
	},
}

var History = &cobra.Command{
	Use:     "history",
	GroupID: "scan",
	Short:   "List past scans",
	Long:    `Lists the diagnoses recorded by previous scans, newest first.`,
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		orchestrator, cleanup, err := newOrchestrator(ctx, cmd)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
			return
		}
		defer cleanup()

		entries := orchestrator.State().History
		if len(entries) == 0 {
			cmd.Println("no scans recorded")
			return
		}
		for _, entry := range entries {
			cmd.Printf("%s  %s  %s (%s, %.0f%%)\n",
				entry.Timestamp.Format("2006-01-02 15:04"),
				entry.ID,
				entry.Result.Disease,
				entry.Result.Crop,
				entry.Result.Confidence*100) //nolint:mnd // percentage
		}
	},
}

func newOrchestrator(ctx context.Context, cmd *cobra.Command) (*session.Orchestrator, func(), error) {
	sqliteURL, err := cmd.Flags().GetString("sqlite-url")
	if err != nil {
		return nil, nil, fmt.Errorf("invalid sqlite-url flag: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	dbs, err := db.NewDB(sqliteURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	client, err := ai.NewGeminiClient(ctx, os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		_ = dbs.Close()
		return nil, nil, fmt.Errorf("initialise diagnostic client: %w", err)
	}

	history := repositories.NewHistoryRepository(dbs, logger)
	orchestrator := session.New(ctx, client, history, logger, localScope)
	cleanup := func() {
		_ = dbs.Close()
	}
	return orchestrator, cleanup, nil
}

func printDiagnosis(cmd *cobra.Command, diagnosis models.Diagnosis) {
	cmd.Printf("Crop:       %s\n", diagnosis.Crop)
	cmd.Printf("Disease:    %s\n", diagnosis.Disease)
	cmd.Printf("Confidence: %.0f%%\n", diagnosis.Confidence*100) //nolint:mnd // percentage
	cmd.Printf("Severity:   %s\n", diagnosis.Severity)
	cmd.Printf("\n%s\n", diagnosis.Description)
	if len(diagnosis.Symptoms) > 0 {
		cmd.Println("\nSymptoms:")
		for _, symptom := range diagnosis.Symptoms {
			cmd.Printf("  - %s\n", symptom)
		}
	}
	if len(diagnosis.Recommendations) > 0 {
		cmd.Println("\nRecommendations:")
		for i, recommendation := range diagnosis.Recommendations {
			cmd.Printf("  %d. %s\n", i, recommendation)
		}
	}
}

func printDeepDive(cmd *cobra.Command, deepDive models.DeepDive) {
	cmd.Printf("\n%s\n", deepDive.Text)
	if len(deepDive.Sources) > 0 {
		cmd.Println("\nSources:")
		for _, source := range deepDive.Sources {
			cmd.Printf("  - %s: %s\n", source.Title, source.URI)
		}
	}
}
