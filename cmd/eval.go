// File: cmd/eval.go
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/IdiotStudios/rfheadless/internal/browser/session"
	"github.com/IdiotStudios/rfheadless/internal/config"
	"github.com/IdiotStudios/rfheadless/internal/observability"
)

var (
	evalHTMLPath   string
	evalScriptPath string
	evalAdvanceMS  int64
	evalJSONOut    bool
)

// evalResult is the JSON shape produced with --json.
type evalResult struct {
	SessionID string            `json:"session_id"`
	Value     interface{}       `json:"value"`
	Error     string            `json:"error,omitempty"`
	Console   []consoleEntry    `json:"console,omitempty"`
	Snapshot  session.Snapshot  `json:"snapshot"`
}

type consoleEntry struct {
	Level  string `json:"level"`
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

var evalCmd = &cobra.Command{
	Use:   "eval [script]",
	Short: "Load an HTML document and evaluate a script against it.",
	Long: `Load an HTML document, evaluate a script inside the headless runtime,
then advance the logical clock so timers and queued microtasks run.
The script is given inline as the first argument or via --script.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()
		cfg := config.Get()

		script, err := resolveScript(args)
		if err != nil {
			return err
		}

		html, err := os.ReadFile(evalHTMLPath)
		if err != nil {
			return fmt.Errorf("failed to read HTML file: %w", err)
		}

		sess := session.New(logger, cfg.Script)
		if err := sess.LoadHTML(string(html)); err != nil {
			return err
		}

		value, evalErr := sess.Evaluate(cmd.Context(), script)
		if evalAdvanceMS > 0 {
			sess.AdvanceClock(evalAdvanceMS)
		}

		messages := sess.ConsoleMessages()

		if evalJSONOut {
			out := evalResult{
				SessionID: sess.ID(),
				Value:     value,
				Snapshot:  sess.TextSnapshot(),
			}
			if evalErr != nil {
				out.Error = evalErr.Error()
			}
			for _, m := range messages {
				out.Console = append(out.Console, consoleEntry{
					Level: m.Level, Text: m.Text,
					Source: m.Source, Line: m.Line, Column: m.Column,
				})
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		for _, m := range messages {
			if m.Source != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s (%s:%d:%d)\n", m.Level, m.Text, m.Source, m.Line, m.Column)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", m.Level, m.Text)
			}
		}
		if evalErr != nil {
			logger.Error("Script evaluation failed", zap.Error(evalErr))
			return evalErr
		}
		if value != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", value)
		}
		return nil
	},
}

func resolveScript(args []string) (string, error) {
	if evalScriptPath != "" {
		src, err := os.ReadFile(evalScriptPath)
		if err != nil {
			return "", fmt.Errorf("failed to read script file: %w", err)
		}
		return string(src), nil
	}
	if len(args) == 1 {
		return args[0], nil
	}
	return "", fmt.Errorf("a script is required, either inline or via --script")
}

func init() {
	evalCmd.Flags().StringVar(&evalHTMLPath, "html", "", "path to the HTML document to load (required)")
	evalCmd.Flags().StringVar(&evalScriptPath, "script", "", "path to a script file to evaluate")
	evalCmd.Flags().Int64Var(&evalAdvanceMS, "advance", 0, "milliseconds to advance the logical clock after evaluation")
	evalCmd.Flags().BoolVar(&evalJSONOut, "json", false, "emit results as JSON")
	_ = evalCmd.MarkFlagRequired("html")
}
