package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-incomeform/pkg/model"
	"github.com/goliatone/go-incomeform/pkg/orchestrator"
	"github.com/goliatone/go-incomeform/pkg/render"
	"github.com/goliatone/go-incomeform/pkg/renderers/tui"
)

// formSubmitter is the orchestrator surface the prompt loop needs.
type formSubmitter interface {
	Form(ctx context.Context) (model.FormModel, error)
	Submit(ctx context.Context, values map[string]any) orchestrator.Submission
}

func newPromptCmd(a *app) *cobra.Command {
	var showValues bool

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Fill in the form in the terminal and submit it once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			renderer, err := tui.New(
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())),
				tui.WithTheme(tui.Theme{ErrorPrefix: "! "}),
			)
			if err != nil {
				return err
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			return runPrompt(cmd, orch, renderer, showValues)
		},
	}

	cmd.Flags().BoolVar(&showValues, "show-values", false, "print the submitted JSON before the outcome")
	return cmd
}

// runPrompt collects values with renderer until they pass local validation,
// submits them once and prints the outcome.
func runPrompt(cmd *cobra.Command, orch formSubmitter, renderer render.Renderer, showValues bool) error {
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	form, err := orch.Form(ctx)
	if err != nil {
		return err
	}

	opts := render.RenderOptions{}
	for {
		raw, err := renderer.Render(ctx, form, opts)
		if err != nil {
			return err
		}

		var values map[string]any
		if err := json.Unmarshal(raw, &values); err != nil {
			return fmt.Errorf("prompt: decode values: %w", err)
		}
		if showValues {
			fmt.Fprintln(out, string(raw))
		}

		sub := orch.Submit(ctx, values)
		if sub.Invalid() {
			opts = sub.RenderOptions()
			continue
		}
		fmt.Fprintln(out, sub.Result.Display())
		return nil
	}
}
