package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-incomeform/pkg/census"
	"github.com/goliatone/go-incomeform/pkg/predict"
)

// resultJSON is the --json output of the predict command.
type resultJSON struct {
	Kind    predict.Kind `json:"kind"`
	Label   string       `json:"label,omitempty"`
	Message string       `json:"message,omitempty"`
	Display string       `json:"display"`
}

func newPredictCmd(a *app) *cobra.Command {
	var (
		asJSON  bool
		ints    = map[string]*int{}
		strs    = map[string]*string{}
		flagFor = map[string]string{}
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Submit one record built from flags",
		Long: `Builds a record from flags (unset flags keep the form defaults), posts it to
the prediction endpoint once and prints the outcome. Remote failures are printed
as the outcome; only invalid flag values make the command fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := make(map[string]any, len(flagFor))
			for name, value := range ints {
				values[name] = *value
			}
			for name, value := range strs {
				values[name] = *value
			}

			orch, err := a.orchestrator()
			if err != nil {
				return err
			}

			sub := orch.Submit(commandContext(cmd), values)
			if sub.Invalid() {
				return invalidFlagsError(sub.Errors, sub.FormErrors, flagFor)
			}

			out := cmd.OutOrStdout()
			if !asJSON {
				fmt.Fprintln(out, sub.Result.Display())
				return nil
			}
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(resultJSON{
				Kind:    sub.Result.Kind,
				Label:   sub.Result.Label,
				Message: sub.Result.Message,
				Display: sub.Result.Display(),
			})
		},
	}

	flags := cmd.Flags()
	for _, spec := range census.Fields() {
		flagName := strings.ReplaceAll(spec.Name, "_", "-")
		flagFor[spec.Name] = flagName
		usage := fieldUsage(spec)
		if spec.Numeric() {
			def, _ := spec.Default().(int)
			ints[spec.Name] = flags.Int(flagName, def, usage)
			continue
		}
		def, _ := spec.Default().(string)
		strs[spec.Name] = flags.String(flagName, def, usage)
	}
	flags.BoolVar(&asJSON, "json", false, "print the outcome as JSON")
	flags.SortFlags = false
	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	return cmd
}

func fieldUsage(spec census.FieldSpec) string {
	usage := spec.Label
	switch {
	case spec.Min != nil && spec.Max != nil:
		usage += fmt.Sprintf(" (%d-%d)", *spec.Min, *spec.Max)
	case spec.Min != nil:
		usage += fmt.Sprintf(" (min %d)", *spec.Min)
	}
	if len(spec.Options) > 0 && len(spec.Options) <= 10 {
		usage += ": " + strings.Join(spec.Options, ", ")
	} else if len(spec.Options) > 0 {
		usage += fmt.Sprintf(": one of %d options, see `incomeform schema`", len(spec.Options))
	}
	return usage
}

func invalidFlagsError(fieldErrs map[string][]string, formErrs []string, flagFor map[string]string) error {
	names := make([]string, 0, len(fieldErrs))
	for name := range fieldErrs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names)+len(formErrs))
	for _, name := range names {
		flagName := flagFor[name]
		if flagName == "" {
			flagName = name
		}
		parts = append(parts, fmt.Sprintf("--%s %s", flagName, strings.Join(fieldErrs[name], ", ")))
	}
	parts = append(parts, formErrs...)
	return errors.New("invalid record: " + strings.Join(parts, "; "))
}
