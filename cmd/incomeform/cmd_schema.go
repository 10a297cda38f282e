package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pkgopenapi "github.com/goliatone/go-incomeform/pkg/openapi"
)

const (
	schemaFormatForm        = "form"
	schemaFormatOpenAPIJSON = "openapi-json"
	schemaFormatOpenAPIYAML = "openapi-yaml"
)

func newSchemaCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the form model or the prediction contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch strings.ToLower(strings.TrimSpace(format)) {
			case schemaFormatForm:
				form, err := orch.Form(commandContext(cmd))
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(form, "", "  ")
				if err != nil {
					return fmt.Errorf("schema: encode form: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			case schemaFormatOpenAPIJSON, schemaFormatOpenAPIYAML:
				doc, err := orch.Document()
				if err != nil {
					return err
				}
				target := pkgopenapi.FormatJSON
				if strings.HasSuffix(format, "yaml") {
					target = pkgopenapi.FormatYAML
				}
				data, err := pkgopenapi.Marshal(doc, target)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			default:
				return fmt.Errorf("schema: unknown format %q (want %s, %s or %s)",
					format, schemaFormatForm, schemaFormatOpenAPIJSON, schemaFormatOpenAPIYAML)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", schemaFormatForm, "output format: form, openapi-json or openapi-yaml")
	return cmd
}
