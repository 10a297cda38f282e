package testsupport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgmodel "github.com/goliatone/go-incomeform/pkg/model"
	pkgopenapi "github.com/goliatone/go-incomeform/pkg/openapi"
)

// ContractForm builds the form model of the prediction contract served at
// endpoint (the default endpoint when empty).
func ContractForm(t *testing.T, endpoint string) pkgmodel.FormModel {
	t.Helper()

	form, err := BuildContractForm(endpoint)
	if err != nil {
		t.Fatalf("contract form: %v", err)
	}
	return form
}

// BuildContractForm is the error-returning variant of ContractForm for setup
// code running outside *testing.T.
func BuildContractForm(endpoint string) (pkgmodel.FormModel, error) {
	doc, err := pkgopenapi.Document(endpoint)
	if err != nil {
		return pkgmodel.FormModel{}, fmt.Errorf("testsupport: contract document: %w", err)
	}
	form, err := pkgmodel.NewBuilder().Build(doc, pkgopenapi.OperationID)
	if err != nil {
		return pkgmodel.FormModel{}, fmt.Errorf("testsupport: build form: %w", err)
	}
	return form, nil
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
