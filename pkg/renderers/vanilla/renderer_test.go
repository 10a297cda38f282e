package vanilla_test

import (
	"fmt"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-incomeform/pkg/census"
	"github.com/goliatone/go-incomeform/pkg/render"
	"github.com/goliatone/go-incomeform/pkg/renderers/vanilla"
	"github.com/goliatone/go-incomeform/pkg/testsupport"
)

func renderPage(t *testing.T, opts render.RenderOptions, options ...vanilla.Option) string {
	t.Helper()

	renderer, err := vanilla.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	output, err := renderer.Render(testsupport.Context(), testsupport.ContractForm(t, ""), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(output)
}

func TestRenderer_SelectsListEveryOption(t *testing.T) {
	page := renderPage(t, render.RenderOptions{})

	for _, spec := range census.Fields() {
		if spec.Widget != census.WidgetSelect {
			continue
		}
		if !strings.Contains(page, fmt.Sprintf(`<select id="if-%s" name="%s" required`, spec.Name, spec.Name)) {
			t.Fatalf("missing select for %s", spec.Name)
		}
		for i, option := range spec.Options {
			markup := fmt.Sprintf(`<option value="%s">%s</option>`, option, option)
			if i == 0 {
				markup = fmt.Sprintf(`<option value="%s" selected>%s</option>`, option, option)
			}
			if !strings.Contains(page, markup) {
				t.Fatalf("field %s missing option markup %q", spec.Name, markup)
			}
		}
	}
}

func TestRenderer_NumericWidgets(t *testing.T) {
	page := renderPage(t, render.RenderOptions{})

	wants := []string{
		`<input type="number" id="if-age" name="age" value="17" min="17" step="1" required`,
		`<input type="number" id="if-fnlwgt" name="fnlwgt" value="1" min="1" step="1" required`,
		`<input type="number" id="if-capital_gain" name="capital_gain" value="0" min="0" step="1" required`,
		`<input type="number" id="if-capital_loss" name="capital_loss" value="0" min="0" step="1" required`,
		`<input type="range" id="if-education_num" name="education_num" value="1" min="1" max="16" step="1"`,
		`<input type="range" id="if-hours_per_week" name="hours_per_week" value="1" min="1" max="99" step="1"`,
		`<output for="if-hours_per_week">1</output>`,
	}
	for _, want := range wants {
		if !strings.Contains(page, want) {
			t.Fatalf("expected markup %q in page", want)
		}
	}
	if strings.Contains(page, `name="age" value="17" min="17" max=`) {
		t.Fatalf("number inputs must not carry a max bound")
	}
}

func TestRenderer_PrefillsValuesAndErrors(t *testing.T) {
	page := renderPage(t, render.RenderOptions{
		Action: "/",
		Values: map[string]any{
			census.FieldHoursPerWeek: "40",
			census.FieldSex:          "Female",
			census.FieldAge:          float64(39),
			census.FieldWorkclass:    "State-gov",
		},
		Errors: map[string][]string{
			census.FieldFnlwgt: {"must be at least 1"},
		},
		FormErrors: []string{"Please fix the highlighted fields."},
	})

	wants := []string{
		`<form method="post" action="/"`,
		`name="age" value="39"`,
		`<output for="if-hours_per_week">40</output>`,
		`<option value="Female" selected>Female</option>`,
		`<option value="Male">Male</option>`,
		`<option value="State-gov" selected>State-gov</option>`,
		`<option value="Private">Private</option>`,
		`incomeform__field--invalid" data-field="fnlwgt"`,
		`aria-invalid="true"`,
		`<li>must be at least 1</li>`,
		`<li>Please fix the highlighted fields.</li>`,
	}
	for _, want := range wants {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q in page", want)
		}
	}
}

func TestRenderer_NoticeIsEscapedLiterally(t *testing.T) {
	page := renderPage(t, render.RenderOptions{
		Notice: render.ErrorNotice(`Error: <script>alert(1)</script>model unavailable`),
	})

	if strings.Contains(page, "<script>") {
		t.Fatalf("notice markup must not be emitted")
	}
	if !strings.Contains(page, `incomeform__notice--error" role="status">Error: &lt;script&gt;alert(1)&lt;/script&gt;model unavailable</div>`) {
		t.Fatalf("expected escaped error notice in page")
	}

	page = renderPage(t, render.RenderOptions{
		Notice: render.ErrorNotice("Error: expected <int> for age"),
	})
	if !strings.Contains(page, "Error: expected &lt;int&gt; for age") {
		t.Fatalf("expected angle-bracket text kept in notice")
	}

	page = renderPage(t, render.RenderOptions{
		Notice: render.SuccessNotice("Predicted Income: <b>50K</b>"),
	})
	if !strings.Contains(page, "incomeform__notice--success") || !strings.Contains(page, "Predicted Income: &lt;b&gt;50K&lt;/b&gt;") {
		t.Fatalf("expected escaped success notice in page")
	}
}

func TestRenderer_NoNoticeWithoutSubmission(t *testing.T) {
	page := renderPage(t, render.RenderOptions{})

	if strings.Contains(page, "incomeform__notice") {
		t.Fatalf("fresh page must not show a notice")
	}
	if !strings.Contains(page, "<title>Predict income bracket</title>") {
		t.Fatalf("expected operation summary as title")
	}
	if !strings.Contains(page, `<button type="submit" class="incomeform__submit">Predict</button>`) {
		t.Fatalf("expected submit button")
	}
}

func TestRenderer_HelpText(t *testing.T) {
	page := renderPage(t, render.RenderOptions{})

	if !strings.Contains(page, `<p class="incomeform__help" id="if-age-help">Age in years.</p>`) {
		t.Fatalf("expected age help text")
	}
	if !strings.Contains(page, `aria-describedby="if-age-help"`) {
		t.Fatalf("expected age control to reference its help text")
	}
}

func TestRenderer_ThemeAndStyles(t *testing.T) {
	page := renderPage(t, render.RenderOptions{Theme: testThemeConfig()}, vanilla.WithDefaultStyles())

	wants := []string{
		`data-theme="acme" data-theme-variant="dark"`,
		`--if-accent: #123456;`,
		`<link rel="stylesheet" href="/themes/acme/incomeform.css">`,
		`.incomeform__notice--success`,
	}
	for _, want := range wants {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q in page", want)
		}
	}

	page = renderPage(t, render.RenderOptions{}, vanilla.WithStylesheet("/assets/incomeform.css"))
	if !strings.Contains(page, `<link rel="stylesheet" href="/assets/incomeform.css">`) {
		t.Fatalf("expected external stylesheet link")
	}
	if strings.Contains(page, "<style>") {
		t.Fatalf("styles should not be inlined by default")
	}
}

func testThemeConfig() *theme.RendererConfig {
	return &theme.RendererConfig{
		Theme:   "acme",
		Variant: "dark",
		Tokens: map[string]string{
			"if-accent": "#123456",
		},
		CSSVars: map[string]string{
			"--if-accent": "#123456",
		},
		AssetURL: func(key string) string {
			if key == "" {
				return ""
			}
			return "/themes/acme/" + key
		},
	}
}
