package census

// JSON keys of the prediction request, in form order.
const (
	FieldAge           = "age"
	FieldWorkclass     = "workclass"
	FieldFnlwgt        = "fnlwgt"
	FieldEducation     = "education"
	FieldEducationNum  = "education_num"
	FieldMaritalStatus = "marital_status"
	FieldOccupation    = "occupation"
	FieldRelationship  = "relationship"
	FieldRace          = "race"
	FieldSex           = "sex"
	FieldCapitalGain   = "capital_gain"
	FieldCapitalLoss   = "capital_loss"
	FieldHoursPerWeek  = "hours_per_week"
	FieldNativeCountry = "native_country"
)

// Widget identifies the input control used for a field.
type Widget string

const (
	WidgetNumber Widget = "number"
	WidgetSlider Widget = "slider"
	WidgetSelect Widget = "select"
)

// FieldSpec describes one form widget and its constraints. Numeric widgets set
// Min (and Max for sliders) plus Step; select widgets set Options.
type FieldSpec struct {
	Name    string
	Label   string
	Help    string
	Widget  Widget
	Min     *int
	Max     *int
	Step    int
	Options []string
}

// Numeric reports whether the field holds an integer value.
func (f FieldSpec) Numeric() bool {
	return f.Widget == WidgetNumber || f.Widget == WidgetSlider
}

// Default returns the initial widget value: the minimum for numeric widgets
// and the first option for selects.
func (f FieldSpec) Default() any {
	if f.Numeric() {
		if f.Min != nil {
			return *f.Min
		}
		return 0
	}
	if len(f.Options) > 0 {
		return f.Options[0]
	}
	return ""
}

// Fields returns the ordered widget specifications for the form.
func Fields() []FieldSpec {
	return []FieldSpec{
		number(FieldAge, "Age", 17, "Age in years."),
		choice(FieldWorkclass, "Workclass", "Employment sector."),
		number(FieldFnlwgt, "Final Weight", 1, "Census sampling weight (fnlwgt)."),
		choice(FieldEducation, "Education", "Highest level of education completed."),
		slider(FieldEducationNum, "Education Number", 1, 16, "Education level as a number."),
		choice(FieldMaritalStatus, "Marital Status", ""),
		choice(FieldOccupation, "Occupation", ""),
		choice(FieldRelationship, "Relationship", "Role within the household."),
		choice(FieldRace, "Race", ""),
		choice(FieldSex, "Sex", ""),
		number(FieldCapitalGain, "Capital Gain", 0, ""),
		number(FieldCapitalLoss, "Capital Loss", 0, ""),
		slider(FieldHoursPerWeek, "Hours per Week", 1, 99, "Usual hours worked per week."),
		choice(FieldNativeCountry, "Native Country", ""),
	}
}

// FieldNames returns the JSON keys of the request in form order.
func FieldNames() []string {
	fields := Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name
	}
	return names
}

// Lookup returns the FieldSpec for the named field.
func Lookup(name string) (FieldSpec, bool) {
	for _, field := range Fields() {
		if field.Name == name {
			return field, true
		}
	}
	return FieldSpec{}, false
}

// Defaults returns the initial widget values keyed by field name.
func Defaults() map[string]any {
	fields := Fields()
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		out[field.Name] = field.Default()
	}
	return out
}

func number(name, label string, min int, help string) FieldSpec {
	return FieldSpec{Name: name, Label: label, Help: help, Widget: WidgetNumber, Min: intPtr(min), Step: 1}
}

func slider(name, label string, min, max int, help string) FieldSpec {
	return FieldSpec{Name: name, Label: label, Help: help, Widget: WidgetSlider, Min: intPtr(min), Max: intPtr(max), Step: 1}
}

func choice(name, label, help string) FieldSpec {
	return FieldSpec{Name: name, Label: label, Help: help, Widget: WidgetSelect, Options: Options(name)}
}

func intPtr(v int) *int {
	return &v
}
