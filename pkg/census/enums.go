package census

import (
	"errors"
	"fmt"
	"slices"
)

// None is the placeholder option meaning "value not provided". It is a member
// of every categorical option list and is sent to the prediction service as is.
const None = "None"

// ErrUnknownOption is returned when a categorical value is not part of the
// field's option list.
var ErrUnknownOption = errors.New("census: unknown option")

type (
	Workclass     string
	Education     string
	MaritalStatus string
	Occupation    string
	Relationship  string
	Race          string
	Sex           string
	NativeCountry string
)

var WorkclassOptions = []Workclass{
	"Self-emp-not-inc", "Private", "State-gov", "Federal-gov", "Local-gov",
	"Self-emp-inc", "Without-pay", "Never-worked", None,
}

var EducationOptions = []Education{
	"Bachelors", "HS-grad", "11th", "Masters", "9th", "Some-college",
	"Assoc-acdm", "Assoc-voc", "7th-8th", "Doctorate", "Prof-school",
	"5th-6th", "10th", "1st-4th", "Preschool", "12th", None,
}

var MaritalStatusOptions = []MaritalStatus{
	"Married-civ-spouse", "Divorced", "Married-spouse-absent", "Never-married",
	"Separated", "Married-AF-spouse", "Widowed", None,
}

var OccupationOptions = []Occupation{
	"Exec-managerial", "Handlers-cleaners", "Prof-specialty", "Other-service",
	"Adm-clerical", "Sales", "Craft-repair", "Transport-moving",
	"Farming-fishing", "Machine-op-inspct", "Tech-support", "Protective-serv",
	"Armed-Forces", "Priv-house-serv", None,
}

var RelationshipOptions = []Relationship{
	"Husband", "Not-in-family", "Wife", "Own-child", "Unmarried",
	"Other-relative", None,
}

var RaceOptions = []Race{
	"White", "Black", "Asian-Pac-Islander", "Amer-Indian-Eskimo", "Other", None,
}

var SexOptions = []Sex{"Male", "Female", None}

var NativeCountryOptions = []NativeCountry{
	"United-States", "Cuba", "Jamaica", "India", "Mexico", "South",
	"Puerto-Rico", "Honduras", "England", "Canada", "Germany", "Iran",
	"Philippines", "Italy", "Poland", "Columbia", "Cambodia", "Thailand",
	"Ecuador", "Laos", "Taiwan", "Haiti", "Portugal", "Dominican-Republic",
	"El-Salvador", "France", "Guatemala", "China", "Japan", "Yugoslavia",
	"Peru", "Outlying-US(Guam-USVI-etc)", "Scotland", "Trinadad&Tobago",
	"Greece", "Nicaragua", "Vietnam", "Hong", "Ireland", "Hungary",
	"Holand-Netherlands", None,
}

func (v Workclass) Valid() bool     { return slices.Contains(WorkclassOptions, v) }
func (v Education) Valid() bool     { return slices.Contains(EducationOptions, v) }
func (v MaritalStatus) Valid() bool { return slices.Contains(MaritalStatusOptions, v) }
func (v Occupation) Valid() bool    { return slices.Contains(OccupationOptions, v) }
func (v Relationship) Valid() bool  { return slices.Contains(RelationshipOptions, v) }
func (v Race) Valid() bool          { return slices.Contains(RaceOptions, v) }
func (v Sex) Valid() bool           { return slices.Contains(SexOptions, v) }
func (v NativeCountry) Valid() bool { return slices.Contains(NativeCountryOptions, v) }

// ParseWorkclass returns the Workclass named by raw.
func ParseWorkclass(raw string) (Workclass, error) {
	return parseOption(FieldWorkclass, raw, WorkclassOptions)
}

// ParseEducation returns the Education named by raw.
func ParseEducation(raw string) (Education, error) {
	return parseOption(FieldEducation, raw, EducationOptions)
}

// ParseMaritalStatus returns the MaritalStatus named by raw.
func ParseMaritalStatus(raw string) (MaritalStatus, error) {
	return parseOption(FieldMaritalStatus, raw, MaritalStatusOptions)
}

// ParseOccupation returns the Occupation named by raw.
func ParseOccupation(raw string) (Occupation, error) {
	return parseOption(FieldOccupation, raw, OccupationOptions)
}

// ParseRelationship returns the Relationship named by raw.
func ParseRelationship(raw string) (Relationship, error) {
	return parseOption(FieldRelationship, raw, RelationshipOptions)
}

// ParseRace returns the Race named by raw.
func ParseRace(raw string) (Race, error) {
	return parseOption(FieldRace, raw, RaceOptions)
}

// ParseSex returns the Sex named by raw.
func ParseSex(raw string) (Sex, error) {
	return parseOption(FieldSex, raw, SexOptions)
}

// ParseNativeCountry returns the NativeCountry named by raw.
func ParseNativeCountry(raw string) (NativeCountry, error) {
	return parseOption(FieldNativeCountry, raw, NativeCountryOptions)
}

// Options returns the option list for a categorical field keyed by its JSON
// name, or nil for numeric and unknown fields.
func Options(field string) []string {
	switch field {
	case FieldWorkclass:
		return optionStrings(WorkclassOptions)
	case FieldEducation:
		return optionStrings(EducationOptions)
	case FieldMaritalStatus:
		return optionStrings(MaritalStatusOptions)
	case FieldOccupation:
		return optionStrings(OccupationOptions)
	case FieldRelationship:
		return optionStrings(RelationshipOptions)
	case FieldRace:
		return optionStrings(RaceOptions)
	case FieldSex:
		return optionStrings(SexOptions)
	case FieldNativeCountry:
		return optionStrings(NativeCountryOptions)
	default:
		return nil
	}
}

func parseOption[T ~string](field, raw string, options []T) (T, error) {
	value := T(raw)
	if slices.Contains(options, value) {
		return value, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %s %q", ErrUnknownOption, field, raw)
}

func optionStrings[T ~string](options []T) []string {
	out := make([]string, len(options))
	for i, option := range options {
		out[i] = string(option)
	}
	return out
}
