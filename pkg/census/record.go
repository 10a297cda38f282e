package census

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Record is the prediction request. It is built fresh for every submission
// and serialises to exactly the fourteen request keys.
type Record struct {
	Age           int           `json:"age" validate:"min=17"`
	Workclass     Workclass     `json:"workclass" validate:"census_enum"`
	Fnlwgt        int           `json:"fnlwgt" validate:"min=1"`
	Education     Education     `json:"education" validate:"census_enum"`
	EducationNum  int           `json:"education_num" validate:"min=1,max=16"`
	MaritalStatus MaritalStatus `json:"marital_status" validate:"census_enum"`
	Occupation    Occupation    `json:"occupation" validate:"census_enum"`
	Relationship  Relationship  `json:"relationship" validate:"census_enum"`
	Race          Race          `json:"race" validate:"census_enum"`
	Sex           Sex           `json:"sex" validate:"census_enum"`
	CapitalGain   int           `json:"capital_gain" validate:"min=0"`
	CapitalLoss   int           `json:"capital_loss" validate:"min=0"`
	HoursPerWeek  int           `json:"hours_per_week" validate:"min=1,max=99"`
	NativeCountry NativeCountry `json:"native_country" validate:"census_enum"`
}

// ValidationError collects per-field messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "census: invalid record"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], ", "))
	}
	return "census: invalid record: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// FieldErrors extracts the per-field messages from err when it is (or wraps) a
// *ValidationError.
func FieldErrors(err error) map[string][]string {
	var verr *ValidationError
	if errors.As(err, &verr) && verr != nil {
		return verr.Fields
	}
	return nil
}

// Default returns the record matching the initial widget values.
func Default() Record {
	record, err := FromValues(Defaults())
	if err != nil {
		panic(fmt.Sprintf("census: default values are invalid: %v", err))
	}
	return record
}

// FromValues assembles a Record from widget values keyed by JSON field name.
// Integer fields accept Go integers, integral floats, json.Number and decimal
// strings; categorical fields accept option strings. Every problem is reported
// in a single *ValidationError.
func FromValues(values map[string]any) (Record, error) {
	var (
		record Record
		verr   ValidationError
	)

	for _, spec := range Fields() {
		raw, ok := values[spec.Name]
		if !ok || raw == nil {
			verr.add(spec.Name, "is required")
			continue
		}
		if spec.Numeric() {
			n, err := toInt(raw)
			if err != nil {
				verr.add(spec.Name, err.Error())
				continue
			}
			record.setInt(spec.Name, n)
			continue
		}
		s, ok := raw.(string)
		if !ok {
			verr.add(spec.Name, fmt.Sprintf("must be a string, got %T", raw))
			continue
		}
		if err := record.setOption(spec.Name, s); err != nil {
			verr.add(spec.Name, "must be one of the listed options")
		}
	}

	if err := record.Validate(); err != nil {
		for field, messages := range FieldErrors(err) {
			if verr.has(field) {
				continue
			}
			for _, message := range messages {
				verr.add(field, message)
			}
		}
	}

	if len(verr.Fields) > 0 {
		return Record{}, &verr
	}
	return record, nil
}

// Validate checks every widget constraint: numeric minimums and slider
// ranges plus option list membership for categorical fields.
func (r Record) Validate() error {
	err := validatorInstance().Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("census: validate record: %w", err)
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.add(fe.Field(), validationMessage(fe))
	}
	return verr
}

// Payload returns the request body as a map holding exactly the fourteen
// request keys.
func (r Record) Payload() map[string]any {
	return map[string]any{
		FieldAge:           r.Age,
		FieldWorkclass:     string(r.Workclass),
		FieldFnlwgt:        r.Fnlwgt,
		FieldEducation:     string(r.Education),
		FieldEducationNum:  r.EducationNum,
		FieldMaritalStatus: string(r.MaritalStatus),
		FieldOccupation:    string(r.Occupation),
		FieldRelationship:  string(r.Relationship),
		FieldRace:          string(r.Race),
		FieldSex:           string(r.Sex),
		FieldCapitalGain:   r.CapitalGain,
		FieldCapitalLoss:   r.CapitalLoss,
		FieldHoursPerWeek:  r.HoursPerWeek,
		FieldNativeCountry: string(r.NativeCountry),
	}
}

func (r *Record) setInt(field string, value int) {
	switch field {
	case FieldAge:
		r.Age = value
	case FieldFnlwgt:
		r.Fnlwgt = value
	case FieldEducationNum:
		r.EducationNum = value
	case FieldCapitalGain:
		r.CapitalGain = value
	case FieldCapitalLoss:
		r.CapitalLoss = value
	case FieldHoursPerWeek:
		r.HoursPerWeek = value
	}
}

func (r *Record) setOption(field, raw string) error {
	var err error
	switch field {
	case FieldWorkclass:
		r.Workclass, err = ParseWorkclass(raw)
	case FieldEducation:
		r.Education, err = ParseEducation(raw)
	case FieldMaritalStatus:
		r.MaritalStatus, err = ParseMaritalStatus(raw)
	case FieldOccupation:
		r.Occupation, err = ParseOccupation(raw)
	case FieldRelationship:
		r.Relationship, err = ParseRelationship(raw)
	case FieldRace:
		r.Race, err = ParseRace(raw)
	case FieldSex:
		r.Sex, err = ParseSex(raw)
	case FieldNativeCountry:
		r.NativeCountry, err = ParseNativeCountry(raw)
	default:
		err = fmt.Errorf("census: %q is not a categorical field", field)
	}
	return err
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return boundedInt(int64(v))
	case int32:
		return int(v), nil
	case int64:
		return boundedInt(v)
	case float64:
		return wholeNumber(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, errNotWhole
		}
		return wholeNumber(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errNotWhole
		}
		return wholeNumber(f)
	default:
		return 0, fmt.Errorf("must be a number, got %T", raw)
	}
}

var (
	errNotWhole   = errors.New("must be a whole number")
	errOutOfRange = errors.New("is out of range")
)

// wholeNumber accepts integral floats such as 17.0 within the int32 range.
func wholeNumber(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, errNotWhole
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, errOutOfRange
	}
	return int(v), nil
}

func boundedInt(v int64) (int, error) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, errOutOfRange
	}
	return int(v), nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "census_enum":
		return "must be one of the listed options"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

type optionValue interface {
	Valid() bool
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("census_enum", func(fl validator.FieldLevel) bool {
			value, ok := fl.Field().Interface().(optionValue)
			return ok && value.Valid()
		})
		validate = v
	})
	return validate
}
