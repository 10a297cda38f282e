package census_test

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-incomeform/pkg/census"
)

func sampleValues() map[string]any {
	return map[string]any{
		"age":            39,
		"workclass":      "State-gov",
		"fnlwgt":         77516,
		"education":      "Bachelors",
		"education_num":  13,
		"marital_status": "Never-married",
		"occupation":     "Adm-clerical",
		"relationship":   "Not-in-family",
		"race":           "White",
		"sex":            "Male",
		"capital_gain":   2174,
		"capital_loss":   0,
		"hours_per_week": 40,
		"native_country": "United-States",
	}
}

func TestFromValues_PayloadMirrorsWidgets(t *testing.T) {
	values := sampleValues()

	record, err := census.FromValues(values)
	require.NoError(t, err)

	require.Equal(t, values, record.Payload())
}

func TestRecordJSON_HasExactlyTheRequestKeys(t *testing.T) {
	record, err := census.FromValues(sampleValues())
	require.NoError(t, err)

	raw, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	keys := make([]string, 0, len(decoded))
	for key := range decoded {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	want := census.FieldNames()
	sort.Strings(want)
	require.Equal(t, want, keys)
	require.Len(t, keys, 14)
	require.Equal(t, "State-gov", decoded["workclass"])
	require.EqualValues(t, 77516, decoded["fnlwgt"])
}

func TestFromValues_AcceptsNoneSentinel(t *testing.T) {
	values := sampleValues()
	for _, spec := range census.Fields() {
		if spec.Widget == census.WidgetSelect {
			values[spec.Name] = census.None
		}
	}

	record, err := census.FromValues(values)
	require.NoError(t, err)
	require.Equal(t, census.Workclass(census.None), record.Workclass)
	require.Equal(t, census.NativeCountry(census.None), record.NativeCountry)
	require.Equal(t, census.None, record.Payload()["sex"])
}

func TestFromValues_RejectsUnknownOption(t *testing.T) {
	values := sampleValues()
	values["workclass"] = "Astronaut"
	values["sex"] = "male"

	_, err := census.FromValues(values)
	require.Error(t, err)

	fields := census.FieldErrors(err)
	require.Equal(t, []string{"must be one of the listed options"}, fields["workclass"])
	require.Equal(t, []string{"must be one of the listed options"}, fields["sex"])
	require.Len(t, fields, 2)
}

func TestFromValues_EnforcesWidgetRanges(t *testing.T) {
	values := sampleValues()
	values["age"] = 16
	values["fnlwgt"] = 0
	values["education_num"] = 17
	values["capital_loss"] = -1
	values["hours_per_week"] = 100

	_, err := census.FromValues(values)
	require.Error(t, err)

	fields := census.FieldErrors(err)
	require.Equal(t, []string{"must be at least 17"}, fields["age"])
	require.Equal(t, []string{"must be at least 1"}, fields["fnlwgt"])
	require.Equal(t, []string{"must be at most 16"}, fields["education_num"])
	require.Equal(t, []string{"must be at least 0"}, fields["capital_loss"])
	require.Equal(t, []string{"must be at most 99"}, fields["hours_per_week"])
}

func TestFromValues_CoercesNumericInputs(t *testing.T) {
	values := sampleValues()
	values["age"] = "42"
	values["fnlwgt"] = float64(1000)
	values["education_num"] = json.Number("9")
	values["capital_gain"] = int64(5)

	record, err := census.FromValues(values)
	require.NoError(t, err)
	require.Equal(t, 42, record.Age)
	require.Equal(t, 1000, record.Fnlwgt)
	require.Equal(t, 9, record.EducationNum)
	require.Equal(t, 5, record.CapitalGain)
}

func TestFromValues_NumericPathsAgree(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want int
		err  string
	}{
		{name: "int", raw: 40, want: 40},
		{name: "float", raw: 40.0, want: 40},
		{name: "json integer", raw: json.Number("40"), want: 40},
		{name: "json integral float", raw: json.Number("40.0"), want: 40},
		{name: "string integral float", raw: "40.0", want: 40},
		{name: "json fraction", raw: json.Number("40.5"), err: "must be a whole number"},
		{name: "string fraction", raw: "40.5", err: "must be a whole number"},
		{name: "json huge", raw: json.Number("1e12"), err: "is out of range"},
		{name: "int64 huge", raw: int64(1) << 40, err: "is out of range"},
		{name: "string huge", raw: "4294967296", err: "is out of range"},
		{name: "float huge", raw: float64(1 << 40), err: "is out of range"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := sampleValues()
			values["hours_per_week"] = tc.raw

			record, err := census.FromValues(values)
			if tc.err == "" {
				require.NoError(t, err)
				require.Equal(t, tc.want, record.HoursPerWeek)
				return
			}
			require.Error(t, err)
			require.Equal(t, []string{tc.err}, census.FieldErrors(err)["hours_per_week"])
		})
	}
}

func TestFromValues_ReportsMissingAndMalformed(t *testing.T) {
	values := sampleValues()
	delete(values, "race")
	values["age"] = "forty"
	values["hours_per_week"] = 40.5

	_, err := census.FromValues(values)
	require.Error(t, err)
	require.Contains(t, err.Error(), "census: invalid record")

	fields := census.FieldErrors(err)
	require.Equal(t, []string{"is required"}, fields["race"])
	require.Equal(t, []string{"must be a whole number"}, fields["age"])
	require.Equal(t, []string{"must be a whole number"}, fields["hours_per_week"])
}

func TestDefault_UsesWidgetMinimumsAndFirstOptions(t *testing.T) {
	record := census.Default()

	require.Equal(t, 17, record.Age)
	require.Equal(t, 1, record.Fnlwgt)
	require.Equal(t, 1, record.EducationNum)
	require.Equal(t, 0, record.CapitalGain)
	require.Equal(t, 1, record.HoursPerWeek)
	require.Equal(t, census.WorkclassOptions[0], record.Workclass)
	require.Equal(t, census.NativeCountryOptions[0], record.NativeCountry)
	require.NoError(t, record.Validate())
}

func TestRecordValidate_RejectsZeroEnums(t *testing.T) {
	record := census.Default()
	record.Race = ""

	fields := census.FieldErrors(record.Validate())
	require.Equal(t, []string{"must be one of the listed options"}, fields["race"])
}
