package features

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() map[string]any {
	return map[string]any{
		"age":        63,
		"sex":        "M",
		"chest_pain": "ASY",
		"rbp":        145,
		"chol":       233,
		"fbs":        "High",
		"ecg":        "Normal",
		"max_hr":     150,
		"angina":     "N",
		"oldpeak":    2.3,
		"st_slope":   "Up",
	}
}

func TestBuildSampleVector(t *testing.T) {
	v, err := Build(samplePayload())
	require.NoError(t, err)

	expected := Vector{63, 1, 0, 145, 233, 1, 1, 150, 0, 2.3, 2}
	assert.Equal(t, expected, v)
}

func TestBuildFromJSONNumbers(t *testing.T) {
	body := `{"age":63,"sex":"M","chest_pain":"ASY","rbp":145,"chol":233,
		"fbs":"High","ecg":"Normal","max_hr":150,"angina":"N","oldpeak":2.3,"st_slope":"Up"}`

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var payload map[string]any
	require.NoError(t, dec.Decode(&payload))

	v, err := Build(payload)
	require.NoError(t, err)
	assert.Equal(t, Vector{63, 1, 0, 145, 233, 1, 1, 150, 0, 2.3, 2}, v)
}

func TestValidateMissingEachField(t *testing.T) {
	for _, field := range RequiredFields {
		t.Run(field, func(t *testing.T) {
			payload := samplePayload()
			delete(payload, field)

			err := Validate(payload)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingFields))

			var mfe *MissingFieldsError
			require.True(t, errors.As(err, &mfe))
			assert.Equal(t, []string{field}, mfe.Fields)
		})
	}
}

func TestValidateEmptyPayload(t *testing.T) {
	err := Validate(map[string]any{})
	require.ErrorIs(t, err, ErrMissingFields)

	var mfe *MissingFieldsError
	require.ErrorAs(t, err, &mfe)
	assert.Len(t, mfe.Fields, NumFeatures)
}

func TestValidateIgnoresExtraFields(t *testing.T) {
	payload := samplePayload()
	payload["notes"] = "walks daily"
	assert.NoError(t, Validate(payload))
}

func TestBuildAcceptsNegativeAge(t *testing.T) {
	payload := samplePayload()
	payload["age"] = -4

	v, err := Build(payload)
	require.NoError(t, err)
	assert.Equal(t, float64(-4), v[0])
}

func TestBuildUnknownCategory(t *testing.T) {
	tests := []struct {
		field string
		value any
	}{
		{FieldSex, "X"},
		{FieldSex, "m"},
		{FieldSex, " M"},
		{FieldChestPain, "asy"},
		{FieldFBS, "normal"},
		{FieldECG, "Normal "},
		{FieldAngina, "Yes"},
		{FieldSTSlope, "UP"},
		{FieldSex, 1},
		{FieldSTSlope, nil},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			payload := samplePayload()
			payload[tt.field] = tt.value

			_, err := Build(payload)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnknownCategory)

			var ee *EncodingError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.field, ee.Field)
			assert.NotEmpty(t, err.Error())
		})
	}
}

func TestBuildNumericCoercion(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   any
		index   int
		want    float64
		wantErr bool
	}{
		{"int string", FieldAge, "63", 0, 63, false},
		{"padded int string", FieldRBP, " 120 ", 3, 120, false},
		{"fraction truncated", FieldChol, 233.9, 4, 233, false},
		{"negative fraction truncated", FieldMaxHR, -1.5, 7, -1, false},
		{"json number", FieldMaxHR, json.Number("150"), 7, 150, false},
		{"fractional json number", FieldAge, json.Number("63.7"), 0, 63, false},
		{"decimal string", FieldOldpeak, "1.25", 9, 1.25, false},
		{"int oldpeak", FieldOldpeak, 2, 9, 2, false},
		{"decimal string for int", FieldAge, "63.5", 0, 0, true},
		{"word", FieldChol, "high", 0, 0, true},
		{"empty string", FieldRBP, "", 0, 0, true},
		{"bool", FieldAge, true, 0, 0, true},
		{"null", FieldOldpeak, nil, 0, 0, true},
		{"list", FieldMaxHR, []any{150}, 0, 0, true},
		{"nan string", FieldOldpeak, "nan", 0, 0, true},
		{"NaN string", FieldOldpeak, "NaN", 0, 0, true},
		{"inf string", FieldOldpeak, "inf", 0, 0, true},
		{"negative infinity string", FieldOldpeak, "-Infinity", 0, 0, true},
		{"overflowing string", FieldOldpeak, "1e999", 0, 0, true},
		{"overflowing json number", FieldOldpeak, json.Number("1e999"), 0, 0, true},
		{"nan float", FieldOldpeak, math.NaN(), 0, 0, true},
		{"infinite float", FieldOldpeak, math.Inf(1), 0, 0, true},
		{"nan for int", FieldAge, "nan", 0, 0, true},
		{"overflowing json number for int", FieldChol, json.Number("1e999"), 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := samplePayload()
			payload[tt.field] = tt.value

			v, err := Build(payload)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidValue)
				assert.Contains(t, err.Error(), tt.field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v[tt.index])
		})
	}
}

func TestEncodeReportsFirstUnknownCategory(t *testing.T) {
	p := Patient{Sex: "M", ChestPain: "??", FastingBS: "Normal", RestingECG: "??", ExerciseAngina: "N", STSlope: "Up"}

	_, err := p.Encode()
	var ee *EncodingError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, FieldChestPain, ee.Field)
}

func TestTableValuesOrderedByCode(t *testing.T) {
	assert.Equal(t, []string{"ASY", "ATA", "NAP", "TA"}, ChestPainTable.Values())
	assert.Equal(t, []string{"LVH", "Normal", "ST"}, RestingECGTable.Values())
	assert.Equal(t, []string{"Normal", "High"}, FastingBSTable.Values())
}

func TestCategories(t *testing.T) {
	cats := Categories()
	assert.Len(t, cats, 6)
	assert.Equal(t, []string{"F", "M"}, cats[FieldSex])
	assert.Equal(t, []string{"Down", "Flat", "Up"}, cats[FieldSTSlope])
}

func TestVectorSliceIsCopy(t *testing.T) {
	v := Vector{1, 2, 3}
	s := v.Slice()
	s[0] = 42
	assert.Equal(t, float64(1), v[0])
	assert.Len(t, s, NumFeatures)
}
