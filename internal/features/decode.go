package features

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validate checks that every required field is present in payload.
// Values are not inspected and unknown extra keys are ignored.
func Validate(payload map[string]any) error {
	var missing []string
	for _, f := range RequiredFields {
		if _, ok := payload[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// Decode validates payload and coerces its values into a Patient.
// Categorical values are type checked here but looked up in Encode.
func Decode(payload map[string]any) (Patient, error) {
	var p Patient
	if err := Validate(payload); err != nil {
		return p, err
	}

	var err error
	if p.Age, err = toInt(FieldAge, payload[FieldAge]); err != nil {
		return p, err
	}
	if p.Sex, err = toCategory(FieldSex, payload[FieldSex]); err != nil {
		return p, err
	}
	if p.ChestPain, err = toCategory(FieldChestPain, payload[FieldChestPain]); err != nil {
		return p, err
	}
	if p.RestingBP, err = toInt(FieldRBP, payload[FieldRBP]); err != nil {
		return p, err
	}
	if p.Cholesterol, err = toInt(FieldChol, payload[FieldChol]); err != nil {
		return p, err
	}
	if p.FastingBS, err = toCategory(FieldFBS, payload[FieldFBS]); err != nil {
		return p, err
	}
	if p.RestingECG, err = toCategory(FieldECG, payload[FieldECG]); err != nil {
		return p, err
	}
	if p.MaxHR, err = toInt(FieldMaxHR, payload[FieldMaxHR]); err != nil {
		return p, err
	}
	if p.ExerciseAngina, err = toCategory(FieldAngina, payload[FieldAngina]); err != nil {
		return p, err
	}
	if p.Oldpeak, err = toFloat(FieldOldpeak, payload[FieldOldpeak]); err != nil {
		return p, err
	}
	if p.STSlope, err = toCategory(FieldSTSlope, payload[FieldSTSlope]); err != nil {
		return p, err
	}
	return p, nil
}

// toInt accepts integral and fractional numbers (truncated toward zero)
// and base-10 integer strings surrounded by optional whitespace.
func toInt(field string, v any) (int, error) {
	bad := &CoercionError{Field: field, Want: "integer", Value: v}

	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, bad
		}
		return int(x), nil
	case float64:
		return truncate(x, bad)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, bad
		}
		return truncate(f, bad)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, bad
		}
		return i, nil
	default:
		return 0, bad
	}
}

func truncate(f float64, bad error) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, bad
	}
	return int(f), nil
}

// toFloat accepts any finite number and decimal strings surrounded by
// optional whitespace. NaN and infinities are rejected.
func toFloat(field string, v any) (float64, error) {
	bad := &CoercionError{Field: field, Want: "decimal", Value: v}

	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, bad
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, bad
		}
		f = n
	default:
		return 0, bad
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, bad
	}
	return f, nil
}

// toCategory requires a string. Anything else can never match a table
// key and is reported as an unknown category.
func toCategory(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &EncodingError{Field: field, Value: fmt.Sprint(v)}
	}
	return s, nil
}
