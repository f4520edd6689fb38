package features

import "sort"

// Table is a fixed lookup from a categorical field's string value to the
// integer code the model was trained with. Keys match exactly: no case
// folding, no trimming.
type Table struct {
	field string
	codes map[string]int
}

// Encoding tables, one per categorical field
var (
	SexTable = Table{
		field: FieldSex,
		codes: map[string]int{"F": 0, "M": 1},
	}
	ChestPainTable = Table{
		field: FieldChestPain,
		codes: map[string]int{"ASY": 0, "ATA": 1, "NAP": 2, "TA": 3},
	}
	FastingBSTable = Table{
		field: FieldFBS,
		codes: map[string]int{"Normal": 0, "High": 1},
	}
	RestingECGTable = Table{
		field: FieldECG,
		codes: map[string]int{"LVH": 0, "Normal": 1, "ST": 2},
	}
	AnginaTable = Table{
		field: FieldAngina,
		codes: map[string]int{"N": 0, "Y": 1},
	}
	STSlopeTable = Table{
		field: FieldSTSlope,
		codes: map[string]int{"Down": 0, "Flat": 1, "Up": 2},
	}
)

var tables = []Table{
	SexTable,
	ChestPainTable,
	FastingBSTable,
	RestingECGTable,
	AnginaTable,
	STSlopeTable,
}

// Field returns the request field the table encodes
func (t Table) Field() string {
	return t.field
}

// Code returns the trained code for value
func (t Table) Code(value string) (int, error) {
	code, ok := t.codes[value]
	if !ok {
		return 0, &EncodingError{Field: t.field, Value: value}
	}
	return code, nil
}

// Values returns the accepted values ordered by code
func (t Table) Values() []string {
	values := make([]string, 0, len(t.codes))
	for v := range t.codes {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		return t.codes[values[i]] < t.codes[values[j]]
	})
	return values
}

// Categories returns the accepted values of every categorical field
func Categories() map[string][]string {
	out := make(map[string][]string, len(tables))
	for _, t := range tables {
		out[t.field] = t.Values()
	}
	return out
}
