package features

// Request field names as they appear in the JSON payload
const (
	FieldAge       = "age"
	FieldSex       = "sex"
	FieldChestPain = "chest_pain"
	FieldRBP       = "rbp"
	FieldChol      = "chol"
	FieldFBS       = "fbs"
	FieldECG       = "ecg"
	FieldMaxHR     = "max_hr"
	FieldAngina    = "angina"
	FieldOldpeak   = "oldpeak"
	FieldSTSlope   = "st_slope"
)

// NumFeatures is the length of the feature vector the model was trained on
const NumFeatures = 11

// RequiredFields lists every field a prediction request must carry,
// in feature vector order
var RequiredFields = []string{
	FieldAge,
	FieldSex,
	FieldChestPain,
	FieldRBP,
	FieldChol,
	FieldFBS,
	FieldECG,
	FieldMaxHR,
	FieldAngina,
	FieldOldpeak,
	FieldSTSlope,
}

// Columns holds the training column names. Position i of a Vector
// is the value of Columns[i].
var Columns = [NumFeatures]string{
	"Age",
	"Sex",
	"ChestPainType",
	"RestingBP",
	"Cholesterol",
	"FastingBS",
	"RestingECG",
	"MaxHR",
	"ExerciseAngina",
	"Oldpeak",
	"ST_Slope",
}

// Vector is an encoded, ordered feature vector. It is comparable and
// can be used as a map or cache key.
type Vector [NumFeatures]float64

// Slice returns a copy of the vector as a slice
func (v Vector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, v[:])
	return out
}

// Patient is a validated, typed prediction request. Categorical fields
// still hold their raw string values until Encode is called.
type Patient struct {
	Age            int     `json:"age" yaml:"age"`
	Sex            string  `json:"sex" yaml:"sex"`
	ChestPain      string  `json:"chest_pain" yaml:"chest_pain"`
	RestingBP      int     `json:"rbp" yaml:"rbp"`
	Cholesterol    int     `json:"chol" yaml:"chol"`
	FastingBS      string  `json:"fbs" yaml:"fbs"`
	RestingECG     string  `json:"ecg" yaml:"ecg"`
	MaxHR          int     `json:"max_hr" yaml:"max_hr"`
	ExerciseAngina string  `json:"angina" yaml:"angina"`
	Oldpeak        float64 `json:"oldpeak" yaml:"oldpeak"`
	STSlope        string  `json:"st_slope" yaml:"st_slope"`
}

// Encode maps the patient's categorical values to their trained codes
// and assembles the feature vector in column order. The first unknown
// category, in column order, is reported.
func (p Patient) Encode() (Vector, error) {
	var err error
	code := func(t Table, value string) float64 {
		if err != nil {
			return 0
		}
		var c int
		c, err = t.Code(value)
		return float64(c)
	}

	v := Vector{
		float64(p.Age),
		code(SexTable, p.Sex),
		code(ChestPainTable, p.ChestPain),
		float64(p.RestingBP),
		float64(p.Cholesterol),
		code(FastingBSTable, p.FastingBS),
		code(RestingECGTable, p.RestingECG),
		float64(p.MaxHR),
		code(AnginaTable, p.ExerciseAngina),
		p.Oldpeak,
		code(STSlopeTable, p.STSlope),
	}
	if err != nil {
		return Vector{}, err
	}
	return v, nil
}

// Build runs the whole boundary pipeline on a loosely typed payload:
// presence check, type coercion and categorical encoding.
func Build(payload map[string]any) (Vector, error) {
	p, err := Decode(payload)
	if err != nil {
		return Vector{}, err
	}
	return p.Encode()
}
