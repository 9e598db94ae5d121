package data

// FeatureVector holds the thirteen clinical measurements in the order the
// classifier consumes them.
type FeatureVector struct {
	Age      float64 `json:"age"`      // years
	Sex      float64 `json:"sex"`      // 0 female, 1 male
	CP       float64 `json:"cp"`       // chest pain type 0-3
	Trestbps float64 `json:"trestbps"` // resting blood pressure
	Chol     float64 `json:"chol"`     // serum cholesterol
	Fbs      float64 `json:"fbs"`      // fasting blood sugar > 120 mg/dl
	Restecg  float64 `json:"restecg"`  // resting ECG 0-2
	Thalach  float64 `json:"thalach"`  // max heart rate achieved
	Exang    float64 `json:"exang"`    // exercise induced angina
	Oldpeak  float64 `json:"oldpeak"`  // ST depression
	Slope    float64 `json:"slope"`    // slope of peak exercise ST segment 0-2
	CA       float64 `json:"ca"`       // major vessels 0-3
	Thal     float64 `json:"thal"`     // thalassemia 0-3
}

type LabeledSample struct {
	Features FeatureVector `json:"features"`
	Label    int           `json:"label"`
}

// NumFeatures is the fixed width of a FeatureVector.
const NumFeatures = 13

// Columns lists the feature names in vector order.
var Columns = [NumFeatures]string{
	"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
	"thalach", "exang", "oldpeak", "slope", "ca", "thal",
}

func (fv FeatureVector) Values() [NumFeatures]float64 {
	return [NumFeatures]float64{
		fv.Age, fv.Sex, fv.CP, fv.Trestbps, fv.Chol, fv.Fbs, fv.Restecg,
		fv.Thalach, fv.Exang, fv.Oldpeak, fv.Slope, fv.CA, fv.Thal,
	}
}

func FromValues(v [NumFeatures]float64) FeatureVector {
	return FeatureVector{
		Age: v[0], Sex: v[1], CP: v[2], Trestbps: v[3], Chol: v[4], Fbs: v[5], Restecg: v[6],
		Thalach: v[7], Exang: v[8], Oldpeak: v[9], Slope: v[10], CA: v[11], Thal: v[12],
	}
}
