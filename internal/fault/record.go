package fault

// RecordColumns is the output column order of a Record. The first thirteen
// columns are the canonical fault attributes; dev and std follow them.
var RecordColumns = []string{
	"strike",
	"dip",
	"depth_min",
	"depth_max",
	"height",
	"length",
	"area",
	"curv",
	"curv_mean",
	"curv_min",
	"curv_max",
	"curv_x",
	"curv_y",
	"dev",
	"std",
}

// Record is one row of the fault table. Angles are in radians.
type Record struct {
	Strike    float64 `json:"strike"`
	Dip       float64 `json:"dip"`
	DepthMin  float64 `json:"depth_min"`
	DepthMax  float64 `json:"depth_max"`
	Height    float64 `json:"height"`
	Length    float64 `json:"length"`
	Area      float64 `json:"area"`
	Curv      float64 `json:"curv"`
	CurvMean  float64 `json:"curv_mean"`
	CurvMin   float64 `json:"curv_min"`
	CurvMax   float64 `json:"curv_max"`
	CurvX     float64 `json:"curv_x"`
	CurvY     float64 `json:"curv_y"`
	Deviation float64 `json:"dev"`
	StdDev    float64 `json:"std"`
}

// Values returns the record's values in RecordColumns order.
func (r Record) Values() []float64 {
	return []float64{
		r.Strike,
		r.Dip,
		r.DepthMin,
		r.DepthMax,
		r.Height,
		r.Length,
		r.Area,
		r.Curv,
		r.CurvMean,
		r.CurvMin,
		r.CurvMax,
		r.CurvX,
		r.CurvY,
		r.Deviation,
		r.StdDev,
	}
}

// Map returns the record keyed by column name.
func (r Record) Map() map[string]float64 {
	vals := r.Values()
	m := make(map[string]float64, len(vals))
	for i, name := range RecordColumns {
		m[name] = vals[i]
	}
	return m
}
