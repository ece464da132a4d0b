package model

// Grade is the proximity class of an actual value against a target.
type Grade string

const (
	GradeNeutral Grade = ""
	GradeHit     Grade = "hit"
	GradeClose   Grade = "close"
	GradeOff     Grade = "off"
)

// Grades holds one grade per macro dimension.
type Grades struct {
	Calories Grade `json:"calories"`
	Protein  Grade `json:"protein"`
	Carbs    Grade `json:"carbs"`
	Fat      Grade `json:"fat"`
}

// Backup is the combined export document of products and planner state.
type Backup struct {
	Products     []Product    `json:"products"`
	PlannerState PlannerState `json:"plannerState"`
}
