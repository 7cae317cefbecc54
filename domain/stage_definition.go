package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

// Conditional skip edges: a stage carrying a SkipUnless flag is only executed
// when the matching requirement is set on the initiative.
const (
	SkipUnlessMoc   = "moc"
	SkipUnlessCapex = "capex"
)

// StageDefinition is one row of the per-site, ordered stage catalog.
// The catalog is external configuration: workflow logic never hardcodes
// stage numbers, names or roles.
type StageDefinition struct {
	ID types.ID `json:"id"`

	Site        string `json:"site"`
	StageNumber int    `json:"stageNumber"`
	StageName   string `json:"stageName"`

	RequiredRole    string `json:"requiredRole"`
	DefaultAssignee string `json:"defaultAssignee"`

	// DecisionStage marks a stage whose approval assigns a lead for the
	// stages listed in CoAssignedStages.
	DecisionStage    bool             `json:"decisionStage"`
	CoAssignedStages CoAssignedStages `json:"coAssignedStages" sql:"type:TEXT"`

	SkipUnless string `json:"skipUnless"`
	Active     bool   `json:"active"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (r *StageDefinition) TableName() string {
	return "stage_definitions"
}

type CoAssignedStages []int

func (t CoAssignedStages) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *CoAssignedStages) Scan(v interface{}) error {
	switch value := v.(type) {
	case string:
		return json.Unmarshal([]byte(value), t)
	case []byte:
		return json.Unmarshal(value, t)
	default:
		return fmt.Errorf("unsupported type of %v", v)
	}
}

func (t CoAssignedStages) Contains(stageNumber int) bool {
	for _, n := range t {
		if n == stageNumber {
			return true
		}
	}
	return false
}

type StageDefinitionCreation struct {
	Site        string `json:"site" binding:"required,lte=10"`
	StageNumber int    `json:"stageNumber" binding:"required,min=1"`
	StageName   string `json:"stageName" binding:"required,lte=100"`

	RequiredRole    string `json:"requiredRole" binding:"required,lte=20"`
	DefaultAssignee string `json:"defaultAssignee" binding:"omitempty,email"`

	DecisionStage    bool             `json:"decisionStage"`
	CoAssignedStages CoAssignedStages `json:"coAssignedStages"`

	SkipUnless string `json:"skipUnless" binding:"omitempty,oneof=moc capex"`
}

type StageDefinitionQuery struct {
	Site string `json:"site" form:"site" binding:"required"`
}
