package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	StatusDraft      = "Draft"
	StatusInProgress = "InProgress"
	StatusCompleted  = "Completed"
	StatusRejected   = "Rejected"
)

type Initiative struct {
	ID          types.ID `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description" sql:"type:TEXT"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`

	ExpectedSavings float64 `json:"expectedSavings"`
	ActualSavings   float64 `json:"actualSavings"`

	Site       string `json:"site"`
	Discipline string `json:"discipline"`

	StartDate types.Timestamp `json:"startDate" sql:"type:DATETIME(6)"`
	EndDate   types.Timestamp `json:"endDate" sql:"type:DATETIME(6)"`

	// CurrentStage and Status are moved only by workflow decisions,
	// never written directly by callers.
	CurrentStage int `json:"currentStage"`

	RequiresMoc   bool `json:"requiresMoc"`
	RequiresCapex bool `json:"requiresCapex"`

	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
	CreatorID   types.ID        `json:"creatorId"`
	CreatorName string          `json:"creatorName"`
}

func (r *Initiative) TableName() string {
	return "initiatives"
}

type InitiativeCreation struct {
	Title       string `json:"title" binding:"required,lte=200"`
	Description string `json:"description"`
	Priority    string `json:"priority" binding:"required,lte=20"`

	ExpectedSavings float64 `json:"expectedSavings"`

	Site       string `json:"site" binding:"required,lte=10"`
	Discipline string `json:"discipline" binding:"required,lte=10"`

	StartDate types.Timestamp `json:"startDate"`
	EndDate   types.Timestamp `json:"endDate"`

	RequiresMoc   bool `json:"requiresMoc"`
	RequiresCapex bool `json:"requiresCapex"`
}

type InitiativeUpdating struct {
	Title       string `json:"title" binding:"required,lte=200"`
	Description string `json:"description"`
	Priority    string `json:"priority" binding:"required,lte=20"`

	ExpectedSavings float64 `json:"expectedSavings"`

	StartDate types.Timestamp `json:"startDate"`
	EndDate   types.Timestamp `json:"endDate"`

	RequiresMoc   bool `json:"requiresMoc"`
	RequiresCapex bool `json:"requiresCapex"`
}

type InitiativeQuery struct {
	Status string `json:"status" form:"status"`
	Site   string `json:"site" form:"site"`
	Title  string `json:"title" form:"title"`

	Page     int `json:"page" form:"page"`
	PageSize int `json:"pageSize" form:"pageSize"`
}
