package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	ApproveStatusNotStarted = "not_started"
	ApproveStatusPending    = "pending"
	ApproveStatusApproved   = "approved"
	ApproveStatusRejected   = "rejected"
)

const (
	// CommentInitiativeRegistered stamps the auto-approved stage 1 record.
	CommentInitiativeRegistered = "Initiative created and registered"
	// CommentStageNotRequired stamps a stage skipped by a conditional edge.
	CommentStageNotRequired = "Stage not required for this initiative"

	SystemActorName = "system"
)

// WorkflowTransaction is the per-(initiative, stage) ledger record.
// Exactly one record exists per stage of an initiative; records are never
// deleted and, once approved or rejected, never reopened.
type WorkflowTransaction struct {
	ID           types.ID `json:"id"`
	InitiativeID types.ID `json:"initiativeId"`

	StageNumber int    `json:"stageNumber"`
	StageName   string `json:"stageName"`
	Site        string `json:"site"`

	RequiredRole  string `json:"requiredRole"`
	ApproveStatus string `json:"approveStatus"`
	PendingWith   string `json:"pendingWith"`

	ActionBy string          `json:"actionBy"`
	ActionAt types.Timestamp `json:"actionAt" sql:"type:DATETIME(6)"`
	Comment  string          `json:"comment" sql:"type:TEXT"`

	// AssignedUserID carries the lead chosen by a decision stage, recorded
	// on every co-assigned transaction for audit.
	AssignedUserID types.ID `json:"assignedUserId"`

	// ChangeReference is a free-form domain annotation (MOC/CAPEX numbers)
	// carried forward for audit.
	ChangeReference string `json:"changeReference"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (r *WorkflowTransaction) TableName() string {
	return "workflow_transactions"
}

type DecisionSubmission struct {
	Action  string `json:"action" binding:"required,oneof=approved rejected"`
	Comment string `json:"comment" binding:"required"`

	AssignedUserID  types.ID `json:"assignedUserId"`
	ChangeReference string   `json:"changeReference" binding:"omitempty,lte=100"`
}

type PendingTransactionQuery struct {
	Role string `json:"role" form:"role" binding:"required"`
	Site string `json:"site" form:"site"`
}
