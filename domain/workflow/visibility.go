package workflow

import (
	"opexhub/domain"
)

// VisibleTransactions filters an ordered ledger down to what read views
// expose: stage 1 always, any stage whose predecessor is approved, and any
// stage already pending or approved itself. Far-future not_started
// placeholders stay hidden until their predecessor clears.
func VisibleTransactions(ordered []domain.WorkflowTransaction) []domain.WorkflowTransaction {
	byStage := map[int]*domain.WorkflowTransaction{}
	for i := range ordered {
		byStage[ordered[i].StageNumber] = &ordered[i]
	}

	visible := []domain.WorkflowTransaction{}
	for _, t := range ordered {
		if t.StageNumber == 1 {
			visible = append(visible, t)
			continue
		}
		if prev := byStage[t.StageNumber-1]; prev != nil && prev.ApproveStatus == domain.ApproveStatusApproved {
			visible = append(visible, t)
			continue
		}
		if t.ApproveStatus == domain.ApproveStatusPending || t.ApproveStatus == domain.ApproveStatusApproved {
			visible = append(visible, t)
		}
	}
	return visible
}
