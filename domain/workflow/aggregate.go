package workflow

import (
	"opexhub/domain"
)

// ReplayAggregate recomputes the initiative aggregate as a pure fold over the
// ledger. The stored status/currentStage must always equal the replayed
// values; comparing them detects drift after crashes or manual edits.
func ReplayAggregate(transactions []domain.WorkflowTransaction, totalStages int) (string, int) {
	highestApproved := 0
	for _, t := range transactions {
		if t.ApproveStatus == domain.ApproveStatusRejected {
			return domain.StatusRejected, t.StageNumber
		}
		if t.ApproveStatus == domain.ApproveStatusApproved && t.StageNumber > highestApproved {
			highestApproved = t.StageNumber
		}
	}

	if highestApproved == 0 {
		return domain.StatusDraft, 1
	}
	if totalStages > 0 && highestApproved >= totalStages {
		return domain.StatusCompleted, highestApproved + 1
	}
	return domain.StatusInProgress, highestApproved + 1
}
