package workflow_test

import (
	"testing"

	"opexhub/domain"
	"opexhub/domain/workflow"

	. "github.com/onsi/gomega"
)

func TestVisibleTransactions(t *testing.T) {
	RegisterTestingT(t)

	t.Run("stage one is always visible", func(t *testing.T) {
		ledger := []domain.WorkflowTransaction{
			{StageNumber: 1, ApproveStatus: domain.ApproveStatusApproved},
		}
		visible := workflow.VisibleTransactions(ledger)
		Expect(visible).To(HaveLen(1))
		Expect(visible[0].StageNumber).To(Equal(1))
	})

	t.Run("should expose successor of an approved stage and hide far future placeholders", func(t *testing.T) {
		ledger := []domain.WorkflowTransaction{
			{StageNumber: 1, ApproveStatus: domain.ApproveStatusApproved},
			{StageNumber: 2, ApproveStatus: domain.ApproveStatusApproved},
			{StageNumber: 3, ApproveStatus: domain.ApproveStatusPending},
			{StageNumber: 4, ApproveStatus: domain.ApproveStatusNotStarted},
			{StageNumber: 5, ApproveStatus: domain.ApproveStatusNotStarted},
		}
		visible := workflow.VisibleTransactions(ledger)
		Expect(visible).To(HaveLen(3))
		Expect(visible[0].StageNumber).To(Equal(1))
		Expect(visible[1].StageNumber).To(Equal(2))
		Expect(visible[2].StageNumber).To(Equal(3))
	})

	t.Run("should expose a pending or approved stage even when its predecessor record is absent", func(t *testing.T) {
		ledger := []domain.WorkflowTransaction{
			{StageNumber: 1, ApproveStatus: domain.ApproveStatusApproved},
			{StageNumber: 4, ApproveStatus: domain.ApproveStatusPending},
			{StageNumber: 6, ApproveStatus: domain.ApproveStatusNotStarted},
		}
		visible := workflow.VisibleTransactions(ledger)
		Expect(visible).To(HaveLen(2))
		Expect(visible[0].StageNumber).To(Equal(1))
		Expect(visible[1].StageNumber).To(Equal(4))
	})

	t.Run("rejected stage stays visible when its predecessor is approved", func(t *testing.T) {
		ledger := []domain.WorkflowTransaction{
			{StageNumber: 1, ApproveStatus: domain.ApproveStatusApproved},
			{StageNumber: 2, ApproveStatus: domain.ApproveStatusRejected},
		}
		visible := workflow.VisibleTransactions(ledger)
		Expect(visible).To(HaveLen(2))
	})

	t.Run("empty ledger yields empty result", func(t *testing.T) {
		Expect(workflow.VisibleTransactions(nil)).To(BeEmpty())
	})
}
