package workflow

import (
	"opexhub/account"
	"opexhub/bizerror"
	"opexhub/domain"
	"opexhub/domain/catalog"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// resolveAssignee computes the routee of a stage about to become pending.
// Resolution order: an assignee already recorded on the transaction (set by a
// decision stage's fan-out) beats one inherited from the covering decision
// stage, which beats the catalog default. A stage must never be left pending
// without a routee.
func resolveAssignee(tx *gorm.DB, cat catalog.Catalog, initiative *domain.Initiative,
	def *domain.StageDefinition, existing *domain.WorkflowTransaction) (string, types.ID, error) {

	if existing != nil && existing.AssignedUserID != 0 {
		user, err := account.FindUserByID(existing.AssignedUserID, tx)
		if err != nil {
			return "", 0, err
		}
		return user.Email, user.ID, nil
	}

	if decision, found := cat.DecisionStageCovering(def.StageNumber); found {
		decisionTxn := domain.WorkflowTransaction{}
		err := tx.Where(&domain.WorkflowTransaction{InitiativeID: initiative.ID, StageNumber: decision.StageNumber}).
			First(&decisionTxn).Error
		if err != nil && !gorm.IsRecordNotFoundError(err) {
			return "", 0, err
		}
		if err == nil && decisionTxn.ApproveStatus == domain.ApproveStatusApproved && decisionTxn.AssignedUserID != 0 {
			user, uerr := account.FindUserByID(decisionTxn.AssignedUserID, tx)
			if uerr != nil {
				return "", 0, uerr
			}
			return user.Email, user.ID, nil
		}
	}

	if def.DefaultAssignee != "" {
		return def.DefaultAssignee, 0, nil
	}
	return "", 0, bizerror.ErrStageCatalogMissing
}
