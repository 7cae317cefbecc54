package workflow

import (
	"opexhub/account"
	"opexhub/bizerror"
	"opexhub/domain"
	"opexhub/domain/catalog"
	"opexhub/idgen"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// activateAfter materializes the stage that becomes actionable once the given
// stage is approved. Conditional stages that do not apply to the initiative
// are recorded as approved by the system and walked over. Returns the stage
// number that became pending, or 0 when no later stage exists.
func activateAfter(tx *gorm.DB, cat catalog.Catalog, initiative *domain.Initiative, approvedStage int) (int, error) {
	n := approvedStage + 1
	for {
		def, found := cat.Find(n)
		if !found {
			return 0, nil
		}
		if stageSkipped(def, initiative) {
			if err := materializeSkipped(tx, initiative, def); err != nil {
				return 0, err
			}
			n++
			continue
		}
		if err := materializePending(tx, cat, initiative, def); err != nil {
			return 0, err
		}
		return n, nil
	}
}

// fanOutCoAssigned handles the approval of a decision stage: every stage of
// its co-assigned set is materialized with the chosen lead recorded, the
// first applicable one as pending, the rest as not_started until their turn.
func fanOutCoAssigned(tx *gorm.DB, cat catalog.Catalog, initiative *domain.Initiative,
	decision *domain.StageDefinition, assignee *account.User) (int, error) {

	activated := 0
	lastCoAssigned := decision.StageNumber
	for _, n := range decision.CoAssignedStages {
		def, found := cat.Find(n)
		if !found {
			return 0, bizerror.ErrStageCatalogMissing
		}
		if n > lastCoAssigned {
			lastCoAssigned = n
		}
		if stageSkipped(def, initiative) {
			if err := materializeSkipped(tx, initiative, def); err != nil {
				return 0, err
			}
			continue
		}

		status := domain.ApproveStatusNotStarted
		pendingWith := ""
		if activated == 0 {
			status = domain.ApproveStatusPending
			pendingWith = assignee.Email
			activated = n
		}
		if err := materializeAssigned(tx, initiative, def, status, pendingWith, assignee.ID); err != nil {
			return 0, err
		}
	}

	if activated == 0 {
		// whole set skipped, continue past it
		return activateAfter(tx, cat, initiative, lastCoAssigned)
	}
	return activated, nil
}

func stageSkipped(def *domain.StageDefinition, initiative *domain.Initiative) bool {
	switch def.SkipUnless {
	case domain.SkipUnlessMoc:
		return !initiative.RequiresMoc
	case domain.SkipUnlessCapex:
		return !initiative.RequiresCapex
	}
	return false
}

// materializePending creates (or promotes) the transaction of a stage as
// pending. Creation is idempotent: a record already past not_started is left
// untouched.
func materializePending(tx *gorm.DB, cat catalog.Catalog, initiative *domain.Initiative, def *domain.StageDefinition) error {
	existing := domain.WorkflowTransaction{}
	err := tx.Where(&domain.WorkflowTransaction{InitiativeID: initiative.ID, StageNumber: def.StageNumber}).
		First(&existing).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return err
	}

	if gorm.IsRecordNotFoundError(err) {
		pendingWith, assignedUserId, rerr := resolveAssignee(tx, cat, initiative, def, nil)
		if rerr != nil {
			return rerr
		}
		now := types.CurrentTimestamp()
		record := domain.WorkflowTransaction{
			ID:           idgen.NextID(txnIdWorker),
			InitiativeID: initiative.ID,
			StageNumber:  def.StageNumber,
			StageName:    def.StageName,
			Site:         initiative.Site,
			RequiredRole: def.RequiredRole,

			ApproveStatus:  domain.ApproveStatusPending,
			PendingWith:    pendingWith,
			AssignedUserID: assignedUserId,

			CreateTime: now,
		}
		return tx.Create(&record).Error
	}

	if existing.ApproveStatus != domain.ApproveStatusNotStarted {
		return nil
	}
	pendingWith, assignedUserId, rerr := resolveAssignee(tx, cat, initiative, def, &existing)
	if rerr != nil {
		return rerr
	}
	return tx.Model(&domain.WorkflowTransaction{}).
		Where("id = ? AND approve_status = ?", existing.ID, domain.ApproveStatusNotStarted).
		Update(map[string]interface{}{
			"approve_status":   domain.ApproveStatusPending,
			"pending_with":     pendingWith,
			"assigned_user_id": assignedUserId,
		}).Error
}

// materializeSkipped records a stage skipped by a conditional edge as
// approved by the system, keeping the ledger contiguous. Idempotent.
func materializeSkipped(tx *gorm.DB, initiative *domain.Initiative, def *domain.StageDefinition) error {
	existing := domain.WorkflowTransaction{}
	err := tx.Where(&domain.WorkflowTransaction{InitiativeID: initiative.ID, StageNumber: def.StageNumber}).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return err
	}

	now := types.CurrentTimestamp()
	record := domain.WorkflowTransaction{
		ID:           idgen.NextID(txnIdWorker),
		InitiativeID: initiative.ID,
		StageNumber:  def.StageNumber,
		StageName:    def.StageName,
		Site:         initiative.Site,
		RequiredRole: def.RequiredRole,

		ApproveStatus: domain.ApproveStatusApproved,
		ActionBy:      domain.SystemActorName,
		ActionAt:      now,
		Comment:       domain.CommentStageNotRequired,

		CreateTime: now,
	}
	return tx.Create(&record).Error
}

// materializeAssigned creates (or refreshes) a co-assigned stage record with
// the decision stage's lead recorded for audit. Idempotent.
func materializeAssigned(tx *gorm.DB, initiative *domain.Initiative, def *domain.StageDefinition,
	status, pendingWith string, assignedUserId types.ID) error {

	existing := domain.WorkflowTransaction{}
	err := tx.Where(&domain.WorkflowTransaction{InitiativeID: initiative.ID, StageNumber: def.StageNumber}).
		First(&existing).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return err
	}

	if gorm.IsRecordNotFoundError(err) {
		record := domain.WorkflowTransaction{
			ID:           idgen.NextID(txnIdWorker),
			InitiativeID: initiative.ID,
			StageNumber:  def.StageNumber,
			StageName:    def.StageName,
			Site:         initiative.Site,
			RequiredRole: def.RequiredRole,

			ApproveStatus:  status,
			PendingWith:    pendingWith,
			AssignedUserID: assignedUserId,

			CreateTime: types.CurrentTimestamp(),
		}
		return tx.Create(&record).Error
	}

	if existing.ApproveStatus != domain.ApproveStatusNotStarted {
		return nil
	}
	return tx.Model(&domain.WorkflowTransaction{}).
		Where("id = ? AND approve_status = ?", existing.ID, domain.ApproveStatusNotStarted).
		Update(map[string]interface{}{
			"approve_status":   status,
			"pending_with":     pendingWith,
			"assigned_user_id": assignedUserId,
		}).Error
}
