package workflow

import (
	"strings"

	"opexhub/account"
	"opexhub/bizerror"
	"opexhub/domain"
	"opexhub/domain/catalog"
	"opexhub/event"
	"opexhub/persistence"
	"opexhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ApplyDecisionFunc = ApplyDecision
)

// ApplyDecision is the single write path of the workflow: it lands an approve
// or reject on a pending transaction and derives every initiative-state
// change from it. The status check and mutation are one conditional update so
// concurrent submissions against the same transaction cannot both win; the
// loser observes the not-pending error. Ledger record, initiative aggregate
// and audit event commit as one unit.
func ApplyDecision(transactionId types.ID, d *domain.DecisionSubmission, s *session.Session) (*domain.WorkflowTransaction, error) {
	if d.Action != domain.ApproveStatusApproved && d.Action != domain.ApproveStatusRejected {
		return nil, bizerror.ErrInvalidAction
	}
	if strings.TrimSpace(d.Comment) == "" {
		return nil, bizerror.ErrEmptyComment
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var updated domain.WorkflowTransaction
	var ev *event.EventRecord

	err := db.Transaction(func(tx *gorm.DB) error {
		txn := domain.WorkflowTransaction{}
		if err := tx.Where(&domain.WorkflowTransaction{ID: transactionId}).First(&txn).Error; err != nil {
			return err
		}
		if !s.Perms.HasRole(account.SystemAdminPermission.ID) &&
			!s.Perms.HasRole(txn.RequiredRole) && !s.Perms.HasSiteRole(txn.RequiredRole, txn.Site) {
			return bizerror.ErrForbidden
		}

		now := types.CurrentTimestamp()
		updates := map[string]interface{}{
			"approve_status": d.Action,
			"action_by":      s.Identity.DisplayName(),
			"action_at":      now,
			"comment":        d.Comment,
			"pending_with":   "",
		}
		if d.AssignedUserID != 0 {
			updates["assigned_user_id"] = d.AssignedUserID
		}
		if d.ChangeReference != "" {
			updates["change_reference"] = d.ChangeReference
		}

		// only a pending record may take a decision; losing racers see
		// zero affected rows here
		query := tx.Model(&domain.WorkflowTransaction{}).
			Where("id = ? AND approve_status = ?", transactionId, domain.ApproveStatusPending).
			Update(updates)
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrTransactionNotPending
		}

		initiative := domain.Initiative{}
		if err := tx.Where(&domain.Initiative{ID: txn.InitiativeID}).First(&initiative).Error; err != nil {
			return err
		}
		cat, err := catalog.LoadStageCatalogFunc(initiative.Site, tx)
		if err != nil {
			return err
		}
		if len(cat) == 0 {
			return bizerror.ErrStageCatalogMissing
		}

		if d.Action == domain.ApproveStatusApproved {
			activated := 0
			def, found := cat.Find(txn.StageNumber)
			if found && def.DecisionStage && d.AssignedUserID != 0 {
				assignee, aerr := account.FindUserByID(d.AssignedUserID, tx)
				if aerr != nil {
					return aerr
				}
				activated, err = fanOutCoAssigned(tx, cat, &initiative, def, assignee)
			} else {
				activated, err = activateAfter(tx, cat, &initiative, txn.StageNumber)
			}
			if err != nil {
				return err
			}

			aggregate := map[string]interface{}{"status": domain.StatusInProgress, "current_stage": activated}
			if activated == 0 {
				// completion may be reached through trailing skipped stages,
				// so the approved stage number alone is not the frontier
				highest, herr := HighestLedgerStage(tx, initiative.ID)
				if herr != nil {
					return herr
				}
				aggregate["status"] = domain.StatusCompleted
				aggregate["current_stage"] = highest + 1
			}
			if err := tx.Model(&domain.Initiative{}).Where("id = ?", initiative.ID).Update(aggregate).Error; err != nil {
				return err
			}
		} else {
			// rejection halts the initiative; later stages stay not_started
			if err := tx.Model(&domain.Initiative{}).Where("id = ?", initiative.ID).
				Update("status", domain.StatusRejected).Error; err != nil {
				return err
			}
		}

		ev, err = event.CreateEvent("INITIATIVE", initiative.ID, initiative.Title, event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{
				PropertyName: "ApproveStatus", PropertyDesc: "stage " + txn.StageName,
				OldValue: domain.ApproveStatusPending, OldValueDesc: domain.ApproveStatusPending,
				NewValue: d.Action, NewValueDesc: d.Action,
			}},
			&s.Identity, now, tx)
		if err != nil {
			return err
		}

		if err := tx.Where(&domain.WorkflowTransaction{ID: transactionId}).First(&updated).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return &updated, nil
}

// HighestLedgerStage returns the largest stage number materialized in an
// initiative's ledger, counting stages closed out by the system.
func HighestLedgerStage(tx *gorm.DB, initiativeId types.ID) (int, error) {
	highest := 0
	row := tx.Model(&domain.WorkflowTransaction{}).Where("initiative_id = ?", initiativeId).
		Select("COALESCE(MAX(stage_number), 0)").Row()
	if err := row.Scan(&highest); err != nil {
		return 0, err
	}
	return highest, nil
}
