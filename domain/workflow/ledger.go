package workflow

import (
	"opexhub/bizerror"
	"opexhub/domain"
	"opexhub/domain/catalog"
	"opexhub/idgen"
	"opexhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	txnIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateLedgerFunc = CreateLedger
)

// CreateLedger seeds the transaction ledger of a freshly created initiative:
// the first catalog stage is recorded as approved by the creator with the
// fixed registration comment, then the next stage is activated as pending.
// Returns the stage number that became pending, or 0 when the catalog ends at
// stage one. Runs inside the caller's transaction so initiative and ledger
// commit as one.
func CreateLedger(tx *gorm.DB, initiative *domain.Initiative, creator *session.Identity) (int, error) {
	cat, err := catalog.LoadStageCatalogFunc(initiative.Site, tx)
	if err != nil {
		return 0, err
	}
	if len(cat) == 0 {
		return 0, bizerror.ErrStageCatalogMissing
	}

	first := cat[0]
	now := types.CurrentTimestamp()
	registration := domain.WorkflowTransaction{
		ID:           idgen.NextID(txnIdWorker),
		InitiativeID: initiative.ID,
		StageNumber:  first.StageNumber,
		StageName:    first.StageName,
		Site:         initiative.Site,
		RequiredRole: first.RequiredRole,

		ApproveStatus: domain.ApproveStatusApproved,
		ActionBy:      creator.DisplayName(),
		ActionAt:      now,
		Comment:       domain.CommentInitiativeRegistered,

		CreateTime: now,
	}
	if err := tx.Create(&registration).Error; err != nil {
		return 0, err
	}

	return activateAfter(tx, cat, initiative, first.StageNumber)
}
