package workflow

import (
	"opexhub/domain"
	"opexhub/persistence"
	"opexhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ListStageTransactionsFunc    = ListStageTransactions
	QueryPendingTransactionsFunc = QueryPendingTransactions
)

// ListStageTransactions returns the visible part of an initiative's ledger,
// ordered by stage number. An unknown initiative or one outside the caller's
// sites yields an empty list rather than an error.
func ListStageTransactions(initiativeId types.ID, s *session.Session) ([]domain.WorkflowTransaction, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	initiative := domain.Initiative{}
	err := db.Where(&domain.Initiative{ID: initiativeId}).First(&initiative).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return []domain.WorkflowTransaction{}, nil
		}
		return nil, err
	}
	if !s.Perms.HasSiteViewPerm(initiative.Site) {
		return []domain.WorkflowTransaction{}, nil
	}

	transactions := []domain.WorkflowTransaction{}
	if err := db.Where(&domain.WorkflowTransaction{InitiativeID: initiativeId}).
		Order("stage_number ASC").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return VisibleTransactions(transactions), nil
}

// QueryPendingTransactions lists the pending approvals waiting on a role,
// optionally narrowed to one site. It backs the reviewer work queue.
func QueryPendingTransactions(q *domain.PendingTransactionQuery, s *session.Session) ([]domain.WorkflowTransaction, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	query := db.Where(&domain.WorkflowTransaction{
		ApproveStatus: domain.ApproveStatusPending, RequiredRole: q.Role,
	})
	if q.Site != "" {
		query = query.Where(&domain.WorkflowTransaction{Site: q.Site})
	}

	transactions := []domain.WorkflowTransaction{}
	if err := query.Order("create_time ASC").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}
