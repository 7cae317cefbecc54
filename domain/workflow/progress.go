package workflow

import (
	"opexhub/domain"
	"opexhub/persistence"
	"opexhub/session"

	"github.com/fundwit/go-commons/types"
)

var (
	GetProgressFunc = GetProgress
)

// Progress is the completion percentage: floor(approved * 100 / total).
func Progress(approvedCount, totalCount int) int {
	if totalCount == 0 {
		return 0
	}
	return approvedCount * 100 / totalCount
}

// GetProgress derives the completion percentage of an initiative: approved
// ledger records against the site's active catalog size.
func GetProgress(initiativeId types.ID, s *session.Session) (int, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	initiative := domain.Initiative{}
	if err := db.Where(&domain.Initiative{ID: initiativeId}).First(&initiative).Error; err != nil {
		return 0, err
	}

	approved := 0
	if err := db.Model(&domain.WorkflowTransaction{}).
		Where(&domain.WorkflowTransaction{InitiativeID: initiativeId, ApproveStatus: domain.ApproveStatusApproved}).
		Count(&approved).Error; err != nil {
		return 0, err
	}

	total := 0
	if err := db.Model(&domain.StageDefinition{}).
		Where(&domain.StageDefinition{Site: initiative.Site, Active: true}).
		Count(&total).Error; err != nil {
		return 0, err
	}

	return Progress(approved, total), nil
}
