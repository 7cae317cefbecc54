package initiative

import (
	"opexhub/account"
	"opexhub/bizerror"
	"opexhub/domain"
	"opexhub/domain/workflow"
	"opexhub/event"
	"opexhub/idgen"
	"opexhub/persistence"
	"opexhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	initiativeIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateInitiativeFunc = CreateInitiative
	QueryInitiativesFunc = QueryInitiatives
	DetailInitiativeFunc = DetailInitiative
	UpdateInitiativeFunc = UpdateInitiative
	DeleteInitiativeFunc = DeleteInitiative

	LoadInitiativesFunc = LoadInitiatives
	CountByStatusFunc   = CountByStatus
)

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// CreateInitiative registers an initiative and seeds its workflow ledger in
// one transaction. The aggregate status is derived from the ledger: the first
// stage is auto approved, so a fresh initiative lands in progress at the next
// applicable stage.
func CreateInitiative(c *domain.InitiativeCreation, s *session.Session) (*domain.Initiative, error) {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) && !s.Perms.HasRoleSuffix("_"+c.Site) {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var created domain.Initiative
	var ev *event.EventRecord

	err1 := db.Transaction(func(tx *gorm.DB) error {
		now := types.CurrentTimestamp()
		created = domain.Initiative{
			ID:          idgen.NextID(initiativeIdWorker),
			Title:       c.Title,
			Description: c.Description,
			Priority:    c.Priority,
			Site:        c.Site,
			Discipline:  c.Discipline,

			ExpectedSavings: c.ExpectedSavings,
			StartDate:       c.StartDate,
			EndDate:         c.EndDate,
			RequiresMoc:     c.RequiresMoc,
			RequiresCapex:   c.RequiresCapex,

			Status:       domain.StatusDraft,
			CurrentStage: 1,

			CreateTime:  now,
			CreatorID:   s.Identity.ID,
			CreatorName: s.Identity.DisplayName(),
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		activated, err := workflow.CreateLedgerFunc(tx, &created, &s.Identity)
		if err != nil {
			return err
		}
		created.Status = domain.StatusInProgress
		created.CurrentStage = activated
		if activated == 0 {
			highest, herr := workflow.HighestLedgerStage(tx, created.ID)
			if herr != nil {
				return herr
			}
			created.Status = domain.StatusCompleted
			created.CurrentStage = highest + 1
		}
		if err := tx.Model(&domain.Initiative{}).Where("id = ?", created.ID).
			Update(map[string]interface{}{"status": created.Status, "current_stage": created.CurrentStage}).Error; err != nil {
			return err
		}

		ev, err = CreateInitiativeCreatedEvent(&created, &s.Identity, now, tx)
		return err
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return &created, nil
}

func QueryInitiatives(query *domain.InitiativeQuery, s *session.Session) ([]domain.Initiative, uint64, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	q := db.Model(&domain.Initiative{})
	if query.Status != "" {
		q = q.Where(&domain.Initiative{Status: query.Status})
	}
	if query.Site != "" {
		q = q.Where(&domain.Initiative{Site: query.Site})
	}
	if query.Title != "" {
		q = q.Where("title like ?", "%"+query.Title+"%")
	}
	if !s.Perms.HasGlobalViewRole() {
		sites := s.Perms.VisibleSites()
		if len(sites) == 0 {
			return []domain.Initiative{}, 0, nil
		}
		q = q.Where("site in (?)", sites)
	}

	total := uint64(0)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size < 1 {
		size = 20
	}

	initiatives := []domain.Initiative{}
	if err := q.Order("create_time DESC").Offset((page - 1) * size).Limit(size).Find(&initiatives).Error; err != nil {
		return nil, 0, err
	}
	return initiatives, total, nil
}

func DetailInitiative(id types.ID, s *session.Session) (*domain.Initiative, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	detail := domain.Initiative{}
	if err := db.Where(&domain.Initiative{ID: id}).First(&detail).Error; err != nil {
		return nil, err
	}
	if !s.Perms.HasSiteViewPerm(detail.Site) {
		return nil, bizerror.ErrForbidden
	}
	return &detail, nil
}

// UpdateInitiative changes descriptive fields only. Status and currentStage
// are owned by the workflow and never written here.
func UpdateInitiative(id types.ID, u *domain.InitiativeUpdating, s *session.Session) (*domain.Initiative, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var updated domain.Initiative
	var ev *event.EventRecord

	err1 := db.Transaction(func(tx *gorm.DB) error {
		origin := domain.Initiative{}
		if err := tx.Where(&domain.Initiative{ID: id}).First(&origin).Error; err != nil {
			return err
		}
		if !s.Perms.HasRole(account.SystemAdminPermission.ID) && !s.Perms.HasRoleSuffix("_"+origin.Site) {
			return bizerror.ErrForbidden
		}

		// an explicit column map: a struct update would skip zero values,
		// silently keeping a cleared flag or emptied field
		changes := map[string]interface{}{
			"title":            u.Title,
			"description":      u.Description,
			"priority":         u.Priority,
			"expected_savings": u.ExpectedSavings,
			"requires_moc":     u.RequiresMoc,
			"requires_capex":   u.RequiresCapex,
		}
		if !u.StartDate.Time().IsZero() {
			changes["start_date"] = u.StartDate
		}
		if !u.EndDate.Time().IsZero() {
			changes["end_date"] = u.EndDate
		}
		if err := tx.Model(&domain.Initiative{}).Where(&domain.Initiative{ID: id}).Update(changes).Error; err != nil {
			return err
		}

		var err error
		ev, err = CreateInitiativePropertyUpdatedEvent(&origin,
			[]event.UpdatedProperty{{
				PropertyName: "Title", PropertyDesc: "Title",
				OldValue: origin.Title, OldValueDesc: origin.Title,
				NewValue: u.Title, NewValueDesc: u.Title,
			}},
			&s.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.Initiative{ID: id}).First(&updated).Error
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return &updated, nil
}

// DeleteInitiative removes an initiative and its whole ledger.
func DeleteInitiative(id types.ID, s *session.Session) error {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var ev *event.EventRecord

	err1 := db.Transaction(func(tx *gorm.DB) error {
		origin := domain.Initiative{}
		err := tx.Where(&domain.Initiative{ID: id}).First(&origin).Error
		if err == nil {
			ev, err = CreateInitiativeDeletedEvent(&origin, &s.Identity, types.CurrentTimestamp(), tx)
			if err != nil {
				return err
			}
		} else if !gorm.IsRecordNotFoundError(err) {
			return err
		}

		if err := tx.Delete(domain.Initiative{}, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(domain.WorkflowTransaction{}, "initiative_id = ?", id).Error
	})
	if err1 != nil {
		return err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}

// CountByStatus summarizes initiatives per status for dashboards, within the
// caller's visible sites.
func CountByStatus(site string, s *session.Session) ([]StatusCount, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	q := db.Model(&domain.Initiative{})
	if site != "" {
		q = q.Where("site = ?", site)
	}
	if !s.Perms.HasGlobalViewRole() {
		sites := s.Perms.VisibleSites()
		if len(sites) == 0 {
			return []StatusCount{}, nil
		}
		q = q.Where("site in (?)", sites)
	}

	counts := []StatusCount{}
	if err := q.Select("status, count(*) as count").Group("status").Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// LoadInitiatives pages through all initiatives without permission filtering.
// It backs the search index full sync only.
func LoadInitiatives(page, size int) ([]domain.Initiative, error) {
	db := persistence.ActiveDataSourceManager.GormDB(nil)

	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	initiatives := []domain.Initiative{}
	if err := db.Order("id ASC").Offset(offset).Limit(size).Find(&initiatives).Error; err != nil {
		return nil, err
	}
	return initiatives, nil
}
