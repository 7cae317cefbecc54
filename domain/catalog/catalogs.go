package catalog

import (
	"sort"

	"opexhub/account"
	"opexhub/bizerror"
	"opexhub/domain"
	"opexhub/idgen"
	"opexhub/persistence"
	"opexhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	LoadStageCatalogFunc      = LoadStageCatalog
	CreateStageDefinitionFunc = CreateStageDefinition
	QueryStageDefinitionsFunc = QueryStageDefinitions
	DeleteStageDefinitionFunc = DeleteStageDefinition
)

// Catalog is the ordered, active stage list of one site. Immutable during a
// workflow run; the workflow core only reads it.
type Catalog []domain.StageDefinition

func (c Catalog) Find(stageNumber int) (*domain.StageDefinition, bool) {
	for i := range c {
		if c[i].StageNumber == stageNumber {
			return &c[i], true
		}
	}
	return nil, false
}

func (c Catalog) LastStageNumber() int {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1].StageNumber
}

// DecisionStageCovering returns the decision stage whose co-assigned set
// contains the given stage number.
func (c Catalog) DecisionStageCovering(stageNumber int) (*domain.StageDefinition, bool) {
	for i := range c {
		if c[i].DecisionStage && c[i].CoAssignedStages.Contains(stageNumber) {
			return &c[i], true
		}
	}
	return nil, false
}

// LoadStageCatalog reads the active, ordered stage catalog of a site. The db
// handle is supplied by the caller so the read can join an open transaction.
func LoadStageCatalog(site string, db *gorm.DB) (Catalog, error) {
	var stages []domain.StageDefinition
	q := db.Where(&domain.StageDefinition{Site: site, Active: true}).Order("stage_number ASC")
	if err := q.Find(&stages).Error; err != nil {
		return nil, err
	}
	return Catalog(stages), nil
}

func CreateStageDefinition(c *domain.StageDefinitionCreation, s *session.Session) (*domain.StageDefinition, error) {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	sort.Ints(c.CoAssignedStages)
	record := &domain.StageDefinition{
		ID:   idgen.NextID(idWorker),
		Site: c.Site, StageNumber: c.StageNumber, StageName: c.StageName,
		RequiredRole: c.RequiredRole, DefaultAssignee: c.DefaultAssignee,
		DecisionStage: c.DecisionStage, CoAssignedStages: c.CoAssignedStages,
		SkipUnless: c.SkipUnless, Active: true,
		CreateTime: types.CurrentTimestamp(),
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		existing := domain.StageDefinition{}
		err := tx.Where(&domain.StageDefinition{Site: c.Site, StageNumber: c.StageNumber, Active: true}).
			First(&existing).Error
		if err == nil {
			return bizerror.ErrStageNumberExisted
		}
		if !gorm.IsRecordNotFoundError(err) {
			return err
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func QueryStageDefinitions(q *domain.StageDefinitionQuery, s *session.Session) (*[]domain.StageDefinition, error) {
	var stages []domain.StageDefinition
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&domain.StageDefinition{Site: q.Site, Active: true}).
		Order("stage_number ASC").Find(&stages).Error; err != nil {
		return nil, err
	}
	return &stages, nil
}

// DeleteStageDefinition deactivates a catalog row. Initiatives already past
// the stage keep their ledger records untouched.
func DeleteStageDefinition(id types.ID, s *session.Session) error {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		record := domain.StageDefinition{ID: id}
		if err := tx.Where(&record).First(&record).Error; err != nil {
			return err
		}
		return tx.Model(&domain.StageDefinition{}).Where("id = ?", id).
			Update("active", false).Error
	})
}
