package catalog_test

import (
	"testing"

	"opexhub/account"
	"opexhub/bizerror"
	"opexhub/domain"
	"opexhub/domain/catalog"
	"opexhub/persistence"
	"opexhub/testinfra"

	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("opexhub")
	*testDatabase = db
	Expect(db.DS.GormDB(nil).AutoMigrate(&domain.StageDefinition{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestCreateStageDefinition(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should be able to create stage definition", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		admin := testinfra.BuildSession(1, account.SystemAdminPermission.ID)
		created, err := catalog.CreateStageDefinition(&domain.StageDefinitionCreation{
			Site: "NDS", StageNumber: 3, StageName: "MU Approval", RequiredRole: "MU",
			DecisionStage: true, CoAssignedStages: domain.CoAssignedStages{6, 4, 5},
		}, admin)
		Expect(err).To(BeNil())
		Expect(created.ID).ToNot(BeZero())
		Expect(created.Active).To(BeTrue())
		// stored in ascending order
		Expect(created.CoAssignedStages).To(Equal(domain.CoAssignedStages{4, 5, 6}))

		cat, err := catalog.LoadStageCatalog("NDS", persistence.ActiveDataSourceManager.GormDB(nil))
		Expect(err).To(BeNil())
		Expect(cat).To(HaveLen(1))
		Expect(cat[0].StageName).To(Equal("MU Approval"))
	})

	t.Run("should forbid creation without admin permission", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		plain := testinfra.BuildSession(2, "STLD_NDS")
		_, err := catalog.CreateStageDefinition(&domain.StageDefinitionCreation{
			Site: "NDS", StageNumber: 1, StageName: "Registration", RequiredRole: "STLD",
		}, plain)
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should reject a duplicated active stage number", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		admin := testinfra.BuildSession(1, account.SystemAdminPermission.ID)
		_, err := catalog.CreateStageDefinition(&domain.StageDefinitionCreation{
			Site: "NDS", StageNumber: 1, StageName: "Registration", RequiredRole: "STLD",
		}, admin)
		Expect(err).To(BeNil())

		_, err = catalog.CreateStageDefinition(&domain.StageDefinitionCreation{
			Site: "NDS", StageNumber: 1, StageName: "Registration Again", RequiredRole: "STLD",
		}, admin)
		Expect(err).To(Equal(bizerror.ErrStageNumberExisted))

		// same number on another site is fine
		_, err = catalog.CreateStageDefinition(&domain.StageDefinitionCreation{
			Site: "OML", StageNumber: 1, StageName: "Registration", RequiredRole: "STLD",
		}, admin)
		Expect(err).To(BeNil())
	})
}

func TestDeleteStageDefinition(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("deactivated stage leaves the catalog and frees its number", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		admin := testinfra.BuildSession(1, account.SystemAdminPermission.ID)
		created, err := catalog.CreateStageDefinition(&domain.StageDefinitionCreation{
			Site: "NDS", StageNumber: 2, StageName: "Initial Review", RequiredRole: "STLD",
		}, admin)
		Expect(err).To(BeNil())

		Expect(catalog.DeleteStageDefinition(created.ID, admin)).To(BeNil())

		cat, err := catalog.LoadStageCatalog("NDS", persistence.ActiveDataSourceManager.GormDB(nil))
		Expect(err).To(BeNil())
		Expect(cat).To(BeEmpty())

		_, err = catalog.CreateStageDefinition(&domain.StageDefinitionCreation{
			Site: "NDS", StageNumber: 2, StageName: "Initial Review v2", RequiredRole: "STLD",
		}, admin)
		Expect(err).To(BeNil())
	})

	t.Run("should forbid deletion without admin permission", func(t *testing.T) {
		defer teardown(t, testDatabase)
		setup(t, &testDatabase)

		plain := testinfra.BuildSession(2, "STLD_NDS")
		Expect(catalog.DeleteStageDefinition(123, plain)).To(Equal(bizerror.ErrForbidden))
	})
}

func TestCatalogHelpers(t *testing.T) {
	RegisterTestingT(t)

	cat := catalog.Catalog{
		{StageNumber: 1, StageName: "Registration"},
		{StageNumber: 3, StageName: "MU Approval", DecisionStage: true, CoAssignedStages: domain.CoAssignedStages{4, 5}},
		{StageNumber: 4, StageName: "Implementation"},
		{StageNumber: 7, StageName: "Final Review"},
	}

	t.Run("Find locates a stage by number", func(t *testing.T) {
		def, found := cat.Find(4)
		Expect(found).To(BeTrue())
		Expect(def.StageName).To(Equal("Implementation"))

		_, found = cat.Find(2)
		Expect(found).To(BeFalse())
	})

	t.Run("DecisionStageCovering finds the decision stage of a co-assigned number", func(t *testing.T) {
		def, found := cat.DecisionStageCovering(5)
		Expect(found).To(BeTrue())
		Expect(def.StageNumber).To(Equal(3))

		_, found = cat.DecisionStageCovering(7)
		Expect(found).To(BeFalse())
	})

	t.Run("LastStageNumber is the highest defined number", func(t *testing.T) {
		Expect(cat.LastStageNumber()).To(Equal(7))
		Expect(catalog.Catalog{}.LastStageNumber()).To(Equal(0))
	})
}
