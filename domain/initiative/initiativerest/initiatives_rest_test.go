package initiativerest_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"opexhub/bizerror"
	"opexhub/domain"
	"opexhub/domain/initiative"
	"opexhub/domain/initiative/initiativerest"
	"opexhub/indices/search"
	"opexhub/session"
	"opexhub/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

var router *gin.Engine

func beforeEach() {
	router = gin.Default()
	router.Use(bizerror.ErrorHandling())
	initiativerest.RegisterInitiativesRestAPI(router)
}

func TestCreateInitiativeAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be able to serve create request", func(t *testing.T) {
		beforeEach()

		initiative.CreateInitiativeFunc = func(c *domain.InitiativeCreation, s *session.Session) (*domain.Initiative, error) {
			return &domain.Initiative{
				ID: 123, Title: c.Title, Priority: c.Priority, Site: c.Site, Discipline: c.Discipline,
				Status: domain.StatusInProgress, CurrentStage: 2, CreatorName: "creator",
			}, nil
		}

		req := httptest.NewRequest(http.MethodPost, "/v1/initiatives",
			bytes.NewReader([]byte(`{"title":"reduce flare losses","priority":"High","site":"NDS","discipline":"PROD"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(MatchJSON(`{"id":"123","title":"reduce flare losses","description":"","status":"InProgress",
			"priority":"High","expectedSavings":0,"actualSavings":0,"site":"NDS","discipline":"PROD",
			"startDate":null,"endDate":null,"currentStage":2,"requiresMoc":false,"requiresCapex":false,
			"createTime":null,"creatorId":"0","creatorName":"creator"}`))
	})

	t.Run("should return 400 when validation failed", func(t *testing.T) {
		beforeEach()

		req := httptest.NewRequest(http.MethodPost, "/v1/initiatives", bytes.NewReader([]byte(`{"title":"x"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
			"message":"Key: 'InitiativeCreation.Priority' Error:Field validation for 'Priority' failed on the 'required' tag\n` +
			`Key: 'InitiativeCreation.Site' Error:Field validation for 'Site' failed on the 'required' tag\n` +
			`Key: 'InitiativeCreation.Discipline' Error:Field validation for 'Discipline' failed on the 'required' tag",
			"data":null}`))
	})
}

func TestQueryInitiativesAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be able to serve query request", func(t *testing.T) {
		beforeEach()

		initiative.QueryInitiativesFunc = func(q *domain.InitiativeQuery, s *session.Session) ([]domain.Initiative, uint64, error) {
			Expect(q.Status).To(Equal(domain.StatusInProgress))
			Expect(q.Site).To(Equal("NDS"))
			return []domain.Initiative{}, 0, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/initiatives?status=InProgress&site=NDS", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"list":[],"total":0}`))
	})

	t.Run("should serve keyword query from the search index", func(t *testing.T) {
		beforeEach()

		initiative.QueryInitiativesFunc = func(q *domain.InitiativeQuery, s *session.Session) ([]domain.Initiative, uint64, error) {
			t.Fatal("keyword query must not hit the database")
			return nil, 0, nil
		}
		search.SearchInitiativesFunc = func(q domain.InitiativeQuery, s *session.Session) ([]domain.Initiative, error) {
			Expect(q.Title).To(Equal("flare"))
			Expect(q.Site).To(Equal("NDS"))
			return []domain.Initiative{{ID: 123, Title: "reduce flare losses", Status: domain.StatusInProgress,
				Site: "NDS", CurrentStage: 2}}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/initiatives?title=flare&site=NDS", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"list":[{"id":"123","title":"reduce flare losses","description":"",
			"status":"InProgress","priority":"","expectedSavings":0,"actualSavings":0,"site":"NDS","discipline":"",
			"startDate":null,"endDate":null,"currentStage":2,"requiresMoc":false,"requiresCapex":false,
			"createTime":null,"creatorId":"0","creatorName":""}],"total":1}`))
	})
}

func TestDeleteInitiativeAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be able to serve delete request", func(t *testing.T) {
		beforeEach()

		deleted := types.ID(0)
		initiative.DeleteInitiativeFunc = func(id types.ID, s *session.Session) error {
			deleted = id
			return nil
		}

		req := httptest.NewRequest(http.MethodDelete, "/v1/initiatives/123", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))
		Expect(body).To(BeEmpty())
		Expect(deleted).To(Equal(types.ID(123)))
	})

	t.Run("should return 403 when service refuses", func(t *testing.T) {
		beforeEach()

		initiative.DeleteInitiativeFunc = func(id types.ID, s *session.Session) error {
			return bizerror.ErrForbidden
		}

		req := httptest.NewRequest(http.MethodDelete, "/v1/initiatives/123", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"code":"security.forbidden","message":"access forbidden","data":null}`))
	})
}
