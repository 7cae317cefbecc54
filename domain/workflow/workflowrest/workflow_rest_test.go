package workflowrest_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"opexhub/bizerror"
	"opexhub/domain"
	"opexhub/domain/workflow"
	"opexhub/domain/workflow/workflowrest"
	"opexhub/session"
	"opexhub/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

var router *gin.Engine

func beforeEach() {
	router = gin.Default()
	router.Use(bizerror.ErrorHandling())
	workflowrest.RegisterWorkflowRestAPI(router)
}

func TestApplyDecisionAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be able to serve decision request", func(t *testing.T) {
		beforeEach()

		workflow.ApplyDecisionFunc = func(transactionId types.ID, d *domain.DecisionSubmission, s *session.Session) (*domain.WorkflowTransaction, error) {
			return &domain.WorkflowTransaction{
				ID: transactionId, InitiativeID: 100, StageNumber: 2, StageName: "Initial Review", Site: "NDS",
				RequiredRole: "STLD", ApproveStatus: domain.ApproveStatusApproved,
				ActionBy: "some reviewer", Comment: d.Comment,
			}, nil
		}

		req := httptest.NewRequest(http.MethodPost, "/v1/workflow-transactions/123/decisions",
			bytes.NewReader([]byte(`{"action":"approved","comment":"looks good"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"id":"123","initiativeId":"100","stageNumber":2,"stageName":"Initial Review",
			"site":"NDS","requiredRole":"STLD","approveStatus":"approved","pendingWith":"",
			"actionBy":"some reviewer","actionAt":null,"comment":"looks good",
			"assignedUserId":"0","changeReference":"","createTime":null}`))
	})

	t.Run("should return 400 when id is invalid", func(t *testing.T) {
		beforeEach()

		req := httptest.NewRequest(http.MethodPost, "/v1/workflow-transactions/abc/decisions",
			bytes.NewReader([]byte(`{"action":"approved","comment":"ok"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid id 'abc'","data":null}`))
	})

	t.Run("should return 400 when binding failed", func(t *testing.T) {
		beforeEach()

		req := httptest.NewRequest(http.MethodPost, "/v1/workflow-transactions/123/decisions",
			bytes.NewReader([]byte(`{"comment":"missing action"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
			"message":"Key: 'DecisionSubmission.Action' Error:Field validation for 'Action' failed on the 'required' tag",
			"data":null}`))
	})

	t.Run("should return 409 when transaction is not pending", func(t *testing.T) {
		beforeEach()

		workflow.ApplyDecisionFunc = func(transactionId types.ID, d *domain.DecisionSubmission, s *session.Session) (*domain.WorkflowTransaction, error) {
			return nil, bizerror.ErrTransactionNotPending
		}

		req := httptest.NewRequest(http.MethodPost, "/v1/workflow-transactions/123/decisions",
			bytes.NewReader([]byte(`{"action":"approved","comment":"late"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code":"workflow.transaction_not_pending","message":"workflow transaction is not pending","data":null}`))
	})

	t.Run("should return 404 when transaction is not found", func(t *testing.T) {
		beforeEach()

		workflow.ApplyDecisionFunc = func(transactionId types.ID, d *domain.DecisionSubmission, s *session.Session) (*domain.WorkflowTransaction, error) {
			return nil, gorm.ErrRecordNotFound
		}

		req := httptest.NewRequest(http.MethodPost, "/v1/workflow-transactions/123/decisions",
			bytes.NewReader([]byte(`{"action":"approved","comment":"gone"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"code":"common.record_not_found","message":"record not found","data":null}`))
	})

	t.Run("should return 500 when service failed", func(t *testing.T) {
		beforeEach()

		workflow.ApplyDecisionFunc = func(transactionId types.ID, d *domain.DecisionSubmission, s *session.Session) (*domain.WorkflowTransaction, error) {
			return nil, errors.New("unexpected exception")
		}

		req := httptest.NewRequest(http.MethodPost, "/v1/workflow-transactions/123/decisions",
			bytes.NewReader([]byte(`{"action":"approved","comment":"boom"}`)))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"unexpected exception","data":null}`))
	})
}

func TestListStageTransactionsAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be able to serve list request", func(t *testing.T) {
		beforeEach()

		workflow.ListStageTransactionsFunc = func(initiativeId types.ID, s *session.Session) ([]domain.WorkflowTransaction, error) {
			return []domain.WorkflowTransaction{
				{ID: 1, InitiativeID: initiativeId, StageNumber: 1, StageName: "Registration", Site: "NDS",
					RequiredRole: "STLD", ApproveStatus: domain.ApproveStatusApproved,
					ActionBy: "creator", Comment: domain.CommentInitiativeRegistered},
			}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/initiatives/100/workflow-transactions", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"list":[{"id":"1","initiativeId":"100","stageNumber":1,"stageName":"Registration",
			"site":"NDS","requiredRole":"STLD","approveStatus":"approved","pendingWith":"",
			"actionBy":"creator","actionAt":null,"comment":"Initiative created and registered",
			"assignedUserId":"0","changeReference":"","createTime":null}],"total":1}`))
	})

	t.Run("should return 400 when id is invalid", func(t *testing.T) {
		beforeEach()

		req := httptest.NewRequest(http.MethodGet, "/v1/initiatives/abc/workflow-transactions", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid id 'abc'","data":null}`))
	})
}

func TestQueryPendingTransactionsAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be able to serve pending query", func(t *testing.T) {
		beforeEach()

		workflow.QueryPendingTransactionsFunc = func(q *domain.PendingTransactionQuery, s *session.Session) ([]domain.WorkflowTransaction, error) {
			Expect(q.Role).To(Equal("STLD"))
			Expect(q.Site).To(Equal("NDS"))
			return []domain.WorkflowTransaction{}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/pending-transactions?role=STLD&site=NDS", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"list":[],"total":0}`))
	})

	t.Run("should return 400 when role is absent", func(t *testing.T) {
		beforeEach()

		req := httptest.NewRequest(http.MethodGet, "/v1/pending-transactions", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
			"message":"Key: 'PendingTransactionQuery.Role' Error:Field validation for 'Role' failed on the 'required' tag",
			"data":null}`))
	})
}

func TestGetProgressAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be able to serve progress request", func(t *testing.T) {
		beforeEach()

		workflow.GetProgressFunc = func(initiativeId types.ID, s *session.Session) (int, error) {
			return 27, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/initiatives/100/progress", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"progress":27}`))
	})
}
