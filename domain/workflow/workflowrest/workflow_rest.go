package workflowrest

import (
	"errors"
	"net/http"

	"opexhub/bizerror"
	"opexhub/domain"
	"opexhub/domain/workflow"
	"opexhub/misc"
	"opexhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterWorkflowRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	t := r.Group("/v1/workflow-transactions", middleWares...)
	t.POST(":id/decisions", handleApplyDecision)

	i := r.Group("/v1/initiatives", middleWares...)
	i.GET(":id/workflow-transactions", handleListStageTransactions)
	i.GET(":id/progress", handleGetProgress)

	p := r.Group("/v1/pending-transactions", middleWares...)
	p.GET("", handleQueryPendingTransactions)
}

func handleApplyDecision(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	submission := domain.DecisionSubmission{}
	err = c.ShouldBindBodyWith(&submission, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	updated, err := workflow.ApplyDecisionFunc(parsedId, &submission, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, updated)
}

func handleListStageTransactions(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	transactions, err := workflow.ListStageTransactionsFunc(parsedId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: transactions, Total: uint64(len(transactions))})
}

func handleGetProgress(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	progress, err := workflow.GetProgressFunc(parsedId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

func handleQueryPendingTransactions(c *gin.Context) {
	query := domain.PendingTransactionQuery{}
	err := c.MustBindWith(&query, binding.Query)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	transactions, err := workflow.QueryPendingTransactionsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: transactions, Total: uint64(len(transactions))})
}
