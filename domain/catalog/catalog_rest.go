package catalog

import (
	"errors"
	"net/http"

	"opexhub/bizerror"
	"opexhub/domain"
	"opexhub/misc"
	"opexhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathStageDefinitions = "/v1/stage-definitions"
)

func RegisterStageDefinitionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathStageDefinitions, middleWares...)
	g.GET("", handleQuery)
	g.POST("", handleCreate)
	g.DELETE(":id", handleDelete)
}

func handleQuery(c *gin.Context) {
	query := domain.StageDefinitionQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	stages, err := QueryStageDefinitionsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: stages, Total: uint64(len(*stages))})
}

func handleCreate(c *gin.Context) {
	creation := domain.StageDefinitionCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := CreateStageDefinitionFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleDelete(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	if err := DeleteStageDefinitionFunc(parsedId, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
