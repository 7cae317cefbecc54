package initiativerest

import (
	"errors"
	"net/http"

	"opexhub/bizerror"
	"opexhub/domain"
	"opexhub/domain/initiative"
	"opexhub/indices/search"
	"opexhub/misc"
	"opexhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterInitiativesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/initiatives", middleWares...)
	g.GET("", handleQuery)
	g.POST("", handleCreate)
	g.GET(":id", handleDetail)
	g.PUT(":id", handleUpdate)
	g.DELETE(":id", handleDelete)

	s := r.Group("/v1/initiative-counts", middleWares...)
	s.GET("", handleCountByStatus)
}

func handleQuery(c *gin.Context) {
	query := domain.InitiativeQuery{}
	err := c.MustBindWith(&query, binding.Query)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	s := session.ExtractSessionFromGinContext(c)

	// keyword queries are answered from the search index
	if query.Title != "" {
		initiatives, err := search.SearchInitiativesFunc(query, s)
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, &misc.PagedBody{List: initiatives, Total: uint64(len(initiatives))})
		return
	}

	initiatives, total, err := initiative.QueryInitiativesFunc(&query, s)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: initiatives, Total: total})
}

func handleCreate(c *gin.Context) {
	creation := domain.InitiativeCreation{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	created, err := initiative.CreateInitiativeFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, created)
}

func handleDetail(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	detail, err := initiative.DetailInitiativeFunc(parsedId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleUpdate(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	updating := domain.InitiativeUpdating{}
	err = c.ShouldBindBodyWith(&updating, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	updated, err := initiative.UpdateInitiativeFunc(parsedId, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, updated)
}

func handleCountByStatus(c *gin.Context) {
	counts, err := initiative.CountByStatusFunc(c.Query("site"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, counts)
}

func handleDelete(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	err = initiative.DeleteInitiativeFunc(parsedId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
