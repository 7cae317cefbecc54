package main

import (
	"log"
	"net/http"

	"opexhub/account"
	"opexhub/bizerror"
	"opexhub/client/es"
	"opexhub/domain"
	"opexhub/domain/catalog"
	"opexhub/domain/initiative/initiativerest"
	"opexhub/domain/workflow/workflowrest"
	"opexhub/event"
	"opexhub/indices"
	"opexhub/infra/tracing"
	"opexhub/persistence"
	"opexhub/session"
	"opexhub/sessions"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	tracingCloser, err := tracing.Bootstrap("opexhub")
	if err != nil {
		log.Fatalf("tracing bootstrap failed %v\n", err)
	}
	defer tracingCloser.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(nil).AutoMigrate(
		&domain.Initiative{},
		&domain.WorkflowTransaction{},
		&domain.StageDefinition{},
		&account.User{},
		&event.EventRecord{},
	).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	es.CreateClientFromEnv()
	event.EventHandlers = append(event.EventHandlers, indices.IndexInitiativeEventHandle)
	indices.StartCron()

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "opexhub")
	})

	sessions.RegisterSessionsHandler(engine)

	auth := session.SimpleAuthFilter()
	account.RegisterUsersRestAPI(engine, auth)
	catalog.RegisterStageDefinitionsRestAPI(engine, auth)
	initiativerest.RegisterInitiativesRestAPI(engine, auth)
	workflowrest.RegisterWorkflowRestAPI(engine, auth)
	indices.RegisterIndicesRestAPI(engine, auth)

	err = engine.Run(":80")
	if err != nil {
		panic(err)
	}
}
