package indices

import (
	"context"
	"fmt"
	"sync"

	"opexhub/account"
	"opexhub/authority"
	"opexhub/bizerror"
	"opexhub/client/es"
	"opexhub/domain"
	"opexhub/domain/initiative"
	"opexhub/event"
	"opexhub/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	InitiativeIndexEventHandlerName = "initiativeIndexer"
	indexRobot                      = &session.Session{
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{account.SystemViewPermission.ID},
		Context:  context.Background(),
	}

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize = 500

	// keeps a full sync from saturating the database and the search cluster
	syncLimiter = rate.NewLimiter(rate.Limit(5), 1)
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	for {
		if err := syncLimiter.Wait(context.Background()); err != nil {
			return err
		}

		initiatives, err := initiative.LoadInitiativesFunc(page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices fully sync: error on retrieve initiatives(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			page++
			continue
		}

		if len(initiatives) == 0 {
			logrus.Infof("indices fully sync: there are no more initiatives to index")
			return nil // loop exit
		}

		if err := IndexInitiatives(initiatives); err != nil {
			logrus.Warnf("indices fully sync: error on index initiatives(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

func IndexInitiativeEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != "INITIATIVE" {
		return nil
	}

	if e.EventCategory == event.EventCategoryDeleted {
		err := es.DeleteDocumentByIdFunc(InitiativeIndexName, e.SourceId, indexRobot)
		if err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete initiative index %d, %v", e.SourceId, err),
				HandlerIdentifier: InitiativeIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: InitiativeIndexEventHandlerName}
	}

	detail, err := initiative.DetailInitiativeFunc(e.SourceId, indexRobot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail initiative when index initiative %d, %v", e.SourceId, err),
			HandlerIdentifier: InitiativeIndexEventHandlerName,
		}
	}
	if err := IndexInitiatives([]domain.Initiative{*detail}); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index initiative %d, %v", e.SourceId, err),
			HandlerIdentifier: InitiativeIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: InitiativeIndexEventHandlerName}
}
