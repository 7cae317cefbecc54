package initiative

import (
	"opexhub/domain"
	"opexhub/event"
	"opexhub/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

func CreateInitiativeCreatedEvent(i *domain.Initiative, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent("INITIATIVE", i.ID, i.Title, event.EventCategoryCreated, nil, identity, timestamp, db)
}
func CreateInitiativeDeletedEvent(i *domain.Initiative, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent("INITIATIVE", i.ID, i.Title, event.EventCategoryDeleted, nil, identity, timestamp, db)
}
func CreateInitiativePropertyUpdatedEvent(i *domain.Initiative, updates []event.UpdatedProperty, identity *session.Identity, timestamp types.Timestamp, db *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent("INITIATIVE", i.ID, i.Title, event.EventCategoryPropertyUpdated, updates, identity, timestamp, db)
}
