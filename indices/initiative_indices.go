package indices

import (
	"fmt"

	"opexhub/client/es"
	"opexhub/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	InitiativeIndexName = "initiatives"
)

type InitiativeDocument struct {
	domain.Initiative
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexInitiatives(initiatives []domain.Initiative) error {
	docs := make([]InitiativeDocument, 0, len(initiatives))
	for _, r := range initiatives {
		docs = append(docs, InitiativeDocument{Initiative: r})
	}

	if err := saveInitiativeDocuments(docs); err != nil {
		return err
	}
	return nil
}

func saveInitiativeDocuments(docs []InitiativeDocument) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(InitiativeIndexName, doc.ID, doc, indexRobot); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index initiative %d %s %s\n", doc.ID, doc.Title, err)
		} else {
			logrus.Infof("index initiative %d successfully\n", doc.ID)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
