package search_test

import (
	"encoding/json"
	"testing"

	"opexhub/client/es"
	"opexhub/domain"
	"opexhub/indices"
	"opexhub/indices/search"
	"opexhub/session"
	"opexhub/testinfra"

	. "github.com/onsi/gomega"
)

func TestSearchInitiatives(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should build filters from query and visible sites", func(t *testing.T) {
		var gotIndex string
		var gotQuery interface{}
		es.SearchFunc = func(index string, query interface{}, s *session.Session) (*es.ESSearchResult, error) {
			gotIndex = index
			gotQuery = query

			doc, err := json.Marshal(domain.Initiative{ID: 123, Title: "reduce flare losses", Site: "NDS", Status: domain.StatusInProgress})
			Expect(err).To(BeNil())
			return &es.ESSearchResult{Hits: es.ESSearchHits{Hits: []es.ESSearchHit{{Id: "123", Source: es.Source(doc)}}}}, nil
		}

		s := testinfra.BuildSession(100, "STLD_NDS")
		found, err := search.SearchInitiatives(domain.InitiativeQuery{Status: domain.StatusInProgress, Title: "flare"}, s)
		Expect(err).To(BeNil())
		Expect(found).To(HaveLen(1))
		Expect(found[0].ID.String()).To(Equal("123"))
		Expect(gotIndex).To(Equal(indices.InitiativeIndexName))

		queryJson, err := json.Marshal(gotQuery)
		Expect(err).To(BeNil())
		Expect(string(queryJson)).To(ContainSubstring(`"terms":{"site":["NDS"]}`))
		Expect(string(queryJson)).To(ContainSubstring(`"term":{"status":"InProgress"}`))
		Expect(string(queryJson)).To(ContainSubstring(`"match":{"title":{"operator":"AND","query":"flare"}}`))
	})

	t.Run("session without site permissions searches nothing", func(t *testing.T) {
		called := false
		es.SearchFunc = func(index string, query interface{}, s *session.Session) (*es.ESSearchResult, error) {
			called = true
			return &es.ESSearchResult{}, nil
		}

		s := testinfra.BuildSession(100)
		found, err := search.SearchInitiatives(domain.InitiativeQuery{}, s)
		Expect(err).To(BeNil())
		Expect(found).To(BeEmpty())
		Expect(called).To(BeFalse())
	})
}
