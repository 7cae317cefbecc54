package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"opexhub/client/es"
	"opexhub/domain"
	"opexhub/indices"
	"opexhub/session"
)

var (
	SearchInitiativesFunc = SearchInitiatives
)

// SearchInitiatives answers the initiative list query from the search index
// instead of the database, applying the same site visibility rules.
func SearchInitiatives(q domain.InitiativeQuery, s *session.Session) ([]domain.Initiative, error) {
	filters := make([]es.H, 0, 4)

	if !s.Perms.HasGlobalViewRole() {
		visibleSites := s.Perms.VisibleSites()
		if len(visibleSites) == 0 {
			return []domain.Initiative{}, nil
		}
		filters = append(filters, es.H{"terms": es.H{"site": visibleSites}})
	}

	if q.Status != "" {
		filters = append(filters, es.H{"term": es.H{"status": q.Status}})
	}
	if q.Site != "" {
		filters = append(filters, es.H{"term": es.H{"site": q.Site}})
	}
	if q.Title != "" {
		filters = append(filters, es.H{"match": es.H{"title": es.H{"query": q.Title, "operator": "AND"}}})
	}

	sorts := []es.H{{"createTime": es.H{"order": "desc"}}}

	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.InitiativeIndexName, es.H{"size": 10000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	initiatives := make([]domain.Initiative, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		i := domain.Initiative{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&i); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		initiatives = append(initiatives, i)
	}

	return initiatives, nil
}
