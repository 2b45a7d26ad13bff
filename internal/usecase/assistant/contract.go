package assistant

import (
	"context"

	"github.com/okulbul/okulbul/internal/domain"
	"github.com/okulbul/okulbul/internal/domain/search/request"
	"github.com/okulbul/okulbul/internal/domain/search/result"
)

// CriteriaExtractor turns one utterance into name-mode criteria.
type CriteriaExtractor interface {
	Extract(ctx context.Context, utterance string) (domain.SearchCriteria, error)
}

// Searcher executes validated requests.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
}
