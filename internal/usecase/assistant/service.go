// Package assistant is the intake path for conversational search: one
// utterance in, one name-mode search out. The dialogue state machine that
// decides when criteria are sufficient lives with the assistant itself; this
// service treats its output as a regular name-mode request and validates it
// like any other.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/okulbul/okulbul/internal/domain"
	"github.com/okulbul/okulbul/internal/domain/search/request"
	"github.com/okulbul/okulbul/internal/domain/search/result"
)

// MaxUtteranceLength bounds the extractor input.
const MaxUtteranceLength = 2048

// Service wires the criteria extractor to the query engine.
type Service struct {
	extractor CriteriaExtractor
	search    Searcher
	bounds    request.Bounds
	logger    *zap.Logger
}

// New creates an assistant service. extractor may be nil when no provider is
// configured; Ask then fails with domain.ErrAssistantUnavailable.
func New(extractor CriteriaExtractor, search Searcher, bounds request.Bounds, logger *zap.Logger) *Service {
	return &Service{extractor: extractor, search: search, bounds: bounds, logger: logger}
}

// Ask extracts criteria from one utterance and runs the resulting name-mode
// search. Criteria missing the required locator pair fail with
// domain.ErrCriteriaIncomplete rather than an invalid-request error, so the
// caller can prompt the parent for the missing piece.
func (s *Service) Ask(ctx context.Context, utterance string) (result.Page, domain.SearchCriteria, error) {
	if s.extractor == nil {
		return result.Page{}, domain.SearchCriteria{}, domain.ErrAssistantUnavailable
	}
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return result.Page{}, domain.SearchCriteria{}, fmt.Errorf("%w: utterance is required", domain.ErrInvalidRequest)
	}
	if len(utterance) > MaxUtteranceLength {
		return result.Page{}, domain.SearchCriteria{}, fmt.Errorf("%w: utterance too long (max %d chars)",
			domain.ErrInvalidRequest, MaxUtteranceLength)
	}

	criteria, err := s.extractor.Extract(ctx, utterance)
	if err != nil {
		return result.Page{}, domain.SearchCriteria{}, fmt.Errorf("extract criteria: %w", err)
	}
	if criteria.InstitutionTypeName == "" || criteria.ProvinceName == "" {
		return result.Page{}, criteria, fmt.Errorf("%w: institution type and province are required",
			domain.ErrCriteriaIncomplete)
	}

	req, err := request.New(request.Params{
		InstitutionTypeName: criteria.InstitutionTypeName,
		ProvinceName:        criteria.ProvinceName,
		DistrictName:        criteria.DistrictName,
		PropertyNames:       criteria.PropertyNames,
		MinFee:              criteria.MinFee,
		MaxFee:              criteria.MaxFee,
		MinAge:              criteria.MinAge,
		MaxAge:              criteria.MaxAge,
	}, s.bounds)
	if err != nil {
		return result.Page{}, criteria, fmt.Errorf("build request from criteria: %w", err)
	}

	s.logger.Debug("assistant criteria extracted",
		zap.String("type", criteria.InstitutionTypeName),
		zap.String("province", criteria.ProvinceName),
	)

	page, err := s.search.Search(ctx, &req)
	if err != nil {
		return result.Page{}, criteria, err
	}
	return page, criteria, nil
}
