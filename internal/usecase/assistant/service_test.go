package assistant

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/okulbul/okulbul/internal/domain"
	"github.com/okulbul/okulbul/internal/domain/search/request"
	"github.com/okulbul/okulbul/internal/domain/search/result"
)

type mockExtractor struct {
	extractFn func(ctx context.Context, utterance string) (domain.SearchCriteria, error)
	gotUtter  string
}

func (m *mockExtractor) Extract(ctx context.Context, utterance string) (domain.SearchCriteria, error) {
	m.gotUtter = utterance
	return m.extractFn(ctx, utterance)
}

type mockSearcher struct {
	searchFn func(ctx context.Context, req *request.Request) (result.Page, error)
	gotReq   *request.Request
}

func (m *mockSearcher) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	m.gotReq = req
	if m.searchFn == nil {
		return result.Page{}, nil
	}
	return m.searchFn(ctx, req)
}

func fullCriteria() domain.SearchCriteria {
	fee := 10000.0
	return domain.SearchCriteria{
		InstitutionTypeName: "Anaokulu",
		ProvinceName:        "İstanbul",
		DistrictName:        "Kadıköy",
		PropertyNames:       []string{"Servis"},
		MaxFee:              &fee,
	}
}

func TestAsk_NoExtractorConfigured(t *testing.T) {
	svc := New(nil, &mockSearcher{}, request.Bounds{}, zap.NewNop())

	_, _, err := svc.Ask(context.Background(), "istanbulda anaokulu")
	if !errors.Is(err, domain.ErrAssistantUnavailable) {
		t.Fatalf("expected ErrAssistantUnavailable, got %v", err)
	}
}

func TestAsk_EmptyUtterance(t *testing.T) {
	ext := &mockExtractor{extractFn: func(context.Context, string) (domain.SearchCriteria, error) {
		t.Fatal("extractor must not be called")
		return domain.SearchCriteria{}, nil
	}}
	svc := New(ext, &mockSearcher{}, request.Bounds{}, zap.NewNop())

	for _, utterance := range []string{"", "   ", "\n\t"} {
		_, _, err := svc.Ask(context.Background(), utterance)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("utterance %q: expected ErrInvalidRequest, got %v", utterance, err)
		}
	}
}

func TestAsk_UtteranceTooLong(t *testing.T) {
	ext := &mockExtractor{extractFn: func(context.Context, string) (domain.SearchCriteria, error) {
		t.Fatal("extractor must not be called")
		return domain.SearchCriteria{}, nil
	}}
	svc := New(ext, &mockSearcher{}, request.Bounds{}, zap.NewNop())

	_, _, err := svc.Ask(context.Background(), strings.Repeat("a", MaxUtteranceLength+1))
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestAsk_UtteranceTrimmedBeforeExtraction(t *testing.T) {
	ext := &mockExtractor{extractFn: func(context.Context, string) (domain.SearchCriteria, error) {
		return fullCriteria(), nil
	}}
	svc := New(ext, &mockSearcher{}, request.Bounds{}, zap.NewNop())

	if _, _, err := svc.Ask(context.Background(), "  kadıköyde servisli anaokulu  "); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if ext.gotUtter != "kadıköyde servisli anaokulu" {
		t.Errorf("extractor received %q", ext.gotUtter)
	}
}

func TestAsk_IncompleteCriteria(t *testing.T) {
	tests := []struct {
		name     string
		criteria domain.SearchCriteria
	}{
		{"missing both", domain.SearchCriteria{}},
		{"missing province", domain.SearchCriteria{InstitutionTypeName: "Anaokulu"}},
		{"missing type", domain.SearchCriteria{ProvinceName: "İstanbul"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &mockExtractor{extractFn: func(context.Context, string) (domain.SearchCriteria, error) {
				return tt.criteria, nil
			}}
			svc := New(ext, &mockSearcher{}, request.Bounds{}, zap.NewNop())

			_, criteria, err := svc.Ask(context.Background(), "okul arıyorum")
			if !errors.Is(err, domain.ErrCriteriaIncomplete) {
				t.Fatalf("expected ErrCriteriaIncomplete, got %v", err)
			}
			// The partial criteria come back so the caller can prompt for
			// the missing piece.
			if !reflect.DeepEqual(criteria, tt.criteria) {
				t.Errorf("criteria = %+v, want %+v", criteria, tt.criteria)
			}
		})
	}
}

func TestAsk_ExtractorError(t *testing.T) {
	extractErr := errors.New("provider timeout")
	ext := &mockExtractor{extractFn: func(context.Context, string) (domain.SearchCriteria, error) {
		return domain.SearchCriteria{}, extractErr
	}}
	svc := New(ext, &mockSearcher{}, request.Bounds{}, zap.NewNop())

	_, _, err := svc.Ask(context.Background(), "istanbulda anaokulu")
	if !errors.Is(err, extractErr) {
		t.Fatalf("expected wrapped extractor error, got %v", err)
	}
}

func TestAsk_BuildsNameModeRequest(t *testing.T) {
	ext := &mockExtractor{extractFn: func(context.Context, string) (domain.SearchCriteria, error) {
		return fullCriteria(), nil
	}}
	searcher := &mockSearcher{searchFn: func(context.Context, *request.Request) (result.Page, error) {
		return result.Page{Total: 3, SnapshotVersion: 2}, nil
	}}
	svc := New(ext, searcher, request.Bounds{}, zap.NewNop())

	page, criteria, err := svc.Ask(context.Background(), "kadıköyde servisli anaokulu")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if page.Total != 3 || page.SnapshotVersion != 2 {
		t.Errorf("page = %+v", page)
	}
	if criteria.InstitutionTypeName != "Anaokulu" {
		t.Errorf("criteria = %+v", criteria)
	}

	req := searcher.gotReq
	if req == nil {
		t.Fatal("searcher not called")
	}
	if req.Mode() != request.ByName {
		t.Errorf("mode = %s", req.Mode())
	}
	if req.TypeName() != "anaokulu" || req.ProvinceName() != "istanbul" {
		t.Errorf("locator = %q/%q", req.TypeName(), req.ProvinceName())
	}
	if req.DistrictName() != "kadıköy" {
		t.Errorf("district = %q", req.DistrictName())
	}
	if names := req.PropertyNames(); len(names) != 1 || names[0] != "servis" {
		t.Errorf("property names = %v", names)
	}
	if req.MaxFee() == nil || *req.MaxFee() != 10000 {
		t.Errorf("maxFee = %v", req.MaxFee())
	}
}

func TestAsk_InvalidCriteriaRanges(t *testing.T) {
	minFee, maxFee := 20000.0, 5000.0
	ext := &mockExtractor{extractFn: func(context.Context, string) (domain.SearchCriteria, error) {
		return domain.SearchCriteria{
			InstitutionTypeName: "Anaokulu",
			ProvinceName:        "İstanbul",
			MinFee:              &minFee,
			MaxFee:              &maxFee,
		}, nil
	}}
	svc := New(ext, &mockSearcher{}, request.Bounds{}, zap.NewNop())

	_, criteria, err := svc.Ask(context.Background(), "anaokulu")
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if criteria.InstitutionTypeName != "Anaokulu" {
		t.Errorf("criteria = %+v", criteria)
	}
}

func TestAsk_SearchErrorPropagates(t *testing.T) {
	ext := &mockExtractor{extractFn: func(context.Context, string) (domain.SearchCriteria, error) {
		return fullCriteria(), nil
	}}
	searcher := &mockSearcher{searchFn: func(context.Context, *request.Request) (result.Page, error) {
		return result.Page{}, domain.ErrSnapshotUnavailable
	}}
	svc := New(ext, searcher, request.Bounds{}, zap.NewNop())

	_, _, err := svc.Ask(context.Background(), "anaokulu istanbul")
	if !errors.Is(err, domain.ErrSnapshotUnavailable) {
		t.Fatalf("expected ErrSnapshotUnavailable, got %v", err)
	}
}
