package service

import (
	"context"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

// SummaryService aggregates the caller's ledger. Income and expense are
// decided by category type; uncategorized rows count for neither.
type SummaryService interface {
	Summary(ctx context.Context, id domain.Identity, dates domain.DateRange) (domain.Summary, error)
	MonthlySummary(ctx context.Context, id domain.Identity) ([]domain.MonthlySummary, error)
}

type summaryService struct {
	summaries repository.SummaryRepository
}

func NewSummaryService(summaries repository.SummaryRepository) SummaryService {
	return &summaryService{summaries: summaries}
}

func (s *summaryService) Summary(ctx context.Context, id domain.Identity, dates domain.DateRange) (domain.Summary, error) {
	if err := validateRange(dates); err != nil {
		return domain.Summary{}, err
	}
	summary, err := s.summaries.Totals(ctx, id.UserID, dates)
	if err != nil {
		return domain.Summary{}, translate(err)
	}
	return summary, nil
}

func (s *summaryService) MonthlySummary(ctx context.Context, id domain.Identity) ([]domain.MonthlySummary, error) {
	months, err := s.summaries.Monthly(ctx, id.UserID)
	if err != nil {
		return nil, translate(err)
	}
	return months, nil
}
