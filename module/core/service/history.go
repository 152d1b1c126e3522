package service

import (
	"context"

	"github.com/petfence/petfence/module/core/domain"
	"github.com/petfence/petfence/module/core/internal/repository/database"
)

// HistoryService is the read side of the persistence sink.
type HistoryService struct {
	repo database.HistoryRepository
}

func NewHistoryService(repo database.HistoryRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

func (s *HistoryService) GetSampleHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationSample, error) {
	return s.repo.GetSampleHistory(ctx, query)
}

func (s *HistoryService) GetEvents(ctx context.Context, petID string) ([]domain.TransitionEvent, error) {
	return s.repo.GetEvents(ctx, petID)
}
