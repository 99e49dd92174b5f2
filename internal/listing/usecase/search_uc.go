package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/servilocal/listing-service/internal/listing/domain"
	"go.uber.org/zap"
)

const (
	DefaultPortalLimit = 18
	MaxPortalLimit     = 48
)

// SearchUseCase produces the externally visible orderings: the promoted-first
// portal view and the tier-ranked general search. Both run an advisory expiry
// sweep first; a failed sweep is logged and the read proceeds against
// possibly stale but safe promotion state.
type SearchUseCase struct {
	repo    domain.ListingRepository
	sweeper PromotionSweeper
	logger  *zap.Logger
	now     func() time.Time
}

func NewSearchUseCase(repo domain.ListingRepository, sweeper PromotionSweeper, logger *zap.Logger) *SearchUseCase {
	return &SearchUseCase{
		repo:    repo,
		sweeper: sweeper,
		logger:  logger,
		now:     time.Now,
	}
}

// Search runs a filtered, ranked listing query. The "mine" scope requires a
// verified identity and short-circuits before touching the store.
func (uc *SearchUseCase) Search(ctx context.Context, filter domain.SearchFilter) (*domain.SearchResult, error) {
	filter.Normalize()
	if filter.Scope == domain.ScopeMine && filter.OwnerEmail == "" {
		return nil, domain.ErrAuthenticationRequired
	}

	uc.sweep(ctx)

	result, err := uc.repo.Search(ctx, filter)
	if err != nil {
		uc.logger.Error("Listing search failed", zap.Error(err))
		return nil, fmt.Errorf("SearchUseCase.Search: %w", err)
	}
	return result, nil
}

// Portal returns up to limit listings for the home view: portal-promoted
// listings first, most recently (re)promoted on top, then active non-promoted
// listings by recency, with no duplicate ids across the two groups.
func (uc *SearchUseCase) Portal(ctx context.Context, limit int) ([]*domain.Listing, error) {
	if limit <= 0 {
		limit = DefaultPortalLimit
	}
	if limit > MaxPortalLimit {
		limit = MaxPortalLimit
	}

	uc.sweep(ctx)

	promoted, err := uc.repo.FindPortalPromoted(ctx, uc.now(), limit)
	if err != nil {
		uc.logger.Error("Portal promoted lookup failed", zap.Error(err))
		return nil, fmt.Errorf("SearchUseCase.Portal: %w", err)
	}

	remaining := limit - len(promoted)
	if remaining <= 0 {
		return promoted, nil
	}

	exclude := make([]string, 0, len(promoted))
	for _, l := range promoted {
		exclude = append(exclude, l.ID)
	}
	fill, err := uc.repo.FindActiveFill(ctx, remaining, exclude)
	if err != nil {
		uc.logger.Error("Portal fill lookup failed", zap.Error(err))
		return nil, fmt.Errorf("SearchUseCase.Portal: %w", err)
	}
	return append(promoted, fill...), nil
}

// sweep is advisory cleanup, not a hard dependency of the read it precedes.
func (uc *SearchUseCase) sweep(ctx context.Context) {
	if uc.sweeper == nil {
		return
	}
	if _, err := uc.sweeper.SweepExpired(ctx); err != nil {
		uc.logger.Warn("Promotion sweep failed; serving possibly stale promotion state", zap.Error(err))
	}
}
