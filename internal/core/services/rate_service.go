package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
)

// rateService keeps the GST, standard cost and standard price timelines.
type rateService struct {
	BaseService
	rateRepo portsrepo.RateRepositoryFacade
	policy   domain.DuplicatePolicy
}

// NewRateService creates a rate service applying policy to repeated (item, date) facts.
func NewRateService(repo portsrepo.RateRepositoryFacade, policy domain.DuplicatePolicy) portssvc.RateSvcFacade {
	if policy == "" {
		policy = domain.DuplicateKeepLast
	}
	return &rateService{rateRepo: repo, policy: policy}
}

var _ portssvc.RateSvcFacade = (*rateService)(nil)

func (s *rateService) InsertRate(ctx context.Context, tenant domain.Tenant, fact domain.RateFact) error {
	if err := s.ValidateTenant(tenant); err != nil {
		return err
	}
	if err := s.ValidateStruct(fact, fact.Kind.Table(), fact.Item); err != nil {
		return err
	}
	_, values, err := fact.Row()
	if err != nil {
		return err
	}

	if err := s.rateRepo.InsertRate(ctx, tenant, fact.Kind, fact.Item, fact.Date, values, s.policy); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to insert rate",
				slog.String("kind", string(fact.Kind)),
				slog.String("item", fact.Item),
				slog.String("date", fact.Date.String()))
		}
		return err
	}
	return nil
}

func (s *rateService) EffectiveRate(ctx context.Context, tenant domain.Tenant, kind domain.RateKind, item string, asOf domain.Date) (*domain.RateFact, bool, error) {
	if err := s.ValidateTenant(tenant); err != nil {
		return nil, false, err
	}
	if !kind.Valid() {
		return nil, false, apperrors.NewValidationError("", item, "kind", fmt.Sprintf("unknown rate kind %q", kind))
	}
	if item == "" {
		return nil, false, apperrors.NewValidationError(kind.Table(), "", "item", "is required")
	}
	if asOf.IsZero() {
		return nil, false, apperrors.NewValidationError(kind.Table(), item, "as_of", "is required")
	}

	fact, err := s.rateRepo.FindEffectiveRate(ctx, tenant, kind, item, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, nil
		}
		s.LogError(ctx, err, "Failed to find effective rate",
			slog.String("kind", string(kind)),
			slog.String("item", item))
		return nil, false, err
	}
	return fact, true, nil
}
