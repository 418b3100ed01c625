package services

import (
	"context"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// RateWriterSvc defines write operations on the rate timelines
type RateWriterSvc interface {
	InsertRate(ctx context.Context, tenant domain.Tenant, fact domain.RateFact) error
}

// RateReaderSvc defines read operations on the rate timelines
type RateReaderSvc interface {
	// EffectiveRate returns the fact in force on asOf. The bool is false
	// when the item has no fact dated on or before asOf.
	EffectiveRate(ctx context.Context, tenant domain.Tenant, kind domain.RateKind, item string, asOf domain.Date) (*domain.RateFact, bool, error)
}

// RateSvcFacade combines all rate service interfaces
type RateSvcFacade interface {
	RateWriterSvc
	RateReaderSvc
}
