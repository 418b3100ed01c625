package pgsql

import (
	portsrepo "github.com/SscSPs/tally_ledger_store/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		MasterRepo:       newPgxMasterRepository(dbPool),
		RateRepo:         newPgxRateRepository(dbPool),
		VoucherRepo:      newPgxVoucherRepository(dbPool),
		OpeningRepo:      newPgxOpeningRepository(dbPool),
		ClosingStockRepo: newPgxClosingStockRepository(dbPool),
		DiagnosticsRepo:  newPgxDiagnosticsRepository(dbPool),
	}
}
