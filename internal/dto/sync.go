package dto

import (
	"time"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// SyncAllRequest carries one batch per tenant.
type SyncAllRequest struct {
	Batches []domain.SyncBatch `json:"batches" binding:"required,min=1"`
}

// SyncReportResponse is the outcome of one sync run.
type SyncReportResponse struct {
	RunID          string                         `json:"run_id"`
	UserID         string                         `json:"user_id"`
	CompanyName    string                         `json:"company_name"`
	StartedAt      time.Time                      `json:"started_at"`
	FinishedAt     time.Time                      `json:"finished_at"`
	Cancelled      bool                           `json:"cancelled"`
	FailedRecords  int                            `json:"failed_records"`
	HierarchyClean bool                           `json:"hierarchy_clean"`
	Counts         map[string]*domain.TableCounts `json:"counts"`
	Errors         []domain.RecordError           `json:"errors"`
	Hierarchy      *domain.HierarchyReport        `json:"hierarchy,omitempty"`
}

// ToSyncReportResponse converts a domain.SyncReport to its response DTO.
func ToSyncReportResponse(r *domain.SyncReport) SyncReportResponse {
	errs := r.Errors
	if errs == nil {
		errs = []domain.RecordError{}
	}
	return SyncReportResponse{
		RunID:          r.RunID,
		UserID:         r.Tenant.UserID,
		CompanyName:    r.Tenant.CompanyName,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		Cancelled:      r.Cancelled,
		FailedRecords:  r.Failed(),
		HierarchyClean: r.Hierarchy.Clean(),
		Counts:         r.Counts,
		Errors:         errs,
		Hierarchy:      r.Hierarchy,
	}
}

// SyncAllResponse lists the reports of a multi-tenant run in request order.
type SyncAllResponse struct {
	Reports []*SyncReportResponse `json:"reports"`
	Error   string                `json:"error,omitempty"`
}

// ToSyncAllResponse converts the reports of RunAll. Tenants that failed
// before a report was started are returned as null.
func ToSyncAllResponse(reports []*domain.SyncReport, err error) SyncAllResponse {
	res := SyncAllResponse{Reports: make([]*SyncReportResponse, len(reports))}
	for i, r := range reports {
		if r == nil {
			continue
		}
		converted := ToSyncReportResponse(r)
		res.Reports[i] = &converted
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
