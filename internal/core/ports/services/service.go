package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Master       MasterSvcFacade
	Rate         RateSvcFacade
	Voucher      VoucherSvc
	Opening      OpeningSvc
	ClosingStock ClosingStockSvcFacade
	Diagnostics  DiagnosticsSvc
	Sync         SyncSvc
}
