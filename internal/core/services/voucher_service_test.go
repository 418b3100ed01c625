package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	portssvc "github.com/SscSPs/tally_ledger_store/internal/core/ports/services"
	"github.com/SscSPs/tally_ledger_store/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type VoucherServiceTestSuite struct {
	suite.Suite
	mockVoucherRepo *MockVoucherRepository
	service         portssvc.VoucherSvc
	ctx             context.Context
	tenant          domain.Tenant
}

func (suite *VoucherServiceTestSuite) SetupTest() {
	suite.mockVoucherRepo = new(MockVoucherRepository)
	suite.service = services.NewVoucherService(suite.mockVoucherRepo, decimal.RequireFromString("0.01"))
	suite.ctx = context.Background()
	suite.tenant = domain.Tenant{UserID: "u1", CompanyName: "Acme Traders"}
}

func TestVoucherServiceSuite(t *testing.T) {
	suite.Run(t, new(VoucherServiceTestSuite))
}

func cashSale(guid string, debit, credit string) domain.VoucherBatch {
	return domain.VoucherBatch{
		Header: domain.Voucher{
			GUID:                guid,
			Date:                domain.NewDate(2024, 4, 1),
			VoucherType:         "Sales",
			PartyName:           "Cash",
			PlaceOfSupply:       "Karnataka",
			IsAccountingVoucher: true,
		},
		Accounting: []domain.AccountingLeg{
			{Ledger: "Cash", Amount: decimal.RequireFromString(debit)},
			{Ledger: "Sales", Amount: decimal.RequireFromString(credit)},
		},
	}
}

func (suite *VoucherServiceTestSuite) TestCommitVoucher_Balanced() {
	batch := cashSale("L1", "-1000", "1000")
	suite.mockVoucherRepo.On("ReplaceVoucher", suite.ctx, suite.tenant, mock.MatchedBy(func(b domain.VoucherBatch) bool {
		// legs arrive bound to the header guid
		for _, leg := range b.Accounting {
			if leg.GUID != "L1" {
				return false
			}
		}
		return b.Header.GUID == "L1"
	})).Return(true, nil).Once()

	result, err := suite.service.CommitVoucher(suite.ctx, suite.tenant, batch)

	suite.Require().NoError(err)
	suite.Equal("L1", result.GUID)
	suite.True(result.Inserted)
	suite.Equal(map[string]int{domain.TableAccounting: 2}, result.Legs)
	suite.mockVoucherRepo.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestCommitVoucher_WithinEpsilon() {
	batch := cashSale("L2", "-1000.01", "1000")
	suite.mockVoucherRepo.On("ReplaceVoucher", suite.ctx, suite.tenant, mock.AnythingOfType("domain.VoucherBatch")).Return(false, nil).Once()

	result, err := suite.service.CommitVoucher(suite.ctx, suite.tenant, batch)

	suite.Require().NoError(err)
	suite.False(result.Inserted)
}

func (suite *VoucherServiceTestSuite) TestCommitVoucher_ImbalancedWritesNothing() {
	batch := cashSale("V2", "-1000", "990")

	_, err := suite.service.CommitVoucher(suite.ctx, suite.tenant, batch)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrImbalanced)
	var imbalanced *apperrors.ImbalancedVoucherError
	suite.Require().True(errors.As(err, &imbalanced))
	suite.Equal("V2", imbalanced.GUID)
	suite.True(imbalanced.Sum.Equal(decimal.NewFromInt(-10)))
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "ReplaceVoucher", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestCommitVoucher_MissingHeaderField() {
	cases := []struct {
		field  string
		mutate func(*domain.Voucher)
	}{
		{"guid", func(v *domain.Voucher) { v.GUID = "" }},
		{"date", func(v *domain.Voucher) { v.Date = domain.Date{} }},
		{"party_name", func(v *domain.Voucher) { v.PartyName = " " }},
		{"place_of_supply", func(v *domain.Voucher) { v.PlaceOfSupply = "" }},
	}
	for _, tc := range cases {
		suite.Run(tc.field, func() {
			batch := cashSale("V3", "-5", "5")
			tc.mutate(&batch.Header)

			_, err := suite.service.CommitVoucher(suite.ctx, suite.tenant, batch)

			var missing *apperrors.MissingHeaderFieldError
			suite.Require().True(errors.As(err, &missing))
			suite.Equal(tc.field, missing.Field)
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "ReplaceVoucher", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestCommitVoucher_ForeignLegGUID() {
	batch := cashSale("V4", "-5", "5")
	batch.Accounting[1].GUID = "V9"

	_, err := suite.service.CommitVoucher(suite.ctx, suite.tenant, batch)

	suite.ErrorIs(err, apperrors.ErrOrphanLeg)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "ReplaceVoucher", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestCommitVoucher_LegMissingRequiredColumn() {
	batch := cashSale("V5", "-5", "5")
	batch.Accounting[0].Ledger = ""

	_, err := suite.service.CommitVoucher(suite.ctx, suite.tenant, batch)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *VoucherServiceTestSuite) TestCommitVoucher_InventoryAmountMismatch() {
	batch := cashSale("V6", "-60", "60")
	batch.Header.IsInventoryVoucher = true
	batch.Inventory = []domain.InventoryLeg{{
		Item:     "Widget",
		Quantity: decimal.NewFromInt(-10),
		Rate:     decimal.NewFromInt(5),
		Amount:   decimal.NewFromInt(60),
	}}

	_, err := suite.service.CommitVoucher(suite.ctx, suite.tenant, batch)

	var verr *apperrors.ValidationError
	suite.Require().True(errors.As(err, &verr))
	suite.Equal("amount", verr.Field)
}

func (suite *VoucherServiceTestSuite) TestCommitVoucher_RepositoryError() {
	batch := cashSale("V7", "-5", "5")
	storageErr := apperrors.NewStorageError("replace voucher", errors.New("connection reset"))
	suite.mockVoucherRepo.On("ReplaceVoucher", suite.ctx, suite.tenant, mock.AnythingOfType("domain.VoucherBatch")).Return(false, storageErr).Once()

	_, err := suite.service.CommitVoucher(suite.ctx, suite.tenant, batch)

	suite.ErrorIs(err, apperrors.ErrStorage)
	suite.mockVoucherRepo.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestCommitVoucher_InvalidTenant() {
	_, err := suite.service.CommitVoucher(suite.ctx, domain.Tenant{UserID: "u1"}, cashSale("V8", "-5", "5"))

	suite.ErrorIs(err, apperrors.ErrValidation)
}
