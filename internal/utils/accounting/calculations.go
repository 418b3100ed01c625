package accounting

import (
	"fmt"

	"github.com/SscSPs/tally_ledger_store/internal/apperrors"
	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultEpsilon is the rounding tolerance applied to balance checks.
var DefaultEpsilon = decimal.NewFromFloat(0.01)

// WithinEpsilon reports whether |v| <= epsilon.
func WithinEpsilon(v, epsilon decimal.Decimal) bool {
	return v.Abs().LessThanOrEqual(epsilon)
}

// SumAccounting adds the signed amounts of the accounting legs. Debits are
// negative and credits positive, so a balanced voucher sums to zero.
func SumAccounting(legs []domain.AccountingLeg) decimal.Decimal {
	sum := decimal.Zero
	for _, leg := range legs {
		sum = sum.Add(leg.Amount)
	}
	return sum
}

// ValidateVoucherBalance checks the double-entry rule for one voucher.
func ValidateVoucherBalance(guid string, legs []domain.AccountingLeg, epsilon decimal.Decimal) error {
	sum := SumAccounting(legs)
	if !WithinEpsilon(sum, epsilon) {
		return &apperrors.ImbalancedVoucherError{GUID: guid, Sum: sum}
	}
	return nil
}

// ExpectedInventoryAmount is |quantity|*rate + additional - discount.
func ExpectedInventoryAmount(leg domain.InventoryLeg) decimal.Decimal {
	return leg.Quantity.Abs().Mul(leg.Rate).Add(leg.AdditionalAmount).Sub(leg.DiscountAmount)
}

// ReconcileInventoryLeg checks a leg's amount against its quantity and rate.
// Legs without a rate carry a value only and always reconcile.
func ReconcileInventoryLeg(leg domain.InventoryLeg, epsilon decimal.Decimal) error {
	if leg.Rate.IsZero() {
		return nil
	}
	expected := ExpectedInventoryAmount(leg)
	if !WithinEpsilon(leg.Amount.Abs().Sub(expected.Abs()), epsilon) {
		return apperrors.NewValidationError(domain.TableInventory, leg.GUID, "amount",
			fmt.Sprintf("item %s: amount %s does not match quantity %s at rate %s (expected %s)",
				leg.Item, leg.Amount, leg.Quantity, leg.Rate, expected))
	}
	return nil
}

// ValidateInventory reconciles every inventory leg of an inventory voucher.
func ValidateInventory(batch domain.VoucherBatch, epsilon decimal.Decimal) error {
	if !batch.Header.IsInventoryVoucher {
		return nil
	}
	for _, leg := range batch.Inventory {
		if err := ReconcileInventoryLeg(leg, epsilon); err != nil {
			return err
		}
	}
	return nil
}

// InventoryBridge compares the absolute inventory total with the absolute
// total of the inventory-accounting rows. ok is false when the voucher
// carries no bridge rows.
func InventoryBridge(inventory []domain.InventoryLeg, bridge []domain.InventoryAccountingLeg) (inventoryTotal, bridgeTotal decimal.Decimal, ok bool) {
	if len(bridge) == 0 || len(inventory) == 0 {
		return decimal.Zero, decimal.Zero, false
	}
	inventoryTotal, bridgeTotal = decimal.Zero, decimal.Zero
	for _, leg := range inventory {
		inventoryTotal = inventoryTotal.Add(leg.Amount)
	}
	for _, leg := range bridge {
		bridgeTotal = bridgeTotal.Add(leg.Amount)
	}
	return inventoryTotal.Abs(), bridgeTotal.Abs(), true
}

// ValidateVoucher runs the balance and inventory checks in order.
func ValidateVoucher(batch domain.VoucherBatch, epsilon decimal.Decimal) error {
	if err := ValidateVoucherBalance(batch.Header.GUID, batch.Accounting, epsilon); err != nil {
		return err
	}
	return ValidateInventory(batch, epsilon)
}
