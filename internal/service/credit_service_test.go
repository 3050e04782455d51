package service_test

import (
	"context"
	"testing"

	"agartpos/internal/dto"
	"agartpos/internal/model"
	"agartpos/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCreditFixture() (*stubCustomerRepo, *stubCreditLedgerRepo, service.CreditService) {
	customers := newStubCustomerRepo()
	ledger := &stubCreditLedgerRepo{}
	return customers, ledger, service.NewCreditService(customers, ledger)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestChargeWithinLimit(t *testing.T) {
	customers, ledger, svc := newCreditFixture()
	c := customers.add(&model.Customer{
		Name:        "Daw Mya",
		CreditLimit: dec("100"),
		Balance:     dec("80"),
		Active:      true,
	})

	entry, err := svc.ChargeTx(nil, c.ID, dec("15"), nil, nil, "Sale #1")
	require.NoError(t, err)

	assert.Equal(t, model.CreditKindCharge, entry.Kind)
	assert.True(t, entry.Amount.Equal(dec("15")))
	assert.True(t, entry.BalanceAfter.Equal(dec("95")))

	got, _ := customers.FindByID(context.Background(), c.ID)
	assert.True(t, got.Balance.Equal(dec("95")))
	assert.Len(t, ledger.entries, 1)
}

func TestChargeExceedingLimitRejected(t *testing.T) {
	customers, ledger, svc := newCreditFixture()
	c := customers.add(&model.Customer{
		Name:        "Daw Mya",
		CreditLimit: dec("100"),
		Balance:     dec("80"),
		Active:      true,
	})

	_, err := svc.ChargeTx(nil, c.ID, dec("30"), nil, nil, "Sale #2")

	var limitErr *service.CreditLimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, "Daw Mya", limitErr.CustomerName)
	assert.True(t, limitErr.Limit.Equal(dec("100")))
	assert.True(t, limitErr.NewBalance.Equal(dec("110")))

	// Nothing written.
	got, _ := customers.FindByID(context.Background(), c.ID)
	assert.True(t, got.Balance.Equal(dec("80")))
	assert.Empty(t, ledger.entries)
}

func TestZeroLimitMeansUnlimited(t *testing.T) {
	customers, _, svc := newCreditFixture()
	c := customers.add(&model.Customer{
		Name:        "U Ba",
		CreditLimit: decimal.Zero,
		Balance:     dec("5000"),
		Active:      true,
	})

	_, err := svc.ChargeTx(nil, c.ID, dec("9999"), nil, nil, "Sale #3")
	require.NoError(t, err)

	got, _ := customers.FindByID(context.Background(), c.ID)
	assert.True(t, got.Balance.Equal(dec("14999")))
}

func TestRepaymentCappedToOutstanding(t *testing.T) {
	customers, ledger, svc := newCreditFixture()
	c := customers.add(&model.Customer{
		Name:        "Daw Mya",
		CreditLimit: dec("100"),
		Balance:     dec("95"),
		Active:      true,
	})

	// Full repayment drives the balance to zero.
	resp, err := svc.Repay(context.Background(), c.ID, dto.RepaymentRequest{Amount: dec("95")}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Customer.Balance.Equal(decimal.Zero))
	require.Len(t, ledger.entries, 1)
	assert.Equal(t, model.CreditKindRepayment, ledger.entries[0].Kind)
	assert.True(t, ledger.entries[0].Amount.Equal(dec("-95")))
	assert.True(t, ledger.entries[0].BalanceAfter.Equal(decimal.Zero))

	// A further repayment has nothing to settle: no entry, balance stays zero.
	resp, err = svc.Repay(context.Background(), c.ID, dto.RepaymentRequest{Amount: dec("50")}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Customer.Balance.Equal(decimal.Zero))
	assert.Len(t, ledger.entries, 1)
}

func TestOverpaymentClampsAtZero(t *testing.T) {
	customers, ledger, svc := newCreditFixture()
	c := customers.add(&model.Customer{
		Name:        "Ko Zaw",
		CreditLimit: dec("200"),
		Balance:     dec("40"),
		Active:      true,
	})

	resp, err := svc.Repay(context.Background(), c.ID, dto.RepaymentRequest{Amount: dec("100")}, nil)
	require.NoError(t, err)

	// Only the outstanding 40 is applied.
	assert.True(t, resp.Customer.Balance.Equal(decimal.Zero))
	require.Len(t, ledger.entries, 1)
	assert.True(t, ledger.entries[0].Amount.Equal(dec("-40")))
}

func TestBalanceSnapshotsComeFromLockingRead(t *testing.T) {
	customers, ledger, svc := newCreditFixture()
	c := customers.add(&model.Customer{
		Name:        "Daw Mya",
		CreditLimit: dec("500"),
		Balance:     decimal.Zero,
		Active:      true,
	})

	_, err := svc.ChargeTx(nil, c.ID, dec("30"), nil, nil, "Sale #5")
	require.NoError(t, err)
	assert.Equal(t, 1, customers.lockedReads, "charge must read the balance under a row lock")

	_, err = svc.Repay(context.Background(), c.ID, dto.RepaymentRequest{Amount: dec("10")}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, customers.lockedReads, "repayment must read the balance under a row lock")

	// With the row locked for the duration of each write, every snapshot
	// chains off the previous one.
	require.Len(t, ledger.entries, 2)
	assert.True(t, ledger.entries[0].BalanceAfter.Equal(dec("30")))
	assert.True(t, ledger.entries[1].BalanceAfter.Equal(dec("20")))
}

func TestLedgerSumMatchesBalance(t *testing.T) {
	customers, ledger, svc := newCreditFixture()
	c := customers.add(&model.Customer{
		Name:        "Daw Mya",
		CreditLimit: dec("500"),
		Balance:     decimal.Zero,
		Active:      true,
	})

	_, err := svc.ChargeTx(nil, c.ID, dec("120"), nil, nil, "Sale #10")
	require.NoError(t, err)
	_, err = svc.ChargeTx(nil, c.ID, dec("80"), nil, nil, "Sale #11")
	require.NoError(t, err)
	_, err = svc.Repay(context.Background(), c.ID, dto.RepaymentRequest{Amount: dec("50")}, nil)
	require.NoError(t, err)

	sum, err := ledger.SumByCustomer(context.Background(), c.ID)
	require.NoError(t, err)
	got, _ := customers.FindByID(context.Background(), c.ID)
	assert.True(t, sum.Equal(got.Balance), "ledger sum %s != balance %s", sum, got.Balance)
	assert.True(t, got.Balance.Equal(dec("150")))
}

func TestStatementListsJournal(t *testing.T) {
	customers, _, svc := newCreditFixture()
	c := customers.add(&model.Customer{
		Name:        "Daw Mya",
		CreditLimit: dec("500"),
		Balance:     decimal.Zero,
		Active:      true,
	})

	_, err := svc.ChargeTx(nil, c.ID, dec("60"), nil, nil, "Sale #20")
	require.NoError(t, err)
	_, err = svc.Repay(context.Background(), c.ID, dto.RepaymentRequest{Amount: dec("25"), Note: "partial"}, nil)
	require.NoError(t, err)

	stmt, err := svc.Statement(context.Background(), c.ID, 1, 50)
	require.NoError(t, err)
	assert.Len(t, stmt.Entries, 2)
	assert.True(t, stmt.Customer.Balance.Equal(dec("35")))
}
