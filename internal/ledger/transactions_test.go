package ledger

import (
	"context"
	"testing"
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Totals come from catalog prices", func(t *testing.T) {
		f := setup(t)
		p := f.addProduct(t, "shop-a", 50, 10)

		req := cart(CartLine{ProductID: p.ID, Quantity: 2})
		req.ExtraCharges = []ChargeInput{{Title: "Delivery", Amount: dec(15)}}
		view, err := f.ledger.CreateTransaction(ctx, "shop-a", req)
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(115).Equal(view.TotalAmount), view.TotalAmount.String())
		assert.Equal(t, "shop-a", view.TenantID)
		assert.Regexp(t, `^TXN-\d+-[0-9a-f]{6}$`, view.TransactionID)
		require.Len(t, view.CartItems, 1)
		require.NotNil(t, view.CartItems[0].Product)
		assert.Equal(t, "Widget", view.CartItems[0].Product.Name)
		assert.Equal(t, 8, f.quantity(t, p.ID))

		require.Len(t, f.events.events, 1)
		assert.Equal(t, view.TransactionID, f.events.events[0].TransactionID)
	})

	t.Run("Repeated product lines each decrement stock", func(t *testing.T) {
		f := setup(t)
		p := f.addProduct(t, "shop-a", 10, 10)

		view, err := f.ledger.CreateTransaction(ctx, "shop-a", cart(
			CartLine{ProductID: p.ID, Quantity: 2},
			CartLine{ProductID: p.ID, Quantity: 3},
		))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(50).Equal(view.TotalAmount))
		assert.Equal(t, 5, f.quantity(t, p.ID))
	})

	t.Run("Overselling still succeeds", func(t *testing.T) {
		f := setup(t)
		p := f.addProduct(t, "shop-a", 10, 1)

		_, err := f.ledger.CreateTransaction(ctx, "shop-a", cart(CartLine{ProductID: p.ID, Quantity: 3}))
		require.NoError(t, err)
		assert.Equal(t, -2, f.quantity(t, p.ID))
	})

	t.Run("Unknown product stores nothing", func(t *testing.T) {
		f := setup(t)
		p := f.addProduct(t, "shop-a", 10, 10)

		_, err := f.ledger.CreateTransaction(ctx, "shop-a", cart(
			CartLine{ProductID: p.ID, Quantity: 1},
			CartLine{ProductID: "missing", Quantity: 1},
		))
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
		assert.Equal(t, "Product not found for ID: missing", apperr.Message(err))
		assert.Equal(t, 10, f.quantity(t, p.ID))

		list, err := f.ledger.ListTransactions(ctx, "shop-a")
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.Empty(t, f.events.events)
	})

	t.Run("Another tenant's product is not found", func(t *testing.T) {
		f := setup(t)
		p := f.addProduct(t, "shop-b", 10, 10)

		_, err := f.ledger.CreateTransaction(ctx, "shop-a", cart(CartLine{ProductID: p.ID, Quantity: 1}))
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
		assert.Equal(t, 10, f.quantity(t, p.ID))
	})

	t.Run("Stock failure on one line does not stop the others", func(t *testing.T) {
		f := setup(t)
		a := f.addProduct(t, "shop-a", 10, 10)
		b := f.addProduct(t, "shop-a", 20, 10)
		f.store.failAdjust[a.ID] = errBoom

		view, err := f.ledger.CreateTransaction(ctx, "shop-a", cart(
			CartLine{ProductID: a.ID, Quantity: 1},
			CartLine{ProductID: b.ID, Quantity: 4},
		))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(90).Equal(view.TotalAmount))
		assert.Equal(t, 10, f.quantity(t, a.ID))
		assert.Equal(t, 6, f.quantity(t, b.ID))

		stored, err := f.ledger.GetTransaction(ctx, "shop-a", view.ID)
		require.NoError(t, err)
		assert.Equal(t, view.TransactionID, stored.TransactionID)
	})

	t.Run("Duplicate transaction id is a conflict", func(t *testing.T) {
		f := setup(t)
		p := f.addProduct(t, "shop-a", 10, 10)
		f.store.failCreate = models.ErrConflict

		_, err := f.ledger.CreateTransaction(ctx, "shop-a", cart(CartLine{ProductID: p.ID, Quantity: 1}))
		assert.True(t, apperr.Is(err, apperr.KindConflict))
		assert.Equal(t, 10, f.quantity(t, p.ID))
	})

	t.Run("Store failure is a server error", func(t *testing.T) {
		f := setup(t)
		p := f.addProduct(t, "shop-a", 10, 10)
		f.store.failCreate = errBoom

		_, err := f.ledger.CreateTransaction(ctx, "shop-a", cart(CartLine{ProductID: p.ID, Quantity: 1}))
		assert.True(t, apperr.Is(err, apperr.KindServer))
		assert.Equal(t, 10, f.quantity(t, p.ID))
	})

	t.Run("Event failure does not fail the checkout", func(t *testing.T) {
		f := setup(t)
		p := f.addProduct(t, "shop-a", 10, 10)
		f.events.err = errBoom

		_, err := f.ledger.CreateTransaction(ctx, "shop-a", cart(CartLine{ProductID: p.ID, Quantity: 1}))
		require.NoError(t, err)
		assert.Len(t, f.events.events, 1)
	})

	t.Run("Client hang-up after save still adjusts stock", func(t *testing.T) {
		f := setup(t)
		p := f.addProduct(t, "shop-a", 10, 10)
		reqCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		f.store.afterCreate = cancel

		_, err := f.ledger.CreateTransaction(reqCtx, "shop-a", cart(CartLine{ProductID: p.ID, Quantity: 3}))
		require.NoError(t, err)
		require.Error(t, reqCtx.Err())

		assert.Equal(t, []error{nil}, f.store.adjustErrs)
		assert.Equal(t, []error{nil}, f.events.ctxErrs)
		assert.Equal(t, 7, f.quantity(t, p.ID))
	})

	t.Run("Anonymous caller", func(t *testing.T) {
		f := setup(t)
		_, err := f.ledger.CreateTransaction(ctx, "", cart(CartLine{ProductID: "x", Quantity: 1}))
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})
}

func TestTransactionTenantIsolation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.addProduct(t, "shop-a", 10, 10)
	view, err := f.ledger.CreateTransaction(ctx, "shop-a", cart(CartLine{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = f.ledger.GetTransaction(ctx, "shop-b", view.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	name := "Mallory"
	_, err = f.ledger.UpdateTransaction(ctx, "shop-b", view.ID, TransactionPatch{CustomerName: &name})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	err = f.ledger.DeleteTransaction(ctx, "shop-b", view.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Equal(t, "User not authorized to delete this transaction", apperr.Message(err))

	list, err := f.ledger.ListTransactions(ctx, "shop-b")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.ledger.GetTransaction(ctx, "shop-a", "nope")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()

	newSale := func(t *testing.T) (*fixture, *models.Product, *TransactionView) {
		f := setup(t)
		p := f.addProduct(t, "shop-a", 50, 10)
		view, err := f.ledger.CreateTransaction(ctx, "shop-a", cart(CartLine{ProductID: p.ID, Quantity: 2}))
		require.NoError(t, err)
		return f, p, view
	}

	t.Run("Cart change recomputes the total without touching stock", func(t *testing.T) {
		f, p, view := newSale(t)
		lines := []CartLine{{ProductID: p.ID, Quantity: 3}}

		updated, err := f.ledger.UpdateTransaction(ctx, "shop-a", view.ID, TransactionPatch{CartItems: &lines})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(150).Equal(updated.TotalAmount), updated.TotalAmount.String())
		assert.Equal(t, 8, f.quantity(t, p.ID))
		assert.Equal(t, view.TransactionID, updated.TransactionID)
	})

	t.Run("Charge change recomputes against live prices", func(t *testing.T) {
		f, p, view := newSale(t)
		price := decimal.NewFromInt(60)
		_, err := f.ledger.UpdateProduct(ctx, "shop-a", p.ID, ProductPatch{Price: &price})
		require.NoError(t, err)

		charges := []ChargeInput{{Title: "Gift wrap", Amount: dec(5)}}
		updated, err := f.ledger.UpdateTransaction(ctx, "shop-a", view.ID, TransactionPatch{ExtraCharges: &charges})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(125).Equal(updated.TotalAmount), updated.TotalAmount.String())
		require.Len(t, updated.ExtraCharges, 1)
	})

	t.Run("Customer fields keep the total", func(t *testing.T) {
		f, _, view := newSale(t)
		name := " Ravi "
		mode := models.BillingCard

		updated, err := f.ledger.UpdateTransaction(ctx, "shop-a", view.ID, TransactionPatch{CustomerName: &name, BillingMode: &mode})
		require.NoError(t, err)
		assert.Equal(t, "Ravi", updated.CustomerName)
		assert.Equal(t, models.BillingCard, updated.BillingMode)
		assert.True(t, decimal.NewFromInt(100).Equal(updated.TotalAmount))
	})

	t.Run("Refused fields", func(t *testing.T) {
		f, _, view := newSale(t)
		total := decimal.NewFromInt(1)
		other := "shop-b"
		txID := "TXN-1-abcdef"
		same := "shop-a"
		subCent := []ChargeInput{{Title: "Tip", Amount: money("0.005")}}

		cases := map[string]struct {
			patch TransactionPatch
			msg   string
		}{
			"total":           {TransactionPatch{TotalAmount: &total}, "total_amount is computed from the cart and cannot be set"},
			"admin":           {TransactionPatch{Admin: &other}, "Cannot change the admin associated with the transaction"},
			"transaction id":  {TransactionPatch{TransactionID: &txID}, "transaction_id cannot be changed"},
			"empty":           {TransactionPatch{}, "No valid fields provided for update."},
			"same admin only": {TransactionPatch{Admin: &same}, "No valid fields provided for update."},
			"sub-cent charge": {TransactionPatch{ExtraCharges: &subCent}, "extra_charges[0].amount must have at most 2 decimal places"},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := f.ledger.UpdateTransaction(ctx, "shop-a", view.ID, tc.patch)
				assert.True(t, apperr.Is(err, apperr.KindValidation))
				assert.Equal(t, tc.msg, apperr.Message(err))
			})
		}

		stored, err := f.ledger.GetTransaction(ctx, "shop-a", view.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(100).Equal(stored.TotalAmount))
	})

	t.Run("Empty cart is refused", func(t *testing.T) {
		f, _, view := newSale(t)
		lines := []CartLine{}
		_, err := f.ledger.UpdateTransaction(ctx, "shop-a", view.ID, TransactionPatch{CartItems: &lines})
		assert.Equal(t, "Cart cannot be empty", apperr.Message(err))
	})

	t.Run("Cart with unknown product is refused", func(t *testing.T) {
		f, _, view := newSale(t)
		lines := []CartLine{{ProductID: "ghost", Quantity: 1}}
		_, err := f.ledger.UpdateTransaction(ctx, "shop-a", view.ID, TransactionPatch{CartItems: &lines})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestDeleteTransactionKeepsStock(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.addProduct(t, "shop-a", 10, 10)
	view, err := f.ledger.CreateTransaction(ctx, "shop-a", cart(CartLine{ProductID: p.ID, Quantity: 4}))
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteTransaction(ctx, "shop-a", view.ID))
	assert.Equal(t, 6, f.quantity(t, p.ID))

	err = f.ledger.DeleteTransaction(ctx, "shop-a", view.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTransactionViewWithDeletedProduct(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.addProduct(t, "shop-a", 10, 10)
	view, err := f.ledger.CreateTransaction(ctx, "shop-a", cart(CartLine{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	require.NoError(t, f.ledger.DeleteProduct(ctx, "shop-a", p.ID))

	stored, err := f.ledger.GetTransaction(ctx, "shop-a", view.ID)
	require.NoError(t, err)
	require.Len(t, stored.CartItems, 1)
	assert.Nil(t, stored.CartItems[0].Product)
	assert.Equal(t, p.ID, stored.CartItems[0].ProductID)
	assert.True(t, decimal.NewFromInt(10).Equal(stored.TotalAmount))
}

func TestListTransactionsInRange(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.addProduct(t, "shop-a", 10, 100)

	days := []time.Time{
		testNow.AddDate(0, 0, -10),
		testNow,
		testNow.Add(15 * time.Hour),
	}
	for _, day := range days {
		at := day
		f.ledger.builder.now = func() time.Time { return at }
		_, err := f.ledger.CreateTransaction(ctx, "shop-a", cart(CartLine{ProductID: p.ID, Quantity: 1}))
		require.NoError(t, err)
	}

	r, err := ParseDateRange("2024-03-01", "2024-03-01")
	require.NoError(t, err)
	list, err := f.ledger.ListTransactionsInRange(ctx, "shop-a", r)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, testNow.Equal(list[0].CreatedAt))

	r, err = ParseDateRange("2024-02-01", "2024-03-02")
	require.NoError(t, err)
	list, err = f.ledger.ListTransactionsInRange(ctx, "shop-a", r)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
}
