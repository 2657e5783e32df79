package ledger

import (
	"context"
	"testing"

	"go-pos-ledger/internal/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	qty, negQty := 3, -1

	cases := map[string]struct {
		in  ProductInput
		msg string
	}{
		"no name":        {ProductInput{Price: dec(1), Quantity: &qty}, "Product name, price, and quantity are mandatory"},
		"no price":       {ProductInput{Name: "Tea", Quantity: &qty}, "Product name, price, and quantity are mandatory"},
		"no quantity":    {ProductInput{Name: "Tea", Price: dec(1)}, "Product name, price, and quantity are mandatory"},
		"negative price": {ProductInput{Name: "Tea", Price: dec(-1), Quantity: &qty}, "Valid non-negative price is required."},
		"negative stock": {ProductInput{Name: "Tea", Price: dec(1), Quantity: &negQty}, "Valid non-negative quantity is required."},
		"sub-cent price": {ProductInput{Name: "Tea", Price: money("1.999"), Quantity: &qty}, "Price must have at most 2 decimal places."},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.ledger.CreateProduct(ctx, "shop-a", tc.in)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
			assert.Equal(t, tc.msg, apperr.Message(err))
		})
	}

	zero := 0
	p, err := f.ledger.CreateProduct(ctx, "shop-a", ProductInput{Name: " Free sample ", Price: dec(0), Quantity: &zero})
	require.NoError(t, err)
	assert.Equal(t, "Free sample", p.Name)
	assert.Equal(t, "shop-a", p.ShopID)
	assert.NotEmpty(t, p.ID)
}

func TestProductOwnership(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.addProduct(t, "shop-a", 10, 5)

	_, err := f.ledger.GetProduct(ctx, "shop-b", p.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	price := decimal.NewFromInt(1)
	_, err = f.ledger.UpdateProduct(ctx, "shop-b", p.ID, ProductPatch{Price: &price})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Equal(t, "User not authorized to update this product", apperr.Message(err))

	err = f.ledger.DeleteProduct(ctx, "shop-b", p.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	list, err := f.ledger.ListProducts(ctx, "shop-b")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.ledger.GetProduct(ctx, "shop-a", "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, "Product not found", apperr.Message(err))
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.addProduct(t, "shop-a", 10, 5)

	t.Run("Partial merge", func(t *testing.T) {
		qty := 42
		updated, err := f.ledger.UpdateProduct(ctx, "shop-a", p.ID, ProductPatch{Quantity: &qty})
		require.NoError(t, err)
		assert.Equal(t, 42, updated.Quantity)
		assert.Equal(t, "Widget", updated.Name)
		assert.True(t, decimal.NewFromInt(10).Equal(updated.Price))
	})

	t.Run("Rejected values", func(t *testing.T) {
		blank := "   "
		neg := decimal.NewFromInt(-3)
		negQty := -1

		_, err := f.ledger.UpdateProduct(ctx, "shop-a", p.ID, ProductPatch{Name: &blank})
		assert.Equal(t, "Product name cannot be empty.", apperr.Message(err))
		_, err = f.ledger.UpdateProduct(ctx, "shop-a", p.ID, ProductPatch{Price: &neg})
		assert.Equal(t, "Invalid price provided for update.", apperr.Message(err))
		_, err = f.ledger.UpdateProduct(ctx, "shop-a", p.ID, ProductPatch{Price: money("0.125")})
		assert.Equal(t, "Price must have at most 2 decimal places.", apperr.Message(err))
		_, err = f.ledger.UpdateProduct(ctx, "shop-a", p.ID, ProductPatch{Quantity: &negQty})
		assert.Equal(t, "Invalid quantity provided for update.", apperr.Message(err))
		_, err = f.ledger.UpdateProduct(ctx, "shop-a", p.ID, ProductPatch{})
		assert.Equal(t, "No valid fields provided for update.", apperr.Message(err))
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.addProduct(t, "shop-a", 10, 5)

	require.NoError(t, f.ledger.DeleteProduct(ctx, "shop-a", p.ID))
	_, err := f.ledger.GetProduct(ctx, "shop-a", p.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
