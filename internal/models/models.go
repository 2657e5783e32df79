package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amounts go over the wire as JSON numbers, not quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("document already exists")
)

// Tenant - The shop admin who owns a catalog and its sales
type Tenant struct {
	ID           string    `gorm:"primaryKey;size:64" json:"_id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `gorm:"uniqueIndex;size:191" json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"` // Never return this in JSON
	Phone        string    `json:"phone" bson:"phone"`
	City         string    `json:"city" bson:"city"`
	Branch       string    `json:"branch" bson:"branch"`
	GSTIN        string    `gorm:"column:gstin" json:"GSTIN" bson:"GSTIN"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TenantUpdate lists the profile fields a store merges; nil means untouched.
type TenantUpdate struct {
	Name   *string
	Phone  *string
	City   *string
	Branch *string
	GSTIN  *string
}

func (u TenantUpdate) IsEmpty() bool {
	return u.Name == nil && u.Phone == nil && u.City == nil && u.Branch == nil && u.GSTIN == nil
}

// Product - The Inventory, owned by exactly one tenant
type Product struct {
	ID        string          `gorm:"primaryKey;size:64" json:"_id" bson:"_id"`
	ShopID    string          `gorm:"index;size:64" json:"shop_id" bson:"shop_id"`
	Name      string          `json:"product_name" bson:"product_name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2)" json:"product_price" bson:"product_price"`
	Quantity  int             `json:"product_quantity" bson:"product_quantity"`
	CreatedAt time.Time       `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt" bson:"updatedAt"`
}

type ProductUpdate struct {
	Name     *string
	Price    *decimal.Decimal
	Quantity *int
}

func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Price == nil && u.Quantity == nil
}

type BillingMode string

const (
	BillingCash   BillingMode = "cash"
	BillingCard   BillingMode = "card"
	BillingOnline BillingMode = "online"
)

func (m BillingMode) Valid() bool {
	switch m {
	case BillingCash, BillingCard, BillingOnline:
		return true
	}
	return false
}

// LineItem - One product reference inside a cart
type LineItem struct {
	ProductID string `json:"product" bson:"product"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// ExtraCharge - A named add-on such as a packing fee
type ExtraCharge struct {
	Title  string          `json:"chargeTitle" bson:"chargeTitle"`
	Amount decimal.Decimal `json:"amount" bson:"amount"`
}

// Transaction - The checkout record; TotalAmount is computed, never client supplied
type Transaction struct {
	ID              string          `gorm:"primaryKey;size:64" json:"_id" bson:"_id"`
	TransactionID   string          `gorm:"uniqueIndex;size:64" json:"transaction_id" bson:"transaction_id"`
	TenantID        string          `gorm:"index;size:64" json:"admin" bson:"admin"`
	CustomerName    string          `json:"customer_name" bson:"customer_name"`
	CustomerContact ContactNumber   `json:"customer_contact" bson:"customer_contact"`
	CartItems       []LineItem      `gorm:"serializer:json" json:"cart_items" bson:"cart_items"`
	ExtraCharges    []ExtraCharge   `gorm:"serializer:json" json:"extra_charges" bson:"extra_charges"`
	BillingMode     BillingMode     `gorm:"size:16" json:"billing_mode" bson:"billing_mode"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_amount" bson:"total_amount"`
	CreatedAt       time.Time       `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// TransactionUpdate is merged as-is by the stores. Consistency of TotalAmount
// with the cart is the caller's job.
type TransactionUpdate struct {
	CustomerName    *string
	CustomerContact *ContactNumber
	CartItems       *[]LineItem
	ExtraCharges    *[]ExtraCharge
	BillingMode     *BillingMode
	TotalAmount     *decimal.Decimal
}

func (u TransactionUpdate) IsEmpty() bool {
	return u.CustomerName == nil && u.CustomerContact == nil && u.CartItems == nil &&
		u.ExtraCharges == nil && u.BillingMode == nil && u.TotalAmount == nil
}

// Apply merges the update into t in place.
func (u TransactionUpdate) Apply(t *Transaction) {
	if u.CustomerName != nil {
		t.CustomerName = *u.CustomerName
	}
	if u.CustomerContact != nil {
		t.CustomerContact = *u.CustomerContact
	}
	if u.CartItems != nil {
		t.CartItems = append([]LineItem(nil), (*u.CartItems)...)
	}
	if u.ExtraCharges != nil {
		t.ExtraCharges = append([]ExtraCharge(nil), (*u.ExtraCharges)...)
	}
	if u.BillingMode != nil {
		t.BillingMode = *u.BillingMode
	}
	if u.TotalAmount != nil {
		t.TotalAmount = *u.TotalAmount
	}
}

// ContactNumber is the customer's phone number. It doubles as the customer
// dedup key, so it is kept numeric. JSON input may be a number or a numeric string.
type ContactNumber int64

func (c *ContactNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*c = 0
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("customer_contact must be numeric: %q", raw)
	}
	*c = ContactNumber(n)
	return nil
}

func (c ContactNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(c))
}
