package database

import (
	"context"
	"time"

	"go-pos-ledger/internal/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// ConnectMySQL opens the MySQL pool, waiting for the database to come up.
func ConnectMySQL(dsn string, verbose bool, log *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB_DSN is not set")
	}

	level := logger.Warn
	if verbose {
		level = logger.Info
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger:         logger.Default.LogMode(level),
			TranslateError: true,
		})
		if err == nil {
			break
		}
		log.Warn("mysql_connect_retry", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(connectBackoff)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "connect mysql after %d attempts", connectAttempts)
	}
	log.Info("mysql_connected")
	return db, nil
}

// Migrate syncs the tenant, product and transaction tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Tenant{},
		&models.Product{},
		&models.Transaction{},
	)
	return errors.Wrap(err, "auto-migrate")
}

// GormStore implements the ledger and account stores on a SQL database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.ErrConflict
	}
	return errors.Wrap(err, op)
}

// --- Tenants ---

func (s *GormStore) CreateTenant(ctx context.Context, t *models.Tenant) error {
	return translate(s.db.WithContext(ctx).Create(t).Error, "create tenant")
}

func (s *GormStore) GetTenant(ctx context.Context, id string) (*models.Tenant, error) {
	var t models.Tenant
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get tenant")
	}
	return &t, nil
}

func (s *GormStore) GetTenantByEmail(ctx context.Context, email string) (*models.Tenant, error) {
	var t models.Tenant
	if err := s.db.WithContext(ctx).First(&t, "email = ?", email).Error; err != nil {
		return nil, translate(err, "get tenant by email")
	}
	return &t, nil
}

func (s *GormStore) UpdateTenant(ctx context.Context, id string, u models.TenantUpdate) (*models.Tenant, error) {
	values := map[string]interface{}{"updated_at": time.Now().UTC()}
	if u.Name != nil {
		values["name"] = *u.Name
	}
	if u.Phone != nil {
		values["phone"] = *u.Phone
	}
	if u.City != nil {
		values["city"] = *u.City
	}
	if u.Branch != nil {
		values["branch"] = *u.Branch
	}
	if u.GSTIN != nil {
		values["gstin"] = *u.GSTIN
	}

	res := s.db.WithContext(ctx).Model(&models.Tenant{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return nil, translate(res.Error, "update tenant")
	}
	if res.RowsAffected == 0 {
		return nil, models.ErrNotFound
	}
	return s.GetTenant(ctx, id)
}

// --- Products ---

func (s *GormStore) CreateProduct(ctx context.Context, p *models.Product) error {
	return translate(s.db.WithContext(ctx).Create(p).Error, "create product")
}

func (s *GormStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get product")
	}
	return &p, nil
}

func (s *GormStore) ListProductsByTenant(ctx context.Context, tenantID string) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.WithContext(ctx).
		Where("shop_id = ?", tenantID).
		Order("created_at DESC").
		Find(&products).Error
	return products, translate(err, "list products")
}

func (s *GormStore) UpdateProduct(ctx context.Context, id string, u models.ProductUpdate) (*models.Product, error) {
	values := map[string]interface{}{"updated_at": time.Now().UTC()}
	if u.Name != nil {
		values["name"] = *u.Name
	}
	if u.Price != nil {
		values["price"] = *u.Price
	}
	if u.Quantity != nil {
		values["quantity"] = *u.Quantity
	}

	res := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return nil, translate(res.Error, "update product")
	}
	if res.RowsAffected == 0 {
		return nil, models.ErrNotFound
	}
	return s.GetProduct(ctx, id)
}

func (s *GormStore) DeleteProduct(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "delete product")
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AdjustQuantity applies delta in a single UPDATE so concurrent checkouts
// never overwrite each other's decrement.
func (s *GormStore) AdjustQuantity(ctx context.Context, id string, delta int) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ?", id).
			UpdateColumns(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + ?", delta),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&p, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err, "adjust quantity")
	}
	return &p, nil
}

// --- Transactions ---

func (s *GormStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	return translate(s.db.WithContext(ctx).Create(t).Error, "create transaction")
}

func (s *GormStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get transaction")
	}
	return &t, nil
}

func (s *GormStore) ListTransactionsByTenant(ctx context.Context, tenantID string) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, translate(err, "list transactions")
}

func (s *GormStore) ListTransactionsByTenantAndDateRange(ctx context.Context, tenantID string, start, end time.Time) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND created_at BETWEEN ? AND ?", tenantID, start, end).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, translate(err, "list transactions by date range")
}

// UpdateTransaction saves the whole row so the JSON serializer runs on the
// cart and charge columns.
func (s *GormStore) UpdateTransaction(ctx context.Context, id string, u models.TransactionUpdate) (*models.Transaction, error) {
	var t models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			return err
		}
		u.Apply(&t)
		t.UpdatedAt = time.Now().UTC()
		return tx.Save(&t).Error
	})
	if err != nil {
		return nil, translate(err, "update transaction")
	}
	return &t, nil
}

func (s *GormStore) DeleteTransaction(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Transaction{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "delete transaction")
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
