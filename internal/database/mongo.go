package database

import (
	"context"
	"time"

	"go-pos-ledger/internal/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	tenantCollection      = "admins"
	productCollection     = "products"
	transactionCollection = "transactions"
)

// ConnectMongo dials uri and pings it, retrying while the server starts.
func ConnectMongo(ctx context.Context, uri string, log *zap.Logger) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("CONNECTION_STRING is not set")
	}
	opts := options.Client().ApplyURI(uri).SetRegistry(NewRegistry())

	var (
		client *mongo.Client
		err    error
	)
	for i := 0; i < connectAttempts; i++ {
		client, err = mongo.Connect(ctx, opts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = client.Ping(pingCtx, nil)
			cancel()
			if err == nil {
				break
			}
			_ = client.Disconnect(ctx)
		}
		log.Warn("mongo_connect_retry", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(connectBackoff)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "connect mongo after %d attempts", connectAttempts)
	}
	log.Info("mongo_connected")
	return client, nil
}

// MongoStore implements the ledger and account stores on MongoDB.
type MongoStore struct {
	tenants      *mongo.Collection
	products     *mongo.Collection
	transactions *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		tenants:      db.Collection(tenantCollection),
		products:     db.Collection(productCollection),
		transactions: db.Collection(transactionCollection),
	}
}

// EnsureIndexes creates the unique and lookup indexes the queries rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.tenants.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return errors.Wrap(err, "create admins index")
	}
	if _, err := s.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return errors.Wrap(err, "create products index")
	}
	if _, err := s.transactions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transaction_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "admin", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}); err != nil {
		return errors.Wrap(err, "create transactions indexes")
	}
	return nil
}

func mongoErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return models.ErrConflict
	}
	return errors.Wrap(err, op)
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// --- Tenants ---

func (s *MongoStore) CreateTenant(ctx context.Context, t *models.Tenant) error {
	_, err := s.tenants.InsertOne(ctx, t)
	return mongoErr(err, "insert admin")
}

func (s *MongoStore) GetTenant(ctx context.Context, id string) (*models.Tenant, error) {
	var t models.Tenant
	if err := s.tenants.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, mongoErr(err, "find admin")
	}
	return &t, nil
}

func (s *MongoStore) GetTenantByEmail(ctx context.Context, email string) (*models.Tenant, error) {
	var t models.Tenant
	if err := s.tenants.FindOne(ctx, bson.M{"email": email}).Decode(&t); err != nil {
		return nil, mongoErr(err, "find admin by email")
	}
	return &t, nil
}

func (s *MongoStore) UpdateTenant(ctx context.Context, id string, u models.TenantUpdate) (*models.Tenant, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.City != nil {
		set["city"] = *u.City
	}
	if u.Branch != nil {
		set["branch"] = *u.Branch
	}
	if u.GSTIN != nil {
		set["GSTIN"] = *u.GSTIN
	}

	var t models.Tenant
	err := s.tenants.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter()).Decode(&t)
	if err != nil {
		return nil, mongoErr(err, "update admin")
	}
	return &t, nil
}

// --- Products ---

func (s *MongoStore) CreateProduct(ctx context.Context, p *models.Product) error {
	_, err := s.products.InsertOne(ctx, p)
	return mongoErr(err, "insert product")
}

func (s *MongoStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mongoErr(err, "find product")
	}
	return &p, nil
}

func (s *MongoStore) ListProductsByTenant(ctx context.Context, tenantID string) ([]models.Product, error) {
	cur, err := s.products.Find(ctx, bson.M{"shop_id": tenantID}, newestFirst())
	if err != nil {
		return nil, mongoErr(err, "find products")
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, mongoErr(err, "decode products")
	}
	return products, nil
}

func (s *MongoStore) UpdateProduct(ctx context.Context, id string, u models.ProductUpdate) (*models.Product, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if u.Name != nil {
		set["product_name"] = *u.Name
	}
	if u.Price != nil {
		set["product_price"] = *u.Price
	}
	if u.Quantity != nil {
		set["product_quantity"] = *u.Quantity
	}

	var p models.Product
	err := s.products.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter()).Decode(&p)
	if err != nil {
		return nil, mongoErr(err, "update product")
	}
	return &p, nil
}

func (s *MongoStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoErr(err, "delete product")
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *MongoStore) AdjustQuantity(ctx context.Context, id string, delta int) (*models.Product, error) {
	update := bson.M{
		"$inc": bson.M{"product_quantity": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	var p models.Product
	if err := s.products.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, returnAfter()).Decode(&p); err != nil {
		return nil, mongoErr(err, "adjust product quantity")
	}
	return &p, nil
}

// --- Transactions ---

func (s *MongoStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	_, err := s.transactions.InsertOne(ctx, t)
	return mongoErr(err, "insert transaction")
}

func (s *MongoStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.transactions.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, mongoErr(err, "find transaction")
	}
	return &t, nil
}

func (s *MongoStore) ListTransactionsByTenant(ctx context.Context, tenantID string) ([]models.Transaction, error) {
	return s.findTransactions(ctx, bson.M{"admin": tenantID})
}

func (s *MongoStore) ListTransactionsByTenantAndDateRange(ctx context.Context, tenantID string, start, end time.Time) ([]models.Transaction, error) {
	return s.findTransactions(ctx, bson.M{
		"admin":     tenantID,
		"createdAt": bson.M{"$gte": start, "$lte": end},
	})
}

func (s *MongoStore) findTransactions(ctx context.Context, filter bson.M) ([]models.Transaction, error) {
	cur, err := s.transactions.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, mongoErr(err, "find transactions")
	}
	txs := []models.Transaction{}
	if err := cur.All(ctx, &txs); err != nil {
		return nil, mongoErr(err, "decode transactions")
	}
	return txs, nil
}

func (s *MongoStore) UpdateTransaction(ctx context.Context, id string, u models.TransactionUpdate) (*models.Transaction, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if u.CustomerName != nil {
		set["customer_name"] = *u.CustomerName
	}
	if u.CustomerContact != nil {
		set["customer_contact"] = *u.CustomerContact
	}
	if u.CartItems != nil {
		set["cart_items"] = *u.CartItems
	}
	if u.ExtraCharges != nil {
		set["extra_charges"] = *u.ExtraCharges
	}
	if u.BillingMode != nil {
		set["billing_mode"] = *u.BillingMode
	}
	if u.TotalAmount != nil {
		set["total_amount"] = *u.TotalAmount
	}

	var t models.Transaction
	err := s.transactions.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter()).Decode(&t)
	if err != nil {
		return nil, mongoErr(err, "update transaction")
	}
	return &t, nil
}

func (s *MongoStore) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.transactions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoErr(err, "delete transaction")
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
