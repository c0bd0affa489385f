package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"craftmarket/internal/domain"
)

const (
	productCollection = "products"
	orderCollection   = "orders"
	accountCollection = "accounts"
)

// MongoConfig параметры подключения к MongoDB
type MongoConfig struct {
	URI     string
	DBName  string
	Timeout time.Duration
}

// NewMongoConnection устанавливает соединение и проверяет его пингом
func NewMongoConnection(cfg MongoConfig) (*mongo.Client, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// MongoProducts репозиторий товаров поверх одной коллекции. Отзывы встроены
// в документ товара, поэтому Update — это ReplaceOne целого документа.
type MongoProducts struct {
	collection *mongo.Collection
}

func NewMongoProducts(db *mongo.Database) *MongoProducts {
	return &MongoProducts{collection: db.Collection(productCollection)}
}

var _ ProductRepository = (*MongoProducts)(nil)

func (s *MongoProducts) Create(ctx context.Context, p *domain.Product) error {
	p.ID = uuid.NewString()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.collection.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *MongoProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &p, nil
}

func (s *MongoProducts) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("failed to replace product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoProducts) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoProducts) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	filter := bson.M{}
	if f.ApprovedOnly {
		filter["is_approved"] = true
	}
	if f.UnapprovedOnly {
		filter["is_approved"] = false
	}
	if f.ArtisanID != "" {
		filter["artisan_id"] = f.ArtisanID
	}
	if f.TitleSubstring != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.TitleSubstring), Options: "i"}
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]domain.Product, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return out, nil
}

// MongoOrders репозиторий заказов
type MongoOrders struct {
	collection *mongo.Collection
}

func NewMongoOrders(db *mongo.Database) *MongoOrders {
	return &MongoOrders{collection: db.Collection(orderCollection)}
}

var _ OrderRepository = (*MongoOrders)(nil)

func (s *MongoOrders) Create(ctx context.Context, o *domain.Order) error {
	o.ID = uuid.NewString()
	o.PlacedAt = time.Now().UTC()
	o.UpdatedAt = o.PlacedAt
	if _, err := s.collection.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (s *MongoOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &o, nil
}

func (s *MongoOrders) Update(ctx context.Context, o *domain.Order) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return fmt.Errorf("failed to replace order: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoOrders) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

func (s *MongoOrders) ListByArtisan(ctx context.Context, artisanID string) ([]domain.Order, error) {
	return s.list(ctx, bson.M{"items.artisan_id": artisanID})
}

func (s *MongoOrders) list(ctx context.Context, filter bson.M) ([]domain.Order, error) {
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]domain.Order, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return out, nil
}

// MongoAccounts репозиторий учётных записей
type MongoAccounts struct {
	collection *mongo.Collection
}

func NewMongoAccounts(db *mongo.Database) *MongoAccounts {
	return &MongoAccounts{collection: db.Collection(accountCollection)}
}

var _ AccountRepository = (*MongoAccounts)(nil)

func (s *MongoAccounts) Create(ctx context.Context, a *domain.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, err := s.collection.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (s *MongoAccounts) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var a domain.Account
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &a, nil
}

func (s *MongoAccounts) SetApproval(ctx context.Context, id string, approved bool) (*domain.Account, error) {
	after := options.After
	res := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_approved": approved}},
		options.FindOneAndUpdate().SetReturnDocument(after),
	)
	var a domain.Account
	if err := res.Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return &a, nil
}

// MongoTx транзакция на сессии клиента. Читай-проверяй-пиши внутри fn видит
// и фиксирует согласованное состояние документа.
type MongoTx struct {
	client *mongo.Client
}

func NewMongoTx(client *mongo.Client) *MongoTx { return &MongoTx{client: client} }

var _ TxManager = (*MongoTx)(nil)

func (tx *MongoTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := tx.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
