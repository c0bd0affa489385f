package domain

import "time"

// Role роль учётной записи
type Role string

const (
	RoleCustomer Role = "customer"
	RoleArtisan  Role = "artisan"
	RoleAdmin    Role = "admin"
)

// Account срез учётной записи внешнего сервиса аккаунтов.
// IsApproved имеет смысл только для роли artisan.
type Account struct {
	ID         string `json:"id" bson:"_id"`
	Name       string `json:"name" bson:"name"`
	Email      string `json:"email" bson:"email"`
	Role       Role   `json:"role" bson:"role"`
	IsApproved bool   `json:"is_approved" bson:"is_approved"`
}

// Review отзыв, встроенный в документ товара. Имя рецензента — снимок
// на момент создания, не живая ссылка. После создания не меняется.
type Review struct {
	Name      string    `json:"name" bson:"name"`
	Rating    int       `json:"rating" bson:"rating"`
	Comment   string    `json:"comment" bson:"comment"`
	UserID    string    `json:"user_id" bson:"user_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Product товар ремесленника. NumReviews и Rating — производные поля и
// всегда соответствуют списку Reviews.
type Product struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Image       string    `json:"image" bson:"image"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty"`
	ArtisanID   string    `json:"artisan_id" bson:"artisan_id"`
	IsApproved  bool      `json:"is_approved" bson:"is_approved"`
	NumReviews  int       `json:"num_reviews" bson:"num_reviews"`
	Rating      float64   `json:"rating" bson:"rating"`
	Reviews     []Review  `json:"reviews" bson:"reviews"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// UnapprovedProduct товар на модерации с данными владельца для админки
type UnapprovedProduct struct {
	Product
	ArtisanName  string `json:"artisan_name"`
	ArtisanEmail string `json:"artisan_email"`
}

// OrderStatus статус исполнения заказа
type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "Placed"
	OrderStatusProcessing     OrderStatus = "Processing"
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusOutForDelivery OrderStatus = "Out for Delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
	OrderStatusCancelled      OrderStatus = "Cancelled"
)

// fulfillmentSequence линейный порядок исполнения; Cancelled достижим
// только из начального статуса и в последовательность не входит.
var fulfillmentSequence = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

// Next возвращает следующий шаг исполнения. false — статус терминальный
// или вне последовательности.
func (s OrderStatus) Next() (OrderStatus, bool) {
	for i, st := range fulfillmentSequence {
		if st == s && i+1 < len(fulfillmentSequence) {
			return fulfillmentSequence[i+1], true
		}
	}
	return "", false
}

// Known проверяет, что статус принадлежит домену значений
func (s OrderStatus) Known() bool {
	if s == OrderStatusCancelled {
		return true
	}
	for _, st := range fulfillmentSequence {
		if st == s {
			return true
		}
	}
	return false
}

// PaymentStatus статус оплаты; назначается при оформлении и этим ядром
// дальше не меняется (наложенный платёж — Pending, шлюз — Paid)
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// OrderItem позиция заказа. ArtisanID — снимок владельца товара на момент
// оформления, чтобы выборка заказов продавца не зависела от удалённых товаров.
type OrderItem struct {
	ProductID string `json:"product_id" bson:"product_id"`
	ArtisanID string `json:"artisan_id" bson:"artisan_id"`
	Quantity  int64  `json:"quantity" bson:"quantity"`
}

// Order сущность заказа. Заказы не удаляются.
type Order struct {
	ID            string        `json:"id" bson:"_id"`
	UserID        string        `json:"user_id" bson:"user_id"`
	Items         []OrderItem   `json:"items" bson:"items"`
	Total         float64       `json:"total" bson:"total"`
	Address       string        `json:"address" bson:"address"`
	Status        OrderStatus   `json:"status" bson:"status"`
	PaymentStatus PaymentStatus `json:"payment_status" bson:"payment_status"`
	PlacedAt      time.Time     `json:"placed_at" bson:"placed_at"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at"`
}
