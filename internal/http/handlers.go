package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"craftmarket/internal/domain"
	"craftmarket/internal/repository"
	"craftmarket/internal/service"
	"craftmarket/internal/verification"
)

type Server struct {
	engine   *gin.Engine
	catalog  *service.CatalogService
	reviews  *service.ReviewService
	orders   *service.OrderService
	accounts *service.AccountService
	codes    *verification.Store
}

func NewServer(catalog *service.CatalogService, reviews *service.ReviewService, orders *service.OrderService, accounts *service.AccountService, codes *verification.Store) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	s := &Server{engine: r, catalog: catalog, reviews: reviews, orders: orders, accounts: accounts, codes: codes}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		products := v1.Group("/products")
		products.POST("", s.createProduct)
		products.GET("", s.listApprovedProducts)
		products.GET("unapproved", s.listUnapprovedProducts)
		products.GET("artisan/:artisanId", s.listProductsByArtisan)
		products.GET(":id", s.getProduct)
		products.PUT(":id", s.updateProduct)
		products.DELETE(":id", s.deleteProduct)
		products.PATCH(":id/approval", s.setProductApproval)
		products.POST(":id/reviews", s.addReview)

		orders := v1.Group("/orders")
		orders.POST("", s.createOrder)
		orders.GET(":id", s.getOrder)
		orders.GET("user/:userId", s.listOrdersByUser)
		orders.GET("artisan/:artisanId", s.listOrdersByArtisan)
		orders.PATCH(":id/status", s.advanceOrderStatus)
		orders.POST(":id/cancel", s.cancelOrder)

		accounts := v1.Group("/accounts")
		accounts.POST("", s.createAccount)
		accounts.GET(":id", s.getAccount)
		accounts.PATCH(":id/approval", s.setAccountApproval)

		otp := v1.Group("/otp")
		otp.POST("send", s.sendCode)
		otp.POST("verify", s.verifyCode)
	}
}

// Product handlers
type createProductReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	ArtisanID   string  `json:"artisan_id"`
}

// @Summary Create product (approval-gated)
// @Tags products
// @Accept json
// @Produce json
// @Param input body createProductReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.catalog.Create(c, domain.Product{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Category:    req.Category,
		ArtisanID:   req.ArtisanID,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary List approved products
// @Tags products
// @Produce json
// @Param q query string false "Title contains"
// @Param min_price query number false "Min price"
// @Param max_price query number false "Max price"
// @Success 200 {array} domain.Product
// @Router /products [get]
func (s *Server) listApprovedProducts(c *gin.Context) {
	var f service.ApprovedFilter
	if q := c.Query("q"); q != "" {
		f.TitleSubstring = q
	}
	if v := c.Query("min_price"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &x
		}
	}
	if v := c.Query("max_price"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &x
		}
	}
	list, err := s.catalog.ListApproved(c, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary List unapproved products with artisan name/email (admin)
// @Tags products
// @Produce json
// @Success 200 {array} domain.UnapprovedProduct
// @Router /products/unapproved [get]
func (s *Server) listUnapprovedProducts(c *gin.Context) {
	list, err := s.catalog.ListUnapproved(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary List products by artisan, any approval state
// @Tags products
// @Produce json
// @Param artisanId path string true "Artisan ID"
// @Success 200 {array} domain.Product
// @Router /products/artisan/{artisanId} [get]
func (s *Server) listProductsByArtisan(c *gin.Context) {
	list, err := s.catalog.ListByArtisan(c, c.Param("artisanId"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.catalog.GetByID(c, c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

type updateProductReq struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Image       *string  `json:"image"`
	Category    *string  `json:"category"`
}

// @Summary Update product fields (partial)
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param input body updateProductReq true "Fields to merge"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	var req updateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.catalog.Update(c, c.Param("id"), service.ProductPatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Category:    req.Category,
	})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Tags products
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.catalog.Delete(c, c.Param("id")); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type setApprovalReq struct {
	IsApproved bool `json:"is_approved"`
}

// @Summary Approve or reject a product (admin)
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param input body setApprovalReq true "Approval flag"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /products/{id}/approval [patch]
func (s *Server) setProductApproval(c *gin.Context) {
	var req setApprovalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.catalog.SetApproval(c, c.Param("id"), req.IsApproved)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

type addReviewReq struct {
	UserID  string `json:"user_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// @Summary Add a review to a product
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param input body addReviewReq true "Review"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id}/reviews [post]
func (s *Server) addReview(c *gin.Context) {
	var req addReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	// имя рецензента — снимок из сервиса аккаунтов; нет аккаунта — нет автора
	acc, err := s.accounts.GetByID(c, req.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown reviewer"})
		return
	}
	p, err := s.reviews.AddReview(c, c.Param("id"), acc.ID, acc.Name, req.Rating, req.Comment)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Order handlers
type orderItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type createOrderReq struct {
	UserID        string         `json:"user_id"`
	Items         []orderItemReq `json:"items"`
	Total         float64        `json:"total"`
	Address       string         `json:"address"`
	PaymentStatus string         `json:"payment_status"`
}

// @Summary Create order
// @Tags orders
// @Accept json
// @Produce json
// @Param input body createOrderReq true "Order"
// @Success 201 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders [post]
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	o, err := s.orders.Create(c, req.UserID, items, req.Total, req.Address, domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, o)
}

// @Summary Get order by id
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	o, err := s.orders.GetByID(c, c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary List orders by buyer
// @Tags orders
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} domain.Order
// @Router /orders/user/{userId} [get]
func (s *Server) listOrdersByUser(c *gin.Context) {
	list, err := s.orders.ListByBuyer(c, c.Param("userId"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary List orders by artisan, items filtered to own products
// @Tags orders
// @Produce json
// @Param artisanId path string true "Artisan ID"
// @Success 200 {array} domain.Order
// @Router /orders/artisan/{artisanId} [get]
func (s *Server) listOrdersByArtisan(c *gin.Context) {
	list, err := s.orders.ListByArtisan(c, c.Param("artisanId"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

type advanceStatusReq struct {
	Status string `json:"status"`
}

// @Summary Advance fulfillment status one step
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param input body advanceStatusReq true "Requested status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/status [patch]
func (s *Server) advanceOrderStatus(c *gin.Context) {
	var req advanceStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	o, err := s.orders.AdvanceStatus(c, c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Cancel order (only while newly placed)
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/cancel [post]
func (s *Server) cancelOrder(c *gin.Context) {
	o, err := s.orders.Cancel(c, c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, o)
}

// Account handlers
type createAccountReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// @Summary Create account (collaborator stand-in)
// @Tags accounts
// @Accept json
// @Produce json
// @Param input body createAccountReq true "Account"
// @Success 201 {object} domain.Account
// @Failure 400 {object} map[string]string
// @Router /accounts [post]
func (s *Server) createAccount(c *gin.Context) {
	var req createAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := s.accounts.Create(c, domain.Account{Name: req.Name, Email: req.Email, Role: domain.Role(req.Role)})
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, a)
}

// @Summary Get account by id
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} domain.Account
// @Failure 404 {object} map[string]string
// @Router /accounts/{id} [get]
func (s *Server) getAccount(c *gin.Context) {
	a, err := s.accounts.GetByID(c, c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary Approve artisan profile (admin)
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param input body setApprovalReq true "Approval flag"
// @Success 200 {object} domain.Account
// @Failure 404 {object} map[string]string
// @Router /accounts/{id}/approval [patch]
func (s *Server) setAccountApproval(c *gin.Context) {
	var req setApprovalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := s.accounts.SetApproval(c, c.Param("id"), req.IsApproved)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

// OTP handlers
type sendCodeReq struct {
	Email string `json:"email"`
}

// @Summary Issue a verification code
// @Tags otp
// @Accept json
// @Produce json
// @Param input body sendCodeReq true "Email"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /otp/send [post]
func (s *Server) sendCode(c *gin.Context) {
	var req sendCodeReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	// доставка кода — забота внешнего почтового сервиса
	s.codes.Issue(req.Email)
	c.JSON(http.StatusOK, gin.H{"message": "code sent"})
}

type verifyCodeReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// @Summary Verify a code
// @Tags otp
// @Accept json
// @Produce json
// @Param input body verifyCodeReq true "Email and code"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Router /otp/verify [post]
func (s *Server) verifyCode(c *gin.Context) {
	var req verifyCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !s.codes.Verify(req.Email, req.Code) {
		c.JSON(http.StatusBadRequest, gin.H{"verified": false, "error": "invalid or expired code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateReview):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrArtisanNotApproved):
		return http.StatusForbidden
	case errors.Is(err, service.ErrOwnProduct):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrIllegalTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
