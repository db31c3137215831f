package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"catalog-console/internal/auth"
	"catalog-console/internal/domain"
	"catalog-console/internal/repository"
	"catalog-console/internal/service"
	"catalog-console/internal/storage"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "admin-auth"

const identityKey = "identity"

// Handler wires HTTP routes to domain services.
type Handler struct {
	catalog      service.CatalogService
	admins       service.AdminService
	tokens       *auth.TokenCodec
	cookieSecure bool
	logger       *logrus.Logger
}

func NewHandler(catalog service.CatalogService, admins service.AdminService, tokens *auth.TokenCodec, cookieSecure bool, logger *logrus.Logger) *Handler {
	return &Handler{
		catalog:      catalog,
		admins:       admins,
		tokens:       tokens,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine, allowOrigin string) {
	if allowOrigin != "" {
		router.Use(corsMiddleware(allowOrigin))
	}

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
		api.POST("/auth/login", h.login)
		api.POST("/auth/logout", h.logout)

		protected := api.Group("", h.authRequired())
		{
			protected.GET("/auth/me", h.me)
			protected.GET("/products", h.listProducts)
			protected.POST("/products", h.createProduct)
			protected.PUT("/products", h.updateProduct)
			protected.DELETE("/products", h.deleteProduct)
			protected.GET("/admins", h.listAdmins)
			protected.POST("/admins", h.createAdmin)
			protected.GET("/home", h.home)
			protected.GET("/analytics", h.analytics)
		}
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authRequired verifies the session cookie and stores the caller's identity
// in the request context. Any failure aborts with 401 before data access.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Request.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		identity, err := h.tokens.Verify(cookie.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookieSecure,
		MaxAge:   int(h.tokens.TTL() / time.Second),
	})
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cookieSecure,
		MaxAge:   -1,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	admin, err := h.admins.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.writeError(c, err)
		return
	}

	token, err := h.tokens.Issue(auth.Identity{ID: admin.ID, Email: admin.Email})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) me(c *gin.Context) {
	identity := c.MustGet(identityKey).(*auth.Identity)
	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"id":    identity.ID,
		"email": identity.Email,
	}})
}

func (h *Handler) listProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultPageSize)))

	result, err := h.catalog.List(c.Request.Context(), service.ListParams{
		Page:     page,
		Limit:    limit,
		Search:   c.Query("search"),
		Category: c.DefaultQuery("category", service.CategoryAll),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   productsToResponse(result.Items),
		"totalPages": result.TotalPages,
	})
}

func (h *Handler) createProduct(c *gin.Context) {
	var input service.CreateProductInput
	if !decodeStrict(c, &input) {
		return
	}

	product, err := h.catalog.Create(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Infof("product %s created", product.ID)
	c.JSON(http.StatusCreated, productToResponse(*product))
}

func (h *Handler) updateProduct(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	var input service.UpdateProductInput
	if !decodeStrict(c, &input) {
		return
	}

	product, err := h.catalog.Update(c.Request.Context(), id, input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Infof("product %s updated", product.ID)
	c.JSON(http.StatusOK, productToResponse(*product))
}

type deleteProductRequest struct {
	ID string `json:"id"`
}

func (h *Handler) deleteProduct(c *gin.Context) {
	var req deleteProductRequest
	if !decodeStrict(c, &req) {
		return
	}
	if req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), req.ID); err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Infof("product %s deleted", req.ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) listAdmins(c *gin.Context) {
	admins, err := h.admins.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]AdminResponse, len(admins))
	for i := range admins {
		resp[i] = AdminResponse{
			ID:    admins[i].ID,
			Email: admins[i].Email,
		}
	}
	c.JSON(http.StatusOK, gin.H{"admins": resp})
}

type createAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) createAdmin(c *gin.Context) {
	var req createAdminRequest
	if !decodeStrict(c, &req) {
		return
	}

	if err := h.admins.Create(c.Request.Context(), req.Email, req.Password); err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Infof("admin %s created", req.Email)
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

func (h *Handler) home(c *gin.Context) {
	products, err := h.catalog.ListAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": productsToResponse(products)})
}

func (h *Handler) analytics(c *gin.Context) {
	overview, err := h.catalog.Overview(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := OverviewResponse{
		TotalProducts:  overview.TotalProducts,
		TotalStock:     overview.TotalStock,
		InventoryValue: overview.InventoryValue,
		LowStockCount:  overview.LowStockCount,
		Categories:     make([]CategoryCountResponse, len(overview.Categories)),
	}
	for i := range overview.Categories {
		resp.Categories[i] = CategoryCountResponse{
			Category: overview.Categories[i].Category,
			Count:    overview.Categories[i].Count,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// decodeStrict decodes a JSON body rejecting unknown or mistyped fields, so
// malformed payloads never reach business logic. Reports whether decoding
// succeeded; on failure it has already written a 400.
func decodeStrict(c *gin.Context, dst any) bool {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// writeError maps service failures to responses without leaking internals.
func (h *Handler) writeError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": validationErr.Fields})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repository.ErrAdminExists):
		c.JSON(http.StatusConflict, gin.H{"error": "admin already exists"})
	case errors.Is(err, storage.ErrUploadFailed):
		h.logger.Warnf("image upload: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
	default:
		h.logger.Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type ProductResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Category  string  `json:"category"`
	ImageURL  string  `json:"image_url"`
	LowStock  bool    `json:"low_stock"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type AdminResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type CategoryCountResponse struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type OverviewResponse struct {
	TotalProducts  int                     `json:"total_products"`
	TotalStock     int                     `json:"total_stock"`
	InventoryValue float64                 `json:"inventory_value"`
	LowStockCount  int                     `json:"low_stock_count"`
	Categories     []CategoryCountResponse `json:"categories"`
}

func productToResponse(product domain.Product) ProductResponse {
	return ProductResponse{
		ID:        product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.Stock,
		Category:  product.Category,
		ImageURL:  product.ImageURL,
		LowStock:  product.LowStock(),
		CreatedAt: product.CreatedAt.Format(time.RFC3339),
		UpdatedAt: product.UpdatedAt.Format(time.RFC3339),
	}
}

func productsToResponse(products []domain.Product) []ProductResponse {
	resp := make([]ProductResponse, len(products))
	for i := range products {
		resp[i] = productToResponse(products[i])
	}
	return resp
}
