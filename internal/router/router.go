package router

import (
	"net/http"
	"time"

	"empanadas/internal/auth"
	"empanadas/internal/builder"
	"empanadas/internal/cart"
	"empanadas/internal/catalog"
	"empanadas/internal/menu"
	"empanadas/internal/middleware"
	"empanadas/internal/order"
	"empanadas/internal/totem"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	CORSOrigins []string
}

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Auth    *auth.Handler
	Catalog *catalog.Handler
	Cart    *cart.Handler
	Builder *builder.Handler
	Menu    *menu.Handler
	Order   *order.Handler
	Totem   *totem.Handler
}

func NewRouter(opts Options, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.SessionHeader},
		ExposeHeaders:    []string{middleware.SessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.SessionMiddleware(), middleware.RequestLogger())

	// ───────────────────────── HEALTH ─────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ───────────────────────── AUTH ─────────────────────────
	r.POST("/auth/login", h.Auth.Login)
	r.POST("/auth/register",
		middleware.AuthMiddleware(),
		middleware.RequireRole(auth.RoleAdmin),
		h.Auth.Register,
	)

	// ───────────────────────── PUBLIC CATALOG ─────────────────────────
	r.GET("/stores", h.Catalog.ListStores)
	r.GET("/stores/:id/catalog", h.Catalog.StoreCatalog)

	// ───────────────────────── COMBO BUILDER ─────────────────────────
	h.Builder.RegisterRoutes(r)

	// ───────────────────────── CART ─────────────────────────
	carts := r.Group("/cart")
	{
		carts.GET("", h.Cart.Get)
		carts.DELETE("", h.Cart.Clear)
		carts.POST("/items", h.Cart.AddItem)
		carts.PATCH("/items/:lineId", h.Cart.UpdateQuantity)
		carts.DELETE("/items/:lineId", h.Cart.RemoveItem)
	}

	// ───────────────────────── ORDERS ─────────────────────────
	r.POST("/orders", h.Order.Create)

	// ───────────────────────── TOTEM ─────────────────────────
	r.GET("/totem/config", h.Totem.Config)
	r.POST("/totem/events", h.Totem.RecordEvent)

	// ───────────────────────── BACK OFFICE ─────────────────────────
	// STAFF runs the kitchen: orders and stock. Catalog edits are ADMIN only.
	staff := r.Group("/admin")
	staff.Use(
		middleware.AuthMiddleware(),
		middleware.RequireRole(auth.RoleAdmin, auth.RoleStaff),
	)
	{
		staff.GET("/orders", h.Order.List)
		staff.GET("/orders/:id", h.Order.Get)
		staff.PATCH("/orders/:id/status", h.Order.UpdateStatus)

		staff.GET("/stores", h.Catalog.AdminListStores)
		staff.PATCH("/stores/:id/products/:productId/availability", h.Catalog.SetAvailability)

		staff.GET("/totem/events", h.Totem.ListEvents)
	}

	admin := r.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(),
		middleware.RequireRole(auth.RoleAdmin),
	)
	{
		// Stores
		admin.POST("/stores", h.Catalog.CreateStore)
		admin.PUT("/stores/:id", h.Catalog.UpdateStore)
		admin.DELETE("/stores/:id", h.Catalog.DeleteStore)

		// Categories
		admin.GET("/categories", h.Catalog.ListCategories)
		admin.POST("/categories", h.Catalog.CreateCategory)
		admin.PUT("/categories/:id", h.Catalog.UpdateCategory)
		admin.DELETE("/categories/:id", h.Catalog.DeleteCategory)

		// Products
		admin.GET("/products", h.Catalog.ListProducts)
		admin.POST("/products", h.Catalog.CreateProduct)
		admin.PUT("/products/:id", h.Catalog.UpdateProduct)
		admin.DELETE("/products/:id", h.Catalog.DeleteProduct)
		admin.POST("/products/:id/image", h.Catalog.UploadProductImage)

		// Combos
		admin.GET("/combos", h.Catalog.ListCombos)
		admin.POST("/combos", h.Catalog.CreateCombo)
		admin.PUT("/combos/:id", h.Catalog.UpdateCombo)
		admin.DELETE("/combos/:id", h.Catalog.DeleteCombo)
		admin.POST("/combos/:id/image", h.Catalog.UploadComboImage)

		// Bulk menu import
		admin.POST("/menu/import", h.Menu.Import)
	}

	return r
}
