// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-api/internal/domain/user"
	"github.com/your-org/storefront-api/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-api/internal/interfaces/http/middleware"
)

// Handlers groups every endpoint handler the API mounts
type Handlers struct {
	Auth      *handlers.AuthHandler
	Users     *handlers.UserAdminHandler
	Products  *handlers.ProductHandler
	Taxonomy  *handlers.CategoryHandler
	Reviews   *handlers.ReviewHandler
	Cart      *handlers.CartHandler
	Checkout  *handlers.CheckoutHandler
	Orders    *handlers.OrderHandler
	Payments  *handlers.PaymentHandler
	Content   *handlers.ContentHandler
	Store     *handlers.StoreHandler
	Analytics *handlers.AnalyticsHandler
	Uploads   *handlers.UploadHandler
}

// SetupRoutes mounts all routes on rg (normally /api/v1)
func SetupRoutes(rg *gin.RouterGroup, h Handlers, authn *middleware.Authenticator) {
	required := authn.Required()

	SetupAuthRoutes(rg, h, authn)
	SetupCatalogRoutes(rg, h, required)
	SetupShoppingRoutes(rg, h, required)
	SetupContentRoutes(rg, h)

	admin := rg.Group("/admin")
	admin.Use(required, middleware.RequireRole(user.RoleAdmin))
	SetupAdminRoutes(admin, h)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h Handlers, authn *middleware.Authenticator) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh-token", h.Auth.RefreshToken)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/logout", authn.Optional(), h.Auth.Logout)

		protected := auth.Group("")
		protected.Use(authn.Required())
		{
			protected.GET("/current", h.Auth.Current)
			protected.PUT("/profile", h.Auth.UpdateProfile)
			protected.PATCH("/change-password", h.Auth.ChangePassword)
		}
	}

	rg.GET("/roles", authn.Required(), middleware.RequireRole(user.RoleAdmin), h.Users.GetRoles)
}

// SetupCatalogRoutes sets up the public catalog and review routes
func SetupCatalogRoutes(rg *gin.RouterGroup, h Handlers, required gin.HandlerFunc) {
	products := rg.Group("/products")
	{
		products.GET("", h.Products.GetProducts)
		products.GET("/:slug", h.Products.GetProductBySlug)
		products.GET("/:slug/reviews", h.Reviews.GetProductReviews)
		products.GET("/:slug/reviews/summary", h.Reviews.GetReviewSummary)
	}

	rg.GET("/categories", h.Taxonomy.GetCategories(false))
	rg.GET("/categories/:slug", h.Taxonomy.GetCategoryBySlug)
	rg.GET("/brands", h.Taxonomy.GetBrands(false))
	rg.GET("/brands/:slug", h.Taxonomy.GetBrandBySlug)
	rg.GET("/attributes", h.Taxonomy.GetAttributes)

	rg.POST("/reviews", required, h.Reviews.CreateReview)
}

// SetupShoppingRoutes sets up cart, checkout, order and payment routes
func SetupShoppingRoutes(rg *gin.RouterGroup, h Handlers, required gin.HandlerFunc) {
	cart := rg.Group("/cart")
	cart.Use(required)
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/items", h.Cart.AddToCart)
		cart.PUT("/items/:productId", h.Cart.UpdateCartItem)
		cart.DELETE("/items/:productId", h.Cart.RemoveFromCart)
	}

	checkout := rg.Group("/checkout")
	checkout.Use(required)
	{
		checkout.GET("/summary", h.Checkout.GetCheckoutSummary)
		checkout.POST("/validate", h.Checkout.ValidateCheckout)
	}

	orders := rg.Group("/orders")
	orders.Use(required)
	{
		orders.POST("", h.Orders.CreateOrder)
		orders.GET("", h.Orders.GetOrders)
		orders.GET("/:id", h.Orders.GetOrder)
		orders.PUT("/:id", h.Orders.UpdateOrder)
		orders.DELETE("/:id", h.Orders.DeleteOrder)
		orders.PUT("/:id/cancel", h.Orders.CancelOrder)
		orders.GET("/:id/invoice", h.Orders.GetInvoice)
	}

	payment := rg.Group("/payment")
	{
		payment.GET("/vn-pay", required, h.Payments.CreateVNPayURL)
		// the gateway calls these without a token; the signature authenticates them
		payment.GET("/vn-pay/return", h.Payments.VNPayReturn)
		payment.GET("/vn-pay/ipn", h.Payments.VNPayIPN)
	}
}

// SetupContentRoutes sets up the public content routes
func SetupContentRoutes(rg *gin.RouterGroup, h Handlers) {
	rg.GET("/news", h.Content.GetNews)
	rg.GET("/news/:slug", h.Content.GetNewsBySlug)
	rg.GET("/news-categories", h.Content.GetNewsCategories)
	rg.GET("/news-categories/:slug", h.Content.GetNewsCategoryBySlug)
	rg.GET("/slides", h.Content.GetSlides(false))
	rg.GET("/store-info", h.Store.GetStoreInfo)
	rg.POST("/visits", h.Analytics.TrackVisit)
}

// SetupAdminRoutes sets up admin related routes; rg is already guarded
func SetupAdminRoutes(rg *gin.RouterGroup, h Handlers) {
	rg.GET("/dashboard", h.Analytics.GetDashboard)

	users := rg.Group("/users")
	{
		users.GET("", h.Users.GetUsers)
		users.GET("/:id", h.Users.GetUser)
		users.PUT("/:id/roles", h.Users.UpdateRoles)
		users.PUT("/:id/lock", h.Users.SetLocked)
	}

	products := rg.Group("/products")
	{
		products.GET("", h.Products.AdminGetProducts)
		products.GET("/:id", h.Products.AdminGetProduct)
		products.POST("", h.Products.AdminCreateProduct)
		products.PUT("/:id", h.Products.AdminUpdateProduct)
		products.DELETE("/:id", h.Products.AdminDeleteProduct)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", h.Taxonomy.GetCategories(true))
		categories.GET("/:id", h.Taxonomy.AdminGetCategory)
		categories.POST("", h.Taxonomy.AdminCreateCategory)
		categories.PUT("/:id", h.Taxonomy.AdminUpdateCategory)
		categories.DELETE("/:id", h.Taxonomy.AdminDeleteCategory)
	}

	brands := rg.Group("/brands")
	{
		brands.GET("", h.Taxonomy.GetBrands(true))
		brands.POST("", h.Taxonomy.AdminCreateBrand)
		brands.PUT("/:id", h.Taxonomy.AdminUpdateBrand)
		brands.DELETE("/:id", h.Taxonomy.AdminDeleteBrand)
	}

	attributes := rg.Group("/attributes")
	{
		attributes.POST("", h.Taxonomy.AdminCreateAttribute)
		attributes.PUT("/:id", h.Taxonomy.AdminUpdateAttribute)
		attributes.DELETE("/:id", h.Taxonomy.AdminDeleteAttribute)
	}

	reviews := rg.Group("/reviews")
	{
		reviews.GET("", h.Reviews.AdminGetReviews)
		reviews.PUT("/:id/approve", h.Reviews.AdminApproveReview)
		reviews.PUT("/:id/reject", h.Reviews.AdminRejectReview)
		reviews.DELETE("/:id", h.Reviews.AdminDeleteReview)
	}

	orders := rg.Group("/orders")
	{
		orders.GET("", h.Orders.AdminGetOrders)
		orders.GET("/:id", h.Orders.AdminGetOrder)
		orders.PUT("/:id", h.Orders.AdminUpdateOrder)
		orders.PUT("/:id/status", h.Orders.AdminUpdateOrderStatus)
		orders.POST("/:id/reconcile-cod", h.Payments.AdminReconcileCOD)
		orders.GET("/:id/payments", h.Payments.AdminGetAttempts)
	}

	newsCategories := rg.Group("/news-categories")
	{
		newsCategories.GET("/:id", h.Content.AdminGetNewsCategory)
		newsCategories.POST("", h.Content.AdminCreateNewsCategory)
		newsCategories.PUT("/:id", h.Content.AdminUpdateNewsCategory)
		newsCategories.DELETE("/:id", h.Content.AdminDeleteNewsCategory)
	}

	news := rg.Group("/news")
	{
		news.GET("", h.Content.AdminGetNews)
		news.GET("/:id", h.Content.AdminGetNewsByID)
		news.POST("", h.Content.AdminCreateNews)
		news.PUT("/:id", h.Content.AdminUpdateNews)
		news.DELETE("/:id", h.Content.AdminDeleteNews)
	}

	slides := rg.Group("/slides")
	{
		slides.GET("", h.Content.GetSlides(true))
		slides.GET("/:id", h.Content.AdminGetSlide)
		slides.POST("", h.Content.AdminCreateSlide)
		slides.PUT("/:id", h.Content.AdminUpdateSlide)
		slides.DELETE("/:id", h.Content.AdminDeleteSlide)
	}

	rg.PUT("/store-info", h.Store.AdminUpdateStoreInfo)

	uploads := rg.Group("/uploads")
	{
		uploads.POST("/image", h.Uploads.UploadImage)
		uploads.POST("/images", h.Uploads.UploadImages)
		uploads.DELETE("", h.Uploads.DeleteImage)
	}
}
