package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/kitchen-queue/controllers"
	"github.com/yeremiapane/kitchen-queue/hub"
	"github.com/yeremiapane/kitchen-queue/lifecycle"
	"github.com/yeremiapane/kitchen-queue/middlewares"
)

// SetupRouter wires every endpoint. Customer endpoints are public; kitchen
// endpoints require a chef token; management endpoints require an owner token.
func SetupRouter(db *gorm.DB, engine *lifecycle.Engine, h *hub.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.NewRateLimiter(100, 60).RateLimit())

	customerOrders := controllers.NewCustomerOrderController(db, engine)
	chefOrders := controllers.NewChefOrderController(db, engine)
	activity := controllers.NewActivityLogController(engine)
	ws := controllers.NewWSController(db, h)
	menus := controllers.NewMenuController(db)
	chefs := controllers.NewChefController(db)
	users := controllers.NewUserController(db)
	restaurants := controllers.NewRestaurantController(db)
	analytics := controllers.NewAnalyticsController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	strict := middlewares.NewStrictRateLimiter()
	auth := r.Group("/auth")
	{
		auth.POST("/register", strict, users.Register)
		auth.POST("/login", strict, users.Login)
		auth.POST("/chef/login", strict, chefs.Login)
	}

	// Customer surface. No account needed; orders are claimed by name.
	public := r.Group("/api/v1")
	{
		public.GET("/restaurants", restaurants.ListRestaurants)
		public.GET("/restaurants/:restaurant_id", restaurants.GetRestaurant)
		public.GET("/restaurants/:restaurant_id/categories", menus.ListCategories)
		public.GET("/categories/:category_id/items", menus.ListItems)

		public.POST("/orders", customerOrders.PlaceOrder)
		public.GET("/orders", customerOrders.ListMyOrders)
		public.GET("/orders/:order_id", customerOrders.GetOrder)
		public.GET("/orders/:order_id/status", customerOrders.GetOrderStatus)
		public.POST("/orders/:order_id/cancel", customerOrders.CancelOrder)

		public.GET("/ws/orders/:order_id", ws.OrderStream)
	}

	// Kitchen surface.
	chef := r.Group("/api/v1/kitchen")
	chef.Use(middlewares.AuthMiddleware(), middlewares.RequireRole("chef"))
	{
		chef.GET("/restaurants/:restaurant_id/orders", chefOrders.GetKitchenOrders)
		chef.GET("/orders/:order_id", chefOrders.GetOrder)
		chef.GET("/orders/:order_id/history", chefOrders.GetOrderHistory)

		chef.POST("/orders/:order_id/accept", chefOrders.Accept)
		chef.POST("/orders/:order_id/start-cooking", chefOrders.StartCooking)
		chef.POST("/orders/:order_id/ready", chefOrders.MarkReady)
		chef.POST("/orders/:order_id/complete", chefOrders.Complete)
		chef.POST("/orders/:order_id/cancel", chefOrders.Cancel)
		chef.POST("/orders/:order_id/reject", chefOrders.Reject)

		chef.POST("/orders/:order_id/assign", chefOrders.Assign)
		chef.POST("/orders/:order_id/unassign", chefOrders.Unassign)
		chef.PATCH("/orders/:order_id/note", chefOrders.UpdateNote)
		chef.PATCH("/orders/:order_id/priority", chefOrders.UpdatePriority)
		chef.POST("/orders/:order_id/delay", chefOrders.MarkDelayed)

		chef.GET("/restaurants/:restaurant_id/logs", activity.GetRestaurantLogs)
		chef.GET("/orders/:order_id/logs", activity.GetOrderLogs)

		chef.GET("/ws/restaurants/:restaurant_id/orders", ws.KitchenStream)
	}

	// Owner surface.
	owner := r.Group("/api/v1/manage")
	owner.Use(middlewares.AuthMiddleware(), middlewares.RequireRole("owner"))
	{
		owner.POST("/restaurants", restaurants.CreateRestaurant)
		owner.PATCH("/restaurants/:restaurant_id", restaurants.UpdateRestaurant)
		owner.PATCH("/restaurants/:restaurant_id/settings", restaurants.UpdateSettings)

		owner.POST("/restaurants/:restaurant_id/chefs", chefs.CreateChef)
		owner.GET("/restaurants/:restaurant_id/chefs", chefs.ListChefs)
		owner.PATCH("/chefs/:chef_id", chefs.UpdateChef)
		owner.DELETE("/chefs/:chef_id", chefs.DeleteChef)

		owner.POST("/categories", menus.CreateCategory)
		owner.PATCH("/categories/:category_id", menus.UpdateCategory)
		owner.DELETE("/categories/:category_id", menus.DeleteCategory)
		owner.POST("/items", menus.CreateItem)
		owner.PATCH("/items/:item_id", menus.UpdateItem)
		owner.PATCH("/items/:item_id/availability", menus.UpdateAvailability)
		owner.DELETE("/items/:item_id", menus.DeleteItem)

		owner.GET("/restaurants/:restaurant_id/stats", analytics.GetOrderStats)
	}

	return r
}
