package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-delivery-web/apiclient"
	"github.com/yeremiapane/food-delivery-web/cache"
	"github.com/yeremiapane/food-delivery-web/config"
	"github.com/yeremiapane/food-delivery-web/controllers"
	"github.com/yeremiapane/food-delivery-web/metrics"
	"github.com/yeremiapane/food-delivery-web/middlewares"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/notify"
	"github.com/yeremiapane/food-delivery-web/services"
	"github.com/yeremiapane/food-delivery-web/session"
)

// Deps is everything the routes need. main builds it once; tests build it with fakes.
type Deps struct {
	Config   config.Config
	API      *apiclient.Client
	Sessions *session.Service
	Hub      *notify.Hub
	Trackers *services.TrackerRegistry
	Toggler  *services.AvailabilityToggler
	Cache    cache.Cache
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(metrics.Middleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.Config.CORSOrigin))
	r.Use(middlewares.NewRateLimiter(d.Config.RateLimitRPS, d.Config.RateLimitBurst).StartCleanup(time.Minute).RateLimit())

	strict := middlewares.NewStrictRateLimiter().StartCleanup(time.Minute).RateLimit()
	auth := middlewares.AuthMiddleware(d.Sessions)

	authCtrl := controllers.NewAuthController(d.Sessions, d.Config.GinMode == gin.ReleaseMode)
	homeCtrl := controllers.NewHomeController(services.NewStorefrontService(d.API, d.Cache), d.Config.MapsAPIKey)
	restaurantCtrl := controllers.NewRestaurantController(d.API, d.Toggler)
	categoryCtrl := controllers.NewCategoryController(services.NewCategoryService(d.API, d.Cache))
	menuItemCtrl := controllers.NewMenuItemController(services.NewMenuItemService(d.API, d.Cache))
	driverCtrl := controllers.NewDriverController(d.API, d.Trackers)
	orderCtrl := controllers.NewOrderController(d.API)
	checkoutCtrl := controllers.NewCheckoutController(services.NewCheckoutService())
	wsCtrl := controllers.NewWSController(d.Hub, d.Trackers, d.Config.CORSOrigin)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(d.Sessions), wsCtrl.Handle)

	api := r.Group("/api")
	{
		api.GET("/config", homeCtrl.Config)
		api.GET("/home", homeCtrl.Home)
		api.GET("/nav", middlewares.OptionalAuth(d.Sessions), homeCtrl.Nav)
		api.GET("/restaurants/:id/menu", homeCtrl.RestaurantMenu)
		api.POST("/restaurants/register", strict, restaurantCtrl.Register)

		authGroup := api.Group("/auth", middlewares.NoStore())
		{
			authGroup.POST("/login", strict, authCtrl.Login)
			authGroup.GET("/session", auth, authCtrl.Session)
			authGroup.POST("/logout", auth, authCtrl.Logout)
		}

		checkout := api.Group("/checkout", middlewares.NoStore())
		{
			checkout.POST("/summary", checkoutCtrl.Summary)
			checkout.POST("/pay", checkoutCtrl.Pay)
		}

		api.GET("/orders/:id", auth, orderCtrl.GetOrderByID)
		api.GET("/deliveries/:id", auth, orderCtrl.GetDeliveryByID)
	}

	restaurant := api.Group("/restaurant", auth, middlewares.RoleCheck(models.RoleRestaurant))
	{
		restaurant.GET("/profile", restaurantCtrl.Profile)
		restaurant.PUT("/profile", restaurantCtrl.UpdateProfile)
		restaurant.GET("/availability", restaurantCtrl.Availability)
		restaurant.POST("/availability/toggle", restaurantCtrl.ToggleAvailability)

		restaurant.GET("/categories", categoryCtrl.GetAllCategories)
		restaurant.GET("/categories/:id", categoryCtrl.GetCategoryByID)
		restaurant.POST("/categories", categoryCtrl.CreateCategory)
		restaurant.PUT("/categories/:id", categoryCtrl.UpdateCategory)
		restaurant.DELETE("/categories/:id", categoryCtrl.DeleteCategory)

		restaurant.GET("/menu-items", menuItemCtrl.GetAllMenuItems)
		restaurant.GET("/menu-items/:id", menuItemCtrl.GetMenuItemByID)
		restaurant.POST("/menu-items", menuItemCtrl.CreateMenuItem)
		restaurant.PUT("/menu-items/:id", menuItemCtrl.UpdateMenuItem)
		restaurant.DELETE("/menu-items/:id", menuItemCtrl.DeleteMenuItem)
	}

	driver := api.Group("/driver", auth, middlewares.RoleCheck(models.RoleDelivery))
	{
		driver.POST("/register", driverCtrl.Register)
		driver.GET("/me", driverCtrl.Me)
		driver.POST("/availability", driverCtrl.SetAvailability)
		driver.POST("/deliveries/:id/accept", middlewares.ActionLogger("Accept delivery"), driverCtrl.AcceptDelivery)
		driver.POST("/deliveries/:id/complete", middlewares.ActionLogger("Complete delivery"), driverCtrl.CompleteDelivery)
	}

	return r
}
