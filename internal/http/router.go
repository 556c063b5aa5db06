// README: HTTP router registration.
package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/http/handlers"
	"wayfarer/internal/http/middleware"
	"wayfarer/internal/infra"
	"wayfarer/internal/modules/places"
	"wayfarer/internal/modules/trip"
	"wayfarer/internal/service"
)

type RouterDeps struct {
	Engine   *service.Engine
	Places   *places.Service
	Trips    *trip.Recorder
	Verifier infra.TokenVerifier
	DeviceID string
}

// NewRouter builds the control API. A nil Verifier disables authentication.
func NewRouter(deps RouterDeps) *gin.Engine {
	engine, verifier, deviceID := deps.Engine, deps.Verifier, deps.DeviceID
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	if verifier != nil {
		api.Use(middleware.Auth(verifier))
	} else {
		log.Printf("http: authentication disabled")
	}

	routeHandler := handlers.NewRouteHandler(engine)
	api.POST("/routes", routeHandler.Request)
	api.GET("/routes", routeHandler.Get)
	api.POST("/routes/select", routeHandler.Select)
	api.DELETE("/routes", routeHandler.Clear)

	navHandler := handlers.NewNavigationHandler(engine)
	api.GET("/navigation", navHandler.Status)
	api.POST("/navigation/start", navHandler.Start)
	api.POST("/navigation/stop", navHandler.Stop)
	api.POST("/navigation/recenter", navHandler.Recenter)
	api.POST("/navigation/view", navHandler.ToggleView)
	api.POST("/navigation/align", navHandler.Align)

	mapHandler := handlers.NewMapHandler(engine)
	api.GET("/map", mapHandler.Snapshot)
	api.POST("/map/region-will-change", mapHandler.RegionWillChange)
	api.PUT("/map/viewport", mapHandler.SetViewport)
	api.GET("/map/coordinate", mapHandler.Coordinate)
	api.GET("/map/point", mapHandler.Point)

	deviceHandler := handlers.NewDeviceHandler(engine)
	dev := api.Group("/device", middleware.RequireDevice(deviceID))
	dev.PUT("/location", deviceHandler.Location)
	dev.PUT("/heading", deviceHandler.Heading)
	dev.PUT("/authorization", deviceHandler.Authorization)
	api.POST("/heading/enable", deviceHandler.EnableHeading)
	api.POST("/heading/disable", deviceHandler.DisableHeading)

	historyHandler := handlers.NewHistoryHandler(engine)
	api.GET("/history", historyHandler.Recent)

	placesHandler := handlers.NewPlacesHandler(deps.Places, engine)
	api.GET("/places", placesHandler.Search)

	tripHandler := handlers.NewTripHandler(deps.Trips)
	api.GET("/trips", tripHandler.List)
	api.GET("/trips/:id", tripHandler.Get)

	return r
}
