package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/girrex/roster-web/internal/config"
	"github.com/girrex/roster-web/internal/girrex"
	"github.com/girrex/roster-web/internal/http/handlers"
	"github.com/girrex/roster-web/internal/http/middleware"
	"github.com/girrex/roster-web/internal/posadmin"
	"github.com/girrex/roster-web/internal/roster"
	"github.com/girrex/roster-web/internal/zoneadmin"

	_ "github.com/girrex/roster-web/docs"
)

func Router(cfg config.Config, client girrex.Client, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Edit-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	v := validator.New()
	h := &handlers.Handler{
		Store:        &roster.Store{Client: client, Logger: logger},
		Client:       client,
		Positions:    &posadmin.Controller{Client: client, Validate: v},
		Zones:        &zoneadmin.Controller{Client: client, Validate: v},
		Validator:    v,
		Logger:       logger,
		HealthCentre: cfg.HealthCentreID,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.Use(middleware.EditPermission(cfg.EditKey))
	{
		api.GET("/roster/:centre/:year/:month", h.GetGrid)
		api.GET("/centres/:centre/positions", h.PositionsList)
		api.GET("/centres/:centre/zones", h.ZonesList)
		api.GET("/timesheet/:centre/:date", h.TimesheetGet)
	}

	edit := api.Group("")
	edit.Use(middleware.RequireEdit())
	{
		edit.POST("/roster/:centre/:year/:month/editor", h.ActivateCell)
		edit.POST("/roster/:centre/:year/:month/cell", h.SaveCell)
		edit.POST("/roster/:centre/:year/:month/validate", h.ValidateMonth)
		edit.POST("/roster/comment", h.SaveComment)

		edit.POST("/centres/:centre/positions", h.PositionAdd)
		edit.POST("/centres/:centre/positions/close", h.PositionsClose)
		edit.POST("/positions/edit-state", h.PositionBeginEdit)
		edit.POST("/positions/:id/update", h.PositionUpdate)
		edit.POST("/positions/:id/delete", h.PositionDelete)

		edit.POST("/centres/:centre/zones", h.ZoneAdd)
		edit.POST("/zones/:id/update", h.ZoneUpdate)
		edit.POST("/zones/:id/delete", h.ZoneDelete)

		edit.POST("/timesheet/field", h.TimesheetSaveField)
		edit.POST("/timesheet/:centre/:date/reopen", h.TimesheetReopen)
		edit.POST("/timesheet/:centre/force-lock", h.TimesheetForceLock)
		edit.POST("/service/:centre/manage", h.ServiceManage)
		edit.POST("/faults/:id/resolve", h.FaultResolve)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
