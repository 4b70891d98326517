// Package bridge exposes the app surface over a small local REST API for
// front ends that cannot link the Go packages directly.
package bridge

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ulrichard/uttesla/app"
	"github.com/ulrichard/uttesla/metrics"
)

const (
	DefaultTemperature = 21
	DefaultChargeLimit = 80
)

var log = logrus.StandardLogger()

type Handler struct {
	app *app.App
}

func NewHandler(a *app.App) *Handler {
	return &Handler{app: a}
}

type climateRequest struct {
	Enable      *bool `json:"enable" binding:"required"`
	Temperature *int  `json:"temperature"`
}

type doorsRequest struct {
	Unlock *bool `json:"unlock" binding:"required"`
}

type chargingRequest struct {
	Start *bool `json:"start" binding:"required"`
	Limit *int  `json:"limit"`
}

type vehicleResponse struct {
	Index       int    `json:"index"`
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/login", h.Login)
		api.GET("/roster", h.Roster)
		api.GET("/log", h.Log)
		api.GET("/state", h.State)

		api.GET("/vehicles", h.ListVehicles)
		api.GET("/vehicles/:idx/snapshot", h.Snapshot)
		api.POST("/vehicles/:idx/climate", h.Climate)
		api.POST("/vehicles/:idx/doors", h.Doors)
		api.POST("/vehicles/:idx/charging", h.Charging)
		api.POST("/vehicles/:idx/honk", h.Honk)
		api.POST("/vehicles/:idx/flash", h.Flash)
		api.POST("/vehicles/:idx/remote-start", h.RemoteStart)
	}

	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// vehicleIndex parses the :idx path parameter and answers 400 if it is not
// a number.
func vehicleIndex(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle index"})
		return 0, false
	}
	return idx, true
}

func result(c *gin.Context, ok bool) {
	c.JSON(http.StatusOK, gin.H{"ok": ok})
}

// Login
// POST /api/login
func (h *Handler) Login(c *gin.Context) {
	result(c, h.app.Login(c.Request.Context()))
}

// Roster resolves the vehicles and returns their names, one per line.
// GET /api/roster
func (h *Handler) Roster(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"roster": h.app.Roster(c.Request.Context())})
}

func (h *Handler) ListVehicles(c *gin.Context) {
	vehicles := h.app.Vehicles()
	res := make([]vehicleResponse, len(vehicles))
	for i, v := range vehicles {
		res[i] = vehicleResponse{Index: i, ID: v.ID.String(), DisplayName: v.DisplayName}
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

// Snapshot returns the reduced vehicle state as produced by the core,
// byte for byte.
// GET /api/vehicles/:idx/snapshot
func (h *Handler) Snapshot(c *gin.Context) {
	idx, ok := vehicleIndex(c)
	if !ok {
		return
	}

	out := h.app.VehicleSnapshot(c.Request.Context(), idx)
	if out == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Snapshot unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(out))
}

// Climate
// POST /api/vehicles/:idx/climate {"enable": true, "temperature": 21}
func (h *Handler) Climate(c *gin.Context) {
	idx, ok := vehicleIndex(c)
	if !ok {
		return
	}
	var req climateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	temp := DefaultTemperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	result(c, h.app.SetClimate(c.Request.Context(), idx, *req.Enable, temp))
}

// Doors
// POST /api/vehicles/:idx/doors {"unlock": false}
func (h *Handler) Doors(c *gin.Context) {
	idx, ok := vehicleIndex(c)
	if !ok {
		return
	}
	var req doorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	result(c, h.app.SetDoors(c.Request.Context(), idx, *req.Unlock))
}

// Charging
// POST /api/vehicles/:idx/charging {"start": true, "limit": 80}
func (h *Handler) Charging(c *gin.Context) {
	idx, ok := vehicleIndex(c)
	if !ok {
		return
	}
	var req chargingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	limit := DefaultChargeLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	result(c, h.app.SetCharging(c.Request.Context(), idx, *req.Start, limit))
}

func (h *Handler) Honk(c *gin.Context) {
	if idx, ok := vehicleIndex(c); ok {
		result(c, h.app.Honk(c.Request.Context(), idx))
	}
}

func (h *Handler) Flash(c *gin.Context) {
	if idx, ok := vehicleIndex(c); ok {
		result(c, h.app.Flash(c.Request.Context(), idx))
	}
}

func (h *Handler) RemoteStart(c *gin.Context) {
	if idx, ok := vehicleIndex(c); ok {
		result(c, h.app.RemoteStart(c.Request.Context(), idx))
	}
}

// Log returns the newest event log entries, newest first.
// GET /api/log
func (h *Handler) Log(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"log": h.app.PollLog()})
}

func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.app.State()})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
