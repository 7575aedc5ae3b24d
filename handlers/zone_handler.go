package handlers

import (
	"errors"
	"net/http"

	"safecity-dashboard/be/logger"
	"safecity-dashboard/be/models"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ZoneHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewZoneHandler(db *gorm.DB) *ZoneHandler {
	return &ZoneHandler{
		db:  db,
		log: logger.GetLoggerWith(logger.NameSettings, zap.String(logger.FieldCategory, "zones")),
	}
}

type ZoneRequest struct {
	Address   string  `json:"address" zog:"address"`
	Latitude  float64 `json:"latitude" zog:"latitude"`
	Longitude float64 `json:"longitude" zog:"longitude"`
}

var zoneRequestSchema = z.Struct(z.Shape{
	"Address":   z.String().Required(),
	"Latitude":  z.Float64().GTE(-90).LTE(90).Required(),
	"Longitude": z.Float64().GTE(-180).LTE(180).Required(),
})

func (h *ZoneHandler) GetZones(c *gin.Context) {
	zones := []models.Zone{}
	if err := h.db.WithContext(c.Request.Context()).Order("id DESC").Find(&zones).Error; err != nil {
		h.log.Error("Failed to fetch zones", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch zones"})
		return
	}

	c.JSON(http.StatusOK, zones)
}

func (h *ZoneHandler) GetZone(c *gin.Context) {
	zone, ok := h.findZone(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, zone)
}

func (h *ZoneHandler) CreateZone(c *gin.Context) {
	var req ZoneRequest
	if errs := zoneRequestSchema.Parse(zhttp.Request(c.Request), &req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address, latitude and longitude are required"})
		return
	}

	zone := models.Zone{
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&zone).Error; err != nil {
		h.log.Error("Failed to create zone", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create zone"})
		return
	}

	h.log.Info("Zone created", zap.Uint("id", zone.ID), zap.String("address", zone.Address))
	c.JSON(http.StatusOK, zone)
}

func (h *ZoneHandler) UpdateZone(c *gin.Context) {
	zone, ok := h.findZone(c)
	if !ok {
		return
	}

	var req ZoneRequest
	if errs := zoneRequestSchema.Parse(zhttp.Request(c.Request), &req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address, latitude and longitude are required"})
		return
	}

	zone.Address = req.Address
	zone.Latitude = req.Latitude
	zone.Longitude = req.Longitude
	if err := h.db.WithContext(c.Request.Context()).Save(zone).Error; err != nil {
		h.log.Error("Failed to update zone", zap.Uint("id", zone.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update zone"})
		return
	}

	c.JSON(http.StatusOK, zone)
}

func (h *ZoneHandler) DeleteZone(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Zone not found"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Delete(&models.Zone{}, id)
	if res.Error != nil {
		h.log.Error("Failed to delete zone", zap.Uint("id", id), zap.Error(res.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete zone"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Zone not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Zone deleted successfully"})
}

func (h *ZoneHandler) findZone(c *gin.Context) (*models.Zone, bool) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Zone not found"})
		return nil, false
	}

	var zone models.Zone
	if err := h.db.WithContext(c.Request.Context()).First(&zone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Zone not found"})
			return nil, false
		}
		h.log.Error("Failed to fetch zone", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch zone"})
		return nil, false
	}
	return &zone, true
}
