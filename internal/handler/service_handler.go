package handler

import (
	"errors"
	"time"

	"cariella/internal/middleware"
	"cariella/internal/model"
	"cariella/pkg/database"
	"cariella/pkg/logger"
	"cariella/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetServiceHistory returns the completed service requests for one of
// the caller's vehicles, newest preferred date first. The vehicle must
// belong to the caller; a foreign vehicle id gets the same response as
// a missing one.
func GetServiceHistory(c echo.Context) error {
	log := logger.FromContext(c)

	sess, _ := middleware.CurrentSession(c)

	vehicleID, ok := parseID(c.QueryParam("vehicle_id"))
	if !ok {
		return respondFail(c, "Vehicle ID is required.")
	}

	ctx := c.Request().Context()
	db := database.GetDB().WithContext(ctx)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var vehicle model.Vehicle
	result := db.Where("id = ? AND owner_id = ?", vehicleID, sess.UserID).First(&vehicle)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return respondFail(c, "Vehicle not found.")
		}
		log.Error("Failed to check vehicle ownership", zap.Error(result.Error))
		return respondFail(c, databaseErrorMessage)
	}

	history := []struct {
		PreferredDate      time.Time `json:"preferred_date"`
		ServiceCategory    string    `json:"service_category"`
		ServiceDescription string    `json:"service_description"`
		ActualCost         float64   `json:"actual_cost"`
	}{}

	err := db.Model(&model.ServiceRequest{}).
		Select("service_requests.preferred_date, service_categories.name AS service_category, service_requests.service_description, service_requests.actual_cost").
		Joins("JOIN service_categories ON service_requests.service_category_id = service_categories.id").
		Where("service_requests.vehicle_id = ? AND service_requests.status = ?", vehicleID, model.ServiceRequestStatusCompleted).
		Order("service_requests.preferred_date DESC").
		Scan(&history).Error
	if err != nil {
		log.Error("Failed to load service history", zap.Error(err))
		return respondFail(c, databaseErrorMessage)
	}

	return respondOK(c, echo.Map{"history": history})
}
