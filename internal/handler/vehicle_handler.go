package handler

import (
	"time"

	"cariella/internal/middleware"
	"cariella/internal/model"
	"cariella/pkg/database"
	"cariella/pkg/logger"
	"cariella/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AddVehicle registers a vehicle for the authenticated car owner. The
// catalog ids must parse as integers but are stored as provided; there
// is no existence check against the reference tables.
func AddVehicle(c echo.Context) error {
	log := logger.FromContext(c)

	sess, _ := middleware.CurrentSession(c)

	var req struct {
		Make               string `json:"make"`
		Model              string `json:"model"`
		Year               string `json:"year"`
		BodyStyle          string `json:"body_style"`
		FuelType           string `json:"fuel_type"`
		Transmission       string `json:"transmission"`
		RegistrationNumber string `json:"registration_number"`
	}

	if err := c.Bind(&req); err != nil {
		return respondFail(c, "Invalid request.")
	}

	if req.Make == "" || req.Model == "" || req.Year == "" || req.BodyStyle == "" ||
		req.FuelType == "" || req.Transmission == "" || req.RegistrationNumber == "" {
		return respondFail(c, "Please fill in all required fields.")
	}

	makeID, okMake := parseID(req.Make)
	modelID, okModel := parseID(req.Model)
	year, okYear := parseID(req.Year)
	bodyStyleID, okBody := parseID(req.BodyStyle)
	fuelTypeID, okFuel := parseID(req.FuelType)
	transmissionID, okTransmission := parseID(req.Transmission)
	if !okMake || !okModel || !okYear || !okBody || !okFuel || !okTransmission {
		return respondFail(c, "Invalid vehicle details provided.")
	}

	vehicle := model.Vehicle{
		OwnerID:            sess.UserID,
		MakeID:             makeID,
		ModelID:            modelID,
		Year:               int(year),
		BodyStyleID:        bodyStyleID,
		FuelTypeID:         fuelTypeID,
		TransmissionID:     transmissionID,
		RegistrationNumber: req.RegistrationNumber,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().WithContext(c.Request().Context()).Create(&vehicle); result.Error != nil {
		log.Error("Failed to create vehicle", zap.Error(result.Error))
		return respondFail(c, databaseErrorMessage)
	}

	log.Info("Vehicle added", zap.Uint("vehicle_id", vehicle.ID), zap.Uint("owner_id", sess.UserID))
	return respondOK(c, echo.Map{
		"message":    "Vehicle added successfully.",
		"vehicle_id": vehicle.ID,
		"redirect":   "/dashboard/owner/vehicles",
	})
}

// GetVehicles lists the caller's vehicles with make and model names,
// ordered by make then model.
func GetVehicles(c echo.Context) error {
	log := logger.FromContext(c)

	sess, _ := middleware.CurrentSession(c)

	rows := []struct {
		ID                 uint   `json:"id"`
		Make               string `json:"make"`
		Model              string `json:"model"`
		Year               int    `json:"year"`
		RegistrationNumber string `json:"registration_number"`
	}{}

	err := database.GetDB().WithContext(c.Request().Context()).
		Model(&model.Vehicle{}).
		Select("vehicles.id, vehicle_makes.name AS make, vehicle_models.name AS model, vehicles.year, vehicles.registration_number").
		Joins("JOIN vehicle_makes ON vehicles.make_id = vehicle_makes.id").
		Joins("JOIN vehicle_models ON vehicles.model_id = vehicle_models.id").
		Where("vehicles.owner_id = ?", sess.UserID).
		Order("vehicle_makes.name, vehicle_models.name").
		Scan(&rows).Error
	if err != nil {
		log.Error("Failed to list vehicles", zap.Error(err))
		return respondFail(c, databaseErrorMessage)
	}

	return respondOK(c, echo.Map{"vehicles": rows})
}
