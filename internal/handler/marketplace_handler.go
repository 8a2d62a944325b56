package handler

import (
	"encoding/json"
	"time"

	"cariella/internal/model"
	"cariella/pkg/database"
	"cariella/pkg/logger"
	"cariella/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type marketListing struct {
	ID      uint     `json:"id"`
	Price   float64  `json:"price"`
	Mileage int      `json:"mileage"`
	Images  []string `json:"images"`
	Make    string   `json:"make"`
	Model   string   `json:"model"`
	Year    int      `json:"year"`
	City    string   `json:"city"`
}

// GetListings returns the active marketplace listings with make, model
// and city names, newest first. The images column stores a JSON array
// of URLs as text; it decodes to an ordered slice, with null, empty or
// malformed values yielding an empty slice rather than null.
func GetListings(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.ListingFeedCounter.Inc()

	var rows []struct {
		ID      uint
		Price   float64
		Mileage int
		Images  string
		Make    string
		Model   string
		Year    int
		City    string
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	err := database.GetDB().WithContext(c.Request().Context()).
		Model(&model.VehicleListing{}).
		Select("vehicle_listings.id, vehicle_listings.price, vehicle_listings.mileage, vehicle_listings.images, vehicle_makes.name AS make, vehicle_models.name AS model, vehicle_listings.year, cities.name AS city").
		Joins("JOIN vehicle_makes ON vehicle_listings.make_id = vehicle_makes.id").
		Joins("JOIN vehicle_models ON vehicle_listings.model_id = vehicle_models.id").
		Joins("JOIN cities ON vehicle_listings.location_city_id = cities.id").
		Where("vehicle_listings.status = ?", model.ListingStatusActive).
		Order("vehicle_listings.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		log.Error("Failed to load marketplace listings", zap.Error(err))
		return respondFail(c, databaseErrorMessage)
	}

	listings := make([]marketListing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, marketListing{
			ID:      row.ID,
			Price:   row.Price,
			Mileage: row.Mileage,
			Images:  decodeImages(row.Images),
			Make:    row.Make,
			Model:   row.Model,
			Year:    row.Year,
			City:    row.City,
		})
	}

	return respondOK(c, echo.Map{"listings": listings})
}

func decodeImages(raw string) []string {
	images := []string{}
	if raw == "" {
		return images
	}
	if err := json.Unmarshal([]byte(raw), &images); err != nil || images == nil {
		return []string{}
	}
	return images
}
