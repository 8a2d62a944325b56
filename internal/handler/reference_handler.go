package handler

import (
	"time"

	"cariella/internal/model"
	"cariella/pkg/cache"
	"cariella/pkg/database"
	"cariella/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Reference data changes through back-office tooling only, so a short
// TTL is the only invalidation the cache needs.
const referenceCacheTTL = 5 * time.Minute

type referenceOption struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type locationsPayload struct {
	Countries []referenceOption          `json:"countries"`
	Cities    map[uint][]referenceOption `json:"cities"`
}

type catalogPayload struct {
	Makes         []referenceOption          `json:"makes"`
	Models        map[uint][]referenceOption `json:"models"`
	BodyStyles    []referenceOption          `json:"body_styles"`
	FuelTypes     []referenceOption          `json:"fuel_types"`
	Transmissions []referenceOption          `json:"transmissions"`
}

// GetLocations returns active countries and their active cities, cities
// grouped under their country id in name order.
func GetLocations(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	var payload locationsPayload
	if hit, err := cache.GetJSON(ctx, "reference:locations", &payload); err == nil && hit {
		return respondOK(c, echo.Map{"countries": payload.Countries, "cities": payload.Cities})
	} else if err != nil {
		log.Error("Locations cache lookup failed", zap.Error(err))
	}

	db := database.GetDB().WithContext(ctx)

	payload.Countries = []referenceOption{}
	if err := db.Model(&model.Country{}).
		Where("status = ?", model.ReferenceStatusActive).
		Order("name ASC").
		Select("id, name").
		Scan(&payload.Countries).Error; err != nil {
		log.Error("Failed to load countries", zap.Error(err))
		return respondFail(c, databaseErrorMessage)
	}

	var cities []struct {
		ID        uint
		Name      string
		CountryID uint
	}
	if err := db.Model(&model.City{}).
		Where("status = ?", model.ReferenceStatusActive).
		Order("name ASC").
		Select("id, name, country_id").
		Scan(&cities).Error; err != nil {
		log.Error("Failed to load cities", zap.Error(err))
		return respondFail(c, databaseErrorMessage)
	}

	// Group cities by country; insertion order preserves the query's
	// name ordering within each group.
	payload.Cities = make(map[uint][]referenceOption, len(payload.Countries))
	for _, city := range cities {
		payload.Cities[city.CountryID] = append(payload.Cities[city.CountryID], referenceOption{
			ID:   city.ID,
			Name: city.Name,
		})
	}

	if err := cache.SetJSON(ctx, "reference:locations", &payload, referenceCacheTTL); err != nil {
		log.Error("Failed to cache locations", zap.Error(err))
	}

	return respondOK(c, echo.Map{"countries": payload.Countries, "cities": payload.Cities})
}

// GetVehicleCatalog returns the active vehicle reference data: makes,
// models grouped by make id, and the flat body style, fuel type and
// transmission lists.
func GetVehicleCatalog(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	var payload catalogPayload
	if hit, err := cache.GetJSON(ctx, "reference:vehicle-catalog", &payload); err == nil && hit {
		return respondCatalog(c, &payload)
	} else if err != nil {
		log.Error("Catalog cache lookup failed", zap.Error(err))
	}

	db := database.GetDB().WithContext(ctx)

	payload.Makes = []referenceOption{}
	if err := db.Model(&model.VehicleMake{}).
		Where("status = ?", model.ReferenceStatusActive).
		Order("name ASC").
		Select("id, name").
		Scan(&payload.Makes).Error; err != nil {
		log.Error("Failed to load vehicle makes", zap.Error(err))
		return respondFail(c, databaseErrorMessage)
	}

	var models []struct {
		ID     uint
		Name   string
		MakeID uint
	}
	if err := db.Model(&model.VehicleModel{}).
		Where("status = ?", model.ReferenceStatusActive).
		Order("name ASC").
		Select("id, name, make_id").
		Scan(&models).Error; err != nil {
		log.Error("Failed to load vehicle models", zap.Error(err))
		return respondFail(c, databaseErrorMessage)
	}
	payload.Models = make(map[uint][]referenceOption, len(payload.Makes))
	for _, m := range models {
		payload.Models[m.MakeID] = append(payload.Models[m.MakeID], referenceOption{ID: m.ID, Name: m.Name})
	}

	for _, part := range []struct {
		model interface{}
		dest  *[]referenceOption
		what  string
	}{
		{&model.VehicleBodyStyle{}, &payload.BodyStyles, "body styles"},
		{&model.VehicleFuelType{}, &payload.FuelTypes, "fuel types"},
		{&model.VehicleTransmission{}, &payload.Transmissions, "transmissions"},
	} {
		*part.dest = []referenceOption{}
		if err := db.Model(part.model).
			Where("status = ?", model.ReferenceStatusActive).
			Order("name ASC").
			Select("id, name").
			Scan(part.dest).Error; err != nil {
			log.Error("Failed to load vehicle "+part.what, zap.Error(err))
			return respondFail(c, databaseErrorMessage)
		}
	}

	if err := cache.SetJSON(ctx, "reference:vehicle-catalog", &payload, referenceCacheTTL); err != nil {
		log.Error("Failed to cache vehicle catalog", zap.Error(err))
	}

	return respondCatalog(c, &payload)
}

func respondCatalog(c echo.Context, payload *catalogPayload) error {
	return respondOK(c, echo.Map{
		"makes":         payload.Makes,
		"models":        payload.Models,
		"body_styles":   payload.BodyStyles,
		"fuel_types":    payload.FuelTypes,
		"transmissions": payload.Transmissions,
	})
}
