package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"cariella/internal/model"
	"cariella/pkg/database"
)

func seedLocation(t *testing.T, country string, cities ...string) model.Country {
	t.Helper()

	row := model.Country{Name: country, Status: model.ReferenceStatusActive}
	if err := database.GetDB().Create(&row).Error; err != nil {
		t.Fatalf("seed country: %v", err)
	}
	for _, city := range cities {
		c := model.City{Name: city, CountryID: row.ID, Status: model.ReferenceStatusActive}
		if err := database.GetDB().Create(&c).Error; err != nil {
			t.Fatalf("seed city: %v", err)
		}
	}
	return row
}

func TestGetLocationsGroupsCitiesByCountry(t *testing.T) {
	e := newTestServer(t)

	argentina := seedLocation(t, "Argentina", "Cordoba", "Buenos Aires")
	belgium := seedLocation(t, "Belgium", "Antwerp")

	// Inactive rows stay out of the payload.
	inactive := model.Country{Name: "Zombia", Status: model.ReferenceStatusInactive}
	if err := database.GetDB().Create(&inactive).Error; err != nil {
		t.Fatalf("seed inactive country: %v", err)
	}
	hidden := model.City{Name: "Ghost Town", CountryID: belgium.ID, Status: model.ReferenceStatusInactive}
	if err := database.GetDB().Create(&hidden).Error; err != nil {
		t.Fatalf("seed inactive city: %v", err)
	}

	rec, env := doJSON(t, e, http.MethodGet, "/api/auth/get-locations", "")
	expectSuccess(t, env)

	var payload struct {
		Countries []struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"countries"`
		Cities map[string][]struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"cities"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode locations: %v", err)
	}

	if len(payload.Countries) != 2 {
		t.Fatalf("expected 2 countries, got %d", len(payload.Countries))
	}
	if payload.Countries[0].Name != "Argentina" || payload.Countries[1].Name != "Belgium" {
		t.Fatalf("expected countries in name order, got %+v", payload.Countries)
	}

	argentinaCities := payload.Cities[fmt.Sprint(argentina.ID)]
	if len(argentinaCities) != 2 {
		t.Fatalf("expected 2 cities for Argentina, got %d", len(argentinaCities))
	}
	// Name order within the group: Buenos Aires before Cordoba.
	if argentinaCities[0].Name != "Buenos Aires" || argentinaCities[1].Name != "Cordoba" {
		t.Fatalf("expected cities in name order, got %+v", argentinaCities)
	}

	belgiumCities := payload.Cities[fmt.Sprint(belgium.ID)]
	if len(belgiumCities) != 1 || belgiumCities[0].Name != "Antwerp" {
		t.Fatalf("expected only Antwerp for Belgium, got %+v", belgiumCities)
	}
}

func TestGetVehicleCatalogGroupsModelsByMake(t *testing.T) {
	e := newTestServer(t)

	db := database.GetDB()
	toyota := model.VehicleMake{Name: "Toyota", Status: model.ReferenceStatusActive}
	audi := model.VehicleMake{Name: "Audi", Status: model.ReferenceStatusActive}
	if err := db.Create(&toyota).Error; err != nil {
		t.Fatalf("seed make: %v", err)
	}
	if err := db.Create(&audi).Error; err != nil {
		t.Fatalf("seed make: %v", err)
	}
	for _, m := range []model.VehicleModel{
		{Name: "Corolla", MakeID: toyota.ID, Status: model.ReferenceStatusActive},
		{Name: "A4", MakeID: audi.ID, Status: model.ReferenceStatusActive},
	} {
		row := m
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("seed model: %v", err)
		}
	}
	if err := db.Create(&model.VehicleBodyStyle{Name: "Sedan", Status: model.ReferenceStatusActive}).Error; err != nil {
		t.Fatalf("seed body style: %v", err)
	}
	if err := db.Create(&model.VehicleFuelType{Name: "Petrol", Status: model.ReferenceStatusActive}).Error; err != nil {
		t.Fatalf("seed fuel type: %v", err)
	}
	if err := db.Create(&model.VehicleTransmission{Name: "Manual", Status: model.ReferenceStatusActive}).Error; err != nil {
		t.Fatalf("seed transmission: %v", err)
	}

	rec, env := doJSON(t, e, http.MethodGet, "/api/vehicles/get-vehicle-catalog", "")
	expectSuccess(t, env)

	var payload struct {
		Makes []struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"makes"`
		Models map[string][]struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"models"`
		BodyStyles    []map[string]interface{} `json:"body_styles"`
		FuelTypes     []map[string]interface{} `json:"fuel_types"`
		Transmissions []map[string]interface{} `json:"transmissions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}

	// Makes are name ordered: Audi before Toyota.
	if len(payload.Makes) != 2 || payload.Makes[0].Name != "Audi" || payload.Makes[1].Name != "Toyota" {
		t.Fatalf("expected makes in name order, got %+v", payload.Makes)
	}

	toyotaModels := payload.Models[fmt.Sprint(toyota.ID)]
	if len(toyotaModels) != 1 || toyotaModels[0].Name != "Corolla" {
		t.Fatalf("expected Corolla under Toyota, got %+v", toyotaModels)
	}
	if len(payload.Models[fmt.Sprint(audi.ID)]) != 1 {
		t.Fatalf("expected one model under Audi")
	}

	if len(payload.BodyStyles) != 1 || len(payload.FuelTypes) != 1 || len(payload.Transmissions) != 1 {
		t.Fatalf("expected flat reference lists to be populated")
	}
}
