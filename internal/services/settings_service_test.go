package services

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/joaoanzolim/maps-b2b/internal/database"
	"github.com/joaoanzolim/maps-b2b/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupSettingsTestDB() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	if err := db.AutoMigrate(&models.SystemSetting{}); err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
	database.RedisClient = nil
}

func TestGetSearchCostDefault(t *testing.T) {
	setupSettingsTestDB()

	cost, err := GetSearchCost()
	assert.NoError(t, err)
	assert.Equal(t, 10, cost)
}

func TestSetAndGetSearchCost(t *testing.T) {
	setupSettingsTestDB()

	assert.NoError(t, SetSearchCost(25))

	cost, err := GetSearchCost()
	assert.NoError(t, err)
	assert.Equal(t, 25, cost)

	// Upsert, not insert-only.
	assert.NoError(t, SetSearchCost(40))
	cost, err = GetSearchCost()
	assert.NoError(t, err)
	assert.Equal(t, 40, cost)
}

func TestSetSearchCostRejectsNonPositive(t *testing.T) {
	setupSettingsTestDB()

	assert.True(t, errors.Is(SetSearchCost(0), ErrInvalidSearchCost))
	assert.True(t, errors.Is(SetSearchCost(-5), ErrInvalidSearchCost))
}

func TestGetSearchCostFallsBackOnGarbage(t *testing.T) {
	setupSettingsTestDB()

	// A manually mangled row must not break search submission.
	database.DB.Create(&models.SystemSetting{Key: "search_cost_credits", Value: "not-a-number"})

	cost, err := GetSearchCost()
	assert.NoError(t, err)
	assert.Equal(t, 10, cost)
}
