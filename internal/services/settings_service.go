package services

import (
	"errors"
	"strconv"

	"github.com/joaoanzolim/maps-b2b/config"
	"github.com/joaoanzolim/maps-b2b/internal/database"
	"github.com/joaoanzolim/maps-b2b/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidSearchCost = errors.New("search cost must be a positive integer")

const settingSearchCost = "search_cost_credits"

const searchCostCacheKey = "settings:" + settingSearchCost

// GetSearchCost returns the per-search credit cost. Falls back to the
// configured default when the row is missing or unparseable, so a bad
// manual edit of the settings table can never break search submission.
func GetSearchCost() (int, error) {
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, searchCostCacheKey).Result()
		if err == nil {
			if cost, err := strconv.Atoi(val); err == nil && cost > 0 {
				return cost, nil
			}
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return 0, err
	}

	var setting models.SystemSetting
	err = database.DB.Where("key = ?", settingSearchCost).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cfg.SearchCostDefault, nil
		}
		return 0, err
	}

	cost, err := strconv.Atoi(setting.Value)
	if err != nil || cost <= 0 {
		return cfg.SearchCostDefault, nil
	}

	if database.RedisClient != nil {
		database.RedisClient.Set(database.Ctx, searchCostCacheKey, setting.Value, 0)
	}

	return cost, nil
}

// SetSearchCost updates the per-search credit cost.
func SetSearchCost(cost int) error {
	if cost <= 0 {
		return ErrInvalidSearchCost
	}

	setting := models.SystemSetting{
		Key:   settingSearchCost,
		Value: strconv.Itoa(cost),
	}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return err
	}

	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, searchCostCacheKey)
	}

	return nil
}
