package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/joaoanzolim/maps-b2b/internal/database"
	"github.com/joaoanzolim/maps-b2b/internal/models"
	"github.com/joaoanzolim/maps-b2b/internal/provider"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits for this search")
	ErrSearchNotFound      = errors.New("search not found")
	ErrSearchNotFinalized  = errors.New("search result is not ready yet")
	ErrRefreshCooldown     = errors.New("status was checked recently, try again in a moment")
)

// refreshCooldown mirrors the client-side throttle on the status check.
const refreshCooldown = 30 * time.Second

// SearchProvider is the webhook client the service talks to. Assigned
// from main; tests swap in a stub.
var SearchProvider provider.Client

// SubmitSearchInput is what the user supplies when starting a lookup.
type SubmitSearchInput struct {
	Address string
	Segment string
	CEP     string
}

// SubmitSearch starts an external lookup for the user. The credit check
// here is the only place the cost is enforced: the ledger itself never
// refuses a debit, it only clamps at zero, so submission must not reach
// the ledger unless credits cover the cost.
func SubmitSearch(userID uint, input SubmitSearchInput) (*models.Search, error) {
	cost, err := GetSearchCost()
	if err != nil {
		return nil, err
	}

	user, err := FindUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Credits < cost {
		return nil, ErrInsufficientCredits
	}

	ack, raw, err := SearchProvider.Submit(provider.SubmitRequest{
		Address: input.Address,
		Query:   input.Segment,
		CEP:     input.CEP,
	})
	if err != nil {
		return nil, err
	}

	if _, _, err := AdjustCredits(userID, -cost, nil, fmt.Sprintf("search %s", ack.ID)); err != nil {
		// Provider accepted the search but the debit failed; surface the
		// error and leave the search unrecorded so it cannot be polled.
		zap.L().Error("search debit failed after provider accepted",
			zap.Uint("user_id", userID),
			zap.String("search_id", ack.ID),
			zap.Error(err),
		)
		return nil, err
	}

	return RecordSearch(userID, ack.ID, input.Address, input.Segment, cost, raw)
}

// RecordSearch appends a search row. Always created with finalizado=false.
func RecordSearch(userID uint, externalID, address, segment string, creditsUsed int, payload []byte) (*models.Search, error) {
	search := &models.Search{
		SearchID:        externalID,
		UserID:          userID,
		Address:         address,
		Segment:         segment,
		CreditsUsed:     creditsUsed,
		Finalizado:      false,
		ProviderPayload: datatypes.JSON(payload),
	}

	if err := database.DB.Create(search).Error; err != nil {
		return nil, err
	}

	return search, nil
}

// MarkFinalized flips finalizado to true. Idempotent.
func MarkFinalized(id uint) error {
	result := database.DB.Model(&models.Search{}).Where("id = ?", id).Update("finalizado", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSearchNotFound
	}
	return nil
}

// ListForUser returns the user's searches, newest first.
func ListForUser(userID uint) ([]models.Search, error) {
	var searches []models.Search
	err := database.DB.Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&searches).Error
	if err != nil {
		return nil, err
	}
	return searches, nil
}

func findUserSearch(userID, id uint) (*models.Search, error) {
	var search models.Search
	err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&search).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSearchNotFound
		}
		return nil, err
	}
	return &search, nil
}

// RefreshSearch asks the provider whether the search finished and flips
// the flag if so. A redis key enforces the 30-second cooldown per search
// server-side as well; already-finalized searches return immediately.
func RefreshSearch(userID, id uint) (*models.Search, error) {
	search, err := findUserSearch(userID, id)
	if err != nil {
		return nil, err
	}
	if search.Finalizado {
		return search, nil
	}

	key := fmt.Sprintf("search:refresh:%d", search.ID)
	if database.RedisClient != nil {
		ok, err := database.RedisClient.SetNX(database.Ctx, key, 1, refreshCooldown).Result()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrRefreshCooldown
		}
	}

	done, err := SearchProvider.Status(search.SearchID)
	if err != nil {
		// A failed provider call must not burn the cooldown window.
		if database.RedisClient != nil {
			database.RedisClient.Del(database.Ctx, key)
		}
		return nil, err
	}

	if done {
		if err := MarkFinalized(search.ID); err != nil {
			return nil, err
		}
		search.Finalizado = true
	}

	return search, nil
}

// DownloadResult fetches the finished spreadsheet from the provider.
func DownloadResult(userID, id uint) ([]byte, string, error) {
	search, err := findUserSearch(userID, id)
	if err != nil {
		return nil, "", err
	}
	if !search.Finalizado {
		return nil, "", ErrSearchNotFinalized
	}

	return SearchProvider.Download(search.SearchID)
}
