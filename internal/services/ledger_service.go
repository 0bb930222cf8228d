package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"github.com/joaoanzolim/maps-b2b/config"
	"github.com/joaoanzolim/maps-b2b/internal/database"
	"github.com/joaoanzolim/maps-b2b/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidLimit = errors.New("credit limit cannot be negative")

// AdjustCredits applies a signed adjustment to a user's balance. Debits
// are clamped at zero: the resulting balance is max(0, current+amount),
// excess debit is silently discarded. The balance write and the audit
// row are committed as one transaction, with the user row locked so
// concurrent adjustments serialize instead of losing updates.
//
// adminID is nil for system debits (search consumption); the ledger never
// checks the credit limit, that is the caller's concern. Returns the
// updated user together with the audit entry just written.
func AdjustCredits(userID uint, amount int, adminID *uint, note string) (*models.User, *models.CreditTransaction, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var user models.User
	var entry models.CreditTransaction
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		previous := user.Credits
		newBalance := previous + amount
		if newBalance < 0 {
			newBalance = 0
		}

		user.Credits = newBalance
		user.Version++
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		entry = models.CreditTransaction{
			CreatedAt:       time.Now(),
			UserID:          userID,
			Amount:          amount,
			PreviousBalance: previous,
			NewBalance:      newBalance,
			Note:            note,
			AdminID:         adminID,
		}
		entry.Hash = entry.GenerateHash(cfg.LedgerSecret)

		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, nil, err
	}

	invalidateUserCache(userID)

	zap.L().Info("credits adjusted",
		zap.Uint("user_id", userID),
		zap.Int("amount", amount),
		zap.Int("new_balance", user.Credits),
	)

	return &user, &entry, nil
}

// SetCreditLimit updates the advisory ceiling. The ledger never enforces
// it on adjustments; callers compare credits against cost before
// spending. Admin top-ups may legitimately push credits above the limit.
func SetCreditLimit(userID uint, limit int) (*models.User, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}

	return applyUserUpdates(userID, map[string]interface{}{"credit_limit": limit})
}

// TransactionHistory returns every ledger entry for a user, newest
// first. No pagination: per-user volumes stay small, the admin-wide
// listing below is the paginated surface.
func TransactionHistory(userID uint) ([]models.CreditTransaction, error) {
	if _, err := FindUserByID(userID); err != nil {
		return nil, err
	}

	var entries []models.CreditTransaction
	err := database.DB.Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// TransactionFilter defines criteria for the admin-wide ledger listing.
type TransactionFilter struct {
	UserID    *uint
	AdminID   *uint
	StartTime *time.Time
	EndTime   *time.Time
	Page      int
	Limit     int
}

// FindTransactions retrieves a paginated, filtered view of the ledger.
func FindTransactions(filter TransactionFilter) ([]models.CreditTransaction, int64, error) {
	var entries []models.CreditTransaction
	var total int64

	query := database.DB.Model(&models.CreditTransaction{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.AdminID != nil {
		query = query.Where("admin_id = ?", *filter.AdminID)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc, id desc").Limit(filter.Limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// GenerateTransactionCSV renders ledger entries as a CSV export.
func GenerateTransactionCSV(entries []models.CreditTransaction) ([]byte, error) {
	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{
		"ID", "Time", "User ID", "Amount",
		"Previous Balance", "New Balance", "Note", "Admin ID", "Hash",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, e := range entries {
		adminID := ""
		if e.AdminID != nil {
			adminID = fmt.Sprintf("%d", *e.AdminID)
		}
		record := []string{
			fmt.Sprintf("%d", e.ID),
			e.CreatedAt.Format(time.RFC3339Nano),
			fmt.Sprintf("%d", e.UserID),
			fmt.Sprintf("%d", e.Amount),
			fmt.Sprintf("%d", e.PreviousBalance),
			fmt.Sprintf("%d", e.NewBalance),
			e.Note,
			adminID,
			e.Hash,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}
