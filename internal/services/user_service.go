package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joaoanzolim/maps-b2b/internal/database"
	"github.com/joaoanzolim/maps-b2b/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("user with this email already exists")
	ErrInvalidStatus  = errors.New("status must be active or blocked")
	ErrOptimisticLock = errors.New("data has been modified by another user, please refresh and try again")
)

// NormalizeEmail is the uniqueness rule for account emails: lowercase,
// surrounding whitespace removed. Applied before every lookup and write.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userCacheKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func invalidateUserCache(userID uint) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, userCacheKey(userID))
	}
}

func FindUserByID(userID uint) (models.User, error) {
	// Try cache
	cacheKey := userCacheKey(userID)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(val), &user); err == nil {
				return user, nil
			}
		}
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}

	// Set cache
	if database.RedisClient != nil {
		if data, err := json.Marshal(user); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, time.Hour)
		}
	}

	return user, nil
}

func FindUserByEmail(email string) (models.User, error) {
	var user models.User
	err := database.DB.Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

// FindUsers retrieves a paginated list of users.
func FindUsers(page, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	offset := (page - 1) * limit

	if err := database.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := database.DB.Order("id").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// CreateUserInput carries the fields an admin (or registration) supplies.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	Credits   int
}

// CreateUser inserts a new account. Fails with ErrEmailTaken when the
// normalized email is already registered; nothing is written in that case.
func CreateUser(input CreateUserInput) (*models.User, error) {
	email := NormalizeEmail(input.Email)

	var existing models.User
	result := database.DB.Where("email = ?", email).First(&existing)
	if result.Error == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleRegular
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         role,
		Status:       models.StatusActive,
		Credits:      input.Credits,
	}

	if err := database.DB.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateProfile applies a partial first/last name update with optimistic
// locking. Email and password are never touched here.
func UpdateProfile(id uint, firstName, lastName *string) (*models.User, error) {
	updates := make(map[string]interface{})
	if firstName != nil {
		updates["first_name"] = strings.TrimSpace(*firstName)
	}
	if lastName != nil {
		updates["last_name"] = strings.TrimSpace(*lastName)
	}
	if len(updates) == 0 {
		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		return &user, nil
	}

	return applyUserUpdates(id, updates)
}

// SetStatus flips the account between active and blocked. Idempotent:
// blocking an already-blocked account succeeds without touching anything
// else (credits and ledger history are untouched either way).
func SetStatus(id uint, status string) (*models.User, error) {
	if status != models.StatusActive && status != models.StatusBlocked {
		return nil, ErrInvalidStatus
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Status == status {
		return &user, nil
	}

	return applyUserUpdates(id, map[string]interface{}{"status": status})
}

// applyUserUpdates runs a version-checked update inside a transaction,
// the same read-check-write the admin profile edits go through.
func applyUserUpdates(id uint, updates map[string]interface{}) (*models.User, error) {
	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	currentVersion := user.Version
	updates["version"] = currentVersion + 1

	result := tx.Model(&user).Where("version = ?", currentVersion).Updates(updates)
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrOptimisticLock
	}

	if err := tx.First(&user, id).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	invalidateUserCache(id)
	return &user, nil
}

// DirectoryStats aggregates the directory over non-admin accounts only.
type DirectoryStats struct {
	TotalUsers   int64 `json:"total_users"`
	ActiveUsers  int64 `json:"active_users"`
	BlockedUsers int64 `json:"blocked_users"`
	TotalCredits int64 `json:"total_credits"`
}

func Stats() (*DirectoryStats, error) {
	stats := &DirectoryStats{}

	if err := database.DB.Model(&models.User{}).
		Where("role = ?", models.RoleRegular).
		Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.User{}).
		Where("role = ? AND status = ?", models.RoleRegular, models.StatusActive).
		Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.User{}).
		Where("role = ? AND status = ?", models.RoleRegular, models.StatusBlocked).
		Count(&stats.BlockedUsers).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.User{}).
		Where("role = ?", models.RoleRegular).
		Select("COALESCE(SUM(credits), 0)").
		Scan(&stats.TotalCredits).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
