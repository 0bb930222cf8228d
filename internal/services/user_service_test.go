package services

import (
	"errors"
	"testing"

	"github.com/joaoanzolim/maps-b2b/internal/database"
	"github.com/joaoanzolim/maps-b2b/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUserTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{}, &models.CreditTransaction{})
	if err := db.AutoMigrate(&models.User{}, &models.CreditTransaction{}); err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
	database.RedisClient = nil
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "joao@maps-b2b.com.br", NormalizeEmail("  Joao@Maps-B2B.com.br "))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	setupUserTestDB()

	_, err := CreateUser(CreateUserInput{
		Email:     "joao@maps-b2b.com.br",
		Password:  "secret123",
		FirstName: "Joao",
		LastName:  "Silva",
	})
	assert.NoError(t, err)

	// Same address modulo case and whitespace must conflict, and must
	// not insert anything.
	_, err = CreateUser(CreateUserInput{
		Email:     " JOAO@maps-b2b.com.br ",
		Password:  "other456",
		FirstName: "Other",
		LastName:  "Person",
	})
	assert.True(t, errors.Is(err, ErrEmailTaken))

	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateUserDefaults(t *testing.T) {
	setupUserTestDB()

	u, err := CreateUser(CreateUserInput{
		Email:    "novo@maps-b2b.com.br",
		Password: "secret123",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RoleRegular, u.Role)
	assert.Equal(t, models.StatusActive, u.Status)
	assert.Equal(t, 0, u.Credits)
	assert.NotEqual(t, "secret123", u.PasswordHash)
}

func TestSetStatusIdempotentRoundTrip(t *testing.T) {
	setupUserTestDB()

	u, _ := CreateUser(CreateUserInput{
		Email:    "bloqueio@maps-b2b.com.br",
		Password: "secret123",
	})
	_, _, err := AdjustCredits(u.ID, 40, nil, "seed")
	assert.NoError(t, err)

	blocked, err := SetStatus(u.ID, models.StatusBlocked)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusBlocked, blocked.Status)
	assert.Equal(t, 40, blocked.Credits)

	// Blocking again is a no-op that still succeeds.
	again, err := SetStatus(u.ID, models.StatusBlocked)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusBlocked, again.Status)
	assert.Equal(t, blocked.Version, again.Version)

	// Blocking leaves the ledger untouched.
	entries, err := TransactionHistory(u.ID)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	active, err := SetStatus(u.ID, models.StatusActive)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusActive, active.Status)
	assert.Equal(t, 40, active.Credits)
	assert.Equal(t, u.Email, active.Email)

	_, err = SetStatus(u.ID, "frozen")
	assert.True(t, errors.Is(err, ErrInvalidStatus))

	_, err = SetStatus(9999, models.StatusBlocked)
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestUpdateProfilePartial(t *testing.T) {
	setupUserTestDB()

	u, _ := CreateUser(CreateUserInput{
		Email:     "perfil@maps-b2b.com.br",
		Password:  "secret123",
		FirstName: "Maria",
		LastName:  "Souza",
	})

	newLast := "Oliveira"
	updated, err := UpdateProfile(u.ID, nil, &newLast)
	assert.NoError(t, err)
	assert.Equal(t, "Maria", updated.FirstName)
	assert.Equal(t, "Oliveira", updated.LastName)
	assert.Equal(t, u.Email, updated.Email)
	assert.Equal(t, u.PasswordHash, updated.PasswordHash)

	// The returned struct is the freshly committed row, version bumped.
	assert.Equal(t, 2, updated.Version)

	var stored models.User
	database.DB.First(&stored, u.ID)
	assert.Equal(t, stored.Version, updated.Version)
	assert.Equal(t, stored.LastName, updated.LastName)
}

func TestStatsExcludesAdmins(t *testing.T) {
	setupUserTestDB()

	_, err := CreateUser(CreateUserInput{
		Email:    "admin@maps-b2b.com.br",
		Password: "secret123",
		Role:     models.RoleAdmin,
		Credits:  1000,
	})
	assert.NoError(t, err)

	u1, _ := CreateUser(CreateUserInput{
		Email:    "um@maps-b2b.com.br",
		Password: "secret123",
		Credits:  10,
	})
	_, _ = CreateUser(CreateUserInput{
		Email:    "dois@maps-b2b.com.br",
		Password: "secret123",
		Credits:  20,
	})

	_, err = SetStatus(u1.ID, models.StatusBlocked)
	assert.NoError(t, err)

	stats, err := Stats()
	assert.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveUsers)
	assert.Equal(t, int64(1), stats.BlockedUsers)
	assert.Equal(t, int64(30), stats.TotalCredits)
}
