package services

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/joaoanzolim/maps-b2b/internal/database"
	"github.com/joaoanzolim/maps-b2b/internal/models"
	"github.com/joaoanzolim/maps-b2b/internal/provider"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubProvider fakes the external webhook.
type stubProvider struct {
	submitCalls int
	submitErr   error
	statusDone  bool
	statusErr   error
}

func (s *stubProvider) Submit(req provider.SubmitRequest) (*provider.SubmitResponse, []byte, error) {
	s.submitCalls++
	if s.submitErr != nil {
		return nil, nil, s.submitErr
	}
	return &provider.SubmitResponse{Success: true, ID: "ext-123"}, []byte(`{"success":true,"id":"ext-123"}`), nil
}

func (s *stubProvider) Status(id string) (bool, error) {
	if s.statusErr != nil {
		return false, s.statusErr
	}
	return s.statusDone, nil
}

func (s *stubProvider) Download(id string) ([]byte, string, error) {
	return []byte("xlsx-bytes"), "resultado_" + id + ".xlsx", nil
}

func setupSearchTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{}, &models.CreditTransaction{}, &models.Search{}, &models.SystemSetting{})
	if err := db.AutoMigrate(&models.User{}, &models.CreditTransaction{}, &models.Search{}, &models.SystemSetting{}); err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
	database.RedisClient = nil
}

func setupSearchTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

func seedSearchUser(credits int) models.User {
	user := models.User{
		Email:        "buscador@maps-b2b.com.br",
		PasswordHash: "hashedpassword",
		Role:         models.RoleRegular,
		Status:       models.StatusActive,
		Credits:      credits,
		Version:      1,
	}
	database.DB.Create(&user)
	return user
}

func TestSubmitSearchDebitsAndRecords(t *testing.T) {
	setupSearchTestDB()
	stub := &stubProvider{}
	SearchProvider = stub

	user := seedSearchUser(50)

	s, err := SubmitSearch(user.ID, SubmitSearchInput{
		Address: "Av. Paulista, 1000",
		Segment: "restaurantes",
		CEP:     "01310-100",
	})
	assert.NoError(t, err)
	assert.Equal(t, "ext-123", s.SearchID)
	assert.False(t, s.Finalizado)
	assert.Equal(t, 10, s.CreditsUsed) // default cost

	var u models.User
	database.DB.First(&u, user.ID)
	assert.Equal(t, 40, u.Credits)

	var entry models.CreditTransaction
	database.DB.Last(&entry)
	assert.Equal(t, -10, entry.Amount)
	assert.Equal(t, 50, entry.PreviousBalance)
	assert.Equal(t, 40, entry.NewBalance)
	assert.Nil(t, entry.AdminID)
}

func TestSubmitSearchInsufficientCredits(t *testing.T) {
	setupSearchTestDB()
	stub := &stubProvider{}
	SearchProvider = stub

	user := seedSearchUser(5)

	_, err := SubmitSearch(user.ID, SubmitSearchInput{Address: "x", Segment: "y"})
	assert.True(t, errors.Is(err, ErrInsufficientCredits))
	assert.Equal(t, 0, stub.submitCalls)

	var searches int64
	database.DB.Model(&models.Search{}).Count(&searches)
	assert.Equal(t, int64(0), searches)

	var entries int64
	database.DB.Model(&models.CreditTransaction{}).Count(&entries)
	assert.Equal(t, int64(0), entries)
}

func TestSubmitSearchProviderFailure(t *testing.T) {
	setupSearchTestDB()
	stub := &stubProvider{submitErr: provider.ErrProviderFailure}
	SearchProvider = stub

	user := seedSearchUser(50)

	_, err := SubmitSearch(user.ID, SubmitSearchInput{Address: "x", Segment: "y"})
	assert.Error(t, err)

	// Nothing debited, nothing recorded.
	var u models.User
	database.DB.First(&u, user.ID)
	assert.Equal(t, 50, u.Credits)

	var searches int64
	database.DB.Model(&models.Search{}).Count(&searches)
	assert.Equal(t, int64(0), searches)
}

func TestMarkFinalizedIdempotent(t *testing.T) {
	setupSearchTestDB()

	user := seedSearchUser(0)
	s, err := RecordSearch(user.ID, "ext-9", "addr", "seg", 10, nil)
	assert.NoError(t, err)

	assert.NoError(t, MarkFinalized(s.ID))
	assert.NoError(t, MarkFinalized(s.ID)) // second call is a no-op

	var got models.Search
	database.DB.First(&got, s.ID)
	assert.True(t, got.Finalizado)

	assert.True(t, errors.Is(MarkFinalized(9999), ErrSearchNotFound))
}

func TestListForUserNewestFirst(t *testing.T) {
	setupSearchTestDB()

	user := seedSearchUser(0)
	first, _ := RecordSearch(user.ID, "ext-1", "a", "s", 10, nil)
	second, _ := RecordSearch(user.ID, "ext-2", "b", "s", 10, nil)

	searches, err := ListForUser(user.ID)
	assert.NoError(t, err)
	assert.Len(t, searches, 2)
	assert.Equal(t, second.ID, searches[0].ID)
	assert.Equal(t, first.ID, searches[1].ID)
}

func TestRefreshSearchCooldown(t *testing.T) {
	setupSearchTestDB()
	mr := setupSearchTestRedis()
	defer mr.Close()

	stub := &stubProvider{statusDone: false}
	SearchProvider = stub

	user := seedSearchUser(0)
	s, _ := RecordSearch(user.ID, "ext-cd", "addr", "seg", 10, nil)

	got, err := RefreshSearch(user.ID, s.ID)
	assert.NoError(t, err)
	assert.False(t, got.Finalizado)

	_, err = RefreshSearch(user.ID, s.ID)
	assert.True(t, errors.Is(err, ErrRefreshCooldown))

	// After the cooldown the provider reports completion.
	mr.FastForward(31 * time.Second)
	stub.statusDone = true

	got, err = RefreshSearch(user.ID, s.ID)
	assert.NoError(t, err)
	assert.True(t, got.Finalizado)

	// Finalized searches skip the cooldown entirely.
	got, err = RefreshSearch(user.ID, s.ID)
	assert.NoError(t, err)
	assert.True(t, got.Finalizado)
}

func TestRefreshSearchProviderErrorReleasesCooldown(t *testing.T) {
	setupSearchTestDB()
	mr := setupSearchTestRedis()
	defer mr.Close()

	stub := &stubProvider{statusErr: errors.New("provider down")}
	SearchProvider = stub

	user := seedSearchUser(0)
	s, _ := RecordSearch(user.ID, "ext-err", "addr", "seg", 10, nil)

	_, err := RefreshSearch(user.ID, s.ID)
	assert.Error(t, err)

	// A failed provider call must not lock the user out for 30 seconds.
	stub.statusErr = nil
	stub.statusDone = true

	got, err := RefreshSearch(user.ID, s.ID)
	assert.NoError(t, err)
	assert.True(t, got.Finalizado)
}

func TestRefreshSearchScopedToOwner(t *testing.T) {
	setupSearchTestDB()
	mr := setupSearchTestRedis()
	defer mr.Close()

	SearchProvider = &stubProvider{}

	user := seedSearchUser(0)
	s, _ := RecordSearch(user.ID, "ext-own", "addr", "seg", 10, nil)

	_, err := RefreshSearch(user.ID+1, s.ID)
	assert.True(t, errors.Is(err, ErrSearchNotFound))
}

func TestSearchExpiredIsDerived(t *testing.T) {
	now := time.Now()

	stale := models.Search{CreatedAt: now.Add(-7 * time.Hour), Finalizado: false}
	assert.True(t, stale.Expired(now))

	fresh := models.Search{CreatedAt: now.Add(-time.Hour), Finalizado: false}
	assert.False(t, fresh.Expired(now))

	// A finalized search never expires, however old.
	done := models.Search{CreatedAt: now.Add(-48 * time.Hour), Finalizado: true}
	assert.False(t, done.Expired(now))
}

func TestDownloadResultRequiresFinalized(t *testing.T) {
	setupSearchTestDB()
	SearchProvider = &stubProvider{}

	user := seedSearchUser(0)
	s, _ := RecordSearch(user.ID, "ext-dl", "addr", "seg", 10, nil)

	_, _, err := DownloadResult(user.ID, s.ID)
	assert.True(t, errors.Is(err, ErrSearchNotFinalized))

	assert.NoError(t, MarkFinalized(s.ID))

	content, filename, err := DownloadResult(user.ID, s.ID)
	assert.NoError(t, err)
	assert.Equal(t, []byte("xlsx-bytes"), content)
	assert.Equal(t, "resultado_ext-dl.xlsx", filename)
}
