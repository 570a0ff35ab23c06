package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS admins (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  request_id TEXT,
  admin_id TEXT,
  tracking_token TEXT,
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func mustSeedAdmin(t *testing.T, db *gorm.DB, username string) *models.Admin {
	t.Helper()
	admin := &models.Admin{ID: uuid.New(), Username: username, Name: "Admin " + username, PasswordHash: "x"}
	require.NoError(t, db.Create(admin).Error)
	return admin
}

func seedNotification(t *testing.T, db *gorm.DB, adminID *uuid.UUID, token *string, read bool, createdAt time.Time) *models.Notification {
	t.Helper()
	row := &models.Notification{
		ID:            uuid.New(),
		Type:          enums.NotificationTypeNewRequest,
		Title:         "title",
		Message:       "message",
		AdminID:       adminID,
		TrackingToken: token,
		IsRead:        read,
		CreatedAt:     createdAt,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestEmitterFanOutAgainstDatabase(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mustSeedAdmin(t, db, "one")
	mustSeedAdmin(t, db, "two")

	emitter, err := NewEmitter(repo)
	require.NoError(t, err)

	request := &models.Request{ID: uuid.New(), RequestNumber: "REQ-2025-0001", RequesterName: "Budi", TrackingToken: "0123456789abcdef0123456789abcdef"}
	require.NoError(t, emitter.NewRequest(ctx, db, request))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := mustSeedAdmin(t, db, "owner")
	other := mustSeedAdmin(t, db, "other")
	row := seedNotification(t, db, &owner.ID, nil, false, time.Now())

	found, err := repo.MarkRead(ctx, other.ID, row.ID)
	require.NoError(t, err)
	assert.False(t, found, "another admin must not read the row")

	found, err = repo.MarkRead(ctx, owner.ID, row.ID)
	require.NoError(t, err)
	assert.True(t, found)

	unread, err := repo.UnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)
}

func TestMarkAllReadCountsFlippedRows(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	admin := mustSeedAdmin(t, db, "owner")
	seedNotification(t, db, &admin.ID, nil, false, time.Now())
	seedNotification(t, db, &admin.ID, nil, false, time.Now())
	seedNotification(t, db, &admin.ID, nil, true, time.Now())

	count, err := repo.MarkAllRead(ctx, admin.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestPurgeReadKeepsUnreadAndRecentRows(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	admin := mustSeedAdmin(t, db, "owner")
	old := time.Now().Add(-60 * 24 * time.Hour)
	oldRead := seedNotification(t, db, &admin.ID, nil, true, old)
	oldUnread := seedNotification(t, db, &admin.ID, nil, false, old)
	recentRead := seedNotification(t, db, &admin.ID, nil, true, time.Now())

	purged, err := repo.PurgeRead(ctx, time.Now().Add(-DefaultRetention))
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	var remaining []models.Notification
	require.NoError(t, db.Find(&remaining).Error)
	ids := map[uuid.UUID]bool{}
	for _, row := range remaining {
		ids[row.ID] = true
	}
	assert.False(t, ids[oldRead.ID])
	assert.True(t, ids[oldUnread.ID])
	assert.True(t, ids[recentRead.ID])
}

func TestListForTokenOrdersNewestFirst(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	token := "0123456789abcdef0123456789abcdef"
	first := seedNotification(t, db, nil, &token, false, time.Now().Add(-time.Hour))
	second := seedNotification(t, db, nil, &token, false, time.Now())
	otherToken := "fedcba9876543210fedcba9876543210"
	seedNotification(t, db, nil, &otherToken, false, time.Now())

	rows, err := repo.ListForToken(ctx, token)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, first.ID, rows[1].ID)
}
