package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcounts/pkg/models"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func TestBuildUpdateSQLFullRow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	u := Update{
		Stats: models.StatsUpdate{
			Followers:      i64(12345),
			Following:      i64(321),
			Posts:          i64(42),
			EngagementRate: f64(3.5),
			AvgLikes:       f64(162.7),
			AvgComments:    f64(12.2),
		},
		Status:    "ok",
		CheckedAt: now,
		UpdatedAt: &now,
	}

	sql, args := buildUpdateSQL("players", "rec-1", u)

	want := `UPDATE "players" SET ` +
		`"igSbLastCheckedAt" = $1, "igSbStatus" = $2, ` +
		`"followers" = $3, "following" = $4, "posts" = $5, ` +
		`"engagementRate" = $6, "igEngagementRate" = $7, ` +
		`"avgLikes" = $8, "igAvgLikes" = $9, ` +
		`"avgComments" = $10, "igAvgComments" = $11, ` +
		`"instagramUpdatedAt" = $12 WHERE id = $13`
	assert.Equal(t, want, sql)

	require.Len(t, args, 13)
	assert.Equal(t, now, args[0])
	assert.Equal(t, "ok", args[1])
	assert.Equal(t, int64(12345), args[2])
	assert.Equal(t, int64(321), args[3])
	assert.Equal(t, int64(42), args[4])
	assert.Equal(t, 3.5, args[5])
	assert.Equal(t, 3.5, args[6])
	assert.Equal(t, int64(163), args[7], "integer column rounds the exact value")
	assert.Equal(t, 162.7, args[8])
	assert.Equal(t, int64(12), args[9])
	assert.Equal(t, 12.2, args[10])
	assert.Equal(t, now, args[11])
	assert.Equal(t, "rec-1", args[12])
}

func TestBuildUpdateSQLStatusOnly(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	u := Update{Status: "ok", CheckedAt: now}

	sql, args := buildUpdateSQL("players", "rec-2", u)

	want := `UPDATE "players" SET "igSbLastCheckedAt" = $1, "igSbStatus" = $2 WHERE id = $3`
	assert.Equal(t, want, sql)
	require.Len(t, args, 3)
	assert.Equal(t, "rec-2", args[2])
}

func TestBuildUpdateSQLPartialStats(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	u := Update{
		Stats:     models.StatsUpdate{Followers: i64(7)},
		Status:    "ok",
		CheckedAt: now,
		UpdatedAt: &now,
	}

	sql, args := buildUpdateSQL("players", "rec-3", u)

	want := `UPDATE "players" SET "igSbLastCheckedAt" = $1, "igSbStatus" = $2, ` +
		`"followers" = $3, "instagramUpdatedAt" = $4 WHERE id = $5`
	assert.Equal(t, want, sql)
	require.Len(t, args, 5)
	assert.Equal(t, int64(7), args[2])
}

func TestCleanDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{
			name: "strips channel binding",
			dsn:  "postgresql://u:p@db.example.com/app?sslmode=require&channel_binding=require",
			want: "postgresql://u:p@db.example.com/app?sslmode=require",
		},
		{
			name: "only channel binding leaves bare url",
			dsn:  "postgresql://u:p@db.example.com/app?channel_binding=require",
			want: "postgresql://u:p@db.example.com/app",
		},
		{
			name: "no query untouched",
			dsn:  "postgresql://u:p@db.example.com/app",
			want: "postgresql://u:p@db.example.com/app",
		},
		{
			name: "other params untouched",
			dsn:  "postgresql://u:p@db.example.com/app?sslmode=require",
			want: "postgresql://u:p@db.example.com/app?sslmode=require",
		},
		{
			name: "unparsable returned as is",
			dsn:  "://not-a-url",
			want: "://not-a-url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanDSN(tt.dsn))
		})
	}
}

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" @Foo ", "foo"},
		{"@@MiXed", "mixed"},
		{"plain", "plain"},
		{"@", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHandle(tt.in), "input %q", tt.in)
	}
}
