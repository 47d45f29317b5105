package pagination

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestDefaults(t *testing.T) {
	tests := []struct {
		name         string
		in           PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"zero values", PageRequest{}, 1, DefaultPageSize},
		{"negative page", PageRequest{Page: -3, PageSize: 5}, 1, 5},
		{"oversized page", PageRequest{Page: 2, PageSize: 500}, 2, MaxPageSize},
		{"kept as given", PageRequest{Page: 4, PageSize: 10}, 4, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.in
			req.Defaults()
			assert.Equal(t, tt.wantPage, req.Page)
			assert.Equal(t, tt.wantPageSize, req.PageSize)
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		pageSize  int
		total     int64
		wantPages int
		wantMore  bool
	}{
		{"empty", 1, 20, 0, 0, false},
		{"single partial page", 1, 20, 5, 1, false},
		{"first of several", 1, 10, 25, 3, true},
		{"last page", 3, 10, 25, 3, false},
		{"exact boundary", 2, 10, 20, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewPageResponse[int](nil, tt.page, tt.pageSize, tt.total)
			assert.Equal(t, tt.wantPages, resp.TotalPages)
			assert.Equal(t, tt.wantMore, resp.HasMore)
			assert.NotNil(t, resp.Data)
		})
	}
}

type item struct {
	ID     uint `gorm:"primaryKey"`
	Owner  string
	Rank   int
	Tagged bool
}

func setupItems(t *testing.T, n int) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:pagination_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&item{}))

	for i := 1; i <= n; i++ {
		require.NoError(t, db.Create(&item{Owner: "a", Rank: i, Tagged: i%2 == 0}).Error)
	}
	require.NoError(t, db.Create(&item{Owner: "b", Rank: 99}).Error)
	return db
}

func TestList(t *testing.T) {
	db := setupItems(t, 5)

	t.Run("counts the filtered query and pages it in order", func(t *testing.T) {
		q := db.Model(&item{}).Where("owner = ?", "a")

		resp, err := List[item](q, PageRequest{Page: 1, PageSize: 2}, "rank DESC")
		require.NoError(t, err)

		assert.EqualValues(t, 5, resp.TotalItems)
		assert.Equal(t, 3, resp.TotalPages)
		assert.True(t, resp.HasMore)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, 5, resp.Data[0].Rank)
		assert.Equal(t, 4, resp.Data[1].Rank)
	})

	t.Run("last page", func(t *testing.T) {
		q := db.Model(&item{}).Where("owner = ?", "a")

		resp, err := List[item](q, PageRequest{Page: 3, PageSize: 2}, "rank DESC")
		require.NoError(t, err)

		assert.False(t, resp.HasMore)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, 1, resp.Data[0].Rank)
	})

	t.Run("query can be listed twice", func(t *testing.T) {
		q := db.Model(&item{}).Where("owner = ? AND tagged = ?", "a", true)

		first, err := List[item](q, PageRequest{}, "rank ASC")
		require.NoError(t, err)
		second, err := List[item](q, PageRequest{}, "rank ASC")
		require.NoError(t, err)

		assert.EqualValues(t, 2, first.TotalItems)
		assert.Equal(t, first.Data, second.Data)
	})

	t.Run("empty result has non-nil data", func(t *testing.T) {
		resp, err := List[item](db.Model(&item{}).Where("owner = ?", "nobody"), PageRequest{}, "rank ASC")
		require.NoError(t, err)
		assert.NotNil(t, resp.Data)
		assert.Zero(t, resp.TotalPages)
	})
}
