package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/resto_backend/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Waiter is the append-only name directory behind the entry form's
// autocomplete. Rows are only ever inserted; shift stats reference names by
// value, not by id.
type Waiter struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const waiterNamesCacheKey = "WaiterNames"

// RegisterWaiterName inserts name into the directory if absent and drops the
// cached name list. Safe to call for names already present.
func RegisterWaiterName(ctx context.Context, db *gorm.DB, name string) error {
	if name == "" {
		return nil
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&Waiter{Name: name}).Error
	if err != nil {
		return err
	}
	// Invalidate on every directory write; readers repopulate lazily.
	return config.RemoveRedisKey(waiterNamesCacheKey)
}

// ListWaiterNames returns all known waiter names sorted, through the cache
// when one is configured.
func ListWaiterNames(ctx context.Context) ([]string, error) {
	var names []string
	exists, err := config.GetRedisObject(waiterNamesCacheKey, &names)
	if err == nil && exists {
		return names, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&Waiter{}).
		Order("name").
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}

	// Best-effort cache fill; a miss next time just re-reads the table.
	_ = config.SetRedisObject(waiterNamesCacheKey, names, 0)
	return names, nil
}
