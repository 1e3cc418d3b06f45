package models

import (
	"log"

	"bitbucket.org/mmdatafocus/resto_backend/config"
	"gorm.io/gorm"
)

func MigrateTable() {
	MigrateTableOn(config.GetDB())
}

// MigrateTableOn runs AutoMigrate on an explicit handle (tests pass an
// in-memory store).
func MigrateTableOn(db *gorm.DB) {
	err := db.AutoMigrate(
		&DailyStat{}, &WaiterStat{}, &Waiter{},
		&MonthlyPlan{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
