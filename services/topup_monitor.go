package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/utils"
)

// TopupMonitor expires pending gateway top-ups that were never paid.
type TopupMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewTopupMonitor(db *gorm.DB) *TopupMonitor {
	return &TopupMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: time.Minute,
	}
}

func (tm *TopupMonitor) Start() {
	go func() {
		ticker := time.NewTicker(tm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				tm.expireStaleTopups()
			case <-tm.StopChan:
				return
			}
		}
	}()
}

func (tm *TopupMonitor) Stop() {
	close(tm.StopChan)
}

func (tm *TopupMonitor) expireStaleTopups() {
	result := tm.DB.Model(&models.TopupPayment{}).
		Where("status = ? AND expired_at IS NOT NULL AND expired_at < ?", models.TopupStatusPending, time.Now()).
		Update("status", models.TopupStatusExpired)

	if result.Error != nil {
		utils.ErrorLogger.Printf("Error expiring stale top-ups: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		utils.InfoLogger.Printf("Expired %d stale top-ups", result.RowsAffected)
	}
}
