package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/langroom/api/model"
)

// PurgeExpiredResetTokens removes password reset tokens that expired or
// were consumed. Runs hourly; the token table stays small so lookups on
// the login path never scan dead rows.
func (m *CronManager) PurgeExpiredResetTokens() {
	jobName := "purge_reset_tokens"

	result := m.db.Unscoped().
		Where("expires_at < ? OR used_at IS NOT NULL", time.Now()).
		Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to purge reset tokens: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Purged %d reset tokens", result.RowsAffected))
}

// WarmReportCache recomputes the teacher dashboard aggregates and
// stores them in Redis so the first morning request doesn't pay for the
// raw SQL round trip.
func (m *CronManager) WarmReportCache() {
	jobName := "warm_report_cache"

	if m.cache == nil {
		m.logJobComplete(jobName, "Redis not configured, skipped")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	stats, err := m.store.GetOverviewStats()
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to compute overview stats: %w", err))
		return
	}

	if err := m.cache.SetJSON(ctx, "reports:overview", stats, 2*time.Hour); err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to cache overview stats: %w", err))
		return
	}

	m.logJobComplete(jobName, "Overview report cache warmed")
}

// CleanupOldData removes old data to keep the database clean.
// Runs daily at 2 AM.
func (m *CronManager) CleanupOldData() {
	jobName := "cleanup_old_data"

	totalCleaned := 0

	// 1. Expired JWT tokens from the blacklist (past expiry by 30 days)
	cutoffTokens := time.Now().Add(-30 * 24 * time.Hour)
	result := m.db.Unscoped().Where("expires_at < ?", cutoffTokens).Delete(&model.JWTTokenBlacklist{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean token blacklist: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d expired tokens", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	// 2. Old password reset tokens (older than 7 days)
	cutoffResets := time.Now().Add(-7 * 24 * time.Hour)
	result = m.db.Unscoped().Where("created_at < ?", cutoffResets).Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean password resets: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d old password resets", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	// 3. Old cron job logs (keep only last 90 days)
	cutoffLogs := time.Now().Add(-90 * 24 * time.Hour)
	result = m.db.Unscoped().Where("created_at < ?", cutoffLogs).Delete(&model.CronJobLog{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean cron logs: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d old cron logs", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	m.logJobComplete(jobName, fmt.Sprintf("Cleaned up %d total records", totalCleaned))
}

// PurgeSoftDeleted permanently removes soft-deleted courses and
// resources past the 30-day retention window. Runs daily at 3 AM.
// Users are not purged here: student deletion is already a hard delete,
// and stray soft-deleted teachers are left for manual review.
func (m *CronManager) PurgeSoftDeleted() {
	jobName := "purge_soft_deleted"

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	totalPurged := 0

	result := m.db.Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&model.Resource{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to purge resources: %v", result.Error)
	} else {
		totalPurged += int(result.RowsAffected)
	}

	result = m.db.Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&model.Course{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to purge courses: %v", result.Error)
	} else {
		totalPurged += int(result.RowsAffected)
	}

	m.logJobComplete(jobName, fmt.Sprintf("Purged %d soft-deleted records", totalPurged))
}
