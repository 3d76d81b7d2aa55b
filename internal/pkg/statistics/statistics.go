package statistics

import (
	"encoding/json"
	"math"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/investflow/investflow/app/repository"
	"github.com/investflow/investflow/internal/pkg/cache"
)

const (
	CacheKeyUserStats = "statistics:users:stats"
	CacheExpiration   = 5 * time.Minute
)

// UserStats is the aggregated user statistics payload of the admin API.
type UserStats struct {
	Total  int64            `json:"total"`
	Growth float64          `json:"growth"`
	ByRole map[string]int64 `json:"byRole"`
	ByPlan map[string]int64 `json:"byPlan"`
}

// Collect aggregates user statistics straight from the database.
func Collect(repo repository.UserRepository, now time.Time) (*UserStats, error) {
	total, err := repo.Count()
	if err != nil {
		return nil, err
	}

	thirtyDaysAgo := now.AddDate(0, 0, -30)
	totalLastMonth, err := repo.CountCreatedBefore(thirtyDaysAgo)
	if err != nil {
		return nil, err
	}

	byRole, err := repo.CountByRole()
	if err != nil {
		return nil, err
	}
	byPlan, err := repo.CountByPlan()
	if err != nil {
		return nil, err
	}

	return &UserStats{
		Total:  total,
		Growth: Growth(total, totalLastMonth),
		ByRole: byRole,
		ByPlan: byPlan,
	}, nil
}

// Growth returns the percentage growth against the baseline count, rounded to
// two decimals. A zero baseline yields zero growth.
func Growth(total, baseline int64) float64 {
	if baseline <= 0 {
		return 0
	}
	growth := float64(total-baseline) / float64(baseline) * 100
	return math.Round(growth*100) / 100
}

// GetUserStats returns user statistics, served from the cache when fresh.
// Cache failures are tolerated; the database is the fallback.
func GetUserStats(repo repository.UserRepository) (*UserStats, error) {
	if val, err := cache.Get(CacheKeyUserStats); err == nil {
		var stats UserStats
		if err := json.Unmarshal([]byte(val), &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := Collect(repo, time.Now())
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := cache.Set(CacheKeyUserStats, string(payload), CacheExpiration); err != nil {
			log.Debugf("[Statistics] Could not cache user stats: %v", err)
		}
	}
	return stats, nil
}

// InvalidateUserStats drops the cached statistics, e.g. after a deletion.
func InvalidateUserStats() {
	if err := cache.Delete(CacheKeyUserStats); err != nil {
		log.Debugf("[Statistics] Could not invalidate user stats cache: %v", err)
	}
}
