package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"planora/config"
	"planora/models"
	"planora/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateConflictReport audits many agents over one period. Detection per
// agent is independent and runs in parallel; results keep the caller's agent
// order. The finished report is cached best-effort for later retrieval.
func (d *DefaultConflictDetector) GenerateConflictReport(agentIDs []string, from, to time.Time) (*models.ConflictReport, error) {
	if _, err := NewTimeInterval(from, to); err != nil {
		return nil, err
	}

	summaries := make([]models.AgentConflictSummary, len(agentIDs))
	errs := make([]error, len(agentIDs))
	var wg sync.WaitGroup

	for i, agentID := range agentIDs {
		wg.Add(1)
		go func(i int, agentID string) {
			defer wg.Done()
			conflicts, err := d.DetectAllConflicts(agentID, from, to)
			if err != nil {
				errs[i] = err
				return
			}
			summary := models.AgentConflictSummary{
				AgentID:    agentID,
				Conflicts:  conflicts,
				BySeverity: countBySeverity(conflicts),
			}
			if d.AgentRepo != nil {
				if agent, err := d.AgentRepo.GetByID(agentID); err == nil {
					summary.AgentName = agent.Name
				}
			}
			summaries[i] = summary
		}(i, agentID)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("conflict report failed: %w", err)
		}
	}

	report := &models.ConflictReport{
		ID:          uuid.New().String(),
		GeneratedAt: time.Now(),
		PeriodStart: from,
		PeriodEnd:   to,
		Agents:      summaries,
		BySeverity:  map[string]int{},
		ByType:      map[string]int{},
	}
	for _, s := range summaries {
		for _, c := range s.Conflicts {
			report.BySeverity[string(c.Severity)]++
			report.ByType[string(c.Type)]++
		}
	}

	d.cacheReport(report)
	return report, nil
}

// cacheReport stores the report in Redis with the configured TTL. Failures
// are logged and swallowed; reporting never depends on the cache.
func (d *DefaultConflictDetector) cacheReport(report *models.ConflictReport) {
	if d.Cache == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		d.Logger.Warn("failed to marshal conflict report for cache", zap.Error(err))
		return
	}
	ttl := time.Duration(config.AppConfig.ReportCacheTTLMin) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Cache.Set(ctx, utils.ReportCachePrefix+report.ID, data, ttl).Err(); err != nil {
		d.Logger.Warn("failed to cache conflict report", zap.String("reportId", report.ID), zap.Error(err))
	}
}

// CachedReport fetches a previously generated report by ID. Returns nil when
// the report expired or caching is disabled.
func (d *DefaultConflictDetector) CachedReport(reportID string) (*models.ConflictReport, error) {
	if d.Cache == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, err := d.Cache.Get(ctx, utils.ReportCachePrefix+reportID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cached report %s: %w", reportID, err)
	}
	var report models.ConflictReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode cached report %s: %w", reportID, err)
	}
	return &report, nil
}

func countBySeverity(conflicts []models.Conflict) map[string]int {
	counts := map[string]int{}
	for _, c := range conflicts {
		counts[string(c.Severity)]++
	}
	return counts
}
