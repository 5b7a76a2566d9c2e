package scheduler

import (
	"time"
)

// Config controls scheduler intervals and batch sizes.
type Config struct {
	RunInterval     time.Duration
	AuditPurgeBatch int
	ReindexBatch    int
	BackfillBatch   int
	RecentWindow    time.Duration
	JobTimeout      time.Duration
	LockTTL         time.Duration
	EnabledJobs     []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:     time.Minute,
		AuditPurgeBatch: 500,
		ReindexBatch:    50,
		BackfillBatch:   50,
		RecentWindow:    30 * 24 * time.Hour,
		JobTimeout:      30 * time.Second,
		LockTTL:         2 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.AuditPurgeBatch <= 0 {
		c.AuditPurgeBatch = defaults.AuditPurgeBatch
	}
	if c.ReindexBatch <= 0 {
		c.ReindexBatch = defaults.ReindexBatch
	}
	if c.BackfillBatch <= 0 {
		c.BackfillBatch = defaults.BackfillBatch
	}
	if c.RecentWindow <= 0 {
		c.RecentWindow = defaults.RecentWindow
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}
