package cron

import (
	"context"
	"os"
	"sync"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"

	"github.com/iamail/mailgate/interfaces"
	cron_config "github.com/iamail/mailgate/internal/cron/config"
	"github.com/iamail/mailgate/internal/logger"
	"github.com/iamail/mailgate/internal/repository"
	"github.com/iamail/mailgate/internal/tracing"
)

const (
	// GroupAccounts is the group for account maintenance jobs
	GroupAccounts = "accounts"
)

// LOCK MANAGEMENT
var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupAccounts: new(sync.Mutex),
	},
}

type CronManager struct {
	log      logger.Logger
	cron     *cronv3.Cron
	stopCh   chan struct{}
	jobIDs   map[string]cronv3.EntryID
	repos    *repository.Repositories
	accounts interfaces.AccountService
}

func NewCronManager(log logger.Logger, repos *repository.Repositories, accounts interfaces.AccountService) *CronManager {
	return &CronManager{
		log:      log,
		stopCh:   make(chan struct{}),
		jobIDs:   make(map[string]cronv3.EntryID),
		repos:    repos,
		accounts: accounts,
	}
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
	}
	close(cm.stopCh)
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	// Load cron config from environment variables
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	// Register heartbeat job
	if cronConfig.CronScheduleHeartbeat != "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName = "local"
		}
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	// Duplicate credential sweep
	if cronConfig.CronScheduleDeduplicateAccounts != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleDeduplicateAccounts, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupAccounts].Lock()
			defer jobLocks.locks[GroupAccounts].Unlock()
			cm.deduplicateAccounts()
		})
		if err != nil {
			cm.log.Fatalf("Could not add account dedupe cron job: %v", err)
		}
		cm.jobIDs["deduplicate_accounts"] = id
		cm.log.Infof("Registered account dedupe job with schedule: %s", cronConfig.CronScheduleDeduplicateAccounts)
	}
}

// StartCron initializes and starts the cron scheduler
func (cm *CronManager) StartCron() {
	cm.log.Info("Starting cron manager")
	// Create a new cron with seconds field enabled and panic recovery
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger), // Skip if still running
			cronv3.Recover(cronv3.DefaultLogger),            // Default recovery as backup
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

func (cm *CronManager) deduplicateAccounts() {
	cm.log.Info("Running account dedupe sweep")

	ctx := context.Background()

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.deduplicateAccounts")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	owners, err := cm.repos.AccountCredentialRepository.GetOwnersWithDuplicates(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to list owners with duplicates: %v", err)
		return
	}

	total := 0
	seen := make(map[string]bool, len(owners))
	for _, owner := range owners {
		if seen[owner] {
			continue
		}
		seen[owner] = true
		removed, err := cm.accounts.Deduplicate(ctx, owner)
		if err != nil {
			tracing.TraceErr(span, err)
			cm.log.Errorf("Failed to deduplicate accounts for owner %s: %v", owner, err)
			continue
		}
		total += removed
	}

	cm.log.Infof("Account dedupe sweep completed, removed %d duplicates", total)
}
