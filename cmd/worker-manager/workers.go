package main

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	openai "github.com/openai/openai-go"

	awsclients "docgen-workers/internal/common/aws"
	"docgen-workers/internal/common/camunda"
	"docgen-workers/internal/common/config"
	"docgen-workers/internal/common/database"
	"docgen-workers/internal/common/logger"
	"docgen-workers/internal/common/observability"
	"docgen-workers/pkg/registry"

	ac "docgen-workers/internal/workers/document/assemble-context"
	bvp "docgen-workers/internal/workers/document/build-vision-prompt"
	cvm "docgen-workers/internal/workers/document/call-vision-model"
	lc "docgen-workers/internal/workers/document/load-captures"
	lpt "docgen-workers/internal/workers/document/load-prompt-template"
	ndr "docgen-workers/internal/workers/document/notify-draft-ready"
	pdr "docgen-workers/internal/workers/document/parse-draft-response"
	sdd "docgen-workers/internal/workers/document/save-draft-document"
)

type dependencies struct {
	postgres *database.PostgresClient
	redis    *database.RedisClient
	search   *database.ElasticsearchClient
	aws      *awsclients.Clients
	model    *openai.Client
}

// registration builds a handler for one task type given its job timeout.
type registration struct {
	taskType string
	build    func(timeout time.Duration) camunda.JobHandler
}

// promptConfig overlays the configured model settings on the request
// defaults (gpt-4o, 4000 tokens, temperature 0.7, high detail).
func promptConfig(model config.ModelConfig, timeout time.Duration) *bvp.Config {
	c := bvp.LoadConfig()
	c.Timeout = timeout
	if model.Name != "" {
		c.Model = model.Name
	}
	if model.MaxTokens > 0 {
		c.MaxTokens = model.MaxTokens
	}
	if model.Temperature > 0 {
		c.Temperature = model.Temperature
	}
	if model.ImageDetail != "" {
		c.ImageDetail = model.ImageDetail
	}
	return c
}

func registrations(cfg *config.Config, deps *dependencies, log logger.Logger) []registration {
	return []registration{
		{lc.TaskType, func(timeout time.Duration) camunda.JobHandler {
			c := lc.LoadConfig()
			c.Timeout = timeout
			return lc.NewHandler(c, deps.postgres.DB, log)
		}},
		{lpt.TaskType, func(timeout time.Duration) camunda.JobHandler {
			return lpt.NewHandler(&lpt.Config{
				Timeout:   timeout,
				CacheTTL:  time.Duration(cfg.Templates.CacheTTL) * time.Second,
				KeyPrefix: cfg.Templates.KeyPrefix,
			}, deps.postgres.DB, deps.redis.Client, log)
		}},
		{ac.TaskType, func(timeout time.Duration) camunda.JobHandler {
			return ac.NewHandler(&ac.Config{Timeout: timeout}, log)
		}},
		{bvp.TaskType, func(timeout time.Duration) camunda.JobHandler {
			return bvp.NewHandler(promptConfig(cfg.Model, timeout), log)
		}},
		{cvm.TaskType, func(timeout time.Duration) camunda.JobHandler {
			return cvm.NewHandler(&cvm.Config{Timeout: timeout}, deps.model, log)
		}},
		{pdr.TaskType, func(timeout time.Duration) camunda.JobHandler {
			return pdr.NewHandler(&pdr.Config{Timeout: timeout}, pdr.Tagged, log)
		}},
		{pdr.UntaggedTaskType, func(timeout time.Duration) camunda.JobHandler {
			return pdr.NewHandler(&pdr.Config{Timeout: timeout}, pdr.Untagged, log)
		}},
		{sdd.TaskType, func(timeout time.Duration) camunda.JobHandler {
			var indexer sdd.Indexer
			if deps.search != nil {
				indexer = deps.search
			}
			return sdd.NewHandler(&sdd.Config{
				Timeout:   timeout,
				IndexName: cfg.Drafts.IndexName,
			}, deps.postgres.DB, indexer, log)
		}},
		{ndr.TaskType, func(timeout time.Duration) camunda.JobHandler {
			var publisher ndr.SNSPublisher
			var sender ndr.SESSender
			if deps.aws != nil && deps.aws.SNS != nil {
				publisher = deps.aws.SNS
			}
			if deps.aws != nil && deps.aws.SES != nil {
				sender = deps.aws.SES
			}
			return ndr.NewHandler(&ndr.Config{
				Timeout:       timeout,
				TopicARN:      cfg.Notifications.SNS.TopicARN,
				FromEmail:     cfg.Notifications.SES.FromEmail,
				ReviewURLBase: cfg.Notifications.ReviewURLBase,
			}, publisher, sender, log)
		}},
	}
}

// startWorkers opens a job worker per enabled task type.
func startWorkers(
	cfg *config.Config,
	client zbc.Client,
	deps *dependencies,
	log logger.Logger,
	obs *observability.Observability,
) ([]worker.JobWorker, []string) {
	var workers []worker.JobWorker
	var started []string
	for _, r := range registrations(cfg, deps, log) {
		if !config.IsWorkerEnabled(cfg, r.taskType) {
			log.Info("worker disabled", map[string]interface{}{"taskType": r.taskType})
			continue
		}

		wc := config.GetWorkerConfig(cfg, r.taskType)
		timeout := config.GetDuration(wc.Timeout)
		jw := camunda.StartWorker(client, r.taskType, camunda.WorkerOptions{
			MaxJobsActive: wc.MaxJobsActive,
			Timeout:       timeout,
			Name:          cfg.App.Name,
		}, r.build(timeout), log, obs)
		workers = append(workers, jw)
		started = append(started, r.taskType)
	}
	return workers, started
}

// checkRegistry warns about running task types the activity registry does
// not describe. A missing registry file is not fatal.
func checkRegistry(path string, taskTypes []string, log logger.Logger) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry not loaded", map[string]interface{}{"path": path, "error": err.Error()})
		return
	}
	for _, t := range reg.Missing(taskTypes) {
		log.Warn("task type missing from activity registry", map[string]interface{}{"taskType": t})
	}
}
