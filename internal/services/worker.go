package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/models"
)

type BatchJob struct {
	Path           string
	Role           string
	GitHubUsername string
}

type BatchResult struct {
	Job    BatchJob
	Report *models.AnalysisReport
	Err    error
}

// Worker analyzes resume files from disk on a fixed number of goroutines.
type Worker interface {
	Start(ctx context.Context)
	EnqueueJob(job BatchJob)
	Stop() []BatchResult
}

type queuedJob struct {
	index int
	job   BatchJob
}

type worker struct {
	analyzer    AnalyzerService
	jobQueue    chan queuedJob
	concurrency int
	stopChan    chan struct{}
	wg          sync.WaitGroup
	log         *zap.Logger

	// queueMu orders sends against Stop closing the queue.
	queueMu sync.Mutex
	next    int

	mu      sync.Mutex
	results map[int]BatchResult
}

func NewWorker(analyzer AnalyzerService, concurrency int, log *zap.Logger) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &worker{
		analyzer:    analyzer,
		jobQueue:    make(chan queuedJob, 100),
		stopChan:    make(chan struct{}),
		concurrency: concurrency,
		log:         logger.OrNop(log),
		results:     make(map[int]BatchResult),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Debug("Starting batch workers", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// EnqueueJob implements Worker. Jobs enqueued after Stop are dropped.
func (w *worker) EnqueueJob(job BatchJob) {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()

	select {
	case <-w.stopChan:
		w.log.Warn("Worker stopped, dropping job", zap.String("path", job.Path))
		return
	default:
	}

	w.jobQueue <- queuedJob{index: w.next, job: job}
	w.next++
}

// Stop drains the queue and returns results in enqueue order. Calling it
// again returns the same results.
func (w *worker) Stop() []BatchResult {
	w.queueMu.Lock()
	select {
	case <-w.stopChan:
	default:
		close(w.stopChan)
		close(w.jobQueue)
	}
	total := w.next
	w.queueMu.Unlock()

	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]BatchResult, 0, total)
	for i := 0; i < total; i++ {
		out = append(out, w.results[i])
	}
	return out
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for q := range w.jobQueue {
		result := BatchResult{Job: q.job}

		if err := ctx.Err(); err != nil {
			result.Err = fmt.Errorf("context cancelled: %w", err)
		} else {
			result.Report, result.Err = w.analyzeFile(ctx, q.job)
		}

		if result.Err != nil {
			w.log.Warn("Batch job failed",
				zap.Int("worker", workerID), zap.String("path", q.job.Path), zap.Error(result.Err))
		} else {
			w.log.Debug("Batch job completed",
				zap.Int("worker", workerID), zap.String("path", q.job.Path))
		}

		w.mu.Lock()
		w.results[q.index] = result
		w.mu.Unlock()
	}
}

func (w *worker) analyzeFile(ctx context.Context, job BatchJob) (*models.AnalysisReport, error) {
	doc, err := LoadDocument(job.Path)
	if err != nil {
		return nil, err
	}
	return w.analyzer.AnalyzeResume(ctx, AnalysisInput{
		Document:       doc,
		Role:           job.Role,
		GitHubUsername: job.GitHubUsername,
	})
}
