// Package worker is the bounded pool that pulls queued production
// runs off Redis and drives each one through a fresh Orchestrator,
// persisting status and results to the run store and uploading the
// winning EDL as an artifact.
package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aaronmarkham/studioproducer/internal/agents"
	"github.com/aaronmarkham/studioproducer/internal/budgetledger"
	"github.com/aaronmarkham/studioproducer/internal/edl"
	"github.com/aaronmarkham/studioproducer/internal/models"
	"github.com/aaronmarkham/studioproducer/internal/orchestrator"
	"github.com/aaronmarkham/studioproducer/internal/pilot"
	"github.com/aaronmarkham/studioproducer/internal/queue"
	"github.com/aaronmarkham/studioproducer/internal/runstore"
	"github.com/aaronmarkham/studioproducer/internal/storage"
)

// Worker pulls one production run at a time off the queue and drives
// it through a freshly-built Orchestrator. The agents themselves
// (Producer, Critic, ScriptWriter, VideoGenerator, AudioGenerator,
// QAVerifier, Editor) are stateless beyond the driver they hold, so
// they're shared across every run the process handles; only the
// Budget Ledger and the Orchestrator/Runner pair that close over it
// are rebuilt per run, since a ledger's total is that run's budget.
type Worker struct {
	store   *runstore.Store
	queue   *queue.Queue
	storage *storage.Storage

	producer     *agents.Producer
	critic       *agents.Critic
	scriptWriter *agents.ScriptWriter
	videoGen     *agents.VideoGenerator
	audioGen     *agents.AudioGenerator
	qa           *agents.QAVerifier
	editor       *edl.Editor

	maxConcurrentPilots int
}

// New constructs a Worker. editor may be nil, in which case completed
// runs carry no EDL artifact.
func New(
	store *runstore.Store,
	q *queue.Queue,
	stor *storage.Storage,
	producer *agents.Producer,
	critic *agents.Critic,
	scriptWriter *agents.ScriptWriter,
	videoGen *agents.VideoGenerator,
	audioGen *agents.AudioGenerator,
	qa *agents.QAVerifier,
	editor *edl.Editor,
	maxConcurrentPilots int,
) *Worker {
	return &Worker{
		store:               store,
		queue:               q,
		storage:             stor,
		producer:            producer,
		critic:              critic,
		scriptWriter:        scriptWriter,
		videoGen:            videoGen,
		audioGen:            audioGen,
		qa:                  qa,
		editor:              editor,
		maxConcurrentPilots: maxConcurrentPilots,
	}
}

// Start begins pulling production-run jobs, spreading them across
// concurrency goroutines. Each goroutine's own production run still
// fans out internally (Orchestrator.MaxConcurrentPilots); concurrency
// here bounds how many whole runs the process drives at once.
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("Worker started with concurrency: %d", concurrency)

	for i := 0; i < concurrency; i++ {
		go w.processQueue(ctx)
	}

	<-ctx.Done()
	log.Println("Worker shutting down...")
}

func (w *Worker) processQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.queue.Dequeue(ctx, queue.QueueProductionRun, 5*time.Second)
			if err != nil {
				log.Printf("Error dequeuing production run: %v", err)
				continue
			}
			if job == nil {
				continue // No job available, retry
			}

			log.Printf("Processing production run %s", job.RunID)
			if err := w.handleProductionRun(ctx, job.RunID); err != nil {
				log.Printf("Production run %s failed: %v", job.RunID, err)
				if failErr := w.store.Fail(ctx, job.RunID, err.Error()); failErr != nil {
					log.Printf("Failed to record run failure for %s: %v", job.RunID, failErr)
				}
			} else {
				log.Printf("Production run %s completed successfully", job.RunID)
			}
		}
	}
}

// handleProductionRun loads the run's concept and budget, builds a
// Budget Ledger and Orchestrator scoped to that budget, marks the run
// running, drives the Orchestrator, and persists the result — and, if
// the orchestrator produced an EDL, uploads it as a JSON artifact
// alongside the run record.
func (w *Worker) handleProductionRun(ctx context.Context, runID string) error {
	run, err := w.store.Get(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load production run: %w", err)
	}

	if err := w.store.UpdateStatus(ctx, runID, models.RunStatusRunning); err != nil {
		return fmt.Errorf("failed to mark run running: %w", err)
	}

	ledger := budgetledger.New(run.TotalBudget)
	runner := pilot.New(w.scriptWriter, w.videoGen, w.audioGen, w.qa, ledger)
	orch := orchestrator.New(w.producer, w.critic, runner, w.editor, ledger)
	if w.maxConcurrentPilots > 0 {
		orch.MaxConcurrentPilots = w.maxConcurrentPilots
	}

	result, generatedEDL, err := orch.Produce(ctx, run.Concept, run.TotalBudget, nil)
	if err != nil {
		return fmt.Errorf("orchestrator produce: %w", err)
	}

	if generatedEDL != nil {
		if err := w.storage.UploadJSON(ctx, runID, "edl.json", generatedEDL); err != nil {
			log.Printf("Failed to upload EDL artifact for run %s: %v", runID, err)
		}
	}
	if err := w.storage.UploadJSON(ctx, runID, "result.json", result); err != nil {
		log.Printf("Failed to upload result artifact for run %s: %v", runID, err)
	}

	if result.Status != "success" {
		return fmt.Errorf("production failed: %s", result.FailureReason)
	}

	return w.store.Complete(ctx, runID, result, generatedEDL)
}
