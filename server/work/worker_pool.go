package work

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/L4er70/ContactBook/server/models"
	"github.com/pkg/errors"
)

type workerPool struct {
	handlers    map[string]Handler
	workers     []*worker
	requeuers   []*requeuer
	concurrency int
	started     bool
	mu          sync.Mutex
}

func newWorkerPool(concurrency int, sleepBackoffs []time.Duration) (*workerPool, error) {
	wp := workerPool{handlers: make(map[string]Handler), concurrency: concurrency}

	for i := 0; i < concurrency; i++ {
		wp.workers = append(wp.workers, newWorker(sleepBackoffs))
	}

	requeuerBackoff := sleepBackoffs[len(sleepBackoffs)-1] / 24
	for _, queue := range []string{models.IN_PROGRESS_JOB, models.SCHEDULED_JOB} {
		r, err := newRequeuer(queue, requeuerBackoff)
		if err != nil {
			return nil, err
		}
		wp.requeuers = append(wp.requeuers, r)
	}

	return &wp, nil
}

// registerHandler binds a name to a job handler for all workers in pool
func (wp *workerPool) registerHandler(name string, handler Handler) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.started {
		return errors.Errorf("cannot register handler %q after the pool has started", name)
	}

	if _, ok := wp.handlers[name]; ok {
		return ErrDuplicateHandler
	}
	wp.handlers[name] = handler

	for _, worker := range wp.workers {
		if err := worker.registerHandler(name, handler); err != nil {
			return errors.Wrapf(err, "registering handler %q", name)
		}
	}
	return nil
}

// enqueue adds a job to the queue(to be executed) by creating a DB record based on 'JobParams' provided
func (wp *workerPool) enqueue(job JobParams) error {
	argsAsJson, err := marshalJob(job)
	if err != nil {
		return err
	}

	// This ensures that all jobs currently waiting or in-progress are unique
	return models.CreateUniqueJobByName(job.Name, job.Handler, argsAsJson)
}

// enqueueIn schedules a job to be added to the queue in 'seconds' seconds
func (wp *workerPool) enqueueIn(seconds int64, job JobParams) error {
	argsAsJson, err := marshalJob(job)
	if err != nil {
		return err
	}

	enqueueAt := time.Now().Add(time.Duration(seconds) * time.Second)
	return models.CreateScheduledJob(job.Name, job.Handler, argsAsJson, enqueueAt)
}

// start starts all workers & requeuers in pool i.e jobs can start being processed
func (wp *workerPool) start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.started {
		return
	}
	wp.started = true

	for _, worker := range wp.workers {
		worker.start()
	}

	for _, r := range wp.requeuers {
		r.start()
	}
}

// stop stops all workers & requeuers in pool i.e jobs will stop being processed
func (wp *workerPool) stop() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.started {
		return
	}

	wg := sync.WaitGroup{}
	for _, w := range wp.workers {
		wg.Add(1)
		go func(w *worker) {
			w.stop()
			wg.Done()
		}(w)
	}

	for _, r := range wp.requeuers {
		wg.Add(1)
		go func(r *requeuer) {
			r.stop()
			wg.Done()
		}(r)
	}

	wg.Wait()
	wp.started = false
}

func marshalJob(job JobParams) (string, error) {
	if strings.TrimSpace(job.Name) == "" || strings.TrimSpace(job.Handler) == "" {
		return "", fmt.Errorf("both a name & handler is required for a job")
	}

	if job.Args == nil {
		job.Args = map[string]interface{}{}
	}

	argsAsJson, err := json.Marshal(job.Args)
	if err != nil {
		return "", errors.Wrap(err, "marshalling job args")
	}

	return string(argsAsJson), nil
}
