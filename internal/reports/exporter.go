package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"orchidlab/internal/blob"
)

// Format names an artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Status describes the lifecycle stage of a report job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// DefaultQueueSize bounds the number of pending jobs.
const DefaultQueueSize = 32

// DefaultRetention bounds how many finished jobs stay queryable through Get.
const DefaultRetention = 256

// DefaultKeyPrefix is the blob key prefix under which artifacts are stored.
const DefaultKeyPrefix = "reports"

// ErrQueueFull is returned when the worker cannot accept another job.
var ErrQueueFull = errors.New("report queue full")

// Source supplies the records a report is computed from.
type Source interface {
	Dataset(ctx context.Context) (Dataset, error)
}

// Artifact is a rendered report stored in blob storage.
type Artifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Job tracks a report request and its artifacts.
type Job struct {
	ID          string     `json:"id"`
	Formats     []Format   `json:"formats"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Artifacts   []Artifact `json:"artifacts,omitempty"`
	RequestedBy string     `json:"requested_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (j *Job) copy() Job {
	out := *j
	out.Formats = append([]Format(nil), j.Formats...)
	out.Artifacts = append([]Artifact(nil), j.Artifacts...)
	if j.CompletedAt != nil {
		at := *j.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

// Request describes a report to generate. Empty Formats means JSON and CSV.
type Request struct {
	Formats     []Format
	RequestedBy string
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithLogger sets the worker logger.
func WithLogger(logger *zap.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithQueueSize sets the bounded queue capacity.
func WithQueueSize(size int) WorkerOption {
	return func(w *Worker) {
		if size > 0 {
			w.queueSize = size
		}
	}
}

// WithRetention sets how many finished jobs are kept. Older ones are evicted
// first.
func WithRetention(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.retention = n
		}
	}
}

// WithNow overrides the worker clock.
func WithNow(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// WithKeyPrefix sets the blob key prefix for artifacts.
func WithKeyPrefix(prefix string) WorkerOption {
	return func(w *Worker) {
		w.prefix = prefix
	}
}

// Worker renders statistics reports into blob storage on its own goroutine.
type Worker struct {
	source    Source
	store     blob.Store
	logger    *zap.Logger
	now       func() time.Time
	prefix    string
	queueSize int
	retention int

	queue    chan string
	mu       sync.RWMutex
	jobs     map[string]*Job
	finished []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker constructs a report worker.
func NewWorker(source Source, store blob.Store, opts ...WorkerOption) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		source:    source,
		store:     store,
		logger:    zap.NewNop(),
		now:       func() time.Time { return time.Now().UTC() },
		prefix:    DefaultKeyPrefix,
		queueSize: DefaultQueueSize,
		retention: DefaultRetention,
		jobs:      make(map[string]*Job),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	w.queue = make(chan string, w.queueSize)
	return w
}

// Start begins processing queued jobs.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for the loop to exit or ctx to
// expire.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case id := <-w.queue:
			w.process(w.ctx, id)
		}
	}
}

// Enqueue registers a job and hands it to the worker goroutine.
func (w *Worker) Enqueue(_ context.Context, req Request) (Job, error) {
	job, err := w.register(req)
	if err != nil {
		return Job{}, err
	}
	select {
	case w.queue <- job.ID:
	default:
		w.fail(job.ID, ErrQueueFull.Error())
		return Job{}, ErrQueueFull
	}
	return job, nil
}

// Run generates a report on the calling goroutine and returns the finished
// job.
func (w *Worker) Run(ctx context.Context, req Request) (Job, error) {
	job, err := w.register(req)
	if err != nil {
		return Job{}, err
	}
	w.process(ctx, job.ID)
	final, _ := w.Get(job.ID)
	if final.Status == StatusFailed {
		return final, fmt.Errorf("report %s failed: %s", final.ID, final.Error)
	}
	return final, nil
}

// Get returns a snapshot of the job.
func (w *Worker) Get(id string) (Job, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	job, ok := w.jobs[id]
	if !ok {
		return Job{}, false
	}
	return job.copy(), true
}

func (w *Worker) register(req Request) (Job, error) {
	if w.source == nil {
		return Job{}, errors.New("report source not configured")
	}
	formats, err := normalizeFormats(req.Formats)
	if err != nil {
		return Job{}, err
	}
	now := w.now()
	job := &Job{
		ID:          uuid.New().String(),
		Formats:     formats,
		Status:      StatusQueued,
		RequestedBy: req.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	w.mu.Lock()
	w.jobs[job.ID] = job
	snapshot := job.copy()
	w.mu.Unlock()
	w.logger.Info("report queued", zap.String("job_id", job.ID), zap.String("requested_by", req.RequestedBy))
	return snapshot, nil
}

func normalizeFormats(formats []Format) ([]Format, error) {
	if len(formats) == 0 {
		return []Format{FormatJSON, FormatCSV}, nil
	}
	out := make([]Format, 0, len(formats))
	seen := make(map[Format]struct{})
	for _, f := range formats {
		if f != FormatJSON && f != FormatCSV {
			return nil, fmt.Errorf("unsupported report format %s", f)
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}

func (w *Worker) process(ctx context.Context, id string) {
	job, ok := w.Get(id)
	if !ok {
		return
	}
	w.setStatus(id, StatusRunning)

	ds, err := w.source.Dataset(ctx)
	if err != nil {
		w.fail(id, fmt.Sprintf("load dataset: %v", err))
		return
	}
	report := Build(ds, w.now())

	artifacts := make([]Artifact, 0, len(job.Formats))
	for _, format := range job.Formats {
		payload, contentType, err := Render(report, format)
		if err != nil {
			w.fail(id, err.Error())
			return
		}
		artifact, err := w.put(ctx, id, format, contentType, payload)
		if err != nil {
			w.fail(id, fmt.Sprintf("store artifact: %v", err))
			return
		}
		artifacts = append(artifacts, artifact)
	}
	w.complete(id, artifacts)
}

func (w *Worker) put(ctx context.Context, id string, format Format, contentType string, payload []byte) (Artifact, error) {
	artifact := Artifact{
		Key:         path.Join(w.prefix, id, "statistics."+string(format)),
		Format:      format,
		ContentType: contentType,
		SizeBytes:   int64(len(payload)),
		CreatedAt:   w.now(),
	}
	if w.store == nil {
		return artifact, nil
	}
	info, err := w.store.Put(ctx, artifact.Key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"report_id": id, "format": string(format)},
	})
	if err != nil {
		return Artifact{}, err
	}
	if info.Size > 0 {
		artifact.SizeBytes = info.Size
	}
	artifact.URL = info.URL
	return artifact, nil
}

func (w *Worker) setStatus(id string, status Status) {
	w.mu.Lock()
	if job, ok := w.jobs[id]; ok {
		job.Status = status
		job.UpdatedAt = w.now()
	}
	w.mu.Unlock()
}

func (w *Worker) complete(id string, artifacts []Artifact) {
	now := w.now()
	w.mu.Lock()
	if job, ok := w.jobs[id]; ok {
		job.Status = StatusSucceeded
		job.Error = ""
		job.Artifacts = artifacts
		job.UpdatedAt = now
		job.CompletedAt = &now
		w.retire(id)
	}
	w.mu.Unlock()
	w.logger.Info("report generated", zap.String("job_id", id), zap.Int("artifacts", len(artifacts)))
}

func (w *Worker) fail(id, reason string) {
	now := w.now()
	w.mu.Lock()
	if job, ok := w.jobs[id]; ok {
		job.Status = StatusFailed
		job.Error = reason
		job.UpdatedAt = now
		job.CompletedAt = &now
		w.retire(id)
	}
	w.mu.Unlock()
	w.logger.Warn("report failed", zap.String("job_id", id), zap.String("reason", reason))
}

// retire records a finished job and evicts the oldest ones beyond the
// retention limit. Callers hold w.mu.
func (w *Worker) retire(id string) {
	w.finished = append(w.finished, id)
	for len(w.finished) > w.retention {
		delete(w.jobs, w.finished[0])
		w.finished = w.finished[1:]
	}
}

// Render encodes report in the given format and returns the payload with its
// content type.
func Render(report Report, format Format) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("marshal json: %w", err)
		}
		return payload, "application/json", nil
	case FormatCSV:
		payload, err := renderCSV(report)
		if err != nil {
			return nil, "", fmt.Errorf("write csv: %w", err)
		}
		return payload, "text/csv", nil
	default:
		return nil, "", fmt.Errorf("unsupported report format %s", format)
	}
}

var csvHeader = []string{
	"section", "key", "total", "successful", "success_rate",
	"capsules", "seeds_planted", "seedlings_germinated", "germination_rate",
}

func renderCSV(report Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(csvHeader); err != nil {
		return nil, err
	}
	sections := []struct {
		name   string
		groups []Group
	}{
		{"pollination_type", report.Pollinations.ByType},
		{"pollination_genus", report.Pollinations.ByGenus},
		{"pollination_responsible", report.Pollinations.ByResponsible},
		{"pollination_month", report.Pollinations.ByMonth},
		{"germination_genus", report.Germinations.ByGenus},
		{"germination_responsible", report.Germinations.ByResponsible},
		{"germination_month", report.Germinations.ByMonth},
	}
	for _, section := range sections {
		for _, g := range section.groups {
			row := []string{
				section.name,
				g.Key,
				strconv.Itoa(g.Total),
				strconv.Itoa(g.Successful),
				formatFloat(g.SuccessRate),
				strconv.Itoa(g.Capsules),
				strconv.Itoa(g.SeedsPlanted),
				strconv.Itoa(g.SeedlingsGerminated),
				formatFloat(g.GerminationRate),
			}
			if err := writer.Write(row); err != nil {
				return nil, err
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
