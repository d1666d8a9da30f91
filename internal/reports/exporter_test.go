package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"orchidlab/internal/blob"
	"orchidlab/internal/infra/blob/memory"
)

type staticSource struct {
	ds  Dataset
	err error
}

func (s staticSource) Dataset(context.Context) (Dataset, error) { return s.ds, s.err }

func fixedNow() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) }

func TestRunStoresArtifacts(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	w := NewWorker(staticSource{ds: fixture()}, store, WithNow(fixedNow), WithLogger(zaptest.NewLogger(t)))

	job, err := w.Run(ctx, Request{RequestedBy: "ana"})
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, job.Status)
	assert.Equal(t, []Format{FormatJSON, FormatCSV}, job.Formats)
	require.Len(t, job.Artifacts, 2)
	require.NotNil(t, job.CompletedAt)
	assert.Equal(t, "ana", job.RequestedBy)

	jsonArtifact := job.Artifacts[0]
	assert.Equal(t, "reports/"+job.ID+"/statistics.json", jsonArtifact.Key)
	assert.Equal(t, "application/json", jsonArtifact.ContentType)

	info, rc, err := store.Get(ctx, jsonArtifact.Key)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, job.ID, info.Metadata["report_id"])
	assert.Equal(t, jsonArtifact.SizeBytes, info.Size)

	var decoded Report
	require.NoError(t, json.NewDecoder(rc).Decode(&decoded))
	assert.Equal(t, 4, decoded.Pollinations.Summary.Total)
	assert.Equal(t, fixedNow(), decoded.GeneratedAt)

	stored, ok := w.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, job.Artifacts, stored.Artifacts)
}

func TestRunFailsOnSourceError(t *testing.T) {
	w := NewWorker(staticSource{err: errors.New("store offline")}, memory.New())

	job, err := w.Run(context.Background(), Request{Formats: []Format{FormatCSV}})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Contains(t, job.Error, "store offline")
	assert.Empty(t, job.Artifacts)
}

type rejectingStore struct {
	blob.Store
}

func (rejectingStore) Put(context.Context, string, io.Reader, blob.PutOptions) (blob.Info, error) {
	return blob.Info{}, errors.New("bucket read-only")
}

func TestRunFailsOnStoreError(t *testing.T) {
	w := NewWorker(staticSource{ds: fixture()}, rejectingStore{Store: memory.New()})

	job, err := w.Run(context.Background(), Request{Formats: []Format{FormatJSON}})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Contains(t, job.Error, "bucket read-only")
}

func TestRejectsUnsupportedFormat(t *testing.T) {
	w := NewWorker(staticSource{}, memory.New())
	_, err := w.Run(context.Background(), Request{Formats: []Format{"xml"}})
	require.Error(t, err)

	_, _, err = Render(Report{}, "xml")
	require.Error(t, err)
}

func TestDuplicateFormatsCollapse(t *testing.T) {
	formats, err := normalizeFormats([]Format{FormatCSV, FormatCSV, FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatCSV, FormatJSON}, formats)
}

func TestRunWithoutSource(t *testing.T) {
	w := NewWorker(nil, memory.New())
	_, err := w.Run(context.Background(), Request{})
	require.Error(t, err)
}

func TestRunWithoutStoreKeepsArtifactsInline(t *testing.T) {
	w := NewWorker(staticSource{ds: fixture()}, nil)
	job, err := w.Run(context.Background(), Request{Formats: []Format{FormatJSON}})
	require.NoError(t, err)
	require.Len(t, job.Artifacts, 1)
	assert.Empty(t, job.Artifacts[0].URL)
	assert.Positive(t, job.Artifacts[0].SizeBytes)
}

func TestEnqueueProcessesInBackground(t *testing.T) {
	store := memory.New()
	w := NewWorker(staticSource{ds: fixture()}, store)
	w.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, w.Stop(ctx))
	})

	job, err := w.Enqueue(context.Background(), Request{Formats: []Format{FormatCSV}})
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, job.Status)

	require.Eventually(t, func() bool {
		current, ok := w.Get(job.ID)
		return ok && current.Status == StatusSucceeded
	}, 2*time.Second, 10*time.Millisecond)

	list, err := store.List(context.Background(), DefaultKeyPrefix+"/"+job.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEnqueueQueueFull(t *testing.T) {
	w := NewWorker(staticSource{ds: fixture()}, memory.New(), WithQueueSize(1))

	_, err := w.Enqueue(context.Background(), Request{})
	require.NoError(t, err)
	_, err = w.Enqueue(context.Background(), Request{})
	require.ErrorIs(t, err, ErrQueueFull)

	w.mu.RLock()
	var failed int
	for _, job := range w.jobs {
		if job.Status == StatusFailed {
			failed++
		}
	}
	w.mu.RUnlock()
	assert.Equal(t, 1, failed)
}

func TestStopWithoutStart(t *testing.T) {
	w := NewWorker(staticSource{}, nil)
	require.NoError(t, w.Stop(context.Background()))
}

func TestRetentionEvictsOldestFinishedJobs(t *testing.T) {
	ctx := context.Background()
	w := NewWorker(staticSource{ds: fixture()}, nil, WithNow(fixedNow), WithRetention(2))

	var ids []string
	for i := 0; i < 3; i++ {
		job, err := w.Run(ctx, Request{Formats: []Format{FormatJSON}})
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}

	_, ok := w.Get(ids[0])
	assert.False(t, ok, "oldest job should be evicted")
	for _, id := range ids[1:] {
		_, ok := w.Get(id)
		assert.True(t, ok, "job %s should be retained", id)
	}

	_, err := NewWorker(staticSource{err: errors.New("down")}, nil, WithRetention(1)).Run(ctx, Request{})
	require.Error(t, err)
}

func TestGetUnknownJob(t *testing.T) {
	w := NewWorker(staticSource{}, nil)
	_, ok := w.Get("missing")
	assert.False(t, ok)
}

func TestRenderCSV(t *testing.T) {
	payload, contentType, err := Render(Build(fixture(), fixedNow()), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"pollination_type", "Self", "2", "1", "50.00", "4", "0", "0", "0.00"}, rows[1])

	var germinationRows int
	for _, row := range rows[1:] {
		if row[0] == "germination_month" {
			germinationRows++
		}
	}
	assert.Equal(t, 2, germinationRows)
}

func TestRenderJSONIsIndented(t *testing.T) {
	payload, contentType, err := Render(Report{}, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.True(t, bytes.Contains(payload, []byte("\n  \"pollinations\"")))
}
