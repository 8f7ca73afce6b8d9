package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "resume-analyzer/internal/errors"
)

func TestWorker_ResultsKeepEnqueueOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{"a.pdf", "b.docx", "c.txt", "missing.pdf"}
	for _, p := range paths[:3] {
		require.NoError(t, os.WriteFile(filepath.Join(dir, p), []byte("stub"), 0644))
	}

	svc := NewAnalyzerService(&fakeExtractor{text: "Python and SQL"}, testRoles, nil, nil, nil, &fakeHistoryRepo{}, nil, nil)
	w := NewWorker(svc, 3, nil)
	w.Start(context.Background())
	for _, p := range paths {
		w.EnqueueJob(BatchJob{Path: filepath.Join(dir, p), Role: "Data Scientist"})
	}
	results := w.Stop()

	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, filepath.Join(dir, paths[i]), r.Job.Path)
	}

	require.NoError(t, results[0].Err)
	assert.Equal(t, 66.67, results[0].Report.ATSScore)
	require.NoError(t, results[1].Err)
	assert.ErrorIs(t, results[2].Err, apperrors.ErrUnsupportedFormat)
	assert.Error(t, results[3].Err)
	assert.Nil(t, results[3].Report)
}

func TestWorker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewAnalyzerService(&fakeExtractor{text: "x"}, testRoles, nil, nil, nil, &fakeHistoryRepo{}, nil, nil)
	w := NewWorker(svc, 0, nil)
	w.Start(ctx)
	w.EnqueueJob(BatchJob{Path: "cv.pdf", Role: "Data Scientist"})
	results := w.Stop()

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestWorker_EnqueueAfterStopIsDropped(t *testing.T) {
	svc := NewAnalyzerService(&fakeExtractor{text: "Python"}, testRoles, nil, nil, nil, &fakeHistoryRepo{}, nil, nil)
	w := NewWorker(svc, 2, nil)
	w.Start(context.Background())
	w.EnqueueJob(BatchJob{Path: "cv.txt", Role: "Data Scientist"})
	results := w.Stop()
	require.Len(t, results, 1)

	assert.NotPanics(t, func() {
		w.EnqueueJob(BatchJob{Path: "late.pdf", Role: "Data Scientist"})
	})
	assert.Equal(t, results, w.Stop())
}
