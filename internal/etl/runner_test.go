package etl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/domain"
)

type fakeRecorder struct {
	reports []domain.RunReport
	err     error
}

func (r *fakeRecorder) Record(_ context.Context, report domain.RunReport) error {
	if r.err != nil {
		return r.err
	}
	r.reports = append(r.reports, report)
	return nil
}

type fakeArchiver struct {
	paths []string
	err   error
}

func (a *fakeArchiver) ArchiveInput(_ context.Context, path string, _ time.Time) error {
	if a.err != nil {
		return a.err
	}
	a.paths = append(a.paths, path)
	return nil
}

func newTestRunner(t *testing.T, opener *fakeOpener, recorder RunRecorder) (*Runner, string) {
	t.Helper()
	dataDir := t.TempDir()
	runner := NewRunner(
		NewExtractor(testLogger()),
		NewTransformer(false, testLogger()),
		NewLoader(opener.open, testLogger()),
		dataDir,
		recorder,
		nil,
		testLogger(),
	)
	return runner, dataDir
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateFormat, s)
	require.NoError(t, err)
	return d
}

func TestRunnerInputPath(t *testing.T) {
	runner, dataDir := newTestRunner(t, &fakeOpener{store: newFakeStore()}, nil)

	got := runner.InputPath(day(t, "2024-01-01"))
	assert.Equal(t, filepath.Join(dataDir, "sales_data_2024_01_01.csv"), got)
}

func TestRunnerFullRun(t *testing.T) {
	store := newFakeStore()
	opener := &fakeOpener{store: store}
	recorder := &fakeRecorder{}
	runner, dataDir := newTestRunner(t, opener, recorder)

	input := "order_id,customer_id,product_name,quantity,price,order_date\n" +
		"101,CUS_0001,Laptop,2,1000.00,2024-01-01\n" +
		"101,CUS_0001,Laptop,2,1000.00,2024-01-01\n" +
		"102,CUS_0002,Mouse,1,abc,2024-01-01\n" +
		"103,CUS_0003,Mouse,1,50.00,2024-01-01\n"
	path := filepath.Join(dataDir, "sales_data_2024_01_01.csv")
	require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

	report := runner.Run(context.Background(), day(t, "2024-01-01"))

	assert.Equal(t, domain.OutcomeSuccess, report.Outcome)
	assert.Equal(t, 4, report.Extracted)
	assert.Equal(t, 1, report.Dropped)
	assert.Equal(t, 1, report.Deduped)
	assert.Equal(t, 2, report.Inserted)
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	n, err := store.CountRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.Len(t, recorder.reports, 1)
	assert.Equal(t, report, recorder.reports[0])
}

func TestRunnerSkipsMissingInput(t *testing.T) {
	opener := &fakeOpener{store: newFakeStore()}
	runner, _ := newTestRunner(t, opener, nil)

	report := runner.Run(context.Background(), day(t, "2024-01-01"))

	assert.Equal(t, domain.OutcomeSkipped, report.Outcome)
	assert.Zero(t, report.Extracted)
	// Neither transform nor load ran: no store connection was requested.
	assert.Zero(t, opener.opened)
}

func TestRunnerSkipsWhenNothingSurvives(t *testing.T) {
	opener := &fakeOpener{store: newFakeStore()}
	runner, dataDir := newTestRunner(t, opener, nil)

	input := "order_id,customer_id,product_name,quantity,price,order_date\n" +
		"101,CUS_0001,Laptop,bad,1000.00,2024-01-01\n"
	path := filepath.Join(dataDir, "sales_data_2024_01_01.csv")
	require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

	report := runner.Run(context.Background(), day(t, "2024-01-01"))

	assert.Equal(t, domain.OutcomeSkipped, report.Outcome)
	assert.Equal(t, 1, report.Dropped)
	assert.Zero(t, opener.opened)
}

func TestRunnerContainsLoadFailure(t *testing.T) {
	opener := &fakeOpener{openErr: assert.AnError}
	recorder := &fakeRecorder{}
	runner, dataDir := newTestRunner(t, opener, recorder)

	input := "order_id,customer_id,product_name,quantity,price,order_date\n" +
		"101,CUS_0001,Laptop,2,1000.00,2024-01-01\n"
	path := filepath.Join(dataDir, "sales_data_2024_01_01.csv")
	require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

	report := runner.Run(context.Background(), day(t, "2024-01-01"))

	assert.Equal(t, domain.OutcomeFailed, report.Outcome)
	assert.NotEmpty(t, report.Reason)
	// The failure is still recorded for operators.
	require.Len(t, recorder.reports, 1)
	assert.Equal(t, domain.OutcomeFailed, recorder.reports[0].Outcome)
}

func TestRunnerToleratesHookFailures(t *testing.T) {
	store := newFakeStore()
	recorder := &fakeRecorder{err: assert.AnError}
	archiver := &fakeArchiver{err: assert.AnError}
	dataDir := t.TempDir()
	runner := NewRunner(
		NewExtractor(testLogger()),
		NewTransformer(false, testLogger()),
		NewLoader((&fakeOpener{store: store}).open, testLogger()),
		dataDir,
		recorder,
		archiver,
		testLogger(),
	)

	input := "order_id,customer_id,product_name,quantity,price,order_date\n" +
		"101,CUS_0001,Laptop,2,1000.00,2024-01-01\n"
	path := filepath.Join(dataDir, "sales_data_2024_01_01.csv")
	require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

	// Run history and archival are best-effort: both failing must not fail
	// the run or undo the load.
	report := runner.Run(context.Background(), day(t, "2024-01-01"))
	assert.Equal(t, domain.OutcomeSuccess, report.Outcome)
	assert.Equal(t, 1, report.Inserted)

	n, err := store.CountRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRunnerArchivesInputAfterLoad(t *testing.T) {
	archiver := &fakeArchiver{}
	dataDir := t.TempDir()
	runner := NewRunner(
		NewExtractor(testLogger()),
		NewTransformer(false, testLogger()),
		NewLoader((&fakeOpener{store: newFakeStore()}).open, testLogger()),
		dataDir,
		nil,
		archiver,
		testLogger(),
	)

	input := "order_id,customer_id,product_name,quantity,price,order_date\n" +
		"101,CUS_0001,Laptop,2,1000.00,2024-01-01\n"
	path := filepath.Join(dataDir, "sales_data_2024_01_01.csv")
	require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

	report := runner.Run(context.Background(), day(t, "2024-01-01"))
	require.Equal(t, domain.OutcomeSuccess, report.Outcome)
	assert.Equal(t, []string{path}, archiver.paths)

	// A skipped run archives nothing.
	require.NoError(t, os.Remove(path))
	report = runner.Run(context.Background(), day(t, "2024-01-01"))
	require.Equal(t, domain.OutcomeSkipped, report.Outcome)
	assert.Len(t, archiver.paths, 1)
}

func TestRunnerRerunReportsDuplicates(t *testing.T) {
	store := newFakeStore()
	runner, dataDir := newTestRunner(t, &fakeOpener{store: store}, nil)

	input := "order_id,customer_id,product_name,quantity,price,order_date\n" +
		"101,CUS_0001,Laptop,2,1000.00,2024-01-01\n"
	path := filepath.Join(dataDir, "sales_data_2024_01_01.csv")
	require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

	d := day(t, "2024-01-01")
	first := runner.Run(context.Background(), d)
	require.Equal(t, domain.OutcomeSuccess, first.Outcome)
	require.Equal(t, 1, first.Inserted)

	second := runner.Run(context.Background(), d)
	assert.Equal(t, domain.OutcomeSuccess, second.Outcome)
	assert.Zero(t, second.Inserted)
	assert.Equal(t, 1, second.Duplicates)
}
