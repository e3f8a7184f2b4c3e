package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"fathomupload/internal/document"
	"fathomupload/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func batch(destination string, docs ...document.Document) Batch {
	return Batch{Destination: destination, Documents: docs}
}

func doc(uuid, objectID string, extra ...any) document.Document {
	d := document.Document{"uuid": uuid, "objectId": objectID}
	for i := 0; i+1 < len(extra); i += 2 {
		d[extra[i].(string)] = extra[i+1]
	}
	return d
}

func TestCommitAllDestinations(t *testing.T) {
	st := newMemStore()
	reporter := &fakeStats{}
	c := NewCoordinator(st, reporter, 0, nil)

	res := c.Commit(context.Background(), []Batch{
		batch("baseline", doc("u1", "o1"), doc("u1", "o2")),
		batch("pageload", doc("u2", "o1")),
	})

	require.True(t, res.Success())
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, StateCommitted, res.Outcomes[0].State)
	assert.Equal(t, StateCommitted, res.Outcomes[1].State)
	assert.Equal(t, 3, reporter.uploads)
	assert.Equal(t, 1, reporter.calls)
}

func TestCommitOtherErrorDoesNotBlockOtherDestinations(t *testing.T) {
	st := newMemStore()
	st.failWith["broken"] = errors.New("connection reset")
	st.failWith["worse"] = errors.New("disk full")
	reporter := &fakeStats{}
	c := NewCoordinator(st, reporter, 1, nil)

	res := c.Commit(context.Background(), []Batch{
		batch("ok1", doc("u", "1")),
		batch("broken", doc("u", "2")),
		batch("ok2", doc("u", "3")),
		batch("worse", doc("u", "4")),
	})

	require.False(t, res.Success())
	assert.Equal(t, "broken", res.Err.Destination)
	assert.EqualError(t, res.Err.Cause, "connection reset")
	assert.Len(t, st.stored("ok1"), 1)
	assert.Len(t, st.stored("ok2"), 1)
	assert.Equal(t, StateFailed, res.Outcomes[1].State)
	assert.Equal(t, StateFailed, res.Outcomes[3].State)
	assert.Equal(t, 1, reporter.errors)
	assert.Equal(t, 0, reporter.uploads)
	assert.Equal(t, 1, reporter.calls)
}

func TestCommitWaitsForSlowDestination(t *testing.T) {
	st := newMemStore()
	st.failWith["slow"] = errors.New("timeout")
	st.beforeRun = func(destination string) {
		if destination == "slow" {
			time.Sleep(50 * time.Millisecond)
		}
	}
	c := NewCoordinator(st, &fakeStats{}, 4, nil)

	res := c.Commit(context.Background(), []Batch{
		batch("fast", doc("u", "1")),
		batch("slow", doc("u", "2")),
	})

	require.False(t, res.Success(), "a pending failure must not be reported as success")
	assert.Equal(t, "slow", res.Err.Destination)
}

func TestCommitRetriesExactlyOnce(t *testing.T) {
	calls := 0
	var seen [][]document.Document
	inserter := insertFunc(func(_ context.Context, _ string, docs []document.Document) (int, error) {
		calls++
		seen = append(seen, docs)
		return 0, &store.InsertError{Class: store.ClassInvalidFieldName, Err: errors.New("still invalid")}
	})
	reporter := &fakeStats{}
	c := NewCoordinator(inserter, reporter, 1, nil)

	res := c.Commit(context.Background(), []Batch{batch("baseline", doc("u", "o", "a.b", 1, "$c", 2))})

	assert.Equal(t, 2, calls)
	require.False(t, res.Success())
	assert.Equal(t, StateFailed, res.Outcomes[0].State)
	assert.Equal(t, document.Document{"uuid": "u", "objectId": "o", "a__dot__b": 1, "__dollar__c": 2}, seen[1][0])
	// 原批次保持不变
	assert.Contains(t, seen[0][0], "a.b")
	assert.Equal(t, 1, reporter.errors)
}

func TestCommitDuplicateAfterSanitize(t *testing.T) {
	calls := 0
	inserter := insertFunc(func(context.Context, string, []document.Document) (int, error) {
		calls++
		if calls == 1 {
			return 0, &store.InsertError{Class: store.ClassInvalidFieldName, Err: errors.New("dotted")}
		}
		return 0, &store.InsertError{Class: store.ClassDuplicateKey, Err: errors.New("dup")}
	})
	c := NewCoordinator(inserter, &fakeStats{}, 1, nil)

	res := c.Commit(context.Background(), []Batch{batch("baseline", doc("u", "o", "a.b", 1))})

	require.True(t, res.Success())
	assert.Equal(t, StatePartiallyRecovered, res.Outcomes[0].State)
	assert.Equal(t, 2, calls)
}

func TestCommitUnclassifiedErrorIsOther(t *testing.T) {
	calls := 0
	inserter := insertFunc(func(context.Context, string, []document.Document) (int, error) {
		calls++
		return 0, errors.New("E11000 duplicate key error but not classified")
	})
	c := NewCoordinator(inserter, &fakeStats{}, 1, nil)

	res := c.Commit(context.Background(), []Batch{batch("baseline", doc("u", "o"))})

	assert.False(t, res.Success())
	assert.Equal(t, 1, calls)
}

func TestBuildBatchesPreservesOrder(t *testing.T) {
	docs := []document.Normalized{
		{Destination: "b", Payload: doc("u", "1")},
		{Destination: "a", Payload: doc("u", "2")},
		{Destination: "b", Payload: doc("u", "3")},
		{Destination: "b", Payload: doc("u", "3")},
	}

	batches, err := BuildBatches(docs)
	require.NoError(t, err)

	require.Len(t, batches, 2)
	assert.Equal(t, "b", batches[0].Destination)
	assert.Equal(t, "a", batches[1].Destination)
	require.Len(t, batches[0].Documents, 3)
	assert.Equal(t, "1", batches[0].Documents[0]["objectId"])
	assert.Equal(t, "3", batches[0].Documents[2]["objectId"])
}

func TestBuildBatchesEmpty(t *testing.T) {
	_, err := BuildBatches(nil)
	assert.ErrorIs(t, err, ErrNoValidDocuments)
}

func TestCommitLogsOutcomePerDestination(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	st := newMemStore()
	st.failWith["broken"] = &store.InsertError{Class: store.ClassOther, Err: errors.New("disk full")}
	c := NewCoordinator(st, &fakeStats{}, 2, zap.New(core))

	c.Commit(context.Background(), []Batch{
		batch("baseline", doc("u", "1", "a.b", 1)),
		batch("broken", doc("u", "2")),
	})

	entries := logs.FilterMessage("destination outcome").All()
	require.Len(t, entries, 2)
	byDestination := map[string]map[string]any{}
	levels := map[string]zapcore.Level{}
	for _, e := range entries {
		fields := e.ContextMap()
		dest := fields["destination"].(string)
		byDestination[dest] = fields
		levels[dest] = e.Level
	}

	assert.Equal(t, "partially_recovered", byDestination["baseline"]["state"])
	assert.Equal(t, true, byDestination["baseline"]["retried"])
	assert.NotContains(t, byDestination["baseline"], "error_class")
	assert.Contains(t, byDestination["baseline"], "duration")
	assert.Equal(t, zapcore.DebugLevel, levels["baseline"])

	assert.Equal(t, "failed", byDestination["broken"]["state"])
	assert.Equal(t, store.ClassOther.String(), byDestination["broken"]["error_class"])
	assert.Equal(t, zapcore.WarnLevel, levels["broken"])
}
