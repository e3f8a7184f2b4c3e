package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshotFunc func(context.Context) (map[string]string, error)

func (f snapshotFunc) Snapshot(ctx context.Context) (map[string]string, error) { return f(ctx) }

func TestPrintStatus(t *testing.T) {
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := printStatus(context.Background(), &buf, snapshotFunc(func(context.Context) (map[string]string, error) {
		return map[string]string{"uploadcnt": "4", "errorcnt": "0", "start": "2026-10-17T09:00:00Z"}, nil
	}), now)

	require.NoError(t, err)
	assert.Equal(t, "errorcnt\t0\nstart\t2026-10-17T09:00:00Z\nuploadcnt\t4\nuptime\t1h0m0s\n", buf.String())
}

func TestPrintStatusError(t *testing.T) {
	err := printStatus(context.Background(), &bytes.Buffer{}, snapshotFunc(func(context.Context) (map[string]string, error) {
		return nil, errors.New("boom")
	}), time.Now())
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["ensure-indexes"])
	assert.True(t, names["status"])
}
