package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnsurer struct {
	got [][]string
	err error
}

func (r *recordingEnsurer) EnsureIndexes(_ context.Context, destinations []string) error {
	r.got = append(r.got, destinations)
	return r.err
}

func TestIndexFlowDeduplicates(t *testing.T) {
	ensurer := &recordingEnsurer{}
	flow := &IndexFlow{Store: ensurer, Destinations: []string{"baseline", " homenet ", "", "baseline"}}

	require.NoError(t, flow.Run(context.Background()))
	require.Len(t, ensurer.got, 1)
	assert.Equal(t, []string{"baseline", "homenet"}, ensurer.got[0])
}

func TestIndexFlowEmpty(t *testing.T) {
	ensurer := &recordingEnsurer{}
	flow := &IndexFlow{Store: ensurer}

	require.NoError(t, flow.Run(context.Background()))
	assert.Empty(t, ensurer.got)
}

func TestIndexFlowError(t *testing.T) {
	cause := errors.New("not primary")
	flow := &IndexFlow{Store: &recordingEnsurer{err: cause}, Destinations: []string{"pageload"}}

	err := flow.Run(context.Background())
	assert.ErrorIs(t, err, cause)
}

func TestIndexFlowMissingStore(t *testing.T) {
	assert.Error(t, (&IndexFlow{}).Run(context.Background()))
}
