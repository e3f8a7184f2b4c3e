package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"fathomupload/internal/app"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ensurerFunc func(context.Context, []string) error

func (f ensurerFunc) EnsureIndexes(ctx context.Context, d []string) error { return f(ctx, d) }

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRunServesAndShutsDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	cfg := app.DefaultConfig()
	cfg.HTTP.Listen = freeAddr(t)
	cfg.Indexes.EnsureOnStart = true
	cfg.Indexes.Destinations = []string{"baseline"}
	ensured := make(chan []string, 1)
	flow := &app.IndexFlow{
		Store: ensurerFunc(func(_ context.Context, d []string) error {
			ensured <- d
			return nil
		}),
		Destinations: cfg.Indexes.Destinations,
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewHTTPServer(engine, nil, cfg, flow, nil)
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	assert.Equal(t, []string{"baseline"}, <-ensured)
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.HTTP.Listen + "/ping")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
