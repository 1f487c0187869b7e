package http

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/iwac-chat/pkg/observability/metrics"
	httpopts "github.com/kart-io/iwac-chat/pkg/options/http"
)

func TestServerStartStop(t *testing.T) {
	opts := httpopts.NewOptions()
	opts.Addr = "127.0.0.1:0"
	opts.Mode = gin.TestMode

	s := NewServer(opts, nil, metrics.NewRegistry())
	s.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://" + s.Addr() + "/ping")
	if err != nil {
		t.Fatalf("GET /ping: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "pong" {
		t.Errorf("body = %q, want pong", body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	resp, err = http.Get("http://" + s.Addr() + "/missing")
	if err != nil {
		t.Fatalf("GET /missing: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if _, ok := <-s.Err(); ok {
		t.Error("Err() should be closed after a clean stop")
	}
}

func TestServerStartBindError(t *testing.T) {
	opts := httpopts.NewOptions()
	opts.Addr = "256.0.0.1:99999"
	opts.Mode = gin.TestMode
	if err := NewServer(opts, nil, nil).Start(context.Background()); err == nil {
		t.Error("Start() should fail on an invalid address")
	}
}
