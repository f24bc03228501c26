package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func okCheck() CheckFunc {
	return func(_ context.Context) error {
		return nil
	}
}

func brokenCheck(msg string) CheckFunc {
	return func(_ context.Context) error {
		return errors.New(msg)
	}
}

// failCheck drives a registered check past the failure threshold (3
// consecutive failures) so it flips to unhealthy.
func failCheck(t *testing.T, c *checkConfig) {
	t.Helper()
	ctx := context.Background()
	for range 3 {
		c.run(ctx)
	}
}

func getStatus(t *testing.T, endpoint http.HandlerFunc, path string) (int, statusResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()

	endpoint(w, req)

	var body statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func TestLiveEndpoint(t *testing.T) {
	t.Run("all passing", func(t *testing.T) {
		h := New()
		h.AddLivenessCheck("goroutines", time.Second, okCheck())
		h.AddLivenessCheck("gc", time.Second, okCheck())

		code, body := getStatus(t, h.LiveEndpoint, "/livez")

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body.Status)
	})

	t.Run("failing check reported by name", func(t *testing.T) {
		h := New()
		h.AddLivenessCheck("goroutines", time.Second, brokenCheck("goroutine count 20000 exceeds threshold 10000"))
		failCheck(t, h.livenessChecks[0])

		code, body := getStatus(t, h.LiveEndpoint, "/livez")

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", body.Status)
		assert.Contains(t, body.Checks["goroutines"], "exceeds threshold")
	})

	t.Run("failures below threshold stay healthy", func(t *testing.T) {
		h := New()
		h.AddLivenessCheck("goroutines", time.Second, brokenCheck("blip"))

		// Two failures, threshold is three.
		h.livenessChecks[0].run(context.Background())
		h.livenessChecks[0].run(context.Background())

		code, _ := getStatus(t, h.LiveEndpoint, "/livez")
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("no checks registered", func(t *testing.T) {
		h := New()

		code, body := getStatus(t, h.LiveEndpoint, "/livez")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body.Status)
	})
}

func TestReadyEndpoint(t *testing.T) {
	t.Run("ready and passing", func(t *testing.T) {
		h := New()
		h.AddReadinessCheck("sqlite", time.Second, okCheck())
		h.SetReady(true)

		code, body := getStatus(t, h.ReadyEndpoint, "/readyz")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body.Status)
	})

	t.Run("not ready until SetReady", func(t *testing.T) {
		h := New()
		h.AddReadinessCheck("sqlite", time.Second, okCheck())

		code, body := getStatus(t, h.ReadyEndpoint, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Contains(t, body.Checks, "_readiness")
	})

	t.Run("shutdown drain flips readiness off", func(t *testing.T) {
		h := New()
		h.AddReadinessCheck("sqlite", time.Second, okCheck())
		h.SetReady(true)

		code, _ := getStatus(t, h.ReadyEndpoint, "/readyz")
		require.Equal(t, http.StatusOK, code)

		h.SetReady(false)

		code, _ = getStatus(t, h.ReadyEndpoint, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, code)
	})

	t.Run("one failing check marks unready, others unaffected", func(t *testing.T) {
		h := New()
		h.AddReadinessCheck("sqlite", time.Second, okCheck())
		h.AddReadinessCheck("smtp", time.Second, brokenCheck("dial smtp: connection refused"))
		h.SetReady(true)
		failCheck(t, h.readinessChecks[1])

		code, body := getStatus(t, h.ReadyEndpoint, "/readyz")

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Contains(t, body.Checks, "smtp")
		assert.NotContains(t, body.Checks, "sqlite")
	})
}

func TestIsReady(t *testing.T) {
	h := New()
	h.AddReadinessCheck("sqlite", time.Second, okCheck())

	assert.False(t, h.IsReady())

	h.SetReady(true)
	assert.True(t, h.IsReady())

	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestCheckRecovery(t *testing.T) {
	// A flapping dependency must recover after successThreshold passes.
	down := true
	h := New()
	h.AddReadinessCheck("sqlite", time.Second, func(_ context.Context) error {
		if down {
			return errors.New("database is locked")
		}
		return nil
	})
	c := h.readinessChecks[0]

	failCheck(t, c)
	require.False(t, c.isHealthy())
	assert.EqualError(t, c.getLastError(), "database is locked")

	down = false
	c.run(context.Background())
	assert.True(t, c.isHealthy())
}

func TestStopIsIdempotent(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, okCheck())

	h.Start(context.Background(), 100*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestConcurrentAccess(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, brokenCheck("err"))
	h.AddReadinessCheck("sqlite", time.Second, okCheck())
	h.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx, 10*time.Millisecond)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				h.IsReady()
				getStatus(t, h.LiveEndpoint, "/livez")
				getStatus(t, h.ReadyEndpoint, "/readyz")
			}
		}()
	}
	wg.Wait()
	h.Stop()
}

func TestDatabasePingCheck(t *testing.T) {
	t.Run("nil handle fails", func(t *testing.T) {
		check := DatabasePingCheck(nil)
		assert.Error(t, check(context.Background()))
	})

	t.Run("open database passes", func(t *testing.T) {
		conn, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "health.db"))
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })

		check := DatabasePingCheck(conn)
		assert.NoError(t, check(context.Background()))
	})

	t.Run("closed database fails", func(t *testing.T) {
		conn, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "health.db"))
		require.NoError(t, err)
		require.NoError(t, conn.Close())

		check := DatabasePingCheck(conn)
		err = check(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ping database")
	})
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}
