package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/ssargent/axlframe/pkg/codec"
	"github.com/ssargent/axlframe/pkg/collection"
	"github.com/ssargent/axlframe/pkg/metrics"
	"github.com/ssargent/axlframe/pkg/storage"
)

type testEnv struct {
	handler http.Handler
	archive *storage.Archive
	metrics *metrics.Metrics
}

func setupTestServer(t *testing.T, config ServerConfig) *testEnv {
	t.Helper()
	archive, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })

	m := metrics.NewMetrics()
	builder := collection.NewBuilder(collection.Config{Logf: func(string, ...any) {}, Observer: m})
	server := NewServer(archive, builder, config, NewHTTPMetrics(m.Registry()), m)

	return &testEnv{
		handler: NewRouter(server, m.Handler()),
		archive: archive,
		metrics: m,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte, header map[string]string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)

	var resp APIResponse
	if w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// collectionBytes builds n frame slots, with the slots listed in bad zeroed
// out, followed by extra trailing bytes.
func collectionBytes(t *testing.T, n int, bad map[int]bool, extra int) []byte {
	t.Helper()
	c := codec.NewPacketCodec()
	var buf []byte
	for i := 0; i < n; i++ {
		if bad[i] {
			buf = append(buf, bytes.Repeat([]byte{0xFF}, codec.FrameSize)...)
			continue
		}
		p, err := codec.NewPacket(int64(1000+i), uint16(i), 42, 10, 60, 52, []float16.Float16{
			float16.Fromfloat32(0.5), float16.Fromfloat32(-0.5), float16.Fromfloat32(1),
		})
		require.NoError(t, err)
		slot, err := c.EncodeFrame(p)
		require.NoError(t, err)
		buf = append(buf, slot...)
	}
	return append(buf, make([]byte, extra)...)
}

func decodeData(t *testing.T, resp APIResponse, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestServer_Health(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})

	w, resp := env.do(t, "GET", "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	var health map[string]interface{}
	decodeData(t, resp, &health)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, float64(0), health["packets"])
}

func TestServer_ImportListGetDelete(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})

	w, resp := env.do(t, "POST", "/api/v1/collections", collectionBytes(t, 4, map[int]bool{1: true}, 7), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var imported ImportResponse
	decodeData(t, resp, &imported)
	assert.Equal(t, 4, imported.Frames)
	assert.Equal(t, 3, imported.Decoded)
	assert.Equal(t, 7, imported.RemainderBytes)
	require.Len(t, imported.Dropped, 1)
	assert.Equal(t, 1, imported.Dropped[0].Index)
	assert.Equal(t, int64(codec.FrameSize), imported.Dropped[0].Offset)
	require.Len(t, imported.IDs, 3)

	t.Run("list", func(t *testing.T) {
		w, resp := env.do(t, "GET", "/api/v1/packets", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var views []PacketView
		decodeData(t, resp, &views)
		require.Len(t, views, 3)
		assert.Equal(t, imported.IDs[0], views[0].ID)
		assert.Equal(t, int64(1000), views[0].Timestamp)
		assert.Equal(t, int64(1002), views[1].Timestamp)
		assert.Equal(t, 3, views[0].Samples)
		assert.Nil(t, views[0].Data)

		w, resp = env.do(t, "GET", "/api/v1/packets?limit=2", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		decodeData(t, resp, &views)
		assert.Len(t, views, 2)

		w, _ = env.do(t, "GET", "/api/v1/packets?limit=zero", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		w, resp := env.do(t, "GET", "/api/v1/packets/"+imported.IDs[2]+"?data=true", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var view PacketView
		decodeData(t, resp, &view)
		assert.Equal(t, int64(1003), view.Timestamp)
		assert.Equal(t, []float32{0.5, -0.5, 1}, view.Data)
		require.NotNil(t, view.Stats)
		assert.Equal(t, 3, view.Stats.Count)
		assert.Equal(t, [3]float64{0.5, -0.5, 1}, view.Stats.Axes)

		w, _ = env.do(t, "GET", "/api/v1/packets/"+ksuid.New().String(), nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w, _ = env.do(t, "GET", "/api/v1/packets/bogus", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w, _ := env.do(t, "DELETE", "/api/v1/packets/"+imported.IDs[0], nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, _ = env.do(t, "DELETE", "/api/v1/packets/"+imported.IDs[0], nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		n, err := env.archive.Count()
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `axl_http_requests_total{endpoint="/api/v1/collections",method="POST",status_code="201"} 1`)
		assert.Contains(t, body, `axl_frame_errors_total{reason="framing"} 1`)
		assert.Contains(t, body, `axl_archive_operations_total{operation="put",status="success"} 1`)
	})
}

func TestServer_ImportTooLarge(t *testing.T) {
	env := setupTestServer(t, ServerConfig{MaxUploadBytes: 1024})

	w, resp := env.do(t, "POST", "/api/v1/collections", collectionBytes(t, 1, nil, 0), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, resp.Success)

	n, err := env.archive.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestServer_APIKey(t *testing.T) {
	env := setupTestServer(t, ServerConfig{APIKey: "secret"})

	testCases := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"valid key", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := env.do(t, "GET", "/api/v1/health", nil, tc.header)
			assert.Equal(t, tc.want, w.Code)
		})
	}

	t.Run("metrics stay open", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `axl_auth_requests_total{status="error"} 1`)
	})
}

func TestListenAndServe_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ListenAndServe(ctx, "127.0.0.1:0", http.NotFoundHandler())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
