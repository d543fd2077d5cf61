package detector

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteDetectParsesResults(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/detect", r.URL.Path)

		var req detectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, base64.StdEncoding.EncodeToString(jpeg), req.Image)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(detectResponse{
			Success: true,
			Results: []wireResult{
				{Name: "person", Confidence: 0.92, X1: 100, Y1: 100, X2: 400, Y2: 400},
				{Name: "dog", Confidence: 0.61, X1: 10, Y1: 20, X2: 60, Y2: 90},
			},
		})
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL, time.Second)
	candidates, err := remote.Detect(context.Background(), jpeg)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "person", candidates[0].Label)
	assert.InDelta(t, 0.92, candidates[0].Confidence, 0.0001)
	assert.Equal(t, 100, candidates[0].X1)
	assert.Equal(t, 400, candidates[0].X2)
	assert.Equal(t, "dog", candidates[1].Label)
}

func TestRemoteDetectServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL, time.Second)
	_, err := remote.Detect(context.Background(), []byte{0x01})
	assert.Error(t, err)
}

func TestRemoteDetectInferenceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(detectResponse{Success: false, Error: "model not loaded"})
	}))
	defer srv.Close()

	remote := NewRemote(srv.URL, time.Second)
	_, err := remote.Detect(context.Background(), []byte{0x01})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestRemoteDetectUnreachable(t *testing.T) {
	remote := NewRemote("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := remote.Detect(context.Background(), []byte{0x01})
	assert.Error(t, err)
}
