package partner

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ForwardPassesThroughStatusAndBody(t *testing.T) {
	var (
		gotMethod  string
		gotPath    string
		gotHeaders http.Header
		gotBody    []byte
	)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.RequestURI()
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Partner-Trace", "abc")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"already revoked"}`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, 5*time.Second)
	defer client.Close()

	resp := client.Forward(context.Background(), ForwardRequest{
		Method:        http.MethodPatch,
		URL:           upstream.URL + "/reports/r1/revoke-admin?x=1",
		Authorization: "Bearer token-1",
		Body:          []byte(`{"initiatorName":"Admin"}`),
	})

	require.NoError(t, resp.Err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.JSONEq(t, `{"error":"already revoked"}`, string(resp.Body))
	assert.Equal(t, "abc", resp.Header.Get("X-Partner-Trace"))
	assert.False(t, resp.IsSuccess())

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/reports/r1/revoke-admin?x=1", gotPath)
	assert.Equal(t, "Bearer token-1", gotHeaders.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, BypassHeaderValue, gotHeaders.Get(BypassHeaderKey))
	assert.JSONEq(t, `{"initiatorName":"Admin"}`, string(gotBody))
}

func TestClient_ForwardKeepsContentType(t *testing.T) {
	var contentType string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, 5*time.Second)
	resp := client.Forward(context.Background(), ForwardRequest{
		Method:      http.MethodPost,
		URL:         upstream.URL + "/reports",
		ContentType: "text/plain",
		Body:        []byte("hello"),
	})

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "text/plain", contentType)
	assert.True(t, resp.IsSuccess())
}

func TestClient_ForwardNetworkFailureIsBadGateway(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := upstream.URL
	upstream.Close()

	client := NewClient(deadURL, time.Second)
	resp := client.Forward(context.Background(), ForwardRequest{
		Method: http.MethodGet,
		URL:    deadURL + "/reports",
	})

	require.Error(t, resp.Err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(resp.Body, &payload))
	assert.Equal(t, "Bad Gateway", payload["error"])
	assert.NotEmpty(t, payload["details"])
}

func TestClient_GetReport(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/reports/r1":
			assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"data":{"_id":"r1","displayId":"C-0001","isAnonymous":false,"adminId":"u9","status":"Open","user":{"email":"s@uni.edu"}}}`))
		case "/api/reports/broken":
			_, _ = w.Write([]byte(`<html>tunnel</html>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL+"/api/", 5*time.Second)

	report, err := client.GetReport(context.Background(), "r1", "Bearer t")
	require.NoError(t, err)
	assert.Equal(t, "r1", report.ID)
	assert.Equal(t, "C-0001", report.DisplayID)
	assert.Equal(t, "u9", report.AdminID)
	assert.Equal(t, "s@uni.edu", report.StudentEmail)

	_, err = client.GetReport(context.Background(), "missing", "Bearer t")
	require.ErrorIs(t, err, ErrReportUnavailable)

	_, err = client.GetReport(context.Background(), "broken", "Bearer t")
	require.ErrorIs(t, err, ErrReportUnavailable)
}

func TestPassthroughHeaders(t *testing.T) {
	in := http.Header{}
	in.Set("Content-Type", "application/json")
	in.Set("Content-Length", "42")
	in.Set("Content-Encoding", "gzip")
	in.Set("Connection", "keep-alive")
	in.Set("Access-Control-Allow-Origin", "*")
	in.Add("Set-Cookie", "a=1")
	in.Add("Set-Cookie", "b=2")

	out := PassthroughHeaders(in)

	assert.Equal(t, "application/json", out.Get("Content-Type"))
	assert.Equal(t, []string{"a=1", "b=2"}, out.Values("Set-Cookie"))
	assert.Empty(t, out.Get("Content-Length"))
	assert.Empty(t, out.Get("Content-Encoding"))
	assert.Empty(t, out.Get("Connection"))
	assert.Empty(t, out.Get("Access-Control-Allow-Origin"))
}
