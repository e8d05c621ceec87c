package client

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"

	"github.com/vexscan/vexscan-client/pkg/apierrors"
)

func TestScans(t *testing.T) {
	srv := newAPIServer(t, func(r chi.Router) {
		r.Get("/scans/", writeJSON(http.StatusOK, `{"items": [{"id": 1, "status": "Running"}]}`))
	})
	conn, err := NewConnection(context.Background(), srv.URL)
	require.NoError(t, err)

	scans, err := conn.Scans(context.Background())
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, 1, scans[0].ID)
	assert.Equal(t, "Running", scans[0].Status)
}

func TestScansErrors(t *testing.T) {
	t.Run("MissingItems", func(t *testing.T) {
		srv := newAPIServer(t, func(r chi.Router) {
			r.Get("/scans/", writeJSON(http.StatusOK, `{"scans": []}`))
		})
		conn, err := NewConnection(context.Background(), srv.URL)
		require.NoError(t, err)

		scans, err := conn.Scans(context.Background())
		require.Error(t, err)
		assert.Nil(t, scans)
		assert.ErrorIs(t, err, apierrors.ErrAPI)
		assert.Contains(t, err.Error(), `"items"`)
	})

	t.Run("DescriptorMissingID", func(t *testing.T) {
		srv := newAPIServer(t, func(r chi.Router) {
			r.Get("/scans/", writeJSON(http.StatusOK, `{"items": [{"status": "Stopped"}]}`))
		})
		conn, err := NewConnection(context.Background(), srv.URL)
		require.NoError(t, err)

		_, err = conn.Scans(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, apierrors.ErrAPI)
	})

	t.Run("UnexpectedStatus", func(t *testing.T) {
		srv := newAPIServer(t, func(r chi.Router) {
			r.Get("/scans/", writeJSON(http.StatusInternalServerError, `{"error": "boom"}`))
		})
		conn, err := NewConnection(context.Background(), srv.URL)
		require.NoError(t, err)

		_, err = conn.Scans(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, apierrors.ErrAPI)
		assert.Contains(t, err.Error(), "500")
	})
}

func TestScanLifecycle(t *testing.T) {
	var startBody []byte
	srv := newAPIServer(t, func(r chi.Router) {
		r.Post("/scans/", func(w http.ResponseWriter, req *http.Request) {
			startBody, _ = io.ReadAll(req.Body)
			writeJSON(http.StatusCreated, `{"id": 2}`)(w, req)
		})
		r.Get("/scans/2/status", writeJSON(http.StatusOK,
			`{"status": "Running", "is_paused": false, "is_running": true, "exception": null}`))
		r.Get("/scans/2/pause", writeJSON(http.StatusOK, `{"message": "Success"}`))
		r.Get("/scans/2/stop", writeJSON(http.StatusOK, `{"message": "Success"}`))
		r.Delete("/scans/2", writeJSON(http.StatusOK, `{"message": "Success"}`))
	})
	conn, err := NewConnection(context.Background(), srv.URL)
	require.NoError(t, err)

	scan := conn.NewScan()
	assert.Equal(t, -1, scan.ID)

	err = scan.Start(context.Background(), "full_audit", []string{"https://target.example"})
	require.NoError(t, err)
	assert.Equal(t, 2, scan.ID)

	var got scanStartRequest
	require.NoError(t, json.Unmarshal(startBody, &got))
	assert.Equal(t, "full_audit", got.ScanProfile)
	assert.Equal(t, []string{"https://target.example"}, got.TargetURLs)

	status, err := scan.UpdateStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Running", scan.Status)
	assert.True(t, status.IsRunning)
	assert.False(t, status.IsPaused)
	assert.Nil(t, status.Exception)

	require.NoError(t, scan.Pause(context.Background()))
	require.NoError(t, scan.Stop(context.Background()))
	require.NoError(t, scan.Delete(context.Background()))
}

func TestScanStartRejected(t *testing.T) {
	srv := newAPIServer(t, func(r chi.Router) {
		r.Post("/scans/", writeJSON(http.StatusBadRequest, `{"message": "scan profile is empty"}`))
	})
	conn, err := NewConnection(context.Background(), srv.URL)
	require.NoError(t, err)

	scan := conn.NewScan()
	err = scan.Start(context.Background(), "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrBadRequest)
	assert.Equal(t, "scan profile is empty", err.Error())
	assert.Equal(t, -1, scan.ID)
}

func TestScanLog(t *testing.T) {
	entry := `{"id": 0, "type": "debug", "message": "Starting the scan", "time": "23-Jun-2015 16:21", "severity": null}`

	page0 := `{"entries": [], "more": true, "next": 1}`
	page0, err := sjson.SetRaw(page0, "entries.-1", entry)
	require.NoError(t, err)
	second, err := sjson.SetRaw(entry, "message", `"Found 1 URLs"`)
	require.NoError(t, err)
	second, err = sjson.SetRaw(second, "id", "1")
	require.NoError(t, err)
	page0, err = sjson.SetRaw(page0, "entries.-1", second)
	require.NoError(t, err)

	page1 := `{"entries": [{"id": 2, "type": "vulnerability", "message": "SQL injection found", "time": "23-Jun-2015 16:25", "severity": "High"}], "more": false, "next": 0}`

	srv := newAPIServer(t, func(r chi.Router) {
		r.Get("/scans/1/log", func(w http.ResponseWriter, req *http.Request) {
			page := req.URL.Query().Get("page")
			if page == "0" || page == "" {
				writeJSON(http.StatusOK, page0)(w, req)
				return
			}
			writeJSON(http.StatusOK, page1)(w, req)
		})
		r.Get("/scans/", writeJSON(http.StatusOK, `{"items": [{"id": 1, "status": "Running"}]}`))
	})
	conn, err := NewConnection(context.Background(), srv.URL)
	require.NoError(t, err)

	scans, err := conn.Scans(context.Background())
	require.NoError(t, err)
	require.Len(t, scans, 1)
	scan := scans[0]

	first, err := scan.Log(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	assert.Equal(t, "Starting the scan", first.Entries[0].Message)
	assert.True(t, first.More)
	assert.Equal(t, 1, first.Next)

	next, err := scan.Log(context.Background(), first.Next)
	require.NoError(t, err)
	require.Len(t, next.Entries, 1)
	assert.Equal(t, "vulnerability", next.Entries[0].Type)
	assert.Equal(t, "High", next.Entries[0].Severity)
	assert.False(t, next.More)
}

func TestScanLogMissingEntries(t *testing.T) {
	srv := newAPIServer(t, func(r chi.Router) {
		r.Get("/scans/1/log", writeJSON(http.StatusOK, `{"lines": []}`))
		r.Get("/scans/", writeJSON(http.StatusOK, `{"items": [{"id": 1, "status": "Running"}]}`))
	})
	conn, err := NewConnection(context.Background(), srv.URL)
	require.NoError(t, err)

	scans, err := conn.Scans(context.Background())
	require.NoError(t, err)

	_, err = scans[0].Log(context.Background(), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrAPI)
	assert.Contains(t, err.Error(), `"entries"`)
}

func TestScanFindings(t *testing.T) {
	srv := newAPIServer(t, func(r chi.Router) {
		r.Get("/scans/", writeJSON(http.StatusOK, `{"items": [{"id": 1, "status": "Stopped"}]}`))
		r.Get("/scans/1/kb/", writeJSON(http.StatusOK,
			`{"items": [
				{"id": 0, "name": "SQL injection", "severity": "High", "url": "https://target.example/login", "href": "/scans/1/kb/0"},
				{"id": 1, "name": "Cross site scripting", "severity": "Medium", "url": "https://target.example/search", "href": "/scans/1/kb/1"}
			]}`))
	})
	conn, err := NewConnection(context.Background(), srv.URL)
	require.NoError(t, err)

	scans, err := conn.Scans(context.Background())
	require.NoError(t, err)
	require.Len(t, scans, 1)

	findings, err := scans[0].Findings(context.Background())
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "SQL injection", findings[0].Name)
	assert.Equal(t, "High", findings[0].Severity)
	assert.Equal(t, "/scans/1/kb/1", findings[1].Href)
}

func TestScanNotFound(t *testing.T) {
	srv := newAPIServer(t, func(r chi.Router) {
		r.Get("/scans/{id}/status", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			if _, err := strconv.Atoi(id); err != nil {
				writeJSON(http.StatusBadRequest, `{"message": "invalid scan id"}`)(w, req)
				return
			}
			writeJSON(http.StatusNotFound, `{"message": "Scan not found"}`)(w, req)
		})
	})
	conn, err := NewConnection(context.Background(), srv.URL)
	require.NoError(t, err)

	scan := conn.NewScan()
	scan.ID = 42
	_, err = scan.UpdateStatus(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrNotFound)
	assert.Equal(t, "Scan not found", err.Error())
}
