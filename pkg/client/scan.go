package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vexscan/vexscan-client/pkg/apierrors"
)

const scansPath = "/scans/"

// Scan is a handle to one remote scan job. It holds the identifier and the
// last-fetched status; all network activity is delegated to the owning
// Connection, which the handle references without owning.
type Scan struct {
	conn *Connection

	// ID identifies the scan on the remote service. It is -1 until the scan
	// has been started or listed.
	ID int
	// Status is the status reported when the handle was last built or
	// refreshed. Call UpdateStatus to refresh it.
	Status string
}

// ScanStatus is the status detail reported by the scan status endpoint.
type ScanStatus struct {
	Status    string  `json:"status"`
	IsPaused  bool    `json:"is_paused"`
	IsRunning bool    `json:"is_running"`
	Exception *string `json:"exception"`
}

// LogEntry is one line of the scan's log.
type LogEntry struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Message  string `json:"message"`
	Time     string `json:"time"`
	Severity string `json:"severity,omitempty"`
}

// LogPage is one page of log entries plus pagination markers.
type LogPage struct {
	Entries []LogEntry `json:"entries"`
	More    bool       `json:"more"`
	Next    int        `json:"next"`
}

// Finding is one knowledge-base entry produced by a scan.
type Finding struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	URL      string `json:"url"`
	Href     string `json:"href"`
}

type scanStartRequest struct {
	ScanProfile string   `json:"scan_profile"`
	TargetURLs  []string `json:"target_urls"`
}

// Scans lists all scans known to the remote API and returns one handle per
// entry. Each descriptor must carry an identifier and a status.
func (c *Connection) Scans(ctx context.Context) ([]*Scan, error) {
	code, doc, err := c.SendRequest(ctx, http.MethodGet, scansPath, nil)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, apierrors.ErrAPI.Msg(fmt.Sprintf("failed to retrieve scans, unexpected code %d", code))
	}
	items, err := doc.Array("items")
	if err != nil {
		return nil, apierrors.ErrAPI.MsgErr(`failed to retrieve scans, no "items" in JSON response`, err)
	}

	scans := make([]*Scan, 0, len(items))
	for _, item := range items {
		id, err := item.IntField("id")
		if err != nil {
			return nil, apierrors.ErrAPI.MsgErr(`scan descriptor has no "id" field`, err)
		}
		status, err := item.StringField("status")
		if err != nil {
			return nil, apierrors.ErrAPI.MsgErr(`scan descriptor has no "status" field`, err)
		}
		scans = append(scans, &Scan{conn: c, ID: int(id), Status: status})
	}
	return scans, nil
}

// NewScan returns an unstarted scan handle bound to this connection.
func (c *Connection) NewScan() *Scan {
	return &Scan{conn: c, ID: -1}
}

// Start launches the scan with the given profile and target URLs. On success
// the handle's ID is set to the identifier assigned by the remote service.
func (s *Scan) Start(ctx context.Context, profile string, targetURLs []string) error {
	payload := scanStartRequest{ScanProfile: profile, TargetURLs: targetURLs}
	code, doc, err := s.conn.SendRequest(ctx, http.MethodPost, scansPath, payload)
	if err != nil {
		return err
	}
	if code != http.StatusCreated {
		return apierrors.ErrAPI.Msg(fmt.Sprintf("failed to start scan, unexpected code %d", code))
	}
	id, err := doc.IntField("id")
	if err != nil {
		return apierrors.ErrAPI.MsgErr(`failed to start scan, no "id" in JSON response`, err)
	}
	s.ID = int(id)
	return nil
}

// UpdateStatus fetches the scan's status detail and refreshes the handle's
// Status field.
func (s *Scan) UpdateStatus(ctx context.Context) (*ScanStatus, error) {
	path := fmt.Sprintf("/scans/%d/status", s.ID)
	code, doc, err := s.conn.SendRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, apierrors.ErrAPI.Msg(fmt.Sprintf("failed to retrieve scan status, unexpected code %d", code))
	}
	var status ScanStatus
	if err := doc.Decode(&status); err != nil {
		return nil, apierrors.ErrAPI.MsgErr("unable to decode scan status response", err)
	}
	s.Status = status.Status
	return &status, nil
}

// Pause asks the remote service to pause the scan.
func (s *Scan) Pause(ctx context.Context) error {
	return s.action(ctx, "pause")
}

// Stop asks the remote service to stop the scan.
func (s *Scan) Stop(ctx context.Context) error {
	return s.action(ctx, "stop")
}

func (s *Scan) action(ctx context.Context, verb string) error {
	path := fmt.Sprintf("/scans/%d/%s", s.ID, verb)
	code, _, err := s.conn.SendRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return apierrors.ErrAPI.Msg(fmt.Sprintf("failed to %s scan %d, unexpected code %d", verb, s.ID, code))
	}
	return nil
}

// Delete removes the scan from the remote service.
func (s *Scan) Delete(ctx context.Context) error {
	path := fmt.Sprintf("/scans/%d", s.ID)
	code, _, err := s.conn.SendRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return apierrors.ErrAPI.Msg(fmt.Sprintf("failed to delete scan %d, unexpected code %d", s.ID, code))
	}
	return nil
}

// Log fetches one page of the scan log. Pages start at zero; the returned
// page's More and Next fields drive pagination.
func (s *Scan) Log(ctx context.Context, page int) (*LogPage, error) {
	path := fmt.Sprintf("/scans/%d/log?page=%d", s.ID, page)
	code, doc, err := s.conn.SendRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, apierrors.ErrAPI.Msg(fmt.Sprintf("failed to retrieve scan log, unexpected code %d", code))
	}
	if !doc.Has("entries") {
		return nil, apierrors.ErrAPI.Msg(`failed to retrieve scan log, no "entries" in JSON response`)
	}
	var logPage LogPage
	if err := doc.Decode(&logPage); err != nil {
		return nil, apierrors.ErrAPI.MsgErr("unable to decode scan log response", err)
	}
	return &logPage, nil
}

// Findings lists the knowledge-base entries recorded for the scan.
func (s *Scan) Findings(ctx context.Context) ([]Finding, error) {
	path := fmt.Sprintf("/scans/%d/kb/", s.ID)
	code, doc, err := s.conn.SendRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, apierrors.ErrAPI.Msg(fmt.Sprintf("failed to retrieve findings, unexpected code %d", code))
	}
	if !doc.Has("items") {
		return nil, apierrors.ErrAPI.Msg(`failed to retrieve findings, no "items" in JSON response`)
	}
	var out struct {
		Items []Finding `json:"items"`
	}
	if err := doc.Decode(&out); err != nil {
		return nil, apierrors.ErrAPI.MsgErr("unable to decode findings response", err)
	}
	return out.Items, nil
}
