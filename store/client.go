// Package store is the client for the record store: the spreadsheet-backed
// remote endpoint that owns all violation and comment persistence. The store
// exposes one GET returning every violation and one POST multiplexing write
// actions. There is no update or delete action; corrections happen by hand in
// the backing spreadsheet.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"violation-log-service/metrics"
	"violation-log-service/models"

	"github.com/apex/log"
	gocache "github.com/patrickmn/go-cache"
)

const (
	actionAddViolation = "ADD_VIOLATION"
	actionAddComment   = "ADD_COMMENT"

	cacheKeyViolations = "violations"
)

// Client talks to the record store endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	cache    *gocache.Cache
}

// NewClient creates a record store client. cacheTTL bounds how long a fetched
// list is reused before the endpoint is asked again; explicit refreshes bypass
// the cache.
func NewClient(endpoint string, timeout, cacheTTL time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		cache:    gocache.New(cacheTTL, 2*cacheTTL),
	}
}

type addViolationRequest struct {
	Action string                     `json:"action"`
	Data   models.ViolationSubmission `json:"data"`
}

type addCommentRequest struct {
	Action      string         `json:"action"`
	ViolationID string         `json:"violationId"`
	Comment     models.Comment `json:"comment"`
}

// GetViolations fetches the full violation list. Rows without a description
// are blank placeholders from the spreadsheet and are dropped; a non-array
// response body is treated as an empty list. bypassCache forces a round trip
// to the endpoint.
func (c *Client) GetViolations(ctx context.Context, bypassCache bool) ([]models.Violation, error) {
	if !bypassCache {
		if cached, ok := c.cache.Get(cacheKeyViolations); ok {
			return cached.([]models.Violation), nil
		}
	}

	// The cache-busting parameter mirrors what the store deployment expects
	// so intermediaries never serve a stale sheet snapshot.
	url := c.endpoint + "?t=" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.StoreFetchTotal.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("failed to fetch violations: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.StoreFetchTotal.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.StoreFetchTotal.WithLabelValues("http_error").Inc()
		return nil, fmt.Errorf("store returned status %d", resp.StatusCode)
	}

	var records []models.Violation
	if err := json.Unmarshal(body, &records); err != nil {
		// The deployment answers some error states with a non-array JSON
		// document. Treat any such payload as "no records".
		var probe any
		if jsonErr := json.Unmarshal(body, &probe); jsonErr != nil {
			metrics.StoreFetchTotal.WithLabelValues("decode_error").Inc()
			return nil, fmt.Errorf("failed to decode violations: %w", err)
		}
		log.Warn("record store returned a non-array payload, treating as empty")
		metrics.StoreFetchTotal.WithLabelValues("non_array").Inc()
		records = nil
	}

	records = sanitize(records)
	c.cache.Set(cacheKeyViolations, records, gocache.DefaultExpiration)
	metrics.StoreFetchTotal.WithLabelValues("ok").Inc()
	return records, nil
}

// AddViolation submits a new violation. The store does not describe the
// created record in its response; callers observe the write by re-fetching.
func (c *Client) AddViolation(ctx context.Context, submission models.ViolationSubmission) error {
	err := c.post(ctx, addViolationRequest{Action: actionAddViolation, Data: submission})
	if err != nil {
		metrics.StoreWriteTotal.WithLabelValues(actionAddViolation, "error").Inc()
		return err
	}
	metrics.StoreWriteTotal.WithLabelValues(actionAddViolation, "ok").Inc()
	c.Invalidate()
	return nil
}

// AddComment appends a comment to the named violation.
func (c *Client) AddComment(ctx context.Context, violationID string, comment models.Comment) error {
	err := c.post(ctx, addCommentRequest{
		Action:      actionAddComment,
		ViolationID: violationID,
		Comment:     comment,
	})
	if err != nil {
		metrics.StoreWriteTotal.WithLabelValues(actionAddComment, "error").Inc()
		return err
	}
	metrics.StoreWriteTotal.WithLabelValues(actionAddComment, "ok").Inc()
	c.Invalidate()
	return nil
}

// Invalidate drops the cached list so the next fetch hits the endpoint.
func (c *Client) Invalidate() {
	c.cache.Delete(cacheKeyViolations)
}

func (c *Client) post(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("store returned status %d", resp.StatusCode)
	}
	return nil
}

// sanitize drops blank placeholder rows and flags enum drift coming out of
// the spreadsheet. Records with unknown enum values are kept so live data is
// never hidden, but each occurrence is logged and counted.
func sanitize(records []models.Violation) []models.Violation {
	out := make([]models.Violation, 0, len(records))
	for _, v := range records {
		if isBlank(v.Description) {
			metrics.BlankRowsDropped.Inc()
			continue
		}
		if !models.ValidDepartment(v.Department) {
			metrics.EnumViolationsFlagged.WithLabelValues("department").Inc()
			log.Warnf("violation %s carries unknown department %q", v.ID, v.Department)
		}
		if !models.ValidCategory(v.Category) {
			metrics.EnumViolationsFlagged.WithLabelValues("category").Inc()
			log.Warnf("violation %s carries unknown category %q", v.ID, v.Category)
		}
		if !models.ValidSeverity(v.Severity) {
			metrics.EnumViolationsFlagged.WithLabelValues("severity").Inc()
			log.Warnf("violation %s carries unknown severity %q", v.ID, v.Severity)
		}
		out = append(out, v)
	}
	return out
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
