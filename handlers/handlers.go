package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"violation-log-service/auth"
	"violation-log-service/export"
	"violation-log-service/feed"
	"violation-log-service/inference"
	"violation-log-service/metrics"
	"violation-log-service/middleware"
	"violation-log-service/models"
	"violation-log-service/store"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// recordDateLayout is how the service stamps new violations, matching the
// day/month/year layout the feed parser expects.
const recordDateLayout = "02/01/2006, 15:04"

// boundDateLayout is the wire format of date-range bounds (HTML date inputs).
const boundDateLayout = "2006-01-02"

// Handlers carries the service dependencies and the per-session feed
// controllers. Controllers are created lazily on first feed access and
// dropped on logout.
type Handlers struct {
	auth     *auth.Service
	store    *store.Client
	analyzer inference.Client

	mu       sync.Mutex
	sessions map[string]*feed.Controller
}

// NewHandlers creates a new handlers instance.
func NewHandlers(authService *auth.Service, storeClient *store.Client, analyzer inference.Client) *Handlers {
	return &Handlers{
		auth:     authService,
		store:    storeClient,
		analyzer: analyzer,
		sessions: make(map[string]*feed.Controller),
	}
}

type loginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

type searchRequest struct {
	Term string `json:"term"`
}

type filtersRequest struct {
	Department string `json:"department"`
	Category   string `json:"category"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
}

type sortRequest struct {
	Direction string `json:"direction"`
}

type viewRequest struct {
	View string `json:"view" binding:"required"`
}

type submitViolationRequest struct {
	Location    string `json:"location" binding:"required"`
	Department  string `json:"department" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Severity    string `json:"severity" binding:"required"`
	Description string `json:"description" binding:"required"`
	Image       string `json:"image" binding:"required"`
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

type analyzeRequest struct {
	Image       string `json:"image" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type feedResponse struct {
	View         feed.View          `json:"view"`
	Records      []models.Violation `json:"records"`
	VisibleCount int                `json:"visibleCount"`
	Matched      int                `json:"matched"`
	Total        int                `json:"total"`
	HasMore      bool               `json:"hasMore"`
	EndOfResults bool               `json:"endOfResults"`
	Direction    feed.Direction     `json:"direction"`
}

// Login authenticates a safety user against the fixed credential list.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	token, session, err := h.auth.Login(req.Name, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownUser) || errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to log in"})
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, Role: session.Role, Name: session.Name})
}

// GuestLogin opens a read-and-comment session.
func (h *Handlers) GuestLogin(c *gin.Context) {
	token, session, err := h.auth.GuestLogin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to log in"})
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token, Role: session.Role, Name: session.Name})
}

// Logout drops the session's feed controller. The client discards its token.
func (h *Handlers) Logout(c *gin.Context) {
	session := middleware.SessionFrom(c)
	h.mu.Lock()
	delete(h.sessions, session.ID)
	h.mu.Unlock()
	c.JSON(http.StatusOK, models.MessageResponse{Message: "logged out"})
}

// GetFeed returns the current window over the filtered, sorted record list.
func (h *Handlers) GetFeed(c *gin.Context) {
	h.withController(c, func(ctrl *feed.Controller) {
		c.JSON(http.StatusOK, h.feedState(ctrl))
	})
}

// RefreshFeed reloads the raw list from the record store. A reload that was
// superseded by a newer one while in flight is discarded. Read failures
// degrade to an empty list, indistinguishable from "no records exist".
func (h *Handlers) RefreshFeed(c *gin.Context) {
	session := middleware.SessionFrom(c)
	ctrl := h.controller(session)

	h.mu.Lock()
	gen := ctrl.BeginLoad()
	h.mu.Unlock()

	records, err := h.store.GetViolations(c.Request.Context(), true)
	if err != nil {
		log.Errorf("failed to fetch violations: %v", err)
		records = nil
	}

	h.mu.Lock()
	applied := ctrl.ApplyRecords(gen, records)
	resp := h.feedState(ctrl)
	h.mu.Unlock()

	if !applied {
		log.Info("discarded stale violation reload")
	}
	c.JSON(http.StatusOK, resp)
}

// SetSearch updates the text search term. Any change restarts pagination.
func (h *Handlers) SetSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	h.withController(c, func(ctrl *feed.Controller) {
		ctrl.SetSearch(req.Term)
		c.JSON(http.StatusOK, h.feedState(ctrl))
	})
}

// SetFilters updates the categorical and date-range filters. Department and
// category accept "all" (or empty) to disable; dates are YYYY-MM-DD.
func (h *Handlers) SetFilters(c *gin.Context) {
	var req filtersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if req.Department != "" && req.Department != models.FilterAll &&
		!models.ValidDepartment(models.Department(req.Department)) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown department"})
		return
	}
	if req.Category != "" && req.Category != models.FilterAll &&
		!models.ValidCategory(models.Category(req.Category)) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown category"})
		return
	}

	start, err := parseBound(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid start date"})
		return
	}
	end, err := parseBound(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid end date"})
		return
	}

	h.withController(c, func(ctrl *feed.Controller) {
		ctrl.SetDepartment(req.Department)
		ctrl.SetCategory(req.Category)
		ctrl.SetDateRange(start, end)
		c.JSON(http.StatusOK, h.feedState(ctrl))
	})
}

// SetSort changes the sort direction without disturbing the window.
func (h *Handlers) SetSort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	h.withController(c, func(ctrl *feed.Controller) {
		ctrl.SetDirection(feed.ParseDirection(req.Direction))
		c.JSON(http.StatusOK, h.feedState(ctrl))
	})
}

// LoadMore grows the window by one page.
func (h *Handlers) LoadMore(c *gin.Context) {
	h.withController(c, func(ctrl *feed.Controller) {
		ctrl.LoadMore()
		c.JSON(http.StatusOK, h.feedState(ctrl))
	})
}

// ResetFeed shrinks the window back to the first page.
func (h *Handlers) ResetFeed(c *gin.Context) {
	h.withController(c, func(ctrl *feed.Controller) {
		ctrl.ResetWindow()
		c.JSON(http.StatusOK, h.feedState(ctrl))
	})
}

// SetView switches the session between feed, report form and dashboard.
func (h *Handlers) SetView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if !feed.ValidView(feed.View(req.View)) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown view"})
		return
	}
	h.withController(c, func(ctrl *feed.Controller) {
		ctrl.SetView(feed.View(req.View))
		c.JSON(http.StatusOK, gin.H{"view": ctrl.ActiveView()})
	})
}

// SelectViolation opens a record for detail viewing.
func (h *Handlers) SelectViolation(c *gin.Context) {
	id := c.Param("id")
	h.withController(c, func(ctrl *feed.Controller) {
		if !ctrl.Select(id) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "violation not found"})
			return
		}
		v, _ := ctrl.Selected()
		c.JSON(http.StatusOK, v)
	})
}

// GetSelected returns the record currently open for detail viewing.
func (h *Handlers) GetSelected(c *gin.Context) {
	h.withController(c, func(ctrl *feed.Controller) {
		v, ok := ctrl.Selected()
		if !ok {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no violation selected"})
			return
		}
		c.JSON(http.StatusOK, v)
	})
}

// ClearSelected closes the detail view.
func (h *Handlers) ClearSelected(c *gin.Context) {
	h.withController(c, func(ctrl *feed.Controller) {
		ctrl.ClearSelection()
		c.JSON(http.StatusOK, models.MessageResponse{Message: "selection cleared"})
	})
}

// SubmitViolation creates a new record against the store. The store does not
// return the created record; the caller refreshes the feed to observe it.
func (h *Handlers) SubmitViolation(c *gin.Context) {
	var req submitViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	department := models.Department(req.Department)
	category := models.Category(req.Category)
	severity := models.Severity(req.Severity)
	if !models.ValidDepartment(department) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown department"})
		return
	}
	if !models.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown category"})
		return
	}
	if !models.ValidSeverity(severity) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown severity"})
		return
	}

	session := middleware.SessionFrom(c)
	submission := models.ViolationSubmission{
		Location:    req.Location,
		Department:  department,
		Category:    category,
		Severity:    severity,
		Description: req.Description,
		Reporter:    session.Name,
		Image:       req.Image,
	}

	if err := h.store.AddViolation(c.Request.Context(), submission); err != nil {
		log.Errorf("failed to save violation: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to save the violation"})
		return
	}

	c.JSON(http.StatusAccepted, models.MessageResponse{Message: "violation submitted, refresh the feed to see it"})
}

// AddComment appends a comment to a violation. The local list is updated
// optimistically; the store write is fire-and-forget and its failure is
// logged, never surfaced (the next reload reconciles).
func (h *Handlers) AddComment(c *gin.Context) {
	id := c.Param("id")
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	session := middleware.SessionFrom(c)
	now := time.Now()
	comment := models.Comment{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Author:    session.Name,
		Text:      req.Text,
		Timestamp: now.Format("15:04"),
	}

	ctrl := h.controller(session)
	h.mu.Lock()
	appended := ctrl.AppendComment(id, comment)
	h.mu.Unlock()
	if !appended {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "violation not found"})
		return
	}

	// Fire-and-forget against the store; the next reload reconciles.
	if err := h.store.AddComment(c.Request.Context(), id, comment); err != nil {
		log.Errorf("failed to persist comment on violation %s: %v", id, err)
	}

	c.JSON(http.StatusCreated, comment)
}

// Analyze runs the inference provider over a photo and description and
// returns a validated suggestion. Out-of-enum model output is rejected here,
// never forwarded.
func (h *Handlers) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	imageData, err := decodeImage(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid image payload"})
		return
	}

	raw, err := h.analyzer.AnalyzeViolation(c.Request.Context(), imageData, req.Description)
	if err != nil {
		metrics.AnalyzeTotal.WithLabelValues("provider_error").Inc()
		log.Errorf("%s analysis failed: %v", h.analyzer.SourceName(), err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "analysis failed"})
		return
	}

	suggestion, err := inference.ParseSuggestion(raw)
	if err != nil {
		metrics.AnalyzeTotal.WithLabelValues("invalid_suggestion").Inc()
		log.Errorf("%s returned an unusable suggestion: %v", h.analyzer.SourceName(), err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "analysis returned an unusable suggestion"})
		return
	}

	metrics.AnalyzeTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, suggestion)
}

// GetStats summarizes the session's loaded record list.
func (h *Handlers) GetStats(c *gin.Context) {
	h.withController(c, func(ctrl *feed.Controller) {
		c.JSON(http.StatusOK, ctrl.Stats())
	})
}

// ExportExcel streams a workbook of the full record list, or of the records
// within ?start=&end= (both YYYY-MM-DD, both required together).
func (h *Handlers) ExportExcel(c *gin.Context) {
	startStr := c.Query("start")
	endStr := c.Query("end")
	if (startStr == "") != (endStr == "") {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "start and end must be provided together"})
		return
	}

	records, err := h.store.GetViolations(c.Request.Context(), false)
	if err != nil {
		log.Errorf("failed to fetch violations for export: %v", err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "failed to fetch violations"})
		return
	}

	filename := "Safety_Report.xlsx"
	if startStr != "" {
		start, err := time.Parse(boundDateLayout, startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid start date"})
			return
		}
		end, err := time.Parse(boundDateLayout, endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid end date"})
			return
		}
		records = export.FilterByPeriod(records, start, end)
		filename = fmt.Sprintf("Safety_Report_%s_%s.xlsx", startStr, endStr)
	}

	if len(records) == 0 {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no records in this period"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := export.WriteExcel(records, c.Writer); err != nil {
		log.Errorf("failed to write workbook: %v", err)
	}
}

// ExportReport renders the printable document for one violation.
func (h *Handlers) ExportReport(c *gin.Context) {
	id := c.Param("id")

	records, err := h.store.GetViolations(c.Request.Context(), false)
	if err != nil {
		log.Errorf("failed to fetch violations for report: %v", err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "failed to fetch violations"})
		return
	}

	for _, v := range records {
		if v.ID == id {
			c.Header("Content-Type", "text/html; charset=utf-8")
			if err := export.WriteReportDocument(v, c.Writer); err != nil {
				log.Errorf("failed to render report for violation %s: %v", id, err)
			}
			return
		}
	}
	c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "violation not found"})
}

// HealthCheck returns the service health status.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "violation-log-service",
	})
}

// controller returns the session's feed controller, creating it on demand.
func (h *Handlers) controller(session *auth.Session) *feed.Controller {
	h.mu.Lock()
	defer h.mu.Unlock()
	ctrl, ok := h.sessions[session.ID]
	if !ok {
		ctrl = feed.NewController()
		h.sessions[session.ID] = ctrl
	}
	return ctrl
}

// withController runs fn with the session controller held under the registry
// lock. All feed mutations go through here so the controller never needs its
// own locking.
func (h *Handlers) withController(c *gin.Context, fn func(*feed.Controller)) {
	session := middleware.SessionFrom(c)
	ctrl := h.controller(session)
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(ctrl)
}

func (h *Handlers) feedState(ctrl *feed.Controller) feedResponse {
	visible := ctrl.Visible()
	matched := ctrl.Matched()
	return feedResponse{
		View:         ctrl.ActiveView(),
		Records:      visible,
		VisibleCount: len(visible),
		Matched:      matched,
		Total:        len(ctrl.Records()),
		HasMore:      ctrl.HasMore(),
		EndOfResults: !ctrl.HasMore() && matched > 0,
		Direction:    ctrl.Direction(),
	}
}

func parseBound(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(boundDateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// decodeImage accepts either a bare base64 string or a data URL and returns
// the raw image bytes.
func decodeImage(payload string) ([]byte, error) {
	if i := strings.IndexByte(payload, ','); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	return data, nil
}
