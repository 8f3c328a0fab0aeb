package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"violation-log-service/models"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 5*time.Second, time.Minute), srv
}

func TestGetViolationsDropsBlankRows(t *testing.T) {
	payload := []models.Violation{
		{ID: "1", Description: "عامل بدون خوذة", Department: models.DepartmentProduction,
			Category: models.CategoryPPE, Severity: models.SeverityHigh},
		{ID: "2", Description: ""},
		{ID: "3", Description: "   "},
		{ID: "4", Description: "سلك مكشوف", Department: models.DepartmentMaintenance,
			Category: models.CategoryElectrical, Severity: models.SeverityCritical},
	}

	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") == "" {
			t.Error("fetch is missing the cache-busting parameter")
		}
		json.NewEncoder(w).Encode(payload)
	})
	defer srv.Close()

	got, err := client.GetViolations(context.Background(), false)
	if err != nil {
		t.Fatalf("GetViolations failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "4" {
		t.Errorf("blank rows not dropped: %+v", got)
	}
}

func TestGetViolationsKeepsRecordsWithUnknownEnumValues(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":"1","description":"x","department":"قسم قديم","category":"bogus","severity":"؟"}]`)
	})
	defer srv.Close()

	got, err := client.GetViolations(context.Background(), false)
	if err != nil {
		t.Fatalf("GetViolations failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("record with unknown enum values must be kept, got %d records", len(got))
	}
}

func TestGetViolationsTreatsNonArrayAsEmpty(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error":"sheet unavailable"}`)
	})
	defer srv.Close()

	got, err := client.GetViolations(context.Background(), false)
	if err != nil {
		t.Fatalf("non-array payload should not be an error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("non-array payload should yield an empty list, got %+v", got)
	}
}

func TestGetViolationsErrors(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		defer srv.Close()

		if _, err := client.GetViolations(context.Background(), false); err == nil {
			t.Error("expected error for non-200 status")
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html>not json</html>")
		})
		defer srv.Close()

		if _, err := client.GetViolations(context.Background(), false); err == nil {
			t.Error("expected error for undecodable body")
		}
	})
}

func TestGetViolationsUsesCacheUntilBypassed(t *testing.T) {
	hits := 0
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		hits++
		io.WriteString(w, `[{"id":"1","description":"x"}]`)
	})
	defer srv.Close()

	for i := 0; i < 3; i++ {
		if _, err := client.GetViolations(context.Background(), false); err != nil {
			t.Fatalf("GetViolations failed: %v", err)
		}
	}
	if hits != 1 {
		t.Fatalf("expected 1 endpoint hit with warm cache, got %d", hits)
	}

	if _, err := client.GetViolations(context.Background(), true); err != nil {
		t.Fatalf("bypass fetch failed: %v", err)
	}
	if hits != 2 {
		t.Errorf("bypass should hit the endpoint, got %d hits", hits)
	}
}

func TestAddViolationPayloadShape(t *testing.T) {
	var got addViolationRequest
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
	})
	defer srv.Close()

	submission := models.ViolationSubmission{
		Location:    "المستودع الشمالي",
		Department:  models.DepartmentLogistics,
		Category:    models.CategoryPPE,
		Severity:    models.SeverityHigh,
		Description: "عامل بدون خوذة",
		Reporter:    "فواز الرويلي",
		Image:       "data:image/jpeg;base64,AAAA",
	}
	if err := client.AddViolation(context.Background(), submission); err != nil {
		t.Fatalf("AddViolation failed: %v", err)
	}

	if got.Action != "ADD_VIOLATION" {
		t.Errorf("action = %q, want ADD_VIOLATION", got.Action)
	}
	if got.Data != submission {
		t.Errorf("data = %+v, want %+v", got.Data, submission)
	}
}

func TestAddCommentPayloadShape(t *testing.T) {
	var got addCommentRequest
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
	})
	defer srv.Close()

	comment := models.Comment{ID: "1700000000000", Author: "زائر المصنع", Text: "ملاحظة", Timestamp: "12:30"}
	if err := client.AddComment(context.Background(), "v-7", comment); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	if got.Action != "ADD_COMMENT" {
		t.Errorf("action = %q, want ADD_COMMENT", got.Action)
	}
	if got.ViolationID != "v-7" {
		t.Errorf("violationId = %q, want v-7", got.ViolationID)
	}
	if got.Comment != comment {
		t.Errorf("comment = %+v, want %+v", got.Comment, comment)
	}
}

func TestWriteErrorSurfaced(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	if err := client.AddViolation(context.Background(), models.ViolationSubmission{}); err == nil {
		t.Error("expected error for failed violation write")
	}
	if err := client.AddComment(context.Background(), "v-1", models.Comment{}); err == nil {
		t.Error("expected error for failed comment write")
	}
}

func TestWritesInvalidateCache(t *testing.T) {
	hits := 0
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			hits++
		}
		io.WriteString(w, `[]`)
	})
	defer srv.Close()

	client.GetViolations(context.Background(), false)
	if err := client.AddViolation(context.Background(), models.ViolationSubmission{}); err != nil {
		t.Fatalf("AddViolation failed: %v", err)
	}
	client.GetViolations(context.Background(), false)

	if hits != 2 {
		t.Errorf("a write should invalidate the cached list, got %d GET hits", hits)
	}
}
