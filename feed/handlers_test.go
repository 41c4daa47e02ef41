package feed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"evfeed/eb"
	"evfeed/models"

	"github.com/julienschmidt/httprouter"
)

func upstreamWithEvents(t *testing.T) *httptest.Server {
	t.Helper()

	start := time.Now().UTC().Add(time.Hour)
	body := fmt.Sprintf(`{
		"pagination": {"page_number": 1, "page_count": 1},
		"events": [{
			"id": "901",
			"name": {"text": "Launch Party"},
			"description": {"text": "Come celebrate."},
			"created": "2025-01-01T00:00:00Z",
			"start": {"local": %q, "utc": %q},
			"end": {"local": %q, "utc": %q},
			"listed": true,
			"online_event": true,
			"ticket_classes": [{
				"name": "General Admission",
				"cost": {"currency": "USD", "value": 1000, "major_value": "10.00"},
				"on_sale_status": "AVAILABLE"
			}]
		}]
	}`,
		start.Format(models.LocalLayout), start.Format(models.UTCLayout),
		start.Add(2*time.Hour).Format(models.LocalLayout), start.Add(2*time.Hour).Format(models.UTCLayout),
	)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
}

func testHandler(upstreamURL string) *Handler {
	client := eb.NewClient(upstreamURL, "v3", "default-token", 5*time.Second)
	return NewHandler(client, Options{}, time.Minute)
}

func TestServeFeedJSON(t *testing.T) {
	upstream := upstreamWithEvents(t)
	defer upstream.Close()

	router := httprouter.New()
	router.GET("/api/feed/:orgid", testHandler(upstream.URL).ServeFeedJSON)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/feed/org-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("response is not a feed result: %v", err)
	}
	if res.Shown != 1 {
		t.Fatalf("expected 1 card, got %d", res.Shown)
	}
	if !strings.Contains(res.HTML, `id="901"`) {
		t.Fatalf("expected the event card in the payload")
	}
}

func TestServeFeedJSONUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	router := httprouter.New()
	router.GET("/api/feed/:orgid", testHandler(upstream.URL).ServeFeedJSON)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/feed/org-1", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on upstream failure, got %d", rec.Code)
	}
}

func TestServeFeedPageFailureShowsPlaceholder(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	router := httprouter.New()
	router.GET("/feed/:orgid", testHandler(upstream.URL).ServeFeedPage)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed/org-1", nil))

	// The reader gets the placeholder page, never a raw error.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no upcoming events") {
		t.Fatalf("expected the placeholder page, got:\n%s", rec.Body.String())
	}
}

func TestServeCalendar(t *testing.T) {
	upstream := upstreamWithEvents(t)
	defer upstream.Close()

	router := httprouter.New()
	router.GET("/api/feed/:orgid/calendar.ics", testHandler(upstream.URL).ServeCalendar)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/feed/org-1/calendar.ics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Fatalf("expected a calendar content type, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "SUMMARY:Launch Party") {
		t.Fatalf("expected the event in the calendar:\n%s", rec.Body.String())
	}
}

func TestCallerTokenOverridesDefault(t *testing.T) {
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"events": []}`)
	}))
	defer upstream.Close()

	router := httprouter.New()
	router.GET("/api/feed/:orgid", testHandler(upstream.URL).ServeFeedJSON)

	req := httptest.NewRequest(http.MethodGet, "/api/feed/org-1", nil)
	req.Header.Set("Authorization", "Bearer caller-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if gotAuth != "Bearer caller-token" {
		t.Fatalf("expected the caller token upstream, got %q", gotAuth)
	}
}
