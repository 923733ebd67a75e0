package report

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestReportPostsRecord(t *testing.T) {
	received := make(chan Record, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		var rec Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			t.Errorf("decode body: %v", err)
		}
		received <- rec
	}))
	defer srv.Close()

	r := NewReporter(srv.URL)
	if !r.IsConfigured() {
		t.Fatal("IsConfigured = false with a sink URL")
	}

	sent := Record{
		UserID:    "100",
		Decision:  DecisionMigrate,
		Language:  "en",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
	r.Report(sent)

	select {
	case got := <-received:
		if got.UserID != sent.UserID || got.Decision != sent.Decision || got.Language != sent.Language {
			t.Errorf("received = %+v, want %+v", got, sent)
		}
		if !got.Timestamp.Equal(sent.Timestamp) {
			t.Errorf("timestamp = %v, want %v", got.Timestamp, sent.Timestamp)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sink never received the record")
	}
}

func TestReportDisabledWithoutSink(t *testing.T) {
	r := NewReporter("")
	if r.IsConfigured() {
		t.Fatal("IsConfigured = true with empty sink URL")
	}
	// Must not panic or block.
	r.Report(Record{UserID: "100", Decision: DecisionDenied})
}

func TestReportSurvivesSinkErrors(t *testing.T) {
	hit := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit <- struct{}{}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewReporter(srv.URL)
	r.Report(Record{UserID: "100", Decision: DecisionCancelled})

	select {
	case <-hit:
	case <-time.After(2 * time.Second):
		t.Fatal("sink never hit")
	}
}
