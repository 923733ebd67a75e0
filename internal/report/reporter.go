// Package report posts final migration decisions to an external sink.
// At-most-once, best-effort: failures are logged and never retried, and the
// coordinator's committed state is never rolled back on a sink error.
package report

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Decision values recorded at the sink.
const (
	DecisionMigrate      = "migrate"
	DecisionDoNotMigrate = "do-not-migrate"
	DecisionDenied       = "denied"
	DecisionCancelled    = "cancelled"
)

// Record is the JSON payload posted to the sink.
type Record struct {
	UserID    string    `json:"userId"`
	Decision  string    `json:"decision"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

type Reporter struct {
	sinkURL string
	client  *http.Client
}

// NewReporter creates a reporter. An empty sink URL disables reporting.
func NewReporter(sinkURL string) *Reporter {
	return &Reporter{
		sinkURL: sinkURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Reporter) IsConfigured() bool {
	return r.sinkURL != ""
}

// Report submits the record asynchronously. The caller never waits on it.
func (r *Reporter) Report(rec Record) {
	if !r.IsConfigured() {
		return
	}
	go func() {
		if err := r.send(rec); err != nil {
			log.Printf("report: decision for %s not delivered: %v", rec.UserID, err)
		}
	}()
}

func (r *Reporter) send(rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	resp, err := r.client.Post(r.sinkURL, "application/json", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}
