package loki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPushEntry(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/push" {
			t.Errorf("path = %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	err := PushEntry(context.Background(), srv.URL, ts, `{"hello":"world"}`, map[string]string{"severity": "success"})
	if err != nil {
		t.Fatalf("PushEntry: %v", err)
	}
	if len(got.Streams) != 1 {
		t.Fatalf("streams = %d, want 1", len(got.Streams))
	}
	stream := got.Streams[0]
	if stream.Stream["job"] != "club-control-plane" {
		t.Errorf("job label = %s", stream.Stream["job"])
	}
	if stream.Stream["severity"] != "success" {
		t.Errorf("severity label = %s", stream.Stream["severity"])
	}
	if len(stream.Values) != 1 || stream.Values[0][1] != `{"hello":"world"}` {
		t.Errorf("values = %+v", stream.Values)
	}
}

func TestPushEntryKeepsLabelValuesIntact(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	labels := map[string]string{
		"message_key": "membership.approved",
		"bad name!":   "kept as-is",
	}
	if err := PushEntry(context.Background(), srv.URL, time.Now(), "line", labels); err != nil {
		t.Fatalf("PushEntry: %v", err)
	}
	stream := got.Streams[0].Stream
	// Values pass through untouched; only label names are sanitized.
	if stream["message_key"] != "membership.approved" {
		t.Errorf("message_key = %s, want membership.approved", stream["message_key"])
	}
	if stream["bad_name_"] != "kept as-is" {
		t.Errorf("sanitized name label = %q, want value kept as-is", stream["bad_name_"])
	}
}

func TestPushEntryNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	if err := PushEntry(context.Background(), srv.URL, time.Now(), "line", nil); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestPushNotificationJSONExtractsLabels(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	raw := []byte(`{"severity":"success","messageKey":"membership.approved","clubId":"c1","source":"transition-engine","createdAt":"2025-06-01T12:00:00Z"}`)
	if err := PushNotificationJSON(context.Background(), srv.URL, raw); err != nil {
		t.Fatalf("PushNotificationJSON: %v", err)
	}
	stream := got.Streams[0]
	if stream.Stream["club_id"] != "c1" || stream.Stream["message_key"] != "membership.approved" {
		t.Errorf("labels = %+v", stream.Stream)
	}
	wantTS := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixNano()
	if stream.Values[0][0] != jsonNumber(wantTS) {
		t.Errorf("timestamp = %s, want %d", stream.Values[0][0], wantTS)
	}
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestPushEntryRequiresURL(t *testing.T) {
	if err := PushEntry(context.Background(), "", time.Now(), "line", nil); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}
