package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestJSONFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "warn", "json")
	l.Info("hidden")
	l.Component("dashboard").Warn("shown")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not one JSON record: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "shown" || rec["component"] != "dashboard" {
		t.Fatalf("record = %v", rec)
	}
}

func TestWithRequest(t *testing.T) {
	l := NewWithOutput(&bytes.Buffer{}, "info", "text")
	r := httptest.NewRequest("GET", "/api/bars", nil)
	r.Header.Set("X-Request-ID", "abc")
	e := l.WithRequest(r)
	if e.Data["req_id"] != "abc" || e.Data["path"] != "/api/bars" {
		t.Fatalf("fields = %v", e.Data)
	}
	r.Header.Del("X-Request-ID")
	if id, _ := l.WithRequest(r).Data["req_id"].(string); len(id) != 36 {
		t.Fatalf("generated request id = %q", id)
	}
}

func TestWithError(t *testing.T) {
	l := NewWithOutput(&bytes.Buffer{}, "debug", "text")
	if l.Logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v", l.Logger.GetLevel())
	}
	if e := l.WithError(errors.New("boom")); e.Data["error"] != "boom" {
		t.Fatalf("error field = %v", e.Data["error"])
	}
	if e := l.WithError(nil); e != l.Entry {
		t.Fatalf("nil error should return the base entry")
	}
}
