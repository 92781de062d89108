package manifest

import (
	"bytes"
	"strings"
	"testing"
)

func TestDecodeValid(t *testing.T) {
	data := []byte(`{
  "serviceName": "auth-service",
  "status": "In Progress",
  "currentTask": "Implement login",
  "progress": 40,
  "lastUpdate": "2025-05-01T00:00:00Z",
  "nextSteps": ["Add caching"]
}`)
	m, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.ServiceName != "auth-service" || m.Progress != 40 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"not json":         `{`,
		"empty name":       `{"serviceName":"","status":"Done","currentTask":"x","progress":10,"lastUpdate":"2025-05-01T00:00:00Z","nextSteps":[]}`,
		"bad status":       `{"serviceName":"a","status":"Shipped","currentTask":"x","progress":10,"lastUpdate":"2025-05-01T00:00:00Z","nextSteps":[]}`,
		"empty task":       `{"serviceName":"a","status":"Done","currentTask":"","progress":10,"lastUpdate":"2025-05-01T00:00:00Z","nextSteps":[]}`,
		"progress too big": `{"serviceName":"a","status":"Done","currentTask":"x","progress":150,"lastUpdate":"2025-05-01T00:00:00Z","nextSteps":[]}`,
		"bad priority":     `{"serviceName":"a","status":"Done","currentTask":"x","progress":10,"lastUpdate":"2025-05-01T00:00:00Z","nextSteps":[],"priority":"P9"}`,
	}
	for name, data := range cases {
		if _, err := Decode([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestEncodeStableLayout(t *testing.T) {
	m, err := Decode([]byte(`{"serviceName":"a","status":"Done","currentTask":"x","progress":10,"lastUpdate":"2025-05-01T00:00:00Z","nextSteps":["y"]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, err := Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.HasSuffix(out, []byte("\n")) {
		t.Fatalf("missing trailing newline")
	}
	// serviceName must serialize before status for readable diffs
	s := string(out)
	if strings.Index(s, `"serviceName"`) > strings.Index(s, `"status"`) {
		t.Fatalf("field order not stable:\n%s", s)
	}
	reparsed, err := Decode(out)
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if reparsed.ServiceName != m.ServiceName {
		t.Fatalf("round trip mismatch")
	}
}
