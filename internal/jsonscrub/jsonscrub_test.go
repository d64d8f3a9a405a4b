package jsonscrub

import (
	"errors"
	"testing"

	"github.com/dshills/scrub/internal/redact"
	"github.com/google/go-cmp/cmp"
)

func TestRedact_Document(t *testing.T) {
	input := `{
  "meta": {"product": "Firefox", "startTime": 1.5e12, "https://keys.example/": "kept key"},
  "threads": [
    {"name": "GeckoMain", "url": "https://foo.com/page?id=1", "frames": ["resource://gre/x.jsm", "moz-extension://abc/bg.js"]},
    {"name": "Net", "urls": ["(http://bar.com/)", null, true, false, 42]}
  ],
  "html": "<b>ftp://mirror.org</b>"
}`
	want := `{"meta":{"product":"Firefox","startTime":1.5e12,"https://keys.example/":"kept key"},` +
		`"threads":[{"name":"GeckoMain","url":"https://<URL>","frames":["resource://gre/x.jsm","moz-extension://<URL>"]},` +
		`{"name":"Net","urls":["(http://<URL>)",null,true,false,42]}],` +
		`"html":"<b>ftp://<URL>"}`

	got, n, err := Redact([]byte(input), redact.Policy{})
	if err != nil {
		t.Fatalf("Redact() error: %v", err)
	}
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("Redact() mismatch (-want +got):\n%s", diff)
	}
	wantCounts := map[string]int{"https": 1, "moz-extension": 1, "http": 1, "ftp": 1}
	if diff := cmp.Diff(wantCounts, n); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestRedact_KeepExtensionURLs(t *testing.T) {
	got, n, err := Redact([]byte(`["moz-extension://abc/bg.js","http://x.org"]`), redact.Policy{KeepExtensionURLs: true})
	if err != nil {
		t.Fatalf("Redact() error: %v", err)
	}
	if want := `["moz-extension://abc/bg.js","http://<URL>"]`; string(got) != want {
		t.Errorf("Redact() = %s, want %s", got, want)
	}
	if n["http"] != 1 || n["moz-extension"] != 0 {
		t.Errorf("counts = %v, want only one http", n)
	}
}

func TestRedact_Scalars(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"http://foo.com"`, `"http://<URL>"`},
		{`  12345678901234567890 `, `12345678901234567890`},
		{`null`, `null`},
		{`{}`, `{}`},
		{`[]`, `[]`},
		{`[[],{}]`, `[[],{}]`},
		{`"tab\tand \"quotes\" https://x.y/é"`, `"tab\tand \"quotes\" https://<URL>"`},
	}
	for _, tt := range tests {
		got, _, err := Redact([]byte(tt.input), redact.Policy{})
		if err != nil {
			t.Errorf("Redact(%s) error: %v", tt.input, err)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("Redact(%s) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestRedact_Invalid(t *testing.T) {
	inputs := []string{
		``,
		`   `,
		`{"a":`,
		`[1,2`,
		`{"a":1}}`,
		`{"a":1} {"b":2}`,
		`1 2`,
		`{a:1}`,
	}
	for _, input := range inputs {
		_, _, err := Redact([]byte(input), redact.Policy{})
		if !errors.Is(err, ErrInvalidJSON) {
			t.Errorf("Redact(%q) error = %v, want ErrInvalidJSON", input, err)
		}
	}
}
