package server

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

type stallingReader struct{ data string }

func (r *stallingReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, os.ErrDeadlineExceeded
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestReadBody(t *testing.T) {
	tests := []struct {
		name          string
		body          io.Reader
		limit         int
		want          string
		wantTruncated bool
		wantErr       error
	}{
		{name: "short", body: strings.NewReader("2:1,2"), limit: 10, want: "2:1,2"},
		{name: "exact", body: strings.NewReader("0123456789"), limit: 10, want: "0123456789"},
		{name: "over", body: strings.NewReader("0123456789abc"), limit: 10, want: "0123456789", wantTruncated: true},
		{name: "empty", body: strings.NewReader(""), limit: 10, wantErr: ErrEmptyBody},
		{name: "deadline", body: &stallingReader{data: "2:"}, limit: 10, wantErr: ErrTransportTimeout},
		{name: "deadline while draining", body: &stallingReader{data: "0123456789abc"}, limit: 10, wantErr: ErrTransportTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated, err := readBody(tt.body, tt.limit)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("readBody() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("readBody() error = %v", err)
			}
			if got != tt.want || truncated != tt.wantTruncated {
				t.Errorf("readBody() = %q, %v, want %q, %v", got, truncated, tt.want, tt.wantTruncated)
			}
		})
	}
}

func TestParseOversizePolicy(t *testing.T) {
	for _, s := range []string{"truncate", "reject"} {
		if p, err := ParseOversizePolicy(s); err != nil || string(p) != s {
			t.Errorf("ParseOversizePolicy(%q) = %q, %v", s, p, err)
		}
	}
	if _, err := ParseOversizePolicy("drop"); err == nil {
		t.Error("ParseOversizePolicy(drop) should fail")
	}
}
