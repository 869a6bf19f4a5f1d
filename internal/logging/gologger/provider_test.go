package gologger

import (
	"context"
	"maps"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

func TestNewProviderFormats(t *testing.T) {
	cases := []struct {
		format  string
		wantErr bool
	}{
		{"", false},
		{"json", false},
		{" Console ", false},
		{"pretty", false},
		{"xml", true},
	}
	for _, tc := range cases {
		p, err := NewProvider(Config{Level: "debug", Format: tc.format, Focus: []string{" ", "variants.engine"}})
		if tc.wantErr {
			if err == nil {
				t.Fatalf("format %q: expected error", tc.format)
			}
			continue
		}
		if err != nil {
			t.Fatalf("format %q: %v", tc.format, err)
		}
		if _, ok := p.GetLogger("variants.engine").(*adapter); !ok {
			t.Fatalf("format %q: expected adapted go-logger child", tc.format)
		}
	}
}

func TestGetLoggerFallbacks(t *testing.T) {
	var missing *Provider
	if _, ok := missing.GetLogger("variants.engine").(*adapter); ok {
		t.Fatal("expected nil provider to hand out a no-op logger")
	}

	p, err := NewProvider(Config{})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	root := p.GetLogger("  ")
	if _, ok := root.(*adapter); !ok {
		t.Fatalf("expected blank name to return the root logger, got %T", root)
	}
	root.Debug("variants.store.ready")
}

func TestAdapterDelegates(t *testing.T) {
	stub := &stubLogger{}
	adapted := adapt(stub)

	adapted.Trace("variants.sync.write", "page_id", "p-1")
	adapted.Debug("variants.sync.write")
	adapted.Info("variants.delete.cascade")
	adapted.Warn("variants.operation.rejected")
	adapted.Error("variants.operation.failed")
	adapted.Fatal("variants.store.unavailable")

	wantCalls := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if len(stub.calls) != len(wantCalls) {
		t.Fatalf("expected %v, got %v", wantCalls, stub.calls)
	}
	for i := range wantCalls {
		if stub.calls[i] != wantCalls[i] {
			t.Fatalf("call %d: expected %q, got %q", i, wantCalls[i], stub.calls[i])
		}
	}

	fields := map[string]any{"page_id": "p-1"}
	adapted.(*adapter).WithFields(fields)
	fields["page_id"] = "p-2"
	if len(stub.fields) != 1 || stub.fields[0]["page_id"] != "p-1" {
		t.Fatalf("expected a private copy of the fields, got %v", stub.fields)
	}
	if same := adapted.(*adapter).WithFields(nil); same != adapted {
		t.Fatal("expected empty fields to return the receiver")
	}

	ctx := context.WithValue(context.Background(), struct{}{}, "req-1")
	adapted.WithContext(ctx)
	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("expected context forwarded, got %#v", stub.contexts)
	}
}

type stubLogger struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var _ glog.Logger = (*stubLogger)(nil)
var _ glog.FieldsLogger = (*stubLogger)(nil)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	s.fields = append(s.fields, maps.Clone(fields))
	return s
}
