package core

import (
	"context"
	"sync"
	"testing"
)

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type capturedHistogram struct {
	name  string
	value float64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu         sync.Mutex
	counters   []capturedCounter
	histograms []capturedHistogram
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, capturedHistogram{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) counter(name string) (capturedCounter, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for index := len(m.counters) - 1; index >= 0; index-- {
		if m.counters[index].name == name {
			return m.counters[index], true
		}
	}
	return capturedCounter{}, false
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) find(msg string) (capturedLog, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, record := range *l.records {
		if record.msg == msg {
			return record, true
		}
	}
	return capturedLog{}, false
}

func TestServiceObservability_EmitSuccess(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	fx := newTestFixture(t, Config{}, WithLoggerProvider(stubLoggerProvider{logger: logger}), WithLogger(logger), WithMetricsRecorder(metrics))
	fx.initialize(t, 100, 100)
	fx.emit(t, 10)

	record, ok := logger.find("emit succeeded")
	if !ok {
		t.Fatalf("expected emit success log")
	}
	if record.level != "info" {
		t.Fatalf("expected info level, got %q", record.level)
	}
	if record.fields["config_id"] != DefaultConfigID || record.fields["actor"] != string(testPrimary) {
		t.Fatalf("expected operation fields on log, got %#v", record.fields)
	}
	if record.fields["supply"] != uint64(10) {
		t.Fatalf("expected resulting supply field, got %#v", record.fields["supply"])
	}

	counter, ok := metrics.counter("issuance.emit.total")
	if !ok {
		t.Fatalf("expected emit counter")
	}
	if counter.tags["status"] != "success" || counter.tags["config_id"] != DefaultConfigID {
		t.Fatalf("unexpected counter tags %#v", counter.tags)
	}
	if len(metrics.histograms) == 0 {
		t.Fatalf("expected duration histograms")
	}
}

func TestServiceObservability_FailureCarriesErrorCode(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	fx := newTestFixture(t, Config{}, WithLoggerProvider(stubLoggerProvider{logger: logger}), WithLogger(logger), WithMetricsRecorder(metrics))
	fx.initialize(t, 100, 100)

	_, err := fx.svc.EmergencyPause(context.Background(), EmergencyPauseRequest{Caller: testHolder})
	expectKind(t, err, ErrorUnauthorized)

	record, ok := logger.find("emergency_pause failed")
	if !ok {
		t.Fatalf("expected failure log")
	}
	if record.level != "error" || record.fields["error_code"] != ErrorUnauthorized {
		t.Fatalf("unexpected failure log %#v", record)
	}
	counter, ok := metrics.counter("issuance.emergency_pause.total")
	if !ok || counter.tags["status"] != "failure" || counter.tags["error_code"] != ErrorUnauthorized {
		t.Fatalf("unexpected failure counter %#v", counter)
	}
}
