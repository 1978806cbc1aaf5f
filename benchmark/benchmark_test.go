package benchmark

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ko-log/ko-log/core"
	"github.com/ko-log/ko-log/handler"
	"github.com/ko-log/ko-log/logger"
	"github.com/ko-log/ko-log/processor"
	"github.com/ko-log/ko-log/queue"
	"github.com/ko-log/ko-log/renderer"
)

// ---------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------

func newKoLogger(h handler.Handler, opts ...logger.Option) (*logger.Logger, *queue.Manager) {
	m := queue.New(queue.Config{MaxQueueSize: 4096})
	m.Register("bench", h)
	l := logger.New("bench", m, opts...)
	return l, m
}

func newSyncStreamLogger() (*logger.Logger, *queue.Manager) {
	h := handler.NewStream(handler.StreamConfig{
		Writer:   io.Discard,
		Renderer: renderer.NewJSON(""),
	})
	return newKoLogger(h)
}

// ---------------------------------------------------------------------
// Construction cost
// ---------------------------------------------------------------------

func BenchmarkLoggerCreation(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		h := handler.NewStream(handler.StreamConfig{Writer: io.Discard, Renderer: renderer.NewJSON("")})
		m := queue.New(queue.Config{})
		m.Register("bench", h)
		_ = logger.New("bench", m)
	}
}

// ---------------------------------------------------------------------
// Synchronous emission, varying context size
// ---------------------------------------------------------------------

func BenchmarkEmitSyncNoContext(b *testing.B) {
	l, m := newSyncStreamLogger()
	defer m.Shutdown()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = l.EmitSync(core.InfoLevel, "info message", nil)
	}
}

func BenchmarkEmitSync1Field(b *testing.B) {
	l, m := newSyncStreamLogger()
	defer m.Shutdown()
	ctx := map[string]any{"key": "value"}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = l.EmitSync(core.InfoLevel, "test message", ctx)
	}
}

func BenchmarkEmitSync5Fields(b *testing.B) {
	l, m := newSyncStreamLogger()
	defer m.Shutdown()
	ctx := map[string]any{
		"key1": "value1",
		"key2": 42,
		"key3": 3.14,
		"key4": true,
		"key5": "value5",
	}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = l.EmitSync(core.InfoLevel, "test message", ctx)
	}
}

func BenchmarkEmitSync10Fields(b *testing.B) {
	l, m := newSyncStreamLogger()
	defer m.Shutdown()
	ctx := map[string]any{
		"key1": "value1", "key2": 42, "key3": 3.14, "key4": true, "key5": "value5",
		"key6": int64(1234567890), "key7": time.Second, "key8": time.Now(),
		"key9": "value9", "key10": "value10",
	}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = l.EmitSync(core.InfoLevel, "test message", ctx)
	}
}

func BenchmarkEmitSyncBelowMinLevel(b *testing.B) {
	h := handler.NewStream(handler.StreamConfig{Writer: io.Discard, Renderer: renderer.NewJSON("")})
	l, m := newKoLogger(h, logger.WithMinLevel(core.ErrorLevel))
	defer m.Shutdown()
	ctx := map[string]any{"key": "value"}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = l.EmitSync(core.DebugLevel, "debug message", ctx)
	}
}

// ---------------------------------------------------------------------
// Asynchronous emission through the bounded queue
// ---------------------------------------------------------------------

func BenchmarkEmitAsync(b *testing.B) {
	m := queue.New(queue.Config{MaxQueueSize: 65536, BackpressurePolicy: queue.Drop})
	m.Register("bench", newNoopHandler())
	m.Start()
	l := logger.New("bench", m)
	defer m.Shutdown()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = l.Emit(core.InfoLevel, "async message", nil)
	}
}

// ---------------------------------------------------------------------
// Field-type marshaling cost, isolated via the JSON renderer directly
// ---------------------------------------------------------------------

func BenchmarkJSONRenderFieldTypes(b *testing.B) {
	cases := []struct {
		name string
		data core.EventData
	}{
		{"String", core.EventData{"key": "value"}},
		{"Int", core.EventData{"key": 42}},
		{"Int64", core.EventData{"key": int64(1234567890)}},
		{"Float64", core.EventData{"key": 3.14159265}},
		{"Bool", core.EventData{"key": true}},
		{"Time", core.EventData{"key": time.Now()}},
		{"Duration", core.EventData{"key": time.Second}},
		{"Error", core.EventData{"key": errors.New("test error").Error()}},
		{"Any", core.EventData{"key": map[string]string{"nested": "value"}}},
	}

	r := renderer.NewJSON("")
	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			data := c.data
			data[core.KeyEvent] = "msg"
			data[core.KeyLevel] = core.InfoLevel
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _, _ = r.Render(data)
			}
		})
	}
}

// ---------------------------------------------------------------------
// Processor chain overhead
// ---------------------------------------------------------------------

func BenchmarkProcessorChain(b *testing.B) {
	chain := []processor.Processor{
		processor.AddContext(map[string]any{"service": "bench"}),
		processor.LevelFilter(core.DebugLevel),
		processor.Redact([]string{"password"}, "***"),
	}
	data := core.EventData{
		core.KeyEvent: "msg",
		core.KeyLevel: core.InfoLevel,
		"password":    "secret",
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, _ = processor.Chain(chain, data)
	}
}

// ---------------------------------------------------------------------
// Text vs JSON renderer
// ---------------------------------------------------------------------

func BenchmarkRendererComparison(b *testing.B) {
	data := core.EventData{
		core.KeyEvent: "benchmark message",
		core.KeyLevel: core.InfoLevel,
		core.KeyName:  "bench",
		"request_id":  "abc-123",
		"duration_ms": 42,
	}

	b.Run("text", func(b *testing.B) {
		r := renderer.NewText("")
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _, _ = r.Render(data)
		}
	})

	b.Run("json", func(b *testing.B) {
		r := renderer.NewJSON("")
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _, _ = r.Render(data)
		}
	})
}

// ---------------------------------------------------------------------
// Parallel emission, exercising the sync/async lock pair under
// contention
// ---------------------------------------------------------------------

func BenchmarkEmitSyncParallel(b *testing.B) {
	l, m := newSyncStreamLogger()
	defer m.Shutdown()
	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = l.EmitSync(core.InfoLevel, "parallel message", nil)
		}
	})
}
