package benchmark

import "github.com/ko-log/ko-log/handler"

// noopHandler discards every record after running the shared pipeline,
// isolating queue/dispatch overhead from any real destination's I/O
// cost.
type noopHandler struct {
	handler.Null
}

func newNoopHandler() handler.Handler {
	return &noopHandler{Null: *handler.NewNull(nil)}
}
