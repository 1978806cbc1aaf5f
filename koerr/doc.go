// Package koerr implements Ko-Log's structured error taxonomy. Every
// error the core raises carries a Kind, a machine-parsable Code of the
// form LAYER::Component::CATEGORY::SEVERITY[::RECOVERABLE], an
// optional context map, and a wrapped cause.
//
// Composite errors (the sync-path dispatch error and the shutdown
// error, each aggregating one failure per handler) are built with
// go.uber.org/multierr rather than hand-rolled slices of error.
package koerr
