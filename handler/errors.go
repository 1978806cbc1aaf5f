package handler

import "github.com/ko-log/ko-log/koerr"

// wrapIOErr wraps a destination-level error (open, write, rename,
// flush, close) as a koerr.HandlerIOError. Recoverable defaults to true
// since most write failures here are transient (full disk, momentary
// permission issue); callers that know better override it.
func wrapIOErr(err error) error {
	return koerr.New(koerr.HandlerIOError, koerr.CodeHandlerIO, err).WithRecoverable(true)
}
