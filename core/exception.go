package core

import (
	"reflect"
	"runtime"
)

// StackFrame is one frame of a captured call stack.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// ExceptionInfo is a structured snapshot of an error, suitable for
// attaching to EventData under KeyExcInfo, including the full call
// stack rather than a single frame.
type ExceptionInfo struct {
	Type    string
	Message string
	Stack   []StackFrame
}

// CaptureException builds an ExceptionInfo from err, walking the call
// stack starting skip frames above the caller of CaptureException.
func CaptureException(err error, skip int) ExceptionInfo {
	if err == nil {
		return ExceptionInfo{}
	}

	info := ExceptionInfo{
		Type:    errorTypeName(err),
		Message: err.Error(),
	}

	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return info
	}
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		info.Stack = append(info.Stack, StackFrame{
			Function: f.Function,
			File:     f.File,
			Line:     f.Line,
		})
		if !more {
			break
		}
	}
	return info
}

func errorTypeName(err error) string {
	t := reflect.TypeOf(err)
	if t == nil {
		return "error"
	}
	return t.String()
}
