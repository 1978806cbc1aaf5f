package processor

import "github.com/ko-log/ko-log/core"

// AddContext returns a Processor that merges a static set of key/value
// pairs into EventData["context"], creating the nested map if absent.
// Existing keys in the event's own context win over the static set.
func AddContext(kv map[string]any) Processor {
	return Func(func(data core.EventData) (core.EventData, Outcome, error) {
		ctx, _ := data[core.KeyContext].(map[string]any)
		merged := make(map[string]any, len(kv)+len(ctx))
		for k, v := range kv {
			merged[k] = v
		}
		for k, v := range ctx {
			merged[k] = v
		}
		data[core.KeyContext] = merged
		return data, Keep, nil
	})
}

// LevelFilter drops any event below the given minimum level. Logger-level
// filtering normally happens before a Record is even built, but a
// handler may still want its own, stricter floor — e.g. a
// file handler that only wants WARNING and above even though the
// logger itself is at DEBUG.
func LevelFilter(min core.Level) Processor {
	return Func(func(data core.EventData) (core.EventData, Outcome, error) {
		lvl, _ := data[core.KeyLevel].(core.Level)
		if lvl < min {
			return data, Drop, nil
		}
		return data, Keep, nil
	})
}

// Redact returns a Processor that replaces the values of the named
// top-level EventData keys with a fixed placeholder, for handlers that
// must not persist sensitive fields (e.g. a file handler writing to a
// shared log directory).
func Redact(keys []string, placeholder string) Processor {
	return Func(func(data core.EventData) (core.EventData, Outcome, error) {
		for _, k := range keys {
			if _, ok := data[k]; ok {
				data[k] = placeholder
			}
		}
		return data, Keep, nil
	})
}
