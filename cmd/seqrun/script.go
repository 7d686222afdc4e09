package main

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/webriots/seq"
	"github.com/webriots/seq/internal/config"
)

// Script turns script entries into a coroutine. Each entry yields one
// effect; log entries write a line and yield nothing. The coroutine
// returns the resolved value of every entry, in order.
func Script(script []config.StepConfig, log *zap.Logger) seq.Coroutine {
	return func(yield seq.Yield) any {
		results := make([]any, 0, len(script))
		for i, st := range script {
			switch st.Type {
			case config.StepDelay:
				results = append(results, yield(st.Duration))
			case config.StepParallel:
				effects := make([]any, len(st.Durations))
				for j, d := range st.Durations {
					effects[j] = d
				}
				results = append(results, yield(effects))
			case config.StepFrame:
				results = append(results, yield(seq.NextFrame))
			case config.StepLog:
				log.Info(st.Message, zap.Int("step", i))
				results = append(results, st.Message)
			}
		}
		return results
	}
}

func formatResult(v any) string {
	switch v := v.(type) {
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = formatResult(e)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}
