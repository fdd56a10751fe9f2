package logger

import "time"

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("record saved", logger.Fields("id", rec.ID))
func Fields(kvs ...interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		key, ok := kvs[i].(string)
		if !ok {
			continue
		}
		fields[key] = kvs[i+1]
	}
	return fields
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		"op":    op,
		"error": err.Error(),
	}
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		"op":          op,
		"duration_ms": d.Milliseconds(),
	}
}
