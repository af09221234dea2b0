package cache

import "fmt"

func AnalysisKey(patternKey string) string {
	return fmt.Sprintf("analysis:%s", patternKey)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
