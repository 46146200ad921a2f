package redis

import "fmt"

const keyPrefix = "sales_tracker"

// ReportGenerationKey 报表缓存代数；每次写入自增，旧代数的缓存自然失效。
func ReportGenerationKey() string {
	return keyPrefix + ":report:gen"
}

// ReportKey 某一代数下某个报表的缓存键。
func ReportKey(gen int64, report string) string {
	return fmt.Sprintf("%s:report:%d:%s", keyPrefix, gen, report)
}

// RateLimitKey 写接口限流键，subject 为 customer/ip 等维度。
func RateLimitKey(subject, id string) string {
	return fmt.Sprintf("%s:rate_limit:%s:%s", keyPrefix, subject, id)
}
