package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	rediskey "sales_tracker/pkg/redis"
)

// luaRateLimit：Redis 滑动窗口限流 Lua 脚本（原子操作）
// KEYS[1]=限流key，ARGV[1]=当前时间戳，ARGV[2]=窗口开始时间戳，ARGV[3]=窗口秒数，
// ARGV[4]=本次请求成员，ARGV[5]=上限
// 返回：当前窗口内的请求数（超限返回 -1）
const luaRateLimit = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local windowSec = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', windowStart)

local count = redis.call('ZCARD', key)
if count < tonumber(ARGV[5]) then
  redis.call('ZADD', key, now, member)
  redis.call('EXPIRE', key, windowSec)
  return count + 1
end
return -1
`

// RedisRateLimit 写接口限流：body 里带 customer_id 时按客户限流，否则按 IP。
// Redis 不可用时放行。
func RedisRateLimit(rdb *rd.Client, limit int, window time.Duration, log logrus.FieldLogger) gin.HandlerFunc {
	windowSec := int64(window / time.Second)
	if windowSec <= 0 {
		windowSec = 1
	}
	return func(c *gin.Context) {
		var key string
		if customerID, err := extractCustomerID(c); err == nil && customerID > 0 {
			key = rediskey.RateLimitKey("customer", strconv.FormatUint(uint64(customerID), 10))
		} else {
			key = rediskey.RateLimitKey("ip", c.ClientIP())
		}

		now := time.Now()
		score := now.UnixMilli()
		windowStart := score - windowSec*1000
		member := fmt.Sprintf("%d-%s", now.UnixNano(), RequestID(c))

		res, err := rdb.Eval(c.Request.Context(), luaRateLimit, []string{key},
			score, windowStart, windowSec, member, limit).Int()
		if err != nil {
			log.WithError(err).Warn("rate limit unavailable, letting request through")
			c.Next()
			return
		}
		if res < 0 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code": http.StatusTooManyRequests,
				"msg":  "too many requests, retry later",
			})
			return
		}
		c.Next()
	}
}

// extractCustomerID 从请求 body 中解析 customer_id（不消耗 body，可重复读）
func extractCustomerID(c *gin.Context) (uint, error) {
	if c.Request.Body == nil {
		return 0, io.EOF
	}
	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return 0, err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	var req struct {
		CustomerID uint `json:"customer_id"`
	}
	if err := json.Unmarshal(bodyBytes, &req); err != nil {
		return 0, err
	}
	return req.CustomerID, nil
}
