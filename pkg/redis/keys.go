package redis

import "fmt"

// RateLimitUserKey 按已认证用户限流的键名。
func RateLimitUserKey(userID uint) string {
	return fmt.Sprintf("storefront:rate_limit:user:%d", userID)
}

// RateLimitIPKey 未认证请求按 IP 限流的降级键名。
func RateLimitIPKey(ip string) string {
	return fmt.Sprintf("storefront:rate_limit:ip:%s", ip)
}
