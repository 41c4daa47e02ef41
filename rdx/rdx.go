package rdx

import (
	"log"
	"time"

	"evfeed/globals"

	"github.com/redis/go-redis/v9"
)

// Conn is nil when redis is unreachable; callers treat that as cache-off and
// rebuild on every request.
var Conn *redis.Client

func Init(addr string) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(globals.Ctx).Err(); err != nil {
		log.Println("Redis unavailable, page cache disabled:", err)
		return
	}
	Conn = client
}

func RdxGet(key string) (string, error) {
	if Conn == nil {
		return "", redis.Nil
	}
	return Conn.Get(globals.Ctx, key).Result()
}

func RdxSet(key, value string, ttl time.Duration) error {
	if Conn == nil {
		return nil
	}
	return Conn.Set(globals.Ctx, key, value, ttl).Err()
}

func RdxDel(keys ...string) error {
	if Conn == nil {
		return nil
	}
	return Conn.Del(globals.Ctx, keys...).Err()
}
