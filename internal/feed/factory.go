package feed

import (
	"log"
	"os"
)

// NewFromEnv builds a Bus based on env configuration.
// FEED_DRIVER: redis|kafka|memory (default)
func NewFromEnv() Bus {
	switch d := os.Getenv("FEED_DRIVER"); d {
	case "redis":
		return newRedisFromEnv()
	case "kafka":
		return newKafkaFromEnv()
	case "", "memory":
		return NewMemory()
	default:
		log.Printf("[feed] unsupported driver %q; using memory", d)
		return NewMemory()
	}
}
