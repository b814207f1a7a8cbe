package app

import (
	"context"
	"log"
	"time"

	"finsight/cache"
	"finsight/realtime"
)

// assessmentChannel is the Redis pub/sub channel external consumers subscribe to
const assessmentChannel = "assessments"

// eventFanout delivers engine events to the realtime broker and, when Redis is
// up, mirrors them onto the pub/sub channel for out-of-process consumers.
type eventFanout struct {
	broker *realtime.Broker
	redis  *cache.RedisClient
}

// Broadcast implements the engine's event sink
func (f *eventFanout) Broadcast(event string, payload interface{}) {
	f.broker.Broadcast(event, payload)

	if f.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	message := map[string]interface{}{"event": event, "payload": payload}
	if err := f.redis.Publish(ctx, assessmentChannel, message); err != nil {
		log.Printf("⚠️  Redis publish failed: %v", err)
	}
}
