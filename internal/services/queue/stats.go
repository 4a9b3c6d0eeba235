package queue

import "fmt"

// GetQueueStats reports how many conversion jobs wait in the queue and how
// many workers consume it.
func (q *QueueService) GetQueueStats() (map[string]interface{}, error) {
	if q.channel == nil {
		return nil, fmt.Errorf("queue %s: channel not available", q.queueName)
	}

	queueInfo, err := q.channel.QueueInspect(q.queueName)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect queue: %w", err)
	}

	return map[string]interface{}{
		"queue":        queueInfo.Name,
		"pending_jobs": queueInfo.Messages,
		"workers":      queueInfo.Consumers,
	}, nil
}

func (q *QueueService) HealthCheck() string {
	switch {
	case q.conn == nil || q.conn.IsClosed():
		return "unhealthy: rabbitmq connection closed"
	case q.channel == nil:
		return "unhealthy: rabbitmq channel not available"
	default:
		return "healthy"
	}
}
