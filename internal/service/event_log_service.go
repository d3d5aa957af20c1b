package service

import (
	"context"

	"ai-salesagent-be/internal/pkg/logger"
	"ai-salesagent-be/pkg/events"
)

// IEventLogService drains the event bus into the structured log. Runs as a
// background goroutine for the lifetime of the process.
type IEventLogService interface {
	Consume(ctx context.Context) error
}

type eventLogService struct {
	bus *events.Bus
	log logger.ILogger
}

func NewEventLogService(bus *events.Bus, log logger.ILogger) IEventLogService {
	return &eventLogService{
		bus: bus,
		log: log,
	}
}

func (s *eventLogService) Consume(ctx context.Context) error {
	messages, err := s.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	for msg := range messages {
		evt, err := events.Decode(msg)
		if err != nil {
			s.log.Warn("EVENTS", "undecodable event dropped", map[string]interface{}{"error": err.Error()})
			msg.Ack()
			continue
		}

		s.log.Info("EVENTS", evt.EventType(), evt.Payload())
		msg.Ack()
	}
	return nil
}
