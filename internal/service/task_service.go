package service

import (
	"context"
	"encoding/json"

	"tradie-recovery-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	TopicWelcomeEmail           = "tasks.welcome_email"
	TopicApplicationStatusEmail = "tasks.application_status_email"
	TopicCaseAnalyze            = "tasks.case_analyze"
	TopicDocumentReadyEmail     = "tasks.document_ready_email"
)

// TaskTopics lists every topic the consumer subscribes to.
var TaskTopics = []string{
	TopicWelcomeEmail,
	TopicApplicationStatusEmail,
	TopicCaseAnalyze,
	TopicDocumentReadyEmail,
}

// ITaskDispatcher queues side effects that must not fail the request.
type ITaskDispatcher interface {
	Dispatch(ctx context.Context, topic string, payload interface{})
}

type taskDispatcher struct {
	publisher message.Publisher
	logger    logger.ILogger
}

func NewTaskDispatcher(publisher message.Publisher, log logger.ILogger) ITaskDispatcher {
	return &taskDispatcher{publisher: publisher, logger: log}
}

func (d *taskDispatcher) Dispatch(ctx context.Context, topic string, payload interface{}) {
	if d.publisher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("TaskDispatcher", "Failed to encode task", map[string]interface{}{"topic": topic, "error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(context.WithoutCancel(ctx))
	if err := d.publisher.Publish(topic, msg); err != nil {
		d.logger.Warn("TaskDispatcher", "Failed to queue task", map[string]interface{}{"topic": topic, "error": err.Error()})
	}
}
