package service

import (
	"context"
	"encoding/json"
	"fmt"

	"tradie-recovery-be/internal/dto"
	"tradie-recovery-be/internal/pkg/logger"
	"tradie-recovery-be/internal/pkg/mailer"
	"tradie-recovery-be/internal/repository/specification"
	"tradie-recovery-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	uowFactory unitofwork.RepositoryFactory
	mailer     mailer.IEmailService
	cases      ICaseService
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	uowFactory unitofwork.RepositoryFactory,
	mail mailer.IEmailService,
	cases ICaseService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		uowFactory: uowFactory,
		mailer:     mail,
		cases:      cases,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	for _, topic := range TaskTopics {
		messages, err := cs.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go func(topic string) {
			for msg := range messages {
				cs.processMessage(ctx, topic, msg)
			}
		}(topic)
	}
	cs.logger.Info("ConsumerService", "Task consumer started", map[string]interface{}{"topics": TaskTopics})
	return nil
}

// processMessage always acks. Tasks are best-effort side effects and a
// redelivery loop on a bad payload or a dead SMTP server helps nobody.
func (cs *consumerService) processMessage(ctx context.Context, topic string, msg *message.Message) {
	defer msg.Ack()

	if err := cs.handle(ctx, topic, msg.Payload); err != nil {
		cs.logger.Error("ConsumerService", "Task failed", map[string]interface{}{"topic": topic, "message_id": msg.UUID, "error": err.Error()})
	}
}

func (cs *consumerService) handle(ctx context.Context, topic string, payload []byte) error {
	switch topic {
	case TopicWelcomeEmail:
		var task dto.WelcomeEmailTask
		if err := json.Unmarshal(payload, &task); err != nil {
			return err
		}
		return cs.mailer.SendWelcome(task.Email, task.FullName)

	case TopicApplicationStatusEmail:
		var task dto.ApplicationStatusEmailTask
		if err := json.Unmarshal(payload, &task); err != nil {
			return err
		}
		return cs.mailer.SendApplicationStatus(task.Email, task.FullName, task.Status, task.Notes)

	case TopicCaseAnalyze:
		var task dto.CaseAnalyzeTask
		if err := json.Unmarshal(payload, &task); err != nil {
			return err
		}
		return cs.cases.AnalyzeCase(ctx, task.CaseId)

	case TopicDocumentReadyEmail:
		var task dto.DocumentReadyEmailTask
		if err := json.Unmarshal(payload, &task); err != nil {
			return err
		}
		user, err := cs.uowFactory.NewUnitOfWork(ctx).UserRepository().FindOne(ctx, specification.ByID{ID: task.UserId})
		if err != nil {
			return err
		}
		if user == nil {
			return nil
		}
		return cs.mailer.SendDocumentReady(user.Email, user.FullName, task.CaseNumber)
	}
	return fmt.Errorf("no handler for topic %s", topic)
}
