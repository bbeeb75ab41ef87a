package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"ragbot-be/internal/apperrors"
	"ragbot-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub             *gochannel.GoChannel
	topicName          string
	maintenanceService IMaintenanceService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	maintenanceService IMaintenanceService,
) IConsumerService {
	return &consumerService{
		pubSub:             pubSub,
		topicName:          topicName,
		maintenanceService: maintenanceService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var job dto.ReindexJobMessage
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		log.Printf("[ERROR] Failed to unmarshal reindex job: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing reindex job for document: %s", job.DocumentId)

	chunks, err := cs.maintenanceService.Reindex(ctx, job.DocumentId, job.Path)
	if err != nil {
		// Bad input never becomes processable on retry.
		if errors.Is(err, apperrors.ErrEmptyDocument) || errors.Is(err, apperrors.ErrInvalidRequest) {
			log.Printf("[ERROR] Reindex job for %s rejected: %v", job.DocumentId, err)
			msg.Ack()
			return
		}
		log.Printf("[ERROR] Reindex job for %s failed: %v", job.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	log.Printf("[SUCCESS] Document reindexed: %d chunks for %s", chunks, job.DocumentId)
	msg.Ack()
}
