package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"hrai/recruiter/internal/logger"
	"hrai/recruiter/internal/models"
)

// StatusUpdate is the message body published on every candidate status change.
type StatusUpdate struct {
	CandidateID string  `json:"candidate_id"`
	JobID       string  `json:"job_id"`
	Name        string  `json:"name"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Score       float64 `json:"score,omitempty"`
	At          string  `json:"at"`
}

type StatusPublisher interface {
	PublishStatus(candidate *models.Candidate, previous models.CandidateStatus) error
	Close() error
}

// NewStatusUpdate builds the message for a candidate that just left previous.
func NewStatusUpdate(candidate *models.Candidate, previous models.CandidateStatus) StatusUpdate {
	update := StatusUpdate{
		CandidateID: candidate.ID.String(),
		JobID:       candidate.JobID.String(),
		Name:        candidate.Name,
		From:        string(previous),
		To:          string(candidate.Status),
		At:          time.Now().UTC().Format(time.RFC3339),
	}
	if candidate.Score != nil {
		update.Score = *candidate.Score
	}
	return update
}

type amqpPublisher struct {
	conn     *amqp.Connection
	exchange string
	log      *zap.Logger
}

// NewAMQPPublisher dials RabbitMQ and declares the topic exchange that
// status updates are routed through as "candidate.<id>".
func NewAMQPPublisher(url, exchange string, log *zap.Logger) (StatusPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &amqpPublisher{
		conn:     conn,
		exchange: exchange,
		log:      logger.OrNop(log),
	}, nil
}

func (p *amqpPublisher) PublishStatus(candidate *models.Candidate, previous models.CandidateStatus) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(NewStatusUpdate(candidate, previous))
	if err != nil {
		return fmt.Errorf("failed to encode status update: %w", err)
	}

	routingKey := fmt.Sprintf("candidate.%s", candidate.ID)

	err = ch.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish status update: %w", err)
	}

	p.log.Debug("status update published", zap.String("routing_key", routingKey))
	return nil
}

func (p *amqpPublisher) Close() error {
	return p.conn.Close()
}

type nopPublisher struct{}

// NewNopPublisher is used when no broker is configured.
func NewNopPublisher() StatusPublisher {
	return nopPublisher{}
}

func (nopPublisher) PublishStatus(*models.Candidate, models.CandidateStatus) error { return nil }

func (nopPublisher) Close() error { return nil }
