package repository

import (
	"context"

	"CoinSight/internal/domain/models"
	domrepo "CoinSight/internal/domain/repository"
	pkgkafka "CoinSight/pkg/kafka"
)

// KafkaPublisher publishes produced predictions to a Kafka topic, keyed by
// symbol so per-symbol ordering survives partitioning.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates the prediction publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) domrepo.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, pred *models.Prediction) error {
	return p.producer.Publish(ctx, p.topic, []byte(pred.Symbol), payload(pred))
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, preds []*models.Prediction) error {
	if len(preds) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(preds))
	for i, pred := range preds {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(pred.Symbol),
			Value: payload(pred),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func payload(p *models.Prediction) map[string]interface{} {
	return map[string]interface{}{
		"symbol":           p.Symbol,
		"horizon_days":     p.HorizonDays,
		"current_price":    p.CurrentPrice,
		"predicted_price":  p.PredictedPrice,
		"direction":        p.Direction,
		"confidence":       p.Confidence,
		"sentiment_factor": p.SentimentContribution,
		"technical_factor": p.TechnicalContribution,
		"used_model":       p.UsedModelSentiment,
		"used_technical":   p.UsedTechnical,
		"predicted_at":     p.PredictedAt.Unix(),
		"target_date":      p.TargetDate.Unix(),
	}
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
