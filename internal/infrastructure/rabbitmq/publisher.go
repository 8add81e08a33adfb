package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/pkg/logger"
)

// CapacityChangedQueue は空き枠変動イベントのキュー名
const CapacityChangedQueue = "class.capacity_changed"

// CapacityChangedEvent は予約の作成・キャンセルで空き枠が変動した際に発行される
// リアルタイム表示などの下流コンシューマが購読する
type CapacityChangedEvent struct {
	ClassID   string    `json:"class_id"`
	Capacity  int       `json:"capacity"`
	Occupied  int       `json:"occupied"`
	Free      int       `json:"free"`
	ChangedAt time.Time `json:"changed_at"`
}

// EventPublisher はRabbitMQへドメインイベントを発行する
// 発行失敗はログに残すだけで呼び出し元の状態遷移を妨げない
type EventPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewEventPublisher は接続を確立し、キューを宣言して発行者を作成する
func NewEventPublisher(url string) (*EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("チャネル作成に失敗: %w", err)
	}

	// キューを宣言（冪等・durable）
	if _, err := ch.QueueDeclare(CapacityChangedQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("キュー宣言に失敗: %w", err)
	}

	return &EventPublisher{conn: conn, ch: ch}, nil
}

// PublishCapacityChanged は空き枠変動イベントを発行する
func (p *EventPublisher) PublishCapacityChanged(ctx context.Context, event CapacityChangedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("イベントのエンコードに失敗: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",                   // デフォルトエクスチェンジ
		CapacityChangedQueue, // ルーティングキー = キュー名
		false,                // mandatory
		false,                // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		logger.Error("空き枠変動イベントの発行に失敗",
			zap.String("class_id", event.ClassID),
			zap.Error(err),
		)
		return fmt.Errorf("イベント発行に失敗: %w", err)
	}
	return nil
}

// Close は接続とチャネルを閉じる
func (p *EventPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
