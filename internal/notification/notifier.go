package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/pkg/logger"
)

// Notifier は空き枠通知の送信インターフェース
// 送信はファイアアンドフォーゲット: 失敗してもキャンセル待ちエントリの
// 状態遷移はロールバックされず、ログに記録されるのみ
type Notifier interface {
	// NotifySlotAvailable は「クラスに空きが出た、期限までに確認せよ」を会員に通知する
	NotifySlotAvailable(ctx context.Context, memberID, classID string, deadline time.Time) error
}

// LogNotifier は構造化ログへ出力する通知実装
// メール・プッシュ通知基盤は外部コラボレータであり、本番では差し替える
type LogNotifier struct{}

// NewLogNotifier は新しいLogNotifierを作成する
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// NotifySlotAvailable は通知内容をログに出力する
func (n *LogNotifier) NotifySlotAvailable(ctx context.Context, memberID, classID string, deadline time.Time) error {
	logger.Info("空き枠通知を送信",
		zap.String("member_id", memberID),
		zap.String("class_id", classID),
		zap.Time("confirm_deadline", deadline),
	)
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
