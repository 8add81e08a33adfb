package worker

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/pkg/logger"
)

// WaitlistMaintainer はスイーパーが呼び出すキャンセル待ち保守操作のインターフェース
type WaitlistMaintainer interface {
	SweepExpired(ctx context.Context) (int, error)
	ReconcileCapacityReleases(ctx context.Context) (int, error)
}

// WaitlistSweeper はキャンセル待ちリストの時間依存状態を定期的に進めるワーカー
// 各実行で「期限切れ処理 → 空き枠再配分」の順に呼び出す
// （解放された枠を期限切れ済みの先頭に提供しないための順序）
type WaitlistSweeper struct {
	waitlistService WaitlistMaintainer
	interval        time.Duration
	stopCh          chan struct{}
	doneCh          chan struct{}
	running         atomic.Bool
}

// NewWaitlistSweeper は新しいスイーパーを作成
func NewWaitlistSweeper(ws WaitlistMaintainer, interval time.Duration) *WaitlistSweeper {
	return &WaitlistSweeper{
		waitlistService: ws,
		interval:        interval,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *WaitlistSweeper) Start(ctx context.Context) {
	logger.Info("キャンセル待ちスイーパー開始",
		zap.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("キャンセル待ちスイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("キャンセル待ちスイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *WaitlistSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// Sweep は期限切れ処理と空き枠再配分を1回実行する（手動実行にも使用）
// 前回の実行が終わっていない場合は何もしない
func (s *WaitlistSweeper) Sweep(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		logger.Debug("前回のスイープが実行中のためスキップ")
		return
	}
	defer s.running.Store(false)

	log := logger.Get()
	log.Debug("キャンセル待ちスイープ開始")

	expired, err := s.waitlistService.SweepExpired(ctx)
	if err != nil {
		log.Error("期限切れ処理に失敗", zap.Error(err))
		return
	}

	notified, err := s.waitlistService.ReconcileCapacityReleases(ctx)
	if err != nil {
		log.Error("空き枠再配分に失敗", zap.Error(err))
		return
	}

	if expired > 0 || notified > 0 {
		log.Info("キャンセル待ちスイープ完了",
			zap.Int("expired", expired),
			zap.Int("notified", notified),
		)
	} else {
		log.Debug("キャンセル待ちスイープ完了（対象なし）")
	}
}
