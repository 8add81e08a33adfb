package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/booking"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/class"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/member"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/transaction"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/waitlist"
	redislock "github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/infrastructure/redis"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/notification"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/pkg/logger"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/pkg/metrics"
)

// DefaultConfirmWindow は通知から確認期限までのデフォルト猶予
const DefaultConfirmWindow = 24 * time.Hour

// BookingOperations はキャンセル待ちサービスが予約管理側に求める操作
// 枠の確定はこのインターフェース経由でのみ行い、予約エンティティを直接変更しない
type BookingOperations interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error)
	QueryCapacity(ctx context.Context, classID string) (*CapacityInfo, error)
}

// WaitlistService はキャンセル待ちリストと昇格プロトコルを管理する
// エントリの状態遷移: queued → notified → confirmed または expired
// 通知は常に順番の昇順で行われ、後続が先行を追い越すことはない
type WaitlistService struct {
	txManager     transaction.Manager
	waitlistRepo  waitlist.Repository
	classRepo     class.Repository
	memberRepo    member.Repository
	bookings      BookingOperations
	lockManager   redislock.Manager
	notifier      notification.Notifier
	confirmWindow time.Duration
}

// NewWaitlistService は新しいWaitlistServiceを作成する
// confirmWindow が0以下の場合はデフォルト（24時間）を使用する
func NewWaitlistService(
	txm transaction.Manager,
	wr waitlist.Repository,
	cr class.Repository,
	mr member.Repository,
	bo BookingOperations,
	lm redislock.Manager,
	n notification.Notifier,
	confirmWindow time.Duration,
) *WaitlistService {
	if confirmWindow <= 0 {
		confirmWindow = DefaultConfirmWindow
	}
	return &WaitlistService{
		txManager:     txm,
		waitlistRepo:  wr,
		classRepo:     cr,
		memberRepo:    mr,
		bookings:      bo,
		lockManager:   lm,
		notifier:      n,
		confirmWindow: confirmWindow,
	}
}

// EnableWaitlist はクラスのキャンセル待ちリストを有効化する
func (s *WaitlistService) EnableWaitlist(ctx context.Context, classID string) (*class.Class, error) {
	cl, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := cl.EnableWaitlist(); err != nil {
		return nil, err
	}
	if err := s.classRepo.Update(ctx, cl); err != nil {
		return nil, err
	}
	logger.Info("キャンセル待ちリストを有効化", zap.String("class_id", classID))
	return cl, nil
}

// DisableWaitlist はクラスのキャンセル待ちリストを無効化する
// 有効なエントリはすべて無効化されるが、履歴としては残る
func (s *WaitlistService) DisableWaitlist(ctx context.Context, classID string) (*class.Class, error) {
	cl, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !cl.WaitlistEnabled {
		return cl, nil
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// エントリの無効化とフラグ更新は同一トランザクションで行い、
	// 片方だけ反映された状態を残さない
	deactivated, err := s.waitlistRepo.DeactivateAllByClass(ctx, tx, classID)
	if err != nil {
		return nil, err
	}
	cl.DisableWaitlist()
	if err := s.classRepo.UpdateTx(ctx, tx, cl); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("キャンセル待ちリストを無効化",
		zap.String("class_id", classID),
		zap.Int("deactivated", deactivated),
	)
	return cl, nil
}

// Enqueue は会員をクラスのキャンセル待ちリストに登録する
// 順番はクラス単位のロックの下で「過去に発行された最大値+1」で採番されるため、
// 同時登録でも衝突せず、削除後も番号は再利用されない
func (s *WaitlistService) Enqueue(ctx context.Context, memberID, classID string) (*waitlist.Entry, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	cl, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !cl.WaitlistEnabled {
		return nil, waitlist.ErrWaitlistNotEnabled
	}

	// 有効なエントリは会員×クラスで1件まで
	if _, err := s.waitlistRepo.GetActiveByMemberAndClass(ctx, memberID, classID); err == nil {
		return nil, waitlist.ErrAlreadyOnWaitlist
	} else if !errors.Is(err, waitlist.ErrEntryNotFound) {
		return nil, err
	}

	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx,
			redislock.ClassLockKey(classID), lockTTL, lockMaxRetries, lockRetryDelay)
		if err != nil {
			if errors.Is(err, redislock.ErrLockNotAcquired) {
				return nil, fmt.Errorf("クラスが他のリクエストによって処理中です")
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	position, err := s.waitlistRepo.NextPosition(ctx, tx, classID)
	if err != nil {
		return nil, err
	}
	entry := waitlist.NewEntry(memberID, classID, position)
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := s.waitlistRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("キャンセル待ちリストに登録",
		zap.String("member_id", memberID),
		zap.String("class_id", classID),
		zap.Int("position", position),
	)
	return entry, nil
}

// Withdraw は会員自身によるキャンセル待ちの取り下げ
func (s *WaitlistService) Withdraw(ctx context.Context, memberID, classID string) error {
	entry, err := s.waitlistRepo.GetActiveByMemberAndClass(ctx, memberID, classID)
	if err != nil {
		return err
	}
	entry.Deactivate()

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.waitlistRepo.Update(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("キャンセル待ちを取り下げ",
		zap.String("member_id", memberID),
		zap.String("class_id", classID),
	)
	return nil
}

// ListByClass はクラスの有効なキャンセル待ちエントリを順番昇順で返す
func (s *WaitlistService) ListByClass(ctx context.Context, classID string) ([]*waitlist.Entry, error) {
	if _, err := s.classRepo.GetByID(ctx, classID); err != nil {
		return nil, err
	}
	return s.waitlistRepo.ListActiveByClass(ctx, classID)
}

// NotifyNext はキャンセル待ちの先頭（未通知の最小順番）に空き枠を通知する
// 通知済みで未確認のエントリは枠の提供先が決まっているものとして数えるため、
// 空き枠1つに対して複数の候補へ通知が出ることはない
func (s *WaitlistService) NotifyNext(ctx context.Context, classID string) (*waitlist.Entry, error) {
	// 定員照会から通知状態の更新までをクラス単位のロックで直列化する
	// （スイーパーと手動トリガーが同じクラスを同時に処理しても二重通知しない）
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx,
			redislock.ClassLockKey(classID), lockTTL, lockMaxRetries, lockRetryDelay)
		if err != nil {
			if errors.Is(err, redislock.ErrLockNotAcquired) {
				return nil, fmt.Errorf("クラスが他のリクエストによって処理中です")
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)
	}

	capInfo, err := s.bookings.QueryCapacity(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !capInfo.HasCapacity {
		return nil, nil
	}

	entries, err := s.waitlistRepo.ListActiveByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	outstanding := 0
	var head *waitlist.Entry
	for _, e := range entries {
		// 有効かつ通知済みのエントリは確認待ちの提供中の枠
		if e.Notified {
			outstanding++
			continue
		}
		if head == nil {
			head = e
		}
	}
	if head == nil || capInfo.Free-outstanding <= 0 {
		return nil, nil
	}

	head.Notify(s.confirmWindow)

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.waitlistRepo.Update(ctx, tx, head); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	// 通知送信はファイアアンドフォーゲット。失敗しても状態遷移は巻き戻さない
	if s.notifier != nil {
		if err := s.notifier.NotifySlotAvailable(ctx, head.MemberID, head.ClassID, *head.ConfirmDeadline); err != nil {
			logger.Warn("空き枠通知の送信に失敗",
				zap.String("member_id", head.MemberID),
				zap.String("class_id", head.ClassID),
				zap.Error(err),
			)
		}
	}

	logger.Info("キャンセル待ちの先頭に空き枠を通知",
		zap.String("member_id", head.MemberID),
		zap.String("class_id", head.ClassID),
		zap.Int("position", head.Position),
		zap.Timep("confirm_deadline", head.ConfirmDeadline),
	)
	return head, nil
}

// ConfirmSlot は通知を受けた会員が期限内に枠を確定する
// 定員の再チェックは予約作成側で行われる（通知から確認まで時間が空くため、
// 枠が消えていた場合は ErrSlotNotAvailable を返す）
func (s *WaitlistService) ConfirmSlot(ctx context.Context, memberID, classID string) (*booking.Booking, error) {
	entry, err := s.waitlistRepo.GetActiveByMemberAndClass(ctx, memberID, classID)
	if err != nil {
		// スイープで無効化された直後の確認は「存在しない」ではなく期限切れを返す
		if errors.Is(err, waitlist.ErrEntryNotFound) {
			prev, prevErr := s.waitlistRepo.GetLatestNotifiedByMemberAndClass(ctx, memberID, classID)
			if prevErr == nil && !prev.Confirmed && prev.HasExpired() {
				return nil, waitlist.ErrConfirmationExpired
			}
		}
		return nil, err
	}
	if !entry.Notified {
		return nil, waitlist.ErrNotNotified
	}
	if entry.HasExpired() {
		return nil, waitlist.ErrConfirmationExpired
	}

	b, err := s.bookings.CreateBooking(ctx, CreateBookingInput{
		MemberID: memberID,
		ClassID:  classID,
	})
	if err != nil {
		if errors.Is(err, class.ErrClassFull) {
			return nil, waitlist.ErrSlotNotAvailable
		}
		return nil, err
	}

	entry.Confirm()

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.waitlistRepo.Update(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("キャンセル待ちからの予約を確定",
		zap.String("member_id", memberID),
		zap.String("class_id", classID),
		zap.String("booking_id", b.ID),
	)
	return b, nil
}

// SweepExpired は確認期限を過ぎた通知済みエントリを無効化する
// 無効化したエントリのクラスにまだ空き枠があれば、次の候補へ即座に通知する
// （カスケード）。昇格が会員の操作なしに進むのはここだけ
func (s *WaitlistService) SweepExpired(ctx context.Context) (int, error) {
	entries, err := s.waitlistRepo.ListNotifiedUnconfirmed(ctx)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, entry := range entries {
		if !entry.HasExpired() {
			continue
		}
		entry.Deactivate()

		tx, err := s.txManager.Begin(ctx)
		if err != nil {
			return expired, fmt.Errorf("トランザクション開始に失敗: %w", err)
		}
		if err := s.waitlistRepo.Update(ctx, tx, entry); err != nil {
			tx.Rollback()
			return expired, err
		}
		if err := tx.Commit(); err != nil {
			return expired, fmt.Errorf("コミットに失敗: %w", err)
		}
		expired++

		if m := metrics.Get(); m != nil {
			m.WaitlistExpiredTotal.Inc()
		}
		logger.Info("確認期限切れのエントリを無効化",
			zap.String("member_id", entry.MemberID),
			zap.String("class_id", entry.ClassID),
			zap.Int("position", entry.Position),
		)

		// 次の候補へカスケード
		if next, err := s.NotifyNext(ctx, entry.ClassID); err != nil {
			logger.Error("カスケード通知に失敗", zap.String("class_id", entry.ClassID), zap.Error(err))
		} else if next != nil {
			s.countNotification("sweep")
		}
	}
	return expired, nil
}

// ReconcileCapacityReleases は空き枠のあるキャンセル待ち有効クラスを走査し、
// 空き枠数を上限として未通知の候補に順次通知する
// 状態が変わらなければ2回続けて呼んでも追加の通知は発生しない（冪等）
func (s *WaitlistService) ReconcileCapacityReleases(ctx context.Context) (int, error) {
	classes, err := s.classRepo.ListWaitlistEnabled(ctx)
	if err != nil {
		return 0, err
	}

	notifications := 0
	for _, cl := range classes {
		capInfo, err := s.bookings.QueryCapacity(ctx, cl.ID)
		if err != nil {
			logger.Error("定員照会に失敗", zap.String("class_id", cl.ID), zap.Error(err))
			continue
		}
		// 空き枠数を超えて通知しない
		for i := 0; i < capInfo.Free; i++ {
			entry, err := s.NotifyNext(ctx, cl.ID)
			if err != nil {
				logger.Error("空き枠通知に失敗", zap.String("class_id", cl.ID), zap.Error(err))
				break
			}
			if entry == nil {
				break
			}
			notifications++
			s.countNotification("reconcile")
		}
	}
	return notifications, nil
}

func (s *WaitlistService) countNotification(trigger string) {
	if m := metrics.Get(); m != nil {
		m.WaitlistNotificationsTotal.WithLabelValues(trigger).Inc()
	}
}
