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
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/plan"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/transaction"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/infrastructure/rabbitmq"
	redislock "github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/infrastructure/redis"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/pkg/logger"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/pkg/metrics"
)

const (
	lockTTL        = 10 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 100 * time.Millisecond

	// 空き枠数キャッシュのTTL。書き込み時に必ず無効化されるため短めで十分
	capacityCacheTTL = 30 * time.Second
)

// CapacityCache はクラスの有効予約数キャッシュのインターフェース
type CapacityCache interface {
	GetOccupied(ctx context.Context, classID string) (int, error)
	SetOccupied(ctx context.Context, classID string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, classID string) error
}

// CapacityEventPublisher は空き枠変動イベントの発行インターフェース
type CapacityEventPublisher interface {
	PublishCapacityChanged(ctx context.Context, event rabbitmq.CapacityChangedEvent) error
}

// CapacityInfo はクラスの定員照会結果
type CapacityInfo struct {
	Capacity    int
	Occupied    int
	Free        int
	HasCapacity bool
}

// BookingService は予約の作成・キャンセルと定員台帳を管理する
// 定員チェックと予約作成はクラス単位の分散ロック+トランザクションで
// 直列化され、同一クラスの最後の1枠を同時に取り合っても片方しか成功しない
type BookingService struct {
	txManager     transaction.Manager
	bookingRepo   booking.Repository
	classRepo     class.Repository
	memberRepo    member.Repository
	planRepo      plan.Repository
	lockManager   redislock.Manager
	capacityCache CapacityCache
	publisher     CapacityEventPublisher
}

// NewBookingService は新しいBookingServiceを作成する
// lockManager・capacityCache・publisher はnil可（テスト・縮退運転用）
func NewBookingService(
	txm transaction.Manager,
	br booking.Repository,
	cr class.Repository,
	mr member.Repository,
	pr plan.Repository,
	lm redislock.Manager,
	cache CapacityCache,
	pub CapacityEventPublisher,
) *BookingService {
	return &BookingService{
		txManager:     txm,
		bookingRepo:   br,
		classRepo:     cr,
		memberRepo:    mr,
		planRepo:      pr,
		lockManager:   lm,
		capacityCache: cache,
		publisher:     pub,
	}
}

type CreateBookingInput struct {
	MemberID string
	ClassID  string
}

// CreateBooking は会員のクラス予約を作成する
// 事前条件は順に検証され、いずれかを満たさない場合は状態を変更せずに
// 対応するドメインエラーを返す
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	// 会員の存在と有効プラン
	m, err := s.memberRepo.GetByID(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if !m.HasActivePlan() {
		return nil, member.ErrNoActivePlan
	}

	// クラスの存在と開講状態
	cl, err := s.classRepo.GetByID(ctx, input.ClassID)
	if err != nil {
		return nil, err
	}
	if !cl.Active {
		return nil, class.ErrClassInactive
	}

	// プランにクラスが含まれるか
	included, err := s.planRepo.IncludesClass(ctx, *m.PlanID, cl.ID)
	if err != nil {
		return nil, fmt.Errorf("プラン対象クラスの確認に失敗: %w", err)
	}
	if !included {
		return nil, member.ErrClassNotInPlan
	}

	// クラス単位の分散ロックで定員チェックと作成を直列化
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx,
			redislock.ClassLockKey(cl.ID), lockTTL, lockMaxRetries, lockRetryDelay)
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

	// 定員チェック（test-and-set: 同一トランザクション内で件数確認と作成を行う）
	occupied, err := s.bookingRepo.CountLiveByClassTx(ctx, tx, cl.ID)
	if err != nil {
		return nil, err
	}
	if occupied >= cl.Capacity {
		s.countBooking("book", "rejected")
		return nil, class.ErrClassFull
	}

	// 同一クラスへの有効な予約は会員ごとに1件まで
	if _, err := s.bookingRepo.GetLiveByMemberAndClass(ctx, input.MemberID, cl.ID); err == nil {
		s.countBooking("book", "rejected")
		return nil, booking.ErrDuplicateBooking
	} else if !errors.Is(err, booking.ErrBookingNotFound) {
		return nil, err
	}

	b := booking.NewBooking(input.MemberID, cl.ID)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.countBooking("book", "success")
	s.afterCapacityChange(ctx, cl, occupied+1)
	return b, nil
}

// CancelBooking は予約をキャンセルし、空き枠を1つ解放する
// 解放された枠はスイーパーの次回実行時にキャンセル待ちの先頭へ提供される
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.Cancel(); err != nil {
		s.countBooking("cancel", "rejected")
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.countBooking("cancel", "success")

	cl, err := s.classRepo.GetByID(ctx, b.ClassID)
	if err == nil {
		occupied, countErr := s.bookingRepo.CountLiveByClass(ctx, b.ClassID)
		if countErr == nil {
			s.afterCapacityChange(ctx, cl, occupied)
		}
	}
	return b, nil
}

// GetBooking はIDから予約を取得する
func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// ListMemberBookings は会員の予約一覧を取得する
func (s *BookingService) ListMemberBookings(ctx context.Context, memberID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.bookingRepo.ListByMember(ctx, memberID, limit, offset)
}

// ListClassBookings はクラスの予約一覧を取得する
func (s *BookingService) ListClassBookings(ctx context.Context, classID string) ([]*booking.Booking, error) {
	if _, err := s.classRepo.GetByID(ctx, classID); err != nil {
		return nil, err
	}
	return s.bookingRepo.ListByClass(ctx, classID)
}

// QueryCapacity はクラスの定員・占有・空き枠を照会する（純粋な読み取り）
func (s *BookingService) QueryCapacity(ctx context.Context, classID string) (*CapacityInfo, error) {
	cl, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}

	occupied, err := s.occupiedCount(ctx, classID)
	if err != nil {
		return nil, err
	}

	free := cl.FreeSlots(occupied)
	return &CapacityInfo{
		Capacity:    cl.Capacity,
		Occupied:    occupied,
		Free:        free,
		HasCapacity: free > 0,
	}, nil
}

// occupiedCount はキャッシュ優先で有効予約数を取得する
func (s *BookingService) occupiedCount(ctx context.Context, classID string) (int, error) {
	if s.capacityCache != nil {
		if count, err := s.capacityCache.GetOccupied(ctx, classID); err == nil {
			return count, nil
		}
	}
	count, err := s.bookingRepo.CountLiveByClass(ctx, classID)
	if err != nil {
		return 0, err
	}
	if s.capacityCache != nil {
		if err := s.capacityCache.SetOccupied(ctx, classID, count, capacityCacheTTL); err != nil {
			logger.Warn("空き枠キャッシュの保存に失敗", zap.String("class_id", classID), zap.Error(err))
		}
	}
	return count, nil
}

// afterCapacityChange はキャッシュ無効化・メトリクス更新・イベント発行を行う
// いずれの失敗も予約の状態遷移には影響しない
func (s *BookingService) afterCapacityChange(ctx context.Context, cl *class.Class, occupied int) {
	if s.capacityCache != nil {
		if err := s.capacityCache.Invalidate(ctx, cl.ID); err != nil {
			logger.Warn("空き枠キャッシュの無効化に失敗", zap.String("class_id", cl.ID), zap.Error(err))
		}
	}

	if m := metrics.Get(); m != nil {
		m.ClassOccupancy.WithLabelValues(cl.ID).Set(float64(occupied))
	}

	if s.publisher != nil {
		event := rabbitmq.CapacityChangedEvent{
			ClassID:   cl.ID,
			Capacity:  cl.Capacity,
			Occupied:  occupied,
			Free:      cl.FreeSlots(occupied),
			ChangedAt: time.Now(),
		}
		if err := s.publisher.PublishCapacityChanged(ctx, event); err != nil {
			logger.Warn("空き枠変動イベントの発行に失敗", zap.String("class_id", cl.ID), zap.Error(err))
		}
	}
}

func (s *BookingService) countBooking(operation, status string) {
	if m := metrics.Get(); m != nil {
		m.BookingsTotal.WithLabelValues(operation, status).Inc()
	}
}
