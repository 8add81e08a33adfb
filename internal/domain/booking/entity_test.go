package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBooking(t *testing.T) {
	b := NewBooking("member-123", "class-456")

	assert.Equal(t, "member-123", b.MemberID)
	assert.Equal(t, "class-456", b.ClassID)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Nil(t, b.CancelledAt)
	assert.False(t, b.BookedAt.IsZero())
}

func TestBooking_IsLive(t *testing.T) {
	t.Run("確定済みの予約は有効", func(t *testing.T) {
		b := NewBooking("member-123", "class-456")
		assert.True(t, b.IsLive())
	})

	t.Run("キャンセル済みの予約は無効", func(t *testing.T) {
		b := NewBooking("member-123", "class-456")
		require.NoError(t, b.Cancel())
		assert.False(t, b.IsLive())
	})
}

func TestBooking_Cancel(t *testing.T) {
	t.Run("有効な予約をキャンセルできる", func(t *testing.T) {
		b := NewBooking("member-123", "class-456")

		err := b.Cancel()

		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, b.Status)
		assert.NotNil(t, b.CancelledAt)
	})

	t.Run("キャンセル済みの予約は再キャンセルできない", func(t *testing.T) {
		b := NewBooking("member-123", "class-456")
		require.NoError(t, b.Cancel())
		firstCancelledAt := *b.CancelledAt

		err := b.Cancel()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBookingAlreadyCancelled)
		// キャンセル時刻は最初の操作から変わらない
		assert.Equal(t, firstCancelledAt, *b.CancelledAt)
	})
}

func TestBooking_Validate(t *testing.T) {
	tests := []struct {
		name        string
		booking     *Booking
		expectedErr error
	}{
		{
			name:        "有効な予約",
			booking:     &Booking{MemberID: "member-123", ClassID: "class-456"},
			expectedErr: nil,
		},
		{
			name:        "会員IDが空",
			booking:     &Booking{MemberID: "", ClassID: "class-456"},
			expectedErr: ErrMemberIDRequired,
		},
		{
			name:        "クラスIDが空",
			booking:     &Booking{MemberID: "member-123", ClassID: ""},
			expectedErr: ErrClassIDRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.booking.Validate()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
