package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponService_Validate(t *testing.T) {
	env := newTestEnv(t)
	env.addCoupon(t, "SAVE10", 10, true)
	env.addCoupon(t, "OLD", 50, false)

	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{name: "empty", code: "   ", wantErr: ErrCouponEmpty},
		{name: "unknown", code: "NOPE", wantErr: ErrCouponNotFound},
		{name: "inactive", code: "OLD", wantErr: ErrCouponInactive},
		{name: "normalized", code: "  save10 ", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := env.coupons.Validate(context.Background(), tt.code)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "SAVE10", c.Code)
			assert.InDelta(t, 10.0, c.DiscountPercent, 0.0001)
		})
	}
}

func TestCouponService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.coupons.Create(ctx, " lunch ", 15, true)
	require.NoError(t, err)
	assert.Equal(t, "LUNCH", c.Code)

	_, err = env.coupons.Create(ctx, "LUNCH", 20, true)
	require.ErrorIs(t, err, ErrCouponExists)

	_, err = env.coupons.Create(ctx, "TOO_MUCH", 101, true)
	require.ErrorIs(t, err, ErrCouponPercent)

	_, err = env.coupons.Create(ctx, "NEG", -1, true)
	require.ErrorIs(t, err, ErrCouponPercent)

	_, err = env.coupons.Create(ctx, "", 10, true)
	require.ErrorIs(t, err, ErrCouponEmpty)
}

func TestCouponService_ToggleAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.coupons.Create(ctx, "SAVE10", 10, true)
	require.NoError(t, err)

	require.NoError(t, env.coupons.SetActive(ctx, c.ID, false))
	_, err = env.coupons.Validate(ctx, "SAVE10")
	require.ErrorIs(t, err, ErrCouponInactive)

	require.NoError(t, env.coupons.SetActive(ctx, c.ID, true))
	_, err = env.coupons.Validate(ctx, "SAVE10")
	require.NoError(t, err)

	require.NoError(t, env.coupons.Delete(ctx, c.ID))
	require.ErrorIs(t, env.coupons.Delete(ctx, c.ID), ErrCouponNotFound)
	require.ErrorIs(t, env.coupons.SetActive(ctx, c.ID, true), ErrCouponNotFound)

	list, err := env.coupons.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(ErrEmptyCart))
	assert.Equal(t, KindValidation, KindOf(ErrInvalidItem))
	assert.Equal(t, KindNotFound, KindOf(ErrOrderNotFound))
	assert.Equal(t, KindValidation, KindOf(fmt.Errorf("%w: %w", ErrInvalidCoupon, ErrCouponNotFound)))
	assert.Equal(t, KindTransient, KindOf(storeErr("get", assert.AnError)))
	assert.Equal(t, KindUnauthorized, KindOf(ErrInvalidCredentials))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
}
