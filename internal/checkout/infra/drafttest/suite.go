// Package drafttest is the behaviour every checkout DraftStore must share.
package drafttest

import (
	"context"
	"testing"
	"time"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Run(t *testing.T, store app.DraftStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing draft", func(t *testing.T) {
		_, err := store.Load(ctx, "nobody")
		assert.ErrorIs(t, err, app.ErrDraftNotFound)
	})

	t.Run("save then load", func(t *testing.T) {
		in := domain.Draft{
			Form: domain.FormData{
				Email:   "jeanne@example.fr",
				City:    "Marseille",
				Country: "France",
			},
			Step:      domain.StepShipping,
			UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}
		require.NoError(t, store.Save(ctx, "u-1", in))

		got, err := store.Load(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, in.Form, got.Form)
		assert.Equal(t, in.Step, got.Step)
		assert.True(t, in.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %s != %s", in.UpdatedAt, got.UpdatedAt)
	})

	t.Run("save overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "u-2", domain.Draft{Step: domain.StepContactAddress, UpdatedAt: time.Now().UTC()}))
		require.NoError(t, store.Save(ctx, "u-2", domain.Draft{
			Form:      domain.FormData{PaymentMethod: domain.PaymentMethodCard},
			Step:      domain.StepPayment,
			UpdatedAt: time.Now().UTC(),
		}))

		got, err := store.Load(ctx, "u-2")
		require.NoError(t, err)
		assert.Equal(t, domain.StepPayment, got.Step)
		assert.Equal(t, domain.PaymentMethodCard, got.Form.PaymentMethod)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "u-3", domain.Draft{Step: domain.StepShipping, UpdatedAt: time.Now().UTC()}))
		require.NoError(t, store.Delete(ctx, "u-3"))

		_, err := store.Load(ctx, "u-3")
		assert.ErrorIs(t, err, app.ErrDraftNotFound)

		// deleting twice is fine
		require.NoError(t, store.Delete(ctx, "u-3"))
	})
}
