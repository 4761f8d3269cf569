package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{"po": TypePO, "VO": TypeVO, " wc ": TypeWC} {
		got, err := ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "xyz", "purchase_order"} {
		_, err := ParseType(in)
		assert.ErrorIs(t, err, ErrUnknownType, in)
	}
}

func TestTypeMapping(t *testing.T) {
	assert.Equal(t, "purchase_orders", TypePO.Collection())
	assert.Equal(t, "variation_orders", TypeVO.Collection())
	assert.Equal(t, "work_contracts", TypeWC.Collection())

	assert.Equal(t, "poNumber", TypePO.NumberField())
	assert.Equal(t, "voNumber", TypeVO.NumberField())
	assert.Equal(t, "contractNumber", TypeWC.NumberField())

	assert.True(t, TypePO.Notifies())
	assert.True(t, TypeVO.Notifies())
	assert.False(t, TypeWC.Notifies())
}

func TestFromMap(t *testing.T) {
	approvedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	d := FromMap(TypeVO, "vo-1", map[string]any{
		"voNumber":    "VO-2025-001",
		"title":       "Extra rebar",
		"projectId":   "p1",
		"status":      "approved",
		"totalAmount": int64(-12000),
		"approvedAt":  approvedAt,
		"approvedBy":  "uid-pm",
	})

	assert.Equal(t, "VO-2025-001", d.Number)
	assert.Equal(t, -12000.0, d.TotalAmount)
	assert.True(t, d.Approved())
	assert.False(t, d.Approvable())
	require.NotNil(t, d.ApprovedAt)
	assert.Equal(t, approvedAt, *d.ApprovedAt)

	blank := FromMap(TypeWC, "wc-1", map[string]any{})
	assert.Equal(t, StatusDraft, blank.Status)
	assert.True(t, blank.Approvable())
	assert.Nil(t, blank.ApprovedAt)
}
