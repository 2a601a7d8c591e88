package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateColor(t *testing.T) {
	assert.NoError(t, ValidateColor("ff8800"))
	assert.NoError(t, ValidateColor("0"))
	assert.NoError(t, ValidateColor("ABCDEF"))

	assert.Error(t, ValidateColor(""))
	assert.Error(t, ValidateColor("ff88001")) // 7桁
	assert.Error(t, ValidateColor("gggggg"))
	assert.Error(t, ValidateColor("#ff8800"))
}

func TestDateWindowBounds_Today(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// UTCの22時 = 東京では翌日の7時。「今日」はユーザーのタイムゾーンで決まる。
	now := time.Date(2026, 3, 15, 22, 0, 0, 0, time.UTC)

	w := &DateWindow{Kind: DateWindowToday}
	from, to, bounded := w.Bounds(now, tokyo)
	require.True(t, bounded)
	assert.True(t, from.IsZero(), "下限なしのはず")
	assert.Equal(t, time.Date(2026, 3, 17, 0, 0, 0, 0, tokyo), to)
}

func TestDateWindowBounds_TomorrowAndWeek(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	w := &DateWindow{Kind: DateWindowTomorrow}
	_, to, bounded := w.Bounds(now, time.UTC)
	require.True(t, bounded)
	assert.Equal(t, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), to)

	// weekは7日後の終わりまで
	w = &DateWindow{Kind: DateWindowWeek}
	_, to, bounded = w.Bounds(now, time.UTC)
	require.True(t, bounded)
	assert.Equal(t, time.Date(2026, 3, 23, 0, 0, 0, 0, time.UTC), to)
}

func TestDateWindowBounds_OnlyOneDay(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	w := &DateWindow{Kind: DateWindowToday, OnlyOneDay: true}
	from, to, bounded := w.Bounds(now, time.UTC)
	require.True(t, bounded)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), to)
}

func TestDateWindowBounds_Literal(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	w := &DateWindow{
		Kind:    DateWindowLiteral,
		Literal: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	from, to, bounded := w.Bounds(now, time.UTC)
	require.True(t, bounded)
	assert.True(t, from.IsZero())
	assert.Equal(t, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), to)
}

func TestDateWindowBounds_NoDeadline(t *testing.T) {
	w := &DateWindow{Kind: DateWindowNoDeadline}
	_, _, bounded := w.Bounds(time.Now(), time.UTC)
	assert.False(t, bounded)
}
