package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockTimeFromForm(t *testing.T) {
	tests := []struct {
		name string
		form LockTimeForm
		in   uint32
		want uint32
	}{
		{"raw height", LockTimeRaw, 100, 100},
		{"raw time", LockTimeRaw, 1_700_000_000, 1_700_000_000},
		{"height kept", LockTimeHeight, 499_999_999, 499_999_999},
		{"height from time", LockTimeHeight, 500_000_000, 0},
		{"hex", LockTimeHex, 0xdeadbeef, 0xdeadbeef},
		{"timestamp kept", LockTimeTimestamp, 500_000_000, 500_000_000},
		{"timestamp from height", LockTimeTimestamp, 12, 0},
		{"zero", LockTimeZero, 0xffffffff, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LockTimeFromForm(tc.form, tc.in))
		})
	}
}

func TestIsHeightLockTime(t *testing.T) {
	assert.True(t, IsHeightLockTime(0))
	assert.True(t, IsHeightLockTime(LockTimeThreshold-1))
	assert.False(t, IsHeightLockTime(LockTimeThreshold))
	assert.False(t, IsHeightLockTime(0xffffffff))
}

func TestRandomLockTime_CoversForms(t *testing.T) {
	src := seeded(20)
	var zero, height, timestamp int
	for i := 0; i < 500; i++ {
		switch v := RandomLockTime(src); {
		case v == 0:
			zero++
		case IsHeightLockTime(v):
			height++
		default:
			timestamp++
		}
	}
	assert.Positive(t, zero)
	assert.Positive(t, height)
	assert.Positive(t, timestamp)
}

func TestRandomVersion_Distribution(t *testing.T) {
	src := seeded(21)
	var v1, v2, other int
	for i := 0; i < 1000; i++ {
		switch RandomVersion(src) {
		case 1:
			v1++
		case 2:
			v2++
		default:
			other++
		}
	}
	// Roughly 25/25/50; bounds are loose.
	assert.InDelta(t, 250, v1, 100)
	assert.InDelta(t, 250, v2, 100)
	assert.InDelta(t, 500, other, 120)
}
