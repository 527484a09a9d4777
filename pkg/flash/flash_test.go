package flash_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formcloud/pkg/flash"
)

func TestMessageHidesAfterDelay(t *testing.T) {
	m := flash.New(flash.WithDelay(20 * time.Millisecond))

	m.Show("Fill in all required fields (*)")
	text, visible := m.Current()
	require.True(t, visible)
	require.Equal(t, "Fill in all required fields (*)", text)

	require.Eventually(t, func() bool {
		_, visible := m.Current()
		return !visible
	}, time.Second, 5*time.Millisecond)
}

func TestShowRestartsTimer(t *testing.T) {
	m := flash.New(flash.WithDelay(200 * time.Millisecond))
	m.Show("first")
	time.Sleep(120 * time.Millisecond)
	m.Show("second")
	time.Sleep(120 * time.Millisecond)

	text, visible := m.Current()
	require.True(t, visible, "second show should reset the timer")
	require.Equal(t, "second", text)
}

func TestHideNotifies(t *testing.T) {
	var (
		mu     sync.Mutex
		events []bool
	)
	m := flash.New(flash.WithDelay(time.Hour), flash.WithOnChange(func(_ string, visible bool) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, visible)
	}))

	m.Show("Error, try later")
	m.Hide()
	m.Hide()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []bool{true, false}, events)
}

func TestDefaultDelay(t *testing.T) {
	require.Equal(t, 2500*time.Millisecond, flash.New().Delay())
}
