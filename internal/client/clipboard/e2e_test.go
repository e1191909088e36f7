package clipboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/clipshare/internal/apitest"
	"github.com/dmitrijs2005/clipshare/internal/client/client"
	"github.com/dmitrijs2005/clipshare/internal/logging"
)

func TestE2E_TwoDevicesConvergeOverHTTP(t *testing.T) {
	ts := apitest.New().Start()
	t.Cleanup(ts.Close)
	ctx := context.Background()

	laptop, err := client.NewHTTPClient(ts.URL, 5*time.Second, logging.Nop())
	require.NoError(t, err)
	_, err = laptop.SignUp(ctx, "alice", "Abcdef1!")
	require.NoError(t, err)

	phone, err := client.NewHTTPClient(ts.URL, 5*time.Second, logging.Nop())
	require.NoError(t, err)
	_, err = phone.SignIn(ctx, "alice", "Abcdef1!")
	require.NoError(t, err)

	s, err := laptop.CreateSession(ctx, "shared")
	require.NoError(t, err)

	interval := 20 * time.Millisecond
	a := New(laptop, interval, logging.Nop())
	b := New(phone, interval, logging.Nop())
	a.Activate(ctx, s.ID)
	b.Activate(ctx, s.ID)
	t.Cleanup(a.Deactivate)
	t.Cleanup(b.Deactivate)

	require.NoError(t, a.Push(ctx, "X"))
	require.Eventually(t, func() bool { return b.Snapshot().Text == "X" }, 2*time.Second, time.Millisecond)

	// a second write within the same second still gets a new token
	require.NoError(t, b.Push(ctx, "Y"))
	require.Eventually(t, func() bool { return a.Snapshot().Text == "Y" }, 2*time.Second, time.Millisecond)

	// once both settled, further polls are 304s and nothing re-renders
	require.Eventually(t, func() bool {
		return a.Snapshot().LastModified != "" && a.Snapshot().LastModified == b.Snapshot().LastModified
	}, 2*time.Second, time.Millisecond)
	rendersA, rendersB := a.Snapshot().Renders, b.Snapshot().Renders
	time.Sleep(10 * interval)
	assert.Equal(t, rendersA, a.Snapshot().Renders)
	assert.Equal(t, rendersB, b.Snapshot().Renders)
	assert.Empty(t, a.Snapshot().Alert)
}
