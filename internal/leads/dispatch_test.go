package leads

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchAfterWaitIsSkipped(t *testing.T) {
	fwd := &recordingForwarder{name: "crm"}
	d := NewDispatcher(discardLogger(), time.Second, fwd)
	ctx := context.Background()

	d.Dispatch(Lead{ID: "DEM-A"})
	require.NoError(t, d.Wait(ctx))
	assert.Equal(t, 1, fwd.count())

	d.Dispatch(Lead{ID: "DEM-B"})
	require.NoError(t, d.Wait(ctx))
	assert.Equal(t, 1, fwd.count())
}

func TestDispatchConcurrentWithWait(t *testing.T) {
	fwd := &recordingForwarder{name: "crm"}
	d := NewDispatcher(discardLogger(), time.Second, fwd)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(Lead{ID: "DEM-X"})
		}()
	}
	require.NoError(t, d.Wait(context.Background()))
	wg.Wait()
	require.NoError(t, d.Wait(context.Background()))

	// every forward that started before shutdown completed
	assert.LessOrEqual(t, fwd.count(), 20)
}
