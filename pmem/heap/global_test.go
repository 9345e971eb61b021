package heap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// resetDefault tears the process-wide instance down between tests.
func resetDefault(t *testing.T) {
	t.Helper()
	defaultMu.Lock()
	h := defaultHeap
	defaultHeap = nil
	defaultMu.Unlock()
	if h != nil {
		require.NoError(t, h.Close())
	}
	t.Cleanup(func() { resetDefaultQuiet() })
}

func resetDefaultQuiet() {
	defaultMu.Lock()
	h := defaultHeap
	defaultHeap = nil
	defaultMu.Unlock()
	if h != nil {
		h.Close() //nolint:errcheck // test teardown
	}
}

func Test_UseBeforeInitFails(t *testing.T) {
	resetDefault(t)

	_, err := Alloc(64, 1)
	require.ErrorIs(t, err, ErrNotInitialized)
	require.ErrorIs(t, Free(Handle(1)), ErrNotInitialized)
	_, err = Bytes(Handle(1))
	require.ErrorIs(t, err, ErrNotInitialized)
	_, err = Default()
	require.ErrorIs(t, err, ErrNotInitialized)
}

func Test_InitOnce(t *testing.T) {
	resetDefault(t)

	require.NoError(t, Init(Config{Size: 1 << 20}))

	first, err := Default()
	require.NoError(t, err)

	// A second init is rejected and must not reset state.
	hd, err := Alloc(64, 1)
	require.NoError(t, err)

	require.ErrorIs(t, Init(Config{Size: 2 << 20}), ErrAlreadyInitialized)

	again, err := Default()
	require.NoError(t, err)
	require.Same(t, first, again)

	// The earlier allocation is still live and freeable.
	require.NoError(t, Free(hd))
}

func Test_InitRaceSingleWinner(t *testing.T) {
	resetDefault(t)

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = Init(Config{Size: 1 << 20})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, ErrAlreadyInitialized)
		}
	}
	require.Equal(t, 1, winners)
}
