package heap

import "sync"

// The process-wide heap. Initialization is guarded so exactly one caller
// constructs it; everyone after that shares the same instance.
var (
	defaultMu   sync.Mutex
	defaultHeap *Heap
)

// Init constructs the process-wide heap. Exactly one call succeeds; every
// later call fails with ErrAlreadyInitialized and leaves the existing
// instance untouched.
func Init(cfg Config) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultHeap != nil {
		return ErrAlreadyInitialized
	}
	h, err := New(cfg)
	if err != nil {
		return err
	}
	defaultHeap = h
	return nil
}

// Default returns the process-wide heap.
func Default() (*Heap, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultHeap == nil {
		return nil, ErrNotInitialized
	}
	return defaultHeap, nil
}

// Alloc allocates from the process-wide heap.
func Alloc(size, align uint64) (Handle, error) {
	h, err := Default()
	if err != nil {
		return 0, err
	}
	return h.Alloc(size, align)
}

// Free returns an allocation to the process-wide heap.
func Free(hd Handle) error {
	h, err := Default()
	if err != nil {
		return err
	}
	h.Free(hd)
	return nil
}

// Bytes returns the usable extent behind hd on the process-wide heap.
func Bytes(hd Handle) ([]byte, error) {
	h, err := Default()
	if err != nil {
		return nil, err
	}
	return h.Bytes(hd), nil
}
