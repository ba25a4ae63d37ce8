package badger

// NewMemoryStores creates an in-memory object store and vector index for
// testing. Caller must close the backend when done.
func NewMemoryStores() (*ObjectStore, *VectorIndex, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}
	return NewObjectStore(backend), NewVectorIndex(backend), backend, nil
}
