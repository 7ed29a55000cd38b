package store

import "errors"

var (
	// ErrStoreUnavailable indicates a transport or remote failure talking
	// to the backing vector store.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrProvisioningTimeout indicates the index did not become ready
	// within the provisioning wait.
	ErrProvisioningTimeout = errors.New("timed out waiting for index to become ready")
)
