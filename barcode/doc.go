package barcode

// Package barcode defines the decode-primitive contract the scan pipeline is
// built around. The interfaces are intentionally small and engine-agnostic so
// decoders can be backed by pure-Go readers, native libraries, or remote
// services without leaking provider-specific concerns into callers.
