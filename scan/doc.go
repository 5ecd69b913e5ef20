package scan

// Package scan implements the multi-stage code recovery pipeline for scanned
// document pages. One unreliable decode primitive is turned into a robust,
// bounded-cost per-page procedure: a low-scale detection pass, padded
// region-of-interest construction, a scale/rotation retry ladder, and a
// deduplicating aggregator with early-exit semantics. The pipeline is
// strictly sequential within a page and fully reentrant across pages.
