package domain

import "errors"

var (
	// ErrNotFound signals an expected-absent resource, such as the input
	// file for a day with no recorded sales. Callers treat it as a skip,
	// not a failure.
	ErrNotFound = errors.New("not found")

	// ErrEmptyBatch signals that a stage produced no usable rows. Downstream
	// stages are skipped, not failed.
	ErrEmptyBatch = errors.New("empty batch")

	// ErrEmptyResult signals that the report query matched no rows; output
	// sinks must not be invoked.
	ErrEmptyResult = errors.New("empty result")

	// ErrDuplicateKey signals a primary-key violation on load: the row's
	// order_id is already present in the fact table.
	ErrDuplicateKey = errors.New("duplicate order id")
)
