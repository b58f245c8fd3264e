package answering

import "fmt"

// IndexError reports an unavailable or misbehaving similarity-search
// backend. It is fatal to the batch and not retried here.
type IndexError struct {
	Err error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("similarity search failed: %v", e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

// GenerationError reports a failed or malformed grounded-completion batch.
// There is no fallback for generation; the whole batch fails.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("grounded generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("grounded generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
