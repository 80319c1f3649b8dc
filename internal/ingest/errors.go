package ingest

import "fmt"

// TransportError describes a failed remote call: which operation failed and,
// when a response was received, the status and a short body excerpt.
type TransportError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		if e.Body != "" {
			return fmt.Sprintf("ingest %s: %v: %s", e.Op, e.Err, e.Body)
		}
		return fmt.Sprintf("ingest %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ingest %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
