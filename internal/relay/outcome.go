package relay

// Status of one entry after the per-file upload stage.
type Status string

const (
	StatusStored  Status = "stored"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// FileResult is the tagged result of one per-file upload task.
type FileResult struct {
	Field    string `json:"field"`
	Filename string `json:"filename"`
	Key      string `json:"key,omitempty"`
	URL      string `json:"url,omitempty"`
	Size     int64  `json:"size"`
	Status   Status `json:"status"`
	Err      error  `json:"-"`
}

// FileError pairs an object key with the cause of its failure.
type FileError struct {
	Key   string
	Cause error
}

// Outcome aggregates one request's per-file results in entry order.
type Outcome struct {
	Stored  int
	Skipped int
	Results []FileResult
	Errors  []FileError
}

func newOutcome(results []FileResult) Outcome {
	o := Outcome{Results: results}
	for _, r := range results {
		switch r.Status {
		case StatusStored:
			o.Stored++
		case StatusSkipped:
			o.Skipped++
			o.Errors = append(o.Errors, FileError{Key: r.Key, Cause: r.Err})
		case StatusFailed:
			o.Errors = append(o.Errors, FileError{Key: r.Key, Cause: r.Err})
		}
	}
	return o
}

// Partial reports whether any entry was not stored.
func (o Outcome) Partial() bool {
	return len(o.Errors) > 0
}
