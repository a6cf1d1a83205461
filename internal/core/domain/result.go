package domain

// ConversionResult is what a conversion worker hands back to the aggregator.
// Workers never touch shared state; the aggregator folds Delta and Asset in.
type ConversionResult struct {
	// Source is the cache key of the converted input.
	Source string
	// Asset is the exported asset name, set by the animation exporter on success or skip.
	Asset string
	// Skipped is true when the content hash matched and no tool ran.
	Skipped bool
	// Errors holds the soft failures of this conversion, in the order they occurred.
	Errors []string
	// Delta holds the cache entries to merge on success.
	Delta Checksums
}

// Failed reports whether the conversion recorded any error.
func (r ConversionResult) Failed() bool {
	return len(r.Errors) > 0
}

// FileErrors groups the messages recorded against one file during a stage.
type FileErrors struct {
	File   string
	Errors []string
}

// StageResult summarizes one pipeline stage.
type StageResult struct {
	Stage     string
	Processed int
	Failures  []FileErrors
}

// Record appends msg to the failures of file, keeping one entry per file.
func (s *StageResult) Record(file, msg string) {
	for i := range s.Failures {
		if s.Failures[i].File == file {
			s.Failures[i].Errors = append(s.Failures[i].Errors, msg)
			return
		}
	}
	s.Failures = append(s.Failures, FileErrors{File: file, Errors: []string{msg}})
}

// Failed reports whether any file recorded an error.
func (s *StageResult) Failed() bool {
	return len(s.Failures) > 0
}

// ErrorCount returns the number of messages across all files.
func (s *StageResult) ErrorCount() int {
	n := 0
	for _, f := range s.Failures {
		n += len(f.Errors)
	}
	return n
}
