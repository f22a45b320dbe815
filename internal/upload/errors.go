package upload

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUploadInProgress is returned when Upload is called while another upload
// is still running on the same orchestrator.
var ErrUploadInProgress = errors.New("upload already in progress")

// ValidationError reports a missing or malformed input field. It is raised
// before any remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FormatError reports an item image whose media type is not allowed.
type FormatError struct {
	Region    int
	MediaType string
}

func (e *FormatError) Error() string {
	mediaType := e.MediaType
	if mediaType == "" {
		mediaType = "unknown"
	}
	return fmt.Sprintf("region %d: item image media type %s is not allowed", e.Region, mediaType)
}

// Step names the remote write that failed.
type Step string

const (
	StepCompress    Step = "compress"
	StepUploadBlob  Step = "upload_blob"
	StepResolveURL  Step = "resolve_url"
	StepPutItem     Step = "put_item"
	StepPutImage    Step = "put_image"
	StepCommitItems Step = "commit_items"
	StepCommitImage Step = "commit_image"
	StepPropagate   Step = "propagate"
)

// RemoteWriteError wraps a collaborator failure. Region is -1 when the
// failure is not tied to one region.
type RemoteWriteError struct {
	Step   Step
	Region int
	Err    error
}

func (e *RemoteWriteError) Error() string {
	if e.Region >= 0 {
		return fmt.Sprintf("%s (region %d): %v", e.Step, e.Region, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}

// PartialPropagationError reports that one or more back-reference merges
// failed. Result holds every target outcome, including the successes.
type PartialPropagationError struct {
	Result PropagationResult
}

func (e *PartialPropagationError) Error() string {
	failed := e.Result.Failed()
	parts := make([]string, 0, len(failed))
	for _, target := range failed {
		parts = append(parts, fmt.Sprintf("%s/%s: %v", target.Collection, target.ID, target.Err))
	}
	return fmt.Sprintf("back-reference propagation failed for %d of %d targets: %s",
		len(failed), len(e.Result.Targets), strings.Join(parts, "; "))
}

// Unwrap exposes the individual merge failures to errors.Is and errors.As.
func (e *PartialPropagationError) Unwrap() []error {
	failed := e.Result.Failed()
	errs := make([]error, 0, len(failed))
	for _, target := range failed {
		errs = append(errs, target.Err)
	}
	return errs
}
