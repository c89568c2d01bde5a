package gapi

import (
	"context"
	"time"
)

// OperationRecorder receives the outcome of every Google API call the
// session clients make. *instrumentation.Metrics implements it.
type OperationRecorder interface {
	RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration)
}

// RecordOperation reports one finished API call to rec. A nil recorder means
// instrumentation is off and the call is dropped.
func RecordOperation(ctx context.Context, rec OperationRecorder, service, operation string, err error, start time.Time) {
	if rec == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	rec.RecordGoogleAPIOperation(ctx, service, operation, status, time.Since(start))
}
