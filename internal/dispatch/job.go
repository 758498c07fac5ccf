package dispatch

import (
	"context"
	"fmt"

	pkgerrors "github.com/ducvu/wasteflow-backend/pkg/errors"
	"github.com/ducvu/wasteflow-backend/pkg/logger"
)

// RoundJob runs one orchestration round on the worker cadence. Manual triggers
// through the API share the same round lock, so overlapping invocations skip
// instead of colliding.
type RoundJob struct {
	svc  Service
	logg *logger.Logger
}

// NewRoundJob builds the scheduled round runner.
func NewRoundJob(svc Service, logg *logger.Logger) (*RoundJob, error) {
	if svc == nil {
		return nil, fmt.Errorf("dispatch service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &RoundJob{svc: svc, logg: logg}, nil
}

// Name identifies the job in worker logs and metrics.
func (j *RoundJob) Name() string {
	return "dispatch-round"
}

// Run executes one round. A concurrent round is a skip, not a failure.
func (j *RoundJob) Run(ctx context.Context) error {
	summary, err := j.svc.RunRound(ctx)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
			j.logg.Info(ctx, "dispatch round already in flight; skipping")
			return nil
		}
		return err
	}

	ctx = j.logg.WithFields(ctx, map[string]any{
		"sequence":       summary.Sequence,
		"dynamic":        summary.Dynamic,
		"no_op":          summary.NoOp,
		"routes_created": summary.RoutesCreated,
		"routes_updated": summary.RoutesUpdated,
	})
	j.logg.Info(ctx, "dispatch round finished")
	return nil
}
