package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/rbxsync/rbxsync/pkg/cloud"
	"github.com/rbxsync/rbxsync/pkg/errors"
	"github.com/rbxsync/rbxsync/pkg/logging"
)

// upload submits a binary asset and resolves the returned operation to a
// terminal state, polling at a fixed interval up to the configured attempt
// bound. The pipeline touches no local state, so a run abandoned mid-poll
// is simply retried from scratch next time.
func (r *Reconciler) upload(ctx context.Context, path, name string) (int64, error) {
	logging.Info().Str("path", path).Str("name", name).Msg("Uploading icon")

	op, err := r.cfg.Remote.UploadAsset(ctx, path, name)
	if err != nil {
		return 0, err
	}

	for attempt := 0; ; attempt++ {
		switch op.Status {
		case cloud.OperationCompleted:
			if op.AssetID == 0 {
				return 0, errors.NewUploadError(path, "no identifier returned", nil)
			}
			logging.Debug().Int64("asset_id", op.AssetID).Str("path", path).Msg("Icon uploaded")
			return op.AssetID, nil

		case cloud.OperationFailed:
			return 0, errors.NewUploadError(path, op.Message, nil)
		}

		if attempt >= r.cfg.PollMaxAttempts {
			total := time.Duration(r.cfg.PollMaxAttempts) * r.cfg.PollInterval
			return 0, errors.NewTimeoutError("upload "+path, total.String(),
				fmt.Sprintf("%d poll attempts exhausted", r.cfg.PollMaxAttempts))
		}

		select {
		case <-ctx.Done():
			return 0, errors.WrapResource("upload", "asset", path, errors.ErrCanceled)
		case <-time.After(r.cfg.PollInterval):
		}

		op, err = r.cfg.Remote.PollOperation(ctx, op.Path)
		if err != nil {
			return 0, err
		}
	}
}
