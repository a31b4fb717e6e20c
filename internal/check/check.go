// Package check validates catalog connections concurrently and records
// the outcome on each row.
package check

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/models"
	"github.com/ovsov/mphub/internal/vault"
)

const defaultLimit = 4

// Prober validates an opened credential against its marketplace.
// Tests and future transport code supply their own; a nil prober means
// only local invariants are checked.
type Prober func(ctx context.Context, conn models.ConnectionView, token []byte) error

// Result is the outcome of checking one connection
type Result struct {
	Connection models.ConnectionView
	Status     models.Status
	Skipped    bool
	Err        error
	Duration   time.Duration
}

// Summary aggregates a catalog check run
type Summary struct {
	Results   []Result
	Checked   int
	Healthy   int
	Broken    int
	Skipped   int
	StartedAt time.Time
}

// Runner executes connection checks against the catalog
type Runner struct {
	DB      *db.DB
	Vault   *vault.Vault
	Prober  Prober
	Timeout time.Duration
	Limit   int
}

// Run checks every connection matching opts. Results keep the catalog
// listing order regardless of completion order. Outcomes are persisted
// on the connection rows unless the connection was skipped.
func (r *Runner) Run(ctx context.Context, opts db.ListConnectionsOptions) (*Summary, error) {
	views, err := r.DB.ListConnectionViews(opts)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Results:   make([]Result, len(views)),
		StartedAt: time.Now().UTC(),
	}

	limit := r.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, v := range views {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			summary.Results[i] = r.checkOne(ctx, v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range summary.Results {
		if res.Skipped {
			summary.Skipped++
			continue
		}
		summary.Checked++
		if res.Status == models.StatusBroken {
			summary.Broken++
		} else {
			summary.Healthy++
		}
		if err := r.DB.TouchConnectionChecked(res.Connection.ID, res.Status, summary.StartedAt); err != nil {
			return nil, fmt.Errorf("record check result: %w", err)
		}
	}

	return summary, nil
}

// checkOne validates a single connection. Revoked connections are
// skipped. A connection that passes its probe keeps its prior status,
// except broken ones which recover to active.
func (r *Runner) checkOne(ctx context.Context, v models.ConnectionView) Result {
	start := time.Now()
	res := Result{Connection: v, Status: v.Status}

	if v.Status == models.StatusRevoked {
		res.Skipped = true
		return res
	}

	fail := func(err error) Result {
		res.Status = models.StatusBroken
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	cred, err := r.DB.GetCredential(v.ID)
	if err != nil {
		return fail(fmt.Errorf("no credential stored"))
	}

	token, err := r.Vault.Open(cred.Ciphertext)
	if err != nil {
		return fail(fmt.Errorf("credential unreadable: %w", err))
	}

	if r.Prober != nil {
		probeCtx := ctx
		if r.Timeout > 0 {
			var cancel context.CancelFunc
			probeCtx, cancel = context.WithTimeout(ctx, r.Timeout)
			defer cancel()
		}
		if err := r.Prober(probeCtx, v, token); err != nil {
			return fail(fmt.Errorf("probe failed: %w", err))
		}
	}

	if res.Status == models.StatusBroken {
		res.Status = models.StatusActive
	}
	res.Duration = time.Since(start)
	return res
}
