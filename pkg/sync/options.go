// Package sync provides options and result types for reconciliation runs.
package sync

import (
	"time"

	"github.com/rbxsync/rbxsync/pkg/errors"
)

// Default tuning for the asset upload poll loop. Uploads complete within a
// few seconds normally; the bounded attempt count caps the total wait at
// about a minute.
const (
	DefaultPollInterval    = 2 * time.Second
	DefaultPollMaxAttempts = 30
)

// Options controls a reconciliation run.
type Options struct {
	// DryRun resolves identities and icon hashes but issues no remote
	// mutations and leaves the ledger untouched.
	DryRun bool

	// FailFast stops at the first per-resource error instead of collecting
	// errors and continuing with the remaining resources.
	FailFast bool

	// Timeout bounds the entire run. Zero means no overall timeout.
	Timeout time.Duration

	// PollInterval is the fixed delay between upload operation polls.
	PollInterval time.Duration

	// PollMaxAttempts bounds the upload poll loop.
	PollMaxAttempts int
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{
		PollInterval:    DefaultPollInterval,
		PollMaxAttempts: DefaultPollMaxAttempts,
	}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks if the sync options are valid.
func (o *Options) Validate() error {
	if o.Timeout < 0 {
		return &errors.ValidationError{
			Field:   "Timeout",
			Value:   o.Timeout,
			Message: "timeout must be non-negative",
		}
	}
	if o.PollInterval <= 0 {
		return &errors.ValidationError{
			Field:   "PollInterval",
			Value:   o.PollInterval,
			Message: "poll interval must be positive",
		}
	}
	if o.PollMaxAttempts <= 0 {
		return &errors.ValidationError{
			Field:   "PollMaxAttempts",
			Value:   o.PollMaxAttempts,
			Message: "poll attempt count must be positive",
		}
	}
	return nil
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(opts *Options) {
		opts.DryRun = dryRun
	}
}

// WithFailFast configures fail-fast behavior.
func WithFailFast(failFast bool) Option {
	return func(opts *Options) {
		opts.FailFast = failFast
	}
}

// WithTimeout configures the overall run timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

// WithPollInterval configures the upload poll interval.
func WithPollInterval(interval time.Duration) Option {
	return func(opts *Options) {
		opts.PollInterval = interval
	}
}

// WithPollMaxAttempts configures the upload poll attempt bound.
func WithPollMaxAttempts(attempts int) Option {
	return func(opts *Options) {
		opts.PollMaxAttempts = attempts
	}
}
