// Package command sends operator commands to the console backend. Commands
// are fire-and-report: a failure is logged and returned, never retried, and
// nothing here touches displayed state. The display only changes when a later
// snapshot reports the new state.
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/nevconsole/internal/api"
	"github.com/rileyhilliard/nevconsole/internal/errors"
	"github.com/rileyhilliard/nevconsole/internal/logger"
	"github.com/rileyhilliard/nevconsole/internal/metrics"
	"github.com/rileyhilliard/nevconsole/internal/snapshot"
)

// DefaultTimeout bounds a single command request.
const DefaultTimeout = 5 * time.Second

// Poster sends one JSON request. *api.Client implements it.
type Poster interface {
	PostJSON(ctx context.Context, path, requestID string, in, out any) error
}

// Result is the backend's answer to a command. StationConnected is set when
// the backend echoes it.
type Result struct {
	Endpoint  string
	RequestID string
	OK        bool
	Error     string

	StationConnected *bool
	Duration         time.Duration
}

type reply struct {
	OK               bool   `json:"ok"`
	Error            string `json:"error"`
	StationConnected *bool  `json:"station_connected"`
}

// ModeRequest is the /api/cmd_mode body.
type ModeRequest struct {
	Mode int `json:"mode"`
}

// EStopRequest is the /api/estop body.
type EStopRequest struct {
	Active bool `json:"active"`
}

// Options configures a Dispatcher.
type Options struct {
	Timeout time.Duration
	Logger  logger.Logger
	Metrics *metrics.Collector
}

// Dispatcher issues commands.
type Dispatcher struct {
	client  Poster
	timeout time.Duration
	log     logger.Logger
	metrics *metrics.Collector
}

// New creates a dispatcher sending through client.
func New(client Poster, opts Options) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	return &Dispatcher{
		client:  client,
		timeout: opts.Timeout,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
}

// Send posts payload to endpoint once. A transport failure or an {ok:false}
// reply returns a COMMAND error alongside whatever result was obtained.
func (d *Dispatcher) Send(ctx context.Context, endpoint string, payload any) (Result, error) {
	res := Result{Endpoint: endpoint, RequestID: uuid.NewString()}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	var out reply
	err := d.client.PostJSON(ctx, endpoint, res.RequestID, payload, &out)
	res.Duration = time.Since(start)

	if err != nil {
		d.metrics.Command(endpoint, metrics.ResultError)
		d.log.Warn("command %s [%s] failed after %s: %s", endpoint, res.RequestID, res.Duration.Round(time.Millisecond), errors.Summary(err))
		return res, errors.WrapWithCode(err, errors.ErrCommand,
			fmt.Sprintf("Command %s failed", endpoint),
			"The command was not retried; check the backend and send it again")
	}

	res.OK = out.OK
	res.Error = out.Error
	res.StationConnected = out.StationConnected

	if !out.OK {
		d.metrics.Command(endpoint, metrics.ResultRejected)
		reason := out.Error
		if reason == "" {
			reason = "no reason given"
		}
		d.log.Warn("command %s [%s] rejected: %s", endpoint, res.RequestID, reason)
		return res, errors.New(errors.ErrCommand,
			fmt.Sprintf("Backend rejected %s: %s", endpoint, reason), "")
	}

	d.metrics.Command(endpoint, metrics.ResultOK)
	d.log.Info("command %s [%s] accepted in %s", endpoint, res.RequestID, res.Duration.Round(time.Millisecond))
	if out.StationConnected != nil && !*out.StationConnected {
		d.log.Warn("command %s accepted but the station is not connected", endpoint)
	}
	return res, nil
}

// SetMode requests a mux mode. Unknown modes are refused locally.
func (d *Dispatcher) SetMode(ctx context.Context, mode snapshot.Mode) (Result, error) {
	if !mode.Valid() {
		return Result{Endpoint: api.PathMode}, errors.New(errors.ErrCommand,
			fmt.Sprintf("Mode %d is not a valid mode", int(mode)),
			"Use idle, ctrl, nav or remote")
	}
	return d.Send(ctx, api.PathMode, ModeRequest{Mode: int(mode)})
}

// SetEStop engages or releases the emergency stop.
func (d *Dispatcher) SetEStop(ctx context.Context, active bool) (Result, error) {
	return d.Send(ctx, api.PathEStop, EStopRequest{Active: active})
}
