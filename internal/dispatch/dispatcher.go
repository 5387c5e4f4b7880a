package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/f1-data-service/internal/document"
	"github.com/preston-bernstein/f1-data-service/internal/logging"
	"github.com/preston-bernstein/f1-data-service/internal/metrics"
	"github.com/preston-bernstein/f1-data-service/internal/request"
)

const (
	msgTeamAdded     = "Team added successfully"
	msgTeamUpdated   = "Team updated successfully"
	msgTeamDeleted   = "Team deleted successfully"
	msgDriverUpdated = "Driver updated successfully"
)

// Store is the canonical document the dispatcher reads and rewrites.
type Store interface {
	View(ctx context.Context) (*document.Document, error)
	Update(ctx context.Context, fn func(*document.Document) error) error
}

// Options configures a Dispatcher.
type Options struct {
	Store    Store
	TempDir  string
	NotFound NotFoundFormat
	Logger   *slog.Logger
	Recorder *metrics.Recorder
}

// Dispatcher applies one operation to the store per call.
type Dispatcher struct {
	store    Store
	tempDir  string
	notFound NotFoundFormat
	logger   *slog.Logger
	recorder *metrics.Recorder
	now      func() time.Time
}

// New constructs a Dispatcher.
func New(opts Options) *Dispatcher {
	notFound := opts.NotFound
	if notFound != NotFoundJSON {
		notFound = NotFoundLegacy
	}
	return &Dispatcher{
		store:    opts.Store,
		tempDir:  opts.TempDir,
		notFound: notFound,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		now:      time.Now,
	}
}

// Validate runs the checks that need no file access: a known operation and,
// for mutations, a request name.
func Validate(op Operation, requestName string) error {
	if _, err := ParseOperation(int(op)); err != nil {
		return err
	}
	if op.Mutates() && requestName == "" {
		return usageError(msgPathRequired)
	}
	return nil
}

// Run handles a command-line invocation: the request, if any, is read from
// requestName inside the temp dir. Usage problems and a missing request file
// are reported before the store is opened; the request contents are parsed
// only after the store loads.
func (d *Dispatcher) Run(ctx context.Context, op Operation, requestName string) Result {
	start := d.now()
	if err := Validate(op, requestName); err != nil {
		return d.finish(ctx, op, start, nil, err)
	}
	if !op.Mutates() {
		return d.Execute(ctx, op, request.Document{})
	}

	path, err := request.Resolve(d.tempDir, requestName)
	if err != nil {
		return d.finish(ctx, op, start, nil, err)
	}
	logging.Info(d.logger, "request file resolved",
		slog.String(logging.FieldOperation, op.String()),
		slog.String(logging.FieldRequest, path),
	)
	return d.execute(ctx, start, op, func() (request.Document, error) {
		return request.Load(path)
	})
}

// Execute applies op with an already-parsed request.
func (d *Dispatcher) Execute(ctx context.Context, op Operation, req request.Document) Result {
	return d.execute(ctx, d.now(), op, func() (request.Document, error) {
		return req, nil
	})
}

type mutation func(*document.Document, request.Document) error

func (d *Dispatcher) execute(ctx context.Context, start time.Time, op Operation, load func() (request.Document, error)) Result {
	if d.store == nil {
		return d.finish(ctx, op, start, nil, &Error{Kind: KindStore, Message: "store not configured"})
	}

	var req request.Document
	apply := func(fn mutation) func(*document.Document) error {
		return func(doc *document.Document) error {
			loaded, err := load()
			if err != nil {
				return err
			}
			req = loaded
			return fn(doc, req)
		}
	}

	var (
		body []byte
		err  error
	)
	switch op {
	case OpGet:
		body, err = d.get(ctx)
	case OpCreate:
		body, err = d.mutate(ctx, msgTeamAdded, apply(createTeam))
	case OpUpdate:
		body, err = d.mutate(ctx, msgTeamUpdated, apply(updateTeam))
	case OpDelete:
		body, err = d.mutate(ctx, msgTeamDeleted, apply(deleteTeam))
	case OpPatch:
		body, err = d.mutate(ctx, msgDriverUpdated, apply(patchDriver))
	default:
		_, err = ParseOperation(int(op))
	}
	return d.finish(ctx, op, start, body, err, slog.String(logging.FieldTeam, req.Team), slog.String(logging.FieldDriver, req.Driver))
}

func (d *Dispatcher) get(ctx context.Context) ([]byte, error) {
	doc, err := d.store.View(ctx)
	if err != nil {
		return nil, err
	}
	return document.Pretty(doc.Bytes()), nil
}

func (d *Dispatcher) mutate(ctx context.Context, success string, fn func(*document.Document) error) ([]byte, error) {
	if err := d.store.Update(ctx, fn); err != nil {
		return nil, err
	}
	return messageBody(success), nil
}

func (d *Dispatcher) finish(ctx context.Context, op Operation, start time.Time, body []byte, err error, attrs ...any) Result {
	duration := d.now().Sub(start)
	logger := logging.FromContext(ctx, d.logger)
	attrs = append(attrs,
		slog.String(logging.FieldOperation, op.String()),
		slog.Int64(logging.FieldDurationMS, duration.Milliseconds()),
	)

	if err == nil {
		d.recorder.RecordOperation(op.String(), metrics.OutcomeOK, duration)
		logging.Info(logger, "operation complete", attrs...)
		return Result{Operation: op, ExitCode: 0, Body: body}
	}

	failure := classify(err)
	res := Result{Operation: op, ExitCode: 1, Err: failure}
	attrs = append(attrs, slog.String("kind", failure.Kind.String()))
	if failure.Kind == KindNotFound {
		res.Body = d.notFound.body(failure.Message)
		d.recorder.RecordOperation(op.String(), metrics.OutcomeNotFound, duration)
		logging.Warn(logger, failure.Message, attrs...)
		return res
	}

	res.Body = errorBody(failure.Message)
	d.recorder.RecordOperation(op.String(), metrics.OutcomeError, duration)
	logging.Error(logger, "operation failed", failure, attrs...)
	return res
}
