package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/secret-squirrel/ssq/internal/ignore"
	"github.com/secret-squirrel/ssq/internal/progress"
	"github.com/secret-squirrel/ssq/internal/rules"
	"github.com/secret-squirrel/ssq/internal/types"
	"github.com/sirupsen/logrus"
)

// DefaultConcurrency bounds how many files are scanned at once when the
// caller does not say.
const DefaultConcurrency = 6

// Config controls a scan.
type Config struct {
	Root        string
	Rules       map[string]rules.Spec
	MinSeverity types.Severity
	Ignore      ignore.Config
	// Concurrency is the batch size and worker count. Values below 1 use
	// DefaultConcurrency.
	Concurrency int
	// Sink receives progress events. Nil discards them.
	Sink progress.Sink
}

// Scan compiles cfg and scans cfg.Root. Invalid rule regexes
// (*rules.CompileError) and invalid ignore globs or regexes
// (*ignore.ConfigError) are returned before any file is opened. Unreadable
// files are left out of the result rather than failing the scan. When ctx is
// cancelled the partial result is returned with Cancelled set and a nil error.
func Scan(ctx context.Context, cfg Config) (*Result, error) {
	set, err := rules.Compile(cfg.Rules, cfg.MinSeverity)
	if err != nil {
		return nil, err
	}
	ign, err := ignore.New(cfg.Root, cfg.Ignore)
	if err != nil {
		return nil, err
	}
	ex := &Executor{
		Rules:       set,
		Ignore:      ign,
		Concurrency: cfg.Concurrency,
		Sink:        cfg.Sink,
	}
	return ex.Run(ctx, cfg.Root)
}

// Executor scans a tree with an already compiled rule set and resolver.
// Both are only read, so one Executor may run several scans.
type Executor struct {
	Rules       *rules.Set
	Ignore      *ignore.Resolver
	Concurrency int
	Sink        progress.Sink
}

type job struct {
	ctx  context.Context
	task FileTask
	out  *collector
	wg   *sync.WaitGroup
}

// Run discovers files under root and scans them in sequential batches of at
// most Concurrency files; the files of a batch are scanned in parallel and
// the next batch starts only when all of them have completed.
func (e *Executor) Run(ctx context.Context, root string) (*Result, error) {
	started := time.Now()
	limit := e.Concurrency
	if limit < 1 {
		limit = DefaultConcurrency
	}
	out := newCollector()

	tasks, err := Discover(ctx, root, e.Ignore)
	if err != nil {
		res := out.result()
		res.Cancelled = true
		res.Duration = time.Since(started)
		return res, nil
	}
	logrus.WithFields(logrus.Fields{"root": root, "files": len(tasks), "rules": e.Rules.Len(), "batch": limit}).Debug("scan: discovered files")

	pool, err := ants.NewPoolWithFunc(limit, func(arg interface{}) {
		j := arg.(job)
		defer j.wg.Done()
		if j.ctx.Err() != nil {
			return
		}
		e.scanFile(j.task, j.out)
	}, ants.WithLogger(logrus.StandardLogger()), ants.WithPanicHandler(func(p interface{}) {
		logrus.WithField("panic", p).Error("scan worker panicked")
	}))
	if err != nil {
		return nil, fmt.Errorf("worker pool: %w", err)
	}
	defer pool.Release()

	cancelled := false
	for start := 0; start < len(tasks) && !cancelled; start += limit {
		end := min(start+limit, len(tasks))
		var wg sync.WaitGroup
		for _, t := range tasks[start:end] {
			if ctx.Err() != nil {
				cancelled = true
				break
			}
			wg.Add(1)
			if err := pool.Invoke(job{ctx: ctx, task: t, out: out, wg: &wg}); err != nil {
				wg.Done()
				logrus.WithFields(logrus.Fields{"path": t.Path, "err": err}).Debug("scan: submit failed")
			}
		}
		wg.Wait()
		if ctx.Err() != nil {
			cancelled = true
		}
	}

	res := out.result()
	res.Cancelled = cancelled
	res.Duration = time.Since(started)
	return res, nil
}

func (e *Executor) sink() progress.Sink {
	if e.Sink == nil {
		return progress.Nop{}
	}
	return e.Sink
}

// scanFile classifies one file and runs every rule over it. Matches are
// buffered locally and committed only if the whole file was read, so an I/O
// error midway leaves no trace in the result.
func (e *Executor) scanFile(task FileTask, out *collector) {
	log := logrus.WithField("path", task.Path)
	src, class, err := openSource(task.AbsPath)
	if err != nil {
		log.WithError(err).Debug("scan: skipping unreadable file")
		return
	}
	task.Class = class
	if class == ClassBinary {
		log.Debug("scan: skipping binary file")
		return
	}
	defer func() { _ = src.Close() }()

	sink := e.sink()
	active := e.Rules.Rules()
	total := len(active)
	sink.FileStarted(task.Path, total)

	var found []types.Match
	for i, r := range active {
		err := src.Each(func(n int, line []byte) bool {
			if !r.Match(line) || e.Ignore.LineIgnored(line) {
				return true
			}
			if len(found) == 0 {
				sink.MatchFound(task.Path)
			}
			found = append(found, types.Match{
				Rule:        r.Name,
				Path:        task.Path,
				Line:        n,
				Text:        string(line),
				Severity:    r.Severity,
				Description: r.Description,
			})
			return true
		})
		if err != nil {
			log.WithError(err).Debug("scan: read failed, dropping file")
			sink.FileCompleted(task.Path, false)
			return
		}
		sink.RuleChecked(task.Path, r.Name, i+1, total)
	}

	out.commit(task.Path, found)
	log.WithFields(logrus.Fields{"class": task.Class, "matches": len(found)}).Debug("scan: file done")
	sink.FileCompleted(task.Path, len(found) > 0)
}
