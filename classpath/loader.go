// Package classpath loads class files by name from directories and jar
// archives and keeps the parsed results in a cache shared by concurrent
// callers.
package classpath

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/dhamidi/classkit/classfile"
	"github.com/tliron/commonlog"
)

var ErrClassNotFound = errors.New("class not found")

type Option func(*Loader)

// WithWriteAccess marks every loaded class file as writable.
func WithWriteAccess() Option {
	return func(l *Loader) { l.parseOpts = append(l.parseOpts, classfile.WithWriteAccess()) }
}

func WithLogger(log commonlog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// WithWorkers bounds the number of concurrent parses in Scan.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

type Loader struct {
	sources   []source
	parseOpts []classfile.Option
	log       commonlog.Logger
	workers   int

	mu    sync.Mutex
	cache map[string]*cacheEntry
}

// cacheEntry is filled exactly once; ready is closed when it is.
type cacheEntry struct {
	ready chan struct{}
	class *classfile.ClassFile
	err   error
}

// New opens every classpath entry. Entries are searched in order and the
// first one holding a class wins.
func New(entries []string, opts ...Option) (*Loader, error) {
	l := &Loader{
		log:     commonlog.GetLogger("classkit.classpath"),
		workers: runtime.GOMAXPROCS(0),
		cache:   make(map[string]*cacheEntry),
	}
	for _, opt := range opts {
		opt(l)
	}
	for _, entry := range entries {
		src, err := openSource(entry)
		if err != nil {
			l.Close()
			return nil, err
		}
		l.sources = append(l.sources, src)
	}
	return l, nil
}

func (l *Loader) Close() error {
	var errs []error
	for _, src := range l.sources {
		if err := src.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load returns the parsed class called name, given in internal
// (java/lang/String) or source (java.lang.String) form. Concurrent loads
// of the same class parse it once. Failures are cached like successes
// until the class is evicted.
func (l *Loader) Load(name string) (*classfile.ClassFile, error) {
	name = classfile.SourceToInternalName(name)

	l.mu.Lock()
	e, ok := l.cache[name]
	if !ok {
		e = &cacheEntry{ready: make(chan struct{})}
		l.cache[name] = e
	}
	l.mu.Unlock()

	if ok {
		<-e.ready
		return e.class, e.err
	}
	e.class, e.err = l.load(name)
	close(e.ready)
	return e.class, e.err
}

func (l *Loader) load(name string) (*classfile.ClassFile, error) {
	for _, src := range l.sources {
		data, err := src.open(name)
		if isNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		cf, err := classfile.ParseBytes(data, l.parseOpts...)
		if err != nil {
			l.log.Errorf("%s from %s: %s", name, src, err)
			return nil, fmt.Errorf("load %s from %s: %w", name, src, err)
		}
		l.forward(name, cf.Diagnostics)
		l.log.Debugf("loaded %s from %s", name, src)
		return cf, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrClassNotFound)
}

func (l *Loader) forward(name string, diags classfile.Diagnostics) {
	for _, d := range diags {
		switch d.Severity {
		case classfile.SeverityWarning:
			l.log.Warningf("%s: %s", name, d)
		case classfile.SeverityInfo:
			l.log.Infof("%s: %s", name, d)
		default:
			l.log.Debugf("%s: %s", name, d)
		}
	}
}

// Cached reports whether name has a completed cache entry.
func (l *Loader) Cached(name string) bool {
	l.mu.Lock()
	e, ok := l.cache[classfile.SourceToInternalName(name)]
	l.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

// Evict drops name from the cache so the next Load parses it again.
// Callers still holding the old ClassFile keep a valid value.
func (l *Loader) Evict(name string) {
	l.mu.Lock()
	delete(l.cache, classfile.SourceToInternalName(name))
	l.mu.Unlock()
}

// Names lists every class on the classpath once, in classpath order.
func (l *Loader) Names() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, src := range l.sources {
		names, err := src.names()
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out, nil
}

type Result struct {
	Name  string
	Class *classfile.ClassFile
	Err   error
}

// Scan loads every class on the classpath with a bounded pool of workers.
// Results are in Names order. A cancelled context stops the scan and is
// returned alongside the results gathered so far.
func (l *Loader) Scan(ctx context.Context) ([]Result, error) {
	names, err := l.Names()
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(names))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(l.workers, len(names)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				cf, err := l.Load(names[i])
				results[i] = Result{Name: names[i], Class: cf, Err: err}
			}
		}()
	}

	var scanErr error
feed:
	for i := range names {
		if scanErr = ctx.Err(); scanErr != nil {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			scanErr = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if scanErr != nil {
		done := results[:0]
		for _, r := range results {
			if r.Name != "" {
				done = append(done, r)
			}
		}
		return done, scanErr
	}
	return results, nil
}
