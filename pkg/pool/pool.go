package pool

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool represents a pool of workers, used for parallelizing batch operations
// such as prime sampling or encrypting a whole questionnaire.
//
// Functions needing a *Pool will work with a nil receiver, doing the equivalent
// work on the current goroutine instead.
//
// Jobs submitted to a pool must not submit further jobs to the same pool.
type Pool struct {
	jobs        chan func()
	workerCount int
	closeOnce   sync.Once
}

// NewPool creates a new pool, with a certain number of workers.
//
// If count <= 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		jobs:        make(chan func()),
		workerCount: count,
	}
	for i := 0; i < count; i++ {
		go func() {
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

// Workers returns the number of goroutines backing p, 1 for a nil pool.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workerCount
}

// TearDown stops the workers. It is safe to call more than once.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() { close(p.jobs) })
}

// Search queries the function f, until count successes are found.
//
// f is supposed to try a single candidate, returning nil if that candidate isn't
// successful.
//
// The result will be an array containing the first count successes.
func (p *Pool) Search(count int, f func() interface{}) []interface{} {
	results := make([]interface{}, 0, count)
	if p == nil {
		for len(results) < count {
			if r := f(); r != nil {
				results = append(results, r)
			}
		}
		return results
	}

	var (
		mu   sync.Mutex
		done atomic.Bool
		wg   sync.WaitGroup
	)
	wg.Add(p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.jobs <- func() {
			defer wg.Done()
			for !done.Load() {
				r := f()
				if r == nil {
					continue
				}
				mu.Lock()
				if len(results) < count {
					results = append(results, r)
				}
				if len(results) == count {
					done.Store(true)
				}
				mu.Unlock()
			}
		}
	}
	wg.Wait()
	return results
}

// Parallelize calls a function count times, passing in indices from 0..count-1.
//
// The result will be a slice containing [f(0), f(1), ..., f(count - 1)].
func (p *Pool) Parallelize(count int, f func(int) interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := range results {
			results[i] = f(i)
		}
		return results
	}

	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		i := i
		p.jobs <- func() {
			defer wg.Done()
			results[i] = f(i)
		}
	}
	wg.Wait()
	return results
}

// Each calls f for every index in 0..count-1 and returns the error of the
// lowest failing index, if any.
func (p *Pool) Each(count int, f func(int) error) error {
	errs := p.Parallelize(count, func(i int) interface{} {
		if err := f(i); err != nil {
			return err
		}
		return nil
	})
	for _, err := range errs {
		if err != nil {
			return err.(error)
		}
	}
	return nil
}

// LockedReader wraps an io.Reader to be safe for concurrent reads.
//
// This means acquiring a lock whenever a read happens, so be aware of that
// for performance or concurrency reasons.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

// Read implements io.Reader for LockedReader.
//
// When called concurrently, which caller receives which bytes is raced, but no
// two callers observe the same bytes.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
