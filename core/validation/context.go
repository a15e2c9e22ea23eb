package validation

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Context collects diagnostics from validators running concurrently
// against it.
type Context struct {
	ctx   context.Context
	wg    sync.WaitGroup
	mu    sync.Mutex
	seen  map[string]struct{}
	diags []Diagnostic
}

func newContext(ctx context.Context) *Context {
	return &Context{
		ctx:  ctx,
		seen: make(map[string]struct{}),
	}
}

// Done reports whether the run was cancelled.
func (c *Context) Done() bool {
	return c.ctx.Err() != nil
}

// Raise records a violation. Identical diagnostics are stored once.
func (c *Context) Raise(message string, cause error) {
	d := Diagnostic{Message: message, Cause: cause}
	k := d.key()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[k]; ok {
		return
	}
	c.seen[k] = struct{}{}
	c.diags = append(c.diags, d)
}

// Launch runs validator against value in a new goroutine bound to c. Nothing
// is started once the run is cancelled. A panic inside the validator is
// reported as a diagnostic and does not affect other branches.
func Launch[T any](c *Context, validator Validator[T], value T) {
	if c.Done() {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("%v", r)
				}
				c.Raise("Unexpected error during validation", err)
			}
		}()
		validator(c, value)
	}()
}

// ValidateAll launches validator once for every value.
func ValidateAll[T any](c *Context, validator Validator[T], values []T) {
	for _, v := range values {
		Launch(c, validator, v)
	}
}

// Run validates value and waits for every launched branch. If ctx is
// cancelled, the partial result is discarded and ctx.Err() is returned.
func Run[T any](ctx context.Context, validator Validator[T], value T) ([]Diagnostic, error) {
	return RunAll(ctx, validator, []T{value})
}

// RunAll validates every value and waits for every launched branch. The
// deduplicated diagnostics are sorted by message.
func RunAll[T any](ctx context.Context, validator Validator[T], values []T) ([]Diagnostic, error) {
	c := newContext(ctx)
	ValidateAll(c, validator, values)
	c.wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	diags := append([]Diagnostic(nil), c.diags...)
	c.mu.Unlock()
	sort.SliceStable(diags, func(i, j int) bool { return diags[i].key() < diags[j].key() })
	return diags, nil
}
