// Package seeders holds the starter data loaded by `storefront seed`.
//
// A seeder registers itself from init():
//
//	func init() {
//	    Register("catalog", SeedCatalog)
//	}
package seeders

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/app/repositories"
)

// SeederFunc loads data into store. It must be safe to run twice.
type SeederFunc func(ctx context.Context, store *repositories.Store) error

type seeder struct {
	name string
	fn   SeederFunc
}

var (
	mu       sync.Mutex
	registry []seeder
)

// Register adds a seeder. Registering a name twice replaces the first one
// in place.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	for i := range registry {
		if registry[i].name == name {
			registry[i].fn = fn
			return
		}
	}
	registry = append(registry, seeder{name: name, fn: fn})
}

// Names lists registered seeders in run order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, len(registry))
	for i, s := range registry {
		out[i] = s.name
	}
	return out
}

// RunAll runs every registered seeder in order.
func RunAll(ctx context.Context, store *repositories.Store, out io.Writer) error {
	return Run(ctx, store, out)
}

// Run runs the named seeders, or all of them when names is empty, reporting
// progress to out. An unknown name fails before anything runs; the first
// seeder error stops the run.
func Run(ctx context.Context, store *repositories.Store, out io.Writer, names ...string) error {
	selected, err := pick(names)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		fmt.Fprintln(out, "  (no seeders registered)")
		return nil
	}

	for _, s := range selected {
		start := time.Now()
		fmt.Fprintf(out, "  • %s … ", s.name)
		if err := s.fn(ctx, store); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("seeder %q: %w", s.name, err)
		}
		fmt.Fprintf(out, "done (%s)\n", time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func pick(names []string) ([]seeder, error) {
	mu.Lock()
	defer mu.Unlock()

	if len(names) == 0 {
		return append([]seeder(nil), registry...), nil
	}

	byName := make(map[string]seeder, len(registry))
	for _, s := range registry {
		byName[s.name] = s
	}
	out := make([]seeder, 0, len(names))
	for _, n := range names {
		s, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown seeder %q", n)
		}
		out = append(out, s)
	}
	return out, nil
}
