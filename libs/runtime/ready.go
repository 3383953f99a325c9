package runtime

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// ReadyCheck is a named dependency check for /readyz.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

// Readiness backs /readyz. Draining flips it to 503 before the server stops accepting
// connections so load balancers stop routing new bookings to this instance.
type Readiness struct {
	checks   []ReadyCheck
	draining atomic.Bool
}

func NewReadiness(checks ...ReadyCheck) *Readiness {
	return &Readiness{checks: checks}
}

func (r *Readiness) SetDraining() {
	r.draining.Store(true)
}

func (r *Readiness) Draining() bool {
	return r.draining.Load()
}

func (r *Readiness) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.Draining() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("draining"))
		return
	}
	if err := r.Check(req.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(err.Error()))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Check runs every dependency check, each bounded to 2s, and reports all failures.
func (r *Readiness) Check(ctx context.Context) error {
	if r.Draining() {
		return errors.New("draining")
	}
	var failures []string
	for _, check := range r.checks {
		if check.Check == nil {
			continue
		}
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := check.Check(checkCtx)
		cancel()
		if err != nil {
			name := check.Name
			if name == "" {
				name = "dependency"
			}
			failures = append(failures, name+": "+err.Error())
		}
	}
	if len(failures) > 0 {
		return errors.New(strings.Join(failures, "; "))
	}
	return nil
}

// NewBaseMux registers /healthz and /readyz.
func NewBaseMux(ready *Readiness) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if ready == nil {
		ready = NewReadiness()
	}
	mux.Handle("GET /readyz", ready)
	return mux
}
