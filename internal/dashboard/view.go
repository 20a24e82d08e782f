// Package dashboard holds the admin dashboard view: the session check, the
// order list it displays and the status changes it issues.
//
// A View moves through these states:
//
//	CheckingAuth -> Authenticated | Redirecting
//	Authenticated -> Loading -> Loaded | LoadError
//	Loaded | LoadError -> Loading (refresh, or after a successful status change)
//
// Redirecting is terminal. The order list is only replaced by a successful
// fetch; a failed fetch keeps the previous list and records the error.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/imrishuroy/restaurant-admin/internal/orders"
	"github.com/imrishuroy/restaurant-admin/internal/session"
)

// LoginPath is where unauthenticated admins are sent.
const LoginPath = "/admin/login"

// State of a View.
type State int

const (
	StateCheckingAuth State = iota
	StateAuthenticated
	StateRedirecting
	StateLoading
	StateLoaded
	StateLoadError
)

func (s State) String() string {
	switch s {
	case StateCheckingAuth:
		return "checking_auth"
	case StateAuthenticated:
		return "authenticated"
	case StateRedirecting:
		return "redirecting"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateLoadError:
		return "load_error"
	}
	return "unknown"
}

// ErrNotAuthenticated is returned by operations attempted before the session
// check succeeded or after it failed.
var ErrNotAuthenticated = errors.New("dashboard: not authenticated")

// Guard resolves the current admin session.
type Guard interface {
	CheckSession(ctx context.Context) (*session.Session, error)
}

// OrderLister fetches the full order list.
type OrderLister interface {
	List(ctx context.Context) ([]orders.Order, error)
}

// StatusUpdater patches one order's status.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID string, status orders.Status) error
}

// Navigator performs the redirect away from the dashboard.
type Navigator interface {
	Redirect(path string)
}

// View is the dashboard of one admin session. It is safe for concurrent use;
// an update and its follow-up refresh run under one lock so they are never
// interleaved with another request on the same view.
type View struct {
	guard   Guard
	lister  OrderLister
	updater StatusUpdater

	mu         sync.Mutex
	state      State
	session    *session.Session
	orders     []orders.Order
	loaded     bool
	errMsg     string
	redirected bool
}

// NewView returns a view in the CheckingAuth state.
func NewView(guard Guard, lister OrderLister, updater StatusUpdater) *View {
	return &View{
		guard:   guard,
		lister:  lister,
		updater: updater,
		state:   StateCheckingAuth,
	}
}

// Authorize runs the session check. On failure the view becomes Redirecting
// and nav is sent to the login page; this happens at most once per view.
// It reports whether the caller may go on.
func (v *View) Authorize(ctx context.Context, nav Navigator) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.authorizeLocked(ctx, nav)
}

func (v *View) authorizeLocked(ctx context.Context, nav Navigator) bool {
	if v.state == StateRedirecting {
		return false
	}

	sess, err := v.guard.CheckSession(ctx)
	if err != nil {
		v.state = StateRedirecting
		v.session = nil
		v.orders = nil
		v.errMsg = ""
		if !v.redirected {
			v.redirected = true
			nav.Redirect(LoginPath)
		}
		return false
	}

	v.session = sess
	if v.state == StateCheckingAuth {
		v.state = StateAuthenticated
	}
	return true
}

// Mount is the entry point of a page load: session check, then fetch.
func (v *View) Mount(ctx context.Context, nav Navigator) State {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.authorizeLocked(ctx, nav) {
		return v.state
	}
	return v.refreshLocked(ctx)
}

// Refresh re-fetches the order list.
func (v *View) Refresh(ctx context.Context) State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.refreshLocked(ctx)
}

func (v *View) refreshLocked(ctx context.Context) State {
	if !v.authenticated() {
		return v.state
	}

	v.state = StateLoading
	list, err := v.lister.List(ctx)
	if err != nil {
		v.state = StateLoadError
		v.errMsg = err.Error()
		return v.state
	}

	v.orders = list
	v.loaded = true
	v.errMsg = ""
	v.state = StateLoaded
	return v.state
}

// ChangeStatus sends the status update and, only once it has succeeded,
// re-fetches the list. On failure the displayed list is left untouched and
// the error is kept for display.
func (v *View) ChangeStatus(ctx context.Context, orderID string, status orders.Status) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.authenticated() {
		return ErrNotAuthenticated
	}

	if err := v.updater.UpdateStatus(ctx, orderID, status); err != nil {
		v.errMsg = err.Error()
		return fmt.Errorf("change status: %w", err)
	}

	v.refreshLocked(ctx)
	return nil
}

// State returns the current state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) authenticated() bool {
	switch v.state {
	case StateAuthenticated, StateLoading, StateLoaded, StateLoadError:
		return true
	}
	return false
}

// Snapshot captures what should be rendered. Protected content is only
// filled in once the session check has succeeded.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{State: v.state}
	if !v.authenticated() {
		return snap
	}

	snap.Authenticated = true
	snap.Error = v.errMsg
	if v.session != nil {
		snap.AdminName = v.session.Name
		snap.AdminEmail = v.session.Email
	}
	snap.Rows = make([]Row, 0, len(v.orders))
	for _, o := range v.orders {
		snap.Rows = append(snap.Rows, newRow(o))
	}
	snap.Stats = computeStats(v.orders)
	snap.Empty = v.loaded && len(v.orders) == 0
	return snap
}
