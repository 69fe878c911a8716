package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/api"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/nav"
	"github.com/dmitrijs2005/gophauth/internal/client/profile"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/client/storage"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/timerx"
)

// AvatarOutputSize is the logical edge, in pixels, of uploaded photos.
const AvatarOutputSize = 150

// sessionStore is the persisted session as the App uses it.
type sessionStore interface {
	session.Manager
	DeviceID(ctx context.Context) (string, error)
	SignedInAt(ctx context.Context) (time.Time, bool, error)
}

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB
	sess   sessionStore
	api    *api.Client
	sched  timerx.Scheduler
	out    io.Writer
	reader *bufio.Reader

	mu        sync.Mutex
	route     nav.Route
	fromLogin bool
	editor    *profile.Editor
	suspended bool
	held      []string
}

// NewApp opens the session database and wires the API client, using the
// App itself as the navigator for rejected sessions.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	db, err := storage.InitDatabase(ctx, c.SessionDBPath)
	if err != nil {
		l.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	a := newApp(c, l, session.NewStore(db), timerx.Real{}, os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, l logging.Logger, s sessionStore, sched timerx.Scheduler, in io.Reader, out io.Writer) *App {
	a := &App{
		config: c,
		log:    l,
		sess:   s,
		sched:  sched,
		out:    out,
		reader: bufio.NewReader(in),
		route:  nav.RouteLogin,
	}
	a.api = api.New(c.ServerBaseURL, s, a,
		api.WithTimeout(c.RequestTimeout),
		api.WithDeviceID(s),
		api.WithLogger(l.With("component", "api")),
	)
	return a
}

// Run restores the route from the persisted session and starts the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to GophAuth CLI (type 'help' for commands)")
	if a.isLoggedIn() {
		a.setRoute(nav.RouteProfile)
	}
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	tok, err := a.sess.Token(context.Background())
	if err != nil {
		a.log.Warn(context.Background(), "session unreadable", "error", err)
		return false
	}
	return tok != ""
}

func (a *App) Route() nav.Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) setRoute(r nav.Route) {
	a.mu.Lock()
	a.route = r
	if r != nav.RouteProfile {
		a.editor = nil
	}
	a.mu.Unlock()
}

// Navigate switches screens. It runs from flows, timers and the 401
// handler alike.
func (a *App) Navigate(to nav.Route) {
	if a.Route() == to {
		return
	}
	a.setRoute(to)
	a.log.Debug(context.Background(), "navigate", "route", to)
	a.notice(fmt.Sprintf("-> %s", to))
}

// Reload re-reads the session after sign-in, like a full page reload.
func (a *App) Reload() {
	if !a.isLoggedIn() {
		a.setRoute(nav.RouteLogin)
		return
	}
	a.mu.Lock()
	a.route = nav.RouteProfile
	a.fromLogin = true
	a.editor = nil
	a.mu.Unlock()
}

// noticeLock holds back asynchronous notices (timer redirects, session
// expiry) while a dialog owns the screen. It is the profile.ScrollLock of
// the terminal.
type noticeLock struct{ a *App }

func (l noticeLock) Suspend() {
	l.a.mu.Lock()
	l.a.suspended = true
	l.a.mu.Unlock()
}

// Resume prints the notices held back since Suspend.
func (l noticeLock) Resume() {
	l.a.mu.Lock()
	held := l.a.held
	l.a.held = nil
	l.a.suspended = false
	l.a.mu.Unlock()

	for _, m := range held {
		printlnFn(m)
	}
}

func (a *App) notice(msg string) {
	a.mu.Lock()
	if a.suspended {
		a.held = append(a.held, msg)
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()
	printlnFn(msg)
}

// status is shown in the prompt: the current screen and, when signed in,
// the account the token belongs to.
func (a *App) status() string {
	s := string(a.Route())
	tok, err := a.sess.Token(context.Background())
	if err == nil && tok != "" {
		if c, err := session.Inspect(tok); err == nil && c.Email != "" {
			s = c.Email + " " + s
		}
	}
	return "(" + s + ")"
}

// profileEditor returns the mounted editor, mounting it on first use.
func (a *App) profileEditor(ctx context.Context) (*profile.Editor, error) {
	a.mu.Lock()
	ed, fromLogin := a.editor, a.fromLogin
	a.mu.Unlock()
	if ed != nil {
		return ed, nil
	}

	ed = profile.NewEditor(a.api, a.sess, a, a.sched, a.log, profile.Options{
		OutputDir:        a.config.OutputDir,
		DevicePixelRatio: a.config.DevicePixelRatio,
		OutputSize:       AvatarOutputSize,
		PreviewWidth:     float64(a.config.PreviewWidth),
	})
	if err := ed.Mount(ctx, fromLogin); err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.editor = ed
	a.fromLogin = false
	a.route = nav.RouteProfile
	a.mu.Unlock()
	return ed, nil
}
