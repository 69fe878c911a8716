// Package nav names the client's screens and the contracts used to move
// between them.
package nav

// Route identifies a screen of the interactive client.
type Route string

const (
	RouteLogin          Route = "login"
	RouteSignup         Route = "signup"
	RouteForgotPassword Route = "forgot-password"
	RouteResetPassword  Route = "reset-password"
	RouteVerifyEmail    Route = "verify-email"
	RouteProfile        Route = "profile"
)

// Navigator switches the current screen.
type Navigator interface {
	Navigate(to Route)
}

// Reloader re-reads persisted session state in every component, the
// equivalent of a full page reload.
type Reloader interface {
	Reload()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(to Route)

func (f NavigatorFunc) Navigate(to Route) { f(to) }

// ReloaderFunc adapts a function to Reloader.
type ReloaderFunc func()

func (f ReloaderFunc) Reload() { f() }

// Recorder remembers every navigation. Useful where a component is driven
// without a UI.
type Recorder struct {
	Routes  []Route
	Reloads int
}

func (r *Recorder) Navigate(to Route) { r.Routes = append(r.Routes, to) }

func (r *Recorder) Reload() { r.Reloads++ }

// Last returns the most recent route or "" when none was recorded.
func (r *Recorder) Last() Route {
	if len(r.Routes) == 0 {
		return ""
	}
	return r.Routes[len(r.Routes)-1]
}
