// Package analytics reports page views to an injected analytics capability.
package analytics

import "net/url"

// PageView is the event name forwarded on every route change.
const PageView = "page_view"

// EventFunc receives an analytics event. A nil EventFunc means no analytics
// capability is present.
type EventFunc func(event string, params map[string]any)

// Route identifies the page being viewed.
type Route struct {
	Path     string
	Query    string // Encoded query without the leading '?'.
	Location string // Full URL of the page.
}

// ParseRoute builds a Route from an absolute URL or a bare path.
func ParseRoute(raw string) (Route, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Route{}, err
	}
	return Route{Path: u.Path, Query: u.RawQuery, Location: raw}, nil
}

// PagePath returns the path with its query string, if any.
func (r Route) PagePath() string {
	if r.Query == "" {
		return r.Path
	}
	return r.Path + "?" + r.Query
}

// Reporter forwards page views when the route changes. It is not safe for
// concurrent use.
type Reporter struct {
	measurementID string
	send          EventFunc
	last          Route
	seen          bool
}

// NewReporter creates a Reporter. Either argument may be empty, in which case
// Observe never sends.
func NewReporter(measurementID string, send EventFunc) *Reporter {
	return &Reporter{measurementID: measurementID, send: send}
}

// Enabled reports whether page views can be forwarded at all.
func (r *Reporter) Enabled() bool {
	return r.measurementID != "" && r.send != nil
}

// Observe records the current route and forwards a page view when the path
// or query changed since the previous call. It reports whether an event was sent.
func (r *Reporter) Observe(route Route) bool {
	changed := !r.seen || route.Path != r.last.Path || route.Query != r.last.Query
	r.last = route
	r.seen = true

	if !changed || route.Path == "" || !r.Enabled() {
		return false
	}
	r.send(PageView, map[string]any{
		"page_path":     route.PagePath(),
		"page_location": route.Location,
		"send_to":       r.measurementID,
	})
	return true
}

// Reset forgets the last route so the next Observe always reports, as after
// a full page load.
func (r *Reporter) Reset() {
	r.last = Route{}
	r.seen = false
}
