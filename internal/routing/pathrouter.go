package routing

import "strings"

// DestParam is the query parameter PathRouter keeps the pending
// destination in.
const DestParam = "dest"

// PathRouter is the path-based alternative to Manager: locations look like
// "/jobs?x=1" and the post-login destination travels in the query string
// instead of storage.
type PathRouter struct {
	nav Navigator
}

// NewPathRouter returns a PathRouter over nav.
func NewPathRouter(nav Navigator) *PathRouter {
	return &PathRouter{nav: nav}
}

// Location returns the current path without query.
func (r *PathRouter) Location() string {
	loc, _, _ := strings.Cut(r.nav.Current(), "?")
	return loc
}

// Query returns a copy of the current query.
func (r *PathRouter) Query() *Query {
	_, q, _ := strings.Cut(r.nav.Current(), "?")
	return ParseQuery(q)
}

// LoginForward replaces the current entry with /login, carrying the current
// path in the dest parameter unless it is the root.
func (r *PathRouter) LoginForward() {
	q := r.Query()
	if loc := r.Location(); loc != "" && loc != "/" {
		q.Set(DestParam, loc)
	}
	r.nav.Replace(joinQuery("/login", q.Encode()))
}

// DestForward pushes the path held in the dest parameter (root when
// absent), keeping the remaining query.
func (r *PathRouter) DestForward() {
	q := r.Query()
	dest, _ := q.Get(DestParam)
	q.Delete(DestParam)
	if dest == "" {
		dest = "/"
	}
	r.nav.Push(joinQuery(dest, q.Encode()))
}

// PreserveQuerystringForward pushes route with the current query.
func (r *PathRouter) PreserveQuerystringForward(route string) {
	r.nav.Push(joinQuery(route, r.Query().Encode()))
}
