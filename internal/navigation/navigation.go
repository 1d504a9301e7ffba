// Package navigation defines the symbolic routes the core hands to the
// hosting page. The core never owns routing; it only names the target.
package navigation

// Route is a symbolic page destination.
type Route string

const (
	RouteBills   Route = "Bills"
	RouteNewBill Route = "NewBill"
)

// Hash returns the location hash the UI layer maps the route to.
func (r Route) Hash() string {
	switch r {
	case RouteBills:
		return "#employee/bills"
	case RouteNewBill:
		return "#employee/bill/new"
	}
	return "#"
}

// Navigator is the collaborator the core calls whenever the page must change.
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a plain function to the Navigator interface
type NavigatorFunc func(route Route)

// Navigate calls the wrapped function.
func (f NavigatorFunc) Navigate(route Route) {
	f(route)
}
