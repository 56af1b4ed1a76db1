package dispatch

// Route identifies the handler an invocation is sent to.
type Route int

const (
	RouteApply Route = iota
	RouteMSPL
	RouteIntent
)

func (r Route) String() string {
	switch r {
	case RouteApply:
		return "apply"
	case RouteMSPL:
		return "mspl"
	case RouteIntent:
		return "intent"
	}

	return "unknown"
}
