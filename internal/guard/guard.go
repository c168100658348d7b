package guard

import (
	"strings"

	"progresshub/internal/domain"
	"progresshub/internal/session"
)

const LoginPath = "/auth"

// Route describe una pagina del dashboard.
type Route struct {
	Path      string
	Title     string
	Protected bool
}

// Routes es la tabla de paginas conocidas.
var Routes = []Route{
	{Path: LoginPath, Title: "Sign in"},
	{Path: "/", Title: "Dashboard", Protected: true},
	{Path: "/team", Title: "Team", Protected: true},
	{Path: "/projects", Title: "Projects", Protected: true},
	{Path: "/documents", Title: "Documents", Protected: true},
	{Path: "/messages", Title: "Messages", Protected: true},
	{Path: "/reports", Title: "Reports", Protected: true},
}

// Lookup normaliza path y busca su ruta.
func Lookup(path string) (Route, bool) {
	path = normalize(path)
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

type Outcome int

const (
	Placeholder Outcome = iota
	Misconfigured
	Render
	Redirect
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Placeholder:
		return "placeholder"
	case Misconfigured:
		return "misconfigured"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

// Decision es el resultado de resolver una navegacion.
type Decision struct {
	Outcome Outcome
	Route   Route
	// Location solo se completa cuando Outcome es Redirect.
	Location string
	Identity *domain.Identity
}

// IdentitySource es lo que el guard necesita del session store.
type IdentitySource interface {
	State() session.State
	CurrentIdentity() *domain.Identity
}

type Guard struct {
	source IdentitySource
}

func New(source IdentitySource) *Guard {
	return &Guard{source: source}
}

// Resolve decide que mostrar para path. Consulta el store en cada llamada.
func (g *Guard) Resolve(path string) Decision {
	route, ok := Lookup(path)
	if !ok {
		return Decision{Outcome: NotFound}
	}

	switch g.source.State() {
	case session.StateLoading:
		return Decision{Outcome: Placeholder, Route: route}
	case session.StateMisconfigured:
		return Decision{Outcome: Misconfigured, Route: route}
	}

	identity := g.source.CurrentIdentity()
	if !route.Protected {
		return Decision{Outcome: Render, Route: route, Identity: identity}
	}
	if identity == nil {
		return Decision{Outcome: Redirect, Route: route, Location: LoginPath}
	}
	return Decision{Outcome: Render, Route: route, Identity: identity}
}
