package conn

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/minisql/minisql/internal/auth"
	"github.com/minisql/minisql/internal/engine"
	"github.com/minisql/minisql/pkg"
)

// Server exposes one shared engine instance over HTTP: an HTML form UI
// on / and a websocket query API on /api. The engine serializes
// execution internally, so overlapping connections are safe.
type Server struct {
	engine *engine.Engine
	user   *auth.User
}

// NewServer wires the engine into the request handlers. A nil user
// disables authentication.
func NewServer(eng *engine.Engine, user *auth.User) *Server {
	return &Server{engine: eng, user: user}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/api", s.handleSocket)
	return mux
}

// Listen serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Listen(host string, port int) {
	exit := make(chan os.Signal, 2)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: s.Handler(),
	}

	go func() {
		err := srv.ListenAndServe()
		if err != http.ErrServerClosed {
			pkg.FatalLog(err)
		}
	}()

	pkg.InfoLog("minisql web UI listening on", srv.Addr)
	<-exit
	pkg.DebugLog("Shutting down...")
	srv.Shutdown(context.Background())
}

// authorize checks HTTP basic credentials when a user is configured.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	if s.user == nil {
		return true
	}
	name, password, ok := r.BasicAuth()
	if !ok || !s.user.Validate(name, password) {
		w.Header().Set("WWW-Authenticate", `Basic realm="minisql"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}
