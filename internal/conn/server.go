package conn

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cloudcache/fleetstore/internal/auth"
	"github.com/cloudcache/fleetstore/internal/store"
	"github.com/cloudcache/fleetstore/pkg"
)

type WriteSettings struct {
	write_path     string
	in_mem         bool
	write_ticker   *time.Ticker
	write_interval time.Duration
}

func NewWriteSettings(write_path string, in_mem bool, write_interval_ms int) *WriteSettings {
	var write_ticker *time.Ticker
	write_interval := time.Duration(write_interval_ms) * time.Millisecond
	if !in_mem {
		if len(write_path) == 0 {
			pkg.FatalLog("Must either provide snapshot path or use in-memory mode")
		}
		write_ticker = time.NewTicker(write_interval)
	}
	return &WriteSettings{write_path, in_mem, write_ticker, write_interval}
}

type LogOptions struct {
	Should_log      bool
	Show_debug_logs bool
}

type AuthSettings struct {
	Username string
	Password string
}

// Server exposes the model over websockets. The model itself has no
// locking; the server's RWMutex is the single point that serializes
// writers, so every model access goes through ActionHandler's lock.
type Server struct {
	Locker sync.RWMutex

	Model          *store.Model
	Users          pkg.Map[string, *auth.User]
	write_settings *WriteSettings
	last_change    time.Time
}

func NewServer(auth_settings AuthSettings, write_settings *WriteSettings, log_options LogOptions) *Server {
	store.GobRegisterTypes()
	if log_options.Should_log {
		if log_options.Show_debug_logs {
			pkg.SetLogLevel(pkg.LogLevelDebug)
		} else {
			pkg.SetLogLevel(pkg.LogLevelErrOnly)
		}
	} else {
		pkg.SetLogLevel(pkg.LogLevelNone)
	}

	s := &Server{
		Model:          store.NewModel(),
		Users:          pkg.Map[string, *auth.User]{},
		write_settings: write_settings,
	}

	if !write_settings.in_mem {
		if _, err := os.Stat(write_settings.write_path); err == nil {
			if err := s.Model.ReadFromFile(write_settings.write_path); err != nil {
				pkg.ErrorLog("failed to load snapshot;", err)
			} else {
				pkg.InfoLog("loaded snapshot from", write_settings.write_path)
			}
		}
	}

	if auth_settings.Username != "" {
		user := auth.NewUser(auth_settings.Username, auth_settings.Password, auth.UserRoleAdmin)
		s.Users.Set(user.Id, user)
	}

	s.last_change = time.Now()
	return s
}

func (s *Server) GetLocker() *sync.RWMutex { return &s.Locker }

func (s *Server) Listen(port int) {
	exit := make(chan os.Signal, 2)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", s.HandleConnection)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  0,
		WriteTimeout: 0,
	}

	// listen for requests on non-blocking thread
	go func() {
		err := srv.ListenAndServe()
		if err != http.ErrServerClosed {
			pkg.FatalLog(err)
		}
	}()

	go s.writeLoop()

	pkg.InfoLog("fleetstore listening on port", port)
	<-exit
	pkg.InfoLog("shutting down...")
	srv.Shutdown(context.Background())
	s.WriteToFile()
}

func (s *Server) writeLoop() {
	if s.write_settings.write_ticker == nil {
		return
	}

	last_write := s.last_change
	for range s.write_settings.write_ticker.C {
		if s.last_change.After(last_write) {
			s.WriteToFile()
			last_write = s.last_change
		}
	}
}

func (s *Server) WriteToFile() {
	if s.write_settings.in_mem {
		return
	}
	pkg.RLockWrap(s, func() {
		if err := s.Model.WriteToFile(s.write_settings.write_path); err != nil {
			pkg.ErrorLog("failed to write snapshot;", err)
		}
	})
}
