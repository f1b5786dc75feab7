package e2etest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/myrjola/liftplan/internal/logging"
)

// LogAddrKey is the log attribute carrying the address the server listens on.
const LogAddrKey = "addr"

// LogDsnKey is the log attribute carrying the read-write SQLite DSN.
const LogDsnKey = "sqlDsn"

// RunFunc boots the application and blocks until ctx is cancelled.
type RunFunc func(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error

// Server is a running application under test with a logged out client and direct database access.
type Server struct {
	url    string
	client *Client
	db     *sql.DB
	stop   context.CancelCauseFunc
	done   chan struct{}
}

// bootInfo collects what the application logs while starting up.
type bootInfo struct {
	addr chan string
	dsn  chan string
}

func (b bootInfo) logger(sink io.Writer) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(sink, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case LogAddrKey:
				b.addr <- a.Value.String()
			case LogDsnKey:
				b.dsn <- a.Value.String()
			}
			return a
		},
	})))
}

// StartServer runs the application in the background and returns once /api/healthy answers.
//
// The server is shut down in t.Cleanup. Logs go to logSink, usually testhelpers.NewWriter(t).
func StartServer(t *testing.T, logSink io.Writer, lookupEnv func(string) (string, bool), run RunFunc) (*Server, error) {
	var server *Server
	t.Cleanup(func() {
		if server != nil {
			server.Shutdown()
		}
	})

	ctx, stop := context.WithCancelCause(t.Context())
	done := make(chan struct{})
	boot := bootInfo{addr: make(chan string, 1), dsn: make(chan string, 1)}
	go func() {
		defer close(done)
		if err := run(ctx, boot.logger(logSink), lookupEnv); err != nil {
			stop(err)
		}
	}()

	var addr, dsn string
	for addr == "" || dsn == "" {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("server exited during startup: %w", context.Cause(ctx))
		case addr = <-boot.addr:
		case dsn = <-boot.dsn:
		}
	}

	url := "http://" + addr
	client, err := NewClient(url)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return nil, fmt.Errorf("wait for ready: %w", err)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	server = &Server{url: url, client: client, db: db, stop: stop, done: done}
	return server, nil
}

func (s *Server) Client() *Client {
	return s.client
}

func (s *Server) URL() string {
	return s.url
}

// DB is a read-write handle to the application database for asserting on stored rows.
func (s *Server) DB() *sql.DB {
	return s.db
}

// NewClient returns another logged out client, e.g. for acting as a second user.
func (s *Server) NewClient() (*Client, error) {
	return NewClient(s.url)
}

// Shutdown cancels the application context and waits for run to return.
func (s *Server) Shutdown() {
	s.stop(nil)
	<-s.done
	_ = s.db.Close()
}
