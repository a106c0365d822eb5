package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"media-browser/internal/logging"
)

// RPCService calls a remote Enrichment Service over a JSON-RPC stream.
type RPCService struct {
	conn *jsonrpc2.Conn
}

// NewRPCService starts a JSON-RPC connection over rwc. The remote side is
// not expected to send requests of its own.
func NewRPCService(ctx context.Context, rwc io.ReadWriteCloser) *RPCService {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	handler := jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled"}
	})
	return &RPCService{conn: jsonrpc2.NewConn(ctx, stream, handler)}
}

// CreateThumbnail implements Service.
func (s *RPCService) CreateThumbnail(ctx context.Context, req Request) (Response, error) {
	var resp Response
	if err := s.conn.Call(ctx, MethodCreateThumbnail, req, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// Greeting performs the getGreeting handshake.
func (s *RPCService) Greeting(ctx context.Context, name string) (string, error) {
	var greeting string
	if err := s.conn.Call(ctx, MethodGetGreeting, name, &greeting); err != nil {
		return "", err
	}
	return greeting, nil
}

// Disconnected is closed when the connection ends.
func (s *RPCService) Disconnected() <-chan struct{} {
	return s.conn.DisconnectNotify()
}

// Close closes the connection.
func (s *RPCService) Close() error {
	err := s.conn.Close()
	if errors.Is(err, jsonrpc2.ErrClosed) {
		return nil
	}
	return err
}

// ProcessConfig describes an external Enrichment Service executable.
type ProcessConfig struct {
	Command string
	Args    []string
	Dir     string
}

// ProcessClient runs an Enrichment Service as a child process and talks to
// it over stdin/stdout. The child's stderr is forwarded to ours.
type ProcessClient struct {
	*RPCService
	cmd    *exec.Cmd
	cancel context.CancelFunc
	once   sync.Once
}

// StartProcess launches cfg.Command and performs the greeting handshake.
func StartProcess(ctx context.Context, cfg ProcessConfig) (*ProcessClient, error) {
	if cfg.Command == "" {
		return nil, errors.New("command is required for enrichment process")
	}

	procCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(procCtx, cfg.Command, cfg.Args...)
	cmd.Dir = cfg.Dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, err
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start %s: %w", cfg.Command, err)
	}

	client := &ProcessClient{
		RPCService: NewRPCService(procCtx, &stdioReadWriteCloser{reader: stdout, writer: stdin}),
		cmd:        cmd,
		cancel:     cancel,
	}

	go func() {
		<-client.Disconnected()
		logging.Info("Enrichment service %s disconnected", cfg.Command)
	}()

	greeting, err := client.Greeting(ctx, "media-browser")
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("enrichment service handshake failed: %w", err)
	}
	logging.Info("Enrichment service %s: %s", cfg.Command, greeting)

	return client, nil
}

// Close terminates the connection and the child process.
func (c *ProcessClient) Close() error {
	var err error
	c.once.Do(func() {
		err = c.RPCService.Close()
		c.cancel()
		if c.cmd.Process != nil {
			_ = c.cmd.Process.Kill()
			_ = c.cmd.Wait()
		}
	})
	return err
}

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.reader.Read(p) }
func (s *stdioReadWriteCloser) Write(p []byte) (int, error) { return s.writer.Write(p) }
func (s *stdioReadWriteCloser) Close() error {
	_ = s.reader.Close()
	return s.writer.Close()
}

// NewHandler serves svc over JSON-RPC. Service errors are reported in
// Response.Exception rather than as JSON-RPC errors, so that clients can
// tell a failed file from a broken connection.
func NewHandler(svc Service) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		switch req.Method {
		case MethodGetGreeting:
			var name string
			if req.Params != nil {
				if err := json.Unmarshal(*req.Params, &name); err != nil {
					return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
				}
			}
			return "Hello, " + name, nil

		case MethodCreateThumbnail:
			if req.Params == nil {
				return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing request"}
			}
			var r Request
			if err := json.Unmarshal(*req.Params, &r); err != nil {
				return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
			}
			resp, err := svc.CreateThumbnail(ctx, r)
			if err != nil {
				logging.Warn("createThumbnail %s: %v", r.Path, err)
				return Response{Exception: err.Error()}, nil
			}
			return resp, nil

		default:
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not found: " + req.Method}
		}
	})
}

// Serve answers requests on rwc until the peer disconnects or ctx ends.
func Serve(ctx context.Context, rwc io.ReadWriteCloser, svc Service) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, NewHandler(svc))

	select {
	case <-conn.DisconnectNotify():
		return nil
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	}
}

// NewStdio joins an input and an output stream, e.g. os.Stdin and os.Stdout,
// into the ReadWriteCloser Serve expects.
func NewStdio(in io.ReadCloser, out io.WriteCloser) io.ReadWriteCloser {
	return &stdioReadWriteCloser{reader: in, writer: out}
}
