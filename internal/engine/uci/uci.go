// Package uci implements an engine.Evaluator over a UCI engine subprocess.
//
// A Session owns exactly one engine process at a time. It performs the
// uci/isready handshake, applies configuration, and exchanges
// position/go/bestmove messages. When the process crashes or exceeds the
// hard time ceiling, the session kills it, starts a fresh process with
// identical configuration, and retries the evaluation exactly once; a
// second failure surfaces engine.UnavailableError.
//
// A Session is intended to be driven by a single goroutine. Close is the
// exception: it may be called at any time, including mid-evaluation, and
// always reaps the process.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/gamereview/internal/engine"
	"github.com/discochess/gamereview/internal/stats"
)

const (
	// handshakeTimeout bounds the uci/isready exchanges at startup.
	handshakeTimeout = 10 * time.Second

	// ceilingFactor scales the configured move time into the hard ceiling
	// after which an unresponsive engine is declared dead.
	ceilingFactor = 4

	// minCeiling is the floor for the hard ceiling, so aggressive move
	// time budgets still leave the engine room to answer.
	minCeiling = 5 * time.Second

	// defaultCeiling applies when no move time budget is configured and
	// the search is bounded by depth alone.
	defaultCeiling = 60 * time.Second
)

// Config holds the engine invocation and search settings. The zero value is
// not usable; Path is required and Depth must be positive.
type Config struct {
	// Path is the engine binary.
	Path string

	// Args are extra command line arguments for the engine.
	Args []string

	// Depth is the search depth requested per position.
	Depth int

	// MoveTime is the optional wall-clock budget per position. Zero means
	// the search is bounded by depth only.
	MoveTime time.Duration

	// Options are extra UCI options sent with setoption during startup.
	Options map[string]string
}

// Session drives one UCI engine process.
type Session struct {
	cfg    Config
	logger *zap.Logger
	stats  stats.Collector

	mu     sync.Mutex // guards proc against Close racing Evaluate
	proc   *process
	closed atomic.Bool
}

// Compile-time check that Session implements engine.Evaluator.
var _ engine.Evaluator = (*Session)(nil)

// NewSession creates a session. The engine process is started lazily on the
// first Evaluate so construction never blocks on process spawn.
func NewSession(cfg Config, logger *zap.Logger, collector stats.Collector) (*Session, error) {
	if cfg.Path == "" {
		return nil, errors.New("uci: engine path is required")
	}
	if cfg.Depth <= 0 {
		return nil, &engine.ConfigError{Option: "depth", Reason: fmt.Sprintf("must be positive, got %d", cfg.Depth)}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Session{
		cfg:    cfg,
		logger: logger,
		stats:  collector,
	}, nil
}

// Evaluate sends the position to the engine and blocks until it reports a
// result at the configured depth, the move time budget elapses, or the hard
// ceiling is hit. Crash and timeout trigger one restart-and-retry.
func (s *Session) Evaluate(ctx context.Context, fen string) (*engine.Evaluation, error) {
	if s.closed.Load() {
		return nil, engine.ErrClosed
	}

	start := time.Now()
	ev, err := s.evaluateOnce(ctx, fen)
	if err == nil {
		s.stats.ObserveHistogram(stats.MetricEvalSeconds, time.Since(start).Seconds())
		return ev, nil
	}

	// Configuration errors are systemic; restarting cannot help.
	var cfgErr *engine.ConfigError
	if errors.As(err, &cfgErr) || errors.Is(err, engine.ErrClosed) {
		return nil, err
	}
	// Caller cancellation mid-search leaves the engine in an unknown
	// protocol state; drop the process so the next use starts clean.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.dropProcess()
		return nil, err
	}

	s.logger.Warn("engine failed, restarting once",
		zap.String("fen", fen),
		zap.Error(err),
	)
	s.stats.IncCounter(stats.MetricEngineRestarts, 1)
	s.dropProcess()

	ev, err = s.evaluateOnce(ctx, fen)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, engine.ErrClosed) {
			return nil, err
		}
		s.stats.IncCounter(stats.MetricEngineFailures, 1)
		s.dropProcess()
		return nil, &engine.UnavailableError{Cause: err}
	}

	s.stats.ObserveHistogram(stats.MetricEvalSeconds, time.Since(start).Seconds())
	return ev, nil
}

// Close terminates the engine process. Safe to call repeatedly and while an
// evaluation is in flight; the in-flight call fails with a process error.
func (s *Session) Close() error {
	s.closed.Store(true)
	s.dropProcess()
	return nil
}

// evaluateOnce runs a single position/go/bestmove exchange against the
// current process, starting one if needed.
func (s *Session) evaluateOnce(ctx context.Context, fen string) (*engine.Evaluation, error) {
	proc, err := s.acquireProcess(ctx)
	if err != nil {
		return nil, err
	}

	if err := proc.send("position fen " + fen); err != nil {
		return nil, fmt.Errorf("sending position: %w", err)
	}

	goCmd := fmt.Sprintf("go depth %d", s.cfg.Depth)
	if s.cfg.MoveTime > 0 {
		goCmd += fmt.Sprintf(" movetime %d", s.cfg.MoveTime.Milliseconds())
	}
	if err := proc.send(goCmd); err != nil {
		return nil, fmt.Errorf("sending go: %w", err)
	}

	ceiling := s.hardCeiling()
	timer := time.NewTimer(ceiling)
	defer timer.Stop()

	var best searchResult
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, fmt.Errorf("engine unresponsive for %s", ceiling)
		case line, ok := <-proc.lines:
			if !ok {
				return nil, errors.New("engine process exited mid-search")
			}
			if info, ok := parseInfo(line); ok {
				best.apply(info)
				continue
			}
			if move, ok := parseBestMove(line); ok {
				return &engine.Evaluation{
					Score:    best.score,
					BestMove: move,
					Depth:    best.depth,
				}, nil
			}
		}
	}
}

// searchResult accumulates the deepest score line seen during a search.
type searchResult struct {
	score engine.Score
	depth int
}

func (r *searchResult) apply(info infoLine) {
	// Engines emit info lines of increasing depth; keep the deepest
	// scored line, and prefer exact scores over bound reports at the
	// same depth.
	if !info.hasScore {
		return
	}
	if info.depth < r.depth {
		return
	}
	if info.depth == r.depth && info.bound {
		return
	}
	r.score = info.score
	r.depth = info.depth
}

func (s *Session) hardCeiling() time.Duration {
	if s.cfg.MoveTime <= 0 {
		return defaultCeiling
	}
	ceiling := s.cfg.MoveTime * ceilingFactor
	if ceiling < minCeiling {
		ceiling = minCeiling
	}
	return ceiling
}

// acquireProcess returns the running process, starting one if necessary.
func (s *Session) acquireProcess(ctx context.Context) (*process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, engine.ErrClosed
	}
	if s.proc != nil {
		return s.proc, nil
	}

	proc, err := startProcess(ctx, s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	s.proc = proc
	return proc, nil
}

// dropProcess terminates and forgets the current process, if any.
func (s *Session) dropProcess() {
	s.mu.Lock()
	proc := s.proc
	s.proc = nil
	s.mu.Unlock()

	if proc != nil {
		proc.stop()
	}
}

// process is one running engine binary with its pipes and reader goroutine.
type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	lines  chan string
	logger *zap.Logger
}

// startProcess spawns the engine and completes the UCI handshake and
// configuration. On any failure the process is reaped before returning.
func startProcess(ctx context.Context, cfg Config, logger *zap.Logger) (*process, error) {
	cmd := exec.Command(cfg.Path, cfg.Args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting engine %s: %w", cfg.Path, err)
	}

	p := &process{
		cmd:    cmd,
		stdin:  stdin,
		lines:  make(chan string, 256),
		logger: logger,
	}

	go func() {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			p.lines <- scanner.Text()
		}
		close(p.lines)
	}()

	if err := p.handshake(ctx, cfg); err != nil {
		p.stop()
		return nil, err
	}

	logger.Debug("engine started",
		zap.String("path", cfg.Path),
		zap.Int("pid", cmd.Process.Pid),
		zap.Int("depth", cfg.Depth),
	)

	return p, nil
}

// handshake performs uci/uciok, applies options, and waits for readyok.
func (p *process) handshake(ctx context.Context, cfg Config) error {
	if err := p.send("uci"); err != nil {
		return fmt.Errorf("sending uci: %w", err)
	}
	if _, err := p.waitFor(ctx, "uciok"); err != nil {
		return fmt.Errorf("waiting for uciok: %w", err)
	}

	for name, value := range cfg.Options {
		if err := p.send(fmt.Sprintf("setoption name %s value %s", name, value)); err != nil {
			return fmt.Errorf("sending setoption %s: %w", name, err)
		}
	}

	if err := p.send("isready"); err != nil {
		return fmt.Errorf("sending isready: %w", err)
	}
	complaints, err := p.waitFor(ctx, "readyok")
	if err != nil {
		return fmt.Errorf("waiting for readyok: %w", err)
	}

	// UCI engines don't acknowledge options; rejection shows up as a
	// complaint line printed before readyok.
	for _, line := range complaints {
		if option, ok := parseOptionComplaint(line); ok {
			return &engine.ConfigError{Option: option, Reason: line}
		}
	}

	return nil
}

// waitFor reads lines until one equals marker, returning the lines seen
// before it. The handshake timeout bounds the wait.
func (p *process) waitFor(ctx context.Context, marker string) ([]string, error) {
	timer := time.NewTimer(handshakeTimeout)
	defer timer.Stop()

	var seen []string
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, fmt.Errorf("no %s within %s", marker, handshakeTimeout)
		case line, ok := <-p.lines:
			if !ok {
				return nil, fmt.Errorf("engine exited before %s", marker)
			}
			if strings.TrimSpace(line) == marker {
				return seen, nil
			}
			seen = append(seen, line)
		}
	}
}

func (p *process) send(cmd string) error {
	_, err := io.WriteString(p.stdin, cmd+"\n")
	return err
}

// stop terminates the process, politely first, then by force, and always
// reaps it. The reader goroutine exits on pipe EOF; any buffered lines are
// drained so it can finish.
func (p *process) stop() {
	_ = p.send("quit")
	_ = p.stdin.Close()

	// Keep the reader goroutine unblocked while the engine flushes its
	// remaining output.
	go func() {
		for range p.lines {
		}
	}()

	done := make(chan struct{})
	go func() {
		_ = p.cmd.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		_ = p.cmd.Process.Kill()
		<-done
	}
}
