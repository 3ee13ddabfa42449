// Package remix drives the two packaging tools fed by a rendered playlist:
// unified_remix turns the SMIL into a progressive mp4 and mp4split turns that
// into a vod2live server manifest.
package remix

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"archive-remix/internal/isotime"
)

// ErrToolFailed wraps every failed tool invocation.
var ErrToolFailed = errors.New("packaging tool failed")

const (
	DefaultRemixBinary    = "unified_remix"
	DefaultMP4SplitBinary = "mp4split"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, dir, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets the logger used for command lines and tool output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithSecrets lists values masked when command lines are logged.
func WithSecrets(secrets ...string) Option {
	return func(c *Client) {
		c.secrets = append(c.secrets, secrets...)
	}
}

// Client wraps the unified_remix and mp4split command lines. Invocations are
// synchronous and run inside WorkDir.
type Client struct {
	remixBinary    string
	mp4splitBinary string
	workDir        string
	secrets        []string
	exec           Executor
	log            *slog.Logger
}

// New constructs a client. Empty binaries fall back to the tool names on PATH
// and an empty workDir means the current directory.
func New(remixBinary, mp4splitBinary, workDir string, opts ...Option) *Client {
	remixBinary = strings.TrimSpace(remixBinary)
	if remixBinary == "" {
		remixBinary = DefaultRemixBinary
	}
	mp4splitBinary = strings.TrimSpace(mp4splitBinary)
	if mp4splitBinary == "" {
		mp4splitBinary = DefaultMP4SplitBinary
	}
	if workDir == "" {
		workDir = "."
	}
	c := &Client{
		remixBinary:    remixBinary,
		mp4splitBinary: mp4splitBinary,
		workDir:        workDir,
		exec:           commandExecutor{},
		log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WorkDir returns the directory the tools run in.
func (c *Client) WorkDir() string { return c.workDir }

// Remix writes doc to "{period}.smil" and renders it to "{period}.mp4".
// It returns the mp4 name relative to the work directory.
func (c *Client) Remix(ctx context.Context, period string, doc []byte, options ...any) (string, error) {
	smilName := period + ".smil"
	mp4Name := period + ".mp4"

	if err := os.MkdirAll(c.workDir, 0o755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.workDir, smilName), doc, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", smilName, err)
	}

	args := Flatten("-o", mp4Name, options, smilName)
	if err := c.run(ctx, c.remixBinary, args); err != nil {
		return "", err
	}
	return mp4Name, nil
}

// CreateISML packages input into the server manifest output.
func (c *Client) CreateISML(ctx context.Context, input, output string, options ...any) error {
	args := Flatten("-o", output, options, input)
	return c.run(ctx, c.mp4splitBinary, args)
}

func (c *Client) run(ctx context.Context, binary string, args []string) error {
	c.log.Info("running packaging tool",
		slog.String("binary", binary),
		slog.String("args", strings.Join(Redact(args, c.secrets...), " ")))

	start := time.Now()
	err := c.exec.Run(ctx, c.workDir, binary, args, func(line string) {
		c.log.Debug("tool output", slog.String("binary", binary), slog.String("line", line))
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrToolFailed, filepath.Base(binary), err)
	}
	c.log.Debug("packaging tool finished",
		slog.String("binary", binary),
		slog.Int("duration_ms", int(time.Since(start).Milliseconds())))
	return nil
}

// S3AuthArgs returns the storage credential flags understood by both tools.
func S3AuthArgs(accessKey, secretKey, region string) []string {
	return []string{
		"--s3_access_key", accessKey,
		"--s3_secret_key", secretKey,
		"--s3_region", region,
	}
}

// ISMLOptions returns the mp4split flags that publish the remixed mp4 as a
// vod2live stream starting at start, timeShift seconds behind the live edge.
func ISMLOptions(start time.Time, timeShift int, auth []string) []any {
	return []any{
		"--vod2live",
		"--vod2live_start_time", isotime.Format(start),
		fmt.Sprintf("--time_shift=%d", timeShift),
		auth,
	}
}

// Flatten turns nested argument lists into a flat command line. Strings are
// kept as-is, slices are expanded in order and other values use fmt.Sprint.
func Flatten(parts ...any) []string {
	var out []string
	for _, p := range parts {
		switch v := p.(type) {
		case nil:
		case string:
			out = append(out, v)
		case []string:
			out = append(out, v...)
		case []any:
			out = append(out, Flatten(v...)...)
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

// Redact replaces every arg equal to one of secrets with "***".
func Redact(args []string, secrets ...string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a
		for _, s := range secrets {
			if s != "" && a == s {
				out[i] = "***"
				break
			}
		}
	}
	return out
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, dir, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Dir = dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onOutput != nil {
				onOutput(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
