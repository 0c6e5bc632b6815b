// Package speech speaks quiz words through a system text-to-speech command.
package speech

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Default speaking rates in words per minute.
const (
	DefaultRate     = 150
	DefaultSlowRate = 80
)

// ErrNoEngine is returned when no supported speech command is installed.
var ErrNoEngine = errors.New("no speech engine found (install espeak-ng or espeak)")

// Options configures a command speaker.
type Options struct {
	// Engine is the command to run; empty selects the first installed one.
	Engine   string
	Voice    string
	Rate     int
	SlowRate int
}

// Command speaks by running a TTS command in the background. Starting a new
// utterance cancels the previous one.
type Command struct {
	opts Options
	log  *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCommand resolves the engine and returns a speaker.
func NewCommand(opts Options, log *zap.Logger) (*Command, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Engine == "" {
		opts.Engine = detectEngine()
	}
	if opts.Engine == "" {
		return nil, ErrNoEngine
	}
	if _, err := exec.LookPath(opts.Engine); err != nil {
		return nil, err
	}
	if opts.Rate <= 0 {
		opts.Rate = DefaultRate
	}
	if opts.SlowRate <= 0 {
		opts.SlowRate = DefaultSlowRate
	}
	return &Command{opts: opts, log: log}, nil
}

// Speak starts speaking text and returns immediately.
func (c *Command) Speak(text string, slow bool) {
	rate := c.opts.Rate
	if slow {
		rate = c.opts.SlowRate
	}
	args := Args(c.opts.Engine, c.opts.Voice, rate, text)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	cmd := exec.CommandContext(ctx, c.opts.Engine, args...)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := cmd.Run(); err != nil && ctx.Err() == nil {
			c.log.Debug("speech failed", zap.String("engine", c.opts.Engine), zap.Error(err))
		}
	}()
}

// Close stops any utterance in progress and waits for it to exit.
func (c *Command) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Args builds the argument list for a supported engine.
func Args(engine, voice string, rate int, text string) []string {
	var args []string
	switch engine {
	case "say":
		args = append(args, "-r", strconv.Itoa(rate))
	default:
		args = append(args, "-s", strconv.Itoa(rate))
	}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	return append(args, text)
}

func detectEngine() string {
	candidates := []string{"espeak-ng", "espeak"}
	if runtime.GOOS == "darwin" {
		candidates = append([]string{"say"}, candidates...)
	}
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err == nil {
			return name
		}
	}
	return ""
}

// Nop is a speaker that stays silent.
type Nop struct{}

// Speak does nothing.
func (Nop) Speak(string, bool) {}
