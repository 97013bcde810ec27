// Package job runs periodic background work on a cron schedule.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Runnable 表示由调度器触发的后台任务。
type Runnable interface {
	Name() string
	Run(ctx context.Context) error
}

// Entry describes a registered job.
type Entry struct {
	Name string
	Spec string
	Next time.Time
}

// Scheduler 封装 cron，并提供日志、手动触发与优雅停机。
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	started bool
	jobs    map[string]registered
}

type registered struct {
	runnable Runnable
	spec     string
	id       cron.EntryID
}

const defaultJobTimeout = 2 * time.Minute

// NewScheduler builds a scheduler accepting optional seconds and descriptors like "@every 1m".
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron:    cron.New(cron.WithParser(parser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		timeout: defaultJobTimeout,
		jobs:    make(map[string]registered),
	}
}

// Register 绑定 cron 表达式与任务，同名任务只能注册一次。
func (s *Scheduler) Register(spec string, runnable Runnable) error {
	if runnable == nil {
		return fmt.Errorf("scheduler: runnable is required / runnable 不能为空")
	}
	if spec == "" {
		return fmt.Errorf("scheduler: spec is required / spec 不能为空")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[runnable.Name()]; exists {
		return fmt.Errorf("scheduler: job %s already registered / 任务已注册", runnable.Name())
	}
	id, err := s.cron.AddFunc(spec, func() { _ = s.execute(context.Background(), runnable) })
	if err != nil {
		return fmt.Errorf("scheduler: %s: %w", runnable.Name(), err)
	}
	s.jobs[runnable.Name()] = registered{runnable: runnable, spec: spec, id: id}
	s.logger.Info("job registered", "job", runnable.Name(), "spec", spec)
	return nil
}

// Entries lists registered jobs sorted by name.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.jobs))
	for name, r := range s.jobs {
		out = append(out, Entry{Name: name, Spec: r.spec, Next: s.cron.Entry(r.id).Next})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RunNow executes a registered job immediately in the caller's goroutine.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	r, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduler: unknown job %q / 未知任务", name)
	}
	return s.execute(ctx, r.runnable)
}

// Start 启动调度器。
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
}

// Stop 停止调度器，返回的 context 在运行中的任务结束后完成。
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return context.Background()
	}
	s.started = false
	return s.cron.Stop()
}

func (s *Scheduler) execute(parent context.Context, runnable Runnable) error {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()
	start := time.Now()
	if err := runnable.Run(ctx); err != nil {
		s.logger.Error("job failed", "job", runnable.Name(), "error", err, "elapsed", time.Since(start))
		return err
	}
	s.logger.Debug("job completed", "job", runnable.Name(), "elapsed", time.Since(start))
	return nil
}
