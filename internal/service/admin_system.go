// 文件路径: internal/service/admin_system.go
// 模块说明: 这是 internal 模块里的 admin_system 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package service

import (
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/repository"
)

// AdminSystemService 汇总后台仪表盘需要的系统与队列状态。
type AdminSystemService interface {
	SystemStatus(ctx context.Context) (AdminSystemStatus, error)
}

// NotificationQueueStats 提供通知队列积压指标，避免 async 包循环依赖。
type NotificationQueueStats interface {
	PendingEmails() int
	Dropped() int
}

// HostStatFetcher reads host metrics; tests swap in fixed values.
type HostStatFetcher struct {
	CPUPercent    func(interval time.Duration, percpu bool) ([]float64, error)
	VirtualMemory func() (*mem.VirtualMemoryStat, error)
	LoadAvg       func() (*load.AvgStat, error)
	HostUptime    func() (uint64, error)
}

// DefaultHostStatFetcher reads the real host through gopsutil.
func DefaultHostStatFetcher() HostStatFetcher {
	return HostStatFetcher{
		CPUPercent:    cpu.Percent,
		VirtualMemory: mem.VirtualMemory,
		LoadAvg:       load.Avg,
		HostUptime:    host.Uptime,
	}
}

// AdminSystemOptions 注入运行时依赖。
type AdminSystemOptions struct {
	Version           string
	Environment       string
	StartedAt         time.Time
	NotificationQueue NotificationQueueStats
	Store             repository.Store
	Host              *HostStatFetcher
	Now               func() time.Time
	HostnameResolver  func() (string, error)
}

type adminSystemService struct {
	version     string
	environment string
	startedAt   time.Time
	queue       NotificationQueueStats
	users       repository.UserRepository
	bakers      repository.BakerRepository
	host        HostStatFetcher
	now         func() time.Time
	hostname    func() (string, error)
}

// AdminSystemStatus 描述管理后台系统状态返回字段。
type AdminSystemStatus struct {
	Version     string           `json:"version"`
	GoVersion   string           `json:"go_version"`
	Environment string           `json:"environment"`
	Hostname    string           `json:"hostname"`
	StartedAt   time.Time        `json:"started_at"`
	Uptime      int64            `json:"uptime"`
	Goroutines  int              `json:"goroutines"`
	UserCount   int64            `json:"user_count"`
	BakerCount  int64            `json:"baker_count"`
	Queue       AdminQueueStatus `json:"queue"`
	Host        AdminHostStatus  `json:"host"`
}

// AdminQueueStatus 邮件队列积压。
type AdminQueueStatus struct {
	PendingEmails int   `json:"pending_emails"`
	DroppedEmails int   `json:"dropped_emails"`
}

// AdminHostStatus is a snapshot of the machine; fields stay zero when a probe fails.
type AdminHostStatus struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemTotal   uint64  `json:"mem_total"`
	MemUsed    uint64  `json:"mem_used"`
	Load1      float64 `json:"load1"`
	Load5      float64 `json:"load5"`
	Load15     float64 `json:"load15"`
	Uptime     uint64  `json:"uptime"`
}

// NewAdminSystemService 构建系统状态服务。
func NewAdminSystemService(opts AdminSystemOptions) AdminSystemService {
	startedAt := opts.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	hostResolver := opts.HostnameResolver
	if hostResolver == nil {
		hostResolver = os.Hostname
	}
	fetcher := DefaultHostStatFetcher()
	if opts.Host != nil {
		fetcher = *opts.Host
	}
	svc := &adminSystemService{
		version:     fallbackVersion(opts.Version),
		environment: fallbackEnv(opts.Environment),
		startedAt:   startedAt,
		queue:       opts.NotificationQueue,
		host:        fetcher,
		now:         nowFn,
		hostname:    hostResolver,
	}
	if opts.Store != nil {
		svc.users = opts.Store.Users()
		svc.bakers = opts.Store.Bakers()
	}
	return svc
}

// SystemStatus 汇总系统状态（版本、环境、计数、运行时信息）。
func (s *adminSystemService) SystemStatus(ctx context.Context) (AdminSystemStatus, error) {
	host, _ := s.hostname()
	now := s.now().UTC()
	uptime := now.Unix() - s.startedAt.Unix()
	if uptime < 0 {
		uptime = 0
	}

	status := AdminSystemStatus{
		Version:     s.version,
		GoVersion:   runtime.Version(),
		Environment: s.environment,
		Hostname:    host,
		StartedAt:   s.startedAt,
		Uptime:      uptime,
		Goroutines:  runtime.NumGoroutine(),
		Host:        s.collectHost(),
	}

	if s.users != nil {
		count, err := s.users.Count(ctx)
		if err != nil {
			return AdminSystemStatus{}, err
		}
		status.UserCount = count
	}
	if s.bakers != nil {
		limit := 1
		_, total, err := s.bakers.List(ctx, repository.ListQuery{Descriptor: query.Descriptor{Limit: &limit}})
		if err != nil {
			return AdminSystemStatus{}, err
		}
		status.BakerCount = total
	}
	if s.queue != nil {
		status.Queue = AdminQueueStatus{PendingEmails: s.queue.PendingEmails(), DroppedEmails: s.queue.Dropped()}
	}
	return status, nil
}

func (s *adminSystemService) collectHost() AdminHostStatus {
	var stat AdminHostStatus
	if s.host.CPUPercent != nil {
		if percents, err := s.host.CPUPercent(0, false); err == nil && len(percents) > 0 {
			stat.CPUPercent = percents[0]
		}
	}
	if s.host.VirtualMemory != nil {
		if v, err := s.host.VirtualMemory(); err == nil {
			stat.MemTotal = v.Total
			stat.MemUsed = v.Used
		}
	}
	if s.host.LoadAvg != nil {
		if l, err := s.host.LoadAvg(); err == nil {
			stat.Load1 = l.Load1
			stat.Load5 = l.Load5
			stat.Load15 = l.Load15
		}
	}
	if s.host.HostUptime != nil {
		if u, err := s.host.HostUptime(); err == nil {
			stat.Uptime = u
		}
	}
	return stat
}

// fallbackVersion 为空时回退到开发版本标识。
func fallbackVersion(version string) string {
	if strings.TrimSpace(version) == "" {
		return "dev"
	}
	return version
}

// fallbackEnv 为空时回退到 development。
func fallbackEnv(env string) string {
	if strings.TrimSpace(env) == "" {
		return "development"
	}
	return env
}
