package services

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

const (
	healthHistorySize  = 120
	healthWriteTimeout = 5 * time.Second
)

type HealthSample struct {
	CapturedAt        time.Time `json:"capturedAt"`
	ProcessRSSBytes   int64     `json:"processRssBytes"`
	SystemMemoryTotal int64     `json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64     `json:"diskTotalBytes"`
	DiskUsedBytes     int64     `json:"diskUsedBytes"`
	ProcessCPULoad    float64   `json:"processCpuLoad"`
	SystemCPULoad     float64   `json:"systemCpuLoad"`
}

// CaptureHealth samples the process and host. Individual reading failures leave
// their fields at zero.
func CaptureHealth(diskPath string) HealthSample {
	sample := HealthSample{CapturedAt: time.Now().UTC()}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfo(); err == nil && info != nil {
			sample.ProcessRSSBytes = int64(info.RSS)
		}
		if load, err := proc.CPUPercent(); err == nil {
			sample.ProcessCPULoad = load / 100.0
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		sample.SystemMemoryTotal = int64(vm.Total)
		sample.SystemMemoryUsed = int64(vm.Total - vm.Available)
	}
	usage, err := disk.Usage(diskPath)
	if err != nil {
		usage, err = disk.Usage("/")
	}
	if err == nil {
		sample.DiskTotalBytes = int64(usage.Total)
		sample.DiskUsedBytes = int64(usage.Used)
	}
	if loads, err := cpu.Percent(0, false); err == nil && len(loads) > 0 {
		sample.SystemCPULoad = loads[0] / 100.0
	}
	return sample
}

// HealthSubscriber is the write side of a websocket connection.
type HealthSubscriber interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v interface{}) error
	Close() error
}

// HealthHub keeps recent samples and fans them out to websocket subscribers.
type HealthHub struct {
	mu      sync.Mutex
	clients map[HealthSubscriber]bool
	history []HealthSample
	ch      chan HealthSample
}

func NewHealthHub() *HealthHub {
	return &HealthHub{
		clients: map[HealthSubscriber]bool{},
		ch:      make(chan HealthSample, 16),
	}
}

// Run records each sample and writes it to subscribers outside the lock, so a
// slow connection holds up neither History nor Add.
func (h *HealthHub) Run(ctx context.Context) {
	for {
		select {
		case sample := <-h.ch:
			for _, conn := range h.record(sample) {
				_ = conn.SetWriteDeadline(time.Now().Add(healthWriteTimeout))
				if err := conn.WriteJSON(sample); err != nil {
					slog.Debug("health subscriber write failed", "error", err)
					_ = conn.Close()
					h.Remove(conn)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *HealthHub) record(sample HealthSample) []HealthSubscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history = append(h.history, sample)
	if len(h.history) > healthHistorySize {
		h.history = h.history[len(h.history)-healthHistorySize:]
	}
	clients := make([]HealthSubscriber, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
	}
	return clients
}

// Broadcast drops the sample when the hub is behind.
func (h *HealthHub) Broadcast(sample HealthSample) {
	select {
	case h.ch <- sample:
	default:
	}
}

func (h *HealthHub) History() []HealthSample {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HealthSample{}, h.history...)
}

func (h *HealthHub) Add(conn HealthSubscriber) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *HealthHub) Remove(conn HealthSubscriber) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// SampleLoop captures a sample every interval until ctx ends.
func SampleLoop(ctx context.Context, hub *HealthHub, diskPath string, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			hub.Broadcast(CaptureHealth(diskPath))
		case <-ctx.Done():
			return
		}
	}
}
