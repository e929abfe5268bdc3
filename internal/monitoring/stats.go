package monitoring

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Stats is a point-in-time snapshot of host and pool state, served to the
// admin monitoring view.
type Stats struct {
	Timestamp   time.Time  `json:"timestamp"`
	CPUPercent  float64    `json:"cpu_percent"`
	Memory      MemStats   `json:"memory"`
	Disk        DiskStats  `json:"disk"`
	DBPool      PoolStats  `json:"db_pool"`
}

type MemStats struct {
	TotalMB     uint64  `json:"total_mb"`
	UsedMB      uint64  `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

type DiskStats struct {
	TotalGB     uint64  `json:"total_gb"`
	UsedGB      uint64  `json:"used_gb"`
	UsedPercent float64 `json:"used_percent"`
}

type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
}

// Collect gathers a snapshot. Individual probe failures leave their section
// zeroed rather than failing the whole snapshot.
func Collect(pool *pgxpool.Pool) *Stats {
	stats := &Stats{Timestamp: time.Now().UTC()}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.Memory = MemStats{
			TotalMB:     vm.Total / 1024 / 1024,
			UsedMB:      vm.Used / 1024 / 1024,
			UsedPercent: vm.UsedPercent,
		}
	}

	if du, err := disk.Usage("/"); err == nil {
		stats.Disk = DiskStats{
			TotalGB:     du.Total / 1024 / 1024 / 1024,
			UsedGB:      du.Used / 1024 / 1024 / 1024,
			UsedPercent: du.UsedPercent,
		}
	}

	if pool != nil {
		p := pool.Stat()
		stats.DBPool = PoolStats{
			TotalConns:    p.TotalConns(),
			IdleConns:     p.IdleConns(),
			AcquiredConns: p.AcquiredConns(),
		}
	}

	return stats
}
