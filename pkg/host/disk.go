// Package host probes the machine the benchmark runs on. The disk
// monitor reads cumulative sector counters to bound what the hardware
// actually delivered; the CPU monitor reads process accounting ticks to
// tell whether the measurement itself was compute-bound. Both are used
// to judge the quality of a measurement, not to produce one.
package host

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Disk holds the read counters for one physical block device.
type Disk struct {
	Name            string
	BytesPerSector  int64
	CurSectorsRead  int64
	LastSectorsRead int64
}

// DiskMonitor tracks cumulative sectors-read per physical disk via the
// kernel's diskstats interface. Partitions (no sector-size attribute)
// and loop devices are excluded. If no device is discoverable at init
// the monitor goes permanently unavailable: Update and FastestRead
// become no-ops and a single diagnostic is logged.
type DiskMonitor struct {
	disks  []Disk
	logger *slog.Logger

	// source paths, swappable in tests
	statsPath string
	blockPath string
}

// NewDiskMonitor enumerates the host's physical disks.
func NewDiskMonitor(logger *slog.Logger) *DiskMonitor {
	return newDiskMonitor(logger, "/proc/diskstats", "/sys/block")
}

func newDiskMonitor(logger *slog.Logger, statsPath, blockPath string) *DiskMonitor {
	m := &DiskMonitor{
		logger:    logger,
		statsPath: statsPath,
		blockPath: blockPath,
	}

	counters, err := m.readCounters()
	if err != nil {
		m.logger.Warn("disk I/O monitoring unavailable", "err", err)
		return m
	}
	for name, sectors := range counters {
		size, err := m.sectorSize(name)
		if err != nil {
			// No hw_sector_size attribute: a partition, not a disk.
			continue
		}
		m.disks = append(m.disks, Disk{
			Name:           name,
			BytesPerSector: size,
			CurSectorsRead: sectors,
		})
	}
	if len(m.disks) == 0 {
		m.logger.Warn("no physical disks found, disk I/O monitoring disabled")
	}
	return m
}

// Available reports whether any disk is being monitored.
func (m *DiskMonitor) Available() bool {
	return len(m.disks) > 0
}

// Disks returns the monitored devices. The slice is shared; callers
// must not mutate it.
func (m *DiskMonitor) Disks() []Disk {
	return m.disks
}

// Update refreshes the counters for every monitored disk that is still
// present, shifting the previous reading into the "last" slot. Devices
// that vanished keep their stale counters.
func (m *DiskMonitor) Update() {
	if !m.Available() {
		return
	}
	counters, err := m.readCounters()
	if err != nil {
		m.logger.Warn("reading disk counters failed", "err", err)
		return
	}
	for i := range m.disks {
		d := &m.disks[i]
		sectors, ok := counters[d.Name]
		if !ok {
			continue
		}
		d.LastSectorsRead = d.CurSectorsRead
		d.CurSectorsRead = sectors
	}
}

// FastestRead returns the bytes read since the previous Update by the
// busiest single device. It is an upper bound on the real disk
// throughput any measurement could honestly have seen.
func (m *DiskMonitor) FastestRead() int64 {
	var fastest int64
	for _, d := range m.disks {
		read := d.BytesPerSector * (d.CurSectorsRead - d.LastSectorsRead)
		if read > fastest {
			fastest = read
		}
	}
	return fastest
}

// readCounters parses the diskstats source into name -> cumulative
// sectors read, skipping loop devices. Line layout:
//
//	8       4 sda4 5 0 28 108 0 0 0 0 0 108 108
//	     name--^      ^--sectors read
func (m *DiskMonitor) readCounters() (map[string]int64, error) {
	f, err := os.Open(m.statsPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", m.statsPath, err)
	}
	defer f.Close()

	counters := make(map[string]int64)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 6 {
			continue
		}
		name := fields[2]
		if strings.HasPrefix(name, "loop") {
			continue
		}
		sectors, err := strconv.ParseInt(fields[5], 10, 64)
		if err != nil {
			continue
		}
		counters[name] = sectors
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", m.statsPath, err)
	}
	return counters, nil
}

// sectorSize reads the device's hardware sector size. The attribute
// only exists for whole disks, which is how partitions get filtered.
func (m *DiskMonitor) sectorSize(name string) (int64, error) {
	path := filepath.Join(m.blockPath, name, "queue", "hw_sector_size")
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	size, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return size, nil
}
