package launcher

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/mem"
)

const (
	gib = 1 << 30

	minHeapGiB = 2
	maxHeapGiB = 8
)

// g1Flags are the garbage collector settings the vanilla launcher uses.
var g1Flags = []string{
	"-XX:+UnlockExperimentalVMOptions",
	"-XX:+UseG1GC",
	"-XX:G1NewSizePercent=20",
	"-XX:G1ReservePercent=20",
	"-XX:MaxGCPauseMillis=50",
	"-XX:G1HeapRegionSize=32M",
}

// HeapGiB returns the maximum heap for a host with totalMemory bytes:
// half of it, clamped to [2, 8] GiB.
func HeapGiB(totalMemory uint64) int {
	heap := int(totalMemory / 2 / gib)
	return min(max(heap, minHeapGiB), maxHeapGiB)
}

// TunedJavaArgs returns the JVM arguments for a host with totalMemory
// bytes of RAM.
func TunedJavaArgs(totalMemory uint64) string {
	args := append([]string{fmt.Sprintf("-Xmx%dG", HeapGiB(totalMemory))}, g1Flags...)
	return strings.Join(args, " ")
}

// HostMemory returns the total physical memory of the host.
func HostMemory() (uint64, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return v.Total, nil
}

// HostJavaArgs returns TunedJavaArgs for this host. When memory cannot
// be read the minimum heap is used.
func HostJavaArgs() string {
	total, err := HostMemory()
	if err != nil {
		total = 0
	}
	return TunedJavaArgs(total)
}
