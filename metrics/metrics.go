// Package metrics exposes file system statistics in the Prometheus exposition format.
//
//	fs, err := mfs.New(…)
//	prometheus.MustRegister(metrics.New(fs))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/outofforest/mfs"
)

var (
	freeBytesDesc = prometheus.NewDesc(
		"mfs_free_bytes",
		"Number of bytes available for new files.",
		nil, nil)
	usedBlocksDesc = prometheus.NewDesc(
		"mfs_used_blocks",
		"Number of data blocks in use.",
		nil, nil)
	freeBlocksDesc = prometheus.NewDesc(
		"mfs_free_blocks",
		"Number of free data blocks.",
		nil, nil)
	filesDesc = prometheus.NewDesc(
		"mfs_files",
		"Number of visible files.",
		nil, nil)
	pendingDeletionsDesc = prometheus.NewDesc(
		"mfs_pending_deletions",
		"Number of soft-deleted files waiting for reclamation.",
		nil, nil)
	operationsTotalDesc = prometheus.NewDesc(
		"mfs_operations_total",
		"Total number of successful operations per type.",
		[]string{"operation"}, nil)
	reclaimedTotalDesc = prometheus.NewDesc(
		"mfs_reclaimed_total",
		"Total number of reclaimed soft-deleted files.",
		nil, nil)
	failuresTotalDesc = prometheus.NewDesc(
		"mfs_failures_total",
		"Total number of failed operations.",
		nil, nil)
)

// StatsSource provides statistics of the file system.
type StatsSource interface {
	Stats() (mfs.Stats, error)
}

// Collector collects file system metrics.
type Collector struct {
	source StatsSource
}

// New creates a new collector reading from the source.
func New(source StatsSource) Collector {
	return Collector{
		source: source,
	}
}

// Describe implements prometheus.Collector.
func (Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- freeBytesDesc
	descs <- usedBlocksDesc
	descs <- freeBlocksDesc
	descs <- filesDesc
	descs <- pendingDeletionsDesc
	descs <- operationsTotalDesc
	descs <- reclaimedTotalDesc
	descs <- failuresTotalDesc
}

// Collect implements prometheus.Collector.
func (c Collector) Collect(metrics chan<- prometheus.Metric) {
	stats, err := c.source.Stats()
	if err != nil {
		metrics <- prometheus.NewInvalidMetric(filesDesc, err)
		return
	}

	metrics <- prometheus.MustNewConstMetric(freeBytesDesc, prometheus.GaugeValue, float64(stats.FreeBytes))
	metrics <- prometheus.MustNewConstMetric(usedBlocksDesc, prometheus.GaugeValue, float64(stats.UsedBlocks))
	metrics <- prometheus.MustNewConstMetric(freeBlocksDesc, prometheus.GaugeValue, float64(stats.FreeBlocks))
	metrics <- prometheus.MustNewConstMetric(filesDesc, prometheus.GaugeValue, float64(stats.Files))
	metrics <- prometheus.MustNewConstMetric(
		pendingDeletionsDesc,
		prometheus.GaugeValue,
		float64(stats.PendingDeletions),
	)

	for operation, value := range map[string]uint64{
		"put":         stats.Puts,
		"get":         stats.Gets,
		"delete":      stats.Deletes,
		"soft_delete": stats.SoftDeletes,
		"undelete":    stats.Undeletes,
	} {
		metrics <- prometheus.MustNewConstMetric(
			operationsTotalDesc,
			prometheus.CounterValue,
			float64(value),
			operation,
		)
	}

	metrics <- prometheus.MustNewConstMetric(reclaimedTotalDesc, prometheus.CounterValue, float64(stats.Reclaimed))
	metrics <- prometheus.MustNewConstMetric(failuresTotalDesc, prometheus.CounterValue, float64(stats.Failures))
}
