package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace      = "filepart"
	subsystemSplit = "split"
	subsystemStore = "store"
)

// SplitCollector tracks chunk and join activity and exposes it through a
// dedicated Prometheus registry.
type SplitCollector struct {
	registry *prometheus.Registry

	bytesChunked   prometheus.Counter
	bytesJoined    prometheus.Counter
	partsCreated   prometheus.Counter
	partsRead      prometheus.Counter
	filesIngested  prometheus.Counter
	filesAssembled prometheus.Counter
	ingestSeconds  prometheus.Histogram
	assembleSecs   prometheus.Histogram
}

func NewSplitCollector() *SplitCollector {
	c := &SplitCollector{
		registry: prometheus.NewRegistry(),
		bytesChunked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemSplit,
			Name:      "bytes_chunked_total",
			Help:      "Data bytes written into part files.",
		}),
		bytesJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemSplit,
			Name:      "bytes_joined_total",
			Help:      "Data bytes reassembled from part files.",
		}),
		partsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemSplit,
			Name:      "parts_created_total",
			Help:      "Part files produced by chunk passes.",
		}),
		partsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemSplit,
			Name:      "parts_read_total",
			Help:      "Part files consumed by join passes.",
		}),
		filesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemStore,
			Name:      "files_ingested_total",
			Help:      "Files chunked into the store.",
		}),
		filesAssembled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemStore,
			Name:      "files_assembled_total",
			Help:      "Files reassembled out of the store.",
		}),
		ingestSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemStore,
			Name:      "ingest_duration_seconds",
			Help:      "Wall time spent chunking a file into the store.",
			Buckets:   prometheus.DefBuckets,
		}),
		assembleSecs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemStore,
			Name:      "assemble_duration_seconds",
			Help:      "Wall time spent reassembling a file from the store.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	c.registry.MustRegister(
		c.bytesChunked,
		c.bytesJoined,
		c.partsCreated,
		c.partsRead,
		c.filesIngested,
		c.filesAssembled,
		c.ingestSeconds,
		c.assembleSecs,
	)
	return c
}

func (c *SplitCollector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *SplitCollector) ObserveChunk(parts int, bytes int64) {
	if c == nil {
		return
	}
	c.partsCreated.Add(float64(parts))
	c.bytesChunked.Add(float64(bytes))
}

func (c *SplitCollector) ObserveJoin(parts int, bytes int64) {
	if c == nil {
		return
	}
	c.partsRead.Add(float64(parts))
	c.bytesJoined.Add(float64(bytes))
}

func (c *SplitCollector) ObserveIngest(d time.Duration) {
	if c == nil {
		return
	}
	c.filesIngested.Inc()
	c.ingestSeconds.Observe(d.Seconds())
}

func (c *SplitCollector) ObserveAssemble(d time.Duration) {
	if c == nil {
		return
	}
	c.filesAssembled.Inc()
	c.assembleSecs.Observe(d.Seconds())
}
