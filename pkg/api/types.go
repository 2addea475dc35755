package api

import (
	"math"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/axlframe/pkg/codec"
	"github.com/ssargent/axlframe/pkg/collection"
	"github.com/ssargent/axlframe/pkg/summary"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Addr           string // Listen address
	APIKey         string // Required X-API-Key value ("" = no authentication)
	MaxUploadBytes int64  // Largest accepted collection upload (0 = 64 MiB)
}

func (c ServerConfig) withDefaults() ServerConfig {
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 64 << 20
	}
	return c
}

// PacketView is the JSON form of an archived packet
type PacketView struct {
	ID           string     `json:"id"`
	Timestamp    int64      `json:"timestamp"`
	Offset       uint16     `json:"offset"`
	StorageID    *uint32    `json:"storage_id"`
	PositionTime uint32     `json:"position_time"`
	Lon          float64    `json:"lon"`
	Lat          float64    `json:"lat"`
	Freq         float32    `json:"freq"`
	Samples      int        `json:"samples"`
	Data         []float32  `json:"data,omitempty"`
	Stats        *StatsView `json:"stats,omitempty"`
}

// StatsView is the JSON form of packet sample statistics
type StatsView struct {
	Count    int        `json:"count"`
	Mean     float64    `json:"mean"`
	StdDev   float64    `json:"stddev"`
	Min      float64    `json:"min"`
	Max      float64    `json:"max"`
	Duration string     `json:"duration"`
	Axes     [3]float64 `json:"axes"` // Per-axis means
}

// FailureView describes a frame dropped during import
type FailureView struct {
	Index  int    `json:"index"`
	Offset int64  `json:"offset"`
	Error  string `json:"error"`
}

// ImportResponse reports the outcome of a collection upload
type ImportResponse struct {
	Bytes          int           `json:"bytes"`
	Frames         int           `json:"frames"`
	Decoded        int           `json:"decoded"`
	RemainderBytes int           `json:"remainder_bytes"`
	Dropped        []FailureView `json:"dropped,omitempty"`
	IDs            []string      `json:"ids"`
}

func newPacketView(id ksuid.KSUID, p *codec.Packet) PacketView {
	return PacketView{
		ID:           id.String(),
		Timestamp:    p.Timestamp,
		Offset:       p.Offset,
		StorageID:    p.StorageID,
		PositionTime: p.PositionTime,
		Lon:          p.Lon,
		Lat:          p.Lat,
		Freq:         p.Freq,
		Samples:      p.Data.Len(),
	}
}

func newStatsView(p *codec.Packet) *StatsView {
	s := summary.Packet(p)
	v := &StatsView{
		Count:    s.Count,
		Mean:     finite(s.Mean),
		StdDev:   finite(s.StdDev),
		Min:      finite(s.Min),
		Max:      finite(s.Max),
		Duration: s.Duration.Round(time.Millisecond).String(),
	}
	for i, m := range summary.Axes(p) {
		v.Axes[i] = finite(m)
	}
	return v
}

// finite maps values JSON cannot carry to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func newImportResponse(c *collection.Collection, ids []ksuid.KSUID) ImportResponse {
	resp := ImportResponse{
		Bytes:          c.Report.Bytes,
		Frames:         c.Report.Frames,
		Decoded:        c.Report.Decoded,
		RemainderBytes: c.Report.RemainderBytes,
		IDs:            make([]string, len(ids)),
	}
	for i, id := range ids {
		resp.IDs[i] = id.String()
	}
	for _, f := range c.Report.Failures {
		resp.Dropped = append(resp.Dropped, FailureView{Index: f.Index, Offset: f.Offset, Error: f.Err.Error()})
	}
	return resp
}
