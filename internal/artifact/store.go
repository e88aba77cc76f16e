// Package artifact persists versioned layer snapshots: a CSV data file plus
// a JSON schema descriptor sidecar. The store is the only place writes
// happen; every other component works on in-memory views read from it.
package artifact

import (
	"context"
	"time"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/frame"
	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
)

// Meta is the schema descriptor attached to every layer artifact.
type Meta struct {
	Table         string    `json:"table_name"`
	Format        string    `json:"format"`
	PartitionKeys []string  `json:"partitions"`
	RowCount      int       `json:"row_count"`
	SchemaVersion int       `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"`
	Columns       []string  `json:"columns"`
}

// Ref identifies one artifact within the store.
type Ref struct {
	Layer string `json:"layer"`
	Name  string `json:"name"`
}

// String returns the layer-qualified artifact name.
func (r Ref) String() string { return r.Layer + "." + r.Name }

// Store is the persistence contract for layer snapshots. Writes are
// atomic: a snapshot is either fully visible or not visible at all.
type Store interface {
	// ImportRaw copies an external raw CSV file into the bronze layer.
	ImportRaw(ctx context.Context, srcPath, name string) (Ref, error)

	// Generic column-oriented access, used by the validation engine.
	WriteFrame(ctx context.Context, layer, name string, f *frame.Frame, partitionKeys []string) (Ref, error)
	ReadFrame(ctx context.Context, ref Ref) (*frame.Frame, Meta, error)

	// Typed layer access, used by the transformation stages.
	ReadRaw(ctx context.Context, ref Ref) ([]model.RawRecord, Meta, error)
	WriteCleaned(ctx context.Context, name string, recs []model.CleanedRecord) (Ref, error)
	ReadCleaned(ctx context.Context, ref Ref) ([]model.CleanedRecord, Meta, error)
	WriteGold(ctx context.Context, name string, recs []model.FeatureRecord) (Ref, error)
	ReadGold(ctx context.Context, ref Ref) ([]model.FeatureRecord, Meta, error)
}
