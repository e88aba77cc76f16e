package artifact

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/frame"
	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
)

// requiredRawColumns are the columns the cleaning stage cannot work
// without. Anything else missing is a row-level quality issue.
var requiredRawColumns = []string{"patient_id", "admission_date", "los_days"}

// LocalStore implements Store on the local filesystem, one directory per
// layer under root. Publish order is data file first, meta sidecar last;
// an artifact without its sidecar is treated as not yet visible.
type LocalStore struct {
	root          string
	schemaVersion int
}

// NewLocal creates a LocalStore rooted at dir.
func NewLocal(dir string, schemaVersion int) *LocalStore {
	if schemaVersion <= 0 {
		schemaVersion = 1
	}
	return &LocalStore{root: dir, schemaVersion: schemaVersion}
}

func (s *LocalStore) dataPath(ref Ref) string {
	return filepath.Join(s.root, ref.Layer, ref.Name+".csv")
}

func (s *LocalStore) metaPath(ref Ref) string {
	return filepath.Join(s.root, ref.Layer, ref.Name+".meta.json")
}

// publish writes the data file and meta sidecar atomically: each file is
// staged in the target directory and renamed into place, meta last.
func (s *LocalStore) publish(ref Ref, data []byte, meta Meta) error {
	dir := filepath.Join(s.root, ref.Layer)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "artifact: mkdir %s", dir)
	}

	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return eris.Wrap(err, "artifact: marshal meta")
	}

	if err := stageAndRename(dir, s.dataPath(ref), data); err != nil {
		return err
	}
	if err := stageAndRename(dir, s.metaPath(ref), metaJSON); err != nil {
		return err
	}

	zap.L().Info("artifact: published",
		zap.String("artifact", ref.String()),
		zap.Int("rows", meta.RowCount),
		zap.Int("columns", len(meta.Columns)),
	)
	return nil
}

func stageAndRename(dir, dst string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return eris.Wrap(err, "artifact: create temp")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "artifact: write temp")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "artifact: sync temp")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "artifact: close temp")
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "artifact: rename into %s", dst)
	}
	return nil
}

func (s *LocalStore) readMeta(ref Ref) (Meta, error) {
	b, err := os.ReadFile(s.metaPath(ref))
	if err != nil {
		return Meta{}, eris.Wrapf(err, "artifact: read meta %s", ref)
	}
	var meta Meta
	if err := json.Unmarshal(b, &meta); err != nil {
		return Meta{}, eris.Wrapf(err, "artifact: decode meta %s", ref)
	}
	return meta, nil
}

func (s *LocalStore) meta(ref Ref, columns, partitionKeys []string, rows int) Meta {
	return Meta{
		Table:         ref.String(),
		Format:        "CSV",
		PartitionKeys: partitionKeys,
		RowCount:      rows,
		SchemaVersion: s.schemaVersion,
		CreatedAt:     time.Now().UTC(),
		Columns:       columns,
	}
}

// ImportRaw copies an external raw CSV into the bronze layer, attaching a
// schema descriptor built from its header.
func (s *LocalStore) ImportRaw(ctx context.Context, srcPath, name string) (Ref, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return Ref{}, eris.Wrapf(err, "artifact: open %s", srcPath)
	}
	defer f.Close()

	cols, rows, err := readCSV(f)
	if err != nil {
		return Ref{}, eris.Wrapf(err, "artifact: parse %s", srcPath)
	}
	for _, want := range requiredRawColumns {
		if !contains(cols, want) {
			return Ref{}, eris.Wrapf(model.ErrSchema, "artifact: raw input missing column %q", want)
		}
	}

	fr, err := frame.FromStrings(cols, rows)
	if err != nil {
		return Ref{}, eris.Wrap(err, "artifact: build raw frame")
	}
	return s.WriteFrame(ctx, model.LayerBronze, name, fr, []string{"admit_year", "admit_month"})
}

// WriteFrame persists a generic frame snapshot.
func (s *LocalStore) WriteFrame(_ context.Context, layer, name string, f *frame.Frame, partitionKeys []string) (Ref, error) {
	ref := Ref{Layer: layer, Name: name}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(f.Columns()); err != nil {
		return Ref{}, eris.Wrap(err, "artifact: write header")
	}
	if err := w.WriteAll(f.Strings()); err != nil {
		return Ref{}, eris.Wrap(err, "artifact: write rows")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Ref{}, eris.Wrap(err, "artifact: flush csv")
	}

	if err := s.publish(ref, buf.Bytes(), s.meta(ref, f.Columns(), partitionKeys, f.RowCount())); err != nil {
		return Ref{}, err
	}
	return ref, nil
}

// ReadFrame loads an artifact as a generic frame, verifying the data file
// against its schema descriptor.
func (s *LocalStore) ReadFrame(_ context.Context, ref Ref) (*frame.Frame, Meta, error) {
	meta, err := s.readMeta(ref)
	if err != nil {
		return nil, Meta{}, err
	}

	f, err := os.Open(s.dataPath(ref))
	if err != nil {
		return nil, Meta{}, eris.Wrapf(err, "artifact: read %s", ref)
	}
	defer f.Close()

	cols, rows, err := readCSV(f)
	if err != nil {
		return nil, Meta{}, eris.Wrapf(err, "artifact: parse %s", ref)
	}
	if !equalColumns(cols, meta.Columns) {
		return nil, Meta{}, eris.Wrapf(model.ErrSchema, "artifact: %s header does not match descriptor", ref)
	}
	if len(rows) != meta.RowCount {
		return nil, Meta{}, eris.Wrapf(model.ErrSchema, "artifact: %s has %d rows, descriptor says %d", ref, len(rows), meta.RowCount)
	}

	fr, err := frame.FromStrings(cols, rows)
	if err != nil {
		return nil, Meta{}, eris.Wrapf(err, "artifact: build frame %s", ref)
	}
	return fr, meta, nil
}

// ReadRaw loads a bronze artifact as typed raw records.
func (s *LocalStore) ReadRaw(_ context.Context, ref Ref) ([]model.RawRecord, Meta, error) {
	meta, err := s.readMeta(ref)
	if err != nil {
		return nil, Meta{}, err
	}
	for _, want := range requiredRawColumns {
		if !contains(meta.Columns, want) {
			return nil, Meta{}, eris.Wrapf(model.ErrSchema, "artifact: %s missing column %q", ref, want)
		}
	}

	data, err := os.ReadFile(s.dataPath(ref))
	if err != nil {
		return nil, Meta{}, eris.Wrapf(err, "artifact: read %s", ref)
	}
	var recs []model.RawRecord
	if err := csvutil.Unmarshal(data, &recs); err != nil {
		return nil, Meta{}, eris.Wrapf(err, "artifact: decode %s", ref)
	}
	return recs, meta, nil
}

// WriteCleaned persists the silver layer.
func (s *LocalStore) WriteCleaned(_ context.Context, name string, recs []model.CleanedRecord) (Ref, error) {
	return writeTyped(s, model.LayerSilver, name, recs, []string{"admit_year", "admit_month"}, model.CleanedRecord{})
}

// ReadCleaned loads a silver artifact as typed cleaned records.
func (s *LocalStore) ReadCleaned(_ context.Context, ref Ref) ([]model.CleanedRecord, Meta, error) {
	return readTyped[model.CleanedRecord](s, ref)
}

// WriteGold persists the gold feature table.
func (s *LocalStore) WriteGold(_ context.Context, name string, recs []model.FeatureRecord) (Ref, error) {
	return writeTyped(s, model.LayerGold, name, recs, nil, model.FeatureRecord{})
}

// ReadGold loads a gold artifact as typed feature records.
func (s *LocalStore) ReadGold(_ context.Context, ref Ref) ([]model.FeatureRecord, Meta, error) {
	return readTyped[model.FeatureRecord](s, ref)
}

func writeTyped[T any](s *LocalStore, layer, name string, recs []T, partitionKeys []string, header T) (Ref, error) {
	ref := Ref{Layer: layer, Name: name}

	data, err := csvutil.Marshal(recs)
	if err != nil {
		return Ref{}, eris.Wrapf(err, "artifact: encode %s", ref)
	}
	cols, err := csvutil.Header(header, "csv")
	if err != nil {
		return Ref{}, eris.Wrap(err, "artifact: derive header")
	}
	if err := s.publish(ref, data, s.meta(ref, cols, partitionKeys, len(recs))); err != nil {
		return Ref{}, err
	}
	return ref, nil
}

func readTyped[T any](s *LocalStore, ref Ref) ([]T, Meta, error) {
	meta, err := s.readMeta(ref)
	if err != nil {
		return nil, Meta{}, err
	}

	var zero T
	wantCols, err := csvutil.Header(zero, "csv")
	if err != nil {
		return nil, Meta{}, eris.Wrap(err, "artifact: derive header")
	}
	if !equalColumns(meta.Columns, wantCols) {
		return nil, Meta{}, eris.Wrapf(model.ErrSchema, "artifact: %s columns do not match expected schema", ref)
	}

	data, err := os.ReadFile(s.dataPath(ref))
	if err != nil {
		return nil, Meta{}, eris.Wrapf(err, "artifact: read %s", ref)
	}
	var recs []T
	if err := csvutil.Unmarshal(data, &recs); err != nil {
		return nil, Meta{}, eris.Wrapf(err, "artifact: decode %s", ref)
	}
	if len(recs) != meta.RowCount {
		return nil, Meta{}, eris.Wrapf(model.ErrSchema, "artifact: %s has %d rows, descriptor says %d", ref, len(recs), meta.RowCount)
	}
	return recs, meta, nil
}

func readCSV(r io.Reader) (cols []string, rows [][]string, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, eris.New("artifact: empty csv")
	}
	if err != nil {
		return nil, nil, err
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		// Pad short rows so every row matches the header width.
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		rows = append(rows, rec[:len(header)])
	}
	return header, rows, nil
}

func contains(cols []string, want string) bool {
	for _, c := range cols {
		if c == want {
			return true
		}
	}
	return false
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
