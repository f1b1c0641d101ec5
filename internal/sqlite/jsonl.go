package sqlite

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/planbook/internal/logging"
	"github.com/mesh-intelligence/planbook/pkg/types"
)

// maxLineSize bounds one JSONL record; plan content is rich-text markup and
// can outgrow bufio's 64 KiB default.
const maxLineSize = 16 << 20

// Export writes every plan to w as one JSON object per line, ordered by ID.
// Returns the number of plans written.
func (b *Backend) Export(ctx context.Context, w io.Writer) (int, error) {
	records, err := b.exportRecords(ctx)
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := bw.Write(rec); err != nil {
			return 0, fmt.Errorf("writing record: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return 0, fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("flushing export: %w", err)
	}
	return len(records), nil
}

// ExportFile writes the export to path atomically: readers see the old file
// or the complete new one, never a partial write.
func (b *Backend) ExportFile(ctx context.Context, path string) (int, error) {
	records, err := b.exportRecords(ctx)
	if err != nil {
		return 0, err
	}
	if err := writeJSONL(path, records); err != nil {
		return 0, fmt.Errorf("exporting to %s: %w", path, err)
	}
	b.log.Info("plans exported", zap.String(logging.FieldPath, path), zap.Int(logging.FieldCount, len(records)))
	return len(records), nil
}

func (b *Backend) exportRecords(ctx context.Context) ([]json.RawMessage, error) {
	plans, err := b.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]json.RawMessage, 0, len(plans))
	for _, p := range plans {
		rec, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encoding plan %d: %w", p.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Import reads JSONL plans from r and writes them in one transaction.
// Records with an ID replace the stored plan with that ID; records without
// one are created. Blank lines are skipped; any malformed or invalid record
// aborts the import and nothing is written. Returns the number of plans
// written.
func (b *Backend) Import(ctx context.Context, r io.Reader) (int, error) {
	plans, err := decodePlans(r)
	if err != nil {
		return 0, err
	}
	if len(plans) == 0 {
		return 0, nil
	}

	err = b.withTx(ctx, "import", func(tx *sql.Tx) error {
		for i, p := range plans {
			if p.ID == 0 {
				if _, err := insertPlan(ctx, tx, p.Input()); err != nil {
					return writeError(fmt.Sprintf("importing record %d", i+1), err)
				}
				continue
			}
			if err := upsertPlan(ctx, tx, p); err != nil {
				return writeError(fmt.Sprintf("importing record %d (plan %d)", i+1, p.ID), err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(plans), nil
}

// ImportFile imports the JSONL file at path.
func (b *Backend) ImportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	n, err := b.Import(ctx, f)
	if err != nil {
		return 0, err
	}
	b.log.Info("plans imported", zap.String(logging.FieldPath, path), zap.Int(logging.FieldCount, n))
	return n, nil
}

func decodePlans(r io.Reader) ([]types.Plan, error) {
	var plans []types.Plan
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var p types.Plan
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if p.ID < 0 {
			return nil, fmt.Errorf("line %d: %w", line, types.ErrMissingID)
		}
		if err := p.Input().Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		plans = append(plans, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading line %d: %w", line+1, err)
	}
	return plans, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".plans-*.jsonl.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail("writing record", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
