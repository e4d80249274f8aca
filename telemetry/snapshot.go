package telemetry

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pthm-cable/warren/world"
)

// SnapshotDirName is the subdirectory of an output directory holding bookmark snapshots.
const SnapshotDirName = "snapshots"

//go:embed snapshot.schema.json
var snapshotSchemaJSON []byte

const snapshotSchemaName = "snapshot.schema.json"

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func snapshotSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(snapshotSchemaName, bytes.NewReader(snapshotSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add snapshot schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(snapshotSchemaName)
	})
	return schema, schemaErr
}

// SnapshotName builds the file name for a bookmark snapshot.
func SnapshotName(b Bookmark) string {
	kind := strings.ReplaceAll(string(b.Type), " ", "_")
	return fmt.Sprintf("snapshot_%d_%s.json.zst", b.Tick, kind)
}

// SaveSnapshot writes s as zstd-compressed JSON, creating parent directories.
func SaveSnapshot(path string, s *world.State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	// Write to a temp file first so a failed save never truncates a good snapshot
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := writeSnapshot(f, s); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

func writeSnapshot(w io.Writer, s *world.State) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	if err := json.NewEncoder(bw).Encode(s); err != nil {
		enc.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("zstd close: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot. Plain JSON files are
// accepted too. The document is checked against the snapshot schema and then
// against world.Validate; any failure wraps world.ErrCorruptState.
func LoadSnapshot(path string) (*world.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	defer f.Close()

	data, err := readSnapshotBytes(f)
	if err != nil {
		return nil, err
	}
	return DecodeSnapshot(data)
}

func readSnapshotBytes(r io.Reader) ([]byte, error) {
	br := bufio.NewReaderSize(r, 256*1024)
	magic, _ := br.Peek(len(zstdMagic))
	if !bytes.Equal(magic, zstdMagic) {
		data, err := io.ReadAll(br)
		if err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		return data, nil
	}

	dec, err := zstd.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", world.ErrCorruptState, err)
	}
	return data, nil
}

// DecodeSnapshot parses and validates uncompressed snapshot JSON.
func DecodeSnapshot(data []byte) (*world.State, error) {
	sch, err := snapshotSchema()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", world.ErrCorruptState, err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: schema: %v", world.ErrCorruptState, err)
	}

	var s world.State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", world.ErrCorruptState, err)
	}
	if err := world.Validate(s); err != nil {
		return nil, err
	}
	return &s, nil
}
