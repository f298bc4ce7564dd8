package snapshot

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// JSONLWriter appends one JSON object per line to a file. Writes go straight
// to the unbuffered file handle, so completed lines survive an interrupted
// run; at worst the final line is truncated, which the resume scan tolerates.
type JSONLWriter struct {
	f *os.File
}

// OpenJSONL opens path for appending, creating it (and its directory) if
// missing.
func OpenJSONL(path string) (*JSONLWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrap(err, "jsonl: create dir")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, eris.Wrap(err, "jsonl: open")
	}
	return &JSONLWriter{f: f}, nil
}

// Write appends one record as a single unbuffered line.
func (w *JSONLWriter) Write(record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return eris.Wrap(err, "jsonl: marshal record")
	}
	raw = append(raw, '\n')
	if _, err := w.f.Write(raw); err != nil {
		return eris.Wrap(err, "jsonl: write record")
	}
	return nil
}

// Close closes the underlying file.
func (w *JSONLWriter) Close() error {
	return w.f.Close()
}

// ReadJSONL decodes every non-empty line of a JSONL file into T.
func ReadJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "jsonl: open")
	}
	defer func() { _ = f.Close() }()

	var out []T
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, eris.Wrap(err, "jsonl: decode line")
		}
		out = append(out, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "jsonl: scan")
	}
	return out, nil
}

// DoneIDs scans an existing JSONL output file and collects the company_id of
// every record already written. Malformed lines are skipped so a partially
// written trailing line does not block resumption. A missing file yields an
// empty set.
func DoneIDs(path string) (map[string]bool, error) {
	return scanDone(path, func(line []byte) string {
		var rec struct {
			CompanyID string `json:"company_id"`
		}
		if err := json.Unmarshal(line, &rec); err != nil {
			return ""
		}
		return rec.CompanyID
	})
}

// DoneOrgIDs scans a publications JSONL file for the org_id of every record
// already written. When retryErrors is true, records carrying an error tag are
// not counted as done, so a rerun re-fetches them.
func DoneOrgIDs(path string, retryErrors bool) (map[string]bool, error) {
	return scanDone(path, func(line []byte) string {
		var rec struct {
			OrgID string `json:"org_id"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal(line, &rec); err != nil {
			return ""
		}
		if retryErrors && rec.Error != "" {
			return ""
		}
		return rec.OrgID
	})
}

// scanDone reads every complete line of a JSONL file and collects the ID that
// extract derives from it, skipping lines it rejects. A missing file yields an
// empty set.
func scanDone(path string, extract func(line []byte) string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, eris.Wrap(err, "jsonl: open for resume")
	}
	defer func() { _ = f.Close() }()

	done := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if id := extract(line); id != "" {
			done[id] = true
		}
	}
	if err := scanner.Err(); err != nil && err != io.ErrUnexpectedEOF {
		return nil, eris.Wrap(err, "jsonl: scan for resume")
	}
	return done, nil
}
