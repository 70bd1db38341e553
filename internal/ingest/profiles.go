package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/badgetrace-project/badgetrace/internal/core"
)

// ReadProfiles loads the user directory records. Three shapes are
// accepted: a JSON array of profiles, an object keyed by user_id, or
// newline-delimited profile objects. Duplicate detection belongs to the
// UserDirectory, not the reader.
func ReadProfiles(r io.Reader) ([]core.UserProfile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var profiles []core.UserProfile
		if err := json.Unmarshal(trimmed, &profiles); err != nil {
			return nil, fmt.Errorf("parsing profile array: %w", err)
		}
		return profiles, nil
	case '{':
		// Could be a single object per line (JSONL) or one object
		// keyed by user_id. Try the keyed form first; fall back to
		// line-delimited records.
		if profiles, err := parseKeyedProfiles(trimmed); err == nil {
			return profiles, nil
		}
		return parseProfileLines(trimmed)
	default:
		return nil, fmt.Errorf("unrecognized profile document (want array, object, or JSONL)")
	}
}

// ReadProfilesFile loads the user directory from disk.
func ReadProfilesFile(path string) ([]core.UserProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening profiles: %w", err)
	}
	defer f.Close()
	return ReadProfiles(f)
}

// parseKeyedProfiles handles {"u-001": {...}, "u-002": {...}}. The map
// key wins over any user_id inside the record. Keys are required to map
// to objects; anything else rejects the keyed interpretation.
func parseKeyedProfiles(data []byte) ([]core.UserProfile, error) {
	var keyed map[string]core.UserProfile
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil, err
	}
	profiles := make([]core.UserProfile, 0, len(keyed))
	for userID, p := range keyed {
		p.UserID = userID
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func parseProfileLines(data []byte) ([]core.UserProfile, error) {
	var profiles []core.UserProfile
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var p core.UserProfile
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("profile line %d: %w", lineNo, err)
		}
		profiles = append(profiles, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}
	return profiles, nil
}
