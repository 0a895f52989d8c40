package questionpool

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/estudai/estudai/internal/problemgen"
)

// DecodeContent parses a pool row's content. Rows hold a single question
// object; rows imported by older tooling hold an array of them.
func DecodeContent(raw []byte) ([]problemgen.Question, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty content")
	}

	if raw[0] == '[' {
		var qs []problemgen.Question
		if err := json.Unmarshal(raw, &qs); err != nil {
			return nil, fmt.Errorf("decode question array: %w", err)
		}
		if len(qs) == 0 {
			return nil, errors.New("empty question array")
		}
		return qs, nil
	}

	var q problemgen.Question
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("decode question: %w", err)
	}
	return []problemgen.Question{q}, nil
}

// tagRefs sets each question's ID to a reference to its pool row. Elements
// of legacy array rows are addressed as "<row>#<index>".
func tagRefs(rowID string, qs []problemgen.Question) {
	if len(qs) == 1 {
		qs[0].ID = rowID
		return
	}
	for i := range qs {
		qs[i].ID = rowID + "#" + strconv.Itoa(i)
	}
}

// parseRef splits a reference produced by tagRefs.
func parseRef(ref string) (rowID string, index int, err error) {
	rowID, idx, found := strings.Cut(ref, "#")
	if !found {
		return rowID, 0, nil
	}
	index, err = strconv.Atoi(idx)
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("bad question reference %q", ref)
	}
	return rowID, index, nil
}
