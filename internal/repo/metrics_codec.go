package repo

import (
	"encoding/json"
	"fmt"

	"github.com/xxxsen/inkwell/internal/readability"
)

func encodeMetrics(m readability.Metrics) (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode metrics: %w", err)
	}
	return string(raw), nil
}

func decodeMetrics(raw []byte, m *readability.Metrics) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, m); err != nil {
		return fmt.Errorf("decode metrics: %w", err)
	}
	return nil
}
