package resumes

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Encode serializes a record for the key-value store.
func Encode(r Resume) (string, error) {
	if err := validate(r); err != nil {
		return "", err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode resume %s: %w", r.ID, err)
	}
	return string(data), nil
}

// Parse decodes a stored value. Any decode or validation failure wraps ErrMalformed.
func Parse(value string) (Resume, error) {
	var r Resume
	if err := json.Unmarshal([]byte(value), &r); err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validate(r); err != nil {
		return Resume{}, err
	}
	return r, nil
}

// ParseFeedback decodes and validates a feedback document produced by a scorer.
func ParseFeedback(raw []byte) (Feedback, error) {
	var f Feedback
	if err := json.Unmarshal(raw, &f); err != nil {
		return Feedback{}, fmt.Errorf("%w: feedback: %v", ErrMalformed, err)
	}
	if err := validateScore("overallScore", f.OverallScore); err != nil {
		return Feedback{}, err
	}
	return f, nil
}

func validate(r Resume) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrMalformed)
	}
	if err := validateScore("overallScore", r.Feedback.OverallScore); err != nil {
		return err
	}
	for _, key := range categoryKeys {
		c := *r.Feedback.categories()[key]
		if c == nil {
			continue
		}
		if err := validateScore(key+".score", c.Score); err != nil {
			return err
		}
	}
	return nil
}

func validateScore(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
		return fmt.Errorf("%w: %s out of range: %v", ErrMalformed, field, v)
	}
	return nil
}
