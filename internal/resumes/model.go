package resumes

import (
	"bytes"
	"encoding/json"
	"sort"
)

const (
	keyPrefix = "resume:"
	// Pattern matches every stored resume record.
	Pattern = keyPrefix + "*"
)

// Key returns the key-value key for a resume id.
func Key(id string) string {
	return keyPrefix + id
}

// Resume is one uploaded resume and the feedback it received.
type Resume struct {
	ID             string   `json:"id"`
	CompanyName    *string  `json:"companyName,omitempty"`
	JobTitle       *string  `json:"jobTitle,omitempty"`
	JobDescription string   `json:"jobDescription,omitempty"`
	ImagePath      string   `json:"imagePath"`
	ResumePath     string   `json:"resumePath,omitempty"`
	Feedback       Feedback `json:"feedback"`
}

type Tip struct {
	Type        string `json:"type"`
	Tip         string `json:"tip"`
	Explanation string `json:"explanation,omitempty"`
}

type Category struct {
	Score float64 `json:"score"`
	Tips  []Tip   `json:"tips"`
}

// Feedback holds the scores. Fields it does not know are kept in Extra and
// written back unchanged.
type Feedback struct {
	OverallScore float64
	ATS          *Category
	ToneAndStyle *Category
	Content      *Category
	Structure    *Category
	Skills       *Category
	Extra        map[string]json.RawMessage
}

var categoryKeys = []string{"ATS", "toneAndStyle", "content", "structure", "skills"}

func (f *Feedback) categories() map[string]**Category {
	return map[string]**Category{
		"ATS":          &f.ATS,
		"toneAndStyle": &f.ToneAndStyle,
		"content":      &f.Content,
		"structure":    &f.Structure,
		"skills":       &f.Skills,
	}
}

func (f Feedback) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(f.Extra)+6)
	for k, v := range f.Extra {
		fields[k] = v
	}
	score, err := json.Marshal(f.OverallScore)
	if err != nil {
		return nil, err
	}
	fields["overallScore"] = score
	for key, ptr := range f.categories() {
		if *ptr == nil {
			continue
		}
		raw, err := json.Marshal(*ptr)
		if err != nil {
			return nil, err
		}
		fields[key] = raw
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(k)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(fields[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *Feedback) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*f = Feedback{}
	if raw, ok := fields["overallScore"]; ok {
		if err := json.Unmarshal(raw, &f.OverallScore); err != nil {
			return err
		}
		delete(fields, "overallScore")
	}
	for key, ptr := range f.categories() {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		delete(fields, key)
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var c Category
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		*ptr = &c
	}
	if len(fields) > 0 {
		f.Extra = fields
	}
	return nil
}
