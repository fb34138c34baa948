package resumes

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestEncodeParseRoundTrip(t *testing.T) {
	full := Resume{
		ID:             "r-1",
		CompanyName:    strPtr("Acme"),
		JobTitle:       strPtr("Backend Engineer"),
		JobDescription: "Build services",
		ImagePath:      "images/r-1/preview.png",
		ResumePath:     "resumes/r-1/cv.pdf",
		Feedback: Feedback{
			OverallScore: 87.5,
			ATS:          &Category{Score: 90, Tips: []Tip{{Type: "good", Tip: "Clear headings"}}},
			ToneAndStyle: &Category{Score: 70, Tips: []Tip{{Type: "improve", Tip: "Less passive voice", Explanation: "Use active verbs"}}},
			Content:      &Category{Score: 80, Tips: []Tip{}},
			Structure:    &Category{Score: 60},
			Skills:       &Category{Score: 100, Tips: []Tip{{Type: "good", Tip: "Go"}}},
			Extra:        map[string]json.RawMessage{"lineItems": json.RawMessage(`[{"a":1}]`)},
		},
	}
	minimal := Resume{ID: "r-2", Feedback: Feedback{OverallScore: 0}}
	noCompany := Resume{ID: "r-3", JobTitle: strPtr("SRE"), ImagePath: "/images/x.png", Feedback: Feedback{OverallScore: 100}}

	for _, original := range []Resume{full, minimal, noCompany} {
		value, err := Encode(original)
		require.NoError(t, err)

		parsed, err := Parse(value)
		require.NoError(t, err)
		assert.Equal(t, original, parsed)
	}
}

func TestParseAbsentOptionalFieldsStayNil(t *testing.T) {
	r, err := Parse(`{"id":"a","imagePath":"images/a.png","feedback":{"overallScore":42}}`)
	require.NoError(t, err)
	assert.Nil(t, r.CompanyName)
	assert.Nil(t, r.JobTitle)
	assert.Nil(t, r.Feedback.ATS)
	assert.Nil(t, r.Feedback.Extra)
	assert.Equal(t, 42.0, r.Feedback.OverallScore)
}

func TestParseRejectsMalformedRecords(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"id":`,
		"missing id":     `{"feedback":{"overallScore":10}}`,
		"score too high": `{"id":"a","feedback":{"overallScore":101}}`,
		"negative score": `{"id":"a","feedback":{"overallScore":-1}}`,
		"score string":   `{"id":"a","feedback":{"overallScore":"high"}}`,
		"bad category":   `{"id":"a","feedback":{"overallScore":10,"ATS":{"score":500}}}`,
		"array":          `[]`,
	}
	for name, value := range cases {
		_, err := Parse(value)
		assert.ErrorIsf(t, err, ErrMalformed, "case %s", name)
	}
}

func TestEncodeRejectsNonFiniteScore(t *testing.T) {
	_, err := Encode(Resume{ID: "a", Feedback: Feedback{OverallScore: math.NaN()}})
	assert.ErrorIs(t, err, ErrMalformed)
	_, err = Encode(Resume{ID: "a", Feedback: Feedback{OverallScore: math.Inf(1)}})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFeedbackPreservesUnknownFields(t *testing.T) {
	f, err := ParseFeedback([]byte(`{"overallScore":55,"summary":"ok","ATS":{"score":50,"tips":[]}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `"ok"`, string(f.Extra["summary"]))

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"overallScore":55,"summary":"ok","ATS":{"score":50,"tips":[]}}`, string(out))
}

func TestKeyAndPattern(t *testing.T) {
	assert.Equal(t, "resume:abc", Key("abc"))
	assert.Equal(t, "resume:*", Pattern)
}
