package scoring

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/rshade/llm-energy-api/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// columnIndex returns the zero-based position of a schema column.
func columnIndex(t *testing.T, name string) int {
	t.Helper()
	for i, c := range Columns() {
		if c == name {
			return i
		}
	}
	t.Fatalf("column %q not in schema", name)
	return -1
}

func TestColumns_ShapeAndUniqueness(t *testing.T) {
	cols := Columns()
	require.Len(t, cols, VectorWidth)

	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		assert.NotEmpty(t, c, "column %d has no name", i)
		assert.False(t, seen[c], "duplicate column %q", c)
		seen[c] = true
	}

	// 1-based positions as published with the deployment schema.
	assert.Equal(t, "prompt", cols[8])
	assert.Equal(t, "word_count", cols[17])
	assert.Equal(t, "syllable_count", cols[55])
	assert.Equal(t, "lexical_diversity", cols[73])
	assert.Equal(t, "task_alpaca", cols[75])
	assert.Equal(t, "model_codellama_7b", cols[77])
	assert.Equal(t, "hardware_server", cols[86])
	assert.Equal(t, "original_filename", cols[87])
}

func TestBuildVector_RoundTripsFeatures(t *testing.T) {
	text := "Write a detailed explanation of supervised learning algorithms, please!"
	f := prompt.Analyze(text)
	values := BuildVector(f, "alpaca_llama3_8b", "laptop2", text).Values()
	require.Len(t, values, VectorWidth)

	want := map[string]float64{
		"word_count":                float64(f.WordCount),
		"sentence_count":            float64(f.SentenceCount),
		"avg_word_length":           f.AvgWordLength,
		"word_diversity":            f.WordDiversity,
		"unique_word_count":         float64(f.UniqueWordCount),
		"avg_sentence_length":       f.AvgSentenceLength,
		"punctuation_count":         float64(f.PunctuationCount),
		"long_word_count":           float64(f.LongWordCount),
		"verb_count":                float64(f.VerbCount),
		"syllable_count":            float64(f.SyllableCount),
		"lexicon_count":             float64(f.LexiconCount),
		"char_count":                float64(f.CharCount),
		"letter_count":              float64(f.LetterCount),
		"polysyllabcount":           float64(f.PolysyllableCount),
		"monosyllabcount":           float64(f.MonosyllableCount),
		"question_marks":            float64(f.QuestionMarks),
		"exclamation_marks":         float64(f.ExclamationMarks),
		"word_count_squared":        float64(f.WordCountSquared),
		"avg_sentence_length_cubed": f.AvgSentenceLengthCubed,
		"lexical_diversity":         f.LexicalDiversity,
	}
	require.Len(t, want, 20)

	for name, expected := range want {
		assert.Equal(t, expected, values[columnIndex(t, name)], name)
	}
	assert.Equal(t, text, values[columnIndex(t, "prompt")])
	assert.Equal(t, "alpaca_llama3_8b_laptop2", values[columnIndex(t, "original_filename")])
}

func TestBuildVector_AbsentSlotsAreNull(t *testing.T) {
	values := BuildVector(prompt.Analyze("hi"), "gemma_2b", "server", "hi").Values()

	populated := 20 + 1 + 6 + 4 + 1 // features, prompt, model flags, hardware flags, model_platform
	nulls := 0
	for _, v := range values {
		if v == nil {
			nulls++
		}
	}
	assert.Equal(t, VectorWidth-populated, nulls)
	assert.Nil(t, values[columnIndex(t, "task_alpaca")])
	assert.Nil(t, values[columnIndex(t, "task_codefeedback")])
	assert.Nil(t, values[columnIndex(t, "stop_word_count")])
	assert.Nil(t, values[columnIndex(t, "model_name")])
}

func TestBuildVector_ModelFlags(t *testing.T) {
	flags := []string{
		"model_codellama_7b", "model_codellama_70b", "model_gemma_2b",
		"model_gemma_7b", "model_llama3_8b", "model_llama3_70b",
	}

	tests := []struct {
		model string
		want  string
	}{
		{"codellama_7b", "model_codellama_7b"},
		{"codellama_70b", "model_codellama_70b"},
		{"gemma_2b", "model_gemma_2b"},
		{"alpaca_gemma_2b", "model_gemma_2b"},
		{"gemma_7b", "model_gemma_7b"},
		{"alpaca_gemma_7b", "model_gemma_7b"},
		{"alpaca_llama3_8b", "model_llama3_8b"},
		{"alpaca_llama3_70b", "model_llama3_70b"},
		{"llama3_8b", ""},
		{"GEMMA_2B", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			values := BuildVector(prompt.Features{}, tt.model, "server", "").Values()
			set := 0
			for _, flag := range flags {
				v := values[columnIndex(t, flag)]
				if flag == tt.want {
					assert.Equal(t, 1, v, flag)
				} else {
					assert.Equal(t, 0, v, flag)
				}
				set += v.(int)
			}
			if tt.want == "" {
				assert.Zero(t, set)
			} else {
				assert.Equal(t, 1, set)
			}
		})
	}
}

func TestBuildVector_HardwareFlags(t *testing.T) {
	flags := []string{"hardware_laptop1", "hardware_laptop2", "hardware_workstation", "hardware_server"}

	for _, platform := range []string{"laptop1", "laptop2", "workstation", "server", "Server", "gpu-box"} {
		t.Run(platform, func(t *testing.T) {
			values := BuildVector(prompt.Features{}, "gemma_7b", platform, "").Values()
			for _, flag := range flags {
				want := 0
				if flag == "hardware_"+platform {
					want = 1
				}
				assert.Equal(t, want, values[columnIndex(t, flag)], flag)
			}
		})
	}
}

func TestFeatureVector_EncodesNullsAsJSONNull(t *testing.T) {
	row := BuildVector(prompt.Analyze("yes"), "codellama_7b", "workstation", "yes").Values()

	raw, err := json.Marshal(row)
	require.NoError(t, err)

	var decoded []any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, VectorWidth)
	assert.Nil(t, decoded[0])
	assert.Equal(t, "yes", decoded[8])
	assert.Equal(t, "codellama_7b_workstation", decoded[87])
}

func TestCanonicalModel_String(t *testing.T) {
	assert.Equal(t, "gemma_2b", CanonicalModel("alpaca_gemma_2b").String())
	assert.Equal(t, "unknown", CanonicalModel("mistral_7b").String())
	assert.Equal(t, "workstation", CanonicalHardware("workstation").String())
	assert.Equal(t, HardwareUnknown, CanonicalHardware("laptop3"))
}

func TestCanonicalModel_RoundTrip(t *testing.T) {
	models := []Model{
		ModelCodellama7B, ModelCodellama70B, ModelGemma2B,
		ModelGemma7B, ModelLlama38B, ModelLlama370B,
	}
	for _, m := range models {
		t.Run(m.String(), func(t *testing.T) {
			assert.Equal(t, m, CanonicalModel(m.String()))
		})
	}

	for _, h := range []Hardware{HardwareLaptop1, HardwareLaptop2, HardwareWorkstation, HardwareServer} {
		assert.Equal(t, h, CanonicalHardware(h.String()))
	}
}
