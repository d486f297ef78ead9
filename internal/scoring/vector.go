// Package scoring assembles the feature row expected by the remote energy model
// and submits it to the scoring deployment.
package scoring

import (
	"github.com/rshade/llm-energy-api/internal/prompt"
)

// VectorWidth is the number of positional columns in the model input schema.
const VectorWidth = 88

// FeatureVector is one input row of the energy model, one field per schema column
// in schema order. Nil pointers are columns the model was trained with but this
// service never computes; they are sent as null.
type FeatureVector struct {
	ModelName                   *int
	CreatedAt                   *string
	TotalDuration               *float64
	LoadDuration                *float64
	PromptTokenLength           *float64
	PromptDuration              *float64
	ResponseTokenLength         *float64
	ResponseDuration            *float64
	Prompt                      *string
	Response                    *string
	EnergyConsumptionMonitoring *float64
	EnergyConsumptionLLMCPU     *float64
	Type                        *string
	ClockDuration               *string
	StartTime                   *string
	EndTime                     *string
	EnergyConsumptionLLM        *float64
	WordCount                   *float64
	SentenceCount               *float64
	AvgWordLength               *float64
	WordDiversity               *float64
	UniqueWordCount             *float64
	AvgSentenceLength           *float64
	PunctuationCount            *float64
	StopWordCount               *float64
	LongWordCount               *float64
	NamedEntityCount            *float64
	NounCount                   *float64
	VerbCount                   *float64
	AdjCount                    *float64
	AdverbCount                 *float64
	PronounCount                *float64
	PropAdverbs                 *float64
	PropPronouns                *float64
	SentimentPolarity           *float64
	SentimentSubjectivity       *float64
	FleschReadingEase           *float64
	FleschKincaidGrade          *float64
	GunningFog                  *float64
	SmogIndex                   *float64
	AutomatedReadabilityIndex   *float64
	ColemanLiauIndex            *float64
	LinsearWriteFormula         *float64
	DaleChallReadabilityScore   *float64
	TextStandard                *string
	SpacheReadability           *float64
	McalpineEflaw               *float64
	ReadingTime                 *float64
	FernandezHuerta             *float64
	SzigrisztPazos              *float64
	GutierrezPolini             *float64
	Crawford                    *float64
	Osman                       *float64
	GulpeaseIndex               *float64
	WienerSachtextformel        *float64
	SyllableCount               *float64
	LexiconCount                *float64
	CharCount                   *float64
	LetterCount                 *float64
	PolysyllableCount           *float64
	MonosyllableCount           *float64
	QuestionMarks               *float64
	ExclamationMarks            *float64
	SentenceEmbeddingVariance   *float64
	PersonalPronouns            *float64
	NamedEntities               *float64
	Adjectives                  *float64
	Adverbs                     *float64
	LengthXComplexity           *float64
	QuestionsAboutEntities      *float64
	DescComplexityRatio         *float64
	WordCountSquared            *float64
	AvgSentenceLengthCubed      *float64
	LexicalDiversity            *float64
	EnergyConsumptionLLMGPU     *float64
	TaskAlpaca                  *int
	TaskCodefeedback            *int
	ModelCodellama7B            int
	ModelCodellama70B           int
	ModelGemma2B                int
	ModelGemma7B                int
	ModelLlama38B               int
	ModelLlama370B              int
	HardwareLaptop1             int
	HardwareLaptop2             int
	HardwareWorkstation         int
	HardwareServer              int
	OriginalFilename            string
}

// columns are the schema column names, index-aligned with FeatureVector.Values.
var columns = [VectorWidth]string{
	"model_name", "created_at", "total_duration", "load_duration",
	"prompt_token_length", "prompt_duration", "response_token_length", "response_duration",
	"prompt", "response", "energy_consumption_monitoring", "energy_consumption_llm_cpu",
	"type", "clock_duration", "start_time", "end_time",
	"energy_consumption_llm", "word_count", "sentence_count", "avg_word_length",
	"word_diversity", "unique_word_count", "avg_sentence_length", "punctuation_count",
	"stop_word_count", "long_word_count", "named_entity_count", "noun_count",
	"verb_count", "adj_count", "adverb_count", "pronoun_count",
	"prop_adverbs", "prop_pronouns", "sentiment_polarity", "sentiment_subjectivity",
	"flesch_reading_ease", "flesch_kincaid_grade", "gunning_fog", "smog_index",
	"automated_readability_index", "coleman_liau_index", "linsear_write_formula", "dale_chall_readability_score",
	"text_standard", "spache_readability", "mcalpine_eflaw", "reading_time",
	"fernandez_huerta", "szigriszt_pazos", "gutierrez_polini", "crawford",
	"osman", "gulpease_index", "wiener_sachtextformel", "syllable_count",
	"lexicon_count", "char_count", "letter_count", "polysyllabcount",
	"monosyllabcount", "question_marks", "exclamation_marks", "sentence_embedding_variance",
	"personal_pronouns", "named_entities", "adjectives", "adverbs",
	"length_x_complexity", "questions_about_entities", "desc_complexity_ratio", "word_count_squared",
	"avg_sentence_length_cubed", "lexical_diversity", "energy_consumption_llm_gpu", "task_alpaca",
	"task_codefeedback", "model_codellama_7b", "model_codellama_70b", "model_gemma_2b",
	"model_gemma_7b", "model_llama3_8b", "model_llama3_70b", "hardware_laptop1",
	"hardware_laptop2", "hardware_workstation", "hardware_server", "original_filename",
}

// Columns returns the schema column names in positional order.
func Columns() []string {
	out := make([]string, VectorWidth)
	copy(out, columns[:])
	return out
}

// BuildVector maps prompt features and the model/platform selection onto the
// schema. It performs no validation: unknown models or platforms simply leave
// every one-hot flag at zero.
func BuildVector(f prompt.Features, model, platform, promptText string) FeatureVector {
	v := FeatureVector{
		Prompt:                 &promptText,
		WordCount:              num(f.WordCount),
		SentenceCount:          num(f.SentenceCount),
		AvgWordLength:          ptr(f.AvgWordLength),
		WordDiversity:          ptr(f.WordDiversity),
		UniqueWordCount:        num(f.UniqueWordCount),
		AvgSentenceLength:      ptr(f.AvgSentenceLength),
		PunctuationCount:       num(f.PunctuationCount),
		LongWordCount:          num(f.LongWordCount),
		VerbCount:              num(f.VerbCount),
		SyllableCount:          num(f.SyllableCount),
		LexiconCount:           num(f.LexiconCount),
		CharCount:              num(f.CharCount),
		LetterCount:            num(f.LetterCount),
		PolysyllableCount:      num(f.PolysyllableCount),
		MonosyllableCount:      num(f.MonosyllableCount),
		QuestionMarks:          num(f.QuestionMarks),
		ExclamationMarks:       num(f.ExclamationMarks),
		WordCountSquared:       num(f.WordCountSquared),
		AvgSentenceLengthCubed: ptr(f.AvgSentenceLengthCubed),
		LexicalDiversity:       ptr(f.LexicalDiversity),
		OriginalFilename:       model + "_" + platform,
	}

	switch CanonicalModel(model) {
	case ModelCodellama7B:
		v.ModelCodellama7B = 1
	case ModelCodellama70B:
		v.ModelCodellama70B = 1
	case ModelGemma2B:
		v.ModelGemma2B = 1
	case ModelGemma7B:
		v.ModelGemma7B = 1
	case ModelLlama38B:
		v.ModelLlama38B = 1
	case ModelLlama370B:
		v.ModelLlama370B = 1
	}

	switch CanonicalHardware(platform) {
	case HardwareLaptop1:
		v.HardwareLaptop1 = 1
	case HardwareLaptop2:
		v.HardwareLaptop2 = 1
	case HardwareWorkstation:
		v.HardwareWorkstation = 1
	case HardwareServer:
		v.HardwareServer = 1
	}

	return v
}

// Values returns the row in schema order. Absent columns are untyped nil so
// they encode as JSON null.
func (v FeatureVector) Values() []any {
	return []any{
		optInt(v.ModelName), optStr(v.CreatedAt), opt(v.TotalDuration), opt(v.LoadDuration),
		opt(v.PromptTokenLength), opt(v.PromptDuration), opt(v.ResponseTokenLength), opt(v.ResponseDuration),
		optStr(v.Prompt), optStr(v.Response), opt(v.EnergyConsumptionMonitoring), opt(v.EnergyConsumptionLLMCPU),
		optStr(v.Type), optStr(v.ClockDuration), optStr(v.StartTime), optStr(v.EndTime),
		opt(v.EnergyConsumptionLLM), opt(v.WordCount), opt(v.SentenceCount), opt(v.AvgWordLength),
		opt(v.WordDiversity), opt(v.UniqueWordCount), opt(v.AvgSentenceLength), opt(v.PunctuationCount),
		opt(v.StopWordCount), opt(v.LongWordCount), opt(v.NamedEntityCount), opt(v.NounCount),
		opt(v.VerbCount), opt(v.AdjCount), opt(v.AdverbCount), opt(v.PronounCount),
		opt(v.PropAdverbs), opt(v.PropPronouns), opt(v.SentimentPolarity), opt(v.SentimentSubjectivity),
		opt(v.FleschReadingEase), opt(v.FleschKincaidGrade), opt(v.GunningFog), opt(v.SmogIndex),
		opt(v.AutomatedReadabilityIndex), opt(v.ColemanLiauIndex), opt(v.LinsearWriteFormula), opt(v.DaleChallReadabilityScore),
		optStr(v.TextStandard), opt(v.SpacheReadability), opt(v.McalpineEflaw), opt(v.ReadingTime),
		opt(v.FernandezHuerta), opt(v.SzigrisztPazos), opt(v.GutierrezPolini), opt(v.Crawford),
		opt(v.Osman), opt(v.GulpeaseIndex), opt(v.WienerSachtextformel), opt(v.SyllableCount),
		opt(v.LexiconCount), opt(v.CharCount), opt(v.LetterCount), opt(v.PolysyllableCount),
		opt(v.MonosyllableCount), opt(v.QuestionMarks), opt(v.ExclamationMarks), opt(v.SentenceEmbeddingVariance),
		opt(v.PersonalPronouns), opt(v.NamedEntities), opt(v.Adjectives), opt(v.Adverbs),
		opt(v.LengthXComplexity), opt(v.QuestionsAboutEntities), opt(v.DescComplexityRatio), opt(v.WordCountSquared),
		opt(v.AvgSentenceLengthCubed), opt(v.LexicalDiversity), opt(v.EnergyConsumptionLLMGPU), optInt(v.TaskAlpaca),
		optInt(v.TaskCodefeedback), v.ModelCodellama7B, v.ModelCodellama70B, v.ModelGemma2B,
		v.ModelGemma7B, v.ModelLlama38B, v.ModelLlama370B, v.HardwareLaptop1,
		v.HardwareLaptop2, v.HardwareWorkstation, v.HardwareServer, v.OriginalFilename,
	}
}

func ptr(f float64) *float64 { return &f }

func num(i int) *float64 { return ptr(float64(i)) }

func opt(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func optInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func optStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
