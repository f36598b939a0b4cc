package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"wrongbook/internal/config"
	"wrongbook/internal/domain"
	"wrongbook/internal/logger"

	"github.com/tmc/langchaingo/llms"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// contentModel is the slice of the langchaingo model the analyzer needs.
type contentModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// azureExamAnalyzer implements domain.ExamAnalyzer against an Azure OpenAI
// chat deployment with vision support. Every model call is bounded by the
// configured timeout.
type azureExamAnalyzer struct {
	model   contentModel
	timeout time.Duration
}

// NewAzureExamAnalyzer creates a new azureExamAnalyzer from the Azure
// OpenAI configuration.
func NewAzureExamAnalyzer(cfg *config.Config) (domain.ExamAnalyzer, error) {
	if cfg.AzureOpenAI.APIKey == "" {
		return nil, fmt.Errorf("azure openai API key cannot be empty")
	}
	if cfg.AzureOpenAI.Endpoint == "" {
		return nil, fmt.Errorf("azure openai endpoint cannot be empty")
	}

	llm, err := openaiLLM.New(
		openaiLLM.WithAPIType(openaiLLM.APITypeAzure),
		openaiLLM.WithToken(cfg.AzureOpenAI.APIKey),
		openaiLLM.WithBaseURL(cfg.AzureOpenAI.Endpoint),
		openaiLLM.WithAPIVersion(cfg.AzureOpenAI.APIVersion),
		openaiLLM.WithModel(cfg.AzureOpenAI.Deployment),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}

	return &azureExamAnalyzer{model: llm, timeout: cfg.AzureOpenAI.Timeout}, nil
}

func (a *azureExamAnalyzer) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

const analysisPromptTemplate = `You are analyzing a photo of a graded exam paper. Identify every question the student answered INCORRECTLY (marked wrong, crossed out, or with a score deduction).

Subject: %s

Respond with ONLY a JSON object in the following format:
{
    "wrong_questions": [
        {
            "question_number": "3",
            "question_text": "full text of the question as written on the paper",
            "topic": "short topic label",
            "explanation": "one sentence on what the student likely got wrong"
        }
    ],
    "total_questions_detected": 0,
    "total_wrong_questions": 0,
    "analysis_notes": "brief notes about image quality or ambiguity"
}

Rules:
1. Include ONLY questions that are marked as wrong
2. Transcribe question text faithfully, including any mathematical notation
3. If no wrong questions are visible, return an empty wrong_questions array
4. Do not wrap the JSON in markdown fences`

// AnalyzeExamImage extracts the wrongly answered questions from an exam
// paper image. Unparseable model output degrades to a zero-question result
// instead of failing the upload.
func (a *azureExamAnalyzer) AnalyzeExamImage(ctx context.Context, image []byte, mimeType, subject string) (*domain.ExamAnalysis, domain.TokenUsage, error) {
	l := logger.Get()

	messages := []llms.MessageContent{
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, image),
				llms.TextPart(fmt.Sprintf(analysisPromptTemplate, subject)),
			},
		},
	}

	callCtx, cancel := a.callContext(ctx)
	defer cancel()
	resp, err := a.model.GenerateContent(callCtx, messages, llms.WithTemperature(0.1))
	if err != nil {
		l.Error("Vision analysis call failed", zap.Error(err))
		return nil, domain.TokenUsage{}, domain.NewLLMServiceError(fmt.Errorf("vision analysis failed: %w", err))
	}

	raw, usage := firstChoice(resp)
	analysis := ParseExamAnalysis(raw)
	if len(analysis.WrongQuestions) == 0 && analysis.AnalysisNotes == raw {
		l.Warn("Model output was not parseable JSON, degrading to zero questions",
			zap.String("raw_head", raw[:min(200, len(raw))]))
	}
	return analysis, usage, nil
}

// ParseExamAnalysis extracts a structured analysis from raw model output.
// It strips markdown code fences, then takes the outermost JSON object. Any
// parse failure yields a zero-question analysis carrying the raw text in
// AnalysisNotes.
func ParseExamAnalysis(raw string) *domain.ExamAnalysis {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	jsonStart := strings.Index(cleaned, "{")
	jsonEnd := strings.LastIndex(cleaned, "}")
	if jsonStart == -1 || jsonEnd <= jsonStart {
		return &domain.ExamAnalysis{WrongQuestions: []domain.WrongQuestion{}, AnalysisNotes: raw}
	}

	var analysis domain.ExamAnalysis
	if err := json.Unmarshal([]byte(cleaned[jsonStart:jsonEnd+1]), &analysis); err != nil {
		return &domain.ExamAnalysis{WrongQuestions: []domain.WrongQuestion{}, AnalysisNotes: raw}
	}
	if analysis.WrongQuestions == nil {
		analysis.WrongQuestions = []domain.WrongQuestion{}
	}
	return &analysis
}

const explanationPromptTemplate = `You are a patient tutor helping a %s student review a question they got wrong.

Subject: %s
Question: %s

Write an explanation with EXACTLY these markdown sections:

## Question
Restate the question in your own words.

## Key ideas
The concepts the question is testing, as a short bullet list.

## Step-by-step solution
Numbered steps from the given information to the answer.

## Final answer
The answer on its own line.

Rules:
1. Write all mathematical expressions inside $...$ delimiters
2. Keep each step short; one idea per step
3. Do not mention that the student answered incorrectly`

// ExplainQuestion generates a structured step-by-step explanation.
func (a *azureExamAnalyzer) ExplainQuestion(ctx context.Context, questionText, subject, grade string) (string, domain.TokenUsage, error) {
	gradeLabel := grade
	if gradeLabel == "" {
		gradeLabel = "secondary school"
	}
	prompt := fmt.Sprintf(explanationPromptTemplate, gradeLabel, subject, questionText)

	callCtx, cancel := a.callContext(ctx)
	defer cancel()
	resp, err := a.model.GenerateContent(callCtx,
		[]llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(0.3),
	)
	if err != nil {
		logger.Get().Error("Explanation call failed", zap.Error(err))
		return "", domain.TokenUsage{}, domain.NewLLMServiceError(fmt.Errorf("explanation generation failed: %w", err))
	}

	text, usage := firstChoice(resp)
	return strings.TrimSpace(text), usage, nil
}

const similarPromptTemplate = `Write exactly 3 new practice questions testing the same concepts as the question below, for a %s student.

Subject: %s
Original question: %s

Format the output as a numbered list:
1) first question
2) second question
3) third question

Rules:
1. Each question must be self-contained and answerable without the original
2. Vary the numbers or scenario, not the underlying concept
3. Write mathematical expressions inside $...$ delimiters
4. Output nothing besides the three numbered questions`

// GenerateSimilarQuestions produces three practice questions testing the
// same concepts as questionText.
func (a *azureExamAnalyzer) GenerateSimilarQuestions(ctx context.Context, questionText, subject, grade string) ([]string, domain.TokenUsage, error) {
	gradeLabel := grade
	if gradeLabel == "" {
		gradeLabel = "secondary school"
	}
	prompt := fmt.Sprintf(similarPromptTemplate, gradeLabel, subject, questionText)

	callCtx, cancel := a.callContext(ctx)
	defer cancel()
	resp, err := a.model.GenerateContent(callCtx,
		[]llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(0.7),
	)
	if err != nil {
		logger.Get().Error("Similar questions call failed", zap.Error(err))
		return nil, domain.TokenUsage{}, domain.NewLLMServiceError(fmt.Errorf("similar question generation failed: %w", err))
	}

	text, usage := firstChoice(resp)
	return ParseNumberedQuestions(text), usage, nil
}

// ParseNumberedQuestions splits "1) ... 2) ... 3) ..." output into three
// questions, tolerating "1." numbering and padding short output with the
// model's remaining text so callers always receive three entries.
func ParseNumberedQuestions(raw string) []string {
	questions := make([]string, 0, 3)
	var current strings.Builder

	flush := func() {
		if q := strings.TrimSpace(current.String()); q != "" {
			questions = append(questions, q)
		}
		current.Reset()
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if isNumberedLead(trimmed) {
			flush()
			trimmed = strings.TrimSpace(trimmed[2:])
		}
		if trimmed == "" {
			continue
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(trimmed)
	}
	flush()

	if len(questions) > 3 {
		questions = questions[:3]
	}
	for len(questions) < 3 && strings.TrimSpace(raw) != "" {
		questions = append(questions, strings.TrimSpace(raw))
	}
	return questions
}

func isNumberedLead(line string) bool {
	if len(line) < 2 {
		return false
	}
	if line[0] < '1' || line[0] > '9' {
		return false
	}
	return line[1] == ')' || line[1] == '.'
}

// firstChoice returns the first choice's text and its token usage from the
// generation info.
func firstChoice(resp *llms.ContentResponse) (string, domain.TokenUsage) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", domain.TokenUsage{}
	}
	choice := resp.Choices[0]
	return choice.Content, usageFromGenerationInfo(choice.GenerationInfo)
}

func usageFromGenerationInfo(info map[string]any) domain.TokenUsage {
	var usage domain.TokenUsage
	if info == nil {
		return usage
	}
	if v, ok := info["PromptTokens"].(int); ok {
		usage.PromptTokens = int64(v)
	}
	if v, ok := info["CompletionTokens"].(int); ok {
		usage.CompletionTokens = int64(v)
	}
	if v, ok := info["TotalTokens"].(int); ok {
		usage.TotalTokens = int64(v)
	}
	return usage
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
