package service

import (
	"context"
	"time"

	"wrongbook/internal/domain"
	"wrongbook/internal/dto"
	"wrongbook/internal/logger"

	"go.uber.org/zap"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 20
)

// QuestionService defines review operations over a user's wrong questions.
type QuestionService interface {
	ListQuestions(ctx context.Context, userID int64, filters dto.QuestionListFilters) ([]dto.QuestionResponse, error)
	GetQuestion(ctx context.Context, userID, questionID int64) (*dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, userID, questionID int64, req dto.QuestionUpdateRequest) (*dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, userID, questionID int64) error
	// SearchQuestions performs semantic search with a substring fallback.
	// Search degradations never surface as errors.
	SearchQuestions(ctx context.Context, userID int64, req dto.QuestionSearchRequest) ([]dto.QuestionResponse, error)
	RegenerateExplanation(ctx context.Context, userID, questionID int64) (*dto.QuestionResponse, error)
	GenerateSimilarQuestions(ctx context.Context, userID, questionID int64) (*dto.SimilarQuestionsResponse, error)
}

type questionServiceImpl struct {
	questionRepo domain.QuestionRepository
	userRepo     domain.UserRepository
	analyzer     domain.ExamAnalyzer
	embedder     domain.EmbeddingService
	vectorStore  domain.VectorStore
}

// NewQuestionService creates a new instance of QuestionService.
func NewQuestionService(
	questionRepo domain.QuestionRepository,
	userRepo domain.UserRepository,
	analyzer domain.ExamAnalyzer,
	embedder domain.EmbeddingService,
	vectorStore domain.VectorStore,
) QuestionService {
	return &questionServiceImpl{
		questionRepo: questionRepo,
		userRepo:     userRepo,
		analyzer:     analyzer,
		embedder:     embedder,
		vectorStore:  vectorStore,
	}
}

// ToQuestionResponse converts a question to its public representation.
func ToQuestionResponse(q *domain.Question) dto.QuestionResponse {
	return dto.QuestionResponse{
		ID:              q.ID,
		UserID:          q.UserID,
		Subject:         q.Subject,
		Grade:           q.Grade,
		QuestionText:    q.QuestionText,
		ImageURL:        q.ImageURL,
		ImageSnippetURL: q.ImageSnippetURL,
		Explanation:     q.Explanation,
		Status:          string(q.Status),
		Metadata:        q.Metadata,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}
}

func toQuestionResponses(questions []*domain.Question) []dto.QuestionResponse {
	responses := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, ToQuestionResponse(q))
	}
	return responses
}

// parseFilters converts query-string filters to domain filters. Unparseable
// dates and unknown statuses are dropped, not rejected.
func parseFilters(filters dto.QuestionListFilters) domain.QuestionFilters {
	parsed := domain.QuestionFilters{
		Subject: filters.Subject,
		Grade:   filters.Grade,
	}
	if status := domain.QuestionStatus(filters.Status); domain.ValidStatus(status) {
		parsed.Status = status
	}
	if filters.StartDate != "" {
		if t, err := parseDate(filters.StartDate); err == nil {
			parsed.StartDate = &t
		}
	}
	if filters.EndDate != "" {
		if t, err := parseDate(filters.EndDate); err == nil {
			parsed.EndDate = &t
		}
	}
	return parsed
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (s *questionServiceImpl) ListQuestions(ctx context.Context, userID int64, filters dto.QuestionListFilters) ([]dto.QuestionResponse, error) {
	questions, err := s.questionRepo.ListQuestions(ctx, userID, parseFilters(filters))
	if err != nil {
		return nil, domain.NewInternalError("failed to list questions", err)
	}
	return toQuestionResponses(questions), nil
}

func (s *questionServiceImpl) GetQuestion(ctx context.Context, userID, questionID int64) (*dto.QuestionResponse, error) {
	question, err := s.questionRepo.GetQuestion(ctx, questionID, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get question", err)
	}
	if question == nil {
		return nil, domain.NewQuestionNotFoundError(questionID)
	}
	resp := ToQuestionResponse(question)
	return &resp, nil
}

func (s *questionServiceImpl) UpdateQuestion(ctx context.Context, userID, questionID int64, req dto.QuestionUpdateRequest) (*dto.QuestionResponse, error) {
	update := domain.QuestionUpdate{Explanation: req.Explanation}
	if req.Status != nil {
		status := domain.QuestionStatus(*req.Status)
		if !domain.ValidStatus(status) {
			return nil, domain.NewInvalidInputError("invalid status: " + *req.Status)
		}
		update.Status = &status
	}

	question, err := s.questionRepo.UpdateQuestion(ctx, questionID, userID, update)
	if err != nil {
		return nil, domain.NewInternalError("failed to update question", err)
	}
	if question == nil {
		return nil, domain.NewQuestionNotFoundError(questionID)
	}
	resp := ToQuestionResponse(question)
	return &resp, nil
}

func (s *questionServiceImpl) DeleteQuestion(ctx context.Context, userID, questionID int64) error {
	deleted, err := s.questionRepo.DeleteQuestion(ctx, questionID, userID)
	if err != nil {
		return domain.NewInternalError("failed to delete question", err)
	}
	if deleted == nil {
		return domain.NewQuestionNotFoundError(questionID)
	}

	if deleted.VectorID != "" {
		if err := s.vectorStore.Delete(ctx, deleted.VectorID); err != nil {
			logger.Get().Warn("Failed to delete question embedding, index entry is now stale",
				zap.Int64("questionID", questionID),
				zap.String("vectorID", deleted.VectorID),
				zap.Error(err))
		}
	}
	return nil
}

func (s *questionServiceImpl) SearchQuestions(ctx context.Context, userID int64, req dto.QuestionSearchRequest) ([]dto.QuestionResponse, error) {
	if req.Query == "" {
		return nil, domain.NewInvalidInputError("query cannot be empty")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	appLogger := logger.Get()

	embedding, usage, err := s.embedder.Generate(ctx, req.Query)
	if err != nil {
		appLogger.Warn("Embedding failed, falling back to substring search", zap.Error(err))
		return s.substringSearch(ctx, userID, req.Query, limit)
	}
	s.recordUsage(ctx, userID, usage)

	matches, err := s.vectorStore.Search(ctx, userID, embedding, limit)
	if err != nil {
		appLogger.Warn("Vector search failed, falling back to substring search", zap.Error(err))
		return s.substringSearch(ctx, userID, req.Query, limit)
	}
	if len(matches) == 0 {
		return s.substringSearch(ctx, userID, req.Query, limit)
	}

	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.QuestionID)
	}
	questions, err := s.questionRepo.GetQuestionsByIDs(ctx, userID, ids)
	if err != nil {
		return nil, domain.NewInternalError("failed to load matched questions", err)
	}

	// Preserve the similarity ordering of the matches.
	byID := make(map[int64]*domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]*domain.Question, 0, len(matches))
	for _, m := range matches {
		if q, ok := byID[m.QuestionID]; ok {
			ordered = append(ordered, q)
		}
	}
	if len(ordered) == 0 {
		// Index entries pointed at rows that no longer exist.
		return s.substringSearch(ctx, userID, req.Query, limit)
	}
	return toQuestionResponses(ordered), nil
}

func (s *questionServiceImpl) substringSearch(ctx context.Context, userID int64, query string, limit int) ([]dto.QuestionResponse, error) {
	questions, err := s.questionRepo.SearchByText(ctx, userID, query, limit)
	if err != nil {
		return nil, domain.NewInternalError("failed to search questions", err)
	}
	return toQuestionResponses(questions), nil
}

func (s *questionServiceImpl) RegenerateExplanation(ctx context.Context, userID, questionID int64) (*dto.QuestionResponse, error) {
	question, err := s.questionRepo.GetQuestion(ctx, questionID, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get question", err)
	}
	if question == nil {
		return nil, domain.NewQuestionNotFoundError(questionID)
	}

	explanation, usage, err := s.analyzer.ExplainQuestion(ctx, question.QuestionText, question.Subject, question.Grade)
	if err != nil {
		return nil, err
	}
	s.recordUsage(ctx, userID, usage)

	updated, err := s.questionRepo.SetExplanation(ctx, questionID, userID, explanation)
	if err != nil {
		return nil, domain.NewInternalError("failed to save explanation", err)
	}
	if updated == nil {
		return nil, domain.NewQuestionNotFoundError(questionID)
	}
	resp := ToQuestionResponse(updated)
	return &resp, nil
}

func (s *questionServiceImpl) GenerateSimilarQuestions(ctx context.Context, userID, questionID int64) (*dto.SimilarQuestionsResponse, error) {
	question, err := s.questionRepo.GetQuestion(ctx, questionID, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get question", err)
	}
	if question == nil {
		return nil, domain.NewQuestionNotFoundError(questionID)
	}

	questions, usage, err := s.analyzer.GenerateSimilarQuestions(ctx, question.QuestionText, question.Subject, question.Grade)
	if err != nil {
		return nil, err
	}
	s.recordUsage(ctx, userID, usage)

	return &dto.SimilarQuestionsResponse{
		QuestionID: questionID,
		Questions:  questions,
	}, nil
}

// recordUsage feeds the usage ledger best-effort; a failed write never fails
// the operation that consumed the tokens.
func (s *questionServiceImpl) recordUsage(ctx context.Context, userID int64, usage domain.TokenUsage) {
	if usage.TotalTokens == 0 && usage.PromptTokens == 0 && usage.CompletionTokens == 0 {
		return
	}
	if err := s.userRepo.AddTokenUsage(ctx, userID, usage); err != nil {
		logger.Get().Warn("Failed to record token usage",
			zap.Int64("userID", userID), zap.Error(err))
	}
}
