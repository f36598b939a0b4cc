package service

import (
	"bytes"
	"context"
	"fmt"

	"wrongbook/internal/config"
	"wrongbook/internal/domain"
	"wrongbook/internal/dto"
	"wrongbook/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadService runs the exam-photo ingestion pipeline.
type UploadService interface {
	// ProcessUpload stores the image, extracts the wrongly answered
	// questions, generates an explanation and embedding per question, and
	// persists everything. Individual question failures degrade; only a
	// failed extraction fails the upload as a whole. An empty grade falls
	// back to the uploader's profile grade.
	ProcessUpload(ctx context.Context, userID int64, filename, contentType string, image []byte, subject, grade string) (*dto.UploadResponse, error)
	ListUploads(ctx context.Context, userID int64) ([]dto.UploadHistoryResponse, error)
}

type uploadServiceImpl struct {
	questionRepo domain.QuestionRepository
	uploadRepo   domain.UploadRepository
	userRepo     domain.UserRepository
	analyzer     domain.ExamAnalyzer
	embedder     domain.EmbeddingService
	vectorStore  domain.VectorStore
	objectStore  domain.ObjectStore
	maxSize      int64
}

// NewUploadService creates a new instance of UploadService.
func NewUploadService(
	questionRepo domain.QuestionRepository,
	uploadRepo domain.UploadRepository,
	userRepo domain.UserRepository,
	analyzer domain.ExamAnalyzer,
	embedder domain.EmbeddingService,
	vectorStore domain.VectorStore,
	objectStore domain.ObjectStore,
	storageCfg config.StorageConfig,
) UploadService {
	return &uploadServiceImpl{
		questionRepo: questionRepo,
		uploadRepo:   uploadRepo,
		userRepo:     userRepo,
		analyzer:     analyzer,
		embedder:     embedder,
		vectorStore:  vectorStore,
		objectStore:  objectStore,
		maxSize:      storageCfg.MaxUploadSize,
	}
}

func (s *uploadServiceImpl) ProcessUpload(ctx context.Context, userID int64, filename, contentType string, image []byte, subject, grade string) (*dto.UploadResponse, error) {
	appLogger := logger.Get()

	if subject == "" {
		return nil, domain.NewInvalidInputError("subject is required")
	}
	if len(image) == 0 {
		return nil, domain.NewInvalidInputError("image is empty")
	}
	if s.maxSize > 0 && int64(len(image)) > s.maxSize {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("image exceeds the %d byte limit", s.maxSize))
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, domain.NewInvalidInputError("unsupported image type: " + contentType)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(userID)
	}
	if grade == "" {
		grade = user.Grade
	}

	objectName := uuid.NewString() + ext
	imageURL, err := s.objectStore.Save(ctx, objectName, contentType, bytes.NewReader(image))
	if err != nil {
		return nil, domain.NewInternalError("failed to store image", err)
	}

	upload := &domain.UploadHistory{
		UserID:   userID,
		Filename: filename,
		Subject:  subject,
		Status:   domain.UploadProcessing,
	}
	if err := s.uploadRepo.CreateUpload(ctx, upload); err != nil {
		return nil, domain.NewInternalError("failed to record upload", err)
	}

	var totalUsage domain.TokenUsage
	defer func() {
		if totalUsage.TotalTokens > 0 || totalUsage.PromptTokens > 0 || totalUsage.CompletionTokens > 0 {
			if err := s.userRepo.AddTokenUsage(ctx, userID, totalUsage); err != nil {
				appLogger.Warn("Failed to record upload token usage",
					zap.Int64("userID", userID), zap.Error(err))
			}
		}
	}()

	analysis, analysisUsage, err := s.analyzer.AnalyzeExamImage(ctx, image, contentType, subject)
	totalUsage.Add(analysisUsage)
	if err != nil {
		if markErr := s.uploadRepo.MarkFailed(ctx, upload.ID, err.Error()); markErr != nil {
			appLogger.Error("Failed to mark upload as failed",
				zap.Int64("uploadID", upload.ID), zap.Error(markErr))
		}
		return nil, err
	}

	created := 0
	for _, wq := range analysis.WrongQuestions {
		if wq.QuestionText == "" {
			appLogger.Warn("Skipping extracted item without question text",
				zap.Int64("uploadID", upload.ID),
				zap.String("questionNumber", wq.QuestionNumber))
			continue
		}
		usage, ok := s.processQuestion(ctx, user, wq, subject, grade, imageURL)
		totalUsage.Add(usage)
		if ok {
			created++
		}
	}

	if err := s.uploadRepo.MarkCompleted(ctx, upload.ID, created); err != nil {
		appLogger.Error("Failed to mark upload as completed",
			zap.Int64("uploadID", upload.ID), zap.Error(err))
	}

	appLogger.Info("Processed exam upload",
		zap.Int64("userID", userID),
		zap.Int64("uploadID", upload.ID),
		zap.Int("extracted", len(analysis.WrongQuestions)),
		zap.Int("created", created))

	return &dto.UploadResponse{
		Message:        fmt.Sprintf("Extracted %d wrong questions", created),
		QuestionsCount: created,
		UploadID:       upload.ID,
	}, nil
}

// processQuestion runs the per-question half of the pipeline. Explanation
// and embedding failures degrade; only a failed insert drops the question.
func (s *uploadServiceImpl) processQuestion(ctx context.Context, user *domain.User, wq domain.WrongQuestion, subject, grade, imageURL string) (domain.TokenUsage, bool) {
	appLogger := logger.Get()
	var usage domain.TokenUsage

	explanation, explainUsage, err := s.analyzer.ExplainQuestion(ctx, wq.QuestionText, subject, grade)
	usage.Add(explainUsage)
	if err != nil {
		appLogger.Warn("Explanation generation failed, storing question without one",
			zap.String("questionNumber", wq.QuestionNumber), zap.Error(err))
		explanation = wq.Explanation
	}

	question := &domain.Question{
		UserID:       user.ID,
		Subject:      subject,
		Grade:        grade,
		QuestionText: wq.QuestionText,
		ImageURL:     imageURL,
		Explanation:  explanation,
		Status:       domain.StatusPending,
		Metadata: map[string]string{
			"question_number": wq.QuestionNumber,
			"topic":           wq.Topic,
		},
	}
	if err := s.questionRepo.CreateQuestion(ctx, question); err != nil {
		appLogger.Error("Failed to persist extracted question",
			zap.String("questionNumber", wq.QuestionNumber), zap.Error(err))
		return usage, false
	}

	embedding, embedUsage, err := s.embedder.Generate(ctx, wq.QuestionText)
	usage.Add(embedUsage)
	if err != nil {
		appLogger.Warn("Embedding generation failed, question will miss semantic search",
			zap.Int64("questionID", question.ID), zap.Error(err))
		return usage, true
	}

	vectorID, err := s.vectorStore.Store(ctx, &domain.EmbeddingRecord{
		UserID:       user.ID,
		QuestionID:   question.ID,
		QuestionText: wq.QuestionText,
		Subject:      subject,
		Grade:        grade,
		Embedding:    embedding,
		Metadata:     map[string]string{"topic": wq.Topic},
	})
	if err != nil {
		appLogger.Warn("Vector store write failed, question will miss semantic search",
			zap.Int64("questionID", question.ID), zap.Error(err))
		return usage, true
	}
	if vectorID != "" {
		if err := s.questionRepo.SetVectorID(ctx, question.ID, vectorID); err != nil {
			appLogger.Warn("Failed to link question to its embedding",
				zap.Int64("questionID", question.ID), zap.Error(err))
		}
	}
	return usage, true
}

func (s *uploadServiceImpl) ListUploads(ctx context.Context, userID int64) ([]dto.UploadHistoryResponse, error) {
	uploads, err := s.uploadRepo.ListUploadsByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list uploads", err)
	}

	responses := make([]dto.UploadHistoryResponse, 0, len(uploads))
	for _, u := range uploads {
		responses = append(responses, dto.UploadHistoryResponse{
			ID:                 u.ID,
			Filename:           u.Filename,
			Subject:            u.Subject,
			QuestionsExtracted: u.QuestionsExtracted,
			Status:             string(u.Status),
			ErrorMessage:       u.ErrorMessage,
			CreatedAt:          u.CreatedAt,
		})
	}
	return responses, nil
}
