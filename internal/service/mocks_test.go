package service

import (
	"context"
	"io"

	"wrongbook/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if user := args.Get(0); user != nil {
		return user.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if users := args.Get(0); users != nil {
		return users.([]*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) BindGoogleID(ctx context.Context, userID int64, googleID, name, picture string) (*domain.User, error) {
	args := m.Called(ctx, userID, googleID, name, picture)
	if user := args.Get(0); user != nil {
		return user.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, userID int64, name, picture string) (*domain.User, error) {
	args := m.Called(ctx, userID, name, picture)
	if user := args.Get(0); user != nil {
		return user.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdateGrade(ctx context.Context, userID int64, grade string) (*domain.User, error) {
	args := m.Called(ctx, userID, grade)
	if user := args.Get(0); user != nil {
		return user.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) AddTokenUsage(ctx context.Context, userID int64, usage domain.TokenUsage) error {
	args := m.Called(ctx, userID, usage)
	return args.Error(0)
}

func (m *MockUserRepository) GetTokenUsage(ctx context.Context, userID int64) (*domain.UserTokenUsage, error) {
	args := m.Called(ctx, userID)
	if usage := args.Get(0); usage != nil {
		return usage.(*domain.UserTokenUsage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetAllTokenUsage(ctx context.Context) (*domain.SystemTokenUsage, error) {
	args := m.Called(ctx)
	if report := args.Get(0); report != nil {
		return report.(*domain.SystemTokenUsage), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) CreateQuestion(ctx context.Context, question *domain.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetQuestion(ctx context.Context, id, userID int64) (*domain.Question, error) {
	args := m.Called(ctx, id, userID)
	if q := args.Get(0); q != nil {
		return q.(*domain.Question), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionRepository) ListQuestions(ctx context.Context, userID int64, filters domain.QuestionFilters) ([]*domain.Question, error) {
	args := m.Called(ctx, userID, filters)
	if qs := args.Get(0); qs != nil {
		return qs.([]*domain.Question), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionRepository) GetQuestionsByIDs(ctx context.Context, userID int64, ids []int64) ([]*domain.Question, error) {
	args := m.Called(ctx, userID, ids)
	if qs := args.Get(0); qs != nil {
		return qs.([]*domain.Question), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionRepository) UpdateQuestion(ctx context.Context, id, userID int64, update domain.QuestionUpdate) (*domain.Question, error) {
	args := m.Called(ctx, id, userID, update)
	if q := args.Get(0); q != nil {
		return q.(*domain.Question), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionRepository) SetVectorID(ctx context.Context, id int64, vectorID string) error {
	args := m.Called(ctx, id, vectorID)
	return args.Error(0)
}

func (m *MockQuestionRepository) SetExplanation(ctx context.Context, id, userID int64, explanation string) (*domain.Question, error) {
	args := m.Called(ctx, id, userID, explanation)
	if q := args.Get(0); q != nil {
		return q.(*domain.Question), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionRepository) DeleteQuestion(ctx context.Context, id, userID int64) (*domain.Question, error) {
	args := m.Called(ctx, id, userID)
	if q := args.Get(0); q != nil {
		return q.(*domain.Question), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQuestionRepository) SearchByText(ctx context.Context, userID int64, query string, limit int) ([]*domain.Question, error) {
	args := m.Called(ctx, userID, query, limit)
	if qs := args.Get(0); qs != nil {
		return qs.([]*domain.Question), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUploadRepository struct {
	mock.Mock
}

func (m *MockUploadRepository) CreateUpload(ctx context.Context, upload *domain.UploadHistory) error {
	args := m.Called(ctx, upload)
	return args.Error(0)
}

func (m *MockUploadRepository) MarkCompleted(ctx context.Context, id int64, questionsExtracted int) error {
	args := m.Called(ctx, id, questionsExtracted)
	return args.Error(0)
}

func (m *MockUploadRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	args := m.Called(ctx, id, errorMessage)
	return args.Error(0)
}

func (m *MockUploadRepository) ListUploadsByUser(ctx context.Context, userID int64) ([]*domain.UploadHistory, error) {
	args := m.Called(ctx, userID)
	if uploads := args.Get(0); uploads != nil {
		return uploads.([]*domain.UploadHistory), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) GetStudentStats(ctx context.Context, userID int64, grade string) (*domain.StudentStats, error) {
	args := m.Called(ctx, userID, grade)
	if stats := args.Get(0); stats != nil {
		return stats.(*domain.StudentStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStatsRepository) GetSubjectStats(ctx context.Context, userID int64, grade string) ([]*domain.SubjectStats, error) {
	args := m.Called(ctx, userID, grade)
	if stats := args.Get(0); stats != nil {
		return stats.([]*domain.SubjectStats), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockExamAnalyzer struct {
	mock.Mock
}

func (m *MockExamAnalyzer) AnalyzeExamImage(ctx context.Context, image []byte, mimeType, subject string) (*domain.ExamAnalysis, domain.TokenUsage, error) {
	args := m.Called(ctx, image, mimeType, subject)
	var analysis *domain.ExamAnalysis
	if a := args.Get(0); a != nil {
		analysis = a.(*domain.ExamAnalysis)
	}
	return analysis, args.Get(1).(domain.TokenUsage), args.Error(2)
}

func (m *MockExamAnalyzer) ExplainQuestion(ctx context.Context, questionText, subject, grade string) (string, domain.TokenUsage, error) {
	args := m.Called(ctx, questionText, subject, grade)
	return args.String(0), args.Get(1).(domain.TokenUsage), args.Error(2)
}

func (m *MockExamAnalyzer) GenerateSimilarQuestions(ctx context.Context, questionText, subject, grade string) ([]string, domain.TokenUsage, error) {
	args := m.Called(ctx, questionText, subject, grade)
	var questions []string
	if qs := args.Get(0); qs != nil {
		questions = qs.([]string)
	}
	return questions, args.Get(1).(domain.TokenUsage), args.Error(2)
}

type MockEmbeddingService struct {
	mock.Mock
}

func (m *MockEmbeddingService) Generate(ctx context.Context, text string) ([]float32, domain.TokenUsage, error) {
	args := m.Called(ctx, text)
	var embedding []float32
	if e := args.Get(0); e != nil {
		embedding = e.([]float32)
	}
	return embedding, args.Get(1).(domain.TokenUsage), args.Error(2)
}

type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) Store(ctx context.Context, record *domain.EmbeddingRecord) (string, error) {
	args := m.Called(ctx, record)
	return args.String(0), args.Error(1)
}

func (m *MockVectorStore) Search(ctx context.Context, userID int64, embedding []float32, limit int) ([]domain.VectorMatch, error) {
	args := m.Called(ctx, userID, embedding, limit)
	if matches := args.Get(0); matches != nil {
		return matches.([]domain.VectorMatch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVectorStore) Delete(ctx context.Context, vectorID string) error {
	args := m.Called(ctx, vectorID)
	return args.Error(0)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, name, contentType, r)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

type MockIdentityVerifier struct {
	mock.Mock
}

func (m *MockIdentityVerifier) Verify(ctx context.Context, token string) (*domain.IdentityClaim, error) {
	args := m.Called(ctx, token)
	if claim := args.Get(0); claim != nil {
		return claim.(*domain.IdentityClaim), args.Error(1)
	}
	return nil, args.Error(1)
}
