package handler

import (
	"io"
	"net/http"
	"strconv"

	"wrongbook/internal/domain"
	"wrongbook/internal/dto"
	"wrongbook/internal/middleware"
	"wrongbook/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuestionHandler serves the wrong-question endpoints.
type QuestionHandler struct {
	questionService service.QuestionService
	uploadService   service.UploadService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService service.QuestionService, uploadService service.UploadService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService, uploadService: uploadService}
}

func questionIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewInvalidInputError("invalid question id")
	}
	return id, nil
}

// Upload runs the exam-photo ingestion pipeline.
// POST /questions/upload
func (h *QuestionHandler) Upload(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domain.ValidationErrors{domain.NewMissingFieldError("file")}
	}
	subject := c.FormValue("subject")
	if subject == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("subject")}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return domain.NewInvalidInputError("failed to open uploaded file")
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		return domain.NewInvalidInputError("failed to read uploaded file")
	}

	contentType := fileHeader.Header.Get(fiber.HeaderContentType)
	grade := c.FormValue("grade")
	resp, err := h.uploadService.ProcessUpload(c.Context(), userID, fileHeader.Filename, contentType, image, subject, grade)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(resp)
}

// ListWrong returns the caller's questions, filtered.
// GET /questions/wrong
func (h *QuestionHandler) ListWrong(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	var filters dto.QuestionListFilters
	if err := c.QueryParser(&filters); err != nil {
		return domain.NewInvalidInputError("invalid query parameters")
	}

	resp, err := h.questionService.ListQuestions(c.Context(), userID, filters)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListUploads returns the caller's upload history.
// GET /questions/uploads
func (h *QuestionHandler) ListUploads(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.uploadService.ListUploads(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Search performs semantic search over the caller's questions.
// POST /questions/search
func (h *QuestionHandler) Search(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	var req dto.QuestionSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if req.Query == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("query")}
	}

	resp, err := h.questionService.SearchQuestions(c.Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Get returns one of the caller's questions.
// GET /questions/:id
func (h *QuestionHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	questionID, err := questionIDParam(c)
	if err != nil {
		return err
	}

	resp, err := h.questionService.GetQuestion(c.Context(), userID, questionID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UpdateStatus applies a partial status/explanation update.
// PUT /questions/:id/status
func (h *QuestionHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	questionID, err := questionIDParam(c)
	if err != nil {
		return err
	}

	var req dto.QuestionUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.questionService.UpdateQuestion(c.Context(), userID, questionID, req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Delete removes one of the caller's questions.
// DELETE /questions/:id
func (h *QuestionHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	questionID, err := questionIDParam(c)
	if err != nil {
		return err
	}

	if err := h.questionService.DeleteQuestion(c.Context(), userID, questionID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Question deleted"})
}

// Regenerate re-runs explanation generation for one question.
// POST /questions/:id/regenerate
func (h *QuestionHandler) Regenerate(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	questionID, err := questionIDParam(c)
	if err != nil {
		return err
	}

	resp, err := h.questionService.RegenerateExplanation(c.Context(), userID, questionID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Similar generates practice questions for one question.
// POST /questions/:id/similar
func (h *QuestionHandler) Similar(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}
	questionID, err := questionIDParam(c)
	if err != nil {
		return err
	}

	resp, err := h.questionService.GenerateSimilarQuestions(c.Context(), userID, questionID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
