package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/middleware"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// QuizHandler serves the learner-facing routes.
type QuizHandler struct {
	BaseHandler
	services services.ServiceManager
}

func NewQuizHandler(serviceManager services.ServiceManager, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		services:    serviceManager,
	}
}

// ListCollections lists active collections
// @Summary List collections
// @Description Lists active collections with question counts, plus the caller's progress when authenticated
// @Tags collections
// @Produce json
// @Success 200 {array} services.CollectionResponse
// @Router /collections [get]
func (h *QuizHandler) ListCollections(c *gin.Context) {
	collections, err := h.services.Collection().ListCollections(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, collections)
}

// ListQuestions lists a page of question previews
// @Summary List questions
// @Tags questions
// @Produce json
// @Param collectionId query uint true "Collection ID"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} services.QuestionListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions [get]
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	collectionID, ok := h.parseUintQuery(c, "collectionId")
	if !ok {
		return
	}

	resp, err := h.services.Question().ListQuestions(
		c.Request.Context(),
		middleware.UserID(c),
		collectionID,
		parseIntQuery(c, "page", 1),
		parseIntQuery(c, "pageSize", 20),
	)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPreviewQuestions returns the first questions of a collection for anonymous visitors
// @Summary Preview questions
// @Tags questions
// @Produce json
// @Param collectionId query uint true "Collection ID"
// @Success 200 {array} services.QuestionItem
// @Router /questions/preview [get]
func (h *QuizHandler) GetPreviewQuestions(c *gin.Context) {
	collectionID, ok := h.parseUintQuery(c, "collectionId")
	if !ok {
		return
	}

	items, err := h.services.Question().GetPreviewQuestions(c.Request.Context(), collectionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// SubmitAnswer grades an answer. Authenticated callers also get the attempt recorded.
// @Summary Submit answer
// @Tags answers
// @Accept json
// @Produce json
// @Param answer body services.SubmitAnswerRequest true "Answer"
// @Success 200 {object} services.SubmitAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /answers [post]
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	var req services.SubmitAnswerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting answer", "question_id", req.QuestionID)

	resp, err := h.services.Submission().SubmitAnswer(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetLatestAnswer returns the caller's latest attempt on a question
// @Summary Latest answer
// @Tags answers
// @Produce json
// @Param questionId path uint true "Question ID"
// @Success 200 {object} services.LatestAnswerResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /answers/{questionId}/latest [get]
func (h *QuizHandler) GetLatestAnswer(c *gin.Context) {
	questionID, ok := h.parseIDParam(c, "questionId")
	if !ok {
		return
	}

	resp, err := h.services.Results().GetLatestAnswer(c.Request.Context(), middleware.UserID(c), questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetCollectionReview reviews the caller's answers in a collection
// @Summary Collection review
// @Tags results
// @Produce json
// @Param id path uint true "Collection ID"
// @Param includeUnanswered query bool false "Include unanswered questions as previews"
// @Success 200 {object} services.CollectionReviewResponse
// @Router /results/collections/{id}/review [get]
func (h *QuizHandler) GetCollectionReview(c *gin.Context) {
	collectionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.services.Results().GetCollectionReview(
		c.Request.Context(),
		middleware.UserID(c),
		collectionID,
		parseBoolQuery(c, "includeUnanswered"),
	)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompleteSession grades a batch of answers without recording them. The path session id
// takes precedence over one in the body.
func (h *QuizHandler) CompleteSession(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "sessionId")
	if sessionID == "" {
		return
	}

	var req services.CompleteSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.SessionID = sessionID

	h.LogRequest(c, "Completing session", "session_id", sessionID, "answers", len(req.Answers))

	resp, err := h.services.Session().CompleteSession(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuizHandler) GetUserProgress(c *gin.Context) {
	resp, err := h.services.Progress().GetUserProgress(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
