package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ManagementHandler serves the administrator routes.
type ManagementHandler struct {
	BaseHandler
	services services.ServiceManager
}

func NewManagementHandler(serviceManager services.ServiceManager, logger utils.Logger) *ManagementHandler {
	return &ManagementHandler{
		BaseHandler: NewBaseHandler(logger),
		services:    serviceManager,
	}
}

// CreateCollection creates a collection together with its questions
// @Summary Create collection
// @Tags management
// @Accept json
// @Produce json
// @Param collection body services.CreateCollectionRequest true "Collection with questions"
// @Success 201 {object} SuccessResponse{data=services.CreateCollectionResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /management/collections [post]
func (h *ManagementHandler) CreateCollection(c *gin.Context) {
	var req services.CreateCollectionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating collection", "code", req.Code, "questions", len(req.Questions))

	resp, err := h.services.Collection().CreateCollection(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Collection created", resp)
}

// CreateQuestion adds a question to an existing collection
// @Summary Create question
// @Tags management
// @Accept json
// @Produce json
// @Param question body services.CreateQuestionRequest true "Question"
// @Success 201 {object} SuccessResponse{data=services.QuestionResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /management/questions [post]
func (h *ManagementHandler) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating question", "collection_id", req.CollectionID, "type", req.Type)

	resp, err := h.services.Question().CreateQuestion(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Question created", resp)
}

func (h *ManagementHandler) ListUserProgress(c *gin.Context) {
	resp, err := h.services.Progress().ListUserProgressGrouped(
		c.Request.Context(),
		parseIntQuery(c, "page", 1),
		parseIntQuery(c, "pageSize", 20),
	)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportProgress downloads every progress row as an Excel workbook
// @Summary Export progress
// @Tags management
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /management/progress/export [get]
func (h *ManagementHandler) ExportProgress(c *gin.Context) {
	h.LogRequest(c, "Exporting progress")

	data, err := h.services.Export().ExportProgress(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("progress-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// RecomputeProgress rebuilds one user's progress row in a collection
// @Summary Recompute progress
// @Tags management
// @Produce json
// @Param userId path string true "User ID"
// @Param collectionId path uint true "Collection ID"
// @Success 200 {object} services.ProgressResponse
// @Router /management/progress/{userId}/collections/{collectionId}/recompute [post]
func (h *ManagementHandler) RecomputeProgress(c *gin.Context) {
	userID := ParseStringIDParam(c, "userId")
	if userID == "" {
		return
	}
	collectionID, ok := h.parseIDParam(c, "collectionId")
	if !ok {
		return
	}

	h.LogRequest(c, "Recomputing progress", "target_user_id", userID, "collection_id", collectionID)

	resp, err := h.services.Progress().RecomputeProgress(c.Request.Context(), userID, collectionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
