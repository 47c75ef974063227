package handler

import (
	"net/http"

	"rrhh/internal/middleware"
	"rrhh/internal/service"
	"rrhh/pkg/pagination"
	"rrhh/pkg/response"

	"github.com/gin-gonic/gin"
)

// DevelopmentHandler serves evaluations and trainings
type DevelopmentHandler struct {
	evaluations service.EvaluationService
	trainings   service.TrainingService
	guard       *middleware.Authenticator
}

func NewDevelopmentHandler(evaluations service.EvaluationService, trainings service.TrainingService, guard *middleware.Authenticator) *DevelopmentHandler {
	return &DevelopmentHandler{evaluations: evaluations, trainings: trainings, guard: guard}
}

func (h *DevelopmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	writers := h.guard.RequireRole(writerRoles...)

	evals := router.Group("/evaluaciones", h.guard.Authenticate())
	{
		evals.GET("", h.ListEvaluations)
		evals.GET("/:id", h.GetEvaluation)
		evals.POST("", writers, h.CreateEvaluation)
		evals.PUT("/:id", writers, h.UpdateEvaluation)
		evals.DELETE("/:id", writers, h.DeleteEvaluation)
	}

	trainings := router.Group("/capacitaciones", h.guard.Authenticate())
	{
		trainings.GET("", h.ListTrainings)
		trainings.GET("/:id", h.GetTraining)
		trainings.POST("", writers, h.CreateTraining)
		trainings.PUT("/:id", writers, h.UpdateTraining)
		trainings.DELETE("/:id", writers, h.DeleteTraining)
	}
}

// CreateEvaluation handles POST /evaluaciones
// @Summary      Create evaluation
// @Description  puntuacion ranges from 0 to 100
// @Tags         evaluaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateEvaluationRequest  true  "Evaluation"
// @Success      201      {object}  response.Response{data=model.Evaluation}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/evaluaciones [post]
func (h *DevelopmentHandler) CreateEvaluation(c *gin.Context) {
	var req service.CreateEvaluationRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.evaluations.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, e))
}

// ListEvaluations handles GET /evaluaciones
// @Summary      List evaluations
// @Tags         evaluaciones
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/evaluaciones [get]
func (h *DevelopmentHandler) ListEvaluations(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.evaluations.List(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, p.Page, p.Limit))
}

// GetEvaluation handles GET /evaluaciones/:id
// @Summary      Get evaluation
// @Tags         evaluaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Evaluation ID"
// @Success      200  {object}  response.Response{data=model.Evaluation}
// @Failure      404  {object}  response.Response
// @Router       /api/evaluaciones/{id} [get]
func (h *DevelopmentHandler) GetEvaluation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	e, err := h.evaluations.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, e))
}

// UpdateEvaluation handles PUT /evaluaciones/:id
// @Summary      Update evaluation
// @Tags         evaluaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                              true  "Evaluation ID"
// @Param        payload  body      service.UpdateEvaluationRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Evaluation}
// @Failure      404      {object}  response.Response
// @Router       /api/evaluaciones/{id} [put]
func (h *DevelopmentHandler) UpdateEvaluation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateEvaluationRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.evaluations.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, e))
}

// DeleteEvaluation handles DELETE /evaluaciones/:id
// @Summary      Delete evaluation
// @Tags         evaluaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Evaluation ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/evaluaciones/{id} [delete]
func (h *DevelopmentHandler) DeleteEvaluation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.evaluations.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, deleted, "evaluacion", id)
}

// CreateTraining handles POST /capacitaciones
// @Summary      Create training
// @Tags         capacitaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTrainingRequest  true  "Training"
// @Success      201      {object}  response.Response{data=model.Training}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/capacitaciones [post]
func (h *DevelopmentHandler) CreateTraining(c *gin.Context) {
	var req service.CreateTrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.trainings.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, t))
}

// ListTrainings handles GET /capacitaciones
// @Summary      List trainings
// @Tags         capacitaciones
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/capacitaciones [get]
func (h *DevelopmentHandler) ListTrainings(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.trainings.List(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, p.Page, p.Limit))
}

// GetTraining handles GET /capacitaciones/:id
// @Summary      Get training
// @Tags         capacitaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Training ID"
// @Success      200  {object}  response.Response{data=model.Training}
// @Failure      404  {object}  response.Response
// @Router       /api/capacitaciones/{id} [get]
func (h *DevelopmentHandler) GetTraining(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.trainings.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, t))
}

// UpdateTraining handles PUT /capacitaciones/:id
// @Summary      Update training
// @Tags         capacitaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                            true  "Training ID"
// @Param        payload  body      service.UpdateTrainingRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Training}
// @Failure      404      {object}  response.Response
// @Router       /api/capacitaciones/{id} [put]
func (h *DevelopmentHandler) UpdateTraining(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateTrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.trainings.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, t))
}

// DeleteTraining handles DELETE /capacitaciones/:id
// @Summary      Delete training
// @Tags         capacitaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Training ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/capacitaciones/{id} [delete]
func (h *DevelopmentHandler) DeleteTraining(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.trainings.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, deleted, "capacitacion", id)
}
