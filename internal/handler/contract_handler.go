package handler

import (
	"net/http"

	"rrhh/internal/middleware"
	"rrhh/internal/service"
	"rrhh/pkg/pagination"
	"rrhh/pkg/response"

	"github.com/gin-gonic/gin"
)

type ContractHandler struct {
	contracts service.ContractService
	guard     *middleware.Authenticator
}

func NewContractHandler(contracts service.ContractService, guard *middleware.Authenticator) *ContractHandler {
	return &ContractHandler{contracts: contracts, guard: guard}
}

func (h *ContractHandler) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group("/contratos", h.guard.Authenticate())
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.POST("", h.guard.RequireRole(writerRoles...), h.Create)
		g.PUT("/:id", h.guard.RequireRole(writerRoles...), h.Update)
		g.DELETE("/:id", h.guard.RequireRole(writerRoles...), h.Delete)
	}
}

// Create handles POST /contratos
// @Summary      Create contract
// @Description  A new active contract finalizes the employee's previous active one
// @Tags         contratos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateContractRequest  true  "Contract"
// @Success      201      {object}  response.Response{data=model.Contract}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/contratos [post]
func (h *ContractHandler) Create(c *gin.Context) {
	var req service.CreateContractRequest
	if !bindJSON(c, &req) {
		return
	}
	contract, err := h.contracts.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, contract))
}

// List handles GET /contratos
// @Summary      List contracts
// @Tags         contratos
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Page size"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/contratos [get]
func (h *ContractHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.contracts.List(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, items, total, p.Page, p.Limit))
}

// Get handles GET /contratos/:id
// @Summary      Get contract
// @Tags         contratos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Contract ID"
// @Success      200  {object}  response.Response{data=model.Contract}
// @Failure      404  {object}  response.Response
// @Router       /api/contratos/{id} [get]
func (h *ContractHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	contract, err := h.contracts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// Update handles PUT /contratos/:id
// @Summary      Update contract
// @Tags         contratos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                            true  "Contract ID"
// @Param        payload  body      service.UpdateContractRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Contract}
// @Failure      404      {object}  response.Response
// @Router       /api/contratos/{id} [put]
func (h *ContractHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateContractRequest
	if !bindJSON(c, &req) {
		return
	}
	contract, err := h.contracts.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// Delete handles DELETE /contratos/:id
// @Summary      Delete contract
// @Tags         contratos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Contract ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/contratos/{id} [delete]
func (h *ContractHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.contracts.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondDeleted(c, deleted, "contrato", id)
}
