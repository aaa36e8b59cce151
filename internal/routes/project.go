package routes

import (
	"net/http"

	"Wildfund/internal/contracts"
	"Wildfund/internal/domain/project"
	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateProject(c *gin.Context) {
	var body contracts.ProjectCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, appErrors.ParseValidationErrors(err))
		return
	}

	ownerID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	req := project.CreateRequest{
		OwnerId:     ownerID,
		Title:       body.Title,
		Description: body.Description,
		FundingGoal: body.FundingGoal,
	}

	ctx := c.Request.Context()
	entity, err := h.ProjectService.CreateProject(ctx, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.ProjectResponse{Project: entity})
}

func (h *Handler) ListProjects(c *gin.Context) {
	filters := &project.Filters{}
	if raw := c.Query("status"); raw != "" {
		status := project.Status(raw)
		if !status.IsValid() {
			h.respondError(c, appErrors.NewValidationError("status", "inválido"))
			return
		}
		filters.Status = &status
	}
	if raw := c.Query("owner_id"); raw != "" {
		ownerID, err := pkg.ParseULID(raw)
		if err != nil {
			h.respondError(c, appErrors.NewValidationError("owner_id", "formato inválido"))
			return
		}
		filters.OwnerId = &ownerID
	}

	pagination := h.parsePagination(c)

	ctx := c.Request.Context()
	projects, total, err := h.ProjectService.ListProjects(ctx, filters, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(projects, pagination.Page, pagination.Limit, total))
}

func (h *Handler) GetProject(c *gin.Context) {
	projectID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	entity, err := h.ProjectService.GetProject(ctx, projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.ProjectResponse{Project: entity})
}

func (h *Handler) UpdateProject(c *gin.Context) {
	var body contracts.ProjectUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, appErrors.ParseValidationErrors(err))
		return
	}

	ownerID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	projectID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	req := project.UpdateRequest{
		Id:          projectID,
		OwnerId:     ownerID,
		Title:       body.Title,
		Description: body.Description,
		FundingGoal: body.FundingGoal,
	}

	ctx := c.Request.Context()
	entity, err := h.ProjectService.UpdateProject(ctx, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.ProjectResponse{Project: entity})
}

func (h *Handler) CompleteProject(c *gin.Context) {
	ownerID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	projectID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	entity, err := h.ProjectService.CompleteProject(ctx, projectID, ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.ProjectResponse{Project: entity})
}

// ListProjectDonations e restrito ao dono do projeto.
func (h *Handler) ListProjectDonations(c *gin.Context) {
	ownerID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	projectID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.ProjectService.GetOwnedProject(ctx, projectID, ownerID); err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	donations, total, err := h.DonationRepository.ListByProject(ctx, projectID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]*contracts.DonationListItem, 0, len(donations))
	for _, d := range donations {
		items = append(items, &contracts.DonationListItem{Donation: d, Anonymous: d.IsAnonymous()})
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination.Page, pagination.Limit, total))
}

func (h *Handler) GetProjectProgress(c *gin.Context) {
	projectID, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	progress, err := h.ProjectService.GetProgress(ctx, projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.ProjectProgressResponse{Progress: progress})
}
