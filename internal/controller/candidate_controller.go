package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"exam_admin_backend/internal/service"
	"exam_admin_backend/internal/util"
)

type CandidateController struct {
	CandidateService *service.CandidateService
}

func NewCandidateController(candidateService *service.CandidateService) *CandidateController {
	return &CandidateController{CandidateService: candidateService}
}

// @Summary Register a candidate
// @Tags candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateCandidateRequest true "candidate payload"
// @Success 201 {object} util.Response
// @Router /api/admin/candidates [post]
func (c *CandidateController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.CreateCandidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	candidate, err := c.CandidateService.CreateCandidate(req, claims.Email)
	if err != nil {
		if errors.Is(err, util.ErrNationalIDTaken) {
			util.Error(ctx, http.StatusConflict, err.Error())
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, candidate)
}

// @Summary Get a candidate
// @Tags candidates
// @Produce json
// @Security BearerAuth
// @Param id path string true "candidate id"
// @Success 200 {object} util.Response
// @Router /api/admin/candidates/{id} [get]
func (c *CandidateController) Get(ctx *gin.Context) {
	candidate, err := c.CandidateService.GetCandidate(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrCandidateNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, candidate)
}

// @Summary List candidates
// @Tags candidates
// @Produce json
// @Security BearerAuth
// @Param page query int false "page"
// @Param limit query int false "limit"
// @Param search query string false "match on national id or names"
// @Success 200 {object} util.Response
// @Router /api/admin/candidates [get]
func (c *CandidateController) List(ctx *gin.Context) {
	page, limit := pagination(ctx)
	search := ctx.Query("search")
	cs, total, err := c.CandidateService.ListCandidates(page, limit, search)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: cs, Total: total, Page: page, Limit: limit})
}

// @Summary Update a candidate
// @Tags candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "candidate id"
// @Param body body service.UpdateCandidateRequest true "fields to change"
// @Success 200 {object} util.Response
// @Router /api/admin/candidates/{id} [put]
func (c *CandidateController) Update(ctx *gin.Context) {
	var req service.UpdateCandidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	candidate, err := c.CandidateService.UpdateCandidate(ctx.Param("id"), req)
	if err != nil {
		if errors.Is(err, util.ErrCandidateNotFound) {
			util.NotFound(ctx)
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, candidate)
}

// @Summary Delete a candidate
// @Tags candidates
// @Produce json
// @Security BearerAuth
// @Param id path string true "candidate id"
// @Success 200 {object} util.Response
// @Router /api/admin/candidates/{id} [delete]
func (c *CandidateController) Delete(ctx *gin.Context) {
	if err := c.CandidateService.DeleteCandidate(ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrCandidateNotFound) {
			util.NotFound(ctx)
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary List a candidate's grades
// @Tags candidates
// @Produce json
// @Security BearerAuth
// @Param id path string true "candidate id"
// @Success 200 {object} util.Response
// @Router /api/admin/candidates/{id}/grades [get]
func (c *CandidateController) Grades(ctx *gin.Context) {
	grades, err := c.CandidateService.GetCandidateGrades(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrCandidateNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, grades)
}
