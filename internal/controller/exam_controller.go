package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"exam_admin_backend/internal/service"
	"exam_admin_backend/internal/util"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

func examID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		util.BadRequest(ctx, "invalid exam id")
		return 0, false
	}
	return uint(id), true
}

// @Summary Create an exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateExamRequest true "exam payload"
// @Success 201 {object} util.Response
// @Router /api/admin/exams [post]
func (c *ExamController) Create(ctx *gin.Context) {
	var req service.CreateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	exam, err := c.ExamService.CreateExam(req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, exam)
}

// @Summary Get an exam
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{id} [get]
func (c *ExamController) Get(ctx *gin.Context) {
	id, ok := examID(ctx)
	if !ok {
		return
	}
	exam, err := c.ExamService.GetExam(id)
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// @Summary List exams
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param page query int false "page"
// @Param limit query int false "limit"
// @Success 200 {object} util.Response
// @Router /api/admin/exams [get]
func (c *ExamController) List(ctx *gin.Context) {
	page, limit := pagination(ctx)
	exams, total, err := c.ExamService.ListExams(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: exams, Total: total, Page: page, Limit: limit})
}

// @Summary Update an exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param body body service.UpdateExamRequest true "fields to change"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{id} [put]
func (c *ExamController) Update(ctx *gin.Context) {
	id, ok := examID(ctx)
	if !ok {
		return
	}
	var req service.UpdateExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	exam, err := c.ExamService.UpdateExam(id, req)
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, exam)
}

// @Summary Delete an exam
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{id} [delete]
func (c *ExamController) Delete(ctx *gin.Context) {
	id, ok := examID(ctx)
	if !ok {
		return
	}
	if err := c.ExamService.DeleteExam(id); err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary Replace the exam's ordered composition
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param body body object true "questionIds in position order"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{id}/questions [put]
func (c *ExamController) ReplaceQuestions(ctx *gin.Context) {
	id, ok := examID(ctx)
	if !ok {
		return
	}
	var body struct {
		QuestionIDs []uint `json:"questionIds"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ExamService.ReplaceQuestions(id, body.QuestionIDs); err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"questionCount": len(body.QuestionIDs)})
}

// @Summary List the exam's composition in position order
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{id}/questions [get]
func (c *ExamController) ListQuestions(ctx *gin.Context) {
	id, ok := examID(ctx)
	if !ok {
		return
	}
	eqs, err := c.ExamService.ListQuestions(id)
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, eqs)
}

// @Summary Check whether the exam can accept a grade import
// @Tags exams
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{id}/import-eligibility [get]
func (c *ExamController) ImportEligibility(ctx *gin.Context) {
	id, ok := examID(ctx)
	if !ok {
		return
	}
	elig, err := c.ExamService.CheckImportEligibility(id)
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, elig)
}
