package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"exam_admin_backend/internal/service"
	"exam_admin_backend/internal/util"
	"exam_admin_backend/pkg/logger"
)

type GradeController struct {
	GradeService  *service.GradeService
	ImportService *service.GradeImportService
}

func NewGradeController(gradeService *service.GradeService, importService *service.GradeImportService) *GradeController {
	return &GradeController{GradeService: gradeService, ImportService: importService}
}

// @Summary Get a grade
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param id path string true "grade id"
// @Success 200 {object} util.Response
// @Router /api/admin/grades/{id} [get]
func (c *GradeController) Get(ctx *gin.Context) {
	g, err := c.GradeService.GetGrade(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrGradeNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, g)
}

// @Summary List an exam's grades ranked by final score
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param page query int false "page"
// @Param limit query int false "limit"
// @Success 200 {object} util.Response
// @Router /api/admin/exams/{id}/grades [get]
func (c *GradeController) ListByExam(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	page, limit := pagination(ctx)
	gs, total, err := c.GradeService.ListExamGrades(uint(id), page, limit)
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: gs, Total: total, Page: page, Limit: limit})
}

// @Summary Delete a grade
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param id path string true "grade id"
// @Success 200 {object} util.Response
// @Router /api/admin/grades/{id} [delete]
func (c *GradeController) Delete(ctx *gin.Context) {
	if err := c.GradeService.DeleteGrade(ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrGradeNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary Bulk import answer sheets for an exam
// @Tags grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "exam id"
// @Param body body object true "records: answer sheets with candidate data"
// @Success 200 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/admin/exams/{id}/grades/import [post]
func (c *GradeController) Import(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}
	var body struct {
		Records []service.ImportRecord `json:"records" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result := c.ImportService.RunImport(ctx.Request.Context(), uint(id), body.Records, claims.Email,
		func(ev service.ProgressEvent) {
			logger.Log.Debug("import progress",
				zap.String("stage", ev.Stage),
				zap.Int("current", ev.Current),
				zap.Int("total", ev.Total))
		})

	status := http.StatusOK
	message := "import completed"
	if !result.Success {
		status = http.StatusUnprocessableEntity
		message = "import failed"
	}
	if len(result.Errors) > 0 {
		message = fmt.Sprintf("%s: %s", message, summarizeErrors(result.Errors, 5))
	}

	ctx.JSON(status, util.Response{
		Code:    status,
		Message: message,
		Data:    result,
	})
}

// summarizeErrors joins the first few error strings and counts the rest.
func summarizeErrors(errs []string, max int) string {
	if len(errs) <= max {
		return strings.Join(errs, "; ")
	}
	return fmt.Sprintf("%s; +%d more", strings.Join(errs[:max], "; "), len(errs)-max)
}
