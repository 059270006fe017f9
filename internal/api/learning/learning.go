package learning

import (
	"net/http"
	"strconv"

	"synacoding-backend/internal/errors"
	"synacoding-backend/internal/service"
	"synacoding-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LearningHandler struct {
	progressService   *service.ProgressService
	enrollmentService *service.EnrollmentService
}

func NewLearningHandler(
	progressService *service.ProgressService,
	enrollmentService *service.EnrollmentService,
) *LearningHandler {
	return &LearningHandler{progressService, enrollmentService}
}

// RecordLectureView 上报讲座观看进度
// 挂在可选认证路由下：匿名请求只能命中样例讲座
func (h *LearningHandler) RecordLectureView(c *gin.Context) {
	lectureID, err := strconv.Atoi(c.Param("lecture_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "Invalid lecture ID",
		})
		return
	}

	var input struct {
		ViewedSeconds int `json:"viewed_seconds"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.Logger.Error("无效的请求数据", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "Invalid input data",
			"details": err.Error(),
		})
		return
	}

	studentID := service.AnonymousViewer
	if userID, exists := c.Get("user_id"); exists {
		studentID = userID.(int)
	}

	if err := h.progressService.RecordLectureView(studentID, lectureID, input.ViewedSeconds); err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "Progress recorded",
	})
}

// GetCourseProgress 查询某课程的学习进度
func (h *LearningHandler) GetCourseProgress(c *gin.Context) {
	courseID, err := strconv.Atoi(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "Invalid course ID",
		})
		return
	}

	userID, _ := c.Get("user_id")

	enrollment, lectures, progress, err := h.progressService.GetCourseProgress(userID.(int), courseID)
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"enrollment": enrollment,
			"lectures":   lectures,
			"progress":   progress,
		},
	})
}

// GetLectureProgress 查询单讲观看进度（续播定位用）
func (h *LearningHandler) GetLectureProgress(c *gin.Context) {
	lectureID, err := strconv.Atoi(c.Param("lecture_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "Invalid lecture ID",
		})
		return
	}

	userID, _ := c.Get("user_id")

	progress, err := h.progressService.GetLectureProgress(userID.(int), lectureID)
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"progress": progress},
	})
}

// ListEnrollments 获取当前学生的选课列表
func (h *LearningHandler) ListEnrollments(c *gin.Context) {
	userID, _ := c.Get("user_id")

	enrollments, err := h.enrollmentService.ListEnrollments(userID.(int))
	if err != nil {
		c.Error(err)
		errors.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"enrollments": enrollments},
	})
}
