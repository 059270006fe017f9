package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"synacoding-backend/config"
	"synacoding-backend/internal/api/admin"
	"synacoding-backend/internal/api/learning"
	"synacoding-backend/internal/api/notification"
	"synacoding-backend/internal/api/order"
	"synacoding-backend/internal/api/reward"
	"synacoding-backend/internal/common"
	"synacoding-backend/internal/gateway"
	"synacoding-backend/internal/middleware"
	"synacoding-backend/internal/repository/mysql"
	"synacoding-backend/internal/service"
	"synacoding-backend/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 设置数据库连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName)

	// 连接数据库
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	// 测试数据库连接
	if err = db.Ping(); err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("future_date", util.ValidateFutureDate)
	}

	// 初始化存储库
	txRunner := mysql.NewTxRunner(db)
	userRepo := mysql.NewUserRepository(db)
	courseRepo := mysql.NewCourseRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	rewardRepo := mysql.NewRewardRepository(db)
	enrollmentRepo := mysql.NewEnrollmentRepository(db)
	notificationRepo := mysql.NewNotificationRepository(db)
	statsRepo := mysql.NewStatsRepository(db)

	// 支付网关：sandbox 模式不发起真实扣款
	var paymentGateway gateway.PaymentGateway
	switch config.AppConfig.GatewayMode {
	case "sandbox":
		paymentGateway = gateway.NewSandboxGateway()
	default:
		util.Logger.Fatal("不支持的支付网关模式", zap.String("mode", config.AppConfig.GatewayMode))
	}

	// 初始化服务
	notificationService := service.NewNotificationService(notificationRepo, userRepo)
	rewardService := service.NewRewardService(rewardRepo)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, userRepo)
	orderService := service.NewOrderService(
		orderRepo,
		courseRepo,
		userRepo,
		txRunner,
		paymentGateway,
		rewardService,
		enrollmentService,
		notificationService,
	)
	progressService := service.NewProgressService(
		enrollmentRepo,
		courseRepo,
		txRunner,
		enrollmentService,
		config.AppConfig.LectureCompleteRate,
	)
	refundService := service.NewRefundService(
		orderRepo,
		userRepo,
		enrollmentRepo,
		txRunner,
		notificationService,
		config.AppConfig.RefundWindowDays,
	)
	statsService := service.NewStatsService(statsRepo)

	// 初始化处理器
	orderHandler := order.NewOrderHandler(orderService)
	refundHandler := order.NewRefundHandler(refundService)
	learningHandler := learning.NewLearningHandler(progressService, enrollmentService)
	rewardHandler := reward.NewRewardHandler(rewardService)
	notificationHandler := notification.NewNotificationHandler(notificationService)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()
	dashboardHandler := admin.NewDashboardHandler(statsService, errorMonitor)

	// 启动定时任务清理过期奖励
	sweeper := cron.New()
	_, err = sweeper.AddFunc(config.AppConfig.RewardSweepSpec, func() {
		util.Logger.Info("开始清理过期奖励")
		err := common.WithRetryAlways(func() error {
			_, err := rewardService.SweepExpired(time.Now())
			return err
		}, 3)
		if err != nil {
			util.Logger.Error("清理过期奖励失败", zap.Error(err))
		}
	})
	if err != nil {
		util.Logger.Fatal("注册定时任务失败", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	r.Use(cors.New(corsConfig))

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 讲座观看上报：样例讲座允许匿名，身份可选
		api.POST("/lectures/:lecture_id/view", middleware.OptionalAuthMiddleware(), learningHandler.RecordLectureView)

		// 需要认证的路由
		authorized := api.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			// 订单与支付
			authorized.POST("/orders", orderHandler.CreateOrder)
			authorized.GET("/orders", orderHandler.ListOrders)
			authorized.GET("/orders/:id", orderHandler.GetOrder)
			authorized.POST("/orders/:id/pay", orderHandler.ProcessPayment)

			// 退款
			authorized.POST("/payments/:payment_id/refund", refundHandler.RequestRefund)
			authorized.GET("/payments/:payment_id/refund", refundHandler.GetRefundStatus)

			// 学习进度
			authorized.GET("/enrollments", learningHandler.ListEnrollments)
			authorized.GET("/courses/:course_id/progress", learningHandler.GetCourseProgress)
			authorized.GET("/lectures/:lecture_id/progress", learningHandler.GetLectureProgress)

			// 奖励
			authorized.GET("/rewards", rewardHandler.ListMyRewards)
			authorized.GET("/rewards/:id", rewardHandler.GetReward)

			// 通知
			authorized.GET("/notifications", notificationHandler.ListNotifications)
		}

		// 管理员路由组
		adminRoutes := api.Group("/admin")
		adminRoutes.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
		{
			adminRoutes.POST("/rewards", rewardHandler.GrantReward)
			adminRoutes.POST("/rewards/review-bonus", rewardHandler.GrantReviewBonus)
			adminRoutes.GET("/stats/revenue", dashboardHandler.GetRevenue)
			adminRoutes.GET("/stats/popular-courses", dashboardHandler.GetPopularCourses)
			adminRoutes.GET("/stats/errors", dashboardHandler.GetErrorStats)
			adminRoutes.GET("/refunds", dashboardHandler.ListRefunds)
		}
	}

	// 创建 http.Server 以支持优雅关闭
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动，监听端口 :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}
