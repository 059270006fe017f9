package config

import (
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config 结构体用于存储应用程序的配置信息
type Config struct {
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	JWTSecret    string
	LogLevel     string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FrontendURL  string
	BackendURL   string

	// 业务策略配置（显式配置对象，避免散落在代码中的魔法数字）
	RefundWindowDays    int     // 全额退款窗口（天）
	LectureCompleteRate float64 // 讲座完成判定比例（已观看时长/总时长）
	ReviewRewardPoint   float64 // 撰写评价奖励的积分金额
	RewardSweepSpec     string  // 过期奖励清理的 cron 表达式

	GatewayMode string // 支付网关模式：sandbox / live
	Debug       bool   // 是否开启调试模式
}

// AppConfig 是全局配置变量
var AppConfig Config

// Init 函数用于初始化配置
func Init() {
	// 加载 .env 文件
	err := godotenv.Load()
	if err != nil {
		log.Printf("警告：无法加载 .env 文件: %v", err)
	}

	// 从环境变量中读取配置
	AppConfig = Config{
		DBHost:       getEnv("DB_HOST", ""),
		DBPort:       getEnv("DB_PORT", ""),
		DBUser:       getEnv("DB_USER", ""),
		DBPassword:   getEnv("DB_PASSWORD", ""),
		DBName:       getEnv("DB_NAME", ""),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 465),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:5173"),
		BackendURL:   getEnv("BACKEND_URL", "http://localhost:8080"),

		RefundWindowDays:    getEnvAsInt("REFUND_WINDOW_DAYS", 7),
		LectureCompleteRate: getEnvAsFloat("LECTURE_COMPLETE_RATE", 0.95),
		ReviewRewardPoint:   getEnvAsFloat("REVIEW_REWARD_POINT", 500),
		RewardSweepSpec:     getEnv("REWARD_SWEEP_SPEC", "0 3 * * *"),

		GatewayMode: getEnv("GATEWAY_MODE", "sandbox"),
		Debug:       getEnvAsBool("DEBUG", true),
	}

	validateConfig()

	if AppConfig.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("应用程序运行在调试模式")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("应用程序运行在生产模式")
	}

	log.Printf("配置加载完成。数据库：%s:%s", AppConfig.DBHost, AppConfig.DBPort)
	log.Printf("退款窗口：%d 天，讲座完成比例：%.2f", AppConfig.RefundWindowDays, AppConfig.LectureCompleteRate)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func validateConfig() {
	if AppConfig.DBHost == "" || AppConfig.DBPort == "" || AppConfig.DBUser == "" || AppConfig.DBPassword == "" || AppConfig.DBName == "" {
		log.Fatal("错误：数据库配置不完整")
	}
	if AppConfig.JWTSecret == "" {
		log.Fatal("错误：JWT密钥未设置")
	}
	if AppConfig.RefundWindowDays <= 0 {
		log.Fatal("错误：退款窗口必须大于0")
	}
	if AppConfig.LectureCompleteRate <= 0 || AppConfig.LectureCompleteRate > 1 {
		log.Fatal("错误：讲座完成比例必须在 (0, 1] 范围内")
	}
}
