package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 支持的存储后端类型
const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreMySQL     = "mysql"
	StoreRedis     = "redis"
	StoreMemory    = "memory"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host string // 监听地址，默认 "0.0.0.0"
	Port int    // 监听端口，默认 8000
}

// MailConfig 定义通知邮件的发件人凭证与收件人
//
// 三个字段在启动时均可为空，缺失只会在处理表单请求时被发现。
type MailConfig struct {
	SenderEmail    string // SENDER_EMAIL
	SenderPassword string // SENDER_PASSWORD
	RecipientEmail string // RECIPIENT_EMAIL
}

// Complete 报告三个邮件配置项是否全部存在
func (m MailConfig) Complete() bool {
	return m.SenderEmail != "" && m.SenderPassword != "" && m.RecipientEmail != ""
}

// SMTPConfig 定义外部邮件中继的地址（隐式 TLS）
type SMTPConfig struct {
	Host string // 中继主机，默认 "smtp.gmail.com"
	Port int    // 中继端口，默认 465
}

// Addr 返回 "host:port" 形式的中继地址
func (s SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
	File        string // 日志文件路径，留空则只输出到标准输出
}

// StoreConfig 定义提交记录的文档存储后端
type StoreConfig struct {
	Type string // firestore / postgres / mysql / redis / memory
}

// FirestoreConfig 定义 Firestore 客户端的服务账号凭证
type FirestoreConfig struct {
	CredentialsFile string // 服务账号 JSON 文件路径
	ProjectID       string // 留空时从凭证文件中检测
}

// DatabaseConfig 定义 SQL 数据库连接配置（postgres 与 mysql 后端共用）
type DatabaseConfig struct {
	DSN             string        // 数据库连接字符串
	MaxOpenConns    int           // 最大打开连接数，默认 10
	MaxIdleConns    int           // 最大空闲连接数，默认 2
	ConnMaxLifetime time.Duration // 连接最大生命周期，默认 5 分钟
}

// RedisConfig 定义 Redis 服务配置
type RedisConfig struct {
	Address  string // Redis 服务地址，格式 "host:port"，默认 "localhost:6379"
	Password string // Redis 认证密码，留空表示无密码
	DB       int    // Redis 数据库编号，默认 0
}

// Config 是系统核心配置的根结构体，启动后只读
type Config struct {
	Server    ServerConfig
	Mail      MailConfig
	SMTP      SMTPConfig
	CORS      CORSConfig
	Log       LogConfig
	Store     StoreConfig
	Firestore FirestoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
}

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 邮件凭证使用无前缀的 SENDER_EMAIL / SENDER_PASSWORD / RECIPIENT_EMAIL，
// 其余配置使用 LOGICLEAFS_ 前缀，例如 LOGICLEAFS_SERVER_PORT。
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetEnvPrefix("logicleafs")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 邮件凭证保持原有的环境变量名
	_ = v.BindEnv("mail.sender_email", "SENDER_EMAIL")
	_ = v.BindEnv("mail.sender_password", "SENDER_PASSWORD")
	_ = v.BindEnv("mail.recipient_email", "RECIPIENT_EMAIL")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 465)
	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.file", "")
	v.SetDefault("store.type", StoreFirestore)
	v.SetDefault("firestore.credentials_file", "firebase-credentials.json")
	v.SetDefault("firestore.project_id", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	storeType := strings.ToLower(strings.TrimSpace(v.GetString("store.type")))
	switch storeType {
	case StoreFirestore, StorePostgres, StoreMySQL, StoreRedis, StoreMemory:
	default:
		return nil, fmt.Errorf("invalid store.type %q (supported: firestore, postgres, mysql, redis, memory)", storeType)
	}

	connMaxLifetime, err := time.ParseDuration(v.GetString("database.conn_max_lifetime"))
	if err != nil {
		return nil, fmt.Errorf("invalid database.conn_max_lifetime: %w", err)
	}

	smtpPort := v.GetInt("smtp.port")
	if smtpPort <= 0 {
		return nil, fmt.Errorf("invalid smtp.port: %d", smtpPort)
	}

	corsOrigins := parseList(v.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		Mail: MailConfig{
			SenderEmail:    v.GetString("mail.sender_email"),
			SenderPassword: v.GetString("mail.sender_password"),
			RecipientEmail: v.GetString("mail.recipient_email"),
		},
		SMTP: SMTPConfig{
			Host: v.GetString("smtp.host"),
			Port: smtpPort,
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
			File:        v.GetString("log.file"),
		},
		Store: StoreConfig{
			Type: storeType,
		},
		Firestore: FirestoreConfig{
			CredentialsFile: v.GetString("firestore.credentials_file"),
			ProjectID:       v.GetString("firestore.project_id"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}

	return cfg, nil
}

// parseList 将逗号分隔的字符串解析为字符串切片，已去除空白字符
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件
//
// 加载顺序：
//  1. 当前目录的 .env
//  2. 父目录的 .env
//
// 文件不存在时静默跳过，已存在的环境变量不会被覆盖。
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
