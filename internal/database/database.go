package database

import (
	"context"
	"fmt"
	"time"

	"github.com/caseops/caseflow-gin/internal/config"
	"github.com/caseops/caseflow-gin/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// GetPoolConfig 获取默认连接池配置
func GetPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 600,  // 10 分钟
	}
}

// Connect 连接数据库
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 从配置中读取连接池参数，如果没有配置则使用默认值
	poolConfig := GetPoolConfig()
	if cfg.MaxIdleConns > 0 {
		poolConfig.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.ConnMaxLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.ConnMaxIdleTime = cfg.ConnMaxIdleTime
	}

	sqlDB.SetMaxIdleConns(poolConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(poolConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(poolConfig.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(poolConfig.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	// 检测数据库类型
	dialector := db.Dialector.Name()

	// SQLite 不支持 jsonb，需要手动创建表
	// GORM SQLite dialector 的名称可能是 "sqlite" 或 "sqlite3"
	if dialector == "sqlite" || dialector == "sqlite3" {
		// 手动创建 SQLite 表（使用 TEXT 替代 jsonb）
		if err := createSQLiteTables(db); err != nil {
			return fmt.Errorf("failed to create SQLite tables: %w", err)
		}
	} else {
		// PostgreSQL 等其他数据库使用 AutoMigrate
		if err := db.AutoMigrate(
			&model.WorkflowDefinitionModel{},
			&model.WorkflowInstanceModel{},
			&model.WorkflowProcessModel{},
			&model.ContractModel{},
			&model.CaseModel{},
			&model.PaymentRequestModel{},
			&model.StatusHistoryModel{},
			&model.EventModel{},
			&model.AuditLogModel{},
		); err != nil {
			return fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	// 创建索引
	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createSQLiteTables 为 SQLite 手动创建表（使用 TEXT 替代 jsonb）
func createSQLiteTables(db *gorm.DB) error {
	// 创建 workflow_definitions 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_definitions (
			id VARCHAR(64) PRIMARY KEY,
			code VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			business_type VARCHAR(32) NOT NULL,
			nodes TEXT NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT 1,
			created_by VARCHAR(64),
			updated_by VARCHAR(64),
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create workflow_definitions table: %w", err)
	}

	// 创建 workflow_instances 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_instances (
			id VARCHAR(64) PRIMARY KEY,
			definition_id VARCHAR(64) NOT NULL,
			definition_code VARCHAR(64) NOT NULL,
			business_type VARCHAR(32) NOT NULL,
			business_id VARCHAR(64) NOT NULL,
			current_node INTEGER NOT NULL DEFAULT 0,
			status VARCHAR(32) NOT NULL,
			params TEXT,
			created_by VARCHAR(64),
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create workflow_instances table: %w", err)
	}

	// 创建 workflow_processes 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_processes (
			id VARCHAR(64) PRIMARY KEY,
			instance_id VARCHAR(64) NOT NULL,
			node_index INTEGER NOT NULL,
			node_name VARCHAR(255),
			assignee VARCHAR(64) NOT NULL,
			processor VARCHAR(64),
			action VARCHAR(32) NOT NULL,
			comment TEXT,
			superseded BOOLEAN NOT NULL DEFAULT 0,
			processed_at DATETIME,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create workflow_processes table: %w", err)
	}

	// 创建 contracts 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS contracts (
			id VARCHAR(64) PRIMARY KEY,
			no VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			owner_id VARCHAR(64),
			amount NUMERIC NOT NULL DEFAULT 0,
			status VARCHAR(32) NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create contracts table: %w", err)
	}

	// 创建 cases 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cases (
			id VARCHAR(64) PRIMARY KEY,
			contract_id VARCHAR(64),
			name VARCHAR(255) NOT NULL,
			case_type VARCHAR(32) NOT NULL,
			status VARCHAR(32) NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create cases table: %w", err)
	}

	// 创建 payment_requests 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS payment_requests (
			id VARCHAR(64) PRIMARY KEY,
			contract_id VARCHAR(64),
			amount NUMERIC NOT NULL,
			reason TEXT,
			status VARCHAR(32) NOT NULL,
			created_by VARCHAR(64),
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create payment_requests table: %w", err)
	}

	// 创建 status_history 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS status_history (
			id VARCHAR(64) PRIMARY KEY,
			instance_id VARCHAR(64) NOT NULL,
			from_status VARCHAR(32),
			to_status VARCHAR(32) NOT NULL,
			reason TEXT,
			operator VARCHAR(64) NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create status_history table: %w", err)
	}

	// 创建 events 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id VARCHAR(64) PRIMARY KEY,
			instance_id VARCHAR(64) NOT NULL,
			type VARCHAR(32) NOT NULL,
			data TEXT NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'pending',
			retry_count INTEGER DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	// 创建 audit_logs 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_logs (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			action VARCHAR(64) NOT NULL,
			resource_type VARCHAR(32) NOT NULL,
			resource_id VARCHAR(64) NOT NULL,
			request_id VARCHAR(64),
			ip VARCHAR(45),
			user_agent TEXT,
			details TEXT,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create audit_logs table: %w", err)
	}

	return nil
}

// CreateIndexes 创建数据库索引
func CreateIndexes(db *gorm.DB) error {
	// 检测数据库类型
	dialector := db.Dialector.Name()

	// workflow_definitions 表索引
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_definitions_code ON workflow_definitions(code)").Error; err != nil {
		return fmt.Errorf("failed to create idx_definitions_code: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_definitions_business_type ON workflow_definitions(business_type)").Error; err != nil {
		return fmt.Errorf("failed to create idx_definitions_business_type: %w", err)
	}

	// workflow_instances 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_instance_business ON workflow_instances(business_type, business_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_instance_business: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_instances_status ON workflow_instances(status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_instances_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_instances_created_by ON workflow_instances(created_by)").Error; err != nil {
		return fmt.Errorf("failed to create idx_instances_created_by: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_instances_created_at ON workflow_instances(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_instances_created_at: %w", err)
	}

	// workflow_processes 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_processes_instance_id ON workflow_processes(instance_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_processes_instance_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_processes_assignee ON workflow_processes(assignee, action)").Error; err != nil {
		return fmt.Errorf("failed to create idx_processes_assignee: %w", err)
	}

	// status_history 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_history_instance_id ON status_history(instance_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_history_instance_id: %w", err)
	}

	// events 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_status ON events(status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_events_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_instance_id ON events(instance_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_events_instance_id: %w", err)
	}

	// audit_logs 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_logs(resource_type, resource_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_resource: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_user_id ON audit_logs(user_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_user_id: %w", err)
	}

	// PostgreSQL 特定的 GIN 索引
	if dialector == "postgres" {
		// JSONB 字段的 GIN 索引
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_definitions_nodes_gin ON workflow_definitions USING GIN (nodes)").Error; err != nil {
			return fmt.Errorf("failed to create idx_definitions_nodes_gin: %w", err)
		}
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_instances_params_gin ON workflow_instances USING GIN (params)").Error; err != nil {
			return fmt.Errorf("failed to create idx_instances_params_gin: %w", err)
		}
	}

	return nil
}

// ConnectWithRetry 带重试的数据库连接
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		// 如果不是最后一次重试，等待后重试
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2 // 指数退避
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return false
	}

	return true
}

// Reconnect 重新连接数据库
func Reconnect(cfg config.DatabaseConfig, oldDB *gorm.DB) (*gorm.DB, error) {
	// 关闭旧连接
	if oldDB != nil {
		if sqlDB, err := oldDB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	// 重新连接
	return Connect(cfg)
}
