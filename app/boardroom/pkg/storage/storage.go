package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/iWorld-y/boardroom/app/boardroom/pkg/config"
	"github.com/iWorld-y/boardroom/app/boardroom/pkg/model"
)

// Storage 会议记录归档
type Storage struct {
	db *sql.DB
}

// NewStorage 按配置打开数据库并建表
func NewStorage(cfg config.DBConfig) (*Storage, error) {
	return Open(cfg.Driver, cfg.DSN())
}

// Open driver 为 postgres 或 sqlite
func Open(driver, dsn string) (*Storage, error) {
	switch driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if driver == "sqlite" {
		// 内存库每个连接各自独立
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS meeting_logs (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			cfo_report TEXT,
			coo_report TEXT,
			ceo_report TEXT,
			risk_score INTEGER,
			chart_json TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_meeting_logs_created_at ON meeting_logs (created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}
	return nil
}

// SaveMeetingLog 写入一条归档记录，同一 ID 重复写入时忽略
func (s *Storage) SaveMeetingLog(ctx context.Context, log model.MeetingLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meeting_logs (id, query, cfo_report, coo_report, ceo_report, risk_score, chart_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		log.ID,
		sanitize(log.Query),
		sanitize(log.Reports.CFO),
		sanitize(log.Reports.COO),
		sanitize(log.Reports.CEO),
		log.RiskScore,
		sanitize(log.ChartJSON),
		log.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert meeting log: %w", err)
	}
	return nil
}

// ListMeetingLogs 按时间先后返回最近 limit 条记录，limit <= 0 表示全部
func (s *Storage) ListMeetingLogs(ctx context.Context, limit int) ([]model.MeetingLog, error) {
	query := `SELECT id, query, cfo_report, coo_report, ceo_report, risk_score, chart_json, created_at
		FROM meeting_logs ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meeting logs: %w", err)
	}
	defer rows.Close()

	var logs []model.MeetingLog
	for rows.Next() {
		var (
			l                  model.MeetingLog
			cfo, coo, ceo, raw sql.NullString
			score              sql.NullInt64
			created            time.Time
		)
		if err := rows.Scan(&l.ID, &l.Query, &cfo, &coo, &ceo, &score, &raw, &created); err != nil {
			return nil, fmt.Errorf("failed to scan meeting log: %w", err)
		}
		l.Reports = model.Report{CFO: cfo.String, COO: coo.String, CEO: ceo.String}
		l.RiskScore = int(score.Int64)
		l.ChartJSON = raw.String
		l.CreatedAt = created
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 倒序取最近的，再翻转为时间先后
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

// sanitize 移除无效的 UTF-8 字符与 NULL 字节，PostgreSQL 文本字段不接受这两者
func sanitize(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r == utf8.RuneError {
				continue
			}
			v = append(v, r)
		}
		s = string(v)
	}
	return removeNullBytes(s)
}

func removeNullBytes(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
