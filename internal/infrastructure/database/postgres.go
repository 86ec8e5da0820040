package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// PostgresConfig POI参照データを持つPostgreSQLへの接続設定
type PostgresConfig struct {
	// DSN が指定されていればそのまま使う
	DSN string
	// DSN がない場合は Supabase のプロジェクトURLとDBパスワードから接続文字列を組み立てる
	SupabaseURL string
	Password    string
}

// PostgreSQLClient PostgreSQL直接接続クライアント
type PostgreSQLClient struct {
	DB *sql.DB
}

// NewPostgreSQLClient 新しいPostgreSQLクライアントを作成し、接続を確認する
func NewPostgreSQLClient(ctx context.Context, cfg PostgresConfig) (*PostgreSQLClient, error) {
	connStr, err := cfg.connectionString()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL接続の初期化に失敗: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("PostgreSQLへの接続に失敗: %w", err)
	}

	log.Printf("✅ PostgreSQLに接続しました")
	return &PostgreSQLClient{DB: db}, nil
}

func (c PostgresConfig) connectionString() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	if c.SupabaseURL == "" {
		return "", fmt.Errorf("SUPABASE_URL環境変数が設定されていません")
	}
	if c.Password == "" {
		return "", fmt.Errorf("SUPABASE_DB_PASSWORD環境変数が設定されていません")
	}

	// https://xxx.supabase.co -> xxx.supabase.co
	host := strings.TrimPrefix(strings.TrimPrefix(c.SupabaseURL, "https://"), "http://")
	host = strings.TrimRight(host, "/")

	return fmt.Sprintf(
		"host=db.%s port=6543 user=postgres password=%s dbname=postgres sslmode=require",
		host, c.Password,
	), nil
}

// Close データベース接続を閉じる
func (pc *PostgreSQLClient) Close() error {
	if pc.DB != nil {
		return pc.DB.Close()
	}
	return nil
}

// HealthCheck データベース接続のヘルスチェック
func (pc *PostgreSQLClient) HealthCheck(ctx context.Context) error {
	if pc.DB == nil {
		return fmt.Errorf("PostgreSQLクライアントが初期化されていません")
	}
	return pc.DB.PingContext(ctx)
}
