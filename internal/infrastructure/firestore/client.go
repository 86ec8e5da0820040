package firestore

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// FirestoreClient 検索結果キャッシュ用のFirestoreクライアント
type FirestoreClient struct {
	client *firestore.Client
}

// NewFirestoreClient プロジェクトIDからクライアントを作成する
// credentialsFile が存在すればそれを使い、なければデフォルト認証（Cloud Run / gcloud）を使う
func NewFirestoreClient(ctx context.Context, projectID, credentialsFile string) (*FirestoreClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_ID環境変数が設定されていません")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			log.Printf("⚠️ Credentials file not found: %s, trying with default authentication", credentialsFile)
		} else {
			log.Printf("📄 Using credentials file: %s", credentialsFile)
			opts = append(opts, option.WithCredentialsFile(credentialsFile))
		}
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	log.Printf("✅ Firestore client initialized for project: %s", projectID)

	return &FirestoreClient{client: client}, nil
}

func (fc *FirestoreClient) Close() error {
	return fc.client.Close()
}

func (fc *FirestoreClient) GetClient() *firestore.Client {
	return fc.client
}
