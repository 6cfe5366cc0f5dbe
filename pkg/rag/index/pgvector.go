package index

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// PassageEmbedding is one chunk row; Namespace isolates the rows of one RAG session.
type PassageEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Namespace      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Document       string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector"`
	ChunkIndex     int             `gorm:"default:0"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (PassageEmbedding) TableName() string {
	return "passage_embeddings"
}

// PgVectorIndex keeps chunks in Postgres and ranks them with pgvector cosine distance.
type PgVectorIndex struct {
	db        *gorm.DB
	namespace uuid.UUID
}

var _ VectorIndex = (*PgVectorIndex)(nil)

// Migrate creates the vector extension and the passage table.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return err
	}
	return db.AutoMigrate(&PassageEmbedding{})
}

// PgVectorBuilder returns a Builder that gives every RAG session its own namespace.
func PgVectorBuilder(db *gorm.DB) Builder {
	return func(ctx context.Context) (VectorIndex, error) {
		return &PgVectorIndex{db: db, namespace: uuid.New()}, nil
	}
}

func (p *PgVectorIndex) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	rows := make([]*PassageEmbedding, len(chunks))
	for i, c := range chunks {
		rows[i] = &PassageEmbedding{
			Id:             uuid.New(),
			Namespace:      p.namespace,
			Document:       c.Text,
			EmbeddingValue: pgvector.NewVector(c.Vector),
			ChunkIndex:     c.Index,
		}
	}
	return p.db.WithContext(ctx).CreateInBatches(rows, 100).Error
}

func (p *PgVectorIndex) Search(ctx context.Context, vector []float32, k int) ([]Chunk, error) {
	if k <= 0 {
		k = 4
	}

	type scoredRow struct {
		Document   string
		ChunkIndex int
		Distance   float32
	}
	var rows []scoredRow

	query := pgvector.NewVector(vector)
	err := p.db.WithContext(ctx).
		Model(&PassageEmbedding{}).
		Select("document, chunk_index, embedding_value <=> ? AS distance", query).
		Where("namespace = ?", p.namespace).
		Order(gorm.Expr("embedding_value <=> ?", query)).
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]Chunk, len(rows))
	for i, r := range rows {
		out[i] = Chunk{Text: r.Document, Index: r.ChunkIndex, Score: 1 - r.Distance}
	}
	return out, nil
}

func (p *PgVectorIndex) Close(ctx context.Context) error {
	return p.db.WithContext(ctx).Where("namespace = ?", p.namespace).Delete(&PassageEmbedding{}).Error
}
