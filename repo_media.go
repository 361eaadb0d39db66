package content

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MediaRepository stores shared media assets. Assets are owned by the
// records that reference them; the repository only answers how many
// owners remain.
type MediaRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*Media, error)
	GetTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Media, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Media, criteria ...repository.InsertCriteria) (*Media, error)
	CountReferences(ctx context.Context, id uuid.UUID) (int, error)
	CountReferencesTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (int, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type mediaRepo struct {
	repository.Repository[*Media]
	db *bun.DB
}

var _ MediaRepository = (*mediaRepo)(nil)

func NewMediaRepository(db *bun.DB) MediaRepository {
	repo := repository.NewRepository[*Media](db, repository.ModelHandlers[*Media]{
		NewRecord: func() *Media { return &Media{} },
		GetID: func(m *Media) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *Media, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
	})

	return &mediaRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *mediaRepo) Get(ctx context.Context, id uuid.UUID) (*Media, error) {
	return a.GetTx(ctx, a.db, id)
}

func (a *mediaRepo) GetTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Media, error) {
	record := &Media{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

// CountReferencesTx counts the records that still point at the asset.
// Every referencing table gets counted; a new owner table means a new
// clause here.
func (a *mediaRepo) CountReferencesTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (int, error) {
	banners, err := tx.NewSelect().
		Model((*Banner)(nil)).
		Where("?TableAlias.media_id = ?", id).
		Count(ctx)
	if err != nil {
		return 0, err
	}

	kajian, err := tx.NewSelect().
		Model((*Kajian)(nil)).
		Where("?TableAlias.media_id = ?", id).
		Count(ctx)
	if err != nil {
		return 0, err
	}

	return banners + kajian, nil
}

func (a *mediaRepo) CountReferences(ctx context.Context, id uuid.UUID) (int, error) {
	return a.CountReferencesTx(ctx, a.db, id)
}

func (a *mediaRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return a.DeleteByIDTx(ctx, a.db, id)
}

// DeleteByIDTx removes the asset row. Deleting a row that is already
// gone is not an error.
func (a *mediaRepo) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Media)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}
