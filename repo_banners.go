package content

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Banners narrows the generic repository to uuid keyed accessors that
// always load the Media relation. The struct still embeds the generic
// repository for writes.
type Banners interface {
	Get(ctx context.Context, id uuid.UUID) (*Banner, error)
	GetTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Banner, error)
	List(ctx context.Context) ([]*Banner, error)
	ListTx(ctx context.Context, tx bun.IDB) ([]*Banner, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Banner, criteria ...repository.InsertCriteria) (*Banner, error)
	UpdateRecordTx(ctx context.Context, tx bun.IDB, record *Banner) (*Banner, error)
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type banners struct {
	repository.Repository[*Banner]
	db *bun.DB
}

var _ Banners = (*banners)(nil)

func NewBannersRepository(db *bun.DB) Banners {
	repo := repository.NewRepository[*Banner](db, repository.ModelHandlers[*Banner]{
		NewRecord: func() *Banner { return &Banner{} },
		GetID: func(b *Banner) uuid.UUID {
			if b == nil {
				return uuid.Nil
			}
			return b.ID
		},
		SetID: func(b *Banner, id uuid.UUID) {
			if b != nil {
				b.ID = id
			}
		},
	})

	return &banners{
		Repository: repo,
		db:         db,
	}
}

func (a *banners) Get(ctx context.Context, id uuid.UUID) (*Banner, error) {
	return a.GetTx(ctx, a.db, id)
}

func (a *banners) GetTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Banner, error) {
	record := &Banner{}
	err := tx.NewSelect().
		Model(record).
		Relation("Media").
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

func (a *banners) List(ctx context.Context) ([]*Banner, error) {
	return a.ListTx(ctx, a.db)
}

func (a *banners) ListTx(ctx context.Context, tx bun.IDB) ([]*Banner, error) {
	records := []*Banner{}
	err := tx.NewSelect().
		Model(&records).
		Relation("Media").
		Order("order_index ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

// UpdateRecordTx persists the full record, media pointer included, so a
// cleared media_id actually writes NULL.
func (a *banners) UpdateRecordTx(ctx context.Context, tx bun.IDB, record *Banner) (*Banner, error) {
	_, err := tx.NewUpdate().
		Model(record).
		Column("title", "caption", "link_url", "order_index", "is_active", "media_id", "updated_at").
		WherePK().
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	return record, nil
}

func (a *banners) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Banner)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}
