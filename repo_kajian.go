package content

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// KajianRepository manages kajian announcements. Kajian rows carry a
// caller supplied text primary key, so this repo is built directly on
// the query builder instead of the uuid keyed generic repository.
type KajianRepository interface {
	Get(ctx context.Context, id string) (*Kajian, error)
	GetTx(ctx context.Context, tx bun.IDB, id string) (*Kajian, error)
	List(ctx context.Context) ([]*Kajian, error)
	ListTx(ctx context.Context, tx bun.IDB) ([]*Kajian, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Kajian) (*Kajian, error)
	UpdateRecordTx(ctx context.Context, tx bun.IDB, record *Kajian) (*Kajian, error)
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id string) error
}

type kajianRepo struct {
	db *bun.DB
}

var _ KajianRepository = (*kajianRepo)(nil)

func NewKajianRepository(db *bun.DB) KajianRepository {
	return &kajianRepo{db: db}
}

func (a *kajianRepo) Get(ctx context.Context, id string) (*Kajian, error) {
	return a.GetTx(ctx, a.db, id)
}

func (a *kajianRepo) GetTx(ctx context.Context, tx bun.IDB, id string) (*Kajian, error) {
	record := &Kajian{}
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
					"id": id,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *kajianRepo) List(ctx context.Context) ([]*Kajian, error) {
	return a.ListTx(ctx, a.db)
}

func (a *kajianRepo) ListTx(ctx context.Context, tx bun.IDB) ([]*Kajian, error) {
	records := []*Kajian{}
	err := tx.NewSelect().
		Model(&records).
		Relation("Media").
		OrderExpr("?TableAlias.created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *kajianRepo) CreateTx(ctx context.Context, tx bun.IDB, record *Kajian) (*Kajian, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	_, err := tx.NewInsert().
		Model(record).
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	return record, nil
}

// UpdateRecordTx persists the full record, media pointer included, so a
// cleared media_id actually writes NULL.
func (a *kajianRepo) UpdateRecordTx(ctx context.Context, tx bun.IDB, record *Kajian) (*Kajian, error) {
	_, err := tx.NewUpdate().
		Model(record).
		Column("title", "pemateri", "phone", "jadwal", "is_active", "media_id").
		WherePK().
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	return record, nil
}

func (a *kajianRepo) DeleteByIDTx(ctx context.Context, tx bun.IDB, id string) error {
	_, err := tx.NewDelete().
		Model((*Kajian)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}
