package content

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Roles() Roles
	Media() MediaRepository
	Banners() Banners
	Kajian() KajianRepository
}

type mngr struct {
	db      *bun.DB
	users   Users
	roles   Roles
	media   MediaRepository
	banners Banners
	kajian  KajianRepository
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:      db,
		users:   NewUsersRepository(db),
		roles:   NewRolesRepository(db),
		media:   NewMediaRepository(db),
		banners: NewBannersRepository(db),
		kajian:  NewKajianRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.roles == nil {
		return errors.New("repository roles should be initialized")
	}

	if m.media == nil {
		return errors.New("repository media should be initialized")
	}

	if m.banners == nil {
		return errors.New("repository banners should be initialized")
	}

	if m.kajian == nil {
		return errors.New("repository kajian should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Roles() Roles {
	return m.roles
}

func (m mngr) Media() MediaRepository {
	return m.media
}

func (m mngr) Banners() Banners {
	return m.banners
}

func (m mngr) Kajian() KajianRepository {
	return m.kajian
}
