package content

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BannerInput carries the banner attributes a caller may set. Fields
// are pointers so an omitted field leaves the stored value untouched
// on update.
type BannerInput struct {
	Title      *string `form:"title" json:"title"`
	Caption    *string `form:"caption" json:"caption"`
	LinkURL    *string `form:"link_url" json:"link_url"`
	OrderIndex *int    `form:"order_index" json:"order_index"`
	IsActive   *bool   `form:"is_active" json:"is_active"`
}

// BannerService owns banner lifecycle. Every mutation runs in one
// transaction with its media bookkeeping so an orphaned asset can never
// survive a partially applied change.
type BannerService struct {
	repo     RepositoryManager
	attacher *Attacher
	logger   Logger
}

func NewBannerService(repo RepositoryManager, attacher *Attacher) *BannerService {
	return &BannerService{
		repo:     repo,
		attacher: attacher,
		logger:   defLogger{},
	}
}

func (s *BannerService) WithLogger(logger Logger) *BannerService {
	s.logger = logger
	return s
}

func (s *BannerService) Get(ctx context.Context, id uuid.UUID) (*Banner, error) {
	return s.repo.Banners().Get(ctx, id)
}

func (s *BannerService) List(ctx context.Context) ([]*Banner, error) {
	return s.repo.Banners().List(ctx)
}

func (s *BannerService) Create(ctx context.Context, input BannerInput, source MediaSource) (*Banner, error) {
	record := &Banner{
		ID:       uuid.New(),
		Title:    strVal(input.Title),
		Caption:  strVal(input.Caption),
		LinkURL:  strVal(input.LinkURL),
		IsActive: true,
	}
	if input.OrderIndex != nil {
		record.OrderIndex = *input.OrderIndex
	}
	if input.IsActive != nil {
		record.IsActive = *input.IsActive
	}

	var attached *Media
	var stored bool

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		attached, stored, err = s.attacher.ResolveTx(ctx, tx, source)
		if err != nil {
			return err
		}
		record.MediaID = mediaRef(attached)

		record, err = s.repo.Banners().CreateTx(ctx, tx, record)
		return err
	})

	if err != nil {
		if stored {
			s.attacher.Discard(attached)
		}
		return nil, err
	}

	return s.repo.Banners().Get(ctx, record.ID)
}

// Update applies the set input fields and, when a source is given,
// swaps the attached media. The old asset is released only after the
// banner row points elsewhere, so the reference count sees the final
// state.
func (s *BannerService) Update(ctx context.Context, id uuid.UUID, input BannerInput, source MediaSource) (*Banner, error) {
	var attached *Media
	var stored bool

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.repo.Banners().GetTx(ctx, tx, id)
		if err != nil {
			return err
		}

		previous := record.MediaID

		if input.Title != nil {
			record.Title = *input.Title
		}
		if input.Caption != nil {
			record.Caption = *input.Caption
		}
		if input.LinkURL != nil {
			record.LinkURL = *input.LinkURL
		}
		if input.OrderIndex != nil {
			record.OrderIndex = *input.OrderIndex
		}
		if input.IsActive != nil {
			record.IsActive = *input.IsActive
		}

		replacing := !source.IsZero()
		if replacing {
			attached, stored, err = s.attacher.ResolveTx(ctx, tx, source)
			if err != nil {
				return err
			}
			record.MediaID = mediaRef(attached)
		}

		if _, err := s.repo.Banners().UpdateRecordTx(ctx, tx, record); err != nil {
			return err
		}

		if replacing && previous != nil && !sameAsset(previous, record.MediaID) {
			return s.attacher.ReleaseIfOrphanedTx(ctx, tx, previous)
		}

		return nil
	})

	if err != nil {
		if stored {
			s.attacher.Discard(attached)
		}
		return nil, err
	}

	return s.repo.Banners().Get(ctx, id)
}

// Delete removes the banner and reclaims its media asset when no other
// record still references it.
func (s *BannerService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.repo.Banners().GetTx(ctx, tx, id)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil
			}
			return err
		}

		if err := s.repo.Banners().DeleteByIDTx(ctx, tx, id); err != nil {
			return err
		}

		return s.attacher.ReleaseIfOrphanedTx(ctx, tx, record.MediaID)
	})
}

func sameAsset(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
