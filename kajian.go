package content

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// DefaultPhoneRegion is the region used to interpret national phone
// numbers on kajian records.
const DefaultPhoneRegion = "ID"

// KajianInput carries the kajian attributes a caller may set. Fields
// are pointers so an omitted field leaves the stored value untouched
// on update. ID is only read on create.
type KajianInput struct {
	ID       string  `form:"id" json:"id"`
	Title    *string `form:"title" json:"title"`
	Pemateri *string `form:"pemateri" json:"pemateri"`
	Phone    *string `form:"phone" json:"phone"`
	Jadwal   *string `form:"jadwal" json:"jadwal"`
	IsActive *bool   `form:"is_active" json:"is_active"`
}

// KajianService owns kajian announcement lifecycle, sharing the media
// attachment rules with banners.
type KajianService struct {
	repo     RepositoryManager
	attacher *Attacher
	logger   Logger
}

func NewKajianService(repo RepositoryManager, attacher *Attacher) *KajianService {
	return &KajianService{
		repo:     repo,
		attacher: attacher,
		logger:   defLogger{},
	}
}

func (s *KajianService) WithLogger(logger Logger) *KajianService {
	s.logger = logger
	return s
}

func (s *KajianService) Get(ctx context.Context, id string) (*Kajian, error) {
	return s.repo.Kajian().Get(ctx, id)
}

func (s *KajianService) List(ctx context.Context) ([]*Kajian, error) {
	return s.repo.Kajian().List(ctx)
}

func (s *KajianService) Create(ctx context.Context, input KajianInput, source MediaSource) (*Kajian, error) {
	record := &Kajian{
		ID:       strings.TrimSpace(input.ID),
		Title:    strVal(input.Title),
		Pemateri: strVal(input.Pemateri),
		Phone:    normalizePhone(strVal(input.Phone)),
		Jadwal:   strVal(input.Jadwal),
		IsActive: true,
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

		record, err = s.repo.Kajian().CreateTx(ctx, tx, record)
		return err
	})

	if err != nil {
		if stored {
			s.attacher.Discard(attached)
		}
		return nil, err
	}

	return s.repo.Kajian().Get(ctx, record.ID)
}

// Update applies the set input fields and, when a source is given,
// swaps the attached media. The replaced asset is released after the
// kajian row has been repointed.
func (s *KajianService) Update(ctx context.Context, id string, input KajianInput, source MediaSource) (*Kajian, error) {
	var attached *Media
	var stored bool

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.repo.Kajian().GetTx(ctx, tx, id)
		if err != nil {
			return err
		}

		previous := record.MediaID

		if input.Title != nil {
			record.Title = *input.Title
		}
		if input.Pemateri != nil {
			record.Pemateri = *input.Pemateri
		}
		if input.Phone != nil {
			record.Phone = normalizePhone(*input.Phone)
		}
		if input.Jadwal != nil {
			record.Jadwal = *input.Jadwal
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

		if _, err := s.repo.Kajian().UpdateRecordTx(ctx, tx, record); err != nil {
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

	return s.repo.Kajian().Get(ctx, id)
}

// Delete removes the kajian and reclaims its media asset when no other
// record still references it.
func (s *KajianService) Delete(ctx context.Context, id string) error {
	return s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.repo.Kajian().GetTx(ctx, tx, id)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil
			}
			return err
		}

		if err := s.repo.Kajian().DeleteByIDTx(ctx, tx, id); err != nil {
			return err
		}

		return s.attacher.ReleaseIfOrphanedTx(ctx, tx, record.MediaID)
	})
}

// normalizePhone formats the number as E.164 when it parses; anything
// else passes through untouched.
func normalizePhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(trimmed, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return trimmed
	}

	return phonenumbers.Format(parsed, phonenumbers.E164)
}
