package content

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MediaSource names exactly one way to attach an image: reuse an
// existing asset, register an external URL, or store an upload. When
// several are set the first non empty field in that order wins.
// AltText describes the image; it applies to uploads and external
// registrations, never to an already existing asset.
type MediaSource struct {
	AssetID     *uuid.UUID
	ExternalURL string
	Upload      *Upload
	AltText     string
}

// IsZero reports whether the source carries nothing to attach
func (m MediaSource) IsZero() bool {
	return m.AssetID == nil && m.ExternalURL == "" && m.Upload == nil
}

// Attacher connects owner records to media assets and reclaims assets
// nobody references anymore. Reference counts are only trusted after
// the owning write has landed, inside the same transaction.
type Attacher struct {
	store  *MediaStore
	media  MediaRepository
	logger Logger
}

func NewAttacher(store *MediaStore, media MediaRepository) *Attacher {
	return &Attacher{
		store:  store,
		media:  media,
		logger: defLogger{},
	}
}

func (a *Attacher) WithLogger(logger Logger) *Attacher {
	a.logger = logger
	return a
}

// ResolveTx turns a MediaSource into an attached media record, creating
// rows and files as needed. A zero source resolves to no attachment.
// created reports whether this call stored a new row; when the
// surrounding transaction fails the caller passes the record to Discard
// so the stored file does not outlive the rolled back row.
func (a *Attacher) ResolveTx(ctx context.Context, tx bun.IDB, source MediaSource) (record *Media, created bool, err error) {
	if source.IsZero() {
		return nil, false, nil
	}

	if source.AssetID != nil {
		record, err := a.media.GetTx(ctx, tx, *source.AssetID)
		if err != nil {
			return nil, false, errors.Wrap(err, errors.CategoryNotFound, "referenced asset does not exist")
		}
		return record, false, nil
	}

	if source.ExternalURL != "" {
		record, err := a.store.RegisterExternalTx(ctx, tx, source.ExternalURL, source.AltText)
		if err != nil {
			return nil, false, err
		}
		return record, true, nil
	}

	up := source.Upload
	if up != nil && up.AltText == "" {
		up.AltText = source.AltText
	}

	record, err = a.store.StoreUploadTx(ctx, tx, up)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// Discard unlinks the file behind an attachment whose transaction
// rolled back. The row vanished with the rollback; the file did not.
func (a *Attacher) Discard(record *Media) {
	a.store.DeletePhysical(record)
}

// ReleaseIfOrphanedTx deletes the asset when no owner references it.
// Call it after the owning row has been repointed or removed, in the
// same transaction, so the count reflects the mutation. The physical
// file goes first; a row that outlives its file is recoverable, a file
// that outlives its row is a leak.
func (a *Attacher) ReleaseIfOrphanedTx(ctx context.Context, tx bun.IDB, id *uuid.UUID) error {
	if id == nil {
		return nil
	}

	count, err := a.media.CountReferencesTx(ctx, tx, *id)
	if err != nil {
		return err
	}

	if count > 0 {
		a.logger.Debug("Attacher keeping asset %s with %d remaining references", id, count)
		return nil
	}

	record, err := a.media.GetTx(ctx, tx, *id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil
		}
		return err
	}

	a.store.DeletePhysical(record)

	return a.media.DeleteByIDTx(ctx, tx, *id)
}

// mediaRef copies an attached record's id into an owner's media column
func mediaRef(record *Media) *uuid.UUID {
	if record == nil {
		return nil
	}
	id := record.ID
	return &id
}
