package content_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-content"
)

func TestKajianService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns an id when none is given", func(t *testing.T) {
		stack := setupStack(t)

		record, err := stack.Kajian.Create(ctx, content.KajianInput{
			Title:    strPtr("kajian subuh"),
			Pemateri: strPtr("Ust. Fulan"),
		}, content.MediaSource{})

		require.NoError(t, err)
		assert.NotEmpty(t, record.ID)
		assert.True(t, record.IsActive)
	})

	t.Run("keeps a caller supplied id", func(t *testing.T) {
		stack := setupStack(t)

		record, err := stack.Kajian.Create(ctx, content.KajianInput{
			ID:    "kajian-ramadhan-2026",
			Title: strPtr("kajian ramadhan"),
		}, content.MediaSource{})

		require.NoError(t, err)
		assert.Equal(t, "kajian-ramadhan-2026", record.ID)
	})

	t.Run("normalizes phone numbers to E.164", func(t *testing.T) {
		stack := setupStack(t)

		record, err := stack.Kajian.Create(ctx, content.KajianInput{
			Title: strPtr("kajian malam"),
			Phone: strPtr("0812 3456 7890"),
		}, content.MediaSource{})

		require.NoError(t, err)
		assert.Equal(t, "+6281234567890", record.Phone)
	})

	t.Run("unparseable phone passes through", func(t *testing.T) {
		stack := setupStack(t)

		record, err := stack.Kajian.Create(ctx, content.KajianInput{
			Title: strPtr("kajian pagi"),
			Phone: strPtr("hubungi panitia"),
		}, content.MediaSource{})

		require.NoError(t, err)
		assert.Equal(t, "hubungi panitia", record.Phone)
	})

	t.Run("attaches an external poster", func(t *testing.T) {
		stack := setupStack(t)

		record, err := stack.Kajian.Create(ctx, content.KajianInput{Title: strPtr("kajian akbar")}, content.MediaSource{
			ExternalURL: "https://cdn.example.com/poster.jpg",
		})

		require.NoError(t, err)
		require.NotNil(t, record.Media)
		assert.Equal(t, "https://cdn.example.com/poster.jpg", record.ImageURL())
	})
}

func TestKajianService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("swapping the poster releases the old one", func(t *testing.T) {
		stack := setupStack(t)

		record, err := stack.Kajian.Create(ctx, content.KajianInput{Title: strPtr("kajian")}, content.MediaSource{
			Upload: pngUpload(t, "old-poster.png"),
		})
		require.NoError(t, err)
		oldAsset := *record.MediaID

		updated, err := stack.Kajian.Update(ctx, record.ID, content.KajianInput{Title: strPtr("kajian")}, content.MediaSource{
			ExternalURL: "https://cdn.example.com/new-poster.jpg",
		})
		require.NoError(t, err)
		assert.NotEqual(t, oldAsset, *updated.MediaID)

		_, err = stack.Repo.Media().Get(ctx, oldAsset)
		assert.Error(t, err)
	})

	t.Run("update without source keeps the poster", func(t *testing.T) {
		stack := setupStack(t)

		record, err := stack.Kajian.Create(ctx, content.KajianInput{Title: strPtr("before")}, content.MediaSource{
			Upload: pngUpload(t, "poster.png"),
		})
		require.NoError(t, err)
		asset := *record.MediaID

		updated, err := stack.Kajian.Update(ctx, record.ID, content.KajianInput{
			Title:    strPtr("after"),
			Pemateri: strPtr("Ust. Fulan"),
		}, content.MediaSource{})
		require.NoError(t, err)

		assert.Equal(t, "after", updated.Title)
		require.NotNil(t, updated.MediaID)
		assert.Equal(t, asset, *updated.MediaID)
	})

	t.Run("omitted fields survive a partial update", func(t *testing.T) {
		stack := setupStack(t)

		record, err := stack.Kajian.Create(ctx, content.KajianInput{
			Title:    strPtr("kajian tafsir"),
			Pemateri: strPtr("Ust. Fulan"),
			Phone:    strPtr("0812 3456 7890"),
			Jadwal:   strPtr("Ahad 06:00"),
		}, content.MediaSource{})
		require.NoError(t, err)

		updated, err := stack.Kajian.Update(ctx, record.ID, content.KajianInput{
			Title: strPtr("kajian tafsir juz 30"),
		}, content.MediaSource{})
		require.NoError(t, err)

		assert.Equal(t, "kajian tafsir juz 30", updated.Title)
		assert.Equal(t, "Ust. Fulan", updated.Pemateri)
		assert.Equal(t, "+6281234567890", updated.Phone)
		assert.Equal(t, "Ahad 06:00", updated.Jadwal)
		assert.True(t, updated.IsActive)
	})
}

// A create whose transaction rolls back must not leave the uploaded
// file behind on disk.
func TestKajianService_CreateRollbackReclaimsUpload(t *testing.T) {
	ctx := context.Background()
	stack := setupStack(t)

	first, err := stack.Kajian.Create(ctx, content.KajianInput{
		ID:    "kajian-unik",
		Title: strPtr("kajian pertama"),
	}, content.MediaSource{
		Upload: pngUpload(t, "first.png"),
	})
	require.NoError(t, err)
	require.NotNil(t, first.MediaID)

	_, err = stack.Kajian.Create(ctx, content.KajianInput{
		ID:    "kajian-unik",
		Title: strPtr("kajian duplikat"),
	}, content.MediaSource{
		Upload: pngUpload(t, "second.png"),
	})
	require.Error(t, err)

	rows, err := stack.DB.NewSelect().Model((*content.Media)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	entries, err := filepath.Glob(filepath.Join(stack.Storage.RootPath, "*"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestKajianService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting a missing kajian succeeds", func(t *testing.T) {
		stack := setupStack(t)
		assert.NoError(t, stack.Kajian.Delete(ctx, "never-existed"))
	})

	t.Run("delete reclaims exclusive media", func(t *testing.T) {
		stack := setupStack(t)

		record, err := stack.Kajian.Create(ctx, content.KajianInput{Title: strPtr("bye")}, content.MediaSource{
			Upload: pngUpload(t, "bye.png"),
		})
		require.NoError(t, err)
		asset := *record.MediaID

		require.NoError(t, stack.Kajian.Delete(ctx, record.ID))

		_, err = stack.Repo.Media().Get(ctx, asset)
		assert.Error(t, err)
	})
}
