package content_test

import (
	"bytes"
	"database/sql"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-content"
)

const (
	sqliteCreateRoles = `CREATE TABLE roles (
    id TEXT NOT NULL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`
	sqliteCreateUsers = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role_id TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    FOREIGN KEY (role_id) REFERENCES roles (id)
);`
	sqliteCreateMedia = `CREATE TABLE media (
    id TEXT NOT NULL PRIMARY KEY,
    filename TEXT NOT NULL,
    url TEXT NOT NULL,
    storage_path TEXT,
    mime TEXT,
    width INTEGER,
    height INTEGER,
    size INTEGER,
    alt_text TEXT,
    metadata TEXT,
    uploaded_by TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`
	sqliteCreateBanners = `CREATE TABLE banners (
    id TEXT NOT NULL PRIMARY KEY,
    title TEXT,
    caption TEXT,
    link_url TEXT,
    order_index INTEGER DEFAULT 0,
    is_active BOOLEAN DEFAULT TRUE,
    media_id TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    FOREIGN KEY (media_id) REFERENCES media (id)
);`
	sqliteCreateKajian = `CREATE TABLE kajian (
    id TEXT NOT NULL PRIMARY KEY,
    title TEXT NOT NULL,
    pemateri TEXT,
    phone TEXT,
    jadwal TEXT,
    is_active BOOLEAN DEFAULT TRUE,
    media_id TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (media_id) REFERENCES media (id)
);`
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	for _, ddl := range []string{
		sqliteCreateRoles,
		sqliteCreateUsers,
		sqliteCreateMedia,
		sqliteCreateBanners,
		sqliteCreateKajian,
	} {
		_, err = bunDB.Exec(ddl)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	return bunDB
}

// testStack wires repos, storage, and services over an in-memory
// database and a temp directory.
type testStack struct {
	DB         *bun.DB
	Repo       content.RepositoryManager
	Storage    *content.LocalStorage
	MediaStore *content.MediaStore
	Attacher   *content.Attacher
	Banners    *content.BannerService
	Kajian     *content.KajianService
}

func setupStack(t *testing.T) *testStack {
	t.Helper()

	db := setupTestDB(t)
	repo := content.NewRepositoryManager(db)
	storage := content.NewLocalStorage(t.TempDir())
	store := content.NewMediaStore(storage, repo.Media())
	attacher := content.NewAttacher(store, repo.Media())

	return &testStack{
		DB:         db,
		Repo:       repo,
		Storage:    storage,
		MediaStore: store,
		Attacher:   attacher,
		Banners:    content.NewBannerService(repo, attacher),
		Kajian:     content.NewKajianService(repo, attacher),
	}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

// pngUpload builds a decodable 1x1 PNG upload
func pngUpload(t *testing.T, filename string) *content.Upload {
	t.Helper()

	var buf bytes.Buffer
	err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	require.NoError(t, err)

	return &content.Upload{
		Filename: filename,
		Mime:     "image/png",
		Size:     int64(buf.Len()),
		Data:     buf.Bytes(),
	}
}
