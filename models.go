package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// RoleAdmin can manage content (banners, kajian, media)
	RoleAdmin = "admin"
	// RoleUser is a regular authenticated account
	RoleUser = "user"
)

// Role is a named permission bucket referenced by many users.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// User is the account model. Role is always loaded alongside the user
// on authentication paths so callers never resolve it separately.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	RoleID        *uuid.UUID `bun:"role_id,type:uuid" json:"role_id,omitempty"`
	Role          *Role      `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// RoleName returns the name of the user's role, or an empty string if
// the relation has not been loaded.
func (u *User) RoleName() string {
	if u == nil || u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// MetadataKeyExternal marks media rows that point at an externally
// hosted image instead of a stored file.
const MetadataKeyExternal = "external"

// Media represents one physically stored file or one external URL
// reference. Owner records point at media rows; media rows know nothing
// about their owners. Rows are removed only by the attacher once no
// owner references them.
type Media struct {
	bun.BaseModel `bun:"table:media,alias:med"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Filename      string         `bun:"filename,notnull" json:"filename,omitempty"`
	URL           string         `bun:"url,notnull" json:"url,omitempty"`
	StoragePath   string         `bun:"storage_path" json:"storage_path,omitempty"`
	Mime          string         `bun:"mime" json:"mime,omitempty"`
	Width         *int           `bun:"width" json:"width,omitempty"`
	Height        *int           `bun:"height" json:"height,omitempty"`
	Size          *int64         `bun:"size" json:"size,omitempty"`
	AltText       string         `bun:"alt_text" json:"alt_text,omitempty"`
	Metadata      map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	UploadedBy    *uuid.UUID     `bun:"uploaded_by,type:uuid" json:"uploaded_by,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// AddMetadata will append information to the metadata attribute
func (m *Media) AddMetadata(key string, val any) *Media {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = val
	return m
}

// IsExternal reports whether the media row is an external URL reference
// with no backing file.
func (m *Media) IsExternal() bool {
	if m == nil || m.Metadata == nil {
		return false
	}
	flag, ok := m.Metadata[MetadataKeyExternal].(bool)
	return ok && flag
}

// Banner is a content item with at most one media reference.
type Banner struct {
	bun.BaseModel `bun:"table:banners,alias:bnr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title" json:"title,omitempty"`
	Caption       string     `bun:"caption" json:"caption,omitempty"`
	LinkURL       string     `bun:"link_url" json:"link_url,omitempty"`
	OrderIndex    int        `bun:"order_index,default:0" json:"order_index"`
	IsActive      bool       `bun:"is_active,default:true" json:"is_active"`
	MediaID       *uuid.UUID `bun:"media_id,type:uuid" json:"media_id,omitempty"`
	Media         *Media     `bun:"rel:belongs-to,join:media_id=id" json:"media,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ImageURL resolves the banner's image URL, or an empty string when no
// media is attached.
func (b *Banner) ImageURL() string {
	if b == nil || b.Media == nil {
		return ""
	}
	return b.Media.URL
}

// Kajian is an announcement record. The primary key is caller supplied
// text; a fresh uuid string is assigned when none is given.
type Kajian struct {
	bun.BaseModel `bun:"table:kajian,alias:kjn"`
	ID            string     `bun:"id,pk" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Pemateri      string     `bun:"pemateri" json:"pemateri,omitempty"`
	Phone         string     `bun:"phone" json:"phone,omitempty"`
	Jadwal        string     `bun:"jadwal" json:"jadwal,omitempty"`
	IsActive      bool       `bun:"is_active,default:true" json:"is_active"`
	MediaID       *uuid.UUID `bun:"media_id,type:uuid" json:"media_id,omitempty"`
	Media         *Media     `bun:"rel:belongs-to,join:media_id=id" json:"media,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ImageURL resolves the kajian's image URL, or an empty string when no
// media is attached.
func (k *Kajian) ImageURL() string {
	if k == nil || k.Media == nil {
		return ""
	}
	return k.Media.URL
}
