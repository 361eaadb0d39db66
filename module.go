package content

import (
	"github.com/uptrace/bun"
)

// Module wires the full stack from a Config and a database handle.
// Each owner kind gets its own media store so uploads land in separate
// folders and carry the owning subsystem's source tag.
type Module struct {
	Repo        RepositoryManager
	Auther      *Auther
	Storage     Storage
	BannerMedia *MediaStore
	KajianMedia *MediaStore
	Banners     *BannerService
	Kajian      *KajianService
	Controller  *Controller
}

// New builds the module. The signing key is checked up front; a short
// key is a deployment mistake and fails fast.
func New(cfg Config, db *bun.DB) (*Module, error) {
	repo := NewRepositoryManager(db)

	tokenService, err := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenTTL(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		nil,
	)
	if err != nil {
		return nil, err
	}

	provider := NewUserProvider(repo.Users())
	auther := NewAuthenticator(provider, tokenService)

	storage := NewLocalStorage(cfg.GetUploadRoot())

	bannerFolder := cfg.GetBannerMediaFolder()
	if bannerFolder == "" {
		bannerFolder = DefaultBannerMediaFolder
	}
	kajianFolder := cfg.GetKajianMediaFolder()
	if kajianFolder == "" {
		kajianFolder = DefaultKajianMediaFolder
	}

	bannerMedia := NewMediaStore(storage, repo.Media(),
		WithMediaSubfolder(bannerFolder),
		WithMediaSourceTag("banner_upload"),
		WithMediaBaseURL(cfg.GetPublicBaseURL()),
		WithMaxUploadSize(cfg.GetMaxUploadSize()),
	)
	kajianMedia := NewMediaStore(storage, repo.Media(),
		WithMediaSubfolder(kajianFolder),
		WithMediaSourceTag("kajian_upload"),
		WithMediaBaseURL(cfg.GetPublicBaseURL()),
		WithMaxUploadSize(cfg.GetMaxUploadSize()),
	)

	banners := NewBannerService(repo, NewAttacher(bannerMedia, repo.Media()))
	kajian := NewKajianService(repo, NewAttacher(kajianMedia, repo.Media()))

	controller := NewController(
		WithControllerRepo(repo),
		WithControllerAuther(auther),
		WithControllerServices(banners, kajian),
	)

	return &Module{
		Repo:        repo,
		Auther:      auther,
		Storage:     storage,
		BannerMedia: bannerMedia,
		KajianMedia: kajianMedia,
		Banners:     banners,
		Kajian:      kajian,
		Controller:  controller,
	}, nil
}
