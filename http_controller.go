package content

import (
	"fmt"
	"io"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"

	"github.com/goliatone/go-content/middleware/jwtware"
)

// TokenCookieName is the cookie checked for a session token after the
// Authorization header.
const TokenCookieName = "jwt"

// Envelope is the uniform response shape
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type Controller struct {
	Debug    bool
	Logger   Logger
	Repo     RepositoryManager
	Auther   *Auther
	Banners  *BannerService
	Kajian   *KajianService
	Register *RegisterUserHandler
}

type ControllerOption func(*Controller) *Controller

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in content controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in content controller...")
	}

	if c.Register == nil {
		c.Register = NewRegisterUserHandler(c.Repo)
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) ControllerOption {
	return func(c *Controller) *Controller {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther *Auther) ControllerOption {
	return func(c *Controller) *Controller {
		c.Auther = auther
		return c
	}
}

func WithControllerServices(banners *BannerService, kajian *KajianService) ControllerOption {
	return func(c *Controller) *Controller {
		c.Banners = banners
		c.Kajian = kajian
		return c
	}
}

func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		c.Logger = logger
		return c
	}
}

// RegisterRoutes mounts the public and protected routes. Reads are
// public; every mutation requires an authenticated admin.
func (a *Controller) RegisterRoutes(app *fiber.App) {
	authenticated := a.Protected()
	admin := a.Protected(RoleAdmin)

	app.Post("/auth/register", a.RegisterPost)
	app.Post("/auth/login", a.LoginPost)
	app.Get("/auth/profile", authenticated, a.ProfileGet)

	app.Get("/banners", a.BannerList)
	app.Get("/banners/:id", a.BannerGet)
	app.Post("/banners", admin, a.BannerCreate)
	app.Put("/banners/:id", admin, a.BannerUpdate)
	app.Delete("/banners/:id", admin, a.BannerDelete)

	app.Get("/kajian", a.KajianList)
	app.Get("/kajian/:id", a.KajianGet)
	app.Post("/kajian", admin, a.KajianCreate)
	app.Put("/kajian/:id", admin, a.KajianUpdate)
	app.Delete("/kajian/:id", admin, a.KajianDelete)
}

// Protected builds the JWT guard. Roles narrow access further; with no
// roles any authenticated principal passes. Every guarded request
// resolves the token subject against the user store: the store, not
// the token, decides whether the account still exists.
func (a *Controller) Protected(roles ...string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenValidator: tokenValidatorAdapter{a.Auther.TokenService()},
		TokenLookup:    "header:" + fiber.HeaderAuthorization + ",cookie:" + TokenCookieName,
		RequiredRoles:  roles,
		IdentityLookup: func(c *fiber.Ctx, claims jwtware.AuthClaims) (any, error) {
			return a.Auther.provider.FindIdentityByID(c.Context(), claims.Subject())
		},
		ErrorHandler: a.guardError,
	})
}

// tokenValidatorAdapter bridges the token service into the middleware
// without an import cycle.
type tokenValidatorAdapter struct {
	service TokenService
}

func (t tokenValidatorAdapter) Validate(raw string) (jwtware.AuthClaims, error) {
	claims, err := t.service.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (a *Controller) guardError(c *fiber.Ctx, err error) error {
	if err.Error() == jwtware.ErrJWTMissingOrMalformed.Error() {
		return c.Status(fiber.StatusBadRequest).JSON(Envelope{
			Success: false,
			Message: jwtware.ErrJWTMissingOrMalformed.Error(),
		})
	}

	if goerrors.Is(err, jwtware.ErrInsufficientRole) {
		return c.Status(fiber.StatusForbidden).JSON(Envelope{
			Success: false,
			Message: "insufficient role",
		})
	}

	return c.Status(fiber.StatusUnauthorized).JSON(Envelope{
		Success: false,
		Message: "Invalid or expired token",
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *Controller) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse login payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload"))
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	token, err := a.Auther.Login(c.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		return a.respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Expires:  time.Now().Add(a.Auther.TokenService().TTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(Envelope{
		Success: true,
		Data: fiber.Map{
			"access_token": token,
			"token_type":   "Bearer",
		},
	})
}

// RegisterRequest payload
type RegisterRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Role     string `form:"role" json:"role"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *Controller) RegisterPost(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse registration payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload"))
	}

	user, err := a.Register.Execute(c.Context(), RegisterUserMessage{
		Email:    payload.Email,
		Password: payload.Password,
		Role:     payload.Role,
	})
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(Envelope{
		Success: true,
		Data:    user,
	})
}

func (a *Controller) ProfileGet(c *fiber.Ctx) error {
	identity, ok := GetFiberIdentity(c, "")
	if !ok {
		return a.respondError(c, ErrIdentityNotFound)
	}

	return c.JSON(Envelope{
		Success: true,
		Data: fiber.Map{
			"id":    identity.ID(),
			"email": identity.Email(),
			"role":  identity.Role(),
		},
	})
}

func (a *Controller) BannerList(c *fiber.Ctx) error {
	records, err := a.Banners.List(c.Context())
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(Envelope{Success: true, Data: records})
}

func (a *Controller) BannerGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid banner id"))
	}

	record, err := a.Banners.Get(c.Context(), id)
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(Envelope{Success: true, Data: record})
}

func (a *Controller) BannerCreate(c *fiber.Ctx) error {
	input := BannerInput{}
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		a.Logger.Debug("banner create body parse: %v", err)
	}

	source, err := a.mediaSourceFromRequest(c, input.Title)
	if err != nil {
		return a.respondError(c, err)
	}

	record, err := a.Banners.Create(c.Context(), input, source)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: record})
}

func (a *Controller) BannerUpdate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid banner id"))
	}

	input := BannerInput{}
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		a.Logger.Debug("banner update body parse: %v", err)
	}

	source, err := a.mediaSourceFromRequest(c, input.Title)
	if err != nil {
		return a.respondError(c, err)
	}

	record, err := a.Banners.Update(c.Context(), id, input, source)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.JSON(Envelope{Success: true, Data: record})
}

func (a *Controller) BannerDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return a.respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid banner id"))
	}

	if err := a.Banners.Delete(c.Context(), id); err != nil {
		return a.respondError(c, err)
	}

	return c.JSON(Envelope{Success: true})
}

func (a *Controller) KajianList(c *fiber.Ctx) error {
	records, err := a.Kajian.List(c.Context())
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(Envelope{Success: true, Data: records})
}

func (a *Controller) KajianGet(c *fiber.Ctx) error {
	record, err := a.Kajian.Get(c.Context(), c.Params("id"))
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(Envelope{Success: true, Data: record})
}

func (a *Controller) KajianCreate(c *fiber.Ctx) error {
	input := KajianInput{}
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		a.Logger.Debug("kajian create body parse: %v", err)
	}

	source, err := a.mediaSourceFromRequest(c, input.Title)
	if err != nil {
		return a.respondError(c, err)
	}

	record, err := a.Kajian.Create(c.Context(), input, source)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: record})
}

func (a *Controller) KajianUpdate(c *fiber.Ctx) error {
	input := KajianInput{}
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		a.Logger.Debug("kajian update body parse: %v", err)
	}

	source, err := a.mediaSourceFromRequest(c, input.Title)
	if err != nil {
		return a.respondError(c, err)
	}

	record, err := a.Kajian.Update(c.Context(), c.Params("id"), input, source)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.JSON(Envelope{Success: true, Data: record})
}

func (a *Controller) KajianDelete(c *fiber.Ctx) error {
	if err := a.Kajian.Delete(c.Context(), c.Params("id")); err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(Envelope{Success: true})
}

// mediaSourceFromRequest builds a MediaSource from the request: a
// multipart "image" file, a "media_id" form value, or an "image_url"
// form value. A request carrying none of them yields a zero source.
// Alt text comes from the "alt_text" form value, falling back to the
// record title.
func (a *Controller) mediaSourceFromRequest(c *fiber.Ctx, fallbackAlt *string) (MediaSource, error) {
	source := MediaSource{AltText: c.FormValue("alt_text")}
	if source.AltText == "" {
		source.AltText = strVal(fallbackAlt)
	}

	if raw := c.FormValue("media_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return source, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid media_id")
		}
		source.AssetID = &id
		return source, nil
	}

	if rawURL := c.FormValue("image_url"); rawURL != "" {
		source.ExternalURL = rawURL
		return source, nil
	}

	header, err := c.FormFile("image")
	if err != nil {
		return source, nil
	}

	file, err := header.Open()
	if err != nil {
		return source, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return source, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to read uploaded file")
	}

	source.Upload = &Upload{
		Filename: header.Filename,
		Mime:     header.Header.Get(fiber.HeaderContentType),
		Size:     header.Size,
		Data:     data,
	}

	return source, nil
}

// respondError maps structured error categories to HTTP statuses and
// the uniform envelope.
func (a *Controller) respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	var rich *goerrors.Error
	if repository.IsRecordNotFound(err) {
		status = fiber.StatusNotFound
		message = "record not found"
	} else if goerrors.As(err, &rich) {
		message = rich.Message
		switch rich.Category {
		case goerrors.CategoryAuth:
			status = fiber.StatusUnauthorized
		case goerrors.CategoryAuthz:
			status = fiber.StatusForbidden
		case goerrors.CategoryValidation, goerrors.CategoryBadInput:
			status = fiber.StatusBadRequest
		case goerrors.CategoryNotFound:
			status = fiber.StatusNotFound
		case goerrors.CategoryConflict:
			status = fiber.StatusConflict
		}
	} else if goerrors.IsNotFound(err) {
		status = fiber.StatusNotFound
		message = "record not found"
	}

	if status == fiber.StatusInternalServerError {
		a.Logger.Error("content controller error: %s", print.MaybePrettyJSON(map[string]any{
			"error": err.Error(),
			"path":  c.Path(),
		}))
	}

	return c.Status(status).JSON(Envelope{
		Success: false,
		Message: message,
	})
}
