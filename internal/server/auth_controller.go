package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/cronoplan/cronoplan-api/internal/auth"
)

// AuthController exposes the session lifecycle over HTTP.
type AuthController struct {
	Debug  bool
	Logger auth.Logger
	Auther *auth.Auther
	Gate   *auth.TokenGate
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger auth.Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func NewAuthController(auther *auth.Auther, gate *auth.TokenGate, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: auth.DefaultLogger(),
		Auther: auther,
		Gate:   gate,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Auther in auth controller...")
	}

	if c.Gate == nil {
		panic("Missing TokenGate in auth controller...")
	}

	return c
}

// RegisterRoutes mounts the auth endpoints under the given router.
func (a *AuthController) RegisterRoutes(router fiber.Router) {
	router.Post("/register", a.Register)
	router.Post("/login", a.Login)
	router.Post("/refresh", a.Refresh)
	router.Post("/google", a.Google)
	router.Post("/logout", RequireAccess(a.Gate), a.Logout)
	router.Get("/me", RequireAccess(a.Gate), a.Me)
	router.Put("/me", RequireAccess(a.Gate), a.UpdateMe)
	router.Get("/verify", a.Verify)
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := new(RegisterRequest)

	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER =======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=============================")
	}

	session, err := a.Auther.Register(c.Context(), payload.Email, payload.Password, auth.ProfileHints{
		FullName: payload.FullName,
		Phone:    payload.Phone,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(sessionPayload(session))
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	session, err := a.Auther.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(sessionPayload(session))
}

func (a *AuthController) Refresh(c *fiber.Ctx) error {
	payload := new(RefreshRequest)

	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	session, err := a.Auther.Refresh(c.Context(), payload.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(sessionPayload(session))
}

func (a *AuthController) Google(c *fiber.Ctx) error {
	payload := new(GoogleLoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	session, err := a.Auther.LoginWithIDToken(c.Context(), payload.IDToken)
	if err != nil {
		return err
	}

	return c.JSON(sessionPayload(session))
}

// Logout acknowledges the request. Tokens are stateless so the client drops
// them; nothing is revoked server side.
func (a *AuthController) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Successfully logged out"})
}

func (a *AuthController) Me(c *fiber.Ctx) error {
	claims := ClaimsFromCtx(c)
	if claims == nil {
		return auth.ErrMissingAuthorization
	}

	record, err := a.Gate.ResolveProfile(c.Context(), claims.Subject())
	if err != nil {
		return err
	}

	return c.JSON(userPayload(record))
}

func (a *AuthController) UpdateMe(c *fiber.Ctx) error {
	claims := ClaimsFromCtx(c)
	if claims == nil {
		return auth.ErrMissingAuthorization
	}

	payload := new(UpdateProfileRequest)
	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	changes := payload.Changes()
	if changes.IsEmpty() {
		return goerrors.New("No fields to update", goerrors.CategoryBadInput).
			WithTextCode("empty_update").
			WithCode(goerrors.CodeBadRequest)
	}

	record, err := a.Auther.UpdateProfile(c.Context(), claims.Subject(), changes)
	if err != nil {
		return err
	}

	return c.JSON(userPayload(record))
}

// Verify confirms the bearer token is a valid access token. Invalid or
// missing tokens get the usual 401.
func (a *AuthController) Verify(c *fiber.Ctx) error {
	claims, err := a.Gate.Authenticate(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}

	out := VerifyPayload{
		Message: "Token is valid",
		UserID:  claims.Subject(),
		Email:   claims.Email,
	}
	if exp := claims.Expires(); !exp.IsZero() {
		out.Expires = exp.Unix()
	}

	return c.JSON(out)
}

func parseError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "Unable to parse request body").
		WithTextCode("invalid_body").
		WithCode(goerrors.CodeBadRequest)
}
