package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// RegisterAuthRoutes mounts the authentication endpoints on the router
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.SignIn, controller.SignIn)
	app.Post(controller.Routes.SignUp, controller.SignUp)
	app.Get(controller.Routes.SendResetPasswordLink, controller.SendResetPasswordLink)
	app.Get(controller.Routes.ResetPassword, controller.ResetPassword)
	app.Post(controller.Routes.ResetPassword, controller.ResetPassword)
}

type AuthControllerRoutes struct {
	SignIn                string
	SignUp                string
	SendResetPasswordLink string
	ResetPassword         string
}

type AuthController struct {
	Debug    bool
	Logger   Logger
	Auther   Authenticator
	Store    IdentityStore
	Mailer   Mailer
	LinkBase string
	Routes   *AuthControllerRoutes
	Activity ActivitySink
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:   defLogger{},
		Activity: noopActivitySink{},
		Routes: &AuthControllerRoutes{
			SignIn:                "/sign-in",
			SignUp:                "/sign-up",
			SendResetPasswordLink: "/send-reset-password-link",
			ResetPassword:         "/reset-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Store == nil {
		panic("Missing IdentityStore in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Mailer == nil {
		panic("Missing Mailer in auth controller...")
	}

	return c
}

// SignInRequest payload
type SignInRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) SignIn(ctx *fiber.Ctx) error {
	payload := new(SignInRequest)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("sign in parse payload: %v", err)
		return respond(ctx, ErrorResponse(fiber.StatusBadRequest, "Failed to parse request body."))
	}

	if err := payload.Validate(); err != nil {
		// A missing field can never be a valid credential, answer with
		// the same generic rejection as a failed check.
		return respond(ctx, ErrorResponse(fiber.StatusUnauthorized, "User or Password are invalid."))
	}

	if a.Debug {
		fmt.Println("======= AUTH SIGN IN ======")
		fmt.Println(print.MaybePrettyJSON(payload.Email))
		fmt.Println("===========================")
	}

	token, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		if goerrors.Is(err, ErrInvalidCredentials) {
			return respond(ctx, ErrorResponse(fiber.StatusUnauthorized, "User or Password are invalid."))
		}

		a.Logger.Error("sign in error: %v", err)
		return respond(ctx, ErrorResponse(fiber.StatusInternalServerError, "Unable to sign in."))
	}

	return respond(ctx, DataResponse(token))
}

// SignUpRequest payload
type SignUpRequest struct {
	Email    string `form:"email" json:"email"`
	Fullname string `form:"fullname" json:"fullname"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Fullname, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) SignUp(ctx *fiber.Ctx) error {
	payload := new(SignUpRequest)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("sign up parse payload: %v", err)
		return respond(ctx, ErrorResponse(fiber.StatusBadRequest, "Failed to parse request body."))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("sign up validate payload: %v", err)
		return respond(ctx, ErrorResponse(fiber.StatusForbidden, err.Error()))
	}

	req := RegisterUserMessage{
		Email:    payload.Email,
		Fullname: payload.Fullname,
		Password: payload.Password,
	}

	registerUser := NewRegisterUserHandler(a.Store).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		if goerrors.Is(err, ErrEmailInUse) {
			return respond(ctx, ErrorResponse(fiber.StatusForbidden, "The provided email is already in use."))
		}

		if IsPolicyViolation(err) {
			return respond(ctx, ErrorResponse(fiber.StatusForbidden, policyMessage(err)))
		}

		a.Logger.Error("sign up error: %v", err)
		return respond(ctx, ErrorResponse(fiber.StatusInternalServerError, "Unable to create user."))
	}

	return respond(ctx, MessageResponse("User created successfully!"))
}

// ResetLinkRequest payload, the email arrives as a query parameter
type ResetLinkRequest struct {
	Email string `query:"email" json:"email"`
}

// Validate will run validation rules
func (r ResetLinkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

func (a *AuthController) SendResetPasswordLink(ctx *fiber.Ctx) error {
	payload := ResetLinkRequest{Email: ctx.Query("email")}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("reset link validate payload: %v", err)
		return respond(ctx, ErrorResponse(fiber.StatusBadRequest, err.Error()))
	}

	req := InitializePasswordResetMessage{
		Email: payload.Email,
	}

	initReset := NewInitializePasswordResetHandler(a.Store, a.Mailer, a.LinkBase).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := initReset.Execute(ctx.Context(), req); err != nil {
		if goerrors.Is(err, ErrIdentityNotFound) {
			return respond(ctx, ErrorResponse(fiber.StatusForbidden, "The provided email is not registered."))
		}

		if IsDeliveryFailure(err) {
			return respond(ctx, ErrorResponse(fiber.StatusInternalServerError, "Unable to deliver the reset link, please retry."))
		}

		a.Logger.Error("reset link error: %v", err)
		return respond(ctx, ErrorResponse(fiber.StatusInternalServerError, "Unable to process the reset request."))
	}

	return respond(ctx, OKResponse())
}

// ResetPasswordRequest payload, accepted via body or query so the mailed
// link can hand off to a form post
type ResetPasswordRequest struct {
	Token    string `form:"token" json:"token" query:"token"`
	Password string `form:"password" json:"password" query:"password"`
}

// Validate will run validation rules
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Token,
			validation.Required,
			is.UUID,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) ResetPassword(ctx *fiber.Ctx) error {
	payload := new(ResetPasswordRequest)

	if ctx.Method() == fiber.MethodPost {
		if err := ctx.BodyParser(payload); err != nil {
			a.Logger.Error("reset password parse payload: %v", err)
			return respond(ctx, ErrorResponse(fiber.StatusBadRequest, "Failed to parse request body."))
		}
	}

	if payload.Token == "" {
		payload.Token = ctx.Query("token")
	}
	if payload.Password == "" {
		payload.Password = ctx.Query("password")
	}

	if err := payload.Validate(); err != nil {
		return respond(ctx, ErrorResponse(fiber.StatusForbidden, "Invalid or expired password reset ticket."))
	}

	req := FinalizePasswordResetMessage{
		Ticket:   payload.Token,
		Password: payload.Password,
	}

	finalizeReset := NewFinalizePasswordResetHandler(a.Store).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	if err := finalizeReset.Execute(ctx.Context(), req); err != nil {
		if IsPolicyViolation(err) {
			return respond(ctx, ErrorResponse(fiber.StatusForbidden, policyMessage(err)))
		}

		if goerrors.Is(err, ErrTicketInvalid) {
			return respond(ctx, ErrorResponse(fiber.StatusForbidden, "Invalid or expired password reset ticket."))
		}

		a.Logger.Error("reset password error: %v", err)
		return respond(ctx, ErrorResponse(fiber.StatusInternalServerError, "Unable to reset password."))
	}

	return respond(ctx, OKResponse())
}

func respond(ctx *fiber.Ctx, resp Response) error {
	return ctx.Status(resp.Status).JSON(resp)
}

func policyMessage(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Message
	}
	return err.Error()
}
