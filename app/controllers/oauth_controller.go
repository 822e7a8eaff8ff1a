package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/celumarket/celumarket/app/repository"
	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"github.com/celumarket/celumarket/internal/pkg/oauth"
)

// OAuthController completes third-party logins and opens a local session.
type OAuthController struct {
	auth        *AuthController
	users       repository.UserRepository
	redirectURL string
}

func NewOAuthController(auth *AuthController, users repository.UserRepository, redirectURL string) *OAuthController {
	if redirectURL == "" {
		redirectURL = "/"
	}
	return &OAuthController{auth: auth, users: users, redirectURL: redirectURL}
}

// HandleBegin redirects to the provider named in the route.
func (oc *OAuthController) HandleBegin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleCallback completes the provider flow and logs the user in
func (oc *OAuthController) HandleCallback(c *fiber.Ctx) error {
	gu, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		log.Warnf("[OAuth] provider %s callback failed: %v", c.Params("provider"), err)
		return respondError(c, apperror.NewValidation("OAuth login failed"))
	}

	user, created, err := oauth.ResolveUser(oc.users, gu)
	if err != nil {
		return respondError(c, err)
	}
	if created {
		log.Infof("[OAuth] created user %d via %s", user.ID, gu.Provider)
		if oc.auth.welcomer != nil {
			oc.auth.welcomer.Welcome(c.UserContext(), user)
		}
	}

	if err := oc.auth.openSession(c, user); err != nil {
		return respondError(c, err)
	}
	return c.Redirect(oc.redirectURL)
}
