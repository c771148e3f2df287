package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the authenticated subscriber of a request
type UserContext struct {
	SubscriberID uint   `json:"subscriber_id"`
	Email        string `json:"email"`
	IsLoggedIn   bool   `json:"is_logged_in"`
	IsAdmin      bool   `json:"is_admin"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(LocalsKey).(UserContext); ok {
		return ctx
	}
	return UserContext{}
}

func SetUserContext(c *fiber.Ctx, uc UserContext) {
	c.Locals(LocalsKey, uc)
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin checks if the current user is an admin
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetSubscriberID returns the current subscriber's ID, or 0 if not logged in
func GetSubscriberID(c *fiber.Ctx) uint {
	return GetUserContext(c).SubscriberID
}
