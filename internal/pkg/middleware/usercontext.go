package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SupplierComply/internal/pkg/session"
	"github.com/ManuelReschke/SupplierComply/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session once per request and stores the
// result under usercontext.LocalsKey.
func UserContextMiddleware(c *fiber.Ctx) error {
	store := session.GetSessionStore()
	if store == nil {
		usercontext.SetUserContext(c, usercontext.UserContext{})
		return c.Next()
	}

	sess, err := store.Get(c)
	if err != nil {
		log.Warnf("[Session] Failed to load session: %v", err)
		usercontext.SetUserContext(c, usercontext.UserContext{})
		return c.Next()
	}

	subscriberID, ok := sess.Get(usercontext.KeyUserID).(uint)
	if !ok || subscriberID == 0 {
		usercontext.SetUserContext(c, usercontext.UserContext{})
		return c.Next()
	}

	email, _ := sess.Get(usercontext.KeyEmail).(string)
	isAdmin, _ := sess.Get(usercontext.KeyIsAdmin).(bool)

	usercontext.SetUserContext(c, usercontext.UserContext{
		SubscriberID: subscriberID,
		Email:        email,
		IsLoggedIn:   true,
		IsAdmin:      isAdmin,
	})

	return c.Next()
}
