package handlers

import "github.com/gofiber/fiber/v2"

// GetUserID reads the user id the auth middleware parsed out of the session
// cookie. Zero means the request never passed the middleware.
func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := c.Locals("user_id").(int64)
	return userID
}
