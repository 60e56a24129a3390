package response

import "github.com/gofiber/fiber/v2"

// Envelope is the uniform API response shape. Successful responses
// carry status "success"; client errors carry "fail" and server errors
// carry "error", each with a message only.
type Envelope struct {
	Status  string      `json:"status"`
	Results *int        `json:"results,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success sends a 200 success response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(Envelope{Status: "success", Data: data})
}

// SuccessMessage sends a 200 success response with a message
func SuccessMessage(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Envelope{Status: "success", Message: message, Data: data})
}

// SuccessList sends a 200 success response with a result count
func SuccessList(c *fiber.Ctx, results int, data interface{}) error {
	return c.JSON(Envelope{Status: "success", Results: &results, Data: data})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Status: "success", Data: data})
}

// Fail sends a client-error response (status "fail")
func Fail(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Envelope{Status: "fail", Message: message})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusNotFound, message)
}

// Conflict sends a uniqueness-violation response. Conflicts surface as
// 400 in this API's contract.
func Conflict(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusBadRequest, message)
}

// InternalServerError sends a 500 response (status "error")
func InternalServerError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(Envelope{Status: "error", Message: message})
}
