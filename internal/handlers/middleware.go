package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "resume-analyzer/internal/errors"
)

const (
	SessionHeader    = "X-Session-ID"
	sessionLocalsKey = "session_id"
)

var validate = validator.New()

// ErrorHandler renders every error as {"error", "code"}; AppErrors carry
// their own status and code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
			"code":  fe.Code,
		})
	}

	body := fiber.Map{"error": err.Error()}
	if code := apperrors.CodeOf(err); code != "" {
		body["code"] = code
	} else {
		body["code"] = fiber.StatusInternalServerError
	}
	return c.Status(apperrors.HTTPStatus(err)).JSON(body)
}

// Session assigns a session id to every request, reusing a well-formed
// X-Session-ID header and echoing the id back.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(SessionHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Locals(sessionLocalsKey, id)
		c.Set(SessionHeader, id)
		return c.Next()
	}
}

func sessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionLocalsKey).(string)
	return id
}

// validateStruct turns validator failures into an INVALID_REQUEST error.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewInvalidRequestError(err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return apperrors.NewInvalidRequestError(strings.Join(msgs, "; "))
}
