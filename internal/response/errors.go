package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrNotAuthenticated   ErrCode = "NOT_AUTHENTICATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrCoordinatorOnly ErrCode = "COORDINATOR_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Enrollment workflow ───────────────────────────────────────────
	ErrCourseNotFound   ErrCode = "COURSE_NOT_FOUND"
	ErrCourseInactive   ErrCode = "COURSE_INACTIVE"
	ErrAlreadyEnrolled  ErrCode = "ALREADY_ENROLLED"
	ErrCourseFull       ErrCode = "COURSE_FULL"
	ErrScheduleConflict ErrCode = "SCHEDULE_CONFLICT"
	ErrAlreadyCancelled ErrCode = "ALREADY_CANCELLED"
	ErrPersistence      ErrCode = "PERSISTENCE_ERROR"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Correo o contraseña incorrectos."
	case ErrNotAuthenticated:
		return "Debe estar autenticado para realizar esta acción."
	case ErrTokenRequired:
		return "Se requiere un token de autenticación."
	case ErrTokenInvalid:
		return "El token de autenticación no es válido."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "No tiene permiso para acceder a este recurso."
	case ErrCoordinatorOnly:
		return "Este recurso está reservado para coordinadores."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "La validación falló. Por favor revise los datos ingresados."
	case ErrInvalidID:
		return "El formato del identificador no es válido."
	case ErrInvalidPayload:
		return "El contenido de la solicitud no es válido."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "El recurso no fue encontrado."
	case ErrConflict:
		return "El recurso ya existe."

	// ─── Enrollment workflow ───────────────────────────────────────────
	case ErrCourseNotFound:
		return "El curso no fue encontrado."
	case ErrCourseInactive:
		return "Este curso no está disponible para inscripciones."
	case ErrAlreadyEnrolled:
		return "Ya estás inscrito en este curso."
	case ErrCourseFull:
		return "El curso ha alcanzado su cupo máximo."
	case ErrScheduleConflict:
		return "El horario de este curso se solapa con otro curso inscrito."
	case ErrAlreadyCancelled:
		return "Esta matrícula ya está cancelada."
	case ErrPersistence:
		return "Ocurrió un error al procesar tu inscripción. Por favor, intenta nuevamente."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Demasiadas solicitudes. Por favor intente más tarde."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Ocurrió un error interno del servidor."
	default:
		return "Ocurrió un error inesperado."
	}
}
