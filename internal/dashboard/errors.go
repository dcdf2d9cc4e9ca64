package dashboard

// ErrorKind classifies business failures reported back to the operator
type ErrorKind string

const (
	KindInvalid  ErrorKind = "invalid"
	KindNotFound ErrorKind = "not_found"
	KindConflict ErrorKind = "conflict"
)

// ActionError is a business failure of a mutation. Its message is shown to
// the operator verbatim; nothing has been written when it is returned.
type ActionError struct {
	Kind    ErrorKind
	Message string
}

func (e *ActionError) Error() string { return e.Message }

func invalid(msg string) *ActionError  { return &ActionError{Kind: KindInvalid, Message: msg} }
func notFound(msg string) *ActionError { return &ActionError{Kind: KindNotFound, Message: msg} }
func conflict(msg string) *ActionError { return &ActionError{Kind: KindConflict, Message: msg} }

var (
	ErrMissingCedula      = invalid("Debe indicar la cédula del técnico")
	ErrEmptyTime          = invalid("Debe ingresar una hora válida")
	ErrInvalidTime        = invalid("Formato de hora inválido (debe ser HH:MM:SS)")
	ErrInvalidKind        = invalid("Tipo de edición inválido")
	ErrTechnicianNotFound = notFound("Técnico no encontrado")
	ErrNoEntryToday       = notFound("No hay entrada registrada hoy")
	ErrNoRecordToEdit     = notFound("No hay registro para editar hoy")
	ErrNoRecordToDelete   = notFound("No hay registro para eliminar hoy")
	ErrAlreadyInProgress  = conflict("Ya tiene entrada registrada sin salida")
	ErrAlreadyCompleted   = conflict("Ya completó su asistencia hoy")
	ErrEntryRequired      = conflict("Debe marcar entrada primero")
	ErrAlreadyExited      = conflict("Ya tiene salida registrada")
	ErrNoEntryToEdit      = conflict("No hay hora de entrada registrada para editar")
	ErrNoExitToEdit       = conflict("No hay hora de salida registrada para editar")
)
