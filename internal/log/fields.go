package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldKey        = "key"
	FieldScreen     = "screen"
	FieldLocale     = "locale"
	FieldTxID       = "transaction_id"
	FieldTxName     = "transaction_name"
	FieldAmount     = "amount"
	FieldTxType     = "transaction_type"
	FieldItemID     = "item_id"
	FieldCount      = "count"
	FieldBackend    = "backend"
	FieldSheetsRef  = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentSession   = "session"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentWebSocket = "websocket"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpNavigate     = "navigate"
	OpToggleTheme  = "toggle_theme"
	OpToggleLocale = "toggle_language"
	OpKeypad       = "keypad"
	OpAddTx        = "add_transaction"
	OpAddItem      = "add_dictionary_item"
	OpUpdateItem   = "update_dictionary_item"
	OpDeleteItem   = "delete_dictionary_item"
	OpPersist      = "persist"
	OpPublish      = "publish"
	OpSync         = "sync"
	OpStartup      = "startup"
	OpShutdown     = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id, name string, amount int64, txType string) LogFields {
	f[FieldTxID] = id
	f[FieldTxName] = name
	f[FieldAmount] = amount
	f[FieldTxType] = txType
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
