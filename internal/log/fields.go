package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldOutcome     = "outcome"
	FieldRevision    = "revision"
	FieldKey         = "key"
	FieldTxID        = "transaction_id"
	FieldTxDate      = "transaction_date"
	FieldAmount      = "amount"
	FieldCategoryID  = "category_id"
	FieldTxCount     = "transactions"
	FieldCatCount    = "categories"
	FieldDisplayMode = "display_mode"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStore     = "store"
	ComponentStorage   = "storage"
	ComponentAggregate = "aggregate"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentBackend   = "backend"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpAddTransaction    = "add_transaction"
	OpEditTransaction   = "edit_transaction"
	OpDeleteTransaction = "delete_transaction"
	OpAddCategory       = "add_category"
	OpDeleteCategory    = "delete_category"
	OpImport            = "import_data"
	OpLoadDemo          = "load_demo_data"
	OpClearDemo         = "clear_demo_data"
	OpToggleMode        = "toggle_display_mode"
	OpLoad              = "load"
	OpRepair            = "repair"
	OpPersist           = "persist"
	OpNotify            = "notify"
	OpExport            = "export"
)
