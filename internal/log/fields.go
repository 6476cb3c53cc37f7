package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldCategoryID = "category_id"
	FieldExpenseID  = "expense_id"
	FieldAmount     = "amount"
	FieldBalance    = "balance"
	FieldCount      = "count"
)

const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentAuth     = "auth"
	ComponentUser     = "user"
	ComponentCategory = "category"
	ComponentExpense  = "expense"
	ComponentSummary  = "summary"
	ComponentStorage  = "storage"
	ComponentCLI      = "cli"
	ComponentCron     = "cron"
)

const (
	OpCreate   = "create"
	OpList     = "list"
	OpDelete   = "delete"
	OpLogin    = "login"
	OpAdjust   = "adjust_balance"
	OpSummary  = "summary"
	OpExport   = "export"
	OpMigrate  = "migrate"
	OpSeed     = "seed"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
