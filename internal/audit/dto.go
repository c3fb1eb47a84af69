package audit

import "time"

// Actions recorded by the service. Callers may log additional free-form
// actions; these are the ones emitted by the core paths.
const (
	ActionUpdateProduct    = "update_product"
	ActionBulkUpdate       = "bulk_update"
	ActionUpdateCurrency   = "update_currency"
	ActionBulkRecalculate  = "bulk_recalculate_prices"
	ActionImportProducts   = "import_products"
	ActionExportProducts   = "export_products"
	ActionRegenerateLookup = "regenerate_lookup"
)

const (
	ObjectProduct = "product"
	ObjectOption  = "option"
)

// Entry is an immutable activity record: who changed what, when, from where.
type Entry struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	Action     string    `json:"action"`
	ObjectType string    `json:"object_type"`
	ObjectID   int64     `json:"object_id,omitempty"`
	OldValue   string    `json:"old_value,omitempty"`
	NewValue   string    `json:"new_value,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Filter struct {
	UserID     string `query:"user_id"`
	Action     string `query:"action"`
	ObjectType string `query:"object_type"`
	ObjectID   int64  `query:"object_id"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

type ListOutput struct {
	Logs   []Entry `json:"logs"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
