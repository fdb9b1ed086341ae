package catalog

// Static is the hand-maintained fallback catalog. It must mirror the
// migrations; Verify checks it against the live schema at startup.
func Static() *Catalog {
	return newCatalog([]Table{
		{
			Name: "accounts",
			Columns: []Column{
				{Name: "id", Type: "text", IsPrimary: true},
				{Name: "user_id", Type: "text", References: "users.id"},
				{Name: "account_type", Type: "text"},
				{Name: "account_number", Type: "text"},
				{Name: "routing_number", Type: "text"},
				{Name: "balance", Type: "bigint", Default: "0"},
				{Name: "is_frozen", Type: "boolean", Default: "false"},
				{Name: "frozen_by_admin", Type: "boolean", Default: "false"},
				{Name: "created_at", Type: "timestamp with time zone", Default: "now()"},
				{Name: "updated_at", Type: "timestamp with time zone", Default: "now()"},
			},
		},
		{
			Name: "audit_logs",
			Columns: []Column{
				{Name: "id", Type: "text", IsPrimary: true},
				{Name: "actor_user_id", Type: "text"},
				{Name: "action", Type: "text"},
				{Name: "entity_type", Type: "text"},
				{Name: "entity_id", Type: "text"},
				{Name: "data", Type: "text", Default: "'{}'::text"},
				{Name: "created_at", Type: "timestamp with time zone", Default: "now()"},
			},
		},
		{
			Name: "cards",
			Columns: []Column{
				{Name: "id", Type: "text", IsPrimary: true},
				{Name: "user_id", Type: "text", References: "users.id"},
				{Name: "account_id", Type: "text", References: "accounts.id"},
				{Name: "card_number", Type: "text"},
				{Name: "card_type", Type: "text"},
				{Name: "expiry_month", Type: "integer"},
				{Name: "expiry_year", Type: "integer"},
				{Name: "cvv", Type: "text"},
				{Name: "holder_name", Type: "text"},
				{Name: "is_active", Type: "boolean", Default: "true"},
				{Name: "created_at", Type: "timestamp with time zone", Default: "now()"},
				{Name: "updated_at", Type: "timestamp with time zone", Default: "now()"},
			},
		},
		{
			Name: "notifications",
			Columns: []Column{
				{Name: "id", Type: "text", IsPrimary: true},
				{Name: "user_id", Type: "text", References: "users.id"},
				{Name: "title", Type: "text"},
				{Name: "message", Type: "text"},
				{Name: "type", Type: "text", Default: "'info'::text"},
				{Name: "is_read", Type: "boolean", Default: "false"},
				{Name: "created_at", Type: "timestamp with time zone", Default: "now()"},
			},
		},
		{
			Name: "profiles",
			Columns: []Column{
				{Name: "id", Type: "text", IsPrimary: true, References: "users.id"},
				{Name: "email", Type: "text"},
				{Name: "first_name", Type: "text", Default: "''::text"},
				{Name: "last_name", Type: "text", Default: "''::text"},
				{Name: "address", Type: "text", Default: "''::text"},
				{Name: "city", Type: "text", Default: "''::text"},
				{Name: "state", Type: "text", Default: "''::text"},
				{Name: "zip_code", Type: "text", Default: "''::text"},
				{Name: "is_admin", Type: "boolean", Default: "false"},
				{Name: "role", Type: "text", Default: "'customer'::text"},
				{Name: "created_at", Type: "timestamp with time zone", Default: "now()"},
				{Name: "updated_at", Type: "timestamp with time zone", Default: "now()"},
			},
		},
		{
			Name: "transactions",
			Columns: []Column{
				{Name: "id", Type: "text", IsPrimary: true},
				{Name: "account_id", Type: "text", References: "accounts.id"},
				{Name: "amount", Type: "bigint"},
				{Name: "description", Type: "text", Default: "''::text"},
				{Name: "transaction_type", Type: "text"},
				{Name: "created_at", Type: "timestamp with time zone", Default: "now()"},
			},
		},
		{
			Name: "users",
			Columns: []Column{
				{Name: "id", Type: "text", IsPrimary: true},
				{Name: "email", Type: "text"},
				{Name: "password_hash", Type: "text"},
				{Name: "created_at", Type: "timestamp with time zone", Default: "now()"},
			},
		},
	})
}
