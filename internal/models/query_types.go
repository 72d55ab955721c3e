// internal/models/query_types.go
package models

// Operation names a DataAccessPort call. Used as the resilience operation
// label, the cache key prefix and the log field.
type Operation string

const (
	OpFindUserByExternalID     Operation = "find_user_by_external_id"
	OpCreateUser               Operation = "create_user"
	OpFindSession              Operation = "find_session"
	OpCreateSession            Operation = "create_session"
	OpUpdateSessionStats       Operation = "update_session_stats"
	OpFindBusinessesByCategory Operation = "find_businesses_by_category"
	OpFindBusinessByName       Operation = "find_business_by_name"
	OpFindPartnerBusinesses    Operation = "find_partner_businesses"
	OpFindTopBusinesses        Operation = "find_top_businesses"
	OpAppendMessage            Operation = "append_message"
)

// IsRead reports whether the operation is an idempotent read.
func (o Operation) IsRead() bool {
	switch o {
	case OpFindUserByExternalID, OpFindSession, OpFindBusinessesByCategory,
		OpFindBusinessByName, OpFindPartnerBusinesses, OpFindTopBusinesses:
		return true
	default:
		return false
	}
}
