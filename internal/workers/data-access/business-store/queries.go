// internal/workers/data-access/business-store/queries.go
package businessstore

import "wenwen-recommender/internal/models"

const businessColumns = `id, name, category, address, phone, business_hours, is_partner, features, created_at, updated_at`

// Statements holds the SQL for every port operation.
var Statements = map[models.Operation]string{
	models.OpFindBusinessesByCategory: `SELECT ` + businessColumns + `
		FROM businesses
		WHERE LOWER(category) = LOWER($1)
		ORDER BY is_partner DESC, updated_at DESC
		LIMIT $2`,

	models.OpFindBusinessByName: `SELECT ` + businessColumns + `
		FROM businesses
		WHERE name = $1
		LIMIT 1`,

	models.OpFindPartnerBusinesses: `SELECT ` + businessColumns + `
		FROM businesses
		WHERE is_partner = TRUE
		ORDER BY updated_at DESC
		LIMIT $1`,

	models.OpFindTopBusinesses: `SELECT ` + businessColumns + `
		FROM businesses
		ORDER BY is_partner DESC, updated_at DESC
		LIMIT $1`,

	models.OpFindUserByExternalID: `SELECT id, external_id, display_name, metadata, created_at
		FROM users
		WHERE external_id = $1`,

	models.OpCreateUser: `INSERT INTO users (id, external_id, display_name, metadata)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
		RETURNING id, created_at`,

	models.OpFindSession: `SELECT id, user_id, message_count, metadata, created_at, last_active
		FROM sessions
		WHERE id = $1`,

	models.OpCreateSession: `INSERT INTO sessions (id, user_id, message_count, metadata)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (id) DO UPDATE SET last_active = NOW()
		RETURNING id, user_id, message_count, created_at, last_active`,

	models.OpUpdateSessionStats: `UPDATE sessions
		SET message_count = GREATEST(message_count, $2), last_active = NOW()
		WHERE id = $1`,

	models.OpAppendMessage: `INSERT INTO messages (id, session_id, user_id, role, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
}
