package postgres

const (
	queryRoomCodeExists = `SELECT EXISTS(SELECT 1 FROM rooms WHERE room_code = $1)`

	queryInsertRoom = `
		INSERT INTO rooms (room_code, is_active, creator_id)
		VALUES ($1, TRUE, $2)
		RETURNING id, created_at`

	queryGetRoomByCode = `
		SELECT r.id, r.room_code, r.is_active, r.creator_id, r.current_video_id, r.created_at,
		       u.email, u.display_name
		FROM rooms AS r
		JOIN users AS u ON u.id = r.creator_id
		WHERE r.room_code = $1`

	querySetRoomActive = `UPDATE rooms SET is_active = $2 WHERE id = $1`

	querySetCurrentVideo = `UPDATE rooms SET current_video_id = $2 WHERE room_code = $1 AND is_active`

	queryMemberExists = `SELECT EXISTS(SELECT 1 FROM room_members WHERE room_id = $1 AND user_id = $2)`

	// ON CONFLICT keeps a concurrent double join down to one row.
	queryInsertMember = `
		INSERT INTO room_members (room_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, room_id) DO NOTHING`

	queryListMembers = `
		SELECT m.id, m.room_id, m.user_id, m.joined_at, u.email, u.display_name
		FROM room_members AS m
		JOIN users AS u ON u.id = m.user_id
		WHERE m.room_id = $1
		ORDER BY m.joined_at ASC, m.id ASC`

	queryGetUser = `SELECT id, email, display_name FROM users WHERE id = $1`
)
