package database

import (
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/lib/pq"
)

const defaultPageSize = 50

func (db *PgChatRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, username, email, created_at, updated_at",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgChatRepository) GetAccountById(id int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgChatRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, password_hash, created_at, updated_at FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgChatRepository) GetFriendshipStatus(userA, userB int) (string, error) {
	row := db.conn.QueryRow(
		"SELECT status FROM friendships "+
			"WHERE (requester_id = $1 AND addressee_id = $2) "+
			"OR (requester_id = $2 AND addressee_id = $1) LIMIT 1",
		userA,
		userB,
	)

	var status string
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}

	return status, nil
}

func (db *PgChatRepository) GetAcceptedFriendIds(userId int) ([]int, error) {
	rows, err := db.conn.Query(
		"SELECT CASE WHEN requester_id = $1 THEN addressee_id ELSE requester_id END "+
			"FROM friendships WHERE (requester_id = $1 OR addressee_id = $1) AND status = $2",
		userId,
		FriendshipAccepted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err = rows.Scan(&id); err != nil {
			break
		}

		ids = append(ids, id)
	}

	return ids, err
}

func (db *PgChatRepository) GetGroupMembership(groupId, userId int) (string, error) {
	row := db.conn.QueryRow(
		"SELECT role FROM group_members WHERE group_id = $1 AND user_id = $2 LIMIT 1",
		groupId,
		userId,
	)

	var role string
	if err := row.Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}

	return role, nil
}

func (db *PgChatRepository) GetGroupMemberIds(groupId int) ([]int, error) {
	rows, err := db.conn.Query(
		"SELECT user_id FROM group_members WHERE group_id = $1",
		groupId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err = rows.Scan(&id); err != nil {
			break
		}

		ids = append(ids, id)
	}

	return ids, err
}

func (db *PgChatRepository) GetMarketplacePostOwner(postId int) (int, error) {
	row := db.conn.QueryRow(
		"SELECT owner_id FROM marketplace_posts WHERE id = $1 LIMIT 1",
		postId,
	)

	var ownerId int
	if err := row.Scan(&ownerId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	return ownerId, nil
}

func (db *PgChatRepository) CreateMessage(msg Message) (int, error) {
	res := db.conn.QueryRow(
		"INSERT INTO messages (sender_id, receiver_id, group_id, content, kind, "+
			"attachment_url, attachment_name, attachment_size, attachment_mime, post_id, "+
			"is_read, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, $11) RETURNING id",
		msg.SenderId,
		nullableInt(msg.ReceiverId),
		nullableInt(msg.GroupId),
		msg.Content,
		msg.Kind,
		msg.AttachmentUrl,
		msg.AttachmentName,
		msg.AttachmentSize,
		msg.AttachmentMime,
		nullableInt(msg.PostId),
		msg.CreatedAt,
	)

	var id int
	err := res.Scan(&id)

	return id, err
}

func (db *PgChatRepository) GetMessageById(id int) (Message, error) {
	row := db.conn.QueryRow(
		"SELECT "+messageColumns+" FROM messages WHERE id = $1 LIMIT 1",
		id,
	)

	return scanMessage(row)
}

func (db *PgChatRepository) MarkMessageRead(id int, readAt time.Time) (bool, error) {
	res, err := db.conn.Exec(
		"UPDATE messages SET is_read = TRUE, read_at = $2 WHERE id = $1 AND is_read = FALSE",
		id,
		readAt,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	return n > 0, err
}

func (db *PgChatRepository) GetPrivateMessages(userA, userB, beforeId, limit int) ([]Message, error) {
	upper := 1<<31 - 1
	if beforeId > 0 {
		upper = beforeId - 1
	}

	if limit <= 0 {
		limit = defaultPageSize
	}

	rows, err := db.conn.Query(
		"SELECT "+messageColumns+" FROM messages "+
			"WHERE group_id IS NULL "+
			"AND ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)) "+
			"AND id <= $3 ORDER BY id DESC LIMIT $4",
		userA,
		userB,
		upper,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows, limit)
}

func (db *PgChatRepository) GetGroupMessages(groupId, beforeId, limit int) ([]Message, error) {
	upper := 1<<31 - 1
	if beforeId > 0 {
		upper = beforeId - 1
	}

	if limit <= 0 {
		limit = defaultPageSize
	}

	rows, err := db.conn.Query(
		"SELECT "+messageColumns+" FROM messages "+
			"WHERE group_id = $1 AND id <= $2 ORDER BY id DESC LIMIT $3",
		groupId,
		upper,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows, limit)
}

func (db *PgChatRepository) ListConversations(userId int) ([]Conversation, error) {
	conversations, err := db.listPrivateConversations(userId)
	if err != nil {
		return nil, err
	}

	groupConversations, err := db.listGroupConversations(userId)
	if err != nil {
		return nil, err
	}
	conversations = append(conversations, groupConversations...)

	// newest activity first
	slices.SortFunc(conversations, func(a, b Conversation) int {
		return b.LastMessage.CreatedAt.Compare(a.LastMessage.CreatedAt)
	})

	return conversations, nil
}

func (db *PgChatRepository) listPrivateConversations(userId int) ([]Conversation, error) {
	rows, err := db.conn.Query(
		"SELECT DISTINCT ON (m.peer_id) m.peer_id, a.username, "+
			"m.id, m.sender_id, COALESCE(m.receiver_id, 0), m.content, m.kind, m.is_read, m.created_at "+
			"FROM (SELECT *, CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS peer_id "+
			"FROM messages WHERE group_id IS NULL AND (sender_id = $1 OR receiver_id = $1)) m "+
			"JOIN accounts a ON a.id = m.peer_id "+
			"ORDER BY m.peer_id, m.id DESC",
		userId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var conv Conversation
		if err = rows.Scan(
			&conv.PeerId,
			&conv.Name,
			&conv.LastMessage.Id,
			&conv.LastMessage.SenderId,
			&conv.LastMessage.ReceiverId,
			&conv.LastMessage.Content,
			&conv.LastMessage.Kind,
			&conv.LastMessage.Read,
			&conv.LastMessage.CreatedAt,
		); err != nil {
			return nil, err
		}

		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	unread, err := db.privateUnreadCounts(userId)
	if err != nil {
		return nil, err
	}

	for i := range conversations {
		conversations[i].UnreadCount = unread[conversations[i].PeerId]
	}

	return conversations, nil
}

func (db *PgChatRepository) privateUnreadCounts(userId int) (map[int]int, error) {
	rows, err := db.conn.Query(
		"SELECT sender_id, COUNT(*) FROM messages "+
			"WHERE receiver_id = $1 AND is_read = FALSE GROUP BY sender_id",
		userId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var senderId, count int
		if err = rows.Scan(&senderId, &count); err != nil {
			return nil, err
		}

		counts[senderId] = count
	}

	return counts, rows.Err()
}

func (db *PgChatRepository) listGroupConversations(userId int) ([]Conversation, error) {
	rows, err := db.conn.Query(
		"SELECT gm.group_id, g.name FROM group_members gm "+
			"JOIN groups g ON g.id = gm.group_id WHERE gm.user_id = $1",
		userId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []Conversation
	var groupIds []int64
	for rows.Next() {
		var conv Conversation
		if err = rows.Scan(&conv.GroupId, &conv.Name); err != nil {
			return nil, err
		}

		conversations = append(conversations, conv)
		groupIds = append(groupIds, int64(conv.GroupId))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(conversations) == 0 {
		return nil, nil
	}

	latest, err := db.latestGroupMessages(groupIds)
	if err != nil {
		return nil, err
	}

	unread, err := db.groupUnreadCounts(groupIds, userId)
	if err != nil {
		return nil, err
	}

	for i := range conversations {
		conversations[i].LastMessage = latest[conversations[i].GroupId]
		conversations[i].UnreadCount = unread[conversations[i].GroupId]
	}

	return conversations, nil
}

func (db *PgChatRepository) latestGroupMessages(groupIds []int64) (map[int]Message, error) {
	rows, err := db.conn.Query(
		"SELECT DISTINCT ON (group_id) group_id, id, sender_id, content, kind, is_read, created_at "+
			"FROM messages WHERE group_id = ANY($1) ORDER BY group_id, id DESC",
		pq.Array(groupIds),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	latest := make(map[int]Message)
	for rows.Next() {
		var msg Message
		if err = rows.Scan(
			&msg.GroupId,
			&msg.Id,
			&msg.SenderId,
			&msg.Content,
			&msg.Kind,
			&msg.Read,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}

		latest[msg.GroupId] = msg
	}

	return latest, rows.Err()
}

func (db *PgChatRepository) groupUnreadCounts(groupIds []int64, userId int) (map[int]int, error) {
	rows, err := db.conn.Query(
		"SELECT group_id, COUNT(*) FROM messages "+
			"WHERE group_id = ANY($1) AND sender_id <> $2 AND is_read = FALSE GROUP BY group_id",
		pq.Array(groupIds),
		userId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var groupId, count int
		if err = rows.Scan(&groupId, &count); err != nil {
			return nil, err
		}

		counts[groupId] = count
	}

	return counts, rows.Err()
}

const messageColumns = "id, sender_id, COALESCE(receiver_id, 0), COALESCE(group_id, 0), " +
	"content, kind, attachment_url, attachment_name, attachment_size, attachment_mime, " +
	"COALESCE(post_id, 0), is_read, read_at, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (Message, error) {
	var msg Message
	var readAt sql.NullTime
	err := row.Scan(
		&msg.Id,
		&msg.SenderId,
		&msg.ReceiverId,
		&msg.GroupId,
		&msg.Content,
		&msg.Kind,
		&msg.AttachmentUrl,
		&msg.AttachmentName,
		&msg.AttachmentSize,
		&msg.AttachmentMime,
		&msg.PostId,
		&msg.Read,
		&readAt,
		&msg.CreatedAt,
	)
	if err != nil {
		return Message{}, err
	}

	if readAt.Valid {
		msg.ReadAt = readAt.Time
	}

	return msg, nil
}

func scanMessages(rows *sql.Rows, limit int) ([]Message, error) {
	var messages = make([]Message, 0, limit)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}

		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func nullableInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
