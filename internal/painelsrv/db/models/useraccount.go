package models

import "time"

/*
 Field        | Type         | Null | Key | Default           | Extra
--------------+--------------+------+-----+-------------------+----------------
 id           | int          | NO   | PRI | NULL              | auto_increment
 usuario      | varchar(64)  | NO   | UNI | NULL              |
 nome         | varchar(128) | NO   |     | NULL              |
 tipo         | varchar(16)  | NO   |     | user              |
 senha_hash   | varchar(100) | NO   |     | NULL              |
 data_criacao | datetime     | NO   |     | CURRENT_TIMESTAMP |
*/

// Roles stored in usuarios.tipo.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserAccount is one login account (table usuarios). PasswordHash carries
// the bcrypt hash and must never be logged; the credential service clears
// it before handing the account to callers.
type UserAccount struct {
	ID           int64     `db:"id"`
	Username     string    `db:"usuario"`
	DisplayName  string    `db:"nome"`
	Role         string    `db:"tipo"`
	PasswordHash string    `db:"senha_hash"`
	CreatedAt    time.Time `db:"data_criacao"`
}

// IsAdmin reports whether the account may open the administration panel.
func (u *UserAccount) IsAdmin() bool {
	return u.Role == RoleAdmin
}
